package inbound

import (
	"net/http"
	"strings"
)

// UnknownDevice is the device id of requests that do not carry the device
// header.
const UnknownDevice = "unknown-device"

// DeviceIdentifier extracts the opaque device id of a request.
type DeviceIdentifier interface {
	Identify(r *http.Request) string
}

// HeaderDevice reads the device id from a request header.
type HeaderDevice struct {
	header string
}

// NewHeaderDevice returns a HeaderDevice for header, User-Agent when empty.
func NewHeaderDevice(header string) HeaderDevice {
	if strings.TrimSpace(header) == "" {
		header = "User-Agent"
	}
	return HeaderDevice{header: http.CanonicalHeaderKey(strings.TrimSpace(header))}
}

func (d HeaderDevice) Identify(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(d.header)); v != "" {
		return v
	}
	return UnknownDevice
}
