// Package qrcode renders arbitrary text (typically an otpauth:// URI) as a
// scannable PNG QR code encoded into a data URI.
package qrcode

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// DataURIPrefix is prepended to the base64 PNG payload.
const DataURIPrefix = "data:image/png;base64,"

// DefaultSize is used when the configured size is not positive.
const DefaultSize = 200

// ErrEmptyContent is returned when there is nothing to encode.
var ErrEmptyContent = errors.New("qrcode: content is empty")

// Renderer turns content into an image payload.
type Renderer interface {
	DataURI(content string) (string, error)
}

// PNG renders QR codes as square PNG images.
type PNG struct {
	size  int
	level qr.ErrorCorrectionLevel
}

// NewPNG returns a PNG renderer producing size x size images.
func NewPNG(size int) *PNG {
	if size <= 0 {
		size = DefaultSize
	}

	return &PNG{size: size, level: qr.M}
}

// DataURI encodes content into a "data:image/png;base64,..." string.
func (p *PNG) DataURI(content string) (string, error) {
	if content == "" {
		return "", ErrEmptyContent
	}

	code, err := qr.Encode(content, p.level, qr.Auto)
	if err != nil {
		return "", err
	}

	code, err = barcode.Scale(code, p.size, p.size)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, code); err != nil {
		return "", err
	}

	return DataURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
