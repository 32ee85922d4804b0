package inbound

import (
	"github.com/shandysiswandi/gotwofa/internal/pkg/goerror"
	"github.com/shandysiswandi/gotwofa/internal/pkg/router"
	"github.com/shandysiswandi/gotwofa/internal/twofa/usecase"
)

// HTTPEndpoint exposes the 2FA session protocol over HTTP.
type HTTPEndpoint struct {
	uc     uc
	device DeviceIdentifier
}

func (h *HTTPEndpoint) loginRoute(r *router.Request) (any, error) {
	if r.GetParam("id") != "login" {
		return nil, goerror.NewNotFound("endpoint not found")
	}
	return h.Login(r)
}

// Login checks the password and opens a pending session for the device.
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		DeviceID: h.device.Identify(r.Request),
	})
	if err != nil {
		return nil, err
	}

	return newProfileResponse(resp.Profile), nil
}

func (h *HTTPEndpoint) Logout(r *router.Request) (any, error) {
	resp, err := h.uc.Logout(r.Context(), usecase.LogoutInput{
		UserID:   r.GetParam("id"),
		DeviceID: h.device.Identify(r.Request),
	})
	if err != nil {
		return nil, err
	}

	return LogoutResponse{LoggedOut: resp.LoggedOut}, nil
}

func (h *HTTPEndpoint) Profile(r *router.Request) (any, error) {
	resp, err := h.uc.Profile(r.Context(), usecase.ProfileInput{
		UserID:   r.GetParam("id"),
		DeviceID: h.device.Identify(r.Request),
	})
	if err != nil {
		return nil, err
	}

	return newProfileResponse(resp.Profile), nil
}

// QRCode returns the TOTP provisioning image as a data URI.
func (h *HTTPEndpoint) QRCode(r *router.Request) (any, error) {
	resp, err := h.uc.QRCode(r.Context(), usecase.QRCodeInput{
		UserID: r.GetParam("id"),
	})
	if err != nil {
		return nil, err
	}

	return QRCodeResponse{QRCode: resp.QRCode}, nil
}

func (h *HTTPEndpoint) Setup2FA(r *router.Request) (any, error) {
	var req OTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Setup2FA(r.Context(), usecase.Setup2FAInput{
		UserID:   r.GetParam("id"),
		DeviceID: h.device.Identify(r.Request),
		OTPToken: req.OTPToken,
	})
	if err != nil {
		return nil, err
	}

	return newProfileResponse(resp.Profile), nil
}

func (h *HTTPEndpoint) Verify2FA(r *router.Request) (any, error) {
	var req OTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Verify2FA(r.Context(), usecase.Verify2FAInput{
		UserID:   r.GetParam("id"),
		DeviceID: h.device.Identify(r.Request),
		OTPToken: req.OTPToken,
	})
	if err != nil {
		return nil, err
	}

	return newProfileResponse(resp.Profile), nil
}
