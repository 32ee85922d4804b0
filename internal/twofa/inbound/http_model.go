package inbound

import "github.com/shandysiswandi/gotwofa/internal/twofa/entity"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type OTPRequest struct {
	OTPToken string `json:"otpToken"`
}

// ProfileResponse never carries the password. LastLogin is Unix milliseconds.
type ProfileResponse struct {
	ID            string `json:"_id"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	Require2FA    bool   `json:"require_2fa"`
	Is2FAVerified *bool  `json:"is_2fa_verified"`
	LastLogin     *int64 `json:"last_login"`
}

func newProfileResponse(p entity.Profile) ProfileResponse {
	resp := ProfileResponse{
		ID:            p.ID,
		Email:         p.Email,
		Username:      p.Username,
		Require2FA:    p.Require2FA,
		Is2FAVerified: p.Is2FAVerified,
	}
	if p.LastLogin != nil {
		ms := p.LastLogin.UnixMilli()
		resp.LastLogin = &ms
	}
	return resp
}

type LogoutResponse struct {
	LoggedOut bool `json:"loggedOut"`
}

type QRCodeResponse struct {
	QRCode string `json:"qrcode"`
}
