package inbound

import (
	"context"
	"strings"

	"github.com/shandysiswandi/gotwofa/internal/pkg/router"
	"github.com/shandysiswandi/gotwofa/internal/twofa/usecase"
)

type uc interface {
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)
	Logout(ctx context.Context, in usecase.LogoutInput) (*usecase.LogoutOutput, error)
	Profile(ctx context.Context, in usecase.ProfileInput) (*usecase.ProfileOutput, error)
	QRCode(ctx context.Context, in usecase.QRCodeInput) (*usecase.QRCodeOutput, error)
	Setup2FA(ctx context.Context, in usecase.Setup2FAInput) (*usecase.Setup2FAOutput, error)
	Verify2FA(ctx context.Context, in usecase.Verify2FAInput) (*usecase.Verify2FAOutput, error)
}

// RegisterHTTPEndpoint mounts the user routes under prefix.
//
// httprouter rejects a static segment next to a wildcard for the same method,
// so POST {prefix}/login is served by the POST {prefix}/:id route.
func RegisterHTTPEndpoint(r *router.Router, prefix string, device DeviceIdentifier, uc uc) {
	end := &HTTPEndpoint{uc: uc, device: device}
	prefix = "/" + strings.Trim(prefix, "/")

	r.POST(prefix+"/:id", end.loginRoute)
	r.GET(prefix+"/:id", end.Profile)
	r.DELETE(prefix+"/:id/logout", end.Logout)
	r.GET(prefix+"/:id/get_2fa_qr_code", end.QRCode)
	r.POST(prefix+"/:id/setup_2fa", end.Setup2FA)
	r.POST(prefix+"/:id/verify_2fa", end.Verify2FA)
}
