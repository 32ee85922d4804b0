package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/gotwofa/internal/twofa"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.twofa.enabled") {
		if err := twofa.New(twofa.Dependency{
			DBConn:       a.dbConn,
			CacheConn:    a.cacheConn,
			Goroutine:    a.goroutine,
			Router:       a.router,
			Messaging:    a.messaging,
			Config:       a.config,
			Instrument:   a.ins,
			UID:          a.uid,
			OID:          a.oid,
			Password:     a.password,
			MFAEncryptor: a.mfaEncryptor,
			Clock:        a.clock,
			Totp:         a.totp,
			QRCode:       a.qrcode,
			Validator:    a.validator,
		}); err != nil {
			slog.Error("failed to init module twofa", "error", err)
			os.Exit(1)
		}
	}
}
