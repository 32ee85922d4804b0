package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/gotwofa/internal/pkg/clock"
	"github.com/shandysiswandi/gotwofa/internal/pkg/config"
	"github.com/shandysiswandi/gotwofa/internal/pkg/goroutine"
	"github.com/shandysiswandi/gotwofa/internal/pkg/hash"
	"github.com/shandysiswandi/gotwofa/internal/pkg/instrument"
	"github.com/shandysiswandi/gotwofa/internal/pkg/messaging"
	"github.com/shandysiswandi/gotwofa/internal/pkg/mfa"
	"github.com/shandysiswandi/gotwofa/internal/pkg/otp"
	"github.com/shandysiswandi/gotwofa/internal/pkg/qrcode"
	"github.com/shandysiswandi/gotwofa/internal/pkg/router"
	"github.com/shandysiswandi/gotwofa/internal/pkg/uid"
	"github.com/shandysiswandi/gotwofa/internal/pkg/validator"
	"go.uber.org/atomic"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine    *goroutine.Manager
	validator    validator.Validator
	clock        clock.Clocker
	password     hash.Hash
	uid          uid.NumberID
	oid          uid.StringID
	uuid         uid.StringID
	totp         otp.OTP
	qrcode       qrcode.Renderer
	mfaEncryptor mfa.Encryptor

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	messaging messaging.Messaging

	// server
	router     *router.Router
	httpServer *http.Server
	ready      *atomic.Bool

	closers []closer
}

type closer struct {
	name string
	fn   func(context.Context) error
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
		ready:  atomic.NewBool(false),
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initDatabase()
	app.initCache()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
