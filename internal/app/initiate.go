package app

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"os"
	"strings"

	libOTP "github.com/pquerna/otp"
	"github.com/rs/cors"
	"github.com/shandysiswandi/gotwofa/internal/pkg/clock"
	"github.com/shandysiswandi/gotwofa/internal/pkg/config"
	"github.com/shandysiswandi/gotwofa/internal/pkg/goroutine"
	"github.com/shandysiswandi/gotwofa/internal/pkg/hash"
	"github.com/shandysiswandi/gotwofa/internal/pkg/instrument"
	"github.com/shandysiswandi/gotwofa/internal/pkg/mfa"
	"github.com/shandysiswandi/gotwofa/internal/pkg/otp"
	"github.com/shandysiswandi/gotwofa/internal/pkg/qrcode"
	"github.com/shandysiswandi/gotwofa/internal/pkg/router"
	"github.com/shandysiswandi/gotwofa/internal/pkg/uid"
	"github.com/shandysiswandi/gotwofa/internal/pkg/validator"
)

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	if tz := cfg.GetString("app.tz"); tz != "" {
		//nolint:errcheck,gosec // ignore error
		os.Setenv("TZ", tz)
	}

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
		LogLevel:         a.config.GetString("instrument.log_level"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))
	a.qrcode = qrcode.NewPNG(a.config.GetInt("mfa.qr.size"))

	password, err := hash.NewFromDriver(a.config.GetString("hash.driver"), hash.Options{
		BcryptCost: a.config.GetInt("hash.bcrypt.cost"),
		Pepper:     a.config.GetString("hash.pepper"),
		HMACSecret: a.config.GetString("hash.hmac.secret"),
	})
	if err != nil {
		slog.Error("failed to init password hash", "error", err, "driver", a.config.GetString("hash.driver"))
		os.Exit(1)
	}
	a.password = password

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator

	snow, err := uid.NewSnowflake()
	if err != nil {
		slog.Error("failed to init uid number snowflake", "error", err)
		os.Exit(1)
	}
	a.uid = snow

	objID, err := uid.NewObjectIDGenerator()
	if err != nil {
		slog.Error("failed to init uid string object_id", "error", err)
		os.Exit(1)
	}
	a.oid = objID

	issuer := a.config.GetString("mfa.totp.issuer")
	if issuer == "" {
		issuer = a.config.GetString("modules.twofa.service_label")
	}
	digits := libOTP.DigitsSix
	if a.config.GetInt("mfa.totp.digits") == 8 {
		digits = libOTP.DigitsEight
	}
	a.totp = otp.NewTOTP(issuer, a.config.GetUint("mfa.totp.period"), a.config.GetUint("mfa.totp.skew"), digits)

	encoded := strings.TrimSpace(a.config.GetString("mfa.secret"))
	if encoded == "" {
		slog.Warn("mfa.secret is empty, totp secrets are stored unencrypted")
		a.mfaEncryptor = mfa.Plaintext{}
		return
	}

	rawKey, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		slog.Error("failed to decode mfa secret", "error", err)
		os.Exit(1)
	}
	if len(rawKey) != 32 {
		slog.Error("failed to init mfacrypto, secret must be 32 bytes (AES-256)", "length", len(rawKey))
		os.Exit(1)
	}
	a.mfaEncryptor = mfa.NewAESGCMEncryptor(mfa.StaticKeyProvider{KeyBytes: rawKey})
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		Instrument: a.ins,
		Welcome:    a.config.GetString("app.server.welcome"),
	})

	a.router.GETRaw("/health", newHealthHandler(a.ready, a.healthChecks()))

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

// initClosers registers resources in release order. Instrumentation goes
// last so shutdown logs still reach the exporter.
func (a *App) initClosers() {
	a.closers = append(a.closers, closer{"Messaging", func(context.Context) error {
		return a.messaging.Close()
	}})
	if a.cacheConn != nil {
		a.closers = append(a.closers, closer{"Redis", func(context.Context) error {
			return a.cacheConn.Close()
		}})
	}
	if a.dbConn != nil {
		a.closers = append(a.closers, closer{"Database", func(context.Context) error {
			a.dbConn.Close()
			return nil
		}})
	}
	a.closers = append(a.closers,
		closer{"Config", func(context.Context) error { return a.config.Close() }},
		closer{"Instrument", a.ins.Shutdown},
	)
}
