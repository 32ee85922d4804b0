package twofa

import (
	"context"
	"errors"
	"fmt"
	"strings"

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
	"github.com/shandysiswandi/gotwofa/internal/twofa/entity"
	"github.com/shandysiswandi/gotwofa/internal/twofa/inbound"
	"github.com/shandysiswandi/gotwofa/internal/twofa/outbound/cache"
	"github.com/shandysiswandi/gotwofa/internal/twofa/outbound/db"
	"github.com/shandysiswandi/gotwofa/internal/twofa/outbound/memory"
	"github.com/shandysiswandi/gotwofa/internal/twofa/outbound/mq"
	"github.com/shandysiswandi/gotwofa/internal/twofa/usecase"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

var (
	ErrUnknownStoreDriver = errors.New("twofa: unknown store driver")
	ErrMissingConnection  = errors.New("twofa: store driver needs a connection")
)

// Dependency lists what the module needs. DBConn and CacheConn are only
// required by the postgres and redis store drivers.
type Dependency struct {
	DBConn       *pgxpool.Pool
	CacheConn    redis.UniversalClient
	Goroutine    *goroutine.Manager         `validate:"required"`
	Router       *router.Router             `validate:"required"`
	Messaging    messaging.Messaging        `validate:"required"`
	Config       config.Config              `validate:"required"`
	Instrument   instrument.Instrumentation `validate:"required"`
	UID          uid.NumberID               `validate:"required"`
	OID          uid.StringID               `validate:"required"`
	Password     hash.Hash                  `validate:"required"`
	MFAEncryptor mfa.Encryptor              `validate:"required"`
	Clock        clock.Clocker              `validate:"required"`
	Totp         otp.OTP                    `validate:"required"`
	QRCode       qrcode.Renderer            `validate:"required"`
	Validator    validator.Validator        `validate:"required"`
}

type userStore interface {
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserByID(ctx context.Context, id string) (*entity.User, error)
	UpdateUserRequire2FA(ctx context.Context, id string, require2FA bool) error
}

type secretStore interface {
	GetSecretByUserID(ctx context.Context, userID string) (*entity.Secret, error)
	CreateSecret(ctx context.Context, secret entity.Secret) error
}

type sessionStore interface {
	GetSession(ctx context.Context, key entity.SessionKey) (*entity.Session, error)
	CreateSession(ctx context.Context, session entity.Session) error
	MarkSessionVerified(ctx context.Context, session entity.Session) error
	DeleteSessions(ctx context.Context, key entity.SessionKey) (int64, error)
}

type stores struct {
	user    userStore
	secret  secretStore
	session sessionStore
	// setup is set only when users and sessions live in the same database.
	setup *db.DB
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	st, err := newStores(dep)
	if err != nil {
		return err
	}

	repoMsg := mq.NewMessaging(dep.Messaging, dep.OID, dep.Instrument)

	ucDep := usecase.Dependency{
		RepoUser:      st.user,
		RepoSecret:    st.secret,
		RepoSession:   st.session,
		RepoMessaging: repoMsg,
		Validator:     dep.Validator,
		Password:      dep.Password,
		Totp:          dep.Totp,
		QRCode:        dep.QRCode,
		UID:           dep.UID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	}
	if st.setup != nil {
		ucDep.RepoSetup = st.setup
	}
	uc := usecase.New(ucDep)

	inbound.RegisterHTTPEndpoint(
		dep.Router,
		dep.Config.GetString("modules.twofa.route_prefix"),
		inbound.NewHeaderDevice(dep.Config.GetString("modules.twofa.device_header")),
		uc,
	)

	return nil
}

func newStores(dep Dependency) (stores, error) {
	driver := strings.ToLower(strings.TrimSpace(dep.Config.GetString("store.driver")))
	sessionDriver := strings.ToLower(strings.TrimSpace(dep.Config.GetString("store.session_driver")))
	if sessionDriver == "" {
		sessionDriver = driver
	}

	var st stores
	var mem *memory.Store
	var pg *db.DB

	switch driver {
	case DriverMemory:
		var err error
		mem, err = memory.NewFromFile(dep.Config.GetString("store.memory.users_file"))
		if err != nil {
			return stores{}, err
		}
		st.user, st.secret = mem, mem
	case DriverPostgres:
		if dep.DBConn == nil {
			return stores{}, fmt.Errorf("%w: %s", ErrMissingConnection, driver)
		}
		pg = db.NewDB(dep.DBConn, dep.MFAEncryptor, dep.Instrument)
		st.user, st.secret = pg, pg
	default:
		return stores{}, fmt.Errorf("%w: %q", ErrUnknownStoreDriver, driver)
	}

	switch sessionDriver {
	case DriverMemory:
		if mem == nil {
			mem = memory.New()
		}
		st.session = mem
	case DriverPostgres:
		if dep.DBConn == nil {
			return stores{}, fmt.Errorf("%w: %s", ErrMissingConnection, sessionDriver)
		}
		if pg == nil {
			st.session = db.NewDB(dep.DBConn, dep.MFAEncryptor, dep.Instrument)
			break
		}
		st.session, st.setup = pg, pg
	case DriverRedis:
		if dep.CacheConn == nil {
			return stores{}, fmt.Errorf("%w: %s", ErrMissingConnection, sessionDriver)
		}
		st.session = cache.New(dep.CacheConn, dep.Config.GetString("store.redis.prefix"), dep.Instrument)
	default:
		return stores{}, fmt.Errorf("%w: %q", ErrUnknownStoreDriver, sessionDriver)
	}

	return st, nil
}
