package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/gotwofa/internal/pkg/clock"
	"github.com/shandysiswandi/gotwofa/internal/pkg/goerror"
	"github.com/shandysiswandi/gotwofa/internal/pkg/goroutine"
	"github.com/shandysiswandi/gotwofa/internal/pkg/hash"
	"github.com/shandysiswandi/gotwofa/internal/pkg/instrument"
	"github.com/shandysiswandi/gotwofa/internal/pkg/otp"
	"github.com/shandysiswandi/gotwofa/internal/pkg/qrcode"
	"github.com/shandysiswandi/gotwofa/internal/pkg/uid"
	"github.com/shandysiswandi/gotwofa/internal/pkg/validator"
	"github.com/shandysiswandi/gotwofa/internal/twofa/entity"
	"go.opentelemetry.io/otel/trace"
)

// Client-facing messages.
const (
	MsgUserNotFound   = "User not found!"
	MsgWrongPassword  = "Wrong password!"
	MsgSecretNotFound = "Two-Factor Secret Key not found!"
	MsgInvalidOTP     = "Invalid OTP Token"
)

type repoUser interface {
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserByID(ctx context.Context, id string) (*entity.User, error)
	UpdateUserRequire2FA(ctx context.Context, id string, require2FA bool) error
}

type repoSecret interface {
	GetSecretByUserID(ctx context.Context, userID string) (*entity.Secret, error)
	// CreateSecret returns goerror.ErrConflict when the user already has one.
	CreateSecret(ctx context.Context, secret entity.Secret) error
}

type repoSession interface {
	// GetSession returns the canonical (first stored) row for key.
	GetSession(ctx context.Context, key entity.SessionKey) (*entity.Session, error)
	CreateSession(ctx context.Context, session entity.Session) error
	// MarkSessionVerified persists Is2FAVerified=true on the given row.
	MarkSessionVerified(ctx context.Context, session entity.Session) error
	// DeleteSessions removes every row for key and returns how many were removed.
	DeleteSessions(ctx context.Context, key entity.SessionKey) (int64, error)
}

// repoSetup is implemented by stores that hold both users and sessions and
// can apply the enrollment writes in one transaction.
type repoSetup interface {
	CompleteSetup(ctx context.Context, userID string, enable bool, verified *entity.Session) error
}

type repoMessaging interface {
	PublishSessionEvent(ctx context.Context, ev SessionEvent) error
}

type Usecase struct {
	repoUser      repoUser
	repoSecret    repoSecret
	repoSession   repoSession
	repoSetup     repoSetup
	repoMessaging repoMessaging
	validator     validator.Validator
	password      hash.Hash
	totp          otp.OTP
	qr            qrcode.Renderer
	uid           uid.NumberID
	clock         clock.Clocker
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager
}

type Dependency struct {
	RepoUser      repoUser
	RepoSecret    repoSecret
	RepoSession   repoSession
	RepoSetup     repoSetup
	RepoMessaging repoMessaging
	Validator     validator.Validator
	Password      hash.Hash
	Totp          otp.OTP
	QRCode        qrcode.Renderer
	UID           uid.NumberID
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoUser:      dep.RepoUser,
		repoSecret:    dep.RepoSecret,
		repoSession:   dep.RepoSession,
		repoSetup:     dep.RepoSetup,
		repoMessaging: dep.RepoMessaging,
		validator:     dep.Validator,
		password:      dep.Password,
		totp:          dep.Totp,
		qr:            dep.QRCode,
		uid:           dep.UID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("twofa.usecase").Start(ctx, name)
}

func (s *Usecase) getUser(ctx context.Context, id string) (*entity.User, error) {
	user, err := s.repoUser.GetUserByID(ctx, id)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "user_id", id)
		return nil, goerror.NewNotFound(MsgUserNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", id, "error", err)
		return nil, goerror.NewServer(err)
	}

	return user, nil
}

// getSession returns nil when key has no session row.
func (s *Usecase) getSession(ctx context.Context, key entity.SessionKey) (*entity.Session, error) {
	sess, err := s.repoSession.GetSession(ctx, key)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get session", "user_id", key.UserID, "device_id", key.DeviceID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return sess, nil
}
