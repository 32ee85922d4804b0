package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

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
	"github.com/shandysiswandi/gotwofa/internal/twofa/outbound/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testDevice = "Mozilla/5.0 (X11; Linux x86_64)"
	testEmail  = "alice@example.com"
	testPass   = "s3cret"
)

var testNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

type recordedEvents struct {
	mu     sync.Mutex
	events []SessionEvent
	err    error
}

func (r *recordedEvents) PublishSessionEvent(_ context.Context, ev SessionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recordedEvents) types() []SessionEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SessionEventType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

// failingSessions breaks MarkSessionVerified on top of a working store.
type failingSessions struct {
	*memory.Store
}

func (failingSessions) MarkSessionVerified(context.Context, entity.Session) error {
	return errors.New("session store unavailable")
}

// txSetup applies enrollment writes to the memory store as one unit and
// counts its calls. With fail set it writes nothing.
type txSetup struct {
	store *memory.Store
	fail  bool
	calls int
}

func (s *txSetup) CompleteSetup(ctx context.Context, userID string, enable bool, verified *entity.Session) error {
	s.calls++
	if s.fail {
		return errors.New("transaction aborted")
	}
	if enable {
		if err := s.store.UpdateUserRequire2FA(ctx, userID, true); err != nil {
			return err
		}
	}
	if verified != nil {
		return s.store.MarkSessionVerified(ctx, *verified)
	}
	return nil
}

type fixture struct {
	uc     *Usecase
	store  *memory.Store
	events *recordedEvents
	gm     *goroutine.Manager
	clock  *clock.Fixed
	totp   *otp.TOTP
}

// wait drains pending event publications.
func (f *fixture) wait(t *testing.T) {
	t.Helper()
	require.NoError(t, f.gm.Wait())
}

func (f *fixture) code(t *testing.T, userID string) string {
	t.Helper()
	sec, err := f.store.GetSecretByUserID(context.Background(), userID)
	require.NoError(t, err)
	code, err := f.totp.GenerateCode(sec.Value, f.clock.Now())
	require.NoError(t, err)
	return code
}

type fixtureOption func(*Dependency, *memory.Store)

func withFailingSessionUpdate() fixtureOption {
	return func(dep *Dependency, store *memory.Store) {
		dep.RepoSession = failingSessions{Store: store}
	}
}

// withTxSetup routes enrollment through tx and breaks the standalone session
// write, so only the transactional path can succeed.
func withTxSetup(tx *txSetup) fixtureOption {
	return func(dep *Dependency, store *memory.Store) {
		tx.store = store
		dep.RepoSetup = tx
		dep.RepoSession = failingSessions{Store: store}
	}
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	store := memory.New(entity.User{
		ID:       "u1",
		Email:    testEmail,
		Username: "alice",
		Password: testPass,
	})

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	sf, err := uid.NewSnowflakeWithNode(1)
	require.NoError(t, err)

	fc := clock.NewFixed(testNow)
	totp := otp.NewTOTP("2FA", 30, 1, 6)
	events := &recordedEvents{}
	gm := goroutine.NewManager(8)

	dep := Dependency{
		RepoUser:      store,
		RepoSecret:    store,
		RepoSession:   store,
		RepoMessaging: events,
		Validator:     v,
		Password:      hash.NewPlain(),
		Totp:          totp,
		QRCode:        qrcode.NewPNG(128),
		UID:           sf,
		Clock:         fc,
		Instrument:    instrument.NewNoop(),
		Goroutine:     gm,
	}
	for _, opt := range opts {
		opt(&dep, store)
	}

	return &fixture{
		uc:     New(dep),
		store:  store,
		events: events,
		gm:     gm,
		clock:  fc,
		totp:   totp,
	}
}

func assertBusiness(t *testing.T, err error, code goerror.Code, msg string) {
	t.Helper()

	var ge *goerror.Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, goerror.TypeBusiness, ge.Type())
	assert.Equal(t, code, ge.Code())
	assert.Equal(t, msg, ge.Msg())
}
