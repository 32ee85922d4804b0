// Package cache stores sessions in Redis, one hash per (user, device).
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/gotwofa/internal/pkg/goerror"
	"github.com/shandysiswandi/gotwofa/internal/pkg/instrument"
	"github.com/shandysiswandi/gotwofa/internal/twofa/entity"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	fieldID        = "id"
	fieldUserID    = "user_id"
	fieldDeviceID  = "device_id"
	fieldVerified  = "is_2fa_verified"
	fieldLastLogin = "last_login"
)

// ErrCorruptSession is returned when a stored hash cannot be decoded.
var ErrCorruptSession = errors.New("cache: corrupt session hash")

// The first writer of a key wins; later inserts are ignored.
var createSessionLua = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
  return 0
end
redis.call("HSET", KEYS[1], unpack(ARGV))
return 1
`)

var markVerifiedLua = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], "is_2fa_verified", "1")
return 1
`)

type Cache struct {
	client redis.UniversalClient
	prefix string
	ins    instrument.Instrumentation
}

// New returns a session store writing keys under prefix, "twofa" when empty.
func New(client redis.UniversalClient, prefix string, ins instrument.Instrumentation) *Cache {
	if prefix == "" {
		prefix = "twofa"
	}
	return &Cache{client: client, prefix: prefix, ins: ins}
}

// key hashes the device id: it is an opaque header value of unbounded size.
func (c *Cache) key(k entity.SessionKey) string {
	sum := sha256.Sum256([]byte(k.DeviceID))
	return fmt.Sprintf("%s:session:%s:%s", c.prefix, k.UserID, hex.EncodeToString(sum[:16]))
}

func (c *Cache) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("twofa.outbound.cache").Start(ctx, name)
}

func (c *Cache) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) GetSession(ctx context.Context, key entity.SessionKey) (_ *entity.Session, err error) {
	ctx, span := c.startSpan(ctx, "GetSession")
	defer func() { c.endSpan(span, err) }()

	fields, err := c.client.HGetAll(ctx, c.key(key)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, goerror.ErrNotFound
	}

	return decodeSession(fields)
}

func (c *Cache) CreateSession(ctx context.Context, sess entity.Session) (err error) {
	ctx, span := c.startSpan(ctx, "CreateSession")
	defer func() { c.endSpan(span, err) }()

	args := []any{
		fieldID, strconv.FormatInt(sess.ID, 10),
		fieldUserID, sess.UserID,
		fieldDeviceID, sess.DeviceID,
		fieldVerified, formatBool(sess.Is2FAVerified),
		fieldLastLogin, strconv.FormatInt(sess.LastLogin.UnixMilli(), 10),
	}

	return createSessionLua.Run(ctx, c.client, []string{c.key(sess.Key())}, args...).Err()
}

func (c *Cache) MarkSessionVerified(ctx context.Context, sess entity.Session) (err error) {
	ctx, span := c.startSpan(ctx, "MarkSessionVerified")
	defer func() { c.endSpan(span, err) }()

	updated, err := markVerifiedLua.Run(ctx, c.client, []string{c.key(sess.Key())}).Int64()
	if err != nil {
		return err
	}
	if updated == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

func (c *Cache) DeleteSessions(ctx context.Context, key entity.SessionKey) (_ int64, err error) {
	ctx, span := c.startSpan(ctx, "DeleteSessions")
	defer func() { c.endSpan(span, err) }()

	return c.client.Del(ctx, c.key(key)).Result()
}

func decodeSession(fields map[string]string) (*entity.Session, error) {
	id, err := strconv.ParseInt(fields[fieldID], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: id: %v", ErrCorruptSession, err)
	}

	ms, err := strconv.ParseInt(fields[fieldLastLogin], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: last_login: %v", ErrCorruptSession, err)
	}

	return &entity.Session{
		ID:            id,
		UserID:        fields[fieldUserID],
		DeviceID:      fields[fieldDeviceID],
		Is2FAVerified: fields[fieldVerified] == "1",
		LastLogin:     time.UnixMilli(ms).UTC(),
	}, nil
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
