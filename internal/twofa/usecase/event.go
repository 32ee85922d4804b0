package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/gotwofa/internal/twofa/entity"
)

type SessionEventType string

const (
	SessionEventCreated   SessionEventType = "twofa.session.created"
	SessionEventVerified  SessionEventType = "twofa.session.verified"
	SessionEventLoggedOut SessionEventType = "twofa.session.logged_out"
	SessionEventEnabled   SessionEventType = "twofa.enabled"
)

type SessionEvent struct {
	Type       SessionEventType
	UserID     string
	DeviceID   string
	State      entity.SessionState
	OccurredAt time.Time
}

// publish hands ev to the goroutine manager. Delivery failures are logged
// and never reach the caller; the request context is detached so the event
// survives the response.
func (s *Usecase) publish(ctx context.Context, ev SessionEvent) {
	if s.repoMessaging == nil {
		return
	}

	ev.OccurredAt = s.clock.Now()
	ctx = context.WithoutCancel(ctx)

	accepted := s.goroutine.Go(ctx, func(ctx context.Context) error {
		if err := s.repoMessaging.PublishSessionEvent(ctx, ev); err != nil {
			slog.ErrorContext(ctx, "failed to publish session event", "type", ev.Type, "user_id", ev.UserID, "error", err)
		}
		return nil
	})
	if !accepted {
		slog.WarnContext(ctx, "session event dropped", "type", ev.Type, "user_id", ev.UserID)
	}
}
