package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/gotwofa/internal/pkg/instrument"
	"github.com/shandysiswandi/gotwofa/internal/pkg/messaging"
	"github.com/shandysiswandi/gotwofa/internal/pkg/uid"
	"github.com/shandysiswandi/gotwofa/internal/shared/event"
	"github.com/shandysiswandi/gotwofa/internal/twofa/usecase"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Messaging
	uid    uid.StringID
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, id uid.StringID, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, uid: id, ins: ins}
}

func (m *Messaging) PublishSessionEvent(ctx context.Context, msg usecase.SessionEvent) error {
	ctx, span := m.ins.Tracer("twofa.outbound.mq").Start(ctx, "PublishSessionEvent")
	defer span.End()

	body, err := json.Marshal(event.SessionMessage{
		ID:         m.uid.Generate(),
		Type:       string(msg.Type),
		UserID:     msg.UserID,
		DeviceID:   msg.DeviceID,
		State:      msg.State.String(),
		OccurredAt: msg.OccurredAt.UnixMilli(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, event.SessionDestination, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(msg.UserID),
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
