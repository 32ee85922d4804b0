package mq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shandysiswandi/gotwofa/internal/pkg/instrument"
	"github.com/shandysiswandi/gotwofa/internal/pkg/messaging"
	"github.com/shandysiswandi/gotwofa/internal/shared/event"
	"github.com/shandysiswandi/gotwofa/internal/twofa/entity"
	"github.com/shandysiswandi/gotwofa/internal/twofa/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

func TestMessaging_PublishSessionEvent(t *testing.T) {
	t.Run("publishes a keyed json message", func(t *testing.T) {
		// Arrange
		client := messaging.NewMemory(0)
		m := NewMessaging(client, fixedID("evt-1"), instrument.NewNoop())
		ctx := instrument.SetCorrelationID(context.Background(), "cid-42")
		at := time.UnixMilli(1_700_000_000_123)

		// Act
		err := m.PublishSessionEvent(ctx, usecase.SessionEvent{
			Type:       usecase.SessionEventVerified,
			UserID:     "u1",
			DeviceID:   "curl/8.5.0",
			State:      entity.SessionVerified,
			OccurredAt: at,
		})

		// Assert
		require.NoError(t, err)
		msgs := client.Messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, event.SessionDestination, msgs[0].Destination)
		assert.Equal(t, []byte("u1"), msgs[0].Message.Key)
		require.Len(t, msgs[0].Message.Headers, 1)
		assert.Equal(t, "cID", msgs[0].Message.Headers[0].Key)
		assert.Equal(t, []byte("cid-42"), msgs[0].Message.Headers[0].Value)

		var body event.SessionMessage
		require.NoError(t, json.Unmarshal(msgs[0].Message.Body, &body))
		assert.Equal(t, event.SessionMessage{
			ID:         "evt-1",
			Type:       "twofa.session.verified",
			UserID:     "u1",
			DeviceID:   "curl/8.5.0",
			State:      "Verified",
			OccurredAt: 1_700_000_000_123,
		}, body)
	})

	t.Run("returns broker errors", func(t *testing.T) {
		// Arrange
		client := messaging.NewMemory(0)
		require.NoError(t, client.Close())
		m := NewMessaging(client, fixedID("evt-1"), instrument.NewNoop())

		// Act
		err := m.PublishSessionEvent(context.Background(), usecase.SessionEvent{Type: usecase.SessionEventCreated, UserID: "u1"})

		// Assert
		assert.ErrorIs(t, err, messaging.ErrClosed)
	})
}
