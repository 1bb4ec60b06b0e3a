package rabbitmq

import (
	"encoding/json"
	"testing"
	"time"

	"sharedspace/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishing(t *testing.T) {
	at := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	event := models.BookingEvent{
		Kind:          models.EventBookingConfirmed,
		TransactionID: "txn_1_abc",
		SpaceID:       "3",
		Amount:        120,
		OccurredAt:    at,
	}

	msg, err := publishing(event)
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, models.EventBookingConfirmed, msg.Type)
	assert.Equal(t, "txn_1_abc:booking.confirmed", msg.MessageId)
	assert.True(t, msg.Timestamp.Equal(at))

	var decoded models.BookingEvent
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, event.TransactionID, decoded.TransactionID)
	assert.Equal(t, event.Amount, decoded.Amount)
}

func TestPublishingDefaultsTimestamp(t *testing.T) {
	msg, err := publishing(models.BookingEvent{Kind: models.EventBookingCancelled})
	require.NoError(t, err)
	assert.False(t, msg.Timestamp.IsZero())
}
