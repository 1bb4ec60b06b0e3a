package notifier

import (
	"testing"

	"sharedspace/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCreateMessage(t *testing.T) {
	e := models.BookingEvent{
		Kind:                models.EventBookingConfirmed,
		TransactionID:       "txn_1_abc",
		UserID:              7,
		UserEmail:           "ana@example.com",
		UserName:            "Ana Lim",
		SpaceName:           "KL Badminton Arena",
		SpaceLocation:       "Jalan Ampang, Kuala Lumpur",
		Date:                "2026-10-20",
		StartTime:           "10:00",
		EndTime:             "12:00",
		Amount:              90,
		Currency:            "MYR",
		PaymentMethod:       models.PaymentCard,
		LoyaltyTokensEarned: 5,
	}

	subject, body := CreateMessage(e)
	assert.Equal(t, "New booking", subject)
	assert.Contains(t, body, "KL Badminton Arena (Jalan Ampang, Kuala Lumpur)")
	assert.Contains(t, body, "2026-10-20, 10:00 - 12:00")
	assert.Contains(t, body, "MYR 90.00 (stripe)")
	assert.Contains(t, body, "Ana Lim <ana@example.com>")
	assert.Contains(t, body, "Loyalty tokens earned: 5")

	e.Kind = models.EventBookingCancelled
	e.UserName, e.UserEmail = "", ""
	subject, body = CreateMessage(e)
	assert.Equal(t, "Booking cancelled", subject)
	assert.Contains(t, body, "Customer: user #7")
	assert.NotContains(t, body, "Loyalty tokens")
}
