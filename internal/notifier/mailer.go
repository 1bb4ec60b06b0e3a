package notifier

import (
	"fmt"
	"strings"

	"sharedspace/internal/models"

	"gopkg.in/gomail.v2"
)

type Mailer struct {
	Host     string
	Port     int
	Username string
	Password string
}

func (m *Mailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.Username)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)

	msg.SetBody("text/plain", body)

	dialer := gomail.NewDialer(m.Host, m.Port, m.Username, m.Password)
	return dialer.DialAndSend(msg)
}

// CreateMessage renders the administrator email for a booking event.
func CreateMessage(e models.BookingEvent) (string, string) {
	var subject, headline string

	switch e.Kind {
	case models.EventBookingCancelled:
		subject = "Booking cancelled"
		headline = "A booking was cancelled."
	default:
		subject = "New booking"
		headline = "A new booking was made."
	}

	var b strings.Builder
	b.WriteString(headline + "\n\n")
	fmt.Fprintf(&b, "Space: %s (%s)\n", e.SpaceName, e.SpaceLocation)
	fmt.Fprintf(&b, "Date: %s, %s - %s\n", e.Date, e.StartTime, e.EndTime)
	fmt.Fprintf(&b, "Amount: %s %.2f (%s)\n", e.Currency, e.Amount, e.PaymentMethod)

	customer := fmt.Sprintf("user #%d", e.UserID)
	if e.UserName != "" {
		customer = e.UserName
	}
	if e.UserEmail != "" {
		customer += " <" + e.UserEmail + ">"
	}
	fmt.Fprintf(&b, "Customer: %s\n", customer)

	if e.Kind != models.EventBookingCancelled && e.LoyaltyTokensEarned > 0 {
		fmt.Fprintf(&b, "Loyalty tokens earned: %d\n", e.LoyaltyTokensEarned)
	}
	fmt.Fprintf(&b, "Transaction: %s\n", e.TransactionID)

	return subject, b.String()
}
