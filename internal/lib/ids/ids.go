// Package ids generates the identifiers handed out for transactions and payments.
package ids

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Token returns n random lowercase hex characters, n <= 64.
func Token(n int) string {
	raw := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	if n > len(raw) {
		n = len(raw)
	}
	return raw[:n]
}

func TransactionID(now time.Time) string {
	return fmt.Sprintf("txn_%d_%s", now.UnixMilli(), Token(9))
}

// TransactionHash mimics a ledger transaction hash.
func TransactionHash() string {
	return "0x" + Token(64)
}

func PaymentIntentID() string {
	return "pi_demo_" + Token(9)
}

// ClientSecret derives the client secret handed to the payer for an intent.
func ClientSecret(intentID string) string {
	return intentID + "_secret_" + Token(9)
}

// CardReference stands in for an intent id when a card payment arrives without one.
func CardReference() string {
	return fmt.Sprintf("pi_%s_secret_%s", Token(20), Token(20))
}
