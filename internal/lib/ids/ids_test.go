package ids

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormats(t *testing.T) {
	now := time.UnixMilli(1760860800000)

	assert.Regexp(t, regexp.MustCompile(`^txn_1760860800000_[0-9a-f]{9}$`), TransactionID(now))
	assert.Regexp(t, regexp.MustCompile(`^0x[0-9a-f]{64}$`), TransactionHash())

	id := PaymentIntentID()
	assert.Regexp(t, regexp.MustCompile(`^pi_demo_[0-9a-f]{9}$`), id)
	assert.Regexp(t, regexp.MustCompile(`^pi_demo_[0-9a-f]{9}_secret_[0-9a-f]{9}$`), ClientSecret(id))
	assert.Regexp(t, regexp.MustCompile(`^pi_[0-9a-f]{20}_secret_[0-9a-f]{20}$`), CardReference())
}

func TestTokenIsRandom(t *testing.T) {
	assert.NotEqual(t, Token(16), Token(16))
	assert.Len(t, Token(100), 64)
}
