package ledger

import (
	"crypto/rand"
	"strconv"
	"strings"
	"time"
)

const (
	redemptionCodePrefix     = "PR"
	redemptionCodeRandomSize = 6
	base36Alphabet           = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// NewRedemptionCode produces an opaque display code for a redemption,
// e.g. "PR-M1X2K9QZ-4F7A2B". Unique enough for support lookups; not a
// security token.
func NewRedemptionCode() string {
	timestamp := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))

	buf := make([]byte, redemptionCodeRandomSize)
	random := make([]byte, redemptionCodeRandomSize)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is effectively unrecoverable; fall back to
		// a time-derived suffix so redemption still completes.
		nano := strconv.FormatInt(time.Now().UnixNano(), 36)
		copy(random, strings.ToUpper(nano))
	} else {
		for i, b := range buf {
			random[i] = base36Alphabet[int(b)%len(base36Alphabet)]
		}
	}

	return redemptionCodePrefix + "-" + timestamp + "-" + string(random[:redemptionCodeRandomSize])
}
