package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// ==================== SESSION TOKEN ====================

func GenerateSessionToken() uuid.UUID {
	return uuid.New()
}

// ==================== BOOKING CODE ====================

// GenerateBookingCode creates a human-readable booking reference.
// Format: TRV-YYYYMMDD-XXXXXX
func GenerateBookingCode(now time.Time) string {
	return fmt.Sprintf("TRV-%s-%s", now.Format("20060102"), randomString(6, codeAlphabet))
}

// ==================== REFERRAL CODE ====================

// no 0/O/1/I to keep codes readable over the phone
const codeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// GenerateReferralCode mints a code from the username prefix plus random suffix.
func GenerateReferralCode(prefix string) string {
	p := make([]rune, 0, 4)
	for _, r := range prefix {
		if len(p) == 4 {
			break
		}
		switch {
		case r >= 'a' && r <= 'z':
			p = append(p, r-'a'+'A')
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			p = append(p, r)
		}
	}
	if len(p) == 0 {
		p = []rune("TRIP")
	}
	return string(p) + randomString(6, codeAlphabet)
}

func randomString(n int, alphabet string) string {
	out := make([]byte, n)
	max := big.NewInt(int64(len(alphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			idx = big.NewInt(time.Now().UnixNano() % int64(len(alphabet)))
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out)
}
