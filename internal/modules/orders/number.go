package orders

import (
	"crypto/rand"
	"math/big"
	"time"
)

// no 0/O or 1/I so numbers survive being read out over the phone
const numberAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// NewNumber returns a customer-facing order number like HC-251021-7KQ2MX.
func NewNumber(at time.Time) string {
	b := make([]byte, 6)
	max := big.NewInt(int64(len(numberAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		b[i] = numberAlphabet[n.Int64()]
	}
	return "HC-" + at.Format("060102") + "-" + string(b)
}
