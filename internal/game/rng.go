package game

import (
	"crypto/rand"
	"io"
	"log/slog"
	"math/big"
	mrand "math/rand/v2"
	"time"

	"reflex_drills/internal/logger"
)

// Rand is the randomness a session draws stimuli and delays from.
type Rand interface {
	// IntN returns a uniform value in [0, n). n must be positive.
	IntN(n int) int
}

type cryptoRand struct {
	src io.Reader
	log *slog.Logger
}

// CryptoRand returns a Rand backed by crypto/rand.
func CryptoRand() Rand {
	return cryptoRand{src: rand.Reader}
}

// IntN falls back to 0 when the entropy source fails; the failure is logged.
func (c cryptoRand) IntN(n int) int {
	v, err := rand.Int(c.src, big.NewInt(int64(n)))
	if err != nil {
		log := c.log
		if log == nil {
			log = logger.Get()
		}
		log.Warn("crypto/rand read failed, drawing 0", "n", n, "error", err)
		return 0
	}
	return int(v.Int64())
}

// NewSeededRand returns a deterministic Rand for tests and simulations.
func NewSeededRand(seed uint64) Rand {
	return mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// uniformDuration draws from the closed interval [lo, hi] at millisecond
// resolution.
func uniformDuration(r Rand, lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	span := int((hi-lo)/time.Millisecond) + 1
	return lo + time.Duration(r.IntN(span))*time.Millisecond
}
