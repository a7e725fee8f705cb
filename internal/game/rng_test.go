package game

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"reflex_drills/internal/logger"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy unavailable") }

func TestCryptoRandLogsReadFailure(t *testing.T) {
	var buf bytes.Buffer
	r := cryptoRand{src: failingReader{}, log: logger.New(&buf, "warn", false)}

	assert.Equal(t, 0, r.IntN(9))
	assert.Contains(t, buf.String(), "crypto/rand read failed")
	assert.Contains(t, buf.String(), "entropy unavailable")
}

func TestCryptoRandStaysInRange(t *testing.T) {
	r := CryptoRand()
	for i := 0; i < 200; i++ {
		v := r.IntN(9)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 9)
	}
}
