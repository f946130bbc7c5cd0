package teamname

import (
	"bytes"
	"errors"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomStartIndex(t *testing.T) {
	t.Run("degrades to zero on entropy failure", func(t *testing.T) {
		r := iotest.ErrReader(errors.New("entropy unavailable"))
		assert.Equal(t, 0, randomStartIndex(r, 100))
	})

	t.Run("tiny spaces skip the reader", func(t *testing.T) {
		r := iotest.ErrReader(errors.New("must not be read"))
		assert.Equal(t, 0, randomStartIndex(r, 1))
		assert.Equal(t, 0, randomStartIndex(r, 0))
	})

	t.Run("stays in range", func(t *testing.T) {
		for range 200 {
			idx := randomStartIndex(nil, 7)
			require.GreaterOrEqual(t, idx, 0)
			require.Less(t, idx, 7)
		}
	})
}

func TestRandomSuffix(t *testing.T) {
	s, err := randomSuffix(bytes.NewReader([]byte{0xab, 0xcd, 0xef}), 5)
	require.NoError(t, err)
	assert.Equal(t, "ABCDE", s)

	_, err = randomSuffix(iotest.ErrReader(errors.New("boom")), 5)
	assert.Error(t, err)
}

func TestNewToken(t *testing.T) {
	token, err := newToken(bytes.NewReader(bytes.Repeat([]byte{0x0f}, tokenBytes)))
	require.NoError(t, err)
	assert.Equal(t, "0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f", token)

	_, err = newToken(bytes.NewReader([]byte{1, 2, 3}))
	assert.Error(t, err)
}

func TestFallbackSuffixWidth(t *testing.T) {
	assert.Equal(t, 5, fallbackSuffixWidth(0))
	assert.Equal(t, 5, fallbackSuffixWidth(3))
	assert.Equal(t, 6, fallbackSuffixWidth(4))
	assert.Equal(t, 12, fallbackSuffixWidth(fallbackMaxAttempts-1))
}

func TestConfigNormalized(t *testing.T) {
	cfg := Config{ReservationTTL: 5 * time.Second}.normalized()
	assert.Equal(t, MinTTL, cfg.ReservationTTL)
	assert.Equal(t, DefaultFallbackPrefix, cfg.FallbackPrefix)
	assert.Equal(t, DefaultMaxBatch, cfg.MaxBatch)

	assert.Equal(t, DefaultTTL, Config{}.normalized().ReservationTTL)
}
