package teamname

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"math/big"
	"strings"
)

const (
	tokenBytes = 16

	fallbackSuffixLen   = 5
	fallbackMaxAttempts = 32
	// every fallbackWidenEvery conflicts the suffix grows by one character
	fallbackWidenEvery = 4
)

// randomStartIndex picks a uniform offset in [0, n). Entropy failure
// degrades to 0 instead of failing the reservation.
func randomStartIndex(r io.Reader, n int) int {
	if n <= 1 {
		return 0
	}
	if r == nil {
		r = rand.Reader
	}
	idx, err := rand.Int(r, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(idx.Int64())
}

func newToken(r io.Reader) (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// randomSuffix returns n upper-case hex characters.
func randomSuffix(r io.Reader, n int) (string, error) {
	b := make([]byte, (n+1)/2)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b))[:n], nil
}

func fallbackSuffixWidth(attempt int) int {
	return fallbackSuffixLen + attempt/fallbackWidenEvery
}
