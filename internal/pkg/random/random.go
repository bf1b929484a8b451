// Package random draws values from an injected entropy source. Production code
// passes crypto/rand.Reader; tests pass a seeded reader.
package random

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	mrand "math/rand/v2"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Default is the secure source used when a caller does not inject one.
var Default io.Reader = rand.Reader

// Seeded returns a deterministic reader for tests and reproducible fixtures.
func Seeded(seed byte) io.Reader {
	var s [32]byte
	for i := range s {
		s[i] = seed
	}
	return mrand.NewChaCha8(s)
}

// Bytes32 reads 32 random bytes.
func Bytes32(r io.Reader) (common.Hash, error) {
	var h common.Hash
	if _, err := io.ReadFull(r, h[:]); err != nil {
		return common.Hash{}, fmt.Errorf("read randomness: %w", err)
	}
	return h, nil
}

// Uint returns a random integer of the given byte width.
func Uint(r io.Reader, size int) (*uint256.Int, error) {
	if size <= 0 || size > 32 {
		return nil, fmt.Errorf("random width %d out of range", size)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read randomness: %w", err)
	}
	return new(uint256.Int).SetBytes(buf), nil
}

// Below returns a uniform value in [0, n) by rejection sampling.
func Below(r io.Reader, n uint64) (uint64, error) {
	if n == 0 {
		return 0, fmt.Errorf("empty range")
	}
	// 2^64 mod n; values below it would bias the low residues
	threshold := -n % n
	var buf [8]byte
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, fmt.Errorf("read randomness: %w", err)
		}
		v := binary.BigEndian.Uint64(buf[:])
		if v >= threshold {
			return v % n, nil
		}
	}
}
