package shoe

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	"golang.org/x/crypto/chacha20"
)

// Shuffler permutes n elements through swap.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// keystreamSource turns a ChaCha20 keystream into a rand.Source.
type keystreamSource struct {
	cipher *chacha20.Cipher
	buf    [8]byte
}

func (s *keystreamSource) Uint64() uint64 {
	clear(s.buf[:])
	s.cipher.XORKeyStream(s.buf[:], s.buf[:])
	return binary.LittleEndian.Uint64(s.buf[:])
}

type cipherShuffler struct {
	rng *rand.Rand
}

func (c *cipherShuffler) Shuffle(n int, swap func(i, j int)) {
	c.rng.Shuffle(n, swap)
}

// NewSeededShuffler returns a deterministic shuffler keyed by seed.
func NewSeededShuffler(seed [chacha20.KeySize]byte) (Shuffler, error) {
	nonce := make([]byte, chacha20.NonceSize)
	c, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to create shuffle cipher: %w", err)
	}
	return &cipherShuffler{rng: rand.New(&keystreamSource{cipher: c})}, nil
}

// NewCryptoShuffler returns a shuffler keyed from the operating system's
// random source.
func NewCryptoShuffler() (Shuffler, error) {
	var seed [chacha20.KeySize]byte
	if _, err := crand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("failed to read shuffle key: %w", err)
	}
	return NewSeededShuffler(seed)
}

// SeedFromInt expands a small integer into a shuffle key; handy for tests
// and for reproducing a reported shoe.
func SeedFromInt(n uint64) [chacha20.KeySize]byte {
	var seed [chacha20.KeySize]byte
	binary.LittleEndian.PutUint64(seed[:], n)
	return seed
}
