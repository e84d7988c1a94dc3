package record

import (
	"encoding/hex"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces identifiers for records that lack one.
// Implemented by RandomGenerator (production) and FixedGenerator (tests).
type IDGenerator interface {
	Generate() string
}

// RandomGenerator returns random UUIDv4 tokens as 32 lowercase hex
// characters without dashes, e.g. "9f1c0e5a4b6d4c2f8e7a1b3c5d7e9f01".
//
// Thread-safety: RandomGenerator is stateless and safe for concurrent use.
type RandomGenerator struct{}

// Generate returns a new random token.
func (RandomGenerator) Generate() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// FixedGenerator returns predetermined tokens in order.
// Panics when exhausted so a test that backfills more than expected fails loudly.
type FixedGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedGenerator creates a generator that returns tokens in order.
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{tokens: tokens}
}

// Generate returns the next predetermined token.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.tokens) {
		panic("FixedGenerator: all tokens exhausted")
	}
	token := g.tokens[g.idx]
	g.idx++
	return token
}

// Used reports how many tokens have been handed out.
func (g *FixedGenerator) Used() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.idx
}
