// Package simulator is the deterministic replay engine: it consumes a
// journal produced by the Observer and reproduces the per-event state
// trajectory byte-for-byte, verifying it against a reference hash log
// when one is supplied.
package simulator

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/Shiva-129/OmniTrade-system/decimal"
)

// Config is the immutable configuration of a single replay run, grounded
// on context.py's SimulatorConfig: content-hashed so two runs can be
// proven to share the same seed, journal, and dependency surface before
// their hash logs are compared.
type Config struct {
	ConfigHash          string
	RngSeed             int64
	JournalPath         string
	DependencyVersions  map[string]string
}

// ComputeConfigHash derives the content hash the same way
// SimulatorConfig._compute_hash does: seed, journal path, and sorted
// dependency versions, SHA-256'd and truncated to 16 hex characters.
func ComputeConfigHash(seed int64, journalPath string, deps map[string]string) string {
	keys := make([]string, 0, len(deps))
	for k := range deps {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d:%s:[", seed, journalPath))
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("('%s', '%s')", k, deps[k]))
	}
	sb.WriteString("]")

	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])[:16]
}

// VerifyHash recomputes the config hash and compares it to c.ConfigHash.
func (c Config) VerifyHash() bool {
	return ComputeConfigHash(c.RngSeed, c.JournalPath, c.DependencyVersions) == c.ConfigHash
}

// RNG is a thin wrapper around a seeded math/rand source, grounded on
// context.py's DeterministicRNG: the replay loop's only source of
// randomness, reproducible given a seed.
type RNG struct {
	seed int64
	r    *rand.Rand
}

// NewRNG returns an RNG seeded deterministically.
func NewRNG(seed int64) *RNG {
	return &RNG{seed: seed, r: rand.New(rand.NewSource(seed))}
}

func (g *RNG) Seed() int64       { return g.seed }
func (g *RNG) Intn(n int) int    { return g.r.Intn(n) }
func (g *RNG) Float64() float64  { return g.r.Float64() }

// DecimalContext returns the single decimal arithmetic context the
// replay loop must use for every operation — the same context production
// uses (decimal.Context), never a replay-local one. Unlike
// context.py's init_decimal_context, which mutates Python's ambient
// thread-local decimal context, Go has no ambient context to mutate:
// every apd operation takes its Context explicitly, so sharing the
// context means passing this value, not calling a setup function.
func DecimalContext() apd.Context {
	return decimal.Context
}
