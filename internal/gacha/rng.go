package gacha

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource abstract
type RandomSource interface {
	Float64() float64 // [0, 1)
}

// crypto random : default generation method
type cryptoRNG struct{}

func (cryptoRNG) Float64() float64 {
	// Read 53bit random => [0, 1)
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		// back to math/rand/v2
		return rand.Float64()
	}
	u := binary.BigEndian.Uint64(buf[:]) >> 11 // 53 bits
	return float64(u) / (1 << 53)
}

func DefaultRNG() RandomSource { return cryptoRNG{} }

// Replicable RNG (e.g. Monte Carlo, tests)
type seededRNG struct{ r *rand.Rand }

func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Float64() float64 { return s.r.Float64() }

// StreamRNG returns a seeded source for one pool. Each (seed, kind) pair gets its
// own PCG stream so two pools never consume from the same generator.
// A zero seed means crypto randomness.
func StreamRNG(seed uint64, kind PoolKind) RandomSource {
	if seed == 0 {
		return DefaultRNG()
	}
	var stream uint64
	for _, c := range []byte(kind) {
		stream = stream*31 + uint64(c)
	}
	return &seededRNG{r: rand.New(rand.NewPCG(seed, stream))}
}

// clampSample keeps a sample inside [0,1); the engine trusts its source but
// a pick index must never run off the end of a slice.
func clampSample(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x >= 1 {
		return 1 - 1e-12
	}
	return x
}
