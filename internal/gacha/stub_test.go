package gacha

import "fmt"

// fixedRNG always returns the same sample.
type fixedRNG float64

func (f fixedRNG) Float64() float64 { return float64(f) }

// scriptRNG replays samples in order and repeats the last one.
type scriptRNG struct {
	xs []float64
	i  int
}

func (s *scriptRNG) Float64() float64 {
	if s.i >= len(s.xs) {
		return s.xs[len(s.xs)-1]
	}
	x := s.xs[s.i]
	s.i++
	return x
}

// testCatalog has three candidates per tier for both pools.
var testCatalog = CatalogFunc(func(kind PoolKind, r Rarity) []Reward {
	if kind == PoolCharacter && r == ThreeStar {
		return nil
	}
	out := make([]Reward, 3)
	for i := range out {
		out[i] = Reward{ID: fmt.Sprintf("%s-%d-%d", kind, r, i), Name: fmt.Sprintf("%s %s #%d", kind, r, i)}
	}
	return out
})

func mustPool(rules Rules, cat Catalog, rng RandomSource) *Pool {
	p, err := NewPool(rules, cat, rng)
	if err != nil {
		panic(err)
	}
	return p
}
