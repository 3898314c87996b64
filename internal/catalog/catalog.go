// Package catalog holds the concrete rewards of each pool, grouped by tier.
package catalog

import (
	"sort"

	"github.com/xtding233/gacha-sim/internal/gacha"
)

// Catalog is an immutable set of candidates per (pool, rarity).
// It implements gacha.Catalog and is safe for concurrent reads.
type Catalog struct {
	tiers map[gacha.PoolKind]map[gacha.Rarity][]gacha.Reward
}

// Builder collects entries before freezing them into a Catalog.
type Builder struct {
	tiers map[gacha.PoolKind]map[gacha.Rarity][]gacha.Reward
}

func NewBuilder() *Builder {
	return &Builder{tiers: make(map[gacha.PoolKind]map[gacha.Rarity][]gacha.Reward)}
}

// Add appends rewards to a tier.
func (b *Builder) Add(kind gacha.PoolKind, r gacha.Rarity, rewards ...gacha.Reward) *Builder {
	m, ok := b.tiers[kind]
	if !ok {
		m = make(map[gacha.Rarity][]gacha.Reward)
		b.tiers[kind] = m
	}
	for _, rw := range rewards {
		rw.Rarity = r
		m[r] = append(m[r], rw)
	}
	return b
}

// Build freezes the builder; later Adds do not affect the result.
func (b *Builder) Build() *Catalog {
	out := make(map[gacha.PoolKind]map[gacha.Rarity][]gacha.Reward, len(b.tiers))
	for kind, m := range b.tiers {
		cp := make(map[gacha.Rarity][]gacha.Reward, len(m))
		for r, rs := range m {
			cp[r] = append([]gacha.Reward(nil), rs...)
		}
		out[kind] = cp
	}
	return &Catalog{tiers: out}
}

// Candidates returns the tier's rewards. The slice must not be modified.
func (c *Catalog) Candidates(kind gacha.PoolKind, r gacha.Rarity) []gacha.Reward {
	if c == nil {
		return nil
	}
	return c.tiers[kind][r]
}

// Size is the number of candidates in a tier.
func (c *Catalog) Size(kind gacha.PoolKind, r gacha.Rarity) int {
	return len(c.Candidates(kind, r))
}

// Rarities lists the non-empty tiers of a pool, highest first.
func (c *Catalog) Rarities(kind gacha.PoolKind) []gacha.Rarity {
	if c == nil {
		return nil
	}
	var out []gacha.Rarity
	for r, rs := range c.tiers[kind] {
		if len(rs) > 0 {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] > out[j] })
	return out
}
