package gacha

import (
	"fmt"
	"strings"
)

// Rarity is a reward quality band.
type Rarity int

const (
	ThreeStar Rarity = 3
	FourStar  Rarity = 4
	FiveStar  Rarity = 5
)

func (r Rarity) String() string {
	switch r {
	case ThreeStar, FourStar, FiveStar:
		return strings.Repeat("★", int(r))
	default:
		return fmt.Sprintf("Rarity(%d)", int(r))
	}
}

// Valid reports whether r is one of the known tiers.
func (r Rarity) Valid() bool {
	return r == ThreeStar || r == FourStar || r == FiveStar
}

// PoolKind identifies an independently-stated reward category.
type PoolKind string

const (
	PoolItem      PoolKind = "item"
	PoolCharacter PoolKind = "character"
)

// ParsePoolKind accepts "item"/"items" and "character"/"characters".
func ParsePoolKind(s string) (PoolKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "item", "items":
		return PoolItem, nil
	case "character", "characters", "char":
		return PoolCharacter, nil
	}
	return "", fmt.Errorf("unknown pool kind %q", s)
}

// Reward is a concrete catalog entry handed out by a pull.
type Reward struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Kind   string `json:"kind,omitempty" yaml:"kind,omitempty"` // e.g. "light_cone", "material", "character"
	Rarity Rarity `json:"rarity" yaml:"-"`
}
