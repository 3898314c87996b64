package gacha

import (
	"fmt"
	"math"
)

// Reference constants of the standard banners.
const (
	DefaultHardPity      = 90
	DefaultFourStarFloor = 10
	DefaultSoftStart     = 75
	DefaultSoftIncrement = 0.06

	defaultFive  = 0.006
	defaultFour  = 0.051
	defaultThree = 0.943
)

// configEpsilon is the tolerance for configured base rates summing to one.
const configEpsilon = 1e-6

// Rates holds one probability per tier. Three is always zero for pools
// without a 3★ tier.
type Rates struct {
	Five  float64 `json:"five"`
	Four  float64 `json:"four"`
	Three float64 `json:"three"`
}

// Of returns the rate for a tier.
func (r Rates) Of(t Rarity) float64 {
	switch t {
	case FiveStar:
		return r.Five
	case FourStar:
		return r.Four
	case ThreeStar:
		return r.Three
	}
	return 0
}

// Sum adds up all tiers.
func (r Rates) Sum() float64 { return r.Five + r.Four + r.Three }

// Rules are the pool-specific constants the curve and resolver work from.
type Rules struct {
	Kind          PoolKind
	Base          Rates
	HardPity      int             // 5★ is forced when the 5★ counter reaches this
	FourStarFloor int             // 4★ is forced when the 4★ counter reaches this; 0 disables
	Soft          *SoftPityConfig // nil: no ramp
}

// DefaultItemRules: 3★/4★/5★ tiers with a soft-pity ramp from pull 75.
func DefaultItemRules() Rules {
	return Rules{
		Kind:          PoolItem,
		Base:          Rates{Five: defaultFive, Four: defaultFour, Three: defaultThree},
		HardPity:      DefaultHardPity,
		FourStarFloor: DefaultFourStarFloor,
		Soft: &SoftPityConfig{
			Mode:      SoftPerDrawIncrement,
			StartAt:   DefaultSoftStart,
			Increment: DefaultSoftIncrement,
		},
	}
}

// DefaultCharacterRules: 4★/5★ tiers only and no ramp; the 5★ clock is
// governed by hard pity alone.
func DefaultCharacterRules() Rules {
	return Rules{
		Kind:          PoolCharacter,
		Base:          Rates{Five: defaultFive, Four: 1 - defaultFive},
		HardPity:      DefaultHardPity,
		FourStarFloor: DefaultFourStarFloor,
	}
}

// DefaultRules returns the reference rules for kind.
func DefaultRules(kind PoolKind) Rules {
	if kind == PoolCharacter {
		return DefaultCharacterRules()
	}
	return DefaultItemRules()
}

// HasThreeStar reports whether the pool has a 3★ tier.
func (r Rules) HasThreeStar() bool { return r.Kind != PoolCharacter }

// Tiers lists the tiers in band order (5★ first).
func (r Rules) Tiers() []Rarity {
	if r.HasThreeStar() {
		return []Rarity{FiveStar, FourStar, ThreeStar}
	}
	return []Rarity{FiveStar, FourStar}
}

// Normalize validates the rules and fills defaults in place.
// For a pool without a 3★ tier the 4★ base absorbs everything that is not 5★.
func (r *Rules) Normalize() error {
	switch r.Kind {
	case PoolItem, PoolCharacter:
	default:
		return fmt.Errorf("%w: unknown pool kind %q", ErrRulesConfig, r.Kind)
	}
	if r.HardPity <= 1 {
		return fmt.Errorf("%w: hard pity must be > 1, got %d", ErrRulesConfig, r.HardPity)
	}
	if r.FourStarFloor < 0 {
		return fmt.Errorf("%w: 4★ floor must be >= 0, got %d", ErrRulesConfig, r.FourStarFloor)
	}
	for _, p := range []float64{r.Base.Five, r.Base.Four, r.Base.Three} {
		if err := validateProb(p); err != nil {
			return fmt.Errorf("%w: %v", ErrRulesConfig, err)
		}
	}
	if !r.HasThreeStar() {
		if r.Base.Three != 0 {
			return fmt.Errorf("%w: %s pool has no 3★ tier", ErrRulesConfig, r.Kind)
		}
		r.Base.Four = 1 - r.Base.Five
	}
	if math.Abs(r.Base.Sum()-1) > configEpsilon {
		return fmt.Errorf("%w: base rates sum to %.6f, want 1", ErrRulesConfig, r.Base.Sum())
	}
	if r.Soft != nil {
		if err := r.Soft.normalize(r.HardPity, r.Base.Five); err != nil {
			return err
		}
		if r.Soft.Mode == SoftNone {
			r.Soft = nil
		}
	}
	return nil
}
