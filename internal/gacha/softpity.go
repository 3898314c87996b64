package gacha

import "fmt"

// SoftMode selects how the 5★ rate ramps inside the soft-pity window.
type SoftMode string

const (
	SoftNone SoftMode = "none"
	// Each pull in the window adds Increment to the 5★ base rate.
	SoftPerDrawIncrement SoftMode = "per_draw_increment"
	// The 5★ rate is interpolated from base to TargetProb at (HardPity-1).
	SoftTargetRamp SoftMode = "target_ramp"
)

// Easing specifies how the probability ramps up as we approach pity.
type Easing string

const (
	EaseLinear     Easing = "linear"
	EaseOutQuad    Easing = "easeOutQuad"
	EaseInOutCubic Easing = "easeInOutCubic"
)

// SoftPityConfig defines the ramp behavior before the hard pity.
// Example: StartAt=75, Increment=0.06 → the 75th pull without a 5★ is ramp
// step 1 and gets base+6%, the 76th base+12%, and so on.
type SoftPityConfig struct {
	Mode       SoftMode
	StartAt    int     // 5★ counter value that opens the window, e.g. 75
	Increment  float64 // per_draw_increment: added per ramp step
	TargetProb float64 // target_ramp: probability at (HardPity-1), in (0,1)
	Easing     Easing  // target_ramp only
}

// normalize validates and fills defaults; returns error if invalid.
func (c *SoftPityConfig) normalize(hardPity int, base5 float64) error {
	if c.Mode == "" {
		c.Mode = SoftPerDrawIncrement
	}
	switch c.Mode {
	case SoftNone:
		return nil
	case SoftPerDrawIncrement:
		if c.Increment <= 0 || c.Increment > 1 {
			return fmt.Errorf("%w: soft increment must be in (0,1], got %v", ErrRulesConfig, c.Increment)
		}
	case SoftTargetRamp:
		if c.TargetProb <= base5 || c.TargetProb >= 1 {
			return fmt.Errorf("%w: soft target must be in (base,1), got %v", ErrRulesConfig, c.TargetProb)
		}
		if c.Easing == "" {
			c.Easing = EaseLinear
		}
		switch c.Easing {
		case EaseLinear, EaseOutQuad, EaseInOutCubic:
		default:
			return fmt.Errorf("%w: unknown easing %q", ErrRulesConfig, c.Easing)
		}
	default:
		return fmt.Errorf("%w: unknown soft mode %q", ErrRulesConfig, c.Mode)
	}
	if c.StartAt < 1 {
		c.StartAt = 1
	}
	// The window must close before hard pity takes over.
	if c.StartAt >= hardPity {
		return fmt.Errorf("%w: soft start %d must be below hard pity %d", ErrRulesConfig, c.StartAt, hardPity)
	}
	return nil
}

// active reports whether counter is inside the ramp window.
func (c *SoftPityConfig) active(counter, hardPity int) bool {
	return c != nil && c.Mode != SoftNone && counter >= c.StartAt && counter < hardPity
}

// fiveStarRate computes the ramped 5★ rate for counter, which must be inside
// the window. The result is non-decreasing in counter and never above 1.
func (c *SoftPityConfig) fiveStarRate(base5 float64, counter, hardPity int) float64 {
	var p float64
	switch c.Mode {
	case SoftTargetRamp:
		end := hardPity - 1
		length := float64(end - c.StartAt)
		t := 1.0
		if length > 0 {
			t = float64(counter-c.StartAt) / length
		}
		if t < 0 {
			t = 0
		}
		if t > 1 {
			t = 1
		}
		p = base5 + (c.TargetProb-base5)*ease(c.Easing, t)
	default:
		step := counter - c.StartAt + 1
		p = base5 + float64(step)*c.Increment
	}
	if p > 1 {
		p = 1
	}
	if p < base5 {
		p = base5
	}
	return p
}

func ease(e Easing, t float64) float64 {
	switch e {
	case EaseOutQuad:
		// f(t) = 1 - (1 - t)^2
		return 1 - (1-t)*(1-t)
	case EaseInOutCubic:
		// accelerate then decelerate
		if t < 0.5 {
			return 4 * t * t * t
		}
		u := -2*t + 2
		return 1 - u*u*u/2
	default:
		return t
	}
}
