package game

import (
	"fmt"
	"strings"

	"github.com/xtding233/gacha-sim/internal/gacha"
)

// ValidatePool checks semantic constraints of a merged PoolConfig.
// It collects every problem instead of stopping at the first one.
func ValidatePool(kind gacha.PoolKind, cfg PoolConfig) error {
	var errs []string
	prob := func(name string, p *float64, required bool) {
		if p == nil {
			if required {
				errs = append(errs, name+" is required")
			}
			return
		}
		if *p < 0 || *p > 1 {
			errs = append(errs, name+" must be in [0,1]")
		}
	}

	// rates
	if cfg.Rates == nil {
		errs = append(errs, "rates is required")
	} else {
		prob("rates.five", cfg.Rates.Five, true)
		prob("rates.four", cfg.Rates.Four, true)
		prob("rates.three", cfg.Rates.Three, kind == gacha.PoolItem)
		if kind == gacha.PoolCharacter && cfg.Rates.Three != nil && *cfg.Rates.Three != 0 {
			errs = append(errs, "rates.three must be 0 for the character pool")
		}
	}

	// pity
	if cfg.Pity.Hard == nil {
		errs = append(errs, "pity.hard is required")
	} else if *cfg.Pity.Hard <= 1 {
		errs = append(errs, "pity.hard must be >= 2")
	}
	if cfg.Pity.FourStarFloor != nil && *cfg.Pity.FourStarFloor < 0 {
		errs = append(errs, "pity.four_star_floor must be >= 0 (0 disables the floor)")
	}

	// soft
	if cfg.Soft != nil {
		// an empty mode left after merging means per_draw_increment
		switch cfg.Soft.Mode {
		case "", string(gacha.SoftPerDrawIncrement):
			if cfg.Soft.StartAt == nil {
				errs = append(errs, "soft.start_at is required for mode=per_draw_increment")
			}
			if cfg.Soft.Increment == nil {
				errs = append(errs, "soft.increment is required for mode=per_draw_increment")
			} else if *cfg.Soft.Increment <= 0 {
				errs = append(errs, "soft.increment must be > 0 for mode=per_draw_increment")
			}
		case string(gacha.SoftTargetRamp):
			if cfg.Soft.StartAt == nil {
				errs = append(errs, "soft.start_at is required for mode=target_ramp")
			}
			if cfg.Soft.Target == nil {
				errs = append(errs, "soft.target is required for mode=target_ramp")
			} else if *cfg.Soft.Target <= 0 || *cfg.Soft.Target >= 1 {
				errs = append(errs, "soft.target must be in (0,1)")
			}
			switch gacha.Easing(cfg.Soft.Easing) {
			case "", gacha.EaseLinear, gacha.EaseOutQuad, gacha.EaseInOutCubic:
			default:
				errs = append(errs, "soft.easing must be one of: linear, easeOutQuad, easeInOutCubic")
			}
		case string(gacha.SoftNone):
		default:
			errs = append(errs, "soft.mode must be one of: per_draw_increment, target_ramp, none")
		}
		if cfg.Pity.Hard != nil && cfg.Soft.StartAt != nil {
			if *cfg.Soft.StartAt < 1 || *cfg.Soft.StartAt >= *cfg.Pity.Hard {
				errs = append(errs, "soft.start_at must satisfy 1 <= start_at < pity.hard")
			}
		}
	}

	// tokens (optional)
	if cfg.Tokens != nil {
		if cfg.Tokens.PerDraw != nil && *cfg.Tokens.PerDraw < 0 {
			errs = append(errs, "tokens.per_draw must be >= 0")
		}
		if cfg.Tokens.PerTenDraw != nil && *cfg.Tokens.PerTenDraw < 0 {
			errs = append(errs, "tokens.per_ten_draw must be >= 0")
		}
		if cfg.Tokens.PerNDraw != nil && *cfg.Tokens.PerNDraw < 0 {
			errs = append(errs, "tokens.per_n_draw must be >= 0")
		}
		if cfg.Tokens.N != nil && *cfg.Tokens.N < 0 {
			errs = append(errs, "tokens.n must be >= 0")
		}
	}

	// catalog
	for r, rs := range cfg.Catalog {
		rarity := gacha.Rarity(r)
		if !rarity.Valid() {
			errs = append(errs, fmt.Sprintf("catalog key %d is not a rarity (3, 4 or 5)", r))
			continue
		}
		if kind == gacha.PoolCharacter && rarity == gacha.ThreeStar && len(rs) > 0 {
			errs = append(errs, "catalog.3 is not allowed for the character pool")
		}
		seen := make(map[string]struct{}, len(rs))
		for i, rw := range rs {
			if strings.TrimSpace(rw.ID) == "" {
				errs = append(errs, fmt.Sprintf("catalog.%d[%d].id is required", r, i))
				continue
			}
			if _, dup := seen[rw.ID]; dup {
				errs = append(errs, fmt.Sprintf("catalog.%d: duplicate id %q", r, rw.ID))
			}
			seen[rw.ID] = struct{}{}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s pool config validation failed: %s", kind, strings.Join(errs, "; "))
	}
	return nil
}
