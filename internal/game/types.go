// types.go
package game

import (
	"github.com/xtding233/gacha-sim/internal/catalog"
	"github.com/xtding233/gacha-sim/internal/gacha"
	"github.com/xtding233/gacha-sim/internal/token"
)

// RawConfig is one default/game layer loaded from YAML.
type RawConfig struct {
	Version string                 `yaml:"version"`
	Pools   map[string]*PoolConfig `yaml:"pools"` // keyed by pool kind: item, character
	Notes   string                 `yaml:"notes,omitempty"`
}

// PoolConfig is the per-pool schema. A games/<game>/pools/<pool>.yaml file
// holds exactly one of these.
type PoolConfig struct {
	Rates   *RatesCfg           `yaml:"rates,omitempty"`
	Pity    PityCfg             `yaml:"pity"`
	Soft    *SoftCfg            `yaml:"soft,omitempty"`
	Tokens  *TokenConfig        `yaml:"tokens,omitempty"`
	Catalog map[int][]RewardCfg `yaml:"catalog,omitempty"` // rarity → candidates
}

type RatesCfg struct {
	Five  *float64 `yaml:"five"`
	Four  *float64 `yaml:"four"`
	Three *float64 `yaml:"three,omitempty"`
}

type PityCfg struct {
	Hard          *int `yaml:"hard"`
	FourStarFloor *int `yaml:"four_star_floor"`
}

type SoftCfg struct {
	Mode      string   `yaml:"mode"` // "per_draw_increment" (when empty) | "target_ramp" | "none"
	StartAt   *int     `yaml:"start_at,omitempty"`
	Increment *float64 `yaml:"increment,omitempty"` // for per_draw_increment
	Target    *float64 `yaml:"target,omitempty"`    // for target_ramp
	Easing    string   `yaml:"easing,omitempty"`
}

type TokenConfig struct {
	Name       string `yaml:"name,omitempty"`
	PerDraw    *int   `yaml:"per_draw"`
	PerTenDraw *int   `yaml:"per_ten_draw"`
	PerNDraw   *int   `yaml:"per_n_draw"` // bulk price for N draws; used when n > 1
	N          *int   `yaml:"n"`
}

type RewardCfg struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Kind string `yaml:"kind,omitempty"`
}

// PoolSpec is a fully resolved pool: the engine rules, its catalog and the
// draw cost.
type PoolSpec struct {
	Rules   gacha.Rules
	Catalog *catalog.Catalog
	Token   token.Token
	Version string // effective config version for tracing
}
