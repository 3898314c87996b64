// resolve.go
package game

import (
	"fmt"

	"github.com/xtding233/gacha-sim/internal/catalog"
	"github.com/xtding233/gacha-sim/internal/gacha"
	"github.com/xtding233/gacha-sim/internal/token"
)

// Resolver turns the layered YAML of one game into engine-ready pool specs.
type Resolver struct {
	loader *Loader
	game   string
}

// NewResolver binds a loader to a game name ("default" when empty).
func NewResolver(l *Loader, game string) *Resolver {
	if game == "" {
		game = "default"
	}
	return &Resolver{loader: l, game: game}
}

// Game is the game whose files are resolved.
func (r *Resolver) Game() string { return r.game }

// Pool merges, validates and normalizes the config of one pool.
func (r *Resolver) Pool(kind gacha.PoolKind) (PoolSpec, error) {
	cfg, version, err := r.loader.LoadMerged(r.game, string(kind))
	if err != nil {
		return PoolSpec{}, err
	}
	if err := ValidatePool(kind, cfg); err != nil {
		return PoolSpec{}, err
	}
	rules := toRules(kind, cfg)
	if err := rules.Normalize(); err != nil {
		return PoolSpec{}, fmt.Errorf("%s pool: %w", kind, err)
	}
	return PoolSpec{
		Rules:   rules,
		Catalog: toCatalog(kind, cfg),
		Token:   toToken(cfg.Tokens),
		Version: version,
	}, nil
}

func toRules(kind gacha.PoolKind, cfg PoolConfig) gacha.Rules {
	rules := gacha.Rules{Kind: kind, HardPity: *cfg.Pity.Hard}
	rules.Base.Five = *cfg.Rates.Five
	rules.Base.Four = *cfg.Rates.Four
	if cfg.Rates.Three != nil {
		rules.Base.Three = *cfg.Rates.Three
	}
	if cfg.Pity.FourStarFloor != nil {
		rules.FourStarFloor = *cfg.Pity.FourStarFloor
	}
	if s := cfg.Soft; s != nil && s.Mode != string(gacha.SoftNone) {
		soft := &gacha.SoftPityConfig{
			Mode:   gacha.SoftMode(s.Mode),
			Easing: gacha.Easing(s.Easing),
		}
		if soft.Mode == "" {
			soft.Mode = gacha.SoftPerDrawIncrement
		}
		if s.StartAt != nil {
			soft.StartAt = *s.StartAt
		}
		if s.Increment != nil {
			soft.Increment = *s.Increment
		}
		if s.Target != nil {
			soft.TargetProb = *s.Target
		}
		rules.Soft = soft
	}
	return rules
}

func toCatalog(kind gacha.PoolKind, cfg PoolConfig) *catalog.Catalog {
	b := catalog.NewBuilder()
	for r, rs := range cfg.Catalog {
		for _, rw := range rs {
			b.Add(kind, gacha.Rarity(r), gacha.Reward{ID: rw.ID, Name: rw.Name, Kind: rw.Kind})
		}
	}
	return b.Build()
}

func toToken(cfg *TokenConfig) token.Token {
	t := token.Default()
	if cfg == nil {
		return t
	}
	if cfg.Name != "" {
		t.Name = cfg.Name
	}
	if cfg.PerDraw != nil {
		t.PerDraw = *cfg.PerDraw
	}
	if cfg.PerTenDraw != nil {
		t.PerTenDraw = *cfg.PerTenDraw
	}
	if cfg.PerNDraw != nil {
		t.PerNDraw = *cfg.PerNDraw
	}
	if cfg.N != nil {
		t.N = *cfg.N
	}
	return t
}
