package game

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed builtin.yaml
var builtinYAML []byte

// Paths helper for default/game/pool files.
type Paths struct {
	BaseDir string // base directory, e.g., /opt/app/config
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "games", "default.yaml")
}
func (p Paths) GamePath(game string) string {
	return filepath.Join(p.BaseDir, "games", game+".yaml")
}
func (p Paths) PoolPath(game, pool string) string {
	return filepath.Join(p.BaseDir, "games", game, "pools", pool+".yaml")
}

// Loader reads YAML configs and merges builtin → default → game → pool.
// An empty BaseDir means builtin only.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]mergedPool // key: "game/pool"
}

type mergedPool struct {
	version string
	cfg     PoolConfig
}

// NewLoader creates a config loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]mergedPool),
	}
}

// Watched lists the files a watcher should poll for the given game.
func (l *Loader) Watched(game string, pools ...string) []string {
	if l.paths.BaseDir == "" {
		return nil
	}
	out := []string{l.paths.DefaultPath(), l.paths.GamePath(game)}
	for _, p := range pools {
		out = append(out, l.paths.PoolPath(game, p))
	}
	return out
}

// LoadMerged loads and merges every layer for one pool and returns the
// merged PoolConfig (without normalization) plus the effective version.
func (l *Loader) LoadMerged(game, pool string) (PoolConfig, string, error) {
	key := game + "/" + pool
	l.mu.RLock()
	if m, ok := l.cache[key]; ok {
		l.mu.RUnlock()
		return m.cfg, m.version, nil
	}
	l.mu.RUnlock()

	var builtin RawConfig
	if err := yaml.Unmarshal(builtinYAML, &builtin); err != nil {
		return PoolConfig{}, "", fmt.Errorf("parse builtin config: %w", err)
	}
	merged := layer(builtin, pool)
	version := builtin.Version

	if l.paths.BaseDir != "" {
		defCfg, err := readYAML(l.paths.DefaultPath())
		if err != nil {
			return PoolConfig{}, "", fmt.Errorf("read default: %w", err)
		}
		gameCfg, err := readYAML(l.paths.GamePath(game)) // game file may not exist
		if err != nil {
			return PoolConfig{}, "", fmt.Errorf("read game %s: %w", game, err)
		}
		poolCfg, err := readPoolYAML(l.paths.PoolPath(game, pool)) // pool file optional
		if err != nil {
			return PoolConfig{}, "", fmt.Errorf("read pool %s/%s: %w", game, pool, err)
		}
		merged = mergePool(merged, layer(defCfg, pool))
		merged = mergePool(merged, layer(gameCfg, pool))
		merged = mergePool(merged, poolCfg)
		for _, v := range []string{defCfg.Version, gameCfg.Version} {
			if v != "" {
				version = v
			}
		}
	}

	l.mu.Lock()
	l.cache[key] = mergedPool{version: version, cfg: merged}
	l.mu.Unlock()
	return merged, version, nil
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]mergedPool)
}

func layer(cfg RawConfig, pool string) PoolConfig {
	if p := cfg.Pools[pool]; p != nil {
		return *p
	}
	return PoolConfig{}
}

// readYAML loads a YAML file into RawConfig. Missing files return zero cfg, no error.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	if err := decodeFile(path, &cfg); err != nil {
		return RawConfig{}, err
	}
	return cfg, nil
}

func readPoolYAML(path string) (PoolConfig, error) {
	var cfg PoolConfig
	if err := decodeFile(path, &cfg); err != nil {
		return PoolConfig{}, err
	}
	return cfg, nil
}

func decodeFile(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(b, out)
}

// mergePool performs a deep merge: 'b' overrides 'a' where set.
// Catalog tiers in 'b' replace the matching tiers of 'a'.
func mergePool(a, b PoolConfig) PoolConfig {
	out := a

	if b.Rates != nil {
		r := RatesCfg{}
		if a.Rates != nil {
			r = *a.Rates
		}
		if b.Rates.Five != nil {
			r.Five = b.Rates.Five
		}
		if b.Rates.Four != nil {
			r.Four = b.Rates.Four
		}
		if b.Rates.Three != nil {
			r.Three = b.Rates.Three
		}
		out.Rates = &r
	}

	if b.Pity.Hard != nil {
		out.Pity.Hard = b.Pity.Hard
	}
	if b.Pity.FourStarFloor != nil {
		out.Pity.FourStarFloor = b.Pity.FourStarFloor
	}

	// soft
	switch {
	case b.Soft == nil:
	case a.Soft == nil || (b.Soft.Mode != "" && b.Soft.Mode != a.Soft.Mode):
		softCopy := *b.Soft
		out.Soft = &softCopy
	default:
		s := *a.Soft
		if b.Soft.StartAt != nil {
			s.StartAt = b.Soft.StartAt
		}
		if b.Soft.Increment != nil {
			s.Increment = b.Soft.Increment
		}
		if b.Soft.Target != nil {
			s.Target = b.Soft.Target
		}
		if b.Soft.Easing != "" {
			s.Easing = b.Soft.Easing
		}
		out.Soft = &s
	}

	// tokens
	switch {
	case b.Tokens == nil:
	case a.Tokens == nil:
		c := *b.Tokens
		out.Tokens = &c
	default:
		c := *a.Tokens
		if b.Tokens.Name != "" {
			c.Name = b.Tokens.Name
		}
		if b.Tokens.PerDraw != nil {
			c.PerDraw = b.Tokens.PerDraw
		}
		if b.Tokens.PerTenDraw != nil {
			c.PerTenDraw = b.Tokens.PerTenDraw
		}
		if b.Tokens.PerNDraw != nil {
			c.PerNDraw = b.Tokens.PerNDraw
		}
		if b.Tokens.N != nil {
			c.N = b.Tokens.N
		}
		out.Tokens = &c
	}

	if len(b.Catalog) > 0 {
		cat := make(map[int][]RewardCfg, len(a.Catalog)+len(b.Catalog))
		for r, rs := range a.Catalog {
			cat[r] = rs
		}
		for r, rs := range b.Catalog {
			cat[r] = append([]RewardCfg(nil), rs...)
		}
		out.Catalog = cat
	}
	return out
}
