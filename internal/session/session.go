// Package session keeps the per-player game state: one item pool and one
// character pool per session, each exclusively owned by that session.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/xtding233/gacha-sim/internal/gacha"
	"github.com/xtding233/gacha-sim/internal/game"
	"github.com/xtding233/gacha-sim/internal/token"
)

var (
	ErrNotFound    = errors.New("session not found")
	ErrUnknownPool = errors.New("unknown pool")
)

// Provider resolves the rules, catalog and cost of a pool.
// *game.Resolver implements it.
type Provider interface {
	Pool(kind gacha.PoolKind) (game.PoolSpec, error)
}

// Sink persists exported pull history; the format is the sink's business.
type Sink interface {
	// game numbers the new-game resets of a session, starting at 1.
	Persist(ctx context.Context, sessionID string, game int, records []gacha.PullRecord) (int, error)
}

// Kinds lists the pools every session owns.
var Kinds = []gacha.PoolKind{gacha.PoolItem, gacha.PoolCharacter}

type slot struct {
	pool  *gacha.Pool
	token token.Token
	spent atomic.Int64
}

// Session is one player's game.
type Session struct {
	ID        string
	CreatedAt time.Time
	Version   string // config version the pools were built from

	pools map[gacha.PoolKind]*slot

	// mu is held exclusively across NewGame so a pull or export never
	// spans two games.
	mu   sync.RWMutex
	game int
}

// Game is the current game number; NewGame increments it.
func (s *Session) Game() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.game
}

// PullResult is a single pull plus its cost.
type PullResult struct {
	Record gacha.PullRecord `json:"record"`
	Cost   int              `json:"cost"`
	Token  string           `json:"token"`
}

// BatchResult is a ten-pull plus its cost.
type BatchResult struct {
	gacha.Batch
	Cost  int    `json:"cost"`
	Token string `json:"token"`
}

// PoolStats extends the engine statistics with spending.
type PoolStats struct {
	gacha.Statistics
	TokensSpent int64  `json:"tokens_spent"`
	Token       string `json:"token"`
}

func (s *Session) slot(kind gacha.PoolKind) (*slot, error) {
	sl, ok := s.pools[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPool, kind)
	}
	return sl, nil
}

// Pool exposes the engine pool of a kind.
func (s *Session) Pool(kind gacha.PoolKind) (*gacha.Pool, error) {
	sl, err := s.slot(kind)
	if err != nil {
		return nil, err
	}
	return sl.pool, nil
}

// PullSingle pulls once from a pool.
func (s *Session) PullSingle(kind gacha.PoolKind) (PullResult, error) {
	sl, err := s.slot(kind)
	if err != nil {
		return PullResult{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, err := sl.pool.PullSingle()
	if err != nil {
		return PullResult{}, err
	}
	cost := sl.token.TokensForDraws(1)
	sl.spent.Add(int64(cost))
	return PullResult{Record: rec, Cost: cost, Token: sl.token.Name}, nil
}

// PullTen runs a ten-pull. Pulls committed before a failure are still
// charged and returned with the error.
func (s *Session) PullTen(kind gacha.PoolKind) (BatchResult, error) {
	sl, err := s.slot(kind)
	if err != nil {
		return BatchResult{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, err := sl.pool.PullTen()
	cost := sl.token.TokensForDraws(len(b.Records))
	sl.spent.Add(int64(cost))
	return BatchResult{Batch: b, Cost: cost, Token: sl.token.Name}, err
}

// Pity returns the counters of a pool.
func (s *Session) Pity(kind gacha.PoolKind) (gacha.PityState, error) {
	sl, err := s.slot(kind)
	if err != nil {
		return gacha.PityState{}, err
	}
	return sl.pool.InspectPity(), nil
}

// Table returns the distribution the next pull of a pool will use.
func (s *Session) Table(kind gacha.PoolKind) (gacha.ProbabilityTable, error) {
	sl, err := s.slot(kind)
	if err != nil {
		return gacha.ProbabilityTable{}, err
	}
	return sl.pool.InspectTable(), nil
}

// History returns a copy of a pool's ledger.
func (s *Session) History(kind gacha.PoolKind) ([]gacha.PullRecord, error) {
	sl, err := s.slot(kind)
	if err != nil {
		return nil, err
	}
	return sl.pool.ExportHistory(), nil
}

// Stats summarises a pool.
func (s *Session) Stats(kind gacha.PoolKind) (PoolStats, error) {
	sl, err := s.slot(kind)
	if err != nil {
		return PoolStats{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return PoolStats{Statistics: sl.pool.Stats(), TokensSpent: sl.spent.Load(), Token: sl.token.Name}, nil
}

// NewGame resets every pool to its default state and returns the new game
// number.
func (s *Session) NewGame() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.game++
	for _, sl := range s.pools {
		sl.pool.Reset()
		sl.spent.Store(0)
	}
	return s.game
}

// snapshot copies the game number and every pool's history at one instant.
func (s *Session) snapshot() (int, map[gacha.PoolKind][]gacha.PullRecord) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[gacha.PoolKind][]gacha.PullRecord, len(s.pools))
	for kind, sl := range s.pools {
		out[kind] = sl.pool.ExportHistory()
	}
	return s.game, out
}

// Registry owns all live sessions.
type Registry struct {
	provider Provider
	seed     uint64
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
	created  uint64
}

// Option configures a Registry.
type Option func(*Registry)

// WithSeed makes every pool stream reproducible; 0 keeps crypto randomness.
func WithSeed(seed uint64) Option {
	return func(r *Registry) { r.seed = seed }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func NewRegistry(p Provider, opts ...Option) *Registry {
	r := &Registry{provider: p, now: time.Now, sessions: make(map[string]*Session)}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Create starts a new session with fresh pools built from the current rules.
func (r *Registry) Create() (*Session, error) {
	r.mu.Lock()
	r.created++
	n := r.created
	r.mu.Unlock()

	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: r.now().UTC(),
		pools:     make(map[gacha.PoolKind]*slot, len(Kinds)),
	}
	s.game = 1
	for _, kind := range Kinds {
		spec, err := r.provider.Pool(kind)
		if err != nil {
			return nil, fmt.Errorf("build %s pool: %w", kind, err)
		}
		var rng gacha.RandomSource
		if r.seed != 0 {
			rng = gacha.StreamRNG(r.seed+n*0x9E3779B97F4A7C15, kind)
		}
		pool, err := gacha.NewPool(spec.Rules, spec.Catalog, rng)
		if err != nil {
			return nil, fmt.Errorf("build %s pool: %w", kind, err)
		}
		s.pools[kind] = &slot{pool: pool, token: spec.Token}
		s.Version = spec.Version
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s, nil
}

// Get looks a session up by id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Delete drops a session.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(r.sessions, id)
	return nil
}

// Len is the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// ExportResult reports how many new records the sink stored per pool for
// one game.
type ExportResult struct {
	Game     int
	Exported map[gacha.PoolKind]int
}

// Export hands every pool's history to the sink. The histories and the game
// number are taken together, so a concurrent NewGame cannot file one game's
// records under the next.
func (r *Registry) Export(ctx context.Context, id string, sink Sink) (ExportResult, error) {
	s, err := r.Get(id)
	if err != nil {
		return ExportResult{}, err
	}
	g, history := s.snapshot()
	res := ExportResult{Game: g, Exported: make(map[gacha.PoolKind]int, len(Kinds))}
	for _, kind := range Kinds {
		n, err := sink.Persist(ctx, s.ID, g, history[kind])
		if err != nil {
			return ExportResult{}, fmt.Errorf("export %s history: %w", kind, err)
		}
		res.Exported[kind] = n
	}
	return res, nil
}
