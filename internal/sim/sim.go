// Package sim runs Monte Carlo studies against the live pool rules.
package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/xtding233/gacha-sim/internal/gacha"
	"github.com/xtding233/gacha-sim/internal/session"
)

const (
	DefaultTrials = 10000
	MaxTrials     = 200000
)

// ErrInvalid marks a malformed request.
var ErrInvalid = errors.New("invalid simulation request")

// Request describes one study. Zero values pick the defaults: item pool,
// first 5★ goal, DefaultTrials trials, crypto seed.
type Request struct {
	Pool    gacha.PoolKind  `json:"pool"`
	Goal    gacha.TrialGoal `json:"goal"`
	Trials  int             `json:"trials"`
	Seed    uint64          `json:"seed"`
	Cushion int             `json:"cushion"`
	Draws   int             `json:"draws"` // fixed_budget only
}

// Result is a study's outcome plus its expected cost.
type Result struct {
	Pool           gacha.PoolKind  `json:"pool"`
	Goal           gacha.TrialGoal `json:"goal"`
	Seed           uint64          `json:"seed"`
	Stats          gacha.Stats     `json:"stats"`
	Token          string          `json:"token"`
	ExpectedTokens int             `json:"expected_tokens"`
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Normalize fills defaults and rejects bad values.
func (r *Request) Normalize() error {
	if r.Pool == "" {
		r.Pool = gacha.PoolItem
	}
	kind, err := gacha.ParsePoolKind(string(r.Pool))
	if err != nil {
		return invalid("%v", err)
	}
	r.Pool = kind
	if r.Trials == 0 {
		r.Trials = DefaultTrials
	}
	if r.Trials < 0 || r.Trials > MaxTrials {
		return invalid("trials must be in [1,%d]", MaxTrials)
	}
	if r.Cushion < 0 {
		return invalid("cushion must be >= 0")
	}
	switch r.Goal {
	case "":
		r.Goal = gacha.GoalFirstFiveStar
	case gacha.GoalFirstFiveStar, gacha.GoalFirstFourStar:
	case gacha.GoalFixedBudget:
		if r.Draws <= 0 {
			return invalid("draws must be > 0 for %s", gacha.GoalFixedBudget)
		}
	default:
		return invalid("unknown goal %q", r.Goal)
	}
	return nil
}

// Run normalizes req and simulates it against the provider's current rules.
func Run(p session.Provider, req Request) (Result, error) {
	if err := req.Normalize(); err != nil {
		return Result{}, err
	}
	spec, err := p.Pool(req.Pool)
	if err != nil {
		return Result{}, err
	}
	params := gacha.SimParams{Rules: spec.Rules, Goal: req.Goal, Trials: req.Trials, Seed: req.Seed, Cushion: req.Cushion}
	if req.Goal == gacha.GoalFixedBudget {
		params.Budget = &gacha.SimBudget{NumDraws: req.Draws}
	}
	stats, err := gacha.RunMonteCarlo(params)
	if err != nil {
		return Result{}, err
	}

	// expected spend: the budget itself, or the mean pulls to reach the goal
	pulls := req.Draws
	if req.Goal != gacha.GoalFixedBudget {
		pulls = int(math.Round(stats.Mean))
	}
	return Result{
		Pool:           req.Pool,
		Goal:           req.Goal,
		Seed:           req.Seed,
		Stats:          stats,
		Token:          spec.Token.Name,
		ExpectedTokens: spec.Token.TokensForDraws(pulls),
	}, nil
}
