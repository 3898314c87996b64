package gacha

import (
	"fmt"
	"math"
	"sort"
)

// TrialGoal selects what the simulation measures per trial.
type TrialGoal string

const (
	// Pulls until the first 5★.
	GoalFirstFiveStar TrialGoal = "first_five_star"
	// Pulls until the first 4★-or-better.
	GoalFirstFourStar TrialGoal = "first_four_star"
	// Given a fixed budget N, count the 5★ outcomes.
	GoalFixedBudget TrialGoal = "fixed_budget"
)

// SimBudget controls the number of pulls used in GoalFixedBudget.
type SimBudget struct {
	NumDraws int // number of pulls in one trial
}

// SimParams describes one simulation run.
type SimParams struct {
	Rules   Rules
	Goal    TrialGoal
	Trials  int
	Budget  *SimBudget
	Seed    uint64 // 0 → crypto randomness
	Cushion int    // 5★ counter carried into each trial, e.g. from another banner
}

// Stats summarizes simulation results.
type Stats struct {
	Trials int     `json:"trials"`
	Mean   float64 `json:"mean"`
	Var    float64 `json:"var"`
	StdDev float64 `json:"stddev"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`
	Max    int     `json:"max"`
	// Optional: raw samples if caller needs histograms/exports
	Samples []int `json:"-"`
}

// calcStats computes mean/variance/percentiles for integer samples.
func calcStats(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	// variance (population)
	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)

	cp := append([]int(nil), xs...)
	sort.Ints(cp)
	percentile := func(p float64) float64 {
		if n == 1 || p <= 0 {
			return float64(cp[0])
		}
		if p >= 1 {
			return float64(cp[n-1])
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return float64(cp[i])
		}
		return float64(cp[i])*(1-f) + float64(cp[i+1])*f
	}

	return Stats{
		Trials:  n,
		Mean:    mean,
		Var:     variance,
		StdDev:  math.Sqrt(variance),
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		P99:     percentile(0.99),
		Max:     cp[n-1],
		Samples: xs,
	}
}

// rarityOnly is a catalog with one placeholder reward per tier; the
// simulator only cares about rarities.
var rarityOnly = CatalogFunc(func(kind PoolKind, r Rarity) []Reward {
	return []Reward{{ID: fmt.Sprintf("%s-%d", kind, r), Name: r.String()}}
})

// simulateOne returns the primary metric for one trial on a fresh pool.
func simulateOne(p SimParams, rng RandomSource) (int, error) {
	pool, err := NewPool(p.Rules, rarityOnly, rng)
	if err != nil {
		return 0, err
	}
	if c := p.Cushion; c > 0 {
		if c >= pool.rules.HardPity {
			c = pool.rules.HardPity - 1
		}
		pool.tracker.restore(PityState{FiveStar: c})
	}

	until := func(done func(Rarity) bool) (int, error) {
		for draws := 1; ; draws++ {
			rec, err := pool.PullSingle()
			if err != nil {
				return 0, err
			}
			if done(rec.Rarity) {
				return draws, nil
			}
		}
	}

	switch p.Goal {
	case GoalFirstFiveStar, "":
		return until(func(r Rarity) bool { return r == FiveStar })
	case GoalFirstFourStar:
		return until(func(r Rarity) bool { return r >= FourStar })
	case GoalFixedBudget:
		if p.Budget == nil || p.Budget.NumDraws <= 0 {
			return 0, nil
		}
		b, err := pool.PullN(p.Budget.NumDraws)
		if err != nil {
			return 0, err
		}
		return b.Tally[FiveStar], nil
	}
	return 0, fmt.Errorf("unknown simulation goal %q", p.Goal)
}

// RunMonteCarlo repeats trials and returns summary stats.
// All trials share one seeded stream, so a fixed seed reproduces the run.
func RunMonteCarlo(p SimParams) (Stats, error) {
	if p.Trials <= 0 {
		return Stats{}, nil
	}
	rng := StreamRNG(p.Seed, p.Rules.Kind)
	samples := make([]int, p.Trials)
	for i := 0; i < p.Trials; i++ {
		v, err := simulateOne(p, rng)
		if err != nil {
			return Stats{}, err
		}
		samples[i] = v
	}
	return calcStats(samples), nil
}
