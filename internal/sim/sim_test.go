package sim

import (
	"errors"
	"testing"

	"github.com/xtding233/gacha-sim/internal/gacha"
	"github.com/xtding233/gacha-sim/internal/game"
)

func TestNormalizeDefaults(t *testing.T) {
	var r Request
	if err := r.Normalize(); err != nil {
		t.Fatal(err)
	}
	if r.Pool != gacha.PoolItem || r.Goal != gacha.GoalFirstFiveStar || r.Trials != DefaultTrials {
		t.Fatalf("defaults %+v", r)
	}
}

func TestNormalizeRejects(t *testing.T) {
	for _, r := range []Request{
		{Pool: "weapon"},
		{Trials: -1},
		{Trials: MaxTrials + 1},
		{Cushion: -3},
		{Goal: "jackpot"},
		{Goal: gacha.GoalFixedBudget},
	} {
		if err := r.Normalize(); !errors.Is(err, ErrInvalid) {
			t.Fatalf("%+v: expected ErrInvalid, got %v", r, err)
		}
	}
}

func TestRunIsReproducible(t *testing.T) {
	p := game.NewResolver(game.NewLoader(""), "")
	req := Request{Pool: gacha.PoolItem, Trials: 500, Seed: 77}
	a, err := Run(p, req)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Run(p, req)
	if err != nil {
		t.Fatal(err)
	}
	if a.Stats.Mean != b.Stats.Mean || a.Stats.P90 != b.Stats.P90 {
		t.Fatalf("same seed gave %+v and %+v", a.Stats, b.Stats)
	}
	if a.Stats.Max > 90 || a.Token != "Stellar Jade" || a.ExpectedTokens <= 0 {
		t.Fatalf("result %+v", a)
	}
}

func TestRunFixedBudgetCost(t *testing.T) {
	p := game.NewResolver(game.NewLoader(""), "")
	res, err := Run(p, Request{Pool: gacha.PoolCharacter, Goal: gacha.GoalFixedBudget, Draws: 180, Trials: 100, Seed: 3})
	if err != nil {
		t.Fatal(err)
	}
	// 180 pulls always cross hard pity twice
	if res.Stats.P50 < 2 || res.ExpectedTokens != 18*1600 {
		t.Fatalf("result %+v", res)
	}
}
