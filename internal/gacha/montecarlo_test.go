package gacha

import "testing"

func TestMonteCarloFirstFiveStar(t *testing.T) {
	st, err := RunMonteCarlo(SimParams{Rules: DefaultItemRules(), Goal: GoalFirstFiveStar, Trials: 5000, Seed: 42})
	if err != nil {
		t.Fatal(err)
	}
	if st.Max > 90 {
		t.Fatalf("no trial may exceed hard pity, max=%d", st.Max)
	}
	// soft pity pulls the mean well below the ceiling (mid sixties)
	if st.Mean < 55 || st.Mean > 72 {
		t.Fatalf("mean pulls to first 5★ = %.2f, outside expected range", st.Mean)
	}
	if st.P50 > st.P90 || st.P90 > st.P99 {
		t.Fatalf("percentiles out of order: %+v", st)
	}
}

func TestMonteCarloCharacterPoolHitsCeiling(t *testing.T) {
	st, err := RunMonteCarlo(SimParams{Rules: DefaultCharacterRules(), Goal: GoalFirstFiveStar, Trials: 2000, Seed: 9})
	if err != nil {
		t.Fatal(err)
	}
	// without a ramp most trials end at hard pity
	if st.P50 != 90 || st.Max != 90 {
		t.Fatalf("unexpected character stats %+v", st)
	}
}

func TestMonteCarloFixedBudgetAndCushion(t *testing.T) {
	st, err := RunMonteCarlo(SimParams{
		Rules: DefaultItemRules(), Goal: GoalFixedBudget, Trials: 500, Seed: 1,
		Budget: &SimBudget{NumDraws: 180},
	})
	if err != nil {
		t.Fatal(err)
	}
	if st.Mean < 2 {
		t.Fatalf("180 pulls should yield at least two 5★ on average, got %.2f", st.Mean)
	}

	st, err = RunMonteCarlo(SimParams{Rules: DefaultItemRules(), Goal: GoalFirstFiveStar, Trials: 200, Seed: 5, Cushion: 89})
	if err != nil {
		t.Fatal(err)
	}
	if st.Max != 1 {
		t.Fatalf("a cushion of 89 forces the first pull, got max=%d", st.Max)
	}
}

func TestMonteCarloFirstFourStar(t *testing.T) {
	st, err := RunMonteCarlo(SimParams{Rules: DefaultItemRules(), Goal: GoalFirstFourStar, Trials: 1000, Seed: 2})
	if err != nil {
		t.Fatal(err)
	}
	if st.Max > 10 {
		t.Fatalf("4★ floor caps the wait at 10, got %d", st.Max)
	}
}

func TestMonteCarloUnknownGoal(t *testing.T) {
	if _, err := RunMonteCarlo(SimParams{Rules: DefaultItemRules(), Goal: "nope", Trials: 1}); err == nil {
		t.Fatalf("expected error for unknown goal")
	}
}
