package gacha

import (
	"math"
	"testing"
)

func normalized(t *testing.T, r Rules) Rules {
	t.Helper()
	if err := r.Normalize(); err != nil {
		t.Fatal(err)
	}
	return r
}

func TestCurveBaseRatesBeforeWindow(t *testing.T) {
	c := NewCurve(normalized(t, DefaultItemRules()))
	for n := 0; n < 75; n++ {
		tb := c.Table(PityState{FiveStar: n})
		if tb.Rate(FiveStar) != 0.006 || tb.Rate(FourStar) != 0.051 || tb.Rate(ThreeStar) != 0.943 {
			t.Fatalf("n=%d: rates changed before the window: %+v", n, tb.Effective)
		}
		if tb.SoftPity {
			t.Fatalf("n=%d: soft pity must not be active", n)
		}
	}
}

func TestCurveRampSteps(t *testing.T) {
	c := NewCurve(normalized(t, DefaultItemRules()))
	tb := c.Table(PityState{FiveStar: 75})
	if math.Abs(tb.Rate(FiveStar)-0.066) > 1e-12 {
		t.Fatalf("pull 75 is ramp step 1; got 5★=%v", tb.Rate(FiveStar))
	}
	if tb.Rate(FourStar) != 0.051 {
		t.Fatalf("4★ must stay at base in the window; got %v", tb.Rate(FourStar))
	}
	tb = c.Table(PityState{FiveStar: 89})
	if math.Abs(tb.Rate(FiveStar)-(0.006+15*0.06)) > 1e-12 {
		t.Fatalf("pull 89 is ramp step 15; got 5★=%v", tb.Rate(FiveStar))
	}
}

func TestCurveMonotonicAndConserved(t *testing.T) {
	for _, r := range []Rules{DefaultItemRules(), DefaultCharacterRules()} {
		c := NewCurve(normalized(t, r))
		prev := -1.0
		for n := 0; n <= 90; n++ {
			tb := c.Table(PityState{FiveStar: n})
			if sum := tb.Sum(); math.Abs(sum-1) > 1e-9 {
				t.Fatalf("%s n=%d: rates sum to %v", r.Kind, n, sum)
			}
			e5 := tb.Rate(FiveStar)
			if e5 > 1 {
				t.Fatalf("%s n=%d: 5★ rate %v above 1", r.Kind, n, e5)
			}
			if e5 < prev {
				t.Fatalf("%s n=%d: 5★ rate decreased %v -> %v", r.Kind, n, prev, e5)
			}
			if r.Kind == PoolCharacter && tb.Rate(ThreeStar) != 0 {
				t.Fatalf("character pool has no 3★ tier")
			}
			prev = e5
		}
		if tb := c.Table(PityState{FiveStar: 90}); tb.Rate(FiveStar) != 1 || !tb.HardPity {
			t.Fatalf("%s: 5★ must be 1 at hard pity, got %+v", r.Kind, tb)
		}
	}
}

func TestCurveCharacterHasNoRamp(t *testing.T) {
	c := NewCurve(normalized(t, DefaultCharacterRules()))
	for n := 0; n < 90; n++ {
		if tb := c.Table(PityState{FiveStar: n}); tb.Rate(FiveStar) != 0.006 {
			t.Fatalf("n=%d: character 5★ rate moved to %v", n, tb.Rate(FiveStar))
		}
	}
}

func TestCurveSqueezesFourStar(t *testing.T) {
	r := DefaultItemRules()
	r.Soft.Increment = 0.5
	c := NewCurve(normalized(t, r))
	tb := c.Table(PityState{FiveStar: 76}) // step 2: 0.006 + 1.0 → clamped
	if tb.Rate(FiveStar) != 1 || tb.Rate(ThreeStar) != 0 || tb.Rate(FourStar) != 0 {
		t.Fatalf("expected clamp to 1/0/0, got %+v", tb.Effective)
	}
	tb = c.Table(PityState{FiveStar: 75}) // 0.506 + 0.051, 3★ = 0.443
	if tb.Rate(ThreeStar) < 0 || math.Abs(tb.Sum()-1) > 1e-9 {
		t.Fatalf("bad table %+v", tb.Effective)
	}
}

func TestCurveTargetRampEasings(t *testing.T) {
	for _, e := range []Easing{EaseLinear, EaseOutQuad, EaseInOutCubic} {
		r := DefaultItemRules()
		r.Soft = &SoftPityConfig{Mode: SoftTargetRamp, StartAt: 74, TargetProb: 0.5, Easing: e}
		c := NewCurve(normalized(t, r))
		prev := 0.0
		for n := 74; n < 90; n++ {
			e5 := c.Table(PityState{FiveStar: n}).Rate(FiveStar)
			if e5 < prev {
				t.Fatalf("%s n=%d: ramp decreased", e, n)
			}
			prev = e5
		}
		if math.Abs(prev-0.5) > 1e-12 {
			t.Fatalf("%s: ramp should end at target, got %v", e, prev)
		}
	}
}

func TestRulesNormalizeRejects(t *testing.T) {
	cases := map[string]func(*Rules){
		"hard pity":  func(r *Rules) { r.HardPity = 1 },
		"rates sum":  func(r *Rules) { r.Base.Three = 0.5 },
		"neg floor":  func(r *Rules) { r.FourStarFloor = -1 },
		"soft start": func(r *Rules) { r.Soft.StartAt = 90 },
		"increment":  func(r *Rules) { r.Soft.Increment = 0 },
		"kind":       func(r *Rules) { r.Kind = "weapon" },
	}
	for name, mutate := range cases {
		r := DefaultItemRules()
		mutate(&r)
		if err := r.Normalize(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	c := DefaultCharacterRules()
	c.Base.Three = 0.1
	if err := c.Normalize(); err == nil {
		t.Fatalf("character pool with a 3★ rate must be rejected")
	}
}
