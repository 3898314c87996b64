package gacha

import "testing"

func TestTrackerIncrementAndReset(t *testing.T) {
	tr := NewTracker(90)
	for i := 0; i < 12; i++ {
		tr.Increment()
	}
	s := tr.Observe()
	if s.FiveStar != 12 || s.FourStar != 12 || s.Guarantee {
		t.Fatalf("after 12 increments got %+v", s)
	}

	// 4★ resets only its own clock
	tr.ResetOnOutcome(FourStar)
	s = tr.Observe()
	if s.FourStar != 0 || s.FiveStar != 12 {
		t.Fatalf("4★ reset: got %+v", s)
	}

	// 3★ resets nothing
	tr.Increment()
	tr.ResetOnOutcome(ThreeStar)
	s = tr.Observe()
	if s.FourStar != 1 || s.FiveStar != 13 {
		t.Fatalf("3★ reset: got %+v", s)
	}

	tr.ResetOnOutcome(FiveStar)
	s = tr.Observe()
	if s.FiveStar != 0 || s.Guarantee || s.FourStar != 1 {
		t.Fatalf("5★ reset: got %+v", s)
	}
}

func TestTrackerGuaranteeFlag(t *testing.T) {
	tr := NewTracker(5)
	for i := 0; i < 4; i++ {
		tr.Increment()
	}
	if tr.Observe().Guarantee {
		t.Fatalf("guarantee must not be set before hard pity")
	}
	tr.Increment()
	if !tr.Observe().Guarantee {
		t.Fatalf("guarantee must be set at hard pity")
	}
	if err := tr.Validate(PoolItem); err != nil {
		t.Fatalf("counter at the ceiling is valid: %v", err)
	}
	tr.Increment()
	if err := tr.Validate(PoolItem); !IsInvalidPityState(err) {
		t.Fatalf("counter past the ceiling must be invalid, got %v", err)
	}
	tr.ResetOnOutcome(FiveStar)
	if s := tr.Observe(); s.Guarantee || s.FiveStar != 0 {
		t.Fatalf("5★ must clear guarantee, got %+v", s)
	}
}

func TestPityStateValidateNegative(t *testing.T) {
	err := PityState{FiveStar: -1}.validate(PoolCharacter, 90)
	if !IsInvalidPityState(err) {
		t.Fatalf("negative counter must be invalid, got %v", err)
	}
}
