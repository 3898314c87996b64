package gacha

// PityState is a snapshot of one pool's pity counters.
type PityState struct {
	FiveStar  int  `json:"five_star"` // pulls since last 5★, including the current one
	FourStar  int  `json:"four_star"` // pulls since last 4★-or-better
	Guarantee bool `json:"guarantee"` // set when hard pity fires, cleared on the next 5★
}

// Tracker owns the mutable pity counters of a single pool.
// It is not safe for concurrent use; Pool serialises access.
type Tracker struct {
	hardPity int
	state    PityState
}

// NewTracker creates a tracker that raises the guarantee flag at hardPity.
func NewTracker(hardPity int) *Tracker {
	return &Tracker{hardPity: hardPity}
}

// Increment advances both counters by one. It is called once per pull,
// before the rarity is determined.
func (t *Tracker) Increment() {
	t.state = t.state.next(t.hardPity)
}

// Observe returns a read-only copy of the counters.
func (t *Tracker) Observe() PityState {
	return t.state
}

// ResetOnOutcome applies the reset rules for a resolved rarity.
// A 4★ does not touch the 5★ clock.
func (t *Tracker) ResetOnOutcome(r Rarity) {
	t.state = t.state.afterOutcome(r)
}

// Validate checks the counters against the hard-pity ceiling.
func (t *Tracker) Validate(pool PoolKind) error {
	return t.state.validate(pool, t.hardPity)
}

// restore replaces the counters wholesale; used to commit a finished pull.
func (t *Tracker) restore(s PityState) {
	t.state = s
}

func (s PityState) next(hardPity int) PityState {
	s.FiveStar++
	s.FourStar++
	if hardPity > 0 && s.FiveStar >= hardPity {
		s.Guarantee = true
	}
	return s
}

func (s PityState) afterOutcome(r Rarity) PityState {
	switch r {
	case FiveStar:
		s.FiveStar = 0
		s.Guarantee = false
	case FourStar:
		s.FourStar = 0
	}
	return s
}

func (s PityState) validate(pool PoolKind, hardPity int) error {
	switch {
	case s.FiveStar < 0 || s.FourStar < 0:
		return &InvalidPityStateError{Pool: pool, State: s, Reason: "negative counter"}
	case hardPity > 0 && s.FiveStar > hardPity:
		return &InvalidPityStateError{Pool: pool, State: s, Reason: "5★ counter beyond hard pity"}
	}
	return nil
}
