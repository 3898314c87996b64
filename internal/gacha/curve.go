package gacha

// ProbabilityTable is the rarity distribution for one pull.
type ProbabilityTable struct {
	Pool      PoolKind `json:"pool"`
	Base      Rates    `json:"base"`
	Effective Rates    `json:"effective"`
	SoftPity  bool     `json:"soft_pity"` // the ramp moved the 5★ rate
	HardPity  bool     `json:"hard_pity"` // 5★ is certain
}

// Rate returns the effective rate of a tier.
func (t ProbabilityTable) Rate(r Rarity) float64 { return t.Effective.Of(r) }

// Sum adds up the effective rates; always 1 within floating-point tolerance.
func (t ProbabilityTable) Sum() float64 { return t.Effective.Sum() }

// Curve computes the effective distribution from a pity snapshot.
// It is a pure function of its rules; every Pool owns its own Curve.
type Curve struct {
	rules Rules
}

// NewCurve builds a curve for normalized rules.
func NewCurve(rules Rules) Curve {
	return Curve{rules: rules}
}

// Table evaluates the curve at the given counters.
func (c Curve) Table(s PityState) ProbabilityTable {
	r := c.rules
	t := ProbabilityTable{Pool: r.Kind, Base: r.Base, Effective: r.Base}

	if s.FiveStar >= r.HardPity {
		t.Effective = Rates{Five: 1}
		t.HardPity = true
		return t
	}
	if !r.Soft.active(s.FiveStar, r.HardPity) {
		return t
	}

	e5 := r.Soft.fiveStarRate(r.Base.Five, s.FiveStar, r.HardPity)
	e4 := r.Base.Four
	e3 := 1 - e5 - e4
	if !r.HasThreeStar() {
		// two-tier pool: 4★ is whatever 5★ leaves
		e4, e3 = 1-e5, 0
	} else if e3 < 0 {
		// the ramp squeezes 4★ out near the ceiling
		e3 = 0
		e4 = 1 - e5
	}
	t.Effective = Rates{Five: e5, Four: e4, Three: e3}
	t.SoftPity = true
	return t
}
