package gacha

// Resolution is what the resolver decided for one pull and why.
type Resolution struct {
	Rarity        Rarity
	HardPity      bool // forced by the 5★ ceiling
	FourStarFloor bool // forced by the 4★ floor
	SoftPity      bool // sampled from a ramped table
}

// Resolve decides the rarity of a pull. It is a pure function of its
// inputs; sample must be in [0,1).
//
// Precedence is fixed and later checks never override earlier ones:
//  1. 5★ counter at or past hard pity → 5★
//  2. 4★ counter at or past the 4★ floor → 4★
//  3. weighted bands over [0,1) in the order 5★, 4★, 3★
//
// Pools without a 3★ tier resolve every non-5★ sample to 4★.
func Resolve(rules Rules, s PityState, table ProbabilityTable, sample float64) Resolution {
	if s.FiveStar >= rules.HardPity {
		return Resolution{Rarity: FiveStar, HardPity: true}
	}
	if rules.FourStarFloor > 0 && s.FourStar >= rules.FourStarFloor {
		return Resolution{Rarity: FourStar, FourStarFloor: true, SoftPity: table.SoftPity}
	}

	res := Resolution{SoftPity: table.SoftPity}
	tiers := rules.Tiers()
	cumulative := 0.0
	for _, t := range tiers[:len(tiers)-1] {
		cumulative += table.Rate(t)
		if sample < cumulative {
			res.Rarity = t
			return res
		}
	}
	// the lowest tier takes the rest of [0,1)
	res.Rarity = tiers[len(tiers)-1]
	return res
}
