package gacha

// PullRecord is the immutable outcome of one resolved pull. Counters are the
// values observed at resolution time, before any reset.
type PullRecord struct {
	Pool          PoolKind `json:"pool"`
	Sequence      int      `json:"sequence"`
	Rarity        Rarity   `json:"rarity"`
	FiveStarPity  int      `json:"five_star_pity"`
	FourStarPity  int      `json:"four_star_pity"`
	Guarantee     bool     `json:"guarantee"`
	SoftPity      bool     `json:"soft_pity"`
	HardPity      bool     `json:"hard_pity"`
	FourStarFloor bool     `json:"four_star_floor"`
	FiveStarRate  float64  `json:"five_star_rate"`
	Reward        Reward   `json:"reward"`
}

// Tally counts outcomes per rarity.
type Tally map[Rarity]int

// Ledger is the append-only pull history of one pool.
type Ledger struct {
	records []PullRecord
}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Append adds a record at the end.
func (l *Ledger) Append(rec PullRecord) {
	l.records = append(l.records, rec)
}

// Len is the number of recorded pulls.
func (l *Ledger) Len() int { return len(l.records) }

// Snapshot returns a copy of the history in pull order.
func (l *Ledger) Snapshot() []PullRecord {
	return append([]PullRecord(nil), l.records...)
}

// Count returns how many records satisfy pred.
func (l *Ledger) Count(pred func(PullRecord) bool) int {
	n := 0
	for _, r := range l.records {
		if pred(r) {
			n++
		}
	}
	return n
}

// Tally counts every recorded rarity.
func (l *Ledger) Tally() Tally {
	return tallyOf(l.records)
}

// OfRarity is a Count predicate.
func OfRarity(r Rarity) func(PullRecord) bool {
	return func(rec PullRecord) bool { return rec.Rarity == r }
}

func tallyOf(recs []PullRecord) Tally {
	t := Tally{}
	for _, r := range recs {
		t[r.Rarity]++
	}
	return t
}

// Statistics summarises a pool's history and current pity.
type Statistics struct {
	Pool          PoolKind  `json:"pool"`
	TotalPulls    int       `json:"total_pulls"`
	Tally         Tally     `json:"tally"`
	FiveStarRate  float64   `json:"five_star_rate"`
	FourStarRate  float64   `json:"four_star_rate"`
	HardPityHits  int       `json:"hard_pity_hits"`
	Pity          PityState `json:"pity"`
	HardPity      int       `json:"hard_pity"`
	FourStarFloor int       `json:"four_star_floor"`
}

func (l *Ledger) stats(pool PoolKind, pity PityState, rules Rules) Statistics {
	st := Statistics{
		Pool:          pool,
		TotalPulls:    len(l.records),
		Tally:         l.Tally(),
		HardPityHits:  l.Count(func(r PullRecord) bool { return r.HardPity }),
		Pity:          pity,
		HardPity:      rules.HardPity,
		FourStarFloor: rules.FourStarFloor,
	}
	if st.TotalPulls > 0 {
		st.FiveStarRate = float64(st.Tally[FiveStar]) / float64(st.TotalPulls)
		st.FourStarRate = float64(st.Tally[FourStar]) / float64(st.TotalPulls)
	}
	return st
}
