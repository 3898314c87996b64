package gacha

import (
	"fmt"
	"sync"
)

// TenPull is the size of a batch pull.
const TenPull = 10

// Batch is the result of a multi-pull.
type Batch struct {
	Records []PullRecord `json:"records"`
	Tally   Tally        `json:"tally"`
}

// Pool is one independently-stated reward pool. It owns its pity tracker,
// probability curve, ledger and random stream, and serialises pulls:
// concurrent callers on the same Pool never interleave a transaction.
type Pool struct {
	mu       sync.Mutex
	rules    Rules
	curve    Curve
	tracker  *Tracker
	ledger   *Ledger
	selector Selector
	rng      RandomSource
}

// NewPool validates rules and builds a fresh pool. A nil rng means crypto
// randomness.
func NewPool(rules Rules, catalog Catalog, rng RandomSource) (*Pool, error) {
	if rules.Soft != nil {
		soft := *rules.Soft
		rules.Soft = &soft
	}
	if err := rules.Normalize(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	return &Pool{
		rules:    rules,
		curve:    NewCurve(rules),
		tracker:  NewTracker(rules.HardPity),
		ledger:   NewLedger(),
		selector: NewSelector(catalog),
		rng:      rng,
	}, nil
}

// Kind is the pool's identifier.
func (p *Pool) Kind() PoolKind { return p.rules.Kind }

// Rules returns the normalized rules the pool runs with.
func (p *Pool) Rules() Rules { return p.rules }

// PullSingle runs one full pull transaction:
// increment → curve → resolve → select → reset → record.
// On error nothing is committed: counters and history are as before the call.
func (p *Pool) PullSingle() (PullRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pullLocked()
}

// PullTen runs ten sequential single pulls; pity from pull k is visible to
// pull k+1. If a pull fails, the records already committed are returned
// together with the error.
func (p *Pool) PullTen() (Batch, error) {
	return p.PullN(TenPull)
}

// PullN runs n sequential single pulls under one lock.
func (p *Pool) PullN(n int) (Batch, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	recs := make([]PullRecord, 0, n)
	for i := 0; i < n; i++ {
		rec, err := p.pullLocked()
		if err != nil {
			return Batch{Records: recs, Tally: tallyOf(recs)}, fmt.Errorf("pull %d of %d: %w", i+1, n, err)
		}
		recs = append(recs, rec)
	}
	return Batch{Records: recs, Tally: tallyOf(recs)}, nil
}

func (p *Pool) pullLocked() (PullRecord, error) {
	kind := p.rules.Kind

	// Work on a copy; the tracker is only touched once the pull succeeded.
	observed := p.tracker.Observe().next(p.rules.HardPity)
	if err := observed.validate(kind, p.rules.HardPity); err != nil {
		return PullRecord{}, err
	}

	table := p.curve.Table(observed)
	if !nearlyOne(table.Sum()) {
		return PullRecord{}, &InvalidPityStateError{
			Pool:   kind,
			State:  observed,
			Reason: fmt.Sprintf("effective rates sum to %.9f", table.Sum()),
		}
	}
	res := Resolve(p.rules, observed, table, p.rng.Float64())

	reward, err := p.selector.Select(kind, res.Rarity, p.rng.Float64())
	if err != nil {
		return PullRecord{}, err
	}

	after := observed.afterOutcome(res.Rarity)
	if err := after.validate(kind, p.rules.HardPity); err != nil {
		return PullRecord{}, err
	}

	rec := PullRecord{
		Pool:          kind,
		Sequence:      p.ledger.Len() + 1,
		Rarity:        res.Rarity,
		FiveStarPity:  observed.FiveStar,
		FourStarPity:  observed.FourStar,
		Guarantee:     observed.Guarantee,
		SoftPity:      res.SoftPity,
		HardPity:      res.HardPity,
		FourStarFloor: res.FourStarFloor,
		FiveStarRate:  table.Rate(FiveStar),
		Reward:        reward,
	}
	p.tracker.restore(after)
	p.ledger.Append(rec)
	return rec, nil
}

// InspectPity returns the current counters.
func (p *Pool) InspectPity() PityState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tracker.Observe()
}

// InspectTable returns the distribution the next pull will be sampled from,
// i.e. the curve evaluated at the counters after the next increment.
func (p *Pool) InspectTable() ProbabilityTable {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.curve.Table(p.tracker.Observe().next(p.rules.HardPity))
}

// CurrentTable returns the curve evaluated at the current counters.
func (p *Pool) CurrentTable() ProbabilityTable {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.curve.Table(p.tracker.Observe())
}

// ExportHistory returns the ordered pull history for a ledger sink.
func (p *Pool) ExportHistory() []PullRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ledger.Snapshot()
}

// Count counts history records matching pred.
func (p *Pool) Count(pred func(PullRecord) bool) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ledger.Count(pred)
}

// Stats summarises the pool's history.
func (p *Pool) Stats() Statistics {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ledger.stats(p.rules.Kind, p.tracker.Observe(), p.rules)
}

// Reset puts the pool back to its initial state (new game).
func (p *Pool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tracker = NewTracker(p.rules.HardPity)
	p.ledger = NewLedger()
}
