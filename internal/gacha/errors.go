package gacha

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidProb = errors.New("invalid probability p; must be 0..1")
	ErrRulesConfig = errors.New("invalid pool rules")
)

// PoolEmptyError is returned when the catalog has no candidate for the
// resolved rarity. The pull is abandoned; pity state is left untouched.
type PoolEmptyError struct {
	Pool   PoolKind
	Rarity Rarity
}

func (e *PoolEmptyError) Error() string {
	return fmt.Sprintf("pool %s has no %s candidates", e.Pool, e.Rarity)
}

// InvalidPityStateError reports counters that broke an engine invariant.
// The mutation that produced them is discarded.
type InvalidPityStateError struct {
	Pool   PoolKind
	State  PityState
	Reason string
}

func (e *InvalidPityStateError) Error() string {
	return fmt.Sprintf("pool %s: invalid pity state (5★=%d, 4★=%d): %s",
		e.Pool, e.State.FiveStar, e.State.FourStar, e.Reason)
}

// IsPoolEmpty reports whether err wraps a *PoolEmptyError.
func IsPoolEmpty(err error) bool {
	var pe *PoolEmptyError
	return errors.As(err, &pe)
}

// IsInvalidPityState reports whether err wraps a *InvalidPityStateError.
func IsInvalidPityState(err error) bool {
	var ie *InvalidPityStateError
	return errors.As(err, &ie)
}
