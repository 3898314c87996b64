package gacha

// Catalog supplies the candidate rewards of one tier.
type Catalog interface {
	Candidates(kind PoolKind, r Rarity) []Reward
}

// CatalogFunc adapts a function to Catalog.
type CatalogFunc func(kind PoolKind, r Rarity) []Reward

func (f CatalogFunc) Candidates(kind PoolKind, r Rarity) []Reward { return f(kind, r) }

// Selector maps a resolved rarity to a concrete reward.
type Selector struct {
	catalog Catalog
}

func NewSelector(c Catalog) Selector {
	return Selector{catalog: c}
}

// Select performs one uniform pick among the tier's candidates.
// An empty tier is a *PoolEmptyError; it is never served from a lower tier.
func (s Selector) Select(kind PoolKind, r Rarity, sample float64) (Reward, error) {
	var candidates []Reward
	if s.catalog != nil {
		candidates = s.catalog.Candidates(kind, r)
	}
	if len(candidates) == 0 {
		return Reward{}, &PoolEmptyError{Pool: kind, Rarity: r}
	}
	idx := int(clampSample(sample) * float64(len(candidates)))
	if idx >= len(candidates) {
		idx = len(candidates) - 1
	}
	reward := candidates[idx]
	reward.Rarity = r
	return reward, nil
}
