package domain

// MetalKind enumerates the metal kinds the merchant books. Gold and silver
// arrive impure (weighed with touch and cut); the fine kinds are refined
// bars traded at raw weight.
type MetalKind string

const (
	MetalGold       MetalKind = "GOLD"
	MetalSilver     MetalKind = "SILVER"
	MetalFineGold   MetalKind = "FINE_GOLD"
	MetalFineSilver MetalKind = "FINE_SILVER"
)

// AllMetalKinds returns every bookable kind. Keep in sync with the
// constants above.
func AllMetalKinds() []MetalKind {
	return []MetalKind{MetalGold, MetalSilver, MetalFineGold, MetalFineSilver}
}

// IsRefined reports whether the kind trades at raw weight, with no
// touch/cut adjustment.
func (m MetalKind) IsRefined() bool {
	switch m {
	case MetalFineGold, MetalFineSilver:
		return true
	case MetalGold, MetalSilver:
		return false
	}
	return false
}

// Valid reports whether m is one of the known kinds.
func (m MetalKind) Valid() bool {
	switch m {
	case MetalGold, MetalSilver, MetalFineGold, MetalFineSilver:
		return true
	}
	return false
}

// MetalBalances maps metal kind to a signed weight. Positive means the
// merchant owes the customer that weight.
type MetalBalances map[MetalKind]float64

// Get returns the balance for kind, zero when unset.
func (b MetalBalances) Get(kind MetalKind) float64 {
	return b[kind]
}

// Add applies a signed delta to the balance for kind. This is the only
// mutation path for metal balances.
func (b MetalBalances) Add(kind MetalKind, delta float64) {
	b[kind] += delta
}

// Clone returns an independent copy.
func (b MetalBalances) Clone() MetalBalances {
	out := make(MetalBalances, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}
