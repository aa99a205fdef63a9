package domain

// BaseInventory is the singleton aggregate of merchant-held quantities per
// metal kind plus cash on hand.
type BaseInventory struct {
	Gold       float64 `json:"gold"`
	Silver     float64 `json:"silver"`
	FineGold   float64 `json:"fine_gold"`
	FineSilver float64 `json:"fine_silver"`
	Cash       float64 `json:"cash"`
}

// MetalAmount returns the held quantity for kind. Exhaustive over
// MetalKind; unknown kinds read as zero.
func (b *BaseInventory) MetalAmount(kind MetalKind) float64 {
	switch kind {
	case MetalGold:
		return b.Gold
	case MetalSilver:
		return b.Silver
	case MetalFineGold:
		return b.FineGold
	case MetalFineSilver:
		return b.FineSilver
	}
	return 0
}

// SetMetalAmount sets the held quantity for kind.
func (b *BaseInventory) SetMetalAmount(kind MetalKind, v float64) {
	switch kind {
	case MetalGold:
		b.Gold = v
	case MetalSilver:
		b.Silver = v
	case MetalFineGold:
		b.FineGold = v
	case MetalFineSilver:
		b.FineSilver = v
	}
}

// InventorySnapshot is the bundle-side representation of BaseInventory.
// Fields are pointers so a partial export can omit some of them; an absent
// field never touches the corresponding local value on import.
type InventorySnapshot struct {
	Gold       *float64 `json:"gold,omitempty"`
	Silver     *float64 `json:"silver,omitempty"`
	FineGold   *float64 `json:"fine_gold,omitempty"`
	FineSilver *float64 `json:"fine_silver,omitempty"`
	Cash       *float64 `json:"cash,omitempty"`
}

// SnapshotOfInventory captures every field of a full local inventory.
func SnapshotOfInventory(b BaseInventory) *InventorySnapshot {
	return &InventorySnapshot{
		Gold:       &b.Gold,
		Silver:     &b.Silver,
		FineGold:   &b.FineGold,
		FineSilver: &b.FineSilver,
		Cash:       &b.Cash,
	}
}

// Diff lists the names of the snapshot fields that are present and differ
// from the local inventory.
func (s *InventorySnapshot) Diff(local BaseInventory) []string {
	var fields []string
	if s.Gold != nil && *s.Gold != local.Gold {
		fields = append(fields, "gold")
	}
	if s.Silver != nil && *s.Silver != local.Silver {
		fields = append(fields, "silver")
	}
	if s.FineGold != nil && *s.FineGold != local.FineGold {
		fields = append(fields, "fine_gold")
	}
	if s.FineSilver != nil && *s.FineSilver != local.FineSilver {
		fields = append(fields, "fine_silver")
	}
	if s.Cash != nil && *s.Cash != local.Cash {
		fields = append(fields, "cash")
	}
	return fields
}

// ApplyTo overwrites the local fields the snapshot carries, leaving absent
// fields untouched.
func (s *InventorySnapshot) ApplyTo(local *BaseInventory) {
	if s.Gold != nil {
		local.Gold = *s.Gold
	}
	if s.Silver != nil {
		local.Silver = *s.Silver
	}
	if s.FineGold != nil {
		local.FineGold = *s.FineGold
	}
	if s.FineSilver != nil {
		local.FineSilver = *s.FineSilver
	}
	if s.Cash != nil {
		local.Cash = *s.Cash
	}
}
