package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// EntryKind distinguishes the three entry shapes in a transaction.
type EntryKind string

const (
	EntrySell     EntryKind = "SELL"
	EntryPurchase EntryKind = "PURCHASE"
	EntryMoney    EntryKind = "MONEY"
)

// SettlementType records how a transaction settled. Cash settlement moves
// the customer's money balance; the two metal settlements move metal
// balances and leave money untouched.
type SettlementType string

const (
	SettlementCash      SettlementType = "CASH"
	SettlementPureMetal SettlementType = "PURE_METAL" // impure entries settle at pure weight
	SettlementNetMetal  SettlementType = "NET_METAL"  // impure entries settle at weight minus cut
)

// MoneyDirection is the direction of a money entry from the merchant's
// perspective.
type MoneyDirection string

const (
	MoneyIn  MoneyDirection = "IN"
	MoneyOut MoneyDirection = "OUT"
)

// TransactionEntry is one line of a transaction.
type TransactionEntry struct {
	Kind       EntryKind      `json:"kind"`
	Metal      MetalKind      `json:"metal,omitempty"`
	Weight     float64        `json:"weight,omitempty"`
	Touch      float64        `json:"touch,omitempty"` // fineness percent, impure kinds only
	Cut        float64        `json:"cut,omitempty"`   // wastage deduction in weight units
	PureWeight float64        `json:"pure_weight,omitempty"`
	Amount     float64        `json:"amount,omitempty"`
	Direction  MoneyDirection `json:"direction,omitempty"`
	StockID    *string        `json:"stock_id,omitempty"`
}

// ComputePureWeight returns weight reduced to fine content by touch.
func ComputePureWeight(weight, touch float64) float64 {
	return weight * touch / 100
}

// SettledWeight returns the weight figure an entry contributes under the
// given settlement. Refined kinds always settle at raw weight; impure kinds
// settle at pure weight or net weight depending on how the deal was struck.
func (e TransactionEntry) SettledWeight(settlement SettlementType) float64 {
	if e.Metal.IsRefined() {
		return e.Weight
	}
	if settlement == SettlementNetMetal {
		return e.Weight - e.Cut
	}
	pure := e.PureWeight
	if pure == 0 {
		pure = ComputePureWeight(e.Weight, e.Touch)
	}
	return pure
}

// MetalDelta returns the signed metal-balance delta this entry applies to
// the owning customer under the given settlement, and whether it applies
// one at all. Purchases credit the customer (merchant owes metal), sells
// debit; money entries carry no metal.
func (e TransactionEntry) MetalDelta(settlement SettlementType) (MetalKind, float64, bool) {
	switch e.Kind {
	case EntryPurchase:
		return e.Metal, e.SettledWeight(settlement), true
	case EntrySell:
		return e.Metal, -e.SettledWeight(settlement), true
	}
	return "", 0, false
}

// Transaction is a dated deal with one customer. Once merged from a remote
// device it is immutable except for the id rename applied at merge time.
type Transaction struct {
	ID string `json:"id"`
	// SourceID is the id the originating device allocated. It survives a
	// merge-time rename so re-imports of the same bundle stay idempotent.
	SourceID           string             `json:"source_id"`
	DeviceID           string             `json:"device_id"`
	CustomerID         string             `json:"customer_id"`
	Entries            []TransactionEntry `json:"entries"`
	Total              float64            `json:"total"` // merchant perspective: positive = owed to merchant
	AmountPaid         float64            `json:"amount_paid"`
	PreviousAmountPaid float64            `json:"previous_amount_paid"`
	Settlement         SettlementType     `json:"settlement"`
	CreatedAt          int64              `json:"created_at"` // epoch ms
	UpdatedAt          int64              `json:"updated_at"` // epoch ms
}

// IsMetalSettled reports whether the transaction settles in metal weight
// rather than currency.
func (t *Transaction) IsMetalSettled() bool {
	return t.Settlement == SettlementPureMetal || t.Settlement == SettlementNetMetal
}

// BalanceDelta is the single signed currency delta this transaction applies
// to its customer: the outstanding merchant-perspective amount, negated
// into the customer's sign convention.
func (t *Transaction) BalanceDelta() float64 {
	return -(t.Total - t.AmountPaid)
}

// SyntheticTransactionID derives a fresh id for an incoming transaction
// whose id collides with a local one from a different device.
func SyntheticTransactionID(collidingID string) string {
	return fmt.Sprintf("%s_imported_%s", collidingID, uuid.NewString()[:8])
}
