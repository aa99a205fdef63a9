package domain

// Customer is a trading counterparty. Balance is a signed currency amount:
// positive means the merchant owes the customer. MetalBalances follows the
// same sign convention per metal kind.
//
// Balances are mutated only through the Apply*Delta methods — one signed
// delta per transaction — never by field-by-field overwrite. The single
// exception is the merge engine's last-write-wins path, which replaces the
// whole record when a strictly newer remote copy arrives.
type Customer struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Balance        float64       `json:"balance"`
	MetalBalances  MetalBalances `json:"metal_balances"`
	LastActivityAt int64         `json:"last_activity_at"` // epoch ms
}

// ApplyMoneyDelta applies one signed currency delta.
func (c *Customer) ApplyMoneyDelta(delta float64) {
	c.Balance += delta
}

// ApplyMetalDelta applies one signed weight delta for the given kind.
func (c *Customer) ApplyMetalDelta(kind MetalKind, delta float64) {
	if c.MetalBalances == nil {
		c.MetalBalances = make(MetalBalances)
	}
	c.MetalBalances.Add(kind, delta)
}
