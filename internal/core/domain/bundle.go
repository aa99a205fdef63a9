package domain

// ExportKind distinguishes operator-triggered exports from the scheduler's
// rolling one.
type ExportKind string

const (
	ExportManual ExportKind = "manual"
	ExportAuto   ExportKind = "auto"
)

// BundleRecords carries the domain snapshot inside a backup bundle.
// BaseInventory is nil for since-filtered exports: a partial-period export
// must never let a later import clobber a complete inventory total.
type BundleRecords struct {
	Customers     []Customer         `json:"customers"`
	Transactions  []Transaction      `json:"transactions"`
	Ledger        []LedgerEntry      `json:"ledger"`
	BaseInventory *InventorySnapshot `json:"baseInventory,omitempty"`
	Stock         []StockItem        `json:"stock"`
}

// BackupBundle is the single logical document inside an export archive.
type BackupBundle struct {
	ExportType  ExportKind    `json:"exportType"`
	Timestamp   int64         `json:"timestamp"` // epoch ms
	RecordCount int           `json:"recordCount"`
	DeviceID    string        `json:"deviceId"`
	Records     BundleRecords `json:"records"`
}

// CountRecords totals the records across all sets, inventory counting as
// one when present.
func (b *BackupBundle) CountRecords() int {
	n := len(b.Records.Customers) +
		len(b.Records.Transactions) +
		len(b.Records.Ledger) +
		len(b.Records.Stock)
	if b.Records.BaseInventory != nil {
		n++
	}
	return n
}
