package domain

// LedgerEntry is a derived record describing one money-affecting update of
// a transaction. Date is the primary ordering key across the whole ledger.
type LedgerEntry struct {
	ID            string             `json:"id"`
	TransactionID string             `json:"transaction_id"`
	MoneyReceived float64            `json:"money_received"`
	MoneyGiven    float64            `json:"money_given"`
	Entries       []TransactionEntry `json:"entries"`
	Date          int64              `json:"date"` // epoch ms
}

// RecreateLedgerEntry rebuilds a ledger entry by replaying its source
// transaction, instead of copying the incoming record verbatim. The entry
// therefore always stays derivable from the transaction it describes.
// txID is the transaction's local id, which may differ from the incoming
// one after a merge-time rename.
func RecreateLedgerEntry(id string, src Transaction, txID string, date int64) LedgerEntry {
	le := LedgerEntry{
		ID:            id,
		TransactionID: txID,
		Entries:       append([]TransactionEntry(nil), src.Entries...),
		Date:          date,
	}
	paid := src.AmountPaid - src.PreviousAmountPaid
	if src.Total >= 0 {
		le.MoneyReceived = paid
	} else {
		le.MoneyGiven = paid
	}
	return le
}
