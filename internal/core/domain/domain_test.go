package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetalKind_IsRefined(t *testing.T) {
	assert.True(t, MetalFineGold.IsRefined())
	assert.True(t, MetalFineSilver.IsRefined())
	assert.False(t, MetalGold.IsRefined())
	assert.False(t, MetalSilver.IsRefined())
}

func TestMetalKind_Valid(t *testing.T) {
	for _, k := range AllMetalKinds() {
		assert.True(t, k.Valid(), string(k))
	}
	assert.False(t, MetalKind("PLATINUM").Valid())
	assert.False(t, MetalKind("").Valid())
}

func TestMetalBalances_CloneIsIndependent(t *testing.T) {
	b := MetalBalances{MetalGold: 5}
	c := b.Clone()
	c.Add(MetalGold, 1)
	assert.Equal(t, 5.0, b.Get(MetalGold))
	assert.Equal(t, 6.0, c.Get(MetalGold))
}

func TestCustomer_ApplyMetalDeltaInitializesMap(t *testing.T) {
	c := Customer{ID: "cust_1"}
	c.ApplyMetalDelta(MetalSilver, -30)
	assert.Equal(t, -30.0, c.MetalBalances.Get(MetalSilver))
}

func TestEntry_SettledWeight(t *testing.T) {
	impure := TransactionEntry{Kind: EntrySell, Metal: MetalGold, Weight: 100, Touch: 80, Cut: 5}

	// Refined metal ignores touch and cut entirely.
	refined := TransactionEntry{Kind: EntrySell, Metal: MetalFineGold, Weight: 100, Touch: 80, Cut: 5}
	assert.Equal(t, 100.0, refined.SettledWeight(SettlementPureMetal))
	assert.Equal(t, 100.0, refined.SettledWeight(SettlementNetMetal))

	assert.Equal(t, 80.0, impure.SettledWeight(SettlementPureMetal), "pure = weight * touch / 100")
	assert.Equal(t, 95.0, impure.SettledWeight(SettlementNetMetal), "net = weight - cut")

	// A pre-computed pure weight wins over the derived one.
	impure.PureWeight = 79.5
	assert.Equal(t, 79.5, impure.SettledWeight(SettlementPureMetal))
}

func TestEntry_MetalDelta(t *testing.T) {
	purchase := TransactionEntry{Kind: EntryPurchase, Metal: MetalFineSilver, Weight: 12}
	kind, delta, ok := purchase.MetalDelta(SettlementNetMetal)
	require.True(t, ok)
	assert.Equal(t, MetalFineSilver, kind)
	assert.Equal(t, 12.0, delta, "purchase credits the customer")

	sell := TransactionEntry{Kind: EntrySell, Metal: MetalFineSilver, Weight: 12}
	_, delta, ok = sell.MetalDelta(SettlementNetMetal)
	require.True(t, ok)
	assert.Equal(t, -12.0, delta, "sell debits the customer")

	money := TransactionEntry{Kind: EntryMoney, Amount: 500, Direction: MoneyIn}
	_, _, ok = money.MetalDelta(SettlementCash)
	assert.False(t, ok)
}

func TestTransaction_BalanceDelta(t *testing.T) {
	tx := Transaction{Total: 1000, AmountPaid: 400}
	assert.Equal(t, -600.0, tx.BalanceDelta(), "unpaid remainder becomes customer debt")

	overpaid := Transaction{Total: 1000, AmountPaid: 1200}
	assert.Equal(t, 200.0, overpaid.BalanceDelta())
}

func TestTransaction_IsMetalSettled(t *testing.T) {
	assert.False(t, (&Transaction{Settlement: SettlementCash}).IsMetalSettled())
	assert.True(t, (&Transaction{Settlement: SettlementPureMetal}).IsMetalSettled())
	assert.True(t, (&Transaction{Settlement: SettlementNetMetal}).IsMetalSettled())
}

func TestSyntheticTransactionID(t *testing.T) {
	id := SyntheticTransactionID("txn_1")
	assert.True(t, strings.HasPrefix(id, "txn_1_imported_"))
	assert.NotEqual(t, id, SyntheticTransactionID("txn_1"))
}

func TestRecreateLedgerEntry(t *testing.T) {
	src := Transaction{
		ID: "txn_1", Total: 1000, AmountPaid: 700, PreviousAmountPaid: 400,
		Entries: []TransactionEntry{{Kind: EntrySell, Metal: MetalGold, Weight: 10}},
	}
	le := RecreateLedgerEntry("led_1", src, "txn_1_imported_ab12cd34", 1700000000000)
	assert.Equal(t, "txn_1_imported_ab12cd34", le.TransactionID)
	assert.Equal(t, 300.0, le.MoneyReceived, "paid this update, not cumulative")
	assert.Zero(t, le.MoneyGiven)
	assert.Len(t, le.Entries, 1)

	// A negative total means the merchant paid out.
	out := RecreateLedgerEntry("led_2", Transaction{Total: -500, AmountPaid: 500}, "txn_2", 1)
	assert.Zero(t, out.MoneyReceived)
	assert.Equal(t, 500.0, out.MoneyGiven)
}

func TestInventorySnapshot_DiffAndApply(t *testing.T) {
	local := BaseInventory{Gold: 100, Silver: 200, Cash: 5000}
	snap := SnapshotOfInventory(BaseInventory{Gold: 120, Silver: 200, Cash: 4000})

	diff := snap.Diff(local)
	assert.ElementsMatch(t, []string{"gold", "cash"}, diff)

	snap.ApplyTo(&local)
	assert.Equal(t, 120.0, local.Gold)
	assert.Equal(t, 4000.0, local.Cash)
	assert.Equal(t, 200.0, local.Silver)
}

func TestInventorySnapshot_AbsentFieldsUntouched(t *testing.T) {
	local := BaseInventory{Gold: 100, Cash: 5000}
	gold := 120.0
	snap := &InventorySnapshot{Gold: &gold}

	assert.Equal(t, []string{"gold"}, snap.Diff(local))
	snap.ApplyTo(&local)
	assert.Equal(t, 120.0, local.Gold)
	assert.Equal(t, 5000.0, local.Cash)
}

func TestBaseInventory_MetalAmountRoundTrip(t *testing.T) {
	var b BaseInventory
	for i, k := range AllMetalKinds() {
		b.SetMetalAmount(k, float64(i+1))
	}
	assert.Equal(t, 1.0, b.MetalAmount(MetalGold))
	assert.Equal(t, 4.0, b.MetalAmount(MetalFineSilver))
	assert.Zero(t, b.MetalAmount(MetalKind("PLATINUM")))
}

func TestBackupBundle_CountRecords(t *testing.T) {
	b := BackupBundle{Records: BundleRecords{
		Customers:    make([]Customer, 2),
		Transactions: make([]Transaction, 3),
		Ledger:       make([]LedgerEntry, 3),
		Stock:        make([]StockItem, 1),
	}}
	assert.Equal(t, 9, b.CountRecords())

	b.Records.BaseInventory = SnapshotOfInventory(BaseInventory{})
	assert.Equal(t, 10, b.CountRecords())
}
