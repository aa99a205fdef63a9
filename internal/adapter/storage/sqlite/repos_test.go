package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"bullionbook/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return db
}

func TestCustomerRepo_SaveIsUpsert(t *testing.T) {
	repo := NewCustomerRepo(openTestDB(t))
	ctx := context.Background()

	c := &domain.Customer{
		ID: "cust_1", Name: "Ravi", Balance: -600,
		MetalBalances:  domain.MetalBalances{domain.MetalGold: 2.5},
		LastActivityAt: 1700000000000,
	}
	require.NoError(t, repo.Save(ctx, c))

	c.Balance = -100
	c.MetalBalances[domain.MetalSilver] = 30
	require.NoError(t, repo.Save(ctx, c))

	got, err := repo.GetByID(ctx, "cust_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, -100.0, got.Balance)
	assert.Equal(t, 2.5, got.MetalBalances.Get(domain.MetalGold))
	assert.Equal(t, 30.0, got.MetalBalances.Get(domain.MetalSilver))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCustomerRepo_GetByIDAbsent(t *testing.T) {
	repo := NewCustomerRepo(openTestDB(t))

	got, err := repo.GetByID(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, got, "absence is (nil, nil), not an error")
}

func TestTransactionRepo_EntriesRoundTrip(t *testing.T) {
	repo := NewTransactionRepo(openTestDB(t))
	ctx := context.Background()

	stockID := "stk_1"
	tx := &domain.Transaction{
		ID: "txn_1", SourceID: "txn_1", DeviceID: "device-a", CustomerID: "cust_1",
		Entries: []domain.TransactionEntry{
			{Kind: domain.EntrySell, Metal: domain.MetalGold, Weight: 10, Touch: 91.6, StockID: &stockID},
			{Kind: domain.EntryMoney, Amount: 500, Direction: domain.MoneyIn},
		},
		Total: 1000, AmountPaid: 400, Settlement: domain.SettlementCash,
		CreatedAt: 1, UpdatedAt: 2,
	}
	require.NoError(t, repo.Save(ctx, tx))

	got, err := repo.GetByID(ctx, "txn_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, tx.Entries, got.Entries)
	assert.Equal(t, domain.SettlementCash, got.Settlement)
}

func TestTransactionRepo_GetBySource(t *testing.T) {
	repo := NewTransactionRepo(openTestDB(t))
	ctx := context.Background()

	// A renamed import keeps its originating identity.
	require.NoError(t, repo.Save(ctx, &domain.Transaction{
		ID: "txn_1_imported_ab12cd34", SourceID: "txn_1", DeviceID: "device-b",
		CustomerID: "cust_1", Settlement: domain.SettlementCash,
	}))

	got, err := repo.GetBySource(ctx, "txn_1", "device-b")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "txn_1_imported_ab12cd34", got.ID)

	got, err = repo.GetBySource(ctx, "txn_1", "device-c")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLedgerRepo_GetAllOrderedByDate(t *testing.T) {
	repo := NewLedgerRepo(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &domain.LedgerEntry{ID: "led_2", TransactionID: "txn_2", Date: 200}))
	require.NoError(t, repo.Save(ctx, &domain.LedgerEntry{ID: "led_1", TransactionID: "txn_1", Date: 100}))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "led_1", all[0].ID)
	assert.Equal(t, "led_2", all[1].ID)
}

func TestStockRepo_RoundTrip(t *testing.T) {
	repo := NewStockRepo(openTestDB(t))
	ctx := context.Background()

	item := &domain.StockItem{StockID: "stk_1", Metal: domain.MetalGold, Weight: 11.5, Touch: 91.6}
	require.NoError(t, repo.Save(ctx, item))

	got, err := repo.GetByID(ctx, "stk_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *item, *got)

	item.Sold = true
	require.NoError(t, repo.Save(ctx, item))
	got, err = repo.GetByID(ctx, "stk_1")
	require.NoError(t, err)
	assert.True(t, got.Sold)
}

func TestInventoryRepo_SingletonRow(t *testing.T) {
	repo := NewInventoryRepo(openTestDB(t))
	ctx := context.Background()

	// Empty database reads as a zero inventory.
	inv, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.BaseInventory{}, *inv)

	require.NoError(t, repo.Save(ctx, &domain.BaseInventory{Gold: 100, Cash: 50000}))
	require.NoError(t, repo.Save(ctx, &domain.BaseInventory{Gold: 120, Cash: 45000}))

	inv, err = repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 120.0, inv.Gold)
	assert.Equal(t, 45000.0, inv.Cash)
}
