package ports

import (
	"context"

	"bullionbook/internal/core/domain"
)

// CustomerRepository defines persistence operations for customers.
// GetByID returns (nil, nil) when the id is unknown.
type CustomerRepository interface {
	GetAll(ctx context.Context) ([]domain.Customer, error)
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	Save(ctx context.Context, customer *domain.Customer) error // upsert
}

// TransactionRepository defines persistence operations for transactions.
type TransactionRepository interface {
	GetAll(ctx context.Context) ([]domain.Transaction, error)
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	// GetBySource looks a transaction up by its device-scoped identity:
	// the id allocated on the originating device plus that device's id.
	// This is the merge key; it survives local renames.
	GetBySource(ctx context.Context, sourceID, deviceID string) (*domain.Transaction, error)
	Save(ctx context.Context, tx *domain.Transaction) error // upsert
}

// LedgerRepository defines persistence operations for ledger entries.
type LedgerRepository interface {
	GetAll(ctx context.Context) ([]domain.LedgerEntry, error)
	GetByID(ctx context.Context, id string) (*domain.LedgerEntry, error)
	Save(ctx context.Context, entry *domain.LedgerEntry) error // upsert
}

// StockRepository defines persistence operations for stock items.
type StockRepository interface {
	GetAll(ctx context.Context) ([]domain.StockItem, error)
	GetByID(ctx context.Context, stockID string) (*domain.StockItem, error)
	Save(ctx context.Context, item *domain.StockItem) error // upsert
}

// InventoryRepository persists the singleton base inventory aggregate.
// Get returns a zero-valued inventory when none was ever saved.
type InventoryRepository interface {
	Get(ctx context.Context) (*domain.BaseInventory, error)
	Save(ctx context.Context, inv *domain.BaseInventory) error
}
