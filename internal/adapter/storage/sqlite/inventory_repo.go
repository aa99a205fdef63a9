package sqlite

import (
	"context"
	"errors"

	"bullionbook/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryRepo implements ports.InventoryRepository over the singleton
// base inventory row.
type InventoryRepo struct {
	db *gorm.DB
}

// NewInventoryRepo creates a new InventoryRepo.
func NewInventoryRepo(db *gorm.DB) *InventoryRepo {
	return &InventoryRepo{db: db}
}

func (r *InventoryRepo) Get(ctx context.Context) (*domain.BaseInventory, error) {
	var m inventoryModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &domain.BaseInventory{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &domain.BaseInventory{
		Gold:       m.Gold,
		Silver:     m.Silver,
		FineGold:   m.FineGold,
		FineSilver: m.FineSilver,
		Cash:       m.Cash,
	}, nil
}

func (r *InventoryRepo) Save(ctx context.Context, inv *domain.BaseInventory) error {
	m := inventoryModel{
		ID:         1,
		Gold:       inv.Gold,
		Silver:     inv.Silver,
		FineGold:   inv.FineGold,
		FineSilver: inv.FineSilver,
		Cash:       inv.Cash,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&m).Error
}
