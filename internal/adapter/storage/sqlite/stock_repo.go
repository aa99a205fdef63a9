package sqlite

import (
	"context"
	"errors"

	"bullionbook/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockRepo implements ports.StockRepository.
type StockRepo struct {
	db *gorm.DB
}

// NewStockRepo creates a new StockRepo.
func NewStockRepo(db *gorm.DB) *StockRepo {
	return &StockRepo{db: db}
}

func (r *StockRepo) GetAll(ctx context.Context) ([]domain.StockItem, error) {
	var models []stockModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.StockItem, 0, len(models))
	for i := range models {
		out = append(out, *models[i].toDomain())
	}
	return out, nil
}

func (r *StockRepo) GetByID(ctx context.Context, stockID string) (*domain.StockItem, error) {
	var m stockModel
	err := r.db.WithContext(ctx).First(&m, "stock_id = ?", stockID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m.toDomain(), nil
}

func (r *StockRepo) Save(ctx context.Context, item *domain.StockItem) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(stockToModel(item)).Error
}
