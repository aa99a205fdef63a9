package sqlite

import (
	"context"
	"errors"

	"bullionbook/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	db *gorm.DB
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(db *gorm.DB) *TransactionRepo {
	return &TransactionRepo{db: db}
}

func (r *TransactionRepo) GetAll(ctx context.Context) ([]domain.Transaction, error) {
	var models []transactionModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Transaction, 0, len(models))
	for i := range models {
		t, err := models[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	var m transactionModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m.toDomain()
}

func (r *TransactionRepo) GetBySource(ctx context.Context, sourceID, deviceID string) (*domain.Transaction, error) {
	var m transactionModel
	err := r.db.WithContext(ctx).
		First(&m, "source_id = ? AND device_id = ?", sourceID, deviceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m.toDomain()
}

func (r *TransactionRepo) Save(ctx context.Context, tx *domain.Transaction) error {
	m, err := transactionToModel(tx)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(m).Error
}
