package sqlite

import (
	"context"
	"errors"

	"bullionbook/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepo implements ports.LedgerRepository. The ledger reads in date
// order, the primary ordering key across the book.
type LedgerRepo struct {
	db *gorm.DB
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(db *gorm.DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

func (r *LedgerRepo) GetAll(ctx context.Context) ([]domain.LedgerEntry, error) {
	var models []ledgerModel
	if err := r.db.WithContext(ctx).Order("date").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.LedgerEntry, 0, len(models))
	for i := range models {
		e, err := models[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, nil
}

func (r *LedgerRepo) GetByID(ctx context.Context, id string) (*domain.LedgerEntry, error) {
	var m ledgerModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m.toDomain()
}

func (r *LedgerRepo) Save(ctx context.Context, entry *domain.LedgerEntry) error {
	m, err := ledgerToModel(entry)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(m).Error
}
