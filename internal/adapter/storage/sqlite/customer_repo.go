package sqlite

import (
	"context"
	"errors"

	"bullionbook/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CustomerRepo implements ports.CustomerRepository.
type CustomerRepo struct {
	db *gorm.DB
}

// NewCustomerRepo creates a new CustomerRepo.
func NewCustomerRepo(db *gorm.DB) *CustomerRepo {
	return &CustomerRepo{db: db}
}

func (r *CustomerRepo) GetAll(ctx context.Context) ([]domain.Customer, error) {
	var models []customerModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Customer, 0, len(models))
	for i := range models {
		c, err := models[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	var m customerModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m.toDomain()
}

func (r *CustomerRepo) Save(ctx context.Context, customer *domain.Customer) error {
	m, err := customerToModel(customer)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(m).Error
}
