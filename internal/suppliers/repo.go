package suppliers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateovidal/dropcart-backend/pkg/db/models"
)

// Repository manages persistence for supplier records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, supplierID uuid.UUID) (*models.Supplier, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]models.Supplier, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a suppliers repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, supplierID uuid.UUID) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := r.db.WithContext(ctx).
		Where("id = ?", supplierID).
		First(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *repository) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]models.Supplier, error) {
	var result []models.Supplier
	if err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("created_at ASC").
		Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}
