package supplierorders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateovidal/dropcart-backend/pkg/db/models"
	"github.com/mateovidal/dropcart-backend/pkg/enums"
)

// Repository manages persistence for supplier order rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.SupplierOrder) error
	FindByID(ctx context.Context, supplierOrderID uuid.UUID) (*models.SupplierOrder, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.SupplierOrder, error)
	// ListSweepable returns non-terminal supplier orders that have an upstream
	// reference, oldest tracking update first.
	ListSweepable(ctx context.Context, limit int) ([]models.SupplierOrder, error)
	Update(ctx context.Context, supplierOrderID uuid.UUID, updates map[string]any) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a supplier orders repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.SupplierOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, supplierOrderID uuid.UUID) (*models.SupplierOrder, error) {
	var order models.SupplierOrder
	if err := r.db.WithContext(ctx).
		Where("id = ?", supplierOrderID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.SupplierOrder, error) {
	var result []models.SupplierOrder
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (r *repository) ListSweepable(ctx context.Context, limit int) ([]models.SupplierOrder, error) {
	if limit <= 0 {
		limit = 200
	}
	var result []models.SupplierOrder
	if err := r.db.WithContext(ctx).
		Where("supplier_order_ref IS NOT NULL").
		Where("status IN ?", []enums.SupplierOrderStatus{
			enums.SupplierOrderStatusSubmitted,
			enums.SupplierOrderStatusShipped,
		}).
		Order("tracking_updated_at ASC NULLS FIRST").
		Limit(limit).
		Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (r *repository) Update(ctx context.Context, supplierOrderID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.SupplierOrder{}).
		Where("id = ?", supplierOrderID).
		Updates(updates).Error
}
