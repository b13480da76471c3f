package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateovidal/dropcart-backend/pkg/db/models"
	"github.com/mateovidal/dropcart-backend/pkg/pagination"
)

// Repository defines persistence operations for merchant orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.MerchantOrder) error
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.MerchantOrder, error)
	List(ctx context.Context, merchantID uuid.UUID, params pagination.Params) ([]models.MerchantOrder, int64, error)
	Update(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	AppendTimeline(ctx context.Context, orderID uuid.UUID, message string) error
	SetLineItemsFulfilled(ctx context.Context, lineItemIDs []uuid.UUID, fulfilled bool) error
}

type repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository returns an orders repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db, now: time.Now}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx, now: r.now}
}

func (r *repository) Create(ctx context.Context, order *models.MerchantOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, orderID uuid.UUID) (*models.MerchantOrder, error) {
	var order models.MerchantOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", orderID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, merchantID uuid.UUID, params pagination.Params) ([]models.MerchantOrder, int64, error) {
	params = params.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.MerchantOrder{}).
		Where("merchant_id = ?", merchantID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.MerchantOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("merchant_id = ?", merchantID).
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *repository) Update(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.MerchantOrder{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

// AppendTimeline re-reads the timeline column and writes it back with the new
// entry. Callers that need atomicity run this inside a transaction.
func (r *repository) AppendTimeline(ctx context.Context, orderID uuid.UUID, message string) error {
	var order models.MerchantOrder
	if err := r.db.WithContext(ctx).
		Select("id", "timeline").
		Where("id = ?", orderID).
		First(&order).Error; err != nil {
		return err
	}
	timeline := order.Timeline.Append(message, r.now())
	return r.db.WithContext(ctx).
		Model(&models.MerchantOrder{}).
		Where("id = ?", orderID).
		Update("timeline", timeline).Error
}

func (r *repository) SetLineItemsFulfilled(ctx context.Context, lineItemIDs []uuid.UUID, fulfilled bool) error {
	if len(lineItemIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.OrderLineItem{}).
		Where("id IN ?", lineItemIDs).
		Update("fulfilled", fulfilled).Error
}
