package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mateovidal/dropcart-backend/pkg/enums"
	"github.com/mateovidal/dropcart-backend/pkg/types"
)

// SupplierOrder is one outbound purchase request to one supplier, derived
// from the subset of a merchant order's line items that supplier ships.
// The row is written in pending state before the adapter call so a crash
// mid-call remains observable.
type SupplierOrder struct {
	ID               uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID          uuid.UUID                 `gorm:"column:order_id;type:uuid;not null"`
	SupplierID       uuid.UUID                 `gorm:"column:supplier_id;type:uuid;not null"`
	MerchantID       uuid.UUID                 `gorm:"column:merchant_id;type:uuid;not null"`
	Items            types.SupplierOrderItems  `gorm:"column:items;type:jsonb;serializer:json"`
	TotalCostCents   int                       `gorm:"column:total_cost_cents;not null"`
	Status           enums.SupplierOrderStatus `gorm:"column:status;type:supplier_order_status;not null;default:'pending'"`
	SupplierOrderRef *string                   `gorm:"column:supplier_order_ref"`
	TrackingNumber   *string                   `gorm:"column:tracking_number"`
	TrackingCarrier  *string                   `gorm:"column:tracking_carrier"`
	TrackingURL      *string                   `gorm:"column:tracking_url"`
	TrackingStatus   *enums.TrackingStatus     `gorm:"column:tracking_status;type:text"`
	TrackingUpdated  *time.Time                `gorm:"column:tracking_updated_at"`
	ErrorMessage     *string                   `gorm:"column:error_message"`
	CreatedAt        time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
