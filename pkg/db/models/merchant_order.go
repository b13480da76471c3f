package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mateovidal/dropcart-backend/pkg/enums"
	"github.com/mateovidal/dropcart-backend/pkg/types"
)

// MerchantOrder represents one customer purchase belonging to one merchant.
// Rows are never deleted; status transitions supersede them.
type MerchantOrder struct {
	ID                uuid.UUID                    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MerchantID        uuid.UUID                    `gorm:"column:merchant_id;type:uuid;not null"`
	OrderNumber       int64                        `gorm:"column:order_number;not null"`
	Currency          enums.Currency               `gorm:"column:currency;type:text;not null;default:'USD'"`
	Status            enums.OrderStatus            `gorm:"column:status;type:order_status;not null;default:'pending'"`
	FulfillmentStatus enums.OrderFulfillmentStatus `gorm:"column:fulfillment_status;type:order_fulfillment_status;not null;default:'unfulfilled'"`
	TotalCostCents    int                          `gorm:"column:total_cost_cents;not null"`
	TotalPriceCents   int                          `gorm:"column:total_price_cents;not null"`
	ShippingAddress   *types.Address               `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	Timeline          types.Timeline               `gorm:"column:timeline;type:jsonb;serializer:json"`
	CustomerEmail     *string                      `gorm:"column:customer_email"`
	Items             []OrderLineItem              `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	SupplierOrders    []SupplierOrder              `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time                    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                    `gorm:"column:updated_at;autoUpdateTime"`
}
