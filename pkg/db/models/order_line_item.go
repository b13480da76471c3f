package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderLineItem is one ordered product line on a merchant order. ProductID is
// nullable: line items may arrive from channels whose product mapping no
// longer resolves.
type OrderLineItem struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID  `gorm:"column:order_id;type:uuid;not null"`
	ProductID      *uuid.UUID `gorm:"column:product_id;type:uuid"`
	Title          string     `gorm:"column:title;not null"`
	SupplierSKU    string     `gorm:"column:supplier_sku"`
	Qty            int        `gorm:"column:qty;not null"`
	UnitPriceCents int        `gorm:"column:unit_price_cents;not null"`
	UnitCostCents  int        `gorm:"column:unit_cost_cents;not null"`
	Fulfilled      bool       `gorm:"column:fulfilled;not null;default:false"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
