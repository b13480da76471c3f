package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a merchant catalog entry imported from a supplier.
type Product struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MerchantID  uuid.UUID  `gorm:"column:merchant_id;type:uuid;not null"`
	SupplierID  *uuid.UUID `gorm:"column:supplier_id;type:uuid"`
	SupplierSKU string     `gorm:"column:supplier_sku;not null"`
	Title       string     `gorm:"column:title;not null"`
	CostCents   int        `gorm:"column:cost_cents;not null"`
	PriceCents  int        `gorm:"column:price_cents;not null"`
	Active      bool       `gorm:"column:active;not null;default:true"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
