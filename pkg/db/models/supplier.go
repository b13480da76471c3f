package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mateovidal/dropcart-backend/pkg/enums"
)

// Supplier is an upstream inventory source reachable through an adapter.
type Supplier struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MerchantID uuid.UUID          `gorm:"column:merchant_id;type:uuid;not null"`
	Type       enums.SupplierType `gorm:"column:type;type:supplier_type;not null;default:'rest'"`
	Name       string             `gorm:"column:name;not null"`
	APIBaseURL string             `gorm:"column:api_base_url;not null"`
	APIKey     string             `gorm:"column:api_key;not null"`
	Active     bool               `gorm:"column:active;not null;default:true"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
