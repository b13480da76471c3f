package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mateovidal/dropcart-backend/pkg/enums"
)

// WalletBalance is the per-merchant prepaid balance that funds supplier
// fulfillment. Exactly one row per merchant, created lazily on first access.
// BalanceCents never goes negative; every mutation pairs with a
// WalletTransaction row written in the same database transaction.
type WalletBalance struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MerchantID   uuid.UUID      `gorm:"column:merchant_id;type:uuid;not null;uniqueIndex"`
	BalanceCents int            `gorm:"column:balance_cents;not null;default:0"`
	PendingCents int            `gorm:"column:pending_cents;not null;default:0"`
	Currency     enums.Currency `gorm:"column:currency;type:text;not null;default:'USD'"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
