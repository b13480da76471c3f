package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mateovidal/dropcart-backend/pkg/enums"
)

// WalletTransaction is one immutable ledger row. AmountCents is signed:
// credits and refunds are positive, debits negative, so the sum over a
// merchant's rows reconstructs the balance.
type WalletTransaction struct {
	ID          uuid.UUID                   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MerchantID  uuid.UUID                   `gorm:"column:merchant_id;type:uuid;not null;index"`
	OrderID     *uuid.UUID                  `gorm:"column:order_id;type:uuid"`
	Type        enums.WalletTransactionType `gorm:"column:type;type:wallet_transaction_type;not null"`
	AmountCents int                         `gorm:"column:amount_cents;not null"`
	Reason      string                      `gorm:"column:reason;not null"`
	CreatedAt   time.Time                   `gorm:"column:created_at;autoCreateTime"`
}
