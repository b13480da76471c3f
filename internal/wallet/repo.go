package wallet

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateovidal/dropcart-backend/pkg/db/models"
	"github.com/mateovidal/dropcart-backend/pkg/enums"
	"github.com/mateovidal/dropcart-backend/pkg/pagination"
)

// Repository manages persistence for wallet balances and transaction rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindOrCreateBalance(ctx context.Context, merchantID uuid.UUID) (*models.WalletBalance, error)
	DecrementBalance(ctx context.Context, merchantID uuid.UUID, amountCents int) (bool, error)
	IncrementBalance(ctx context.Context, merchantID uuid.UUID, amountCents int) error
	CreateTransaction(ctx context.Context, txn *models.WalletTransaction) error
	ListTransactions(ctx context.Context, merchantID uuid.UUID, params pagination.Params) ([]models.WalletTransaction, int64, error)
	SumTransactions(ctx context.Context, merchantID uuid.UUID) (int, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a wallet repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindOrCreateBalance(ctx context.Context, merchantID uuid.UUID) (*models.WalletBalance, error) {
	var balance models.WalletBalance
	err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Attrs(models.WalletBalance{
			ID:         uuid.New(),
			MerchantID: merchantID,
			Currency:   enums.CurrencyUSD,
		}).
		FirstOrCreate(&balance).Error
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

// DecrementBalance applies an atomic check-and-decrement. The sufficiency
// check and the decrement are one conditional UPDATE, so two concurrent
// debits can never both pass against a stale balance.
func (r *repository) DecrementBalance(ctx context.Context, merchantID uuid.UUID, amountCents int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE wallet_balances
		SET balance_cents = balance_cents - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE merchant_id = ? AND balance_cents >= ?
	`, amountCents, merchantID, amountCents)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) IncrementBalance(ctx context.Context, merchantID uuid.UUID, amountCents int) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE wallet_balances
		SET balance_cents = balance_cents + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE merchant_id = ?
	`, amountCents, merchantID).Error
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.WalletTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) ListTransactions(ctx context.Context, merchantID uuid.UUID, params pagination.Params) ([]models.WalletTransaction, int64, error) {
	params = params.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.WalletTransaction{}).
		Where("merchant_id = ?", merchantID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var transactions []models.WalletTransaction
	if err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&transactions).Error; err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}

func (r *repository) SumTransactions(ctx context.Context, merchantID uuid.UUID) (int, error) {
	var sum *int
	if err := r.db.WithContext(ctx).
		Model(&models.WalletTransaction{}).
		Select("SUM(amount_cents)").
		Where("merchant_id = ?", merchantID).
		Scan(&sum).Error; err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}
