package wallet

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mateovidal/dropcart-backend/pkg/db/models"
	"github.com/mateovidal/dropcart-backend/pkg/enums"
	"github.com/mateovidal/dropcart-backend/pkg/pagination"
)

func setupWalletTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	balances := `
CREATE TABLE IF NOT EXISTS wallet_balances (
  id TEXT PRIMARY KEY,
  merchant_id TEXT NOT NULL UNIQUE,
  balance_cents INTEGER NOT NULL DEFAULT 0,
  pending_cents INTEGER NOT NULL DEFAULT 0,
  currency TEXT NOT NULL DEFAULT 'USD',
  created_at DATETIME,
  updated_at DATETIME
);`
	transactions := `
CREATE TABLE IF NOT EXISTS wallet_transactions (
  id TEXT PRIMARY KEY,
  merchant_id TEXT NOT NULL,
  order_id TEXT,
  type TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  reason TEXT NOT NULL DEFAULT '',
  created_at DATETIME
);`
	require.NoError(t, db.Exec(balances).Error)
	require.NoError(t, db.Exec(transactions).Error)
	t.Cleanup(func() {
		db.Exec(`DELETE FROM wallet_transactions`)
		db.Exec(`DELETE FROM wallet_balances`)
	})
	return db
}

func TestFindOrCreateBalanceLazyCreate(t *testing.T) {
	db := setupWalletTestDB(t)
	repo := NewRepository(db)
	merchantID := uuid.New()

	balance, err := repo.FindOrCreateBalance(context.Background(), merchantID)
	require.NoError(t, err)
	assert.Equal(t, merchantID, balance.MerchantID)
	assert.Equal(t, 0, balance.BalanceCents)
	assert.Equal(t, enums.CurrencyUSD, balance.Currency)

	// second call returns the same row, no duplicate
	again, err := repo.FindOrCreateBalance(context.Background(), merchantID)
	require.NoError(t, err)
	assert.Equal(t, balance.ID, again.ID)

	var count int64
	require.NoError(t, db.Model(&models.WalletBalance{}).Where("merchant_id = ?", merchantID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestDecrementBalanceChecksSufficiency(t *testing.T) {
	db := setupWalletTestDB(t)
	repo := NewRepository(db)
	merchantID := uuid.New()

	_, err := repo.FindOrCreateBalance(context.Background(), merchantID)
	require.NoError(t, err)
	require.NoError(t, repo.IncrementBalance(context.Background(), merchantID, 1000))

	ok, err := repo.DecrementBalance(context.Background(), merchantID, 400)
	require.NoError(t, err)
	assert.True(t, ok)

	// only 600 left; a 700 debit must not pass
	ok, err = repo.DecrementBalance(context.Background(), merchantID, 700)
	require.NoError(t, err)
	assert.False(t, ok)

	balance, err := repo.FindOrCreateBalance(context.Background(), merchantID)
	require.NoError(t, err)
	assert.Equal(t, 600, balance.BalanceCents)
}

func TestDecrementBalanceExactAmount(t *testing.T) {
	db := setupWalletTestDB(t)
	repo := NewRepository(db)
	merchantID := uuid.New()

	_, err := repo.FindOrCreateBalance(context.Background(), merchantID)
	require.NoError(t, err)
	require.NoError(t, repo.IncrementBalance(context.Background(), merchantID, 500))

	ok, err := repo.DecrementBalance(context.Background(), merchantID, 500)
	require.NoError(t, err)
	assert.True(t, ok)

	balance, err := repo.FindOrCreateBalance(context.Background(), merchantID)
	require.NoError(t, err)
	assert.Equal(t, 0, balance.BalanceCents)
}

func TestListTransactionsPagination(t *testing.T) {
	db := setupWalletTestDB(t)
	repo := NewRepository(db)
	merchantID := uuid.New()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.CreateTransaction(context.Background(), &models.WalletTransaction{
			ID:          uuid.New(),
			MerchantID:  merchantID,
			Type:        enums.WalletTransactionTypeCredit,
			AmountCents: 100 * (i + 1),
			Reason:      "top-up",
		}))
	}
	// another merchant's rows stay invisible
	require.NoError(t, repo.CreateTransaction(context.Background(), &models.WalletTransaction{
		ID:          uuid.New(),
		MerchantID:  uuid.New(),
		Type:        enums.WalletTransactionTypeCredit,
		AmountCents: 999,
	}))

	page, total, err := repo.ListTransactions(context.Background(), merchantID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, page, 2)

	rest, _, err := repo.ListTransactions(context.Background(), merchantID, pagination.Params{Limit: 10, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, rest, 3)
}

func TestSumTransactionsReconstructsBalance(t *testing.T) {
	db := setupWalletTestDB(t)
	repo := NewRepository(db)
	merchantID := uuid.New()

	amounts := []int{5000, -1500, 1500, -2000}
	kinds := []enums.WalletTransactionType{
		enums.WalletTransactionTypeCredit,
		enums.WalletTransactionTypeDebit,
		enums.WalletTransactionTypeRefund,
		enums.WalletTransactionTypeDebit,
	}
	for i, amount := range amounts {
		require.NoError(t, repo.CreateTransaction(context.Background(), &models.WalletTransaction{
			ID:          uuid.New(),
			MerchantID:  merchantID,
			Type:        kinds[i],
			AmountCents: amount,
		}))
	}

	sum, err := repo.SumTransactions(context.Background(), merchantID)
	require.NoError(t, err)
	assert.Equal(t, 3000, sum)
}

func TestSumTransactionsEmpty(t *testing.T) {
	db := setupWalletTestDB(t)
	repo := NewRepository(db)

	sum, err := repo.SumTransactions(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, sum)
}
