package wallet

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateovidal/dropcart-backend/pkg/db/models"
	"github.com/mateovidal/dropcart-backend/pkg/enums"
	pkgerrors "github.com/mateovidal/dropcart-backend/pkg/errors"
	"github.com/mateovidal/dropcart-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns the per-merchant prepaid balance and its transaction log.
// Every balance mutation is paired with a transaction row in the same unit
// of work, so the ledger is always reconstructible from the log.
type Service interface {
	GetBalance(ctx context.Context, merchantID uuid.UUID) (*models.WalletBalance, error)
	Credit(ctx context.Context, input CreditInput) (*models.WalletTransaction, error)
	Debit(ctx context.Context, input DebitInput) (*models.WalletTransaction, error)
	Refund(ctx context.Context, input RefundInput) (*models.WalletTransaction, error)
	ListTransactions(ctx context.Context, merchantID uuid.UUID, params pagination.Params) (*TransactionList, error)
}

// CreditInput tops up a merchant balance.
type CreditInput struct {
	MerchantID  uuid.UUID
	AmountCents int
	Reason      string
}

// DebitInput reserves fulfillment cost for one order.
type DebitInput struct {
	MerchantID  uuid.UUID
	OrderID     uuid.UUID
	AmountCents int
	Reason      string
}

// RefundInput reverses a prior debit after a downstream failure.
type RefundInput struct {
	MerchantID  uuid.UUID
	OrderID     uuid.UUID
	AmountCents int
	Reason      string
}

// TransactionList wraps a transaction page plus the total row count.
type TransactionList struct {
	Transactions []models.WalletTransaction `json:"transactions"`
	Total        int64                      `json:"total"`
}

// InsufficientFundsDetails names the exact shortfall on a rejected debit.
type InsufficientFundsDetails struct {
	RequiredCents  int `json:"required_cents"`
	AvailableCents int `json:"available_cents"`
	ShortfallCents int `json:"shortfall_cents"`
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService wires a wallet service with the provided repository and
// transaction runner.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) GetBalance(ctx context.Context, merchantID uuid.UUID) (*models.WalletBalance, error) {
	if merchantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "merchant id required")
	}
	return s.repo.FindOrCreateBalance(ctx, merchantID)
}

func (s *service) Credit(ctx context.Context, input CreditInput) (*models.WalletTransaction, error) {
	if input.MerchantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "merchant id required")
	}
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "credit amount must be positive")
	}

	var txn *models.WalletTransaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindOrCreateBalance(ctx, input.MerchantID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet balance")
		}
		if err := repo.IncrementBalance(ctx, input.MerchantID, input.AmountCents); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment balance")
		}
		txn = &models.WalletTransaction{
			ID:          uuid.New(),
			MerchantID:  input.MerchantID,
			Type:        enums.WalletTransactionTypeCredit,
			AmountCents: input.AmountCents,
			Reason:      input.Reason,
		}
		if err := repo.CreateTransaction(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record credit transaction")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *service) Debit(ctx context.Context, input DebitInput) (*models.WalletTransaction, error) {
	if input.MerchantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "merchant id required")
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debit amount must be positive")
	}

	var txn *models.WalletTransaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		balance, err := repo.FindOrCreateBalance(ctx, input.MerchantID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet balance")
		}

		ok, err := repo.DecrementBalance(ctx, input.MerchantID, input.AmountCents)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement balance")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeInsufficientFunds, "insufficient funds").
				WithDetails(InsufficientFundsDetails{
					RequiredCents:  input.AmountCents,
					AvailableCents: balance.BalanceCents,
					ShortfallCents: input.AmountCents - balance.BalanceCents,
				})
		}

		orderID := input.OrderID
		txn = &models.WalletTransaction{
			ID:          uuid.New(),
			MerchantID:  input.MerchantID,
			OrderID:     &orderID,
			Type:        enums.WalletTransactionTypeDebit,
			AmountCents: -input.AmountCents,
			Reason:      input.Reason,
		}
		if err := repo.CreateTransaction(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record debit transaction")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *service) Refund(ctx context.Context, input RefundInput) (*models.WalletTransaction, error) {
	if input.MerchantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "merchant id required")
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be positive")
	}

	var txn *models.WalletTransaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindOrCreateBalance(ctx, input.MerchantID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet balance")
		}
		if err := repo.IncrementBalance(ctx, input.MerchantID, input.AmountCents); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment balance")
		}
		orderID := input.OrderID
		txn = &models.WalletTransaction{
			ID:          uuid.New(),
			MerchantID:  input.MerchantID,
			OrderID:     &orderID,
			Type:        enums.WalletTransactionTypeRefund,
			AmountCents: input.AmountCents,
			Reason:      input.Reason,
		}
		if err := repo.CreateTransaction(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record refund transaction")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *service) ListTransactions(ctx context.Context, merchantID uuid.UUID, params pagination.Params) (*TransactionList, error) {
	if merchantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "merchant id required")
	}
	transactions, total, err := s.repo.ListTransactions(ctx, merchantID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wallet transactions")
	}
	return &TransactionList{Transactions: transactions, Total: total}, nil
}
