package wallet

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mateovidal/dropcart-backend/api/middleware"
	"github.com/mateovidal/dropcart-backend/api/responses"
	"github.com/mateovidal/dropcart-backend/api/validators"
	internalwallet "github.com/mateovidal/dropcart-backend/internal/wallet"
	pkgerrors "github.com/mateovidal/dropcart-backend/pkg/errors"
	"github.com/mateovidal/dropcart-backend/pkg/logger"
	"github.com/mateovidal/dropcart-backend/pkg/pagination"
)

type topUpRequest struct {
	AmountCents int    `json:"amount_cents" validate:"required,gt=0"`
	Reason      string `json:"reason" validate:"max=255"`
}

// Balance returns the merchant wallet, creating a zero balance on first access.
func Balance(svc internalwallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, err := requireMerchant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.GetBalance(r.Context(), merchantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, balance)
	}
}

// Transactions returns the merchant transaction log, newest first.
func Transactions(svc internalwallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, err := requireMerchant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1<<30)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListTransactions(r.Context(), merchantID, pagination.Params{Limit: limit, Offset: offset})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// TopUp credits the merchant wallet.
func TopUp(svc internalwallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, err := requireMerchant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req topUpRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reason := req.Reason
		if reason == "" {
			reason = "wallet top-up"
		}

		txn, err := svc.Credit(r.Context(), internalwallet.CreditInput{
			MerchantID:  merchantID,
			AmountCents: req.AmountCents,
			Reason:      reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, txn)
	}
}

func requireMerchant(r *http.Request) (uuid.UUID, error) {
	merchantID := middleware.MerchantIDFromContext(r.Context())
	if merchantID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "merchant context missing")
	}
	return merchantID, nil
}
