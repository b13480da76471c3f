package fulfillment

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mateovidal/dropcart-backend/api/middleware"
	"github.com/mateovidal/dropcart-backend/api/responses"
	"github.com/mateovidal/dropcart-backend/api/validators"
	internalfulfillment "github.com/mateovidal/dropcart-backend/internal/fulfillment"
	pkgerrors "github.com/mateovidal/dropcart-backend/pkg/errors"
	"github.com/mateovidal/dropcart-backend/pkg/logger"
)

// CanFulfill reports whether the wallet covers the order cost. Side-effect
// free; dashboards may poll it.
func CanFulfill(svc internalfulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, orderID, err := parseScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		check, err := svc.CanFulfill(r.Context(), merchantID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, check)
	}
}

// Fulfill runs the debit-first fulfillment attempt for one order.
func Fulfill(svc internalfulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, orderID, err := parseScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		outcome, err := svc.FulfillWithWallet(r.Context(), merchantID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, outcome)
	}
}

func parseScope(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	merchantID := middleware.MerchantIDFromContext(r.Context())
	if merchantID == uuid.Nil {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "merchant context missing")
	}
	orderID, err := validators.ParseUUIDParam(r, "orderID")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return merchantID, orderID, nil
}
