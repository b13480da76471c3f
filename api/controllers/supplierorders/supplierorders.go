package supplierorders

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mateovidal/dropcart-backend/api/middleware"
	"github.com/mateovidal/dropcart-backend/api/responses"
	"github.com/mateovidal/dropcart-backend/api/validators"
	internalsupplierorders "github.com/mateovidal/dropcart-backend/internal/supplierorders"
	pkgerrors "github.com/mateovidal/dropcart-backend/pkg/errors"
	"github.com/mateovidal/dropcart-backend/pkg/logger"
)

// Detail returns one supplier order, scoped to the merchant.
func Detail(svc internalsupplierorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, supplierOrderID, err := parseScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.GetByID(r.Context(), merchantID, supplierOrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

// RefreshTracking polls the supplier for the latest tracking state and
// returns it. Terminal supplier orders are returned unchanged.
func RefreshTracking(svc internalsupplierorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, supplierOrderID, err := parseScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// ownership check before touching the adapter
		if _, err := svc.GetByID(r.Context(), merchantID, supplierOrderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		info, err := svc.RefreshTracking(r.Context(), supplierOrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"tracking": info})
	}
}

func parseScope(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	merchantID := middleware.MerchantIDFromContext(r.Context())
	if merchantID == uuid.Nil {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "merchant context missing")
	}
	supplierOrderID, err := validators.ParseUUIDParam(r, "supplierOrderID")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return merchantID, supplierOrderID, nil
}
