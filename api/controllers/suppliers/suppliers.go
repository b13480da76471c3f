package suppliers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mateovidal/dropcart-backend/api/middleware"
	"github.com/mateovidal/dropcart-backend/api/responses"
	"github.com/mateovidal/dropcart-backend/api/validators"
	"github.com/mateovidal/dropcart-backend/internal/catalog"
	internalsuppliers "github.com/mateovidal/dropcart-backend/internal/suppliers"
	pkgerrors "github.com/mateovidal/dropcart-backend/pkg/errors"
	"github.com/mateovidal/dropcart-backend/pkg/logger"
)

// List returns the merchant's configured suppliers.
func List(svc internalsuppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID := middleware.MerchantIDFromContext(r.Context())
		if merchantID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "merchant context missing"))
			return
		}

		rows, err := svc.List(r.Context(), merchantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"suppliers": rows})
	}
}

// TestConnection verifies supplier credentials through the adapter.
func TestConnection(svc internalsuppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, supplierID, err := parseScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.TestConnection(r.Context(), merchantID, supplierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// Sync imports the supplier catalog into the merchant product table.
func Sync(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, supplierID, err := parseScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Sync(r.Context(), merchantID, supplierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func parseScope(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	merchantID := middleware.MerchantIDFromContext(r.Context())
	if merchantID == uuid.Nil {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "merchant context missing")
	}
	supplierID, err := validators.ParseUUIDParam(r, "supplierID")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return merchantID, supplierID, nil
}
