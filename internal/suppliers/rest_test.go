package suppliers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateovidal/dropcart-backend/pkg/db/models"
	"github.com/mateovidal/dropcart-backend/pkg/enums"
	pkgerrors "github.com/mateovidal/dropcart-backend/pkg/errors"
	"github.com/mateovidal/dropcart-backend/pkg/types"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) Adapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	adapter, err := NewRESTAdapter(&models.Supplier{
		ID:         uuid.New(),
		MerchantID: uuid.New(),
		Type:       enums.SupplierTypeREST,
		APIBaseURL: server.URL,
		APIKey:     "test-key",
		Active:     true,
	}, RESTOptions{HTTPClient: server.Client()})
	require.NoError(t, err)
	return adapter
}

func shippableAddress() types.Address {
	return types.Address{
		Name:       "Jordan Reyes",
		Line1:      "500 Commerce St",
		City:       "Austin",
		State:      "TX",
		PostalCode: "78701",
		Country:    "US",
	}
}

func TestRESTAdapterRequiresCredentials(t *testing.T) {
	_, err := NewRESTAdapter(&models.Supplier{APIKey: "key"}, RESTOptions{})
	assert.ErrorIs(t, err, errBaseURLRequired)

	_, err = NewRESTAdapter(&models.Supplier{APIBaseURL: "https://supplier.example.com"}, RESTOptions{})
	assert.ErrorIs(t, err, errAPIKeyRequired)

	_, err = NewRESTAdapter(nil, RESTOptions{})
	assert.Error(t, err)
}

func TestRESTTestConnection(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/shop", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]string{"shop_name": "Acme Wholesale"})
	})

	result, err := adapter.TestConnection(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Acme Wholesale", result.ShopName)
}

func TestRESTTestConnectionBadCredentials(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid api key"})
	})

	result, err := adapter.TestConnection(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "invalid api key")
}

func TestRESTFetchProducts(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/products", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "50", r.URL.Query().Get("page_size"))
		_ = json.NewEncoder(w).Encode(ProductPage{
			Items: []ProductDTO{
				{SupplierSKU: "SKU-1", Title: "Widget", Cost: "4.25", Price: "9.99"},
			},
			HasMore: true,
		})
	})

	page, err := adapter.FetchProducts(context.Background(), 2, 50)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "SKU-1", page.Items[0].SupplierSKU)
	assert.True(t, page.HasMore)
}

func TestRESTCreateOrder(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)

		var req CreateOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Items, 1)

		_ = json.NewEncoder(w).Encode(CreateOrderResult{
			SupplierOrderRef: "SUP-42",
			TotalCostCents:   2000,
		})
	})

	result, err := adapter.CreateOrder(context.Background(), CreateOrderRequest{
		Items: types.SupplierOrderItems{
			{ProductID: uuid.New(), LineItemID: uuid.New(), Qty: 2, UnitCostCents: 1000},
		},
		ShippingAddress: shippableAddress(),
	})
	require.NoError(t, err)
	assert.Equal(t, "SUP-42", result.SupplierOrderRef)
	assert.Equal(t, 2000, result.TotalCostCents)
}

func TestRESTCreateOrderRejection(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "sku out of stock"})
	})

	_, err := adapter.CreateOrder(context.Background(), CreateOrderRequest{
		Items: types.SupplierOrderItems{
			{ProductID: uuid.New(), LineItemID: uuid.New(), Qty: 1, UnitCostCents: 500},
		},
		ShippingAddress: shippableAddress(),
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	assert.Equal(t, pkgerrors.CodeSupplierRejected, typed.Code())
	assert.Contains(t, typed.Message(), "out of stock")
}

func TestRESTCreateOrderMissingRef(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(CreateOrderResult{})
	})

	_, err := adapter.CreateOrder(context.Background(), CreateOrderRequest{
		Items: types.SupplierOrderItems{
			{ProductID: uuid.New(), LineItemID: uuid.New(), Qty: 1, UnitCostCents: 500},
		},
		ShippingAddress: shippableAddress(),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeSupplierRejected, pkgerrors.As(err).Code())
}

func TestRESTCreateOrderValidatesInput(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid requests must not reach the supplier")
	})

	_, err := adapter.CreateOrder(context.Background(), CreateOrderRequest{
		ShippingAddress: shippableAddress(),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = adapter.CreateOrder(context.Background(), CreateOrderRequest{
		Items: types.SupplierOrderItems{
			{ProductID: uuid.New(), LineItemID: uuid.New(), Qty: 1, UnitCostCents: 500},
		},
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestRESTGetTracking(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/orders/SUP-42/tracking", r.URL.Path)
		_ = json.NewEncoder(w).Encode(TrackingInfo{
			TrackingNumber: "1Z999",
			Carrier:        "UPS",
			Status:         enums.TrackingStatusInTransit,
		})
	})

	info, err := adapter.GetTracking(context.Background(), "SUP-42")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "1Z999", info.TrackingNumber)
	assert.Equal(t, enums.TrackingStatusInTransit, info.Status)
}

func TestRESTGetTrackingNotYetAvailable(t *testing.T) {
	// 404 and an empty payload both mean "no tracking yet", not an error
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	info, err := adapter.GetTracking(context.Background(), "SUP-42")
	require.NoError(t, err)
	assert.Nil(t, info)

	adapter = newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(TrackingInfo{})
	})
	info, err = adapter.GetTracking(context.Background(), "SUP-42")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestRESTGetFulfillment(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/orders/SUP-42/fulfillment", r.URL.Path)
		_ = json.NewEncoder(w).Encode(FulfillmentInfo{Fulfilled: true, Status: "shipped"})
	})

	info, err := adapter.GetFulfillment(context.Background(), "SUP-42")
	require.NoError(t, err)
	assert.True(t, info.Fulfilled)
	assert.Equal(t, "shipped", info.Status)
}

func TestRESTServerErrorMapsToDependency(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := adapter.FetchProducts(context.Background(), 1, 50)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
}
