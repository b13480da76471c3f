package suppliers

import (
	"context"
	"time"

	"github.com/mateovidal/dropcart-backend/pkg/enums"
	"github.com/mateovidal/dropcart-backend/pkg/types"
)

// Adapter is the uniform capability set hiding supplier-specific API
// differences. The fulfillment core depends only on this interface, never on
// a concrete supplier.
type Adapter interface {
	TestConnection(ctx context.Context) (*ConnectionResult, error)
	FetchProducts(ctx context.Context, page, pageSize int) (*ProductPage, error)
	// CreateOrder submits a purchase request. It returns an error on hard
	// failure; supplier-side rejections surface as errors too.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error)
	// GetTracking returns nil (no error) when the supplier has no tracking yet.
	GetTracking(ctx context.Context, supplierOrderRef string) (*TrackingInfo, error)
	GetFulfillment(ctx context.Context, supplierOrderRef string) (*FulfillmentInfo, error)
}

// ConnectionResult reports whether supplier credentials work.
type ConnectionResult struct {
	Success  bool   `json:"success"`
	ShopName string `json:"shop_name,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ProductDTO is one catalog entry as the supplier reports it. Prices arrive
// as decimal strings and are converted to cents before persistence.
type ProductDTO struct {
	SupplierSKU string `json:"sku"`
	Title       string `json:"title"`
	Cost        string `json:"cost"`
	Price       string `json:"price"`
}

// ProductPage is one page of the supplier catalog.
type ProductPage struct {
	Items   []ProductDTO `json:"items"`
	HasMore bool         `json:"has_more"`
}

// CreateOrderRequest carries the supplier-scoped purchase request.
type CreateOrderRequest struct {
	Items           types.SupplierOrderItems `json:"items"`
	ShippingAddress types.Address            `json:"shipping_address"`
	Note            string                   `json:"note,omitempty"`
}

// CreateOrderResult is the supplier's acceptance of a purchase request.
// TotalCostCents may differ from the requested total when the supplier
// applies a cost correction.
type CreateOrderResult struct {
	SupplierOrderRef string `json:"supplier_order_ref"`
	TotalCostCents   int    `json:"total_cost_cents"`
}

// TrackingInfo reports the shipment state in the adapter vocabulary.
type TrackingInfo struct {
	TrackingNumber string               `json:"tracking_number"`
	Carrier        string               `json:"carrier"`
	TrackingURL    string               `json:"tracking_url"`
	Status         enums.TrackingStatus `json:"status"`
	LastUpdate     time.Time            `json:"last_update"`
}

// FulfillmentInfo is the supplier's own view of order completion, used as a
// fallback signal when tracking is not yet available.
type FulfillmentInfo struct {
	Fulfilled bool   `json:"fulfilled"`
	Status    string `json:"status"`
}
