package types

import "github.com/google/uuid"

// SupplierOrderItem is one line of an outbound supplier purchase request.
// Persisted as jsonb on the supplier order row.
type SupplierOrderItem struct {
	ProductID     uuid.UUID `json:"product_id"`
	LineItemID    uuid.UUID `json:"line_item_id"`
	SupplierSKU   string    `json:"supplier_sku"`
	Qty           int       `json:"qty"`
	UnitCostCents int       `json:"unit_cost_cents"`
}

// SupplierOrderItems is the jsonb-serialized item list.
type SupplierOrderItems []SupplierOrderItem

// TotalCostCents sums qty times unit cost across the items.
func (items SupplierOrderItems) TotalCostCents() int {
	total := 0
	for _, item := range items {
		total += item.Qty * item.UnitCostCents
	}
	return total
}
