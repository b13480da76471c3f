package enums

import "fmt"

// SupplierOrderStatus tracks one outbound purchase request to one supplier.
type SupplierOrderStatus string

const (
	SupplierOrderStatusPending   SupplierOrderStatus = "pending"
	SupplierOrderStatusSubmitted SupplierOrderStatus = "submitted"
	SupplierOrderStatusShipped   SupplierOrderStatus = "shipped"
	SupplierOrderStatusDelivered SupplierOrderStatus = "delivered"
	SupplierOrderStatusFailed    SupplierOrderStatus = "failed"
)

var validSupplierOrderStatuses = []SupplierOrderStatus{
	SupplierOrderStatusPending,
	SupplierOrderStatusSubmitted,
	SupplierOrderStatusShipped,
	SupplierOrderStatusDelivered,
	SupplierOrderStatusFailed,
}

// String implements fmt.Stringer.
func (s SupplierOrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SupplierOrderStatus.
func (s SupplierOrderStatus) IsValid() bool {
	for _, candidate := range validSupplierOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status is final; terminal rows are skipped
// by the tracking sweep and never transitioned again.
func (s SupplierOrderStatus) IsTerminal() bool {
	return s == SupplierOrderStatusDelivered || s == SupplierOrderStatusFailed
}

// ParseSupplierOrderStatus converts raw input into a SupplierOrderStatus.
func ParseSupplierOrderStatus(value string) (SupplierOrderStatus, error) {
	for _, candidate := range validSupplierOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid supplier order status %q", value)
}
