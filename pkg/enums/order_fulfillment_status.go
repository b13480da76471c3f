package enums

import "fmt"

// OrderFulfillmentStatus is the roll-up of line item fulfillment on a merchant order.
type OrderFulfillmentStatus string

const (
	OrderFulfillmentStatusUnfulfilled OrderFulfillmentStatus = "unfulfilled"
	OrderFulfillmentStatusPartial     OrderFulfillmentStatus = "partial"
	OrderFulfillmentStatusFulfilled   OrderFulfillmentStatus = "fulfilled"
)

var validOrderFulfillmentStatuses = []OrderFulfillmentStatus{
	OrderFulfillmentStatusUnfulfilled,
	OrderFulfillmentStatusPartial,
	OrderFulfillmentStatusFulfilled,
}

// String implements fmt.Stringer.
func (s OrderFulfillmentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderFulfillmentStatus.
func (s OrderFulfillmentStatus) IsValid() bool {
	for _, candidate := range validOrderFulfillmentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderFulfillmentStatus converts raw input into an OrderFulfillmentStatus.
func ParseOrderFulfillmentStatus(value string) (OrderFulfillmentStatus, error) {
	for _, candidate := range validOrderFulfillmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order fulfillment status %q", value)
}
