package enums

import "fmt"

// SupplierType identifies which adapter implementation serves a supplier.
type SupplierType string

const (
	SupplierTypeREST   SupplierType = "rest"
	SupplierTypeCustom SupplierType = "custom"
)

var validSupplierTypes = []SupplierType{
	SupplierTypeREST,
	SupplierTypeCustom,
}

// IsValid reports whether the value is a known SupplierType.
func (t SupplierType) IsValid() bool {
	for _, candidate := range validSupplierTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseSupplierType converts raw input into a SupplierType.
func ParseSupplierType(value string) (SupplierType, error) {
	for _, candidate := range validSupplierTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid supplier type %q", value)
}
