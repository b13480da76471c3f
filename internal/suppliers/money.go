package suppliers

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var centsFactor = decimal.NewFromInt(100)

// ParseMoneyCents converts a supplier decimal price string ("12.99") into
// integer minor units. Fractional cents are rejected rather than rounded;
// the ledger performs no rounding and amounts must arrive exact.
func ParseMoneyCents(value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("empty money value")
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, fmt.Errorf("parse money %q: %w", value, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("negative money value %q", value)
	}
	cents := d.Mul(centsFactor)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("money value %q has sub-cent precision", value)
	}
	return int(cents.IntPart()), nil
}
