package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseQuantity parses a non-negative decimal quantity string. Thousands
// separators are tolerated since exported spreadsheets frequently carry
// them.
func ParseQuantity(s string) (decimal.Decimal, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("quantity must not be negative: %s", s)
	}
	return d, nil
}

// ParseValue parses a monetary value in the reporting currency. An empty
// string means the value is absent (to be priced before the engine
// runs); ok reports presence.
func ParseValue(s string) (d decimal.Decimal, ok bool, err error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, false, nil
	}
	d, err = parseDecimal(s)
	if err != nil {
		return decimal.Zero, false, err
	}
	return d, true, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal %q", s)
	}
	return d, nil
}
