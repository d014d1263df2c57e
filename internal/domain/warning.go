package domain

import "fmt"

// WarningCode classifies a non-fatal reconciliation finding.
type WarningCode string

const (
	// WarnNegativeHoldings: a disposal drove an asset's pooled quantity
	// below zero — the primary signal of missing fee or transfer records
	// upstream.
	WarnNegativeHoldings WarningCode = "negative_holdings"
	// WarnZeroBasis: a cost-basis queue ran out of buys before a sell
	// was satisfied; the unmet quantity was settled at zero cost basis.
	WarnZeroBasis WarningCode = "zero_cost_basis"
	// WarnBalanceMismatch: the independently recomputed wallet balance
	// for an asset disagrees with the holdings pool.
	WarnBalanceMismatch WarningCode = "balance_mismatch"
	// WarnUnpricedValue: a leg reached the engine without a monetary
	// value and was treated as zero.
	WarnUnpricedValue WarningCode = "unpriced_value"
)

// Warning is a non-fatal finding surfaced on the report as a caveat.
// Warnings never abort the computation.
type Warning struct {
	Code    WarningCode
	Asset   string
	Message string
}

func (w Warning) String() string {
	if w.Asset == "" {
		return fmt.Sprintf("%s: %s", w.Code, w.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", w.Code, w.Asset, w.Message)
}
