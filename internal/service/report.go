package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/evanhs/costbasis/internal/domain"
)

// YearTotals sums one tax year's capital gains events, with gains and
// losses separated the way the return forms want them.
type YearTotals struct {
	Disposals int             `json:"disposals"`
	Proceeds  decimal.Decimal `json:"proceeds"`
	Cost      decimal.Decimal `json:"cost"`
	Fees      decimal.Decimal `json:"fees"`
	Gains     decimal.Decimal `json:"gains"`
	Losses    decimal.Decimal `json:"losses"`
	Net       decimal.Decimal `json:"net"`
}

// Estimate is the indicative tax liability for one year. It applies the
// static allowance and rate tables only; it knows nothing about the
// taxpayer's other income, so it brackets the liability between the
// lower and upper rate.
type Estimate struct {
	Allowance          decimal.Decimal `json:"allowance"`
	TaxableGain        decimal.Decimal `json:"taxable_gain"`
	LowerRateLiability decimal.Decimal `json:"lower_rate_liability"`
	UpperRateLiability decimal.Decimal `json:"upper_rate_liability"`
	// DisclosureRequired is set when total proceeds exceed four times
	// the allowance, which triggers reporting even under the allowance.
	DisclosureRequired bool `json:"disclosure_required"`
}

// YearReport is one tax year's slice of the output.
type YearReport struct {
	Year         int                         `json:"year"`
	Label        string                      `json:"label"`
	CapitalGains []*domain.CapitalGainsEvent `json:"capital_gains"`
	Income       []*domain.IncomeEvent       `json:"income"`
	IncomeTotal  decimal.Decimal             `json:"income_total"`
	Totals       YearTotals                  `json:"totals"`
	Estimate     Estimate                    `json:"estimate"`
}

// HoldingSnapshot is the end-of-batch position in one asset. Value and
// gain are present only when a current price for the asset was supplied.
type HoldingSnapshot struct {
	Asset    string           `json:"asset"`
	Quantity decimal.Decimal  `json:"quantity"`
	Cost     decimal.Decimal  `json:"cost"`
	Value    *decimal.Decimal `json:"value,omitempty"`
	Gain     *decimal.Decimal `json:"gain,omitempty"`
}

// Report is the full output of a calculation run.
type Report struct {
	RunID       string            `json:"run_id"`
	Ruleset     string            `json:"ruleset"`
	Currency    string            `json:"currency"`
	GeneratedAt time.Time         `json:"generated_at"`
	Years       []YearReport      `json:"years"`
	Holdings    []HoldingSnapshot `json:"holdings"`
	Warnings    []string          `json:"warnings,omitempty"`
}

// buildTotals folds a year's events into totals.
func buildTotals(events []*domain.CapitalGainsEvent) YearTotals {
	t := YearTotals{
		Proceeds: decimal.Zero,
		Cost:     decimal.Zero,
		Fees:     decimal.Zero,
		Gains:    decimal.Zero,
		Losses:   decimal.Zero,
		Net:      decimal.Zero,
	}
	for _, e := range events {
		t.Disposals++
		t.Proceeds = t.Proceeds.Add(e.Proceeds)
		t.Cost = t.Cost.Add(e.Cost)
		t.Fees = t.Fees.Add(e.Fees)
		gain := e.Gain()
		if gain.Sign() >= 0 {
			t.Gains = t.Gains.Add(gain)
		} else {
			t.Losses = t.Losses.Add(gain.Abs())
		}
		t.Net = t.Net.Add(gain)
	}
	return t
}

// buildEstimate applies the year's rate table to the totals.
func buildEstimate(rs domain.Ruleset, year int, totals YearTotals) Estimate {
	rates := rs.RatesFor(year)

	taxable := totals.Net.Sub(rates.Allowance)
	if taxable.Sign() < 0 {
		taxable = decimal.Zero
	}

	hundred := decimal.NewFromInt(100)
	est := Estimate{
		Allowance:          rates.Allowance,
		TaxableGain:        taxable,
		LowerRateLiability: taxable.Mul(rates.LowerRate).Div(hundred),
		UpperRateLiability: taxable.Mul(rates.UpperRate).Div(hundred),
	}
	if rates.Allowance.Sign() > 0 {
		threshold := rates.Allowance.Mul(domain.DisclosureMultiple)
		est.DisclosureRequired = totals.Proceeds.GreaterThan(threshold)
	}
	return est
}
