package domain

import "github.com/shopspring/decimal"

// Rates holds the static allowance and rate figures used to produce a
// tax liability estimate for one tax year. The estimate is indicative
// only; it ignores the taxpayer's other income and reliefs.
type Rates struct {
	// Allowance is the annual exempt amount deducted from net gains
	// before applying rates. Zero for companies and US rules.
	Allowance decimal.Decimal
	// LowerRate and UpperRate bracket the estimate: UK basic vs higher
	// rate, US long-term vs short-term. Expressed as percentages.
	LowerRate decimal.Decimal
	UpperRate decimal.Decimal
}

// ukAllowances maps a UK individual tax year (labelled by its ending
// calendar year) to the CGT annual exempt amount.
var ukAllowances = map[int]int64{
	2015: 11000,
	2016: 11100,
	2017: 11100,
	2018: 11300,
	2019: 11700,
	2020: 12000,
	2021: 12300,
	2022: 12300,
	2023: 12300,
	2024: 6000,
	2025: 3000,
	2026: 3000,
}

// RatesFor returns the rate table for a tax year under this ruleset.
// Years outside the table use the nearest known year's figures.
func (r Ruleset) RatesFor(year int) Rates {
	switch r.Jurisdiction {
	case JurisdictionUKIndividual:
		lower, upper := int64(10), int64(20)
		if year >= 2025 {
			// Autumn 2024 budget aligned crypto/share rates with
			// residential property.
			lower, upper = 18, 24
		}
		return Rates{
			Allowance: decimal.NewFromInt(ukAllowance(year)),
			LowerRate: decimal.NewFromInt(lower),
			UpperRate: decimal.NewFromInt(upper),
		}
	case JurisdictionUKCompany:
		rate := int64(25)
		if year < 2023 {
			rate = 19
		}
		return Rates{
			Allowance: decimal.Zero,
			LowerRate: decimal.NewFromInt(rate),
			UpperRate: decimal.NewFromInt(rate),
		}
	default:
		// US estimate: 15% long-term, 22% short-term bracket assumption.
		return Rates{
			Allowance: decimal.Zero,
			LowerRate: decimal.NewFromInt(15),
			UpperRate: decimal.NewFromInt(22),
		}
	}
}

func ukAllowance(year int) int64 {
	if a, ok := ukAllowances[year]; ok {
		return a
	}
	if year < 2015 {
		return ukAllowances[2015]
	}
	return ukAllowances[2026]
}

// DisclosureMultiple is the proceeds-to-allowance ratio above which UK
// reporting requires disclosure even when gains are under the allowance.
var DisclosureMultiple = decimal.NewFromInt(4)
