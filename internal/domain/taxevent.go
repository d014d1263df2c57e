package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DisposalType records which matching rule produced a capital gains
// event. UK rules tag events by the rule that matched them; US cost
// basis methods tag by holding period instead.
type DisposalType string

const (
	DisposalSameDay         DisposalType = "same-day"
	DisposalBedAndBreakfast DisposalType = "bed-and-breakfast"
	DisposalTenDay          DisposalType = "ten-day"
	DisposalSection104      DisposalType = "section-104"
	DisposalShortTerm       DisposalType = "short-term"
	DisposalLongTerm        DisposalType = "long-term"
	DisposalNoGainNoLoss    DisposalType = "no-gain-no-loss"
)

// CapitalGainsEvent is one taxable disposal: a sell matched against one
// or more buys, or settled against the Section 104 pool.
type CapitalGainsEvent struct {
	Disposal         DisposalType
	Asset            string
	Quantity         decimal.Decimal
	Cost             decimal.Decimal
	Fees             decimal.Decimal
	Proceeds         decimal.Decimal
	Date             time.Time
	AcquisitionDates []time.Time // one entry per matched buy
}

// Gain returns proceeds minus cost minus fees.
func (e *CapitalGainsEvent) Gain() decimal.Decimal {
	return e.Proceeds.Sub(e.Cost).Sub(e.Fees)
}

// IncomeEvent is a taxable receipt of value: mining, staking, interest,
// dividends, or other income, valued at receipt.
type IncomeEvent struct {
	Type     TransactionType
	Asset    string
	Quantity decimal.Decimal
	Amount   decimal.Decimal
	Fees     decimal.Decimal
	Date     time.Time
}
