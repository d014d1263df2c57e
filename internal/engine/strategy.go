// Package engine implements the matching and cost-basis allocation
// core: same-day pooling, windowed rule passes, cost-basis queues, and
// Section 104 fallback settlement against the holdings pool.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/evanhs/costbasis/internal/domain"
)

// Rule is a windowed matching rule token.
type Rule string

const (
	RuleSameDay         Rule = "same-day"
	RuleTenDay          Rule = "ten-day"
	RuleBedAndBreakfast Rule = "bed-and-breakfast"
)

// Matches reports whether a buy is eligible to match a sell under this
// rule. Windows operate on UTC calendar dates, not timestamps. An
// unrecognized rule reaching this point is a code defect, not user
// input, and is returned as an internal error.
func (r Rule) Matches(buy, sell *domain.Leg) (bool, error) {
	buyDate, sellDate := buy.Date(), sell.Date()
	switch r {
	case RuleSameDay:
		return buyDate.Equal(sellDate), nil
	case RuleTenDay:
		// Acquisition in the ten days before the disposal.
		return buyDate.Before(sellDate) && !sellDate.After(buyDate.AddDate(0, 0, 10)), nil
	case RuleBedAndBreakfast:
		// Buyback within thirty days after the disposal.
		return sellDate.Before(buyDate) && !buyDate.After(sellDate.AddDate(0, 0, 30)), nil
	}
	return false, fmt.Errorf("%w: %q", domain.ErrUnknownRule, string(r))
}

// DisposalType returns the tag applied to events matched under this
// rule.
func (r Rule) DisposalType() domain.DisposalType {
	switch r {
	case RuleSameDay:
		return domain.DisposalSameDay
	case RuleTenDay:
		return domain.DisposalTenDay
	default:
		return domain.DisposalBedAndBreakfast
	}
}

// Strategy is the rule selection derived from a ruleset: either an
// ordered list of windowed passes backed by Section 104 pooling (UK), or
// a queue ordering (US).
type Strategy struct {
	// Passes are the windowed rules run in order before fallback.
	// Empty for US methods.
	Passes []Rule
	// QueueMethod is the cost-basis queue ordering. Empty for UK rules.
	QueueMethod domain.Method
}

// StrategyFor maps a ruleset onto its matching strategy. UK individuals
// match same-day then bed-and-breakfast; UK companies match same-day
// then the ten-day window; US methods use a single ordered queue.
func StrategyFor(rs domain.Ruleset) (Strategy, error) {
	switch rs.Jurisdiction {
	case domain.JurisdictionUKIndividual:
		return Strategy{Passes: []Rule{RuleSameDay, RuleBedAndBreakfast}}, nil
	case domain.JurisdictionUKCompany:
		return Strategy{Passes: []Rule{RuleSameDay, RuleTenDay}}, nil
	case domain.JurisdictionUS:
		return Strategy{QueueMethod: rs.Method}, nil
	}
	return Strategy{}, fmt.Errorf("%w: %q", domain.ErrUnknownRuleset, rs.Jurisdiction)
}

// Options is the immutable configuration threaded into a Matcher. It
// replaces any notion of global config state: two matchers with the same
// options and input produce identical output.
type Options struct {
	Ruleset domain.Ruleset
	// TransfersAreDisposals treats deposits and withdrawals as taxable
	// acquisitions and disposals rather than internal movements.
	TransfersAreDisposals bool
	// ZeroBasisIfUnmatched settles the unmet part of a queue sell at
	// zero cost basis instead of deferring it to the holdings pool.
	ZeroBasisIfUnmatched bool
	// FiatAssets lists reporting-currency style assets excluded from
	// gains matching.
	FiatAssets map[string]bool
	// FiatIncome counts income received in a fiat asset as taxable
	// income.
	FiatIncome bool
	Logger     *slog.Logger
}
