package service

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/evanhs/costbasis/internal/domain"
	"github.com/evanhs/costbasis/internal/engine"
	"github.com/evanhs/costbasis/internal/store"
)

// CalculatorOptions configures a calculation run. The zero value is not
// usable; construct from config.
type CalculatorOptions struct {
	Ruleset               domain.Ruleset
	RulesetLabel          string
	TransfersAreDisposals bool
	ZeroBasisIfUnmatched  bool
	FiatAssets            map[string]bool
	FiatIncome            bool
	// ReportingCurrency is stamped on the report; all leg values are
	// assumed to already be denominated in it.
	ReportingCurrency string
	// TaxYear restricts the report to a single tax year; zero means all
	// years.
	TaxYear int
}

// Calculator runs the end-to-end pipeline: transactions through the
// matching engine, events bucketed per tax year, totals and estimates
// applied, holdings snapshot and reconciliation attached.
type Calculator struct {
	opts   CalculatorOptions
	logger *slog.Logger
}

// NewCalculator creates a Calculator.
func NewCalculator(opts CalculatorOptions, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{opts: opts, logger: logger}
}

// Calculate produces the report for a batch of transactions. The prices
// map supplies optional current prices per asset for valuing the
// holdings snapshot. When transfers are configured as disposals, a
// wallet-ledger mismatch is promoted from a warning to a hard gate and
// Calculate fails; otherwise mismatches are caveats on the report.
func (c *Calculator) Calculate(txs []*domain.Transaction, prices map[string]decimal.Decimal) (*Report, error) {
	holdings := store.NewHoldingsStore()
	events := store.NewEventStore()
	assets := domain.NewAssetRegistry()

	matcher, err := engine.NewMatcher(engine.Options{
		Ruleset:               c.opts.Ruleset,
		TransfersAreDisposals: c.opts.TransfersAreDisposals,
		ZeroBasisIfUnmatched:  c.opts.ZeroBasisIfUnmatched,
		FiatAssets:            c.opts.FiatAssets,
		FiatIncome:            c.opts.FiatIncome,
		Logger:                c.logger,
	}, holdings, events, assets)
	if err != nil {
		return nil, fmt.Errorf("creating matcher: %w", err)
	}

	if err := matcher.Process(txs); err != nil {
		return nil, fmt.Errorf("matching: %w", err)
	}

	// Reconciliation: replay raw movements into the wallet ledger and
	// compare per-asset totals against the pool.
	ledger := store.NewWalletLedger()
	for _, tx := range txs {
		ledger.Record(tx)
	}
	auditWarnings := ledger.Compare(holdings, assets.Sorted())

	if c.opts.TransfersAreDisposals && len(auditWarnings) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrAuditMismatch, auditWarnings[0].String())
	}

	warnings := append(matcher.Warnings(), auditWarnings...)

	report := &Report{
		RunID:       uuid.New().String(),
		Ruleset:     c.opts.RulesetLabel,
		Currency:    c.opts.ReportingCurrency,
		GeneratedAt: time.Now().UTC(),
		Years:       c.buildYears(events),
		Holdings:    c.buildHoldings(holdings, assets, prices),
	}
	for _, w := range warnings {
		report.Warnings = append(report.Warnings, w.String())
	}
	return report, nil
}

// buildYears buckets events by tax year and assembles per-year totals
// and estimates, honoring the tax year filter.
func (c *Calculator) buildYears(events *store.EventStore) []YearReport {
	rs := c.opts.Ruleset
	gainsByYear := events.GainsByYear(rs)
	incomeByYear := events.IncomeByYear(rs)

	years := make(map[int]bool)
	for y := range gainsByYear {
		years[y] = true
	}
	for y := range incomeByYear {
		years[y] = true
	}

	var out []YearReport
	for year := range years {
		if c.opts.TaxYear != 0 && year != c.opts.TaxYear {
			continue
		}
		gains := gainsByYear[year]
		income := incomeByYear[year]

		incomeTotal := decimal.Zero
		for _, e := range income {
			incomeTotal = incomeTotal.Add(e.Amount)
		}

		totals := buildTotals(gains)
		out = append(out, YearReport{
			Year:         year,
			Label:        rs.YearLabel(year),
			CapitalGains: gains,
			Income:       income,
			IncomeTotal:  incomeTotal,
			Totals:       totals,
			Estimate:     buildEstimate(rs, year, totals),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// buildHoldings renders the end-of-batch snapshot in asset order,
// valuing positions when a price was supplied. Zero positions are
// omitted.
func (c *Calculator) buildHoldings(holdings *store.HoldingsStore, assets *domain.AssetRegistry, prices map[string]decimal.Decimal) []HoldingSnapshot {
	var out []HoldingSnapshot
	for _, asset := range assets.Sorted() {
		h, ok := holdings.Peek(asset)
		if !ok || h.Quantity.IsZero() {
			continue
		}
		snap := HoldingSnapshot{
			Asset:    asset,
			Quantity: h.Quantity,
			Cost:     h.Cost,
		}
		if price, ok := prices[asset]; ok {
			value := h.Quantity.Mul(price)
			gain := value.Sub(h.Cost)
			snap.Value = &value
			snap.Gain = &gain
		}
		out = append(out, snap)
	}
	return out
}
