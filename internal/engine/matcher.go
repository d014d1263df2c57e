package engine

import (
	"log/slog"
	"sort"

	"github.com/evanhs/costbasis/internal/domain"
	"github.com/evanhs/costbasis/internal/store"
)

// Matcher orchestrates one calculation run: leg extraction, same-day
// pooling, the ordered rule passes or cost-basis queues, and fallback
// settlement against the holdings pool. A matcher processes one batch
// and is not reused.
type Matcher struct {
	opts     Options
	strategy Strategy
	holdings *store.HoldingsStore
	events   *store.EventStore
	assets   *domain.AssetRegistry
	warnings []domain.Warning
	seq      int64
}

// NewMatcher creates a Matcher for the given options and output stores.
func NewMatcher(opts Options, holdings *store.HoldingsStore, events *store.EventStore, assets *domain.AssetRegistry) (*Matcher, error) {
	strategy, err := StrategyFor(opts.Ruleset)
	if err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Matcher{
		opts:     opts,
		strategy: strategy,
		holdings: holdings,
		events:   events,
		assets:   assets,
	}, nil
}

// Process runs the full matching pipeline over a batch of transactions.
// The input need not be ordered; processing is deterministic for a given
// batch and options. Errors indicate code defects (an unknown rule
// token), never bad data — data problems surface as warnings.
func (m *Matcher) Process(txs []*domain.Transaction) error {
	if len(txs) == 0 {
		return domain.ErrEmptyInput
	}

	ordered := make([]*domain.Transaction, len(txs))
	copy(ordered, txs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	buys, sells, fallback := m.extractLegs(ordered)

	if len(m.strategy.Passes) > 0 {
		buyList := poolSameDay(buys)
		sellList := poolSameDay(sells)

		for _, rule := range m.strategy.Passes {
			if err := m.matchWindow(rule, sellList, buyList); err != nil {
				return err
			}
		}

		fallback = append(fallback, unmatched(buyList)...)
		fallback = append(fallback, unmatched(sellList)...)
	} else {
		leftovers, err := m.matchQueues(buys, sells)
		if err != nil {
			return err
		}
		fallback = append(fallback, leftovers...)
	}

	m.settleFallback(fallback)
	return nil
}

// Warnings returns the non-fatal findings accumulated during the run.
func (m *Matcher) Warnings() []domain.Warning {
	return m.warnings
}

// extractLegs converts transactions into buy and sell legs, assigning
// sequence ids in chronological order. Fee legs, transfer legs (when
// transfers are not disposals), no-gain-no-loss disposals, and lost
// assets bypass matching and go straight to fallback settlement. Fiat
// assets are excluded from gains matching altogether. Income events are
// emitted here, at receipt.
func (m *Matcher) extractLegs(txs []*domain.Transaction) (buys, sells, fallback []*domain.Leg) {
	for _, tx := range txs {
		m.seq++
		seq := m.seq

		var buy, sell, fee *domain.Leg
		if tx.Buy != nil && tx.Type.HasAcquisition() {
			buy = domain.NewLeg(seq, domain.SideBuy, tx.Type, tx.Buy.Asset, tx.Buy.Quantity, tx.Buy.Value, tx.Wallet, tx.Timestamp)
		}
		if tx.Sell != nil && tx.Type.HasDisposal() {
			sell = domain.NewLeg(seq, domain.SideSell, tx.Type, tx.Sell.Asset, tx.Sell.Quantity, tx.Sell.Value, tx.Wallet, tx.Timestamp)
		}
		if tx.Fee != nil {
			fee = domain.NewLeg(seq, domain.SideSell, tx.Type, tx.Fee.Asset, tx.Fee.Quantity, tx.Fee.Value, tx.Wallet, tx.Timestamp)
			fee.IsFee = true
			// The fee's monetary value is expensed on the first leg
			// that survives fiat exclusion. A fiat sell leg is dropped
			// below and would take the fee with it.
			switch {
			case sell != nil && !m.isFiat(sell.Asset):
				sell.FeeValue = sell.FeeValue.Add(tx.Fee.Value)
			case buy != nil && !m.isFiat(buy.Asset):
				buy.FeeValue = buy.FeeValue.Add(tx.Fee.Value)
			}
		}

		if buy != nil {
			m.emitIncome(tx, buy)
		}

		if buy != nil && !m.isFiat(buy.Asset) {
			m.assets.Register(buy.Asset)
			if m.bypassesMatching(buy) {
				fallback = append(fallback, buy)
			} else {
				buys = append(buys, buy)
			}
		}
		if sell != nil && !m.isFiat(sell.Asset) {
			m.assets.Register(sell.Asset)
			if m.bypassesMatching(sell) {
				fallback = append(fallback, sell)
			} else {
				sells = append(sells, sell)
			}
		}
		if fee != nil && !m.isFiat(fee.Asset) {
			m.assets.Register(fee.Asset)
			fallback = append(fallback, fee)
		}
	}
	return buys, sells, fallback
}

// bypassesMatching reports whether a leg skips the rule passes and
// settles directly against the holdings pool.
func (m *Matcher) bypassesMatching(leg *domain.Leg) bool {
	if leg.Type.IsTransfer() && !m.opts.TransfersAreDisposals {
		return true
	}
	if leg.Type.IsNoGainNoLoss() || leg.Type == domain.TypeLost {
		return true
	}
	return false
}

func (m *Matcher) isFiat(asset string) bool {
	return m.opts.FiatAssets[asset]
}

// emitIncome records an income event for acquisitions of income types,
// valued at receipt.
func (m *Matcher) emitIncome(tx *domain.Transaction, buy *domain.Leg) {
	if !tx.Type.IsIncome() {
		return
	}
	if m.isFiat(buy.Asset) && !m.opts.FiatIncome {
		return
	}
	m.events.AppendIncome(&domain.IncomeEvent{
		Type:     tx.Type,
		Asset:    buy.Asset,
		Quantity: buy.Quantity,
		Amount:   buy.Value,
		Fees:     buy.FeeValue,
		Date:     buy.Timestamp,
	})
}

// unmatched collects the legs of a list that no rule pass consumed,
// preserving list order.
func unmatched(ll *legList) []*domain.Leg {
	var out []*domain.Leg
	for _, leg := range ll.all() {
		if !leg.Matched {
			out = append(out, leg)
		}
	}
	return out
}

// warn records a non-fatal finding and logs it.
func (m *Matcher) warn(code domain.WarningCode, asset, message string) {
	m.warnings = append(m.warnings, domain.Warning{Code: code, Asset: asset, Message: message})
	m.opts.Logger.Warn(message,
		slog.String("code", string(code)),
		slog.String("asset", asset),
	)
}
