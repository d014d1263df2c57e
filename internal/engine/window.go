package engine

import (
	"log/slog"

	"github.com/evanhs/costbasis/internal/domain"
)

// matchWindow runs one windowed rule pass over the ordered sell and buy
// lists. The outer loop advances through sells; for each sell the inner
// loop scans buys from index zero, because a buy already consumed or not
// yet eligible may sit anywhere in the list. On the first eligible
// unmatched buy the larger leg is split, the remainder spliced in right
// after its original so later passes still see it, and one event is
// emitted. A sell that exhausts the buy list stays unmatched and falls
// through to the next pass or to fallback settlement.
func (m *Matcher) matchWindow(rule Rule, sells, buys *legList) error {
	for si := 0; si < sells.len(); si++ {
		sell := sells.at(si)
		if sell.Matched {
			continue
		}

		for bi := 0; bi < buys.len(); bi++ {
			buy := buys.at(bi)
			if buy.Matched || buy.Asset != sell.Asset {
				continue
			}
			eligible, err := rule.Matches(buy, sell)
			if err != nil {
				return err
			}
			if !eligible {
				continue
			}

			switch buy.Quantity.Cmp(sell.Quantity) {
			case 1:
				remainder := buy.Split(sell.Quantity)
				buys.insertAfter(bi, remainder)
			case -1:
				remainder := sell.Split(buy.Quantity)
				sells.insertAfter(si, remainder)
			}
			// Equal quantities consume both without a remainder.

			buy.Matched = true
			sell.Matched = true
			m.emitWindowEvent(rule, buy, sell)
			break
		}
	}
	return nil
}

// emitWindowEvent records the capital gains event for a windowed match:
// cost from the buy, proceeds from the sell, fees from both sides.
func (m *Matcher) emitWindowEvent(rule Rule, buy, sell *domain.Leg) {
	event := &domain.CapitalGainsEvent{
		Disposal:         rule.DisposalType(),
		Asset:            sell.Asset,
		Quantity:         sell.Quantity,
		Cost:             buy.Value,
		Fees:             buy.FeeValue.Add(sell.FeeValue),
		Proceeds:         sell.Value,
		Date:             sell.Timestamp,
		AcquisitionDates: buy.AcquisitionDates(),
	}
	m.events.AppendGain(event)

	m.opts.Logger.Debug("matched disposal",
		slog.String("rule", string(rule)),
		slog.String("asset", sell.Asset),
		slog.String("sell", sell.TID.String()),
		slog.String("buy", buy.TID.String()),
		slog.String("quantity", sell.Quantity.String()),
		slog.String("gain", event.Gain().String()),
	)
}
