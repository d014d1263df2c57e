package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/evanhs/costbasis/internal/domain"
)

// settleFallback settles every leg that no rule pass consumed against
// the asset's running average-cost holding, in chronological order.
// Buys accumulate basis (transfers contribute none unless configured as
// disposals); sells take their proportional share of cost and fees out
// of the pool. Fee legs reduce the pool silently — their monetary value
// was already expensed on the transaction's main legs. A pool driven
// negative by a disposal is reported, not rejected: it signals missing
// fee or transfer records upstream.
func (m *Matcher) settleFallback(legs []*domain.Leg) {
	sortChronological(legs)

	for _, leg := range legs {
		holding := m.holdings.Get(leg.Asset)

		if leg.Side == domain.SideBuy {
			cost, fees := leg.Value, leg.FeeValue
			if leg.Type.IsTransfer() && !m.opts.TransfersAreDisposals {
				// Internal transfers move coins, not basis.
				cost, fees = decimal.Zero, decimal.Zero
			}
			holding.Add(leg.Quantity, cost, fees)
			continue
		}

		cost, fees := holding.ProportionFor(leg.Quantity)
		holding.Subtract(leg.Quantity, cost, fees)

		if holding.Quantity.Sign() < 0 {
			m.warn(domain.WarnNegativeHoldings, leg.Asset,
				fmt.Sprintf("holdings of %s are negative (%s) after disposal %s",
					leg.Asset, holding.Quantity.String(), leg.TID.String()))
		}

		if leg.IsFee {
			continue
		}
		if leg.Type.IsTransfer() && !m.opts.TransfersAreDisposals {
			continue
		}

		totalFees := fees.Add(leg.FeeValue)
		proceeds := leg.Value
		disposal := domain.DisposalSection104
		if leg.Type.IsNoGainNoLoss() {
			// Deliberate proceeds fixup: the gain is exactly zero
			// regardless of market price at disposal.
			proceeds = cost.Add(totalFees)
			disposal = domain.DisposalNoGainNoLoss
		}

		m.events.AppendGain(&domain.CapitalGainsEvent{
			Disposal:         disposal,
			Asset:            leg.Asset,
			Quantity:         leg.Quantity,
			Cost:             cost,
			Fees:             totalFees,
			Proceeds:         proceeds,
			Date:             leg.Timestamp,
			AcquisitionDates: nil, // pooled basis has no single acquisition
		})
	}
}
