package store

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/evanhs/costbasis/internal/domain"
)

// WalletLedger recomputes wallet balances directly from the raw
// transaction stream, independently of the matching engine. Comparing
// its per-asset totals against the holdings pool catches missing fee or
// transfer records that matching alone would silently absorb.
type WalletLedger struct {
	balances map[string]map[string]decimal.Decimal // wallet → asset → quantity
}

// NewWalletLedger creates an empty WalletLedger.
func NewWalletLedger() *WalletLedger {
	return &WalletLedger{
		balances: make(map[string]map[string]decimal.Decimal),
	}
}

// Record applies one transaction's raw movements: the buy leg adds to
// its wallet, the sell and fee legs subtract from theirs. Every
// transaction type is recorded — the ledger tracks physical balances,
// not taxable ones.
func (l *WalletLedger) Record(tx *domain.Transaction) {
	if tx.Buy != nil {
		l.adjust(legWallet(tx, tx.Buy), tx.Buy.Asset, tx.Buy.Quantity)
	}
	if tx.Sell != nil {
		l.adjust(legWallet(tx, tx.Sell), tx.Sell.Asset, tx.Sell.Quantity.Neg())
	}
	if tx.Fee != nil {
		l.adjust(legWallet(tx, tx.Fee), tx.Fee.Asset, tx.Fee.Quantity.Neg())
	}
}

// legWallet resolves the wallet a leg moves through: the leg's own
// wallet when set, otherwise the transaction's.
func legWallet(tx *domain.Transaction, leg *domain.Leg) string {
	if leg.Wallet != "" {
		return leg.Wallet
	}
	return tx.Wallet
}

func (l *WalletLedger) adjust(wallet, asset string, delta decimal.Decimal) {
	w, ok := l.balances[wallet]
	if !ok {
		w = make(map[string]decimal.Decimal)
		l.balances[wallet] = w
	}
	w[asset] = w[asset].Add(delta)
}

// Balance returns the recomputed balance for a wallet and asset.
func (l *WalletLedger) Balance(wallet, asset string) decimal.Decimal {
	return l.balances[wallet][asset]
}

// AssetTotal sums an asset's balance across all wallets.
func (l *WalletLedger) AssetTotal(asset string) decimal.Decimal {
	total := decimal.Zero
	for _, w := range l.balances {
		total = total.Add(w[asset])
	}
	return total
}

// Compare checks the ledger's per-asset totals against the holdings
// pool and returns one warning per mismatching asset. The comparison is
// on quantity only: cost basis has no ledger-side counterpart.
func (l *WalletLedger) Compare(holdings *HoldingsStore, assets []string) []domain.Warning {
	var warnings []domain.Warning
	for _, asset := range assets {
		ledgerQty := l.AssetTotal(asset)
		poolQty := decimal.Zero
		if h, ok := holdings.Peek(asset); ok {
			poolQty = h.Quantity
		}
		if !ledgerQty.Equal(poolQty) {
			warnings = append(warnings, domain.Warning{
				Code:  domain.WarnBalanceMismatch,
				Asset: asset,
				Message: fmt.Sprintf("wallet ledger holds %s but pool holds %s",
					ledgerQty.String(), poolQty.String()),
			})
		}
	}
	return warnings
}
