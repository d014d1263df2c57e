package domain

import (
	"time"
)

// TransactionType classifies a normalized asset-movement record. The set
// is closed: the import boundary rejects anything outside it, so the
// engine can dispatch on the enum without string inspection.
type TransactionType string

const (
	TypeDeposit      TransactionType = "deposit"
	TypeWithdrawal   TransactionType = "withdrawal"
	TypeTrade        TransactionType = "trade"
	TypeMining       TransactionType = "mining"
	TypeStaking      TransactionType = "staking"
	TypeInterest     TransactionType = "interest"
	TypeDividend     TransactionType = "dividend"
	TypeIncome       TransactionType = "income"
	TypeGiftReceived TransactionType = "gift-received"
	TypeAirdrop      TransactionType = "airdrop"
	TypeSpend        TransactionType = "spend"
	TypeGiftSent     TransactionType = "gift-sent"
	TypeGiftToSpouse TransactionType = "gift-spouse"
	TypeCharitySent  TransactionType = "charity-sent"
	TypeLost         TransactionType = "lost"
)

// ValidTransactionTypes lists every recognized transaction type for
// validation at the import boundary.
var ValidTransactionTypes = map[TransactionType]bool{
	TypeDeposit:      true,
	TypeWithdrawal:   true,
	TypeTrade:        true,
	TypeMining:       true,
	TypeStaking:      true,
	TypeInterest:     true,
	TypeDividend:     true,
	TypeIncome:       true,
	TypeGiftReceived: true,
	TypeAirdrop:      true,
	TypeSpend:        true,
	TypeGiftSent:     true,
	TypeGiftToSpouse: true,
	TypeCharitySent:  true,
	TypeLost:         true,
}

// HasAcquisition reports whether the type carries a buy leg that creates
// an asset position.
func (t TransactionType) HasAcquisition() bool {
	switch t {
	case TypeDeposit, TypeTrade, TypeMining, TypeStaking, TypeInterest,
		TypeDividend, TypeIncome, TypeGiftReceived, TypeAirdrop:
		return true
	}
	return false
}

// HasDisposal reports whether the type carries a sell leg that reduces
// an asset position.
func (t TransactionType) HasDisposal() bool {
	switch t {
	case TypeWithdrawal, TypeTrade, TypeSpend, TypeGiftSent,
		TypeGiftToSpouse, TypeCharitySent, TypeLost:
		return true
	}
	return false
}

// IsIncome reports whether an acquisition of this type is taxable income
// at receipt.
func (t TransactionType) IsIncome() bool {
	switch t {
	case TypeMining, TypeStaking, TypeInterest, TypeDividend, TypeIncome:
		return true
	}
	return false
}

// IsNoGainNoLoss reports whether a disposal of this type is settled at
// exactly zero gain (proceeds fixed to cost plus fees).
func (t TransactionType) IsNoGainNoLoss() bool {
	return t == TypeGiftToSpouse || t == TypeCharitySent
}

// IsTransfer reports whether the type represents a movement between the
// user's own wallets rather than a market transaction.
func (t TransactionType) IsTransfer() bool {
	return t == TypeDeposit || t == TypeWithdrawal
}

// Transaction is a normalized asset-movement record, immutable once
// parsed. Buy, sell, and fee legs are independent monetary movements of
// possibly different assets; the fee leg is a sell of the fee asset.
type Transaction struct {
	Type      TransactionType
	Timestamp time.Time
	Buy       *Leg
	Sell      *Leg
	Fee       *Leg
	Wallet    string
	Note      string
}
