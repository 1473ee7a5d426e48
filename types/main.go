package types

type Tier string

const (
	TierInactive  Tier = "INACTIVE"
	TierAssociate Tier = "ASSOCIATE"
	TierSilver    Tier = "SILVER"
	TierGold      Tier = "GOLD"
	TierDiamond   Tier = "DIAMOND"
)

// MatchingTiers are the tiers that own a balance pair.
var MatchingTiers = []Tier{TierAssociate, TierSilver, TierGold, TierDiamond}

func (t Tier) Matchable() bool {
	switch t {
	case TierAssociate, TierSilver, TierGold, TierDiamond:
		return true
	}
	return false
}

type Position string

const (
	PositionLeft  Position = "LEFT"
	PositionRight Position = "RIGHT"
	PositionTop   Position = "TOP"
)

func (p Position) Side() bool {
	return p == PositionLeft || p == PositionRight
}

type PowerType string

const (
	PowerSelf     PowerType = "SELF"
	PowerRoot     PowerType = "ROOT"
	PowerPurchase PowerType = "PURCHASE"
)

type TransactionType string

const (
	TransactionCredit TransactionType = "CREDIT"
	TransactionDebit  TransactionType = "DEBIT"
)

type TransactionStatus string

const (
	TransactionPending  TransactionStatus = "PENDING"
	TransactionApproved TransactionStatus = "APPROVED"
	TransactionRejected TransactionStatus = "REJECTED"
)

type WalletType string

const (
	WalletMatchingIncome WalletType = "MATCHING_INCOME"
	WalletHold           WalletType = "HOLD"
	WalletUpgrade        WalletType = "UPGRADE"
	WalletFranchise      WalletType = "FRANCHISE"
)

type OrderState string

const (
	OrderPending   OrderState = "PENDING"
	OrderCompleted OrderState = "COMPLETED"
	OrderCancelled OrderState = "CANCELLED"
)
