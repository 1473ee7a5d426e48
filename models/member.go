package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null"
	"github.com/zsmartex/powermatch/types"
)

// TierBalance is the per-tier matching state of a member.
type TierBalance struct {
	Left            int64     `json:"left" gorm:"default:0"`
	Right           int64     `json:"right" gorm:"default:0"`
	TotalLeft       int64     `json:"total_left" gorm:"default:0"`
	TotalRight      int64     `json:"total_right" gorm:"default:0"`
	CommissionCount int64     `json:"commission_count" gorm:"default:0"`
	CommissionDate  null.Time `json:"commission_date"`
	TotalMatched    int64     `json:"total_matched" gorm:"default:0"`
}

// Sides resolves the balance an injection on side lands on, the balance it
// matches against and the lifetime total it accumulates into.
func (b *TierBalance) Sides(side types.Position) (mine, opposite, total *int64, err error) {
	switch side {
	case types.PositionLeft:
		return &b.Left, &b.Right, &b.TotalLeft, nil
	case types.PositionRight:
		return &b.Right, &b.Left, &b.TotalRight, nil
	}

	return nil, nil, nil, fmt.Errorf("unsupported side %q", side)
}

type Member struct {
	ID               int64           `json:"id" gorm:"primaryKey"`
	UID              string          `json:"uid" gorm:"uniqueIndex"`
	Username         string          `json:"username" gorm:"index"`
	ParentID         null.Int64      `json:"parent_id" gorm:"index"`
	PositionToParent types.Position  `json:"position_to_parent" gorm:"type:varchar(10);not null"`
	Status           types.Tier      `json:"status" gorm:"type:varchar(20);default:INACTIVE"`
	Percentage       decimal.Decimal `json:"percentage" gorm:"type:decimal(5,2);default:100"`
	IsDirectMatch    bool            `json:"is_direct_match"`
	IsDoubleMatch    bool            `json:"is_double_match"`
	Is21Pass         bool            `json:"is_2_1_pass" gorm:"column:is_2_1_pass"`

	Associate TierBalance `json:"associate" gorm:"embedded;embeddedPrefix:associate_"`
	Silver    TierBalance `json:"silver" gorm:"embedded;embeddedPrefix:silver_"`
	Gold      TierBalance `json:"gold" gorm:"embedded;embeddedPrefix:gold_"`
	Diamond   TierBalance `json:"diamond" gorm:"embedded;embeddedPrefix:diamond_"`

	MatchingIncomeWalletBalance decimal.Decimal `json:"matching_income_wallet_balance" gorm:"type:decimal(32,2);default:0"`
	HoldWalletBalance           decimal.Decimal `json:"hold_wallet_balance" gorm:"type:decimal(32,2);default:0"`
	UpgradeWalletBalance        decimal.Decimal `json:"upgrade_wallet_balance" gorm:"type:decimal(32,2);default:0"`
	FranchiseWalletBalance      decimal.Decimal `json:"franchise_wallet_balance" gorm:"type:decimal(32,2);default:0"`

	RepurchaseIncome         decimal.Decimal `json:"repurchase_income" gorm:"type:decimal(32,2);default:0"`
	RepurchaseMentorIncomeL1 decimal.Decimal `json:"repurchase_mentor_income_l1" gorm:"column:repurchase_mentor_income_l1;type:decimal(32,2);default:0"`
	RepurchaseMentorIncomeL2 decimal.Decimal `json:"repurchase_mentor_income_l2" gorm:"column:repurchase_mentor_income_l2;type:decimal(32,2);default:0"`
	RepurchaseMentorIncomeL3 decimal.Decimal `json:"repurchase_mentor_income_l3" gorm:"column:repurchase_mentor_income_l3;type:decimal(32,2);default:0"`
	MatchingMentorIncomeL1   decimal.Decimal `json:"matching_mentor_income_l1" gorm:"column:matching_mentor_income_l1;type:decimal(32,2);default:0"`
	MatchingMentorIncomeL2   decimal.Decimal `json:"matching_mentor_income_l2" gorm:"column:matching_mentor_income_l2;type:decimal(32,2);default:0"`
	RepurchaseCashbackIncome decimal.Decimal `json:"repurchase_cashback_income" gorm:"type:decimal(32,2);default:0"`
	CreatedAt                time.Time       `json:"created_at"`
	UpdatedAt                time.Time       `json:"updated_at"`
}

// Balance returns the balance pair of a matchable tier, nil otherwise.
func (m *Member) Balance(tier types.Tier) *TierBalance {
	switch tier {
	case types.TierAssociate:
		return &m.Associate
	case types.TierSilver:
		return &m.Silver
	case types.TierGold:
		return &m.Gold
	case types.TierDiamond:
		return &m.Diamond
	}

	return nil
}

func (m *Member) IsRoot() bool {
	return m.PositionToParent == types.PositionTop
}

// Qualified reports whether the member has unlocked matching income at all.
func (m *Member) Qualified() bool {
	return m.Is21Pass && m.IsDirectMatch
}

// EarnsFrom reports whether a match on tier pays this member. A rank earns
// from its own tier and every tier below it.
func (m *Member) EarnsFrom(tier types.Tier) bool {
	if !m.Qualified() {
		return false
	}

	switch m.Status {
	case types.TierDiamond:
		return true
	case types.TierGold:
		return tier != types.TierDiamond
	case types.TierSilver:
		return tier != types.TierDiamond && tier != types.TierGold
	case types.TierAssociate:
		return tier == types.TierAssociate
	}

	return false
}

// MatchingColumns returns the columns an ancestor walk owns, keyed by column
// name: every tier balance and the 2:1 flag. The matching wallet is not
// included, it moves by the delta of the walk's journal entries.
func (m *Member) MatchingColumns() map[string]interface{} {
	columns := map[string]interface{}{"is_2_1_pass": m.Is21Pass}

	for _, tier := range types.MatchingTiers {
		balance := m.Balance(tier)
		prefix := strings.ToLower(string(tier)) + "_"

		columns[prefix+"left"] = balance.Left
		columns[prefix+"right"] = balance.Right
		columns[prefix+"total_left"] = balance.TotalLeft
		columns[prefix+"total_right"] = balance.TotalRight
		columns[prefix+"commission_count"] = balance.CommissionCount
		columns[prefix+"commission_date"] = balance.CommissionDate
		columns[prefix+"total_matched"] = balance.TotalMatched
	}

	return columns
}

// CopyMatchingState copies the walk-owned fields of from onto m.
func (m *Member) CopyMatchingState(from *Member) {
	m.Associate = from.Associate
	m.Silver = from.Silver
	m.Gold = from.Gold
	m.Diamond = from.Diamond
	m.Is21Pass = from.Is21Pass
}
