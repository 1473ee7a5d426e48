package models

import (
	"github.com/shopspring/decimal"
)

type IncomeKind int

const (
	IncomeRepurchase IncomeKind = iota
	IncomeMentorMatching
	IncomeCashback
)

// IncomeComponent is one accrued-income field awaiting settlement.
type IncomeComponent struct {
	Column string
	Label  string
	Kind   IncomeKind
	Amount decimal.Decimal
}

func (m *Member) IncomeComponents() []IncomeComponent {
	return []IncomeComponent{
		{Column: "repurchase_income", Label: "Repurchase income", Kind: IncomeRepurchase, Amount: m.RepurchaseIncome},
		{Column: "repurchase_mentor_income_l1", Label: "Repurchase mentor income L1", Kind: IncomeRepurchase, Amount: m.RepurchaseMentorIncomeL1},
		{Column: "repurchase_mentor_income_l2", Label: "Repurchase mentor income L2", Kind: IncomeRepurchase, Amount: m.RepurchaseMentorIncomeL2},
		{Column: "repurchase_mentor_income_l3", Label: "Repurchase mentor income L3", Kind: IncomeRepurchase, Amount: m.RepurchaseMentorIncomeL3},
		{Column: "matching_mentor_income_l1", Label: "Matching mentor income L1", Kind: IncomeMentorMatching, Amount: m.MatchingMentorIncomeL1},
		{Column: "matching_mentor_income_l2", Label: "Matching mentor income L2", Kind: IncomeMentorMatching, Amount: m.MatchingMentorIncomeL2},
		{Column: "repurchase_cashback_income", Label: "Repurchase cashback income", Kind: IncomeCashback, Amount: m.RepurchaseCashbackIncome},
	}
}

// ClearIncome zeroes the named accrued-income columns.
func (m *Member) ClearIncome(columns []string) {
	for _, column := range columns {
		switch column {
		case "repurchase_income":
			m.RepurchaseIncome = decimal.Zero
		case "repurchase_mentor_income_l1":
			m.RepurchaseMentorIncomeL1 = decimal.Zero
		case "repurchase_mentor_income_l2":
			m.RepurchaseMentorIncomeL2 = decimal.Zero
		case "repurchase_mentor_income_l3":
			m.RepurchaseMentorIncomeL3 = decimal.Zero
		case "matching_mentor_income_l1":
			m.MatchingMentorIncomeL1 = decimal.Zero
		case "matching_mentor_income_l2":
			m.MatchingMentorIncomeL2 = decimal.Zero
		case "repurchase_cashback_income":
			m.RepurchaseCashbackIncome = decimal.Zero
		}
	}
}

// Settlement is the write set produced for one member by a settlement run.
// Wallet deltas are signed and applied relative to the stored balance.
type Settlement struct {
	MemberID     int64
	HoldDelta    decimal.Decimal
	UpgradeDelta decimal.Decimal
	Clear        []string
	Entries      []*WalletTransaction
}

func (s *Settlement) Empty() bool {
	return len(s.Clear) == 0 && len(s.Entries) == 0 && s.HoldDelta.IsZero() && s.UpgradeDelta.IsZero()
}
