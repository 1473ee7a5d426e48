package models

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/zsmartex/powermatch/types"
)

// Wallet returns the balance field backing a wallet bucket.
func (m *Member) Wallet(wallet types.WalletType) *decimal.Decimal {
	switch wallet {
	case types.WalletMatchingIncome:
		return &m.MatchingIncomeWalletBalance
	case types.WalletHold:
		return &m.HoldWalletBalance
	case types.WalletUpgrade:
		return &m.UpgradeWalletBalance
	case types.WalletFranchise:
		return &m.FranchiseWalletBalance
	}

	return nil
}

func (m *Member) PlusFunds(wallet types.WalletType, amount decimal.Decimal) error {
	balance := m.Wallet(wallet)
	if balance == nil || !amount.IsPositive() {
		return fmt.Errorf("cannot add funds (member id: %d, wallet: %s, amount: %s)", m.ID, wallet, amount)
	}

	*balance = balance.Add(amount)
	return nil
}

func (m *Member) SubFunds(wallet types.WalletType, amount decimal.Decimal) error {
	balance := m.Wallet(wallet)
	if balance == nil || !amount.IsPositive() || amount.GreaterThan(*balance) {
		return fmt.Errorf("cannot subtract funds (member id: %d, wallet: %s, amount: %s, balance: %s)", m.ID, wallet, amount, m.walletString(wallet))
	}

	*balance = balance.Sub(amount)
	return nil
}

func (m *Member) walletString(wallet types.WalletType) string {
	if balance := m.Wallet(wallet); balance != nil {
		return balance.String()
	}
	return "n/a"
}
