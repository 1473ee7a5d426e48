package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/zsmartex/powermatch/ledger"
	"github.com/zsmartex/powermatch/types"
)

// WalletTransaction is an append-only journal entry. APPROVED and debit
// entries are written together with the balance change they describe.
type WalletTransaction struct {
	ID              uint64                  `json:"id" gorm:"primaryKey"`
	MemberID        int64                   `json:"member_id" gorm:"index;not null"`
	Amount          decimal.Decimal         `json:"amount" gorm:"type:decimal(32,2);not null"`
	Type            types.TransactionType   `json:"type" gorm:"type:varchar(10);not null"`
	WalletType      types.WalletType        `json:"wallet_type" gorm:"type:varchar(20);not null;index"`
	Status          types.TransactionStatus `json:"status" gorm:"type:varchar(10);not null;index"`
	TransactionDate time.Time               `json:"transaction_date" gorm:"index"`
	Notes           string                  `json:"notes" gorm:"type:text"`
	CreatedAt       time.Time               `json:"created_at"`
}

func (t *WalletTransaction) Effect() decimal.Decimal {
	return ledger.Effect(t.Type, t.Status, t.Amount)
}

// WalletDelta is the balance change entries explain on wallet.
func WalletDelta(entries []*WalletTransaction, wallet types.WalletType) decimal.Decimal {
	effects := make([]decimal.Decimal, 0, len(entries))
	for _, entry := range entries {
		if entry.WalletType == wallet {
			effects = append(effects, entry.Effect())
		}
	}

	return ledger.Sum(effects...)
}

func newWalletTransaction(member_id int64, kind types.TransactionType, wallet types.WalletType, status types.TransactionStatus, amount decimal.Decimal, date time.Time, notes string) *WalletTransaction {
	return &WalletTransaction{
		MemberID:        member_id,
		Amount:          ledger.Round(amount),
		Type:            kind,
		WalletType:      wallet,
		Status:          status,
		TransactionDate: date,
		Notes:           notes,
	}
}

func Credit(member_id int64, wallet types.WalletType, status types.TransactionStatus, amount decimal.Decimal, date time.Time, notes string) *WalletTransaction {
	return newWalletTransaction(member_id, types.TransactionCredit, wallet, status, amount, date, notes)
}

func Debit(member_id int64, wallet types.WalletType, status types.TransactionStatus, amount decimal.Decimal, date time.Time, notes string) *WalletTransaction {
	return newWalletTransaction(member_id, types.TransactionDebit, wallet, status, amount, date, notes)
}

// Transfer moves an approved amount between two wallets of the same member.
func Transfer(member_id int64, from, to types.WalletType, amount decimal.Decimal, date time.Time, notes string) []*WalletTransaction {
	return []*WalletTransaction{
		Debit(member_id, from, types.TransactionApproved, amount, date, notes),
		Credit(member_id, to, types.TransactionApproved, amount, date, notes),
	}
}
