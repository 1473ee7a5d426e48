package ledger

import (
	"github.com/shopspring/decimal"
	"github.com/zsmartex/powermatch/types"
)

// Effect returns the signed change an entry explains on its wallet balance.
//
// Credits move money only once approved. Debits leave the wallet when they are
// posted: approved debits are settled, pending debits are in flight to an
// external rail and rejected debits record forfeited income.
func Effect(kind types.TransactionType, status types.TransactionStatus, amount decimal.Decimal) decimal.Decimal {
	switch kind {
	case types.TransactionCredit:
		if status == types.TransactionApproved {
			return amount
		}
	case types.TransactionDebit:
		return amount.Neg()
	}

	return decimal.Zero
}
