package ledger

import (
	"github.com/shopspring/decimal"
)

// Precision is the number of fractional digits kept on every posted amount.
const Precision int32 = 2

var hundred = decimal.NewFromInt(100)

// Round rounds half away from zero to Precision digits.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(Precision)
}

// PercentOf returns amount × percent / 100. The product is formed before the
// division and only the final value is rounded.
func PercentOf(amount, percent decimal.Decimal) decimal.Decimal {
	return Round(amount.Mul(percent).Div(hundred))
}

// Commission prices a number of matched units at rate, scaled by the member's
// payout percentage.
func Commission(units int64, rate, percentage decimal.Decimal) decimal.Decimal {
	if units <= 0 {
		return decimal.Zero
	}

	return PercentOf(decimal.NewFromInt(units).Mul(rate), percentage)
}

// Deductions splits a taxable base into TDS, platform charge and the payable
// remainder. Payable is derived by subtraction so the three parts always sum
// back to base.
type Deductions struct {
	Base           decimal.Decimal
	TDS            decimal.Decimal
	PlatformCharge decimal.Decimal
	Payable        decimal.Decimal
}

func Deduct(base, tdsPercent, platformPercent decimal.Decimal, taxEnabled bool) Deductions {
	base = Round(base)

	tds := decimal.Zero
	if taxEnabled {
		tds = PercentOf(base, tdsPercent)
	}
	platform := PercentOf(base, platformPercent)

	return Deductions{
		Base:           base,
		TDS:            tds,
		PlatformCharge: platform,
		Payable:        base.Sub(tds).Sub(platform),
	}
}

// Sum adds amounts without rounding.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, amount := range amounts {
		total = total.Add(amount)
	}

	return total
}
