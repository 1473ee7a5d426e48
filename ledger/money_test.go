package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/zsmartex/powermatch/types"
)

type MoneyTestSuite struct {
	suite.Suite
}

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func (s *MoneyTestSuite) TestPercentOfRoundsOnce() {
	s.True(d("0.33").Equal(PercentOf(d("3.33"), d("10"))))
	s.True(d("0.17").Equal(PercentOf(d("3.33"), d("5"))))
	s.True(d("12.35").Equal(PercentOf(d("123.45"), d("10"))))
	s.True(decimal.Zero.Equal(PercentOf(d("100"), decimal.Zero)))
}

func (s *MoneyTestSuite) TestCommission() {
	s.True(d("300").Equal(Commission(3, d("100"), d("100"))))
	s.True(d("150").Equal(Commission(3, d("100"), d("50"))))
	s.True(d("33.33").Equal(Commission(1, d("33.333"), d("100"))))
	s.True(decimal.Zero.Equal(Commission(0, d("100"), d("100"))))
	s.True(decimal.Zero.Equal(Commission(-2, d("100"), d("100"))))
}

func (s *MoneyTestSuite) TestDeductConservesBase() {
	for _, base := range []string{"0.01", "1", "99.99", "1234.57", "3333.33"} {
		result := Deduct(d(base), d("5"), d("5"), true)
		s.True(result.Base.Equal(Sum(result.TDS, result.PlatformCharge, result.Payable)), base)
	}
}

func (s *MoneyTestSuite) TestDeductWithoutTax() {
	result := Deduct(d("1000"), d("5"), d("10"), false)

	s.True(decimal.Zero.Equal(result.TDS))
	s.True(d("100").Equal(result.PlatformCharge))
	s.True(d("900").Equal(result.Payable))
}

func (s *MoneyTestSuite) TestEffect() {
	amount := d("10")

	s.True(amount.Equal(Effect(types.TransactionCredit, types.TransactionApproved, amount)))
	s.True(decimal.Zero.Equal(Effect(types.TransactionCredit, types.TransactionPending, amount)))
	s.True(decimal.Zero.Equal(Effect(types.TransactionCredit, types.TransactionRejected, amount)))
	s.True(amount.Neg().Equal(Effect(types.TransactionDebit, types.TransactionApproved, amount)))
	s.True(amount.Neg().Equal(Effect(types.TransactionDebit, types.TransactionPending, amount)))
	s.True(amount.Neg().Equal(Effect(types.TransactionDebit, types.TransactionRejected, amount)))
}

func TestMoney(t *testing.T) {
	suite.Run(t, new(MoneyTestSuite))
}
