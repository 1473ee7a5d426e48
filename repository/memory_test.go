package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zsmartex/powermatch/models"
	"github.com/zsmartex/powermatch/types"
)

func TestApplyMatchingKeepsSettlementColumns(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	repo.AddMember(&models.Member{
		ID:                          7,
		Username:                    "alice",
		PositionToParent:            types.PositionTop,
		MatchingIncomeWalletBalance: decimal.NewFromInt(50),
		HoldWalletBalance:           decimal.NewFromInt(500),
		RepurchaseIncome:            decimal.NewFromInt(300),
	})

	snapshot, err := repo.FindMember(ctx, 7)
	require.NoError(t, err)

	// a settlement and an accrual land between the read and the write
	require.NoError(t, repo.ApplySettlement(ctx, &models.Settlement{
		MemberID:  7,
		HoldDelta: decimal.NewFromInt(-300),
		Clear:     []string{"repurchase_income"},
	}))
	repo.UpdateMember(7, func(m *models.Member) {
		m.Username = "alice.renamed"
		m.RepurchaseCashbackIncome = decimal.NewFromInt(15)
	})

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	snapshot.Is21Pass = true
	snapshot.Silver.Left = 3
	require.NoError(t, snapshot.PlusFunds(types.WalletMatchingIncome, decimal.NewFromInt(200)))
	entries := []*models.WalletTransaction{
		models.Credit(7, types.WalletMatchingIncome, types.TransactionApproved, decimal.NewFromInt(200), now, "Silver matching"),
	}
	require.NoError(t, repo.ApplyMatching(ctx, snapshot, entries))

	member, err := repo.FindMember(ctx, 7)
	require.NoError(t, err)
	assert.True(t, member.Is21Pass)
	assert.Equal(t, int64(3), member.Silver.Left)
	assert.True(t, decimal.NewFromInt(250).Equal(member.MatchingIncomeWalletBalance))

	assert.True(t, decimal.NewFromInt(200).Equal(member.HoldWalletBalance))
	assert.True(t, member.RepurchaseIncome.IsZero())
	assert.True(t, decimal.NewFromInt(15).Equal(member.RepurchaseCashbackIncome))
	assert.Equal(t, "alice.renamed", member.Username)
}
