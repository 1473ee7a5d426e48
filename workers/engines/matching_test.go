package engines

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null"
	"github.com/zsmartex/powermatch/config"
	"github.com/zsmartex/powermatch/matching"
	"github.com/zsmartex/powermatch/models"
	"github.com/zsmartex/powermatch/repository"
	"github.com/zsmartex/powermatch/settlement"
	"github.com/zsmartex/powermatch/types"
)

func newTestPlan() *config.PlanConfig {
	return &config.PlanConfig{
		Commissions: map[types.Tier]decimal.Decimal{
			types.TierAssociate: decimal.NewFromInt(100),
			types.TierSilver:    decimal.NewFromInt(200),
			types.TierGold:      decimal.NewFromInt(400),
			types.TierDiamond:   decimal.NewFromInt(800),
		},
		MaxCommissionsPerDay: 10,
		BatchSize:            150,
		MaxTreeDepth:         100,
		Location:             time.UTC,
	}
}

func newMatchingWorker(t *testing.T) (*MatchingWorker, *repository.MemoryRepository) {
	t.Helper()

	repo := repository.NewMemoryRepository()
	repo.AddMember(&models.Member{ID: 1, PositionToParent: types.PositionTop, Status: types.TierDiamond, Percentage: decimal.NewFromInt(100)})
	repo.AddMember(&models.Member{ID: 2, ParentID: null.Int64From(1), PositionToParent: types.PositionRight, Status: types.TierAssociate, Percentage: decimal.NewFromInt(100)})

	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC))
	engine := matching.NewEngine(repo, newTestPlan(), matching.WithClock(clock))

	return NewMatchingWorker(engine), repo
}

func TestMatchingWorkerAppliesPower(t *testing.T) {
	worker, repo := newMatchingWorker(t)

	payload, err := NewPowerPayload(&matching.Power{
		MemberID:      2,
		StatusType:    types.TierSilver,
		PowerPosition: types.PositionLeft,
		PowerCount:    3,
		PowerType:     types.PowerRoot,
	})
	require.NoError(t, err)
	require.NoError(t, worker.Process(payload))

	member, err := repo.FindMember(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, int64(3), member.Silver.Left)

	root, err := repo.FindMember(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(3), root.Silver.Right)
	require.Len(t, repo.VirtualPowers(), 1)
}

func TestMatchingWorkerAppliesPurchase(t *testing.T) {
	worker, repo := newMatchingWorker(t)

	payload, err := NewPurchasePayload(&matching.Purchase{MemberID: 2, StatusType: types.TierAssociate, PowerCount: 1})
	require.NoError(t, err)
	require.NoError(t, worker.Process(payload))

	root, err := repo.FindMember(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), root.Associate.Right)

	powers := repo.VirtualPowers()
	require.Len(t, powers, 1)
	require.Equal(t, types.PowerPurchase, powers[0].PowerType)
}

func TestMatchingWorkerRejectsBadPayloads(t *testing.T) {
	worker, repo := newMatchingWorker(t)

	require.Error(t, worker.Process([]byte("{")))
	require.Error(t, worker.Process([]byte(`{"action":"cancel"}`)))
	require.Error(t, worker.Process([]byte(`{"action":"power"}`)))

	payload, err := NewPowerPayload(&matching.Power{MemberID: 2, StatusType: types.TierAssociate, PowerPosition: types.PositionTop, PowerCount: 1, PowerType: types.PowerSelf})
	require.NoError(t, err)
	require.ErrorIs(t, worker.Process(payload), matching.ErrInvalidPower)

	payload, err = NewPowerPayload(&matching.Power{MemberID: 9, StatusType: types.TierAssociate, PowerPosition: types.PositionLeft, PowerCount: 1, PowerType: types.PowerSelf})
	require.NoError(t, err)
	require.ErrorIs(t, worker.Process(payload), matching.ErrBrokenTree)

	require.Empty(t, repo.VirtualPowers())
}

type stubSettler struct {
	runs   int
	report *settlement.Report
	err    error
}

func (s *stubSettler) RunMonthlySettlement(ctx context.Context) (*settlement.Report, error) {
	s.runs++
	return s.report, s.err
}

func TestSettlementWorker(t *testing.T) {
	settler := &stubSettler{report: &settlement.Report{Failed: 1, FailedMembers: []int64{4}}}
	worker := NewSettlementWorker(settler)

	require.NoError(t, worker.Process(nil))
	require.Equal(t, 1, settler.runs)

	settler.err = errors.New("connection refused")
	require.Error(t, worker.Process(nil))
	require.Equal(t, 2, settler.runs)
}
