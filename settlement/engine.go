package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/zsmartex/powermatch/config"
	"github.com/zsmartex/powermatch/ledger"
	"github.com/zsmartex/powermatch/models"
	"github.com/zsmartex/powermatch/types"
	"golang.org/x/sync/errgroup"
)

type Store interface {
	FindSufficientRepurchase(ctx context.Context, from, to time.Time, minimum decimal.Decimal) ([]*models.Member, error)
	FindInsufficientRepurchase(ctx context.Context, from, to time.Time, minimum decimal.Decimal) ([]*models.Member, error)
	ApplySettlement(ctx context.Context, settlement *models.Settlement) error
}

type PointWriter interface {
	NewPoint(name string, tags map[string]string, fields map[string]interface{})
}

type nopPointWriter struct{}

func (nopPointWriter) NewPoint(string, map[string]string, map[string]interface{}) {}

type Engine struct {
	store  Store
	plan   *config.PlanConfig
	clock  clockwork.Clock
	logger *logrus.Entry
	points PointWriter
}

type Option func(*Engine)

func WithClock(clock clockwork.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

func WithLogger(logger *logrus.Entry) Option {
	return func(e *Engine) { e.logger = logger }
}

func WithPointWriter(points PointWriter) Option {
	return func(e *Engine) {
		if points != nil {
			e.points = points
		}
	}
}

func NewEngine(store Store, plan *config.PlanConfig, opts ...Option) *Engine {
	engine := &Engine{
		store:  store,
		plan:   plan,
		clock:  clockwork.NewRealClock(),
		logger: config.Logger.WithField("component", "settlement"),
		points: nopPointWriter{},
	}

	for _, opt := range opts {
		opt(engine)
	}

	return engine
}

// Period returns the previous calendar month of now as [from, to).
func Period(now time.Time, location *time.Location) (from, to time.Time) {
	now = now.In(location)
	to = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, location)

	return to.AddDate(0, -1, 0), to
}

type builder func(member *models.Member, now time.Time) (*models.Settlement, *totals, error)

// RunMonthlySettlement settles the accrued income of every eligible member
// against the repurchases of the previous month. Failures of single members
// are logged and counted in the report; only a failed eligibility query
// aborts the run.
func (e *Engine) RunMonthlySettlement(ctx context.Context) (*Report, error) {
	now := e.clock.Now().In(e.plan.Location)
	from, to := Period(now, e.plan.Location)

	sufficient, err := e.store.FindSufficientRepurchase(ctx, from, to, e.plan.MinimumRepurchaseTotal)
	if err != nil {
		return nil, fmt.Errorf("sufficient repurchase query: %w", err)
	}

	insufficient, err := e.store.FindInsufficientRepurchase(ctx, from, to, e.plan.MinimumRepurchaseTotal)
	if err != nil {
		return nil, fmt.Errorf("insufficient repurchase query: %w", err)
	}
	insufficient = exclude(insufficient, sufficient)

	report := newReport(from, to)
	report.Sufficient = len(sufficient)
	report.Insufficient = len(insufficient)

	e.logger.WithFields(logrus.Fields{
		"from":         from.Format("2006-01-02"),
		"to":           to.Format("2006-01-02"),
		"sufficient":   report.Sufficient,
		"insufficient": report.Insufficient,
	}).Info("settlement started")

	e.runBatches(ctx, "sufficient", sufficient, now, report, e.sufficient)
	e.runBatches(ctx, "insufficient", insufficient, now, report, e.insufficient)

	e.logger.WithFields(report.Fields()).Info("settlement finished")
	e.points.NewPoint("settlements", map[string]string{"period": from.Format("2006-01")}, report.point())

	return report, nil
}

// exclude drops members that already belong to another set.
func exclude(members, other []*models.Member) []*models.Member {
	taken := make(map[int64]bool, len(other))
	for _, member := range other {
		taken[member.ID] = true
	}

	kept := make([]*models.Member, 0, len(members))
	for _, member := range members {
		if !taken[member.ID] {
			kept = append(kept, member)
		}
	}

	return kept
}

// runBatches settles members in sequential batches. Members of one batch are
// settled concurrently and each touches only its own row.
func (e *Engine) runBatches(ctx context.Context, set string, members []*models.Member, now time.Time, report *Report, build builder) {
	for start, batch := 0, 1; start < len(members); start, batch = start+e.plan.BatchSize, batch+1 {
		end := min(start+e.plan.BatchSize, len(members))
		logger := e.logger.WithFields(logrus.Fields{"set": set, "batch": batch})

		var g errgroup.Group
		for _, member := range members[start:end] {
			member := member
			g.Go(func() error {
				if err := e.settle(ctx, member, now, report, build); err != nil {
					logger.WithField("member_id", member.ID).Errorf("Failed to settle member: %v", err)
					report.failed(member.ID)
				}
				return nil
			})
		}
		g.Wait()

		logger.WithField("size", end-start).Debug("batch finished")
	}
}

func (e *Engine) settle(ctx context.Context, member *models.Member, now time.Time, report *Report, build builder) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	settlement, t, err := build(member, now)
	if err != nil {
		return err
	}
	if settlement.Empty() {
		report.skipped()
		return nil
	}

	if err := e.store.ApplySettlement(ctx, settlement); err != nil {
		return err
	}

	report.settled(t)
	return nil
}

// sufficient converts all accrued income into a payout. Diamond members are
// taxed on everything; everyone else moves mentor matching income to the
// upgrade wallet untaxed.
func (e *Engine) sufficient(member *models.Member, now time.Time) (*models.Settlement, *totals, error) {
	settlement := &models.Settlement{MemberID: member.ID}
	t := newTotals()

	base := decimal.Zero
	for _, component := range member.IncomeComponents() {
		if component.Amount.IsZero() {
			continue
		}
		if component.Amount.IsNegative() {
			return nil, nil, fmt.Errorf("%s is negative: %s", component.Column, component.Amount)
		}

		settlement.Clear = append(settlement.Clear, component.Column)

		if component.Kind == models.IncomeMentorMatching && member.Status != types.TierDiamond {
			settlement.Entries = append(settlement.Entries, models.Transfer(member.ID, types.WalletHold, types.WalletUpgrade, component.Amount, now,
				fmt.Sprintf("%s moved to upgrade wallet", component.Label))...)
			t.upgraded = t.upgraded.Add(component.Amount)
			continue
		}

		base = base.Add(component.Amount)
	}

	if base.IsPositive() {
		e.payout(member.ID, settlement, t, base, now, "Monthly income")
	}

	settlement.HoldDelta = ledger.Sum(t.base, t.upgraded).Neg()
	settlement.UpgradeDelta = t.upgraded

	return settlement, t, holdCovers(member, settlement)
}

// insufficient forfeits accrued income of members below the repurchase
// minimum. Cashback survives: it moves to the upgrade wallet, or is paid out
// for diamond members.
func (e *Engine) insufficient(member *models.Member, now time.Time) (*models.Settlement, *totals, error) {
	settlement := &models.Settlement{MemberID: member.ID}
	t := newTotals()

	cashback := decimal.Zero
	for _, component := range member.IncomeComponents() {
		if component.Amount.IsZero() {
			continue
		}
		if component.Amount.IsNegative() {
			return nil, nil, fmt.Errorf("%s is negative: %s", component.Column, component.Amount)
		}

		settlement.Clear = append(settlement.Clear, component.Column)

		switch {
		case component.Kind != models.IncomeCashback:
			settlement.Entries = append(settlement.Entries, models.Debit(member.ID, types.WalletHold, types.TransactionRejected, component.Amount, now,
				fmt.Sprintf("%s forfeited: repurchase below minimum of %s", component.Label, e.plan.MinimumRepurchaseTotal)))
			t.forfeited = t.forfeited.Add(component.Amount)
		case member.Status == types.TierDiamond:
			cashback = cashback.Add(component.Amount)
		default:
			settlement.Entries = append(settlement.Entries, models.Transfer(member.ID, types.WalletHold, types.WalletUpgrade, component.Amount, now,
				fmt.Sprintf("%s moved to upgrade wallet", component.Label))...)
			t.upgraded = t.upgraded.Add(component.Amount)
		}
	}

	if cashback.IsPositive() {
		e.payout(member.ID, settlement, t, cashback, now, "Repurchase cashback")
	}

	settlement.HoldDelta = ledger.Sum(t.base, t.upgraded, t.forfeited).Neg()
	settlement.UpgradeDelta = t.upgraded

	return settlement, t, holdCovers(member, settlement)
}

// payout posts the deductions and the pending bank transfer for base. The
// entries always sum to base.
func (e *Engine) payout(member_id int64, settlement *models.Settlement, t *totals, base decimal.Decimal, now time.Time, label string) {
	deductions := ledger.Deduct(base, e.plan.TDSPercent, e.plan.PlatformChargePercent, e.plan.TaxEnabled)

	if deductions.TDS.IsPositive() {
		settlement.Entries = append(settlement.Entries, models.Debit(member_id, types.WalletHold, types.TransactionApproved, deductions.TDS, now,
			fmt.Sprintf("TDS %s%% on %s of %s", e.plan.TDSPercent, label, deductions.Base)))
	}
	if deductions.PlatformCharge.IsPositive() {
		settlement.Entries = append(settlement.Entries, models.Debit(member_id, types.WalletHold, types.TransactionApproved, deductions.PlatformCharge, now,
			fmt.Sprintf("Platform charge %s%% on %s of %s", e.plan.PlatformChargePercent, label, deductions.Base)))
	}
	if deductions.Payable.IsPositive() {
		settlement.Entries = append(settlement.Entries, models.Debit(member_id, types.WalletHold, types.TransactionPending, deductions.Payable, now,
			fmt.Sprintf("%s payable, transfer to bank account", label)))
	}

	t.base = t.base.Add(deductions.Base)
	t.tds = t.tds.Add(deductions.TDS)
	t.platformCharge = t.platformCharge.Add(deductions.PlatformCharge)
	t.payable = t.payable.Add(deductions.Payable)
}

// holdCovers rejects a settlement that would overdraw the hold wallet.
func holdCovers(member *models.Member, settlement *models.Settlement) error {
	if !settlement.HoldDelta.IsNegative() {
		return nil
	}

	snapshot := *member
	return snapshot.SubFunds(types.WalletHold, settlement.HoldDelta.Neg())
}
