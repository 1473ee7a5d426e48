package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/volatiletech/null"
	"github.com/zsmartex/powermatch/config"
	"github.com/zsmartex/powermatch/ledger"
	"github.com/zsmartex/powermatch/models"
	"github.com/zsmartex/powermatch/repository"
	"github.com/zsmartex/powermatch/types"
)

// Store is the member tree as seen by the engine. Every ancestor is fetched by
// identifier and written back before the walk moves on.
type Store interface {
	FindMember(ctx context.Context, id int64) (*models.Member, error)
	ApplyMatching(ctx context.Context, member *models.Member, entries []*models.WalletTransaction) error
	CreateVirtualPower(ctx context.Context, power *models.VirtualPower) error
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
		logger: config.Logger.WithField("component", "matching"),
		points: nopPointWriter{},
	}

	for _, opt := range opts {
		opt(engine)
	}

	return engine
}

// Result summarises one ancestor walk.
type Result struct {
	Visited  int
	Entries  int
	Credited decimal.Decimal
}

// ApplyPower injects power at its member and walks the parent chain up to
// the root, or stops at the first node for SELF power. Nodes already written
// stay written when a later node fails.
func (e *Engine) ApplyPower(ctx context.Context, power *Power) (*Result, error) {
	if err := power.Validate(); err != nil {
		return nil, err
	}

	now := e.clock.Now().In(e.plan.Location)
	result := &Result{Credited: decimal.Zero}

	member_id, side := power.MemberID, power.PowerPosition
	if power.PowerType == types.PowerPurchase {
		purchaser, err := e.findMember(ctx, power.MemberID)
		if err != nil {
			return nil, err
		}
		if purchaser.IsRoot() {
			e.logger.WithField("member_id", purchaser.ID).Debug("purchase by a root member has no upline to credit")
			return result, nil
		}
		if !purchaser.ParentID.Valid {
			return nil, fmt.Errorf("%w: member %d has no parent", ErrBrokenTree, purchaser.ID)
		}

		member_id, side = purchaser.ParentID.Int64, purchaser.PositionToParent
	}

	start_id, start_side := member_id, side
	visited := make(map[int64]bool)

	for {
		if visited[member_id] {
			return result, fmt.Errorf("%w: cycle through member %d", ErrBrokenTree, member_id)
		}
		if len(visited) >= e.plan.MaxTreeDepth {
			return result, fmt.Errorf("%w: deeper than %d levels at member %d", ErrBrokenTree, e.plan.MaxTreeDepth, member_id)
		}
		visited[member_id] = true

		member, err := e.findMember(ctx, member_id)
		if err != nil {
			return result, err
		}

		entries, err := e.match(member, power.StatusType, side, power.PowerCount, now)
		if err != nil {
			return result, err
		}

		if err := e.store.ApplyMatching(ctx, member, entries); err != nil {
			return result, err
		}

		result.Visited++
		for _, entry := range entries {
			result.Entries++
			result.Credited = result.Credited.Add(entry.Amount)
		}

		if power.PowerType == types.PowerSelf || member.IsRoot() {
			break
		}
		if !member.ParentID.Valid {
			return result, fmt.Errorf("%w: member %d has no parent", ErrBrokenTree, member.ID)
		}

		side = member.PositionToParent
		member_id = member.ParentID.Int64
	}

	record := &models.VirtualPower{
		MemberID:      start_id,
		StatusType:    power.StatusType,
		PowerPosition: start_side,
		PowerType:     power.PowerType,
		PowerCount:    power.PowerCount,
		CreatedAt:     now,
	}
	if err := e.store.CreateVirtualPower(ctx, record); err != nil {
		return result, err
	}

	credited, _ := result.Credited.Float64()
	e.points.NewPoint("virtual_powers", map[string]string{
		"status_type": string(power.StatusType),
		"power_type":  string(power.PowerType),
	}, map[string]interface{}{
		"member_id":   start_id,
		"power_count": power.PowerCount,
		"visited":     result.Visited,
		"credited":    credited,
	})

	return result, nil
}

func (e *Engine) findMember(ctx context.Context, id int64) (*models.Member, error) {
	member, err := e.store.FindMember(ctx, id)
	if errors.Is(err, repository.ErrMemberNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrBrokenTree, err)
	}

	return member, err
}

// match applies one injection to a single node and returns the journal
// entries for any commission it earned. Matched units are consumed in full
// even when the daily cap limits how many of them are paid.
func (e *Engine) match(member *models.Member, tier types.Tier, side types.Position, units int64, now time.Time) ([]*models.WalletTransaction, error) {
	balance := member.Balance(tier)
	if balance == nil {
		return nil, fmt.Errorf("%w: status type %q", ErrInvalidPower, tier)
	}

	mine, opposite, total, err := balance.Sides(side)
	if err != nil {
		return nil, fmt.Errorf("%w: member %d: %v", ErrInvalidPower, member.ID, err)
	}

	*mine += units
	*total += units

	if *opposite == 0 {
		return nil, nil
	}

	var entries []*models.WalletTransaction

	if tier == types.TierAssociate && !member.Is21Pass && unlock21(mine, opposite) {
		member.Is21Pass = true

		if member.IsDirectMatch && member.Status != types.TierInactive {
			if entry := e.credit(member, tier, 1, now, "2:1 matching income"); entry != nil {
				entries = append(entries, entry)
			}
		}
	}

	matched := min(*mine, *opposite)
	if matched == 0 {
		return entries, nil
	}

	*mine -= matched
	*opposite -= matched

	if member.EarnsFrom(tier) {
		if entry := e.credit(member, tier, matched, now, fmt.Sprintf("%s matching income", tier)); entry != nil {
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

// unlock21 consumes a two-against-one imbalance, larger side first.
func unlock21(mine, opposite *int64) bool {
	switch {
	case *mine >= 2 && *opposite >= 1:
		*mine -= 2
		*opposite -= 1
	case *opposite >= 2 && *mine >= 1:
		*opposite -= 2
		*mine -= 1
	default:
		return false
	}

	return true
}

// credit pays up to units matched units at the tier rate, bounded by what is
// left of today's cap.
func (e *Engine) credit(member *models.Member, tier types.Tier, units int64, now time.Time, notes string) *models.WalletTransaction {
	balance := member.Balance(tier)

	units = min(units, e.capacity(balance, now))
	if units <= 0 {
		return nil
	}

	amount := ledger.Commission(units, e.plan.CommissionRate(tier), member.Percentage)
	if !amount.IsPositive() {
		return nil
	}

	if err := member.PlusFunds(types.WalletMatchingIncome, amount); err != nil {
		e.logger.WithField("member_id", member.ID).Error(err)
		return nil
	}

	if !e.sameDay(balance.CommissionDate, now) {
		balance.CommissionCount = 0
	}
	balance.CommissionCount += units
	balance.CommissionDate = null.TimeFrom(now)
	// gold matches are never added to the lifetime total
	if tier != types.TierGold {
		balance.TotalMatched += units
	}

	return models.Credit(member.ID, types.WalletMatchingIncome, types.TransactionApproved, amount, now,
		fmt.Sprintf("%s for %d unit(s)", notes, units))
}

// capacity is the number of units still payable today for a tier balance.
func (e *Engine) capacity(balance *models.TierBalance, now time.Time) int64 {
	if !e.sameDay(balance.CommissionDate, now) {
		return e.plan.MaxCommissionsPerDay
	}

	if remaining := e.plan.MaxCommissionsPerDay - balance.CommissionCount; remaining > 0 {
		return remaining
	}

	return 0
}

func (e *Engine) sameDay(date null.Time, now time.Time) bool {
	if !date.Valid {
		return false
	}

	y1, m1, d1 := date.Time.In(e.plan.Location).Date()
	y2, m2, d2 := now.In(e.plan.Location).Date()

	return y1 == y2 && m1 == m2 && d1 == d2
}
