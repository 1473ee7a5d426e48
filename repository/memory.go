package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zsmartex/powermatch/models"
	"github.com/zsmartex/powermatch/types"
)

// MemoryRepository keeps members, journal, audit and orders in process
// memory. Reads hand out copies so callers only publish changes through the
// Apply* methods, as they would against the database.
type MemoryRepository struct {
	mu           sync.RWMutex
	members      map[int64]*models.Member
	transactions []*models.WalletTransaction
	powers       []*models.VirtualPower
	orders       []*models.Order
	now          func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		members: make(map[int64]*models.Member),
		now:     time.Now,
	}
}

func (r *MemoryRepository) AddMember(member *models.Member) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := *member
	r.members[m.ID] = &m
}

// UpdateMember edits a stored member in place.
func (r *MemoryRepository) UpdateMember(id int64, update func(member *models.Member)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if member, ok := r.members[id]; ok {
		update(member)
	}
}

func (r *MemoryRepository) AddOrder(order *models.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o := *order
	if o.ID == 0 {
		o.ID = int64(len(r.orders) + 1)
	}
	r.orders = append(r.orders, &o)
}

func (r *MemoryRepository) FindMember(ctx context.Context, id int64) (*models.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	member, ok := r.members[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrMemberNotFound, id)
	}

	m := *member
	return &m, nil
}

func (r *MemoryRepository) ApplyMatching(ctx context.Context, member *models.Member, entries []*models.WalletTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.members[member.ID]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrMemberNotFound, member.ID)
	}

	stored.CopyMatchingState(member)
	stored.MatchingIncomeWalletBalance = stored.MatchingIncomeWalletBalance.Add(models.WalletDelta(entries, types.WalletMatchingIncome))
	stored.UpdatedAt = r.now()
	r.appendTransactions(entries)

	return nil
}

func (r *MemoryRepository) appendTransactions(entries []*models.WalletTransaction) {
	for _, entry := range entries {
		e := *entry
		e.ID = uint64(len(r.transactions) + 1)
		e.CreatedAt = r.now()
		entry.ID = e.ID
		r.transactions = append(r.transactions, &e)
	}
}

func (r *MemoryRepository) CreateVirtualPower(ctx context.Context, power *models.VirtualPower) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := *power
	p.ID = uint64(len(r.powers) + 1)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.now()
	}
	power.ID = p.ID
	r.powers = append(r.powers, &p)

	return nil
}

func (r *MemoryRepository) ListVirtualPowers(ctx context.Context, filter PowerFilter) ([]*models.VirtualPower, int64, error) {
	filter = filter.Normalize()

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*models.VirtualPower, 0)
	for _, power := range r.powers {
		member := r.members[power.MemberID]
		if member == nil {
			continue
		}
		if filter.MemberID > 0 && power.MemberID != filter.MemberID {
			continue
		}
		if filter.Username != "" && !strings.Contains(strings.ToLower(member.Username), strings.ToLower(filter.Username)) {
			continue
		}

		p := *power
		m := *member
		p.Member = &m
		matched = append(matched, &p)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		less := powerLess(matched[i], matched[j], filter.OrderBy)
		if filter.Order == "asc" {
			return less
		}
		return powerLess(matched[j], matched[i], filter.OrderBy)
	})

	total := int64(len(matched))
	start := filter.Offset()
	if start >= len(matched) {
		return []*models.VirtualPower{}, total, nil
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}

	return matched[start:end], total, nil
}

func powerLess(a, b *models.VirtualPower, column string) bool {
	switch column {
	case "power_count":
		return a.PowerCount < b.PowerCount
	case "status_type":
		return a.StatusType < b.StatusType
	case "power_position":
		return a.PowerPosition < b.PowerPosition
	case "created_at":
		return a.CreatedAt.Before(b.CreatedAt)
	}

	return a.ID < b.ID
}

func (r *MemoryRepository) repurchaseTotals(from, to time.Time) map[int64]decimal.Decimal {
	totals := make(map[int64]decimal.Decimal)
	for _, order := range r.orders {
		if order.Qualifies(from, to) {
			totals[order.MemberID] = totals[order.MemberID].Add(order.Total)
		}
	}

	return totals
}

func (r *MemoryRepository) settlementMembers(from, to time.Time, keep func(total decimal.Decimal) bool) []*models.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	totals := r.repurchaseTotals(from, to)

	members := make([]*models.Member, 0)
	for _, member := range r.members {
		if member.Status != types.TierSilver && member.Status != types.TierGold && member.Status != types.TierDiamond {
			continue
		}
		if !member.IsDirectMatch || !member.Is21Pass {
			continue
		}
		if !keep(totals[member.ID]) {
			continue
		}

		m := *member
		members = append(members, &m)
	}

	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })

	return members
}

func (r *MemoryRepository) FindSufficientRepurchase(ctx context.Context, from, to time.Time, minimum decimal.Decimal) ([]*models.Member, error) {
	return r.settlementMembers(from, to, func(total decimal.Decimal) bool {
		return total.GreaterThanOrEqual(minimum)
	}), nil
}

func (r *MemoryRepository) FindInsufficientRepurchase(ctx context.Context, from, to time.Time, minimum decimal.Decimal) ([]*models.Member, error) {
	return r.settlementMembers(from, to, func(total decimal.Decimal) bool {
		return total.LessThan(minimum)
	}), nil
}

func (r *MemoryRepository) ApplySettlement(ctx context.Context, settlement *models.Settlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	member, ok := r.members[settlement.MemberID]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrMemberNotFound, settlement.MemberID)
	}

	member.ClearIncome(settlement.Clear)
	member.HoldWalletBalance = member.HoldWalletBalance.Add(settlement.HoldDelta)
	member.UpgradeWalletBalance = member.UpgradeWalletBalance.Add(settlement.UpgradeDelta)
	member.UpdatedAt = r.now()
	r.appendTransactions(settlement.Entries)

	return nil
}

// Transactions returns the journal entries of a member in posting order.
func (r *MemoryRepository) Transactions(member_id int64) []*models.WalletTransaction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]*models.WalletTransaction, 0)
	for _, entry := range r.transactions {
		if entry.MemberID == member_id {
			e := *entry
			entries = append(entries, &e)
		}
	}

	return entries
}

func (r *MemoryRepository) VirtualPowers() []*models.VirtualPower {
	r.mu.RLock()
	defer r.mu.RUnlock()

	powers := make([]*models.VirtualPower, 0, len(r.powers))
	for _, power := range r.powers {
		p := *power
		powers = append(powers, &p)
	}

	return powers
}
