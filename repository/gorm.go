package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zsmartex/powermatch/models"
	"github.com/zsmartex/powermatch/types"
	"gorm.io/gorm"
)

var settlementTiers = []types.Tier{types.TierSilver, types.TierGold, types.TierDiamond}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) FindMember(ctx context.Context, id int64) (*models.Member, error) {
	var member models.Member

	if err := r.db.WithContext(ctx).First(&member, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrMemberNotFound, id)
		}
		return nil, err
	}

	return &member, nil
}

// ApplyMatching persists one node of an ancestor walk. Only the columns the
// walk owns are written and the matching wallet is incremented by the credits
// in entries, so settlement and accrual writes to the same row survive.
func (r *GormRepository) ApplyMatching(ctx context.Context, member *models.Member, entries []*models.WalletTransaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := matchingUpdate(tx, member, entries)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: id %d", ErrMemberNotFound, member.ID)
		}

		if len(entries) > 0 {
			if err := tx.Create(&entries).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func matchingUpdate(tx *gorm.DB, member *models.Member, entries []*models.WalletTransaction) *gorm.DB {
	columns := member.MatchingColumns()
	if delta := models.WalletDelta(entries, types.WalletMatchingIncome); !delta.IsZero() {
		columns["matching_income_wallet_balance"] = gorm.Expr("matching_income_wallet_balance + ?", delta)
	}

	return tx.Model(&models.Member{}).Where("id = ?", member.ID).Updates(columns)
}

func (r *GormRepository) CreateVirtualPower(ctx context.Context, power *models.VirtualPower) error {
	return r.db.WithContext(ctx).Create(power).Error
}

func (r *GormRepository) ListVirtualPowers(ctx context.Context, filter PowerFilter) ([]*models.VirtualPower, int64, error) {
	filter = filter.Normalize()

	query := r.db.WithContext(ctx).
		Model(&models.VirtualPower{}).
		Joins("JOIN members ON members.id = virtual_powers.member_id")

	if filter.MemberID > 0 {
		query = query.Where("virtual_powers.member_id = ?", filter.MemberID)
	}
	if filter.Username != "" {
		query = query.Where("members.username ILIKE ?", "%"+filter.Username+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var powers []*models.VirtualPower
	err := query.
		Preload("Member").
		Order(fmt.Sprintf("virtual_powers.%s %s", filter.OrderBy, filter.Order)).
		Offset(filter.Offset()).
		Limit(filter.Limit).
		Find(&powers).Error
	if err != nil {
		return nil, 0, err
	}

	return powers, total, nil
}

func (r *GormRepository) repurchaseTotals(from, to time.Time) *gorm.DB {
	return r.db.
		Model(&models.Order{}).
		Select("member_id, SUM(total) AS total").
		Where("state = ? AND created_at >= ? AND created_at < ?", types.OrderCompleted, from, to).
		Group("member_id")
}

func (r *GormRepository) settlementMembers(ctx context.Context, from, to time.Time) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Member{}).
		Select("members.*").
		Joins("LEFT JOIN (?) AS repurchases ON repurchases.member_id = members.id", r.repurchaseTotals(from, to)).
		Where("members.status IN ? AND members.is_direct_match = ? AND members.is_2_1_pass = ?", settlementTiers, true, true).
		Order("members.id asc")
}

// FindSufficientRepurchase returns eligible members whose completed orders in
// [from, to) reach minimum.
func (r *GormRepository) FindSufficientRepurchase(ctx context.Context, from, to time.Time, minimum decimal.Decimal) ([]*models.Member, error) {
	var members []*models.Member

	err := r.settlementMembers(ctx, from, to).
		Where("COALESCE(repurchases.total, 0) >= ?", minimum).
		Find(&members).Error

	return members, err
}

// FindInsufficientRepurchase returns eligible members below minimum, including
// those without any order in the period.
func (r *GormRepository) FindInsufficientRepurchase(ctx context.Context, from, to time.Time, minimum decimal.Decimal) ([]*models.Member, error) {
	var members []*models.Member

	err := r.settlementMembers(ctx, from, to).
		Where("COALESCE(repurchases.total, 0) < ?", minimum).
		Find(&members).Error

	return members, err
}

func (r *GormRepository) ApplySettlement(ctx context.Context, settlement *models.Settlement) error {
	updates := map[string]interface{}{}
	for _, column := range settlement.Clear {
		updates[column] = decimal.Zero
	}
	if !settlement.HoldDelta.IsZero() {
		updates["hold_wallet_balance"] = gorm.Expr("hold_wallet_balance + ?", settlement.HoldDelta)
	}
	if !settlement.UpgradeDelta.IsZero() {
		updates["upgrade_wallet_balance"] = gorm.Expr("upgrade_wallet_balance + ?", settlement.UpgradeDelta)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			result := tx.Model(&models.Member{}).Where("id = ?", settlement.MemberID).Updates(updates)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w: id %d", ErrMemberNotFound, settlement.MemberID)
			}
		}

		if len(settlement.Entries) > 0 {
			if err := tx.Create(&settlement.Entries).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
