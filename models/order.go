package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/zsmartex/powermatch/types"
)

// Order is a product purchase. Completed orders count towards the monthly
// repurchase total that decides how accrued income is settled.
type Order struct {
	ID        int64            `json:"id" gorm:"primaryKey"`
	MemberID  int64            `json:"member_id" gorm:"index;not null"`
	Total     decimal.Decimal  `json:"total" gorm:"type:decimal(32,2);not null"`
	State     types.OrderState `json:"state" gorm:"type:varchar(20);not null;index"`
	CreatedAt time.Time        `json:"created_at" gorm:"index"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (o *Order) Qualifies(from, to time.Time) bool {
	return o.State == types.OrderCompleted && !o.CreatedAt.Before(from) && o.CreatedAt.Before(to)
}
