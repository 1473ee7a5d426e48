package models

import (
	"time"

	"github.com/zsmartex/powermatch/types"
)

// VirtualPower is the audit record of one accepted injection. One row is
// written per event after the ancestor walk completes.
type VirtualPower struct {
	ID            uint64          `json:"id" gorm:"primaryKey"`
	MemberID      int64           `json:"member_id" gorm:"index;not null"`
	StatusType    types.Tier      `json:"status_type" gorm:"type:varchar(20);not null"`
	PowerPosition types.Position  `json:"power_position" gorm:"type:varchar(10);not null"`
	PowerType     types.PowerType `json:"power_type" gorm:"type:varchar(10);not null"`
	PowerCount    int64           `json:"power_count" gorm:"not null"`
	CreatedAt     time.Time       `json:"created_at" gorm:"index"`

	Member *Member `json:"member,omitempty" gorm:"foreignKey:MemberID"`
}

func (VirtualPower) TableName() string {
	return "virtual_powers"
}
