package entities

import (
	"time"

	"github.com/zsmartex/powermatch/types"
)

type VirtualPower struct {
	ID            uint64          `json:"id"`
	MemberID      int64           `json:"member_id"`
	UID           string          `json:"uid"`
	Username      string          `json:"username"`
	StatusType    types.Tier      `json:"status_type"`
	PowerPosition types.Position  `json:"power_position"`
	PowerType     types.PowerType `json:"power_type"`
	PowerCount    int64           `json:"power_count"`
	CreatedAt     time.Time       `json:"created_at"`
}
