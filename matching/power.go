package matching

import (
	"fmt"

	"github.com/zsmartex/powermatch/types"
)

// Power describes one injection of matchable units.
type Power struct {
	MemberID      int64           `json:"member_id"`
	StatusType    types.Tier      `json:"status_type"`
	PowerPosition types.Position  `json:"power_position"`
	PowerCount    int64           `json:"power_count"`
	PowerType     types.PowerType `json:"power_type"`
}

func (p *Power) Validate() error {
	if p.MemberID <= 0 {
		return fmt.Errorf("%w: member id %d", ErrInvalidPower, p.MemberID)
	}
	if !p.StatusType.Matchable() {
		return fmt.Errorf("%w: status type %q", ErrInvalidPower, p.StatusType)
	}
	if p.PowerCount <= 0 {
		return fmt.Errorf("%w: power count %d", ErrInvalidPower, p.PowerCount)
	}

	switch p.PowerType {
	case types.PowerSelf, types.PowerRoot:
		if !p.PowerPosition.Side() {
			return fmt.Errorf("%w: power position %q", ErrInvalidPower, p.PowerPosition)
		}
	case types.PowerPurchase:
	default:
		return fmt.Errorf("%w: power type %q", ErrInvalidPower, p.PowerType)
	}

	return nil
}

// Purchase is a product purchase made by MemberID. Its units land on the
// purchaser's parent, on the side the purchaser occupies.
type Purchase struct {
	MemberID   int64      `json:"member_id"`
	StatusType types.Tier `json:"status_type"`
	PowerCount int64      `json:"power_count"`
}

func (p *Purchase) Power() *Power {
	return &Power{
		MemberID:   p.MemberID,
		StatusType: p.StatusType,
		PowerCount: p.PowerCount,
		PowerType:  types.PowerPurchase,
	}
}
