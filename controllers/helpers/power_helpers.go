package helpers

import (
	"github.com/zsmartex/powermatch/matching"
	"github.com/zsmartex/powermatch/types"
)

type CreatePowerParams struct {
	MemberID      int64           `json:"member_id" form:"member_id" validate:"required|uint"`
	StatusType    types.Tier      `json:"status_type" form:"status_type" validate:"required|ValidateTier"`
	PowerPosition types.Position  `json:"power_position" form:"power_position" validate:"required|ValidateSide"`
	PowerCount    int64           `json:"power_count" form:"power_count" validate:"required|ValidatePowerCount"`
	PowerType     types.PowerType `json:"power_type" form:"power_type" validate:"required|ValidatePowerType"`
}

func (p CreatePowerParams) Messages() map[string]string {
	return ValidateMessage("matching.power")
}

func (p CreatePowerParams) ValidateTier(val types.Tier) bool {
	return ValidateTier(val)
}

func (p CreatePowerParams) ValidateSide(val types.Position) bool {
	return ValidateSide(val)
}

func (p CreatePowerParams) ValidatePowerType(val types.PowerType) bool {
	return ValidatePowerType(val)
}

func (p CreatePowerParams) ValidatePowerCount(val int64) bool {
	return val > 0
}

func (p CreatePowerParams) Power() *matching.Power {
	return &matching.Power{
		MemberID:      p.MemberID,
		StatusType:    p.StatusType,
		PowerPosition: p.PowerPosition,
		PowerCount:    p.PowerCount,
		PowerType:     p.PowerType,
	}
}

type CreatePurchaseParams struct {
	MemberID   int64      `json:"member_id" form:"member_id" validate:"required|uint"`
	StatusType types.Tier `json:"status_type" form:"status_type" validate:"required|ValidateTier"`
	PowerCount int64      `json:"power_count" form:"power_count" validate:"required|ValidatePowerCount"`
}

func (p CreatePurchaseParams) Messages() map[string]string {
	return ValidateMessage("matching.purchase")
}

func (p CreatePurchaseParams) ValidateTier(val types.Tier) bool {
	return ValidateTier(val)
}

func (p CreatePurchaseParams) ValidatePowerCount(val int64) bool {
	return val > 0
}

func (p CreatePurchaseParams) Purchase() *matching.Purchase {
	return &matching.Purchase{
		MemberID:   p.MemberID,
		StatusType: p.StatusType,
		PowerCount: p.PowerCount,
	}
}
