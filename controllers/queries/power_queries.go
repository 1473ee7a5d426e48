package queries

import (
	"github.com/zsmartex/powermatch/controllers/helpers"
	"github.com/zsmartex/powermatch/repository"
)

type PowerFilters struct {
	MemberID int64  `query:"member_id" validate:"uint"`
	Username string `query:"username"`
	OrderBy  string `query:"order_by" validate:"ValidateOrderBy"`
	Order    string `query:"order" validate:"ValidateOrder"`
	Page     int    `query:"page" validate:"uint"`
	Limit    int    `query:"limit" validate:"uint"`
}

func (t PowerFilters) ValidateOrderBy(val string) bool {
	switch val {
	case "id", "power_count", "status_type", "power_position", "created_at":
		return true
	}

	return false
}

func (t PowerFilters) ValidateOrder(val string) bool {
	return val == "asc" || val == "desc"
}

func (t PowerFilters) Messages() map[string]string {
	return helpers.ValidateMessage("matching.powers")
}

func (t PowerFilters) Filter() repository.PowerFilter {
	return repository.PowerFilter{
		MemberID: t.MemberID,
		Username: t.Username,
		OrderBy:  t.OrderBy,
		Order:    t.Order,
		Page:     t.Page,
		Limit:    t.Limit,
	}
}
