package repository

import (
	"errors"
	"strings"
)

var ErrMemberNotFound = errors.New("member not found")

// PowerFilter narrows and orders the virtual power audit listing.
type PowerFilter struct {
	MemberID int64
	Username string
	OrderBy  string
	Order    string
	Page     int
	Limit    int
}

var powerSortColumns = map[string]bool{
	"id":             true,
	"power_count":    true,
	"status_type":    true,
	"power_position": true,
	"created_at":     true,
}

// Normalize fills defaults and drops unsupported sort options.
func (f PowerFilter) Normalize() PowerFilter {
	if f.Limit <= 0 {
		f.Limit = 100
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if !powerSortColumns[f.OrderBy] {
		f.OrderBy = "id"
	}
	if strings.ToLower(f.Order) == "asc" {
		f.Order = "asc"
	} else {
		f.Order = "desc"
	}

	return f
}

func (f PowerFilter) Offset() int {
	return f.Page*f.Limit - f.Limit
}
