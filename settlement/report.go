package settlement

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Report summarises one settlement run. Amount totals only cover members
// whose update was committed.
type Report struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	Sufficient   int `json:"sufficient"`
	Insufficient int `json:"insufficient"`
	Settled      int `json:"settled"`
	Skipped      int `json:"skipped"`
	Failed       int `json:"failed"`

	FailedMembers []int64 `json:"failed_members"`

	Base           decimal.Decimal `json:"base"`
	TDS            decimal.Decimal `json:"tds"`
	PlatformCharge decimal.Decimal `json:"platform_charge"`
	Payable        decimal.Decimal `json:"payable"`
	Forfeited      decimal.Decimal `json:"forfeited"`
	Upgraded       decimal.Decimal `json:"upgraded"`

	mu sync.Mutex
}

func newReport(from, to time.Time) *Report {
	return &Report{
		From:           from,
		To:             to,
		FailedMembers:  make([]int64, 0),
		Base:           decimal.Zero,
		TDS:            decimal.Zero,
		PlatformCharge: decimal.Zero,
		Payable:        decimal.Zero,
		Forfeited:      decimal.Zero,
		Upgraded:       decimal.Zero,
	}
}

// totals are the amounts moved for a single member.
type totals struct {
	base           decimal.Decimal
	tds            decimal.Decimal
	platformCharge decimal.Decimal
	payable        decimal.Decimal
	forfeited      decimal.Decimal
	upgraded       decimal.Decimal
}

func newTotals() *totals {
	return &totals{
		base:           decimal.Zero,
		tds:            decimal.Zero,
		platformCharge: decimal.Zero,
		payable:        decimal.Zero,
		forfeited:      decimal.Zero,
		upgraded:       decimal.Zero,
	}
}

func (r *Report) settled(t *totals) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Settled++
	r.Base = r.Base.Add(t.base)
	r.TDS = r.TDS.Add(t.tds)
	r.PlatformCharge = r.PlatformCharge.Add(t.platformCharge)
	r.Payable = r.Payable.Add(t.payable)
	r.Forfeited = r.Forfeited.Add(t.forfeited)
	r.Upgraded = r.Upgraded.Add(t.upgraded)
}

func (r *Report) skipped() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Skipped++
}

func (r *Report) failed(member_id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Failed++
	r.FailedMembers = append(r.FailedMembers, member_id)
}

func (r *Report) Fields() logrus.Fields {
	r.mu.Lock()
	defer r.mu.Unlock()

	return logrus.Fields{
		"from":            r.From.Format("2006-01-02"),
		"to":              r.To.Format("2006-01-02"),
		"sufficient":      r.Sufficient,
		"insufficient":    r.Insufficient,
		"settled":         r.Settled,
		"skipped":         r.Skipped,
		"failed":          r.Failed,
		"base":            r.Base.String(),
		"tds":             r.TDS.String(),
		"platform_charge": r.PlatformCharge.String(),
		"payable":         r.Payable.String(),
		"forfeited":       r.Forfeited.String(),
		"upgraded":        r.Upgraded.String(),
	}
}

func (r *Report) point() map[string]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	fields := map[string]interface{}{
		"sufficient":   r.Sufficient,
		"insufficient": r.Insufficient,
		"settled":      r.Settled,
		"skipped":      r.Skipped,
		"failed":       r.Failed,
	}
	for name, amount := range map[string]decimal.Decimal{
		"base":            r.Base,
		"tds":             r.TDS,
		"platform_charge": r.PlatformCharge,
		"payable":         r.Payable,
		"forfeited":       r.Forfeited,
		"upgraded":        r.Upgraded,
	} {
		fields[name], _ = amount.Float64()
	}

	return fields
}
