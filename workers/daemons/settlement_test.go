package daemons

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zsmartex/powermatch/settlement"
)

type stubSettler struct {
	report *settlement.Report
	err    error
	calls  int
}

func (s *stubSettler) RunMonthlySettlement(ctx context.Context) (*settlement.Report, error) {
	s.calls++
	return s.report, s.err
}

func TestSettlementDaemon(t *testing.T) {
	ok := &stubSettler{report: &settlement.Report{Settled: 3}}
	daemon := NewSettlement(ok)
	daemon.Start()
	assert.Equal(t, 1, ok.calls)
	assert.NoError(t, daemon.Err())

	partial := &stubSettler{report: &settlement.Report{Settled: 1, Failed: 1, FailedMembers: []int64{9}}}
	daemon = NewSettlement(partial)
	daemon.Start()

	var failed *FailedMembersError
	assert.True(t, errors.As(daemon.Err(), &failed))
	assert.Equal(t, []int64{9}, failed.Members)

	broken := &stubSettler{err: errors.New("query failed")}
	daemon = NewSettlement(broken)
	daemon.Start()
	assert.EqualError(t, daemon.Err(), "query failed")
}
