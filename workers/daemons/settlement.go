package daemons

import (
	"context"

	"github.com/zsmartex/powermatch/config"
	"github.com/zsmartex/powermatch/workers/engines"
)

// Settlement runs a single monthly settlement outside the engine process.
// Operators use it to replay a period after a failed scheduled run.
type Settlement struct {
	engine engines.Settler
	ctx    context.Context
	cancel context.CancelFunc
	err    error
}

func NewSettlement(engine engines.Settler) *Settlement {
	ctx, cancel := context.WithCancel(context.Background())

	return &Settlement{engine: engine, ctx: ctx, cancel: cancel}
}

func (s *Settlement) Start() {
	defer s.cancel()

	report, err := s.engine.RunMonthlySettlement(s.ctx)
	if err != nil {
		s.err = err
		config.Logger.Errorf("Settlement failed: %v", err)
		return
	}

	if report.Failed > 0 {
		s.err = &FailedMembersError{Members: report.FailedMembers}
		config.Logger.WithFields(report.Fields()).Warn("settlement finished with failures")
	}
}

func (s *Settlement) Stop() {
	s.cancel()
}

func (s *Settlement) Err() error {
	return s.err
}

type FailedMembersError struct {
	Members []int64
}

func (e *FailedMembersError) Error() string {
	return "settlement failed for some members"
}
