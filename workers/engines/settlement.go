package engines

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/zsmartex/powermatch/config"
	"github.com/zsmartex/powermatch/settlement"
)

type Settler interface {
	RunMonthlySettlement(ctx context.Context) (*settlement.Report, error)
}

// SettlementWorker runs a settlement from the queue, so it never overlaps a
// matching job. The payload is ignored.
type SettlementWorker struct {
	engine Settler
	logger *logrus.Entry
}

func NewSettlementWorker(engine Settler) *SettlementWorker {
	return &SettlementWorker{
		engine: engine,
		logger: config.Logger.WithField("worker", "settlement"),
	}
}

func (w *SettlementWorker) Process(payload []byte) error {
	report, err := w.engine.RunMonthlySettlement(context.Background())
	if err != nil {
		return err
	}

	if report.Failed > 0 {
		w.logger.WithField("failed_members", report.FailedMembers).Warn("settlement finished with failures")
	}

	return nil
}
