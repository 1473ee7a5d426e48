package engines

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/zsmartex/powermatch/config"
	"github.com/zsmartex/powermatch/matching"
)

type MatchingAction string

const (
	ActionPower    MatchingAction = "power"
	ActionPurchase MatchingAction = "purchase"
)

type MatchingPayloadMessage struct {
	Action   MatchingAction     `json:"action"`
	Power    *matching.Power    `json:"power,omitempty"`
	Purchase *matching.Purchase `json:"purchase,omitempty"`
}

type PowerApplier interface {
	ApplyPower(ctx context.Context, power *matching.Power) (*matching.Result, error)
}

type MatchingWorker struct {
	engine PowerApplier
	logger *logrus.Entry
}

func NewMatchingWorker(engine PowerApplier) *MatchingWorker {
	return &MatchingWorker{
		engine: engine,
		logger: config.Logger.WithField("worker", "matching"),
	}
}

func (w *MatchingWorker) Process(payload []byte) error {
	var matching_payload MatchingPayloadMessage
	if err := json.Unmarshal(payload, &matching_payload); err != nil {
		return err
	}

	var power *matching.Power
	switch matching_payload.Action {
	case ActionPower:
		power = matching_payload.Power
	case ActionPurchase:
		if matching_payload.Purchase != nil {
			power = matching_payload.Purchase.Power()
		}
	default:
		return fmt.Errorf("unknown action: %s", matching_payload.Action)
	}

	if power == nil {
		return fmt.Errorf("%s payload is empty", matching_payload.Action)
	}

	result, err := w.engine.ApplyPower(context.Background(), power)
	if err != nil {
		return fmt.Errorf("member %d: %w", power.MemberID, err)
	}

	w.logger.WithFields(logrus.Fields{
		"member_id":   power.MemberID,
		"power_type":  power.PowerType,
		"status_type": power.StatusType,
		"visited":     result.Visited,
		"credited":    result.Credited.String(),
	}).Info("power applied")

	return nil
}

// NewPowerPayload encodes a power event for the queue.
func NewPowerPayload(power *matching.Power) ([]byte, error) {
	return json.Marshal(MatchingPayloadMessage{Action: ActionPower, Power: power})
}

func NewPurchasePayload(purchase *matching.Purchase) ([]byte, error) {
	return json.Marshal(MatchingPayloadMessage{Action: ActionPurchase, Purchase: purchase})
}
