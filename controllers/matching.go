package controllers

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/zsmartex/powermatch/config"
	"github.com/zsmartex/powermatch/controllers/entities"
	"github.com/zsmartex/powermatch/controllers/helpers"
	"github.com/zsmartex/powermatch/controllers/queries"
	"github.com/zsmartex/powermatch/models"
	"github.com/zsmartex/powermatch/repository"
	"github.com/zsmartex/powermatch/workers"
	"github.com/zsmartex/powermatch/workers/engines"
)

type JobQueue interface {
	Enqueue(kind string, payload []byte) (*workers.Job, error)
	Stats() workers.Stats
}

type PowerLister interface {
	ListVirtualPowers(ctx context.Context, filter repository.PowerFilter) ([]*models.VirtualPower, int64, error)
}

// MatchingController accepts matching events onto the queue and exposes the
// virtual power audit trail.
type MatchingController struct {
	queue  JobQueue
	powers PowerLister
}

func NewMatchingController(queue JobQueue, powers PowerLister) *MatchingController {
	return &MatchingController{queue: queue, powers: powers}
}

func VirtualPowerToEntity(power *models.VirtualPower) *entities.VirtualPower {
	entity := &entities.VirtualPower{
		ID:            power.ID,
		MemberID:      power.MemberID,
		StatusType:    power.StatusType,
		PowerPosition: power.PowerPosition,
		PowerType:     power.PowerType,
		PowerCount:    power.PowerCount,
		CreatedAt:     power.CreatedAt,
	}
	if power.Member != nil {
		entity.UID = power.Member.UID
		entity.Username = power.Member.Username
	}

	return entity
}

func (ctl *MatchingController) CreatePower(c *fiber.Ctx) error {
	errs := new(helpers.Errors)
	payload := new(helpers.CreatePowerParams)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(400).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_message_body"},
		})
	}

	helpers.Validate(payload, errs)
	if errs.Size() > 0 {
		return c.Status(422).JSON(errs)
	}

	power := payload.Power()
	if err := power.Validate(); err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"matching.power.invalid_power"},
		})
	}

	message, err := engines.NewPowerPayload(power)
	if err != nil {
		return err
	}

	return ctl.enqueue(c, message)
}

func (ctl *MatchingController) CreatePurchase(c *fiber.Ctx) error {
	errs := new(helpers.Errors)
	payload := new(helpers.CreatePurchaseParams)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(400).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_message_body"},
		})
	}

	helpers.Validate(payload, errs)
	if errs.Size() > 0 {
		return c.Status(422).JSON(errs)
	}

	purchase := payload.Purchase()
	if err := purchase.Power().Validate(); err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"matching.purchase.invalid_purchase"},
		})
	}

	message, err := engines.NewPurchasePayload(purchase)
	if err != nil {
		return err
	}

	return ctl.enqueue(c, message)
}

func (ctl *MatchingController) enqueue(c *fiber.Ctx, message []byte) error {
	job, err := ctl.queue.Enqueue(engines.MatchingJobKind, message)
	if errors.Is(err, workers.ErrQueueStopped) {
		return c.Status(503).JSON(helpers.Errors{
			Errors: []string{"matching.queue.stopped"},
		})
	} else if err != nil {
		config.Logger.Errorf("Failed to enqueue matching job: %v", err)

		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.internal_error"},
		})
	}

	return c.Status(202).JSON(entities.Job{
		ID:         job.ID,
		Kind:       job.Kind,
		EnqueuedAt: job.EnqueuedAt,
	})
}

func (ctl *MatchingController) GetPowers(c *fiber.Ctx) error {
	errs := new(helpers.Errors)
	params := new(queries.PowerFilters)

	if err := c.QueryParser(params); err != nil {
		return c.Status(400).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_query"},
		})
	}

	helpers.Validate(params, errs)
	if errs.Size() > 0 {
		return c.Status(422).JSON(errs)
	}

	filter := params.Filter().Normalize()
	powers, total, err := ctl.powers.ListVirtualPowers(c.Context(), filter)
	if err != nil {
		config.Logger.Errorf("Failed to list virtual powers: %v", err)

		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.internal_error"},
		})
	}

	power_entities := make([]*entities.VirtualPower, 0, len(powers))
	for _, power := range powers {
		power_entities = append(power_entities, VirtualPowerToEntity(power))
	}

	c.Set("X-Total", strconv.FormatInt(total, 10))
	c.Set("X-Page", strconv.Itoa(filter.Page))
	c.Set("X-Per-Page", strconv.Itoa(filter.Limit))

	return c.Status(200).JSON(power_entities)
}

func (ctl *MatchingController) GetQueue(c *fiber.Ctx) error {
	return c.Status(200).JSON(ctl.queue.Stats())
}
