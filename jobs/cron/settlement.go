package cron

import (
	"sync"
	"time"

	"github.com/jasonlvhit/gocron"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/zsmartex/powermatch/config"
	"github.com/zsmartex/powermatch/workers"
	"github.com/zsmartex/powermatch/workers/engines"
)

const SettlementJobKind = engines.SettlementJobKind

type Enqueuer interface {
	Enqueue(kind string, payload []byte) (*workers.Job, error)
}

// SettlementJob checks both settlement triggers once a day at their wall
// clock time and enqueues a settlement on the day of month they name. The
// settlement itself runs on the queue.
type SettlementJob struct {
	queue    Enqueuer
	schedule config.ScheduleConfig
	location *time.Location
	clock    clockwork.Clock
	logger   *logrus.Entry
	quit     chan struct{}
	once     sync.Once
}

func NewSettlementJob(queue Enqueuer, plan *config.PlanConfig, clock clockwork.Clock) *SettlementJob {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &SettlementJob{
		queue:    queue,
		schedule: plan.Schedule,
		location: plan.Location,
		clock:    clock,
		logger:   config.Logger.WithField("job", "settlement"),
		quit:     make(chan struct{}),
	}
}

func (j *SettlementJob) Process() {
	gocron.ChangeLoc(j.location)

	s := gocron.NewScheduler()
	s.Every(1).Day().At(j.schedule.Monthly.At).Do(j.Trigger, "monthly", j.schedule.Monthly.Day)
	s.Every(1).Day().At(j.schedule.Repurchase.At).Do(j.Trigger, "repurchase", j.schedule.Repurchase.Day)

	stopped := s.Start()
	<-j.quit
	stopped <- true
	s.Clear()
}

func (j *SettlementJob) Stop() {
	j.once.Do(func() { close(j.quit) })
}

// Trigger enqueues a settlement when today is the configured day of month.
func (j *SettlementJob) Trigger(name string, day int) bool {
	if j.clock.Now().In(j.location).Day() != day {
		return false
	}

	job, err := j.queue.Enqueue(SettlementJobKind, nil)
	if err != nil {
		j.logger.WithField("trigger", name).Errorf("Failed to enqueue settlement: %v", err)
		return false
	}

	j.logger.WithFields(logrus.Fields{"trigger": name, "job_id": job.ID}).Info("settlement enqueued")
	return true
}
