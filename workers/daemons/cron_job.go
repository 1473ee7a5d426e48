package daemons

import (
	"sync"

	"github.com/zsmartex/powermatch/config"
	"github.com/zsmartex/powermatch/jobs"
)

type CronJob struct {
	Jobs []jobs.Job

	wg sync.WaitGroup
}

func NewCronJob(jobs ...jobs.Job) *CronJob {
	return &CronJob{Jobs: jobs}
}

// Start runs every job on its own goroutine and blocks until all of them
// have returned.
func (c *CronJob) Start() {
	for _, job := range c.Jobs {
		c.wg.Add(1)
		go c.Process(job)
	}

	c.wg.Wait()
}

func (c *CronJob) Stop() {
	for _, job := range c.Jobs {
		job.Stop()
	}
}

func (c *CronJob) Process(job jobs.Job) {
	defer c.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			config.Logger.Errorf("Cron job crashed: %v", r)
		}
	}()

	job.Process()
}
