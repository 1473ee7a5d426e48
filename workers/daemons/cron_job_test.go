package daemons

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type blockingJob struct {
	runs int32
	quit chan struct{}
}

func (j *blockingJob) Process() {
	atomic.AddInt32(&j.runs, 1)
	<-j.quit
}

func (j *blockingJob) Stop() {
	close(j.quit)
}

type crashingJob struct{}

func (crashingJob) Process() { panic("scheduler failure") }
func (crashingJob) Stop()    {}

func TestCronJobRunsUntilStopped(t *testing.T) {
	first := &blockingJob{quit: make(chan struct{})}
	second := &blockingJob{quit: make(chan struct{})}
	cron := NewCronJob(first, second, crashingJob{})

	done := make(chan struct{})
	go func() {
		cron.Start()
		close(done)
	}()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&first.runs) == 1 && atomic.LoadInt32(&second.runs) == 1
	}, time.Second, 5*time.Millisecond)

	cron.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cron job did not stop")
	}
}
