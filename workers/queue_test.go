package workers

import (
	"context"
	"errors"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type recordingWorker struct {
	mu       sync.Mutex
	busy     int32
	overlaps int32
	payloads []string
	starts   []time.Time
	ends     []time.Time
	done     chan struct{}
	hold     chan struct{}
	started  chan struct{}
}

func newRecordingWorker() *recordingWorker {
	return &recordingWorker{done: make(chan struct{}, 64), started: make(chan struct{}, 64)}
}

func (w *recordingWorker) Process(payload []byte) error {
	if !atomic.CompareAndSwapInt32(&w.busy, 0, 1) {
		atomic.AddInt32(&w.overlaps, 1)
	}

	w.mu.Lock()
	w.starts = append(w.starts, time.Now())
	w.mu.Unlock()
	w.started <- struct{}{}

	if w.hold != nil && string(payload) == "hold" {
		<-w.hold
	}
	time.Sleep(time.Millisecond)

	w.mu.Lock()
	w.payloads = append(w.payloads, string(payload))
	w.ends = append(w.ends, time.Now())
	w.mu.Unlock()

	atomic.StoreInt32(&w.busy, 0)
	w.done <- struct{}{}

	return nil
}

type funcWorker func(payload []byte) error

func (f funcWorker) Process(payload []byte) error {
	return f(payload)
}

type QueueTestSuite struct {
	suite.Suite
	queue  *Queue
	cancel context.CancelFunc
	exited chan struct{}
}

func (s *QueueTestSuite) SetupTest() {
	s.queue = NewQueue()
}

func (s *QueueTestSuite) TearDownTest() {
	if s.cancel != nil {
		s.cancel()
		<-s.exited
		s.cancel = nil
	}
}

func (s *QueueTestSuite) start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.exited = make(chan struct{})

	go func() {
		defer close(s.exited)
		s.queue.Run(ctx)
	}()
}

func (s *QueueTestSuite) wait(ch chan struct{}, n int) {
	for i := 0; i < n; i++ {
		select {
		case <-ch:
		case <-time.After(5 * time.Second):
			s.FailNow("timed out waiting for jobs")
		}
	}
}

func (s *QueueTestSuite) TestFIFOWithoutOverlap() {
	worker := newRecordingWorker()
	s.queue.Register("matching", worker)

	expected := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		payload := strconv.Itoa(i)
		expected = append(expected, payload)

		job, err := s.queue.Enqueue("matching", []byte(payload))
		s.Require().NoError(err)
		s.NotEmpty(job.ID)
	}
	s.Equal(20, s.queue.Len())

	s.start()
	s.wait(worker.done, 20)

	s.Equal(expected, worker.payloads)
	s.Equal(int32(0), atomic.LoadInt32(&worker.overlaps))
}

func (s *QueueTestSuite) TestJobsEnqueuedWhileRunning() {
	worker := newRecordingWorker()
	worker.hold = make(chan struct{})
	s.queue.Register("matching", worker)
	s.start()

	_, err := s.queue.Enqueue("matching", []byte("hold"))
	s.Require().NoError(err)
	s.wait(worker.started, 1)

	for _, payload := range []string{"a", "b", "c"} {
		_, err := s.queue.Enqueue("matching", []byte(payload))
		s.Require().NoError(err)
	}

	stats := s.queue.Stats()
	s.Equal(QueueRunning, stats.State)
	s.Equal(3, stats.Pending)
	s.Require().NotNil(stats.Current)
	s.Equal("matching", stats.Current.Kind)

	close(worker.hold)
	s.wait(worker.done, 4)

	s.Equal([]string{"hold", "a", "b", "c"}, worker.payloads)
	s.Require().Len(worker.starts, 4)
	for i := 1; i < len(worker.starts); i++ {
		s.True(worker.starts[i].After(worker.starts[i-1]))
		s.False(worker.starts[i].Before(worker.ends[i-1]))
	}
	s.Equal(int32(0), atomic.LoadInt32(&worker.overlaps))
}

func (s *QueueTestSuite) TestFaultsAreIsolated() {
	worker := newRecordingWorker()
	s.queue.Register("matching", worker)
	s.queue.Register("panic", funcWorker(func([]byte) error { panic("boom") }))
	s.queue.Register("fail", funcWorker(func([]byte) error { return errors.New("store unavailable") }))
	s.queue.Register("exit", funcWorker(func([]byte) error {
		runtime.Goexit()
		return nil
	}))

	for _, kind := range []string{"panic", "fail", "exit", "matching"} {
		_, err := s.queue.Enqueue(kind, []byte(kind))
		s.Require().NoError(err)
	}

	s.start()
	s.wait(worker.done, 1)

	s.Eventually(func() bool {
		stats := s.queue.Stats()
		return stats.Processed == 1 && stats.Failed == 3 && stats.State == QueueIdle
	}, 5*time.Second, 5*time.Millisecond)
	s.Equal([]string{"matching"}, worker.payloads)
}

func (s *QueueTestSuite) TestUnknownKind() {
	_, err := s.queue.Enqueue("settlement", nil)
	s.ErrorIs(err, ErrUnknownJob)
	s.Equal(0, s.queue.Len())
}

func (s *QueueTestSuite) TestStop() {
	s.queue.Register("matching", newRecordingWorker())
	s.start()

	s.cancel()
	<-s.exited
	s.cancel = nil

	_, err := s.queue.Enqueue("matching", nil)
	s.ErrorIs(err, ErrQueueStopped)
	s.Equal(QueueStopped, s.queue.Stats().State)
}

func TestQueue(t *testing.T) {
	suite.Run(t, new(QueueTestSuite))
}
