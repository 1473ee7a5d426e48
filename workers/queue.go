package workers

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/emirpasic/gods/lists/doublylinkedlist"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/zsmartex/powermatch/config"
	"github.com/zsmartex/powermatch/workers/engines"
)

var (
	ErrUnknownJob   = errors.New("unknown job kind")
	ErrQueueStopped = errors.New("queue stopped")
)

// Job is one unit of work waiting in, or taken from, the queue.
type Job struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Payload    []byte    `json:"-"`
	EnqueuedAt time.Time `json:"enqueued_at"`
	StartedAt  time.Time `json:"started_at,omitempty"`
}

type QueueState string

const (
	QueueIdle    QueueState = "idle"
	QueueRunning QueueState = "running"
	QueueStopped QueueState = "stopped"
)

// Stats is a point in time view of the queue.
type Stats struct {
	State     QueueState `json:"state"`
	Pending   int        `json:"pending"`
	Current   *Job       `json:"current,omitempty"`
	Processed uint64     `json:"processed"`
	Failed    uint64     `json:"failed"`
}

// Queue runs registered workers one job at a time in enqueue order. Every
// job that mutates the member tree goes through the same Queue so no two of
// them are ever in flight together. Pending jobs live in memory only and are
// dropped when the process exits.
type Queue struct {
	mu        sync.Mutex
	pending   *doublylinkedlist.List
	workers   map[string]engines.Worker
	current   *Job
	stopped   bool
	processed uint64
	failed    uint64

	wake   chan struct{}
	clock  clockwork.Clock
	logger *logrus.Entry
}

type QueueOption func(*Queue)

func WithQueueClock(clock clockwork.Clock) QueueOption {
	return func(q *Queue) { q.clock = clock }
}

func WithQueueLogger(logger *logrus.Entry) QueueOption {
	return func(q *Queue) { q.logger = logger }
}

func NewQueue(opts ...QueueOption) *Queue {
	queue := &Queue{
		pending: doublylinkedlist.New(),
		workers: make(map[string]engines.Worker),
		wake:    make(chan struct{}, 1),
		clock:   clockwork.NewRealClock(),
		logger:  config.Logger.WithField("component", "queue"),
	}

	for _, opt := range opts {
		opt(queue)
	}

	return queue
}

// Register binds a job kind to the worker that processes it. Workers are
// registered before Run starts.
func (q *Queue) Register(kind string, worker engines.Worker) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.workers[kind] = worker
}

// Enqueue appends a job and returns without waiting for it to run. The
// returned job only identifies the submission; its outcome is logged by the
// runner.
func (q *Queue) Enqueue(kind string, payload []byte) (*Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return nil, ErrQueueStopped
	}
	if _, ok := q.workers[kind]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, kind)
	}

	job := &Job{
		ID:         uuid.NewString(),
		Kind:       kind,
		Payload:    payload,
		EnqueuedAt: q.clock.Now(),
	}
	q.pending.Add(job)

	select {
	case q.wake <- struct{}{}:
	default:
	}

	q.logger.WithFields(logrus.Fields{"job_id": job.ID, "kind": kind}).Debug("job enqueued")

	return &Job{ID: job.ID, Kind: job.Kind, EnqueuedAt: job.EnqueuedAt}, nil
}

// Run is the dedicated runner loop. It returns once ctx is done and the job
// in flight, if any, has finished. Jobs still pending at that point are
// discarded.
func (q *Queue) Run(ctx context.Context) {
	q.logger.Info("queue runner started")

	for {
		if ctx.Err() != nil {
			q.stop()
			return
		}

		job, worker := q.next()
		if job == nil {
			select {
			case <-ctx.Done():
				q.stop()
				return
			case <-q.wake:
			}
			continue
		}

		err := q.process(worker, job)
		q.finish(job, err)
	}
}

func (q *Queue) next() (*Job, engines.Worker) {
	q.mu.Lock()
	defer q.mu.Unlock()

	value, ok := q.pending.Get(0)
	if !ok {
		return nil, nil
	}
	q.pending.Remove(0)

	job := value.(*Job)
	job.StartedAt = q.clock.Now()
	q.current = job

	return job, q.workers[job.Kind]
}

// process runs one job on its own goroutine so that a panic or a
// runtime.Goexit inside the worker ends only that job.
func (q *Queue) process(worker engines.Worker, job *Job) (err error) {
	if worker == nil {
		return fmt.Errorf("%w: %s", ErrUnknownJob, job.Kind)
	}

	done := make(chan error, 1)
	go func() {
		completed := false
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("job panicked: %v\n%s", r, debug.Stack())
				return
			}
			if !completed {
				done <- errors.New("job exited without returning")
			}
		}()

		err := worker.Process(job.Payload)
		completed = true
		done <- err
	}()

	return <-done
}

func (q *Queue) finish(job *Job, err error) {
	q.mu.Lock()
	q.current = nil
	if err != nil {
		q.failed++
	} else {
		q.processed++
	}
	q.mu.Unlock()

	fields := logrus.Fields{
		"job_id":   job.ID,
		"kind":     job.Kind,
		"duration": q.clock.Since(job.StartedAt).String(),
	}
	if err != nil {
		q.logger.WithFields(fields).Errorf("Worker error: %v", err)
		return
	}

	q.logger.WithFields(fields).Debug("job finished")
}

func (q *Queue) stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.stopped = true
	if dropped := q.pending.Size(); dropped > 0 {
		q.logger.WithField("dropped", dropped).Warn("queue stopped with pending jobs")
		q.pending.Clear()
	}
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.pending.Size()
}

func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()

	stats := Stats{
		State:     QueueIdle,
		Pending:   q.pending.Size(),
		Processed: q.processed,
		Failed:    q.failed,
	}

	switch {
	case q.stopped:
		stats.State = QueueStopped
	case q.current != nil:
		current := *q.current
		current.Payload = nil
		stats.State = QueueRunning
		stats.Current = &current
	}

	return stats
}
