// Package worker applies queued feedback events to the bandit
// asynchronously.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/Ishita-2210/teamforge-recommender/internal/adapters/mq/queue"
	"github.com/Ishita-2210/teamforge-recommender/pkg/logger"
	"github.com/Ishita-2210/teamforge-recommender/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount    = 2
	workerShutdownTimeout = 5 * time.Second
)

// Updater applies one resolved reward to a user's arm.
type Updater interface {
	ApplyReward(ctx context.Context, userID int64, reward float64) error
}

// Queue defines how workers receive feedback events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Event
}

// Worker drains the feedback queue and applies rewards.
type Worker struct {
	queue   Queue
	updater Updater
	name    string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithName sets the worker name for logging.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWorker creates a worker with configuration options.
func NewWorker(q Queue, updater Updater, opts ...Option) *Worker {
	w := &Worker{
		queue:    q,
		updater:  updater,
		name:     "feedback-worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("feedback-worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run drains the queue until ctx is canceled, shutdown is signaled, or the
// queue closes.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := w.process(ctx, event); err != nil {
				w.logger.Error(ctx, "feedback processing failed", logger.Error(err))
			}
		}
	}
}

func (w *Worker) process(ctx context.Context, event queue.Event) error {
	if err := w.updater.ApplyReward(ctx, event.UserID, event.Reward); err != nil {
		metrics.RecordWorkerError()
		return fmt.Errorf("apply reward for user %d: %w", event.UserID, err)
	}
	metrics.RecordBanditUpdate()
	w.logger.Debug(ctx, "applied feedback",
		logger.String("id", event.ID),
		logger.Int64("user_id", event.UserID),
		logger.String("action", event.Action),
		logger.Float64("reward", event.Reward),
	)
	return nil
}

// Pool manages a set of workers draining the same queue.
type Pool struct {
	workers  []*Worker
	shutdown chan struct{}
}

// NewPool creates workerCount workers over the queue and updater.
func NewPool(workerCount int, q Queue, updater Updater) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
		if workerCount < defaultWorkerCount {
			workerCount = defaultWorkerCount
		}
	}
	p := &Pool{
		workers:  make([]*Worker, workerCount),
		shutdown: make(chan struct{}),
	}
	for i := range p.workers {
		w := NewWorker(q, updater, WithName("feedback-worker-"+strconv.Itoa(i)))
		// Pool workers share one shutdown signal.
		w.shutdown = p.shutdown
		p.workers[i] = w
	}
	return p
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop signals every worker to exit and waits for each, bounded per worker.
// The queue should be closed first so buffered events drain before the
// signal cuts the loop short.
func (p *Pool) Stop() {
	close(p.shutdown)
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
}
