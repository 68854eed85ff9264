package summarizer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/RodolfoMedinaCS/LinkLensV4/internal/domain"
	"github.com/RodolfoMedinaCS/LinkLensV4/internal/metrics"
	"github.com/RodolfoMedinaCS/LinkLensV4/pkg/logger"
	"github.com/RodolfoMedinaCS/LinkLensV4/pkg/retry"
)

// Queue defaults.
const (
	defaultQueueSize  = 256
	defaultJobTimeout = 30 * time.Second
)

// StatusStore marks records failed when a dispatch job is lost.
type StatusStore interface {
	UpdateStatus(ctx context.Context, id, userID string, to domain.Status) error
}

// Job is one summarizer dispatch request.
type Job struct {
	LinkID      string
	UserID      string
	PageContent string
}

// Dispatcher runs summarizer dispatch jobs off the request path. Jobs are
// queued on a bounded channel and executed by a single worker with retry;
// a job that exhausts its retries marks the record failed. The HTTP
// response for the originating capture is never affected.
type Dispatcher struct {
	client     *Client
	store      StatusStore
	logger     logger.Logger
	metrics    *metrics.Metrics
	retryCfg   retry.Config
	jobTimeout time.Duration

	jobs chan Job
	wg   sync.WaitGroup
	once sync.Once
}

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	QueueSize  int
	JobTimeout time.Duration
	Retry      *retry.Config
}

// NewDispatcher creates a stopped Dispatcher. Call Start before enqueueing.
func NewDispatcher(client *Client, store StatusStore, log logger.Logger, m *metrics.Metrics, opts DispatcherOptions) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = defaultJobTimeout
	}
	retryCfg := retry.DefaultConfig()
	if opts.Retry != nil {
		retryCfg = *opts.Retry
	}

	return &Dispatcher{
		client:     client,
		store:      store,
		logger:     log,
		metrics:    m,
		retryCfg:   retryCfg,
		jobTimeout: opts.JobTimeout,
		jobs:       make(chan Job, opts.QueueSize),
	}
}

// Start launches the dispatch worker.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go d.worker()
}

// Stop closes the queue and waits for in-flight jobs to drain.
func (d *Dispatcher) Stop() {
	d.once.Do(func() { close(d.jobs) })
	d.wg.Wait()
}

// Enqueue hands a job to the worker without blocking. It reports false when
// the queue is full; the caller's record is then marked failed.
func (d *Dispatcher) Enqueue(job Job) bool {
	select {
	case d.jobs <- job:
		d.metrics.QueueDepth.Inc()
		return true
	default:
		d.metrics.DispatchesTotal.WithLabelValues(metrics.OutcomeDropped).Inc()
		d.logger.Warn("dispatch queue full, dropping job",
			logger.String("link_id", job.LinkID))
		d.markFailed(job)
		return false
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for job := range d.jobs {
		d.metrics.QueueDepth.Dec()
		d.process(job)
	}
}

func (d *Dispatcher) process(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.jobTimeout)
	defer cancel()

	err := retry.Do(ctx, d.retryCfg, func() error {
		return d.client.Process(ctx, job.LinkID, job.PageContent)
	})
	if err != nil {
		d.metrics.DispatchesTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		d.logger.Error("summarizer dispatch failed",
			logger.String("link_id", job.LinkID),
			logger.Error(err))
		d.markFailed(job)
		return
	}

	d.metrics.DispatchesTotal.WithLabelValues(metrics.OutcomeDispatched).Inc()
	d.logger.Debug("summarizer dispatch accepted",
		logger.String("link_id", job.LinkID))
}

// markFailed moves the record to failed after a lost dispatch. An update
// that matches no rows means the summarizer already advanced the record,
// which is fine.
func (d *Dispatcher) markFailed(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.jobTimeout)
	defer cancel()

	if err := d.store.UpdateStatus(ctx, job.LinkID, job.UserID, domain.StatusFailed); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return
		}
		d.logger.Error("failed to mark link failed after lost dispatch",
			logger.String("link_id", job.LinkID),
			logger.Error(err))
	}
}
