package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lumenwiki/platform/modules/mentions/domain"
	"github.com/lumenwiki/platform/modules/mentions/infrastructure/queue"
	"github.com/lumenwiki/platform/pkg/logging"
	"github.com/lumenwiki/platform/pkg/serrors"
)

var ErrExecutorInvalidConfig = serrors.NewError("MENTIONS_INVALID_CONFIG", "invalid mentions executor configuration", "")

// Consumer is the per-job analysis invoked by the worker pool.
type Consumer interface {
	Consume(ctx context.Context, job domain.MentionsJob) error
}

type ExecutorOptions struct {
	// PoolSize is the number of worker goroutines.
	PoolSize int
	// PollTimeout bounds each queue poll so workers notice disposal.
	PollTimeout time.Duration

	Logger *logrus.Entry
}

func (o *ExecutorOptions) setDefaults() {
	if o.PoolSize == 0 {
		o.PoolSize = 4
	}
	if o.PollTimeout == 0 {
		o.PollTimeout = 10 * time.Second
	}
	if o.Logger == nil {
		o.Logger = logging.NopLogger()
	}
}

// MentionsEventExecutor queues document revisions for mention analysis and
// runs a fixed pool of workers over the queue. Failed jobs are requeued at
// the tail exactly once; a second failure drops the job.
type MentionsEventExecutor struct {
	queue    queue.BlockingQueue
	consumer Consumer
	opts     ExecutorOptions

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	requeued map[domain.MentionsJob]struct{}

	m *mentionsMetrics
}

func NewMentionsEventExecutor(q queue.BlockingQueue, consumer Consumer, opts ExecutorOptions) (*MentionsEventExecutor, error) {
	if q == nil {
		return nil, invalidExecutorConfig("queue is required")
	}
	if consumer == nil {
		return nil, invalidExecutorConfig("consumer is required")
	}
	opts.setDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	e := &MentionsEventExecutor{
		queue:    q,
		consumer: consumer,
		opts:     opts,
		cancel:   cancel,
		requeued: map[domain.MentionsJob]struct{}{},
		m:        getMentionsMetrics(),
	}

	for i := 0; i < opts.PoolSize; i++ {
		e.wg.Add(1)
		go e.worker(ctx)
	}

	return e, nil
}

// Submit enqueues one revision for analysis. It returns once the job is
// queued, blocking only under backpressure; there is no completion handle.
// A cancelled context while offering is logged and the job is lost.
func (e *MentionsEventExecutor) Submit(ctx context.Context, documentRef, authorRef, version, wikiID string) {
	job := domain.MentionsJob{
		DocumentReference: documentRef,
		AuthorReference:   authorRef,
		Version:           version,
		WikiID:            wikiID,
	}
	if err := e.queue.Put(ctx, job); err != nil {
		e.opts.Logger.WithError(err).WithFields(logrus.Fields{
			"document": documentRef,
			"version":  version,
		}).Warn("mentions: failed to enqueue analysis job")
		return
	}
	e.m.queueDepth.Set(float64(e.queue.Size()))
}

// QueueSize returns the current backlog depth.
func (e *MentionsEventExecutor) QueueSize() int {
	return e.queue.Size()
}

// Dispose stops the workers at their next poll boundary and waits for them.
func (e *MentionsEventExecutor) Dispose() {
	e.cancel()
	e.wg.Wait()
}

func (e *MentionsEventExecutor) worker(ctx context.Context) {
	defer e.wg.Done()

	for {
		job, ok, err := e.queue.Poll(ctx, e.opts.PollTimeout)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			e.opts.Logger.WithError(err).Warn("mentions: queue poll failed")
			continue
		}
		if !ok {
			continue
		}

		e.m.queueDepth.Set(float64(e.queue.Size()))
		e.consume(ctx, job)
	}
}

func (e *MentionsEventExecutor) consume(ctx context.Context, job domain.MentionsJob) {
	start := time.Now()
	err := e.consumer.Consume(ctx, job)
	e.m.analysisLatency.Observe(time.Since(start).Seconds())

	if err == nil {
		e.m.jobsTotal.WithLabelValues("success").Inc()
		e.forget(job)
		return
	}

	e.opts.Logger.WithError(err).WithFields(logrus.Fields{
		"document": job.DocumentReference,
		"version":  job.Version,
	}).Warn("mentions: analysis failed")

	if e.retryOnce(job) {
		e.m.jobsTotal.WithLabelValues("requeued").Inc()
		if err := e.queue.Put(ctx, job); err != nil {
			e.opts.Logger.WithError(err).Warn("mentions: failed to requeue job")
			e.forget(job)
		}
		return
	}

	e.m.jobsTotal.WithLabelValues("dropped").Inc()
	e.forget(job)
}

// retryOnce reports whether the job still has its requeue chance. Jobs
// compare by value, so a concurrent submission of the same tuple shares the
// single chance instead of multiplying it.
func (e *MentionsEventExecutor) retryOnce(job domain.MentionsJob) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, seen := e.requeued[job]; seen {
		return false
	}
	e.requeued[job] = struct{}{}
	return true
}

func (e *MentionsEventExecutor) forget(job domain.MentionsJob) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.requeued, job)
}
