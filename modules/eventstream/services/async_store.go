package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lumenwiki/platform/modules/eventstream/domain"
	"github.com/lumenwiki/platform/modules/eventstream/domain/events"
	"github.com/lumenwiki/platform/pkg/composables"
	"github.com/lumenwiki/platform/pkg/eventbus"
	"github.com/lumenwiki/platform/pkg/futures"
	"github.com/lumenwiki/platform/pkg/logging"
	"github.com/lumenwiki/platform/pkg/serrors"
)

var ErrStoreInvalidConfig = serrors.NewError("EVENT_STORE_INVALID_CONFIG", "invalid event store configuration", "")

type Options struct {
	// QueueSize bounds the task queue; submitters block when it is full.
	QueueSize int
	// NotifyEach publishes each task's observation right after the task is
	// processed, before the next task of the batch is dispatched.
	NotifyEach bool
	// NotifyAll defers all observations of a drain batch until the batch
	// exits. Ignored when NotifyEach is set. When neither is set the worker
	// only resolves completion handles.
	NotifyAll bool

	Logger *logrus.Entry
}

func (o *Options) setDefaults() {
	if o.QueueSize == 0 {
		o.QueueSize = 1000
	}
	if o.Logger == nil {
		o.Logger = logging.NopLogger()
	}
	if o.NotifyEach {
		o.NotifyAll = false
	}
}

// AsyncEventStore serializes concurrent event-stream mutations through a
// single worker goroutine. Submissions are queued with backpressure; each
// returns a future resolved exactly once, including on shutdown.
type AsyncEventStore struct {
	backend domain.Backend
	bus     eventbus.EventBus
	opts    Options

	queue    chan storeTask
	disposed atomic.Bool
	stopped  chan struct{}

	m *storeMetrics
}

func NewAsyncEventStore(backend domain.Backend, bus eventbus.EventBus, opts Options) (*AsyncEventStore, error) {
	if backend == nil {
		return nil, invalidStoreConfig("backend is required")
	}
	if bus == nil {
		return nil, invalidStoreConfig("bus is required")
	}
	opts.setDefaults()

	s := &AsyncEventStore{
		backend: backend,
		bus:     bus,
		opts:    opts,
		queue:   make(chan storeTask, opts.QueueSize),
		stopped: make(chan struct{}),
		m:       getStoreMetrics(),
	}

	go s.run()

	return s, nil
}

// storeTask is the sealed task variant drained by the worker.
type storeTask interface {
	kind() string
	execute(ctx context.Context, b domain.Backend) error
	fail(err error)
	snapshot() composables.Snapshot
	// resolve completes the task's completion handle without publishing.
	resolve()
	// notify resolves the completion handle and publishes the task's
	// observation topic. Resolution is a no-op for already-failed tasks;
	// the topic is still published, with a nil payload.
	notify(ctx context.Context, bus eventbus.EventBus)
}

type task[I, O any] struct {
	taskKind string
	topic    string
	input    I
	output   O
	snap     composables.Snapshot
	future   *futures.Future[O]
	run      func(ctx context.Context, b domain.Backend, input I) (O, error)
}

func (t *task[I, O]) kind() string { return t.taskKind }

func (t *task[I, O]) execute(ctx context.Context, b domain.Backend) error {
	out, err := t.run(ctx, b, t.input)
	if err != nil {
		return err
	}
	t.output = out
	return nil
}

func (t *task[I, O]) fail(err error) { t.future.Fail(err) }

func (t *task[I, O]) snapshot() composables.Snapshot { return t.snap }

func (t *task[I, O]) resolve() { t.future.Complete(t.output) }

func (t *task[I, O]) notify(ctx context.Context, bus eventbus.EventBus) {
	t.future.Complete(t.output)
	if t.topic != "" {
		bus.Publish(ctx, t.topic, t.output)
	}
}

// stopTask terminates the worker after the drain batch containing it.
type stopTask struct{}

func (*stopTask) kind() string                                  { return "stop" }
func (*stopTask) execute(context.Context, domain.Backend) error { return nil }
func (*stopTask) fail(error)                                    {}
func (*stopTask) snapshot() composables.Snapshot                { return nil }
func (*stopTask) resolve()                                      {}
func (*stopTask) notify(context.Context, eventbus.EventBus)     {}

func newStoreTask[I, O any](
	ctx context.Context,
	kind, topic string,
	input I,
	run func(ctx context.Context, b domain.Backend, input I) (O, error),
) *task[I, O] {
	return &task[I, O]{
		taskKind: kind,
		topic:    topic,
		input:    input,
		snap:     composables.Save(ctx, composables.StandardEntries),
		future:   futures.New[O](),
		run:      run,
	}
}

func (s *AsyncEventStore) SaveEvent(ctx context.Context, event *domain.Event) *futures.Future[*domain.Event] {
	t := newStoreTask(ctx, "save_event", events.TopicEventAdded, event,
		func(ctx context.Context, b domain.Backend, in *domain.Event) (*domain.Event, error) {
			return b.SaveEvent(ctx, in)
		})
	s.enqueue(ctx, t)
	return t.future
}

func (s *AsyncEventStore) SaveEventStatus(ctx context.Context, status *domain.EventStatus) *futures.Future[*domain.EventStatus] {
	t := newStoreTask(ctx, "save_status", events.TopicStatusAddedOrUpdated, status,
		func(ctx context.Context, b domain.Backend, in *domain.EventStatus) (*domain.EventStatus, error) {
			return b.SaveEventStatus(ctx, in)
		})
	s.enqueue(ctx, t)
	return t.future
}

func (s *AsyncEventStore) SaveMailEntityEvent(ctx context.Context, relation *domain.EntityEvent) *futures.Future[*domain.EntityEvent] {
	t := newStoreTask(ctx, "save_mail_entity", events.TopicMailEntityAdded, relation,
		func(ctx context.Context, b domain.Backend, in *domain.EntityEvent) (*domain.EntityEvent, error) {
			return b.SaveMailEntityEvent(ctx, in)
		})
	s.enqueue(ctx, t)
	return t.future
}

func (s *AsyncEventStore) DeleteEvent(ctx context.Context, event *domain.Event) *futures.Future[*domain.Event] {
	t := newStoreTask(ctx, "delete_event", events.TopicEventDeleted, event,
		func(ctx context.Context, b domain.Backend, in *domain.Event) (*domain.Event, error) {
			return b.DeleteEvent(ctx, in)
		})
	s.enqueue(ctx, t)
	return t.future
}

func (s *AsyncEventStore) DeleteEventByID(ctx context.Context, id string) *futures.Future[*domain.Event] {
	t := newStoreTask(ctx, "delete_event_by_id", events.TopicEventDeleted, id,
		func(ctx context.Context, b domain.Backend, in string) (*domain.Event, error) {
			return b.DeleteEventByID(ctx, in)
		})
	s.enqueue(ctx, t)
	return t.future
}

func (s *AsyncEventStore) DeleteEventStatus(ctx context.Context, status *domain.EventStatus) *futures.Future[*domain.EventStatus] {
	t := newStoreTask(ctx, "delete_status", events.TopicStatusDeleted, status,
		func(ctx context.Context, b domain.Backend, in *domain.EventStatus) (*domain.EventStatus, error) {
			return b.DeleteEventStatus(ctx, in)
		})
	s.enqueue(ctx, t)
	return t.future
}

func (s *AsyncEventStore) DeleteMailEntityEvent(ctx context.Context, relation *domain.EntityEvent) *futures.Future[*domain.EntityEvent] {
	t := newStoreTask(ctx, "delete_mail_entity", events.TopicMailEntityDeleted, relation,
		func(ctx context.Context, b domain.Backend, in *domain.EntityEvent) (*domain.EntityEvent, error) {
			return b.DeleteMailEntityEvent(ctx, in)
		})
	s.enqueue(ctx, t)
	return t.future
}

// PrefilterEvent marks an event as prefiltered. No observation topic is
// published for this operation.
func (s *AsyncEventStore) PrefilterEvent(ctx context.Context, event *domain.Event) *futures.Future[*domain.Event] {
	t := newStoreTask(ctx, "prefilter_event", "", event,
		func(ctx context.Context, b domain.Backend, in *domain.Event) (*domain.Event, error) {
			return b.PrefilterEvent(ctx, in)
		})
	s.enqueue(ctx, t)
	return t.future
}

// enqueue blocks while the queue is full. A cancelled context fails the
// task's completion handle instead of enqueueing.
func (s *AsyncEventStore) enqueue(ctx context.Context, t storeTask) {
	select {
	case s.queue <- t:
		s.m.queueDepth.Set(float64(len(s.queue)))
	case <-ctx.Done():
		t.fail(ctx.Err())
	}
}

func (s *AsyncEventStore) run() {
	defer close(s.stopped)
	for {
		first := <-s.queue
		if s.processBatch(first) {
			return
		}
	}
}

// processBatch drains every task present at drain time: the blocking take's
// task first, then non-blocking polls until the queue is transiently empty.
// Returns true when the batch contained a stop task.
func (s *AsyncEventStore) processBatch(first storeTask) (stopped bool) {
	base := context.Background()

	var tasks []storeTask
	defer func() {
		switch {
		case s.opts.NotifyEach:
		case s.opts.NotifyAll:
			for _, t := range tasks {
				s.notifyTask(base, t)
			}
		default:
			for _, t := range tasks {
				t.resolve()
			}
		}
	}()

	for t := first; ; {
		if _, isStop := t.(*stopTask); isStop {
			stopped = true
		} else {
			s.process(base, t)
		}
		tasks = append(tasks, t)

		select {
		case t = <-s.queue:
			continue
		default:
		}
		break
	}

	s.m.batchSize.Observe(float64(len(tasks)))
	s.m.queueDepth.Set(float64(len(s.queue)))

	return stopped
}

func (s *AsyncEventStore) process(base context.Context, t storeTask) {
	start := time.Now()
	result := "success"
	if err := t.execute(base, s.backend); err != nil {
		result = "failure"
		t.fail(err)
		s.opts.Logger.WithError(err).WithField("task", t.kind()).Debug("event store: task failed")
	}
	s.m.tasksTotal.WithLabelValues(t.kind(), result).Inc()
	s.m.taskLatency.WithLabelValues(t.kind()).Observe(time.Since(start).Seconds())

	if s.opts.NotifyEach {
		s.notifyTask(base, t)
	}
}

// notifyTask restores the task's context snapshot before resolving the
// future and publishing the observation, so listeners see the identities of
// the original submitter.
func (s *AsyncEventStore) notifyTask(base context.Context, t storeTask) {
	ctx := composables.Restore(base, t.snapshot())
	t.notify(ctx, s.bus)
}

// QueueSize returns the current backlog depth.
func (s *AsyncEventStore) QueueSize() int {
	return len(s.queue)
}

// Dispose enqueues a stop order and waits for the worker to finish the
// drain batch containing it. Pending submissions keep their completion and
// notification semantics. Callers must stop submitting before disposal.
func (s *AsyncEventStore) Dispose() {
	if !s.disposed.CompareAndSwap(false, true) {
		return
	}
	s.queue <- &stopTask{}
	<-s.stopped
}
