// Package queue provides the bounded blocking queue behind the mentions
// pipeline. The queue is pluggable so deployments can trade the in-process
// default for a shared Redis list.
package queue

import (
	"context"
	"time"

	"github.com/lumenwiki/platform/modules/mentions/domain"
)

// BlockingQueue is a bounded MPMC job queue. Put blocks while the queue is
// full; Poll blocks up to the given timeout and reports whether a job was
// returned.
type BlockingQueue interface {
	Put(ctx context.Context, job domain.MentionsJob) error
	Poll(ctx context.Context, timeout time.Duration) (domain.MentionsJob, bool, error)
	Size() int
}

// MemoryQueue is the default channel-backed queue.
type MemoryQueue struct {
	ch chan domain.MentionsJob
}

func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = 1000
	}
	return &MemoryQueue{ch: make(chan domain.MentionsJob, capacity)}
}

func (q *MemoryQueue) Put(ctx context.Context, job domain.MentionsJob) error {
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Poll(ctx context.Context, timeout time.Duration) (domain.MentionsJob, bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case job := <-q.ch:
		return job, true, nil
	case <-timer.C:
		return domain.MentionsJob{}, false, nil
	case <-ctx.Done():
		return domain.MentionsJob{}, false, ctx.Err()
	}
}

func (q *MemoryQueue) Size() int {
	return len(q.ch)
}
