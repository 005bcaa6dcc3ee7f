package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lumenwiki/platform/modules/mentions/domain"
)

func TestMemoryQueue_PutThenPoll(t *testing.T) {
	t.Parallel()

	q := NewMemoryQueue(4)
	job := domain.MentionsJob{DocumentReference: "main:Space.Page", Version: "1.1", WikiID: "main"}
	require.NoError(t, q.Put(context.Background(), job))
	require.Equal(t, 1, q.Size())

	got, ok, err := q.Poll(context.Background(), time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, job, got)
	require.Zero(t, q.Size())
}

func TestMemoryQueue_PollTimesOutEmpty(t *testing.T) {
	t.Parallel()

	q := NewMemoryQueue(4)
	_, ok, err := q.Poll(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryQueue_PollHonorsContext(t *testing.T) {
	t.Parallel()

	q := NewMemoryQueue(4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok, err := q.Poll(ctx, time.Hour)
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, ok)
}

func TestMemoryQueue_PutBlocksWhenFull(t *testing.T) {
	t.Parallel()

	q := NewMemoryQueue(1)
	require.NoError(t, q.Put(context.Background(), domain.MentionsJob{Version: "1"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, q.Put(ctx, domain.MentionsJob{Version: "2"}), context.DeadlineExceeded)
}

func TestMemoryQueue_FIFO(t *testing.T) {
	t.Parallel()

	q := NewMemoryQueue(8)
	for _, v := range []string{"1", "2", "3"} {
		require.NoError(t, q.Put(context.Background(), domain.MentionsJob{Version: v}))
	}
	for _, want := range []string{"1", "2", "3"} {
		job, ok, err := q.Poll(context.Background(), time.Second)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, want, job.Version)
	}
}
