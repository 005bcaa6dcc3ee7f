package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	document "github.com/lumenwiki/platform/modules/document/domain"
	docevents "github.com/lumenwiki/platform/modules/document/domain/events"
	"github.com/lumenwiki/platform/modules/mentions/domain"
	"github.com/lumenwiki/platform/modules/mentions/infrastructure/queue"
	"github.com/lumenwiki/platform/pkg/eventbus"
	"github.com/lumenwiki/platform/pkg/logging"
)

func TestRegisterDocumentListeners(t *testing.T) {
	t.Parallel()

	bus := eventbus.NewEventPublisher(nil)
	consumer := newRecordingConsumer(nil)
	executor, err := NewMentionsEventExecutor(queue.NewMemoryQueue(16), consumer, ExecutorOptions{
		PoolSize:    1,
		PollTimeout: 20 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(executor.Dispose)

	unsubscribe := RegisterDocumentListeners(bus, executor, logging.NopLogger())

	doc := &document.Document{
		Ref:     document.DocumentReference{Wiki: "main", Space: "Space", Name: "Page"},
		Author:  document.UserReference{Wiki: "main", Name: "Author"},
		Version: "1.1",
	}
	bus.Publish(context.Background(), docevents.TopicDocumentCreated, doc)
	bus.Publish(context.Background(), docevents.TopicDocumentUpdated, doc)
	consumer.waitForCalls(t, 2)

	consumer.mu.Lock()
	require.Equal(t, []domain.MentionsJob{
		{
			DocumentReference: "main:Space.Page",
			AuthorReference:   "main:Author",
			Version:           "1.1",
			WikiID:            "main",
		},
		{
			DocumentReference: "main:Space.Page",
			AuthorReference:   "main:Author",
			Version:           "1.1",
			WikiID:            "main",
		},
	}, consumer.calls)
	consumer.mu.Unlock()

	// Non-document payloads are ignored.
	bus.Publish(context.Background(), docevents.TopicDocumentCreated, "garbage")

	unsubscribe()
	bus.Publish(context.Background(), docevents.TopicDocumentUpdated, doc)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 2, consumer.callCount())
}
