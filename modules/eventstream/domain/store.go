package domain

import (
	"context"

	"github.com/lumenwiki/platform/pkg/futures"
)

// EventStore accepts event-stream mutations and executes them
// asynchronously through a single writer. Each operation returns a one-shot
// future resolved when the mutation has been applied (or has failed).
// Delete futures resolve to nil when the target was absent.
type EventStore interface {
	SaveEvent(ctx context.Context, event *Event) *futures.Future[*Event]
	SaveEventStatus(ctx context.Context, status *EventStatus) *futures.Future[*EventStatus]
	SaveMailEntityEvent(ctx context.Context, relation *EntityEvent) *futures.Future[*EntityEvent]
	DeleteEvent(ctx context.Context, event *Event) *futures.Future[*Event]
	DeleteEventByID(ctx context.Context, id string) *futures.Future[*Event]
	DeleteEventStatus(ctx context.Context, status *EventStatus) *futures.Future[*EventStatus]
	DeleteMailEntityEvent(ctx context.Context, relation *EntityEvent) *futures.Future[*EntityEvent]
	PrefilterEvent(ctx context.Context, event *Event) *futures.Future[*Event]
}

// Backend is the synchronous persistence the asynchronous store serializes
// its mutations onto. The single writer guarantees these primitives are
// never called concurrently. Deletes return nil, nil when the target does
// not exist.
type Backend interface {
	SaveEvent(ctx context.Context, event *Event) (*Event, error)
	SaveEventStatus(ctx context.Context, status *EventStatus) (*EventStatus, error)
	SaveMailEntityEvent(ctx context.Context, relation *EntityEvent) (*EntityEvent, error)
	DeleteEvent(ctx context.Context, event *Event) (*Event, error)
	DeleteEventByID(ctx context.Context, id string) (*Event, error)
	DeleteEventStatus(ctx context.Context, status *EventStatus) (*EventStatus, error)
	DeleteMailEntityEvent(ctx context.Context, relation *EntityEvent) (*EntityEvent, error)
	PrefilterEvent(ctx context.Context, event *Event) (*Event, error)
}
