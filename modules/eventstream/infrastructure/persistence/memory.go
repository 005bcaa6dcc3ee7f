package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lumenwiki/platform/modules/eventstream/domain"
)

type relationKey struct {
	eventID string
	entity  string
}

// MemoryBackend is the in-process event store backend. It is used by tests
// and by deployments that do not need durable events.
type MemoryBackend struct {
	mu        sync.RWMutex
	events    map[string]*domain.Event
	statuses  map[relationKey]*domain.EventStatus
	relations map[relationKey]*domain.EntityEvent
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		events:    map[string]*domain.Event{},
		statuses:  map[relationKey]*domain.EventStatus{},
		relations: map[relationKey]*domain.EntityEvent{},
	}
}

func (b *MemoryBackend) SaveEvent(_ context.Context, event *domain.Event) (*domain.Event, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	stored := *event
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Date.IsZero() {
		stored.Date = time.Now()
	}
	b.events[stored.ID] = &stored
	return &stored, nil
}

func (b *MemoryBackend) SaveEventStatus(_ context.Context, status *domain.EventStatus) (*domain.EventStatus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	stored := *status
	b.statuses[relationKey{status.Event.ID, status.Entity}] = &stored
	return &stored, nil
}

func (b *MemoryBackend) SaveMailEntityEvent(_ context.Context, relation *domain.EntityEvent) (*domain.EntityEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	stored := *relation
	b.relations[relationKey{relation.Event.ID, relation.Entity}] = &stored
	return &stored, nil
}

func (b *MemoryBackend) DeleteEvent(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	return b.DeleteEventByID(ctx, event.ID)
}

func (b *MemoryBackend) DeleteEventByID(_ context.Context, id string) (*domain.Event, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	stored, ok := b.events[id]
	if !ok {
		return nil, nil
	}
	delete(b.events, id)
	return stored, nil
}

func (b *MemoryBackend) DeleteEventStatus(_ context.Context, status *domain.EventStatus) (*domain.EventStatus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := relationKey{status.Event.ID, status.Entity}
	stored, ok := b.statuses[key]
	if !ok {
		return nil, nil
	}
	delete(b.statuses, key)
	return stored, nil
}

func (b *MemoryBackend) DeleteMailEntityEvent(_ context.Context, relation *domain.EntityEvent) (*domain.EntityEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := relationKey{relation.Event.ID, relation.Entity}
	stored, ok := b.relations[key]
	if !ok {
		return nil, nil
	}
	delete(b.relations, key)
	return stored, nil
}

func (b *MemoryBackend) PrefilterEvent(_ context.Context, event *domain.Event) (*domain.Event, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	stored, ok := b.events[event.ID]
	if !ok {
		copied := *event
		stored = &copied
		b.events[stored.ID] = stored
	}
	stored.Prefiltered = true
	return stored, nil
}

// GetEvent returns a stored event by id.
func (b *MemoryBackend) GetEvent(id string) (*domain.Event, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ev, ok := b.events[id]
	return ev, ok
}
