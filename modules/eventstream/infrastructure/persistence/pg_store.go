package persistence

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	document "github.com/lumenwiki/platform/modules/document/domain"
	"github.com/lumenwiki/platform/modules/eventstream/domain"
)

// PgBackend persists the event stream in Postgres. It is driven by the
// asynchronous store's single writer, so the primitives never run
// concurrently with each other.
type PgBackend struct {
	pool *pgxpool.Pool
}

func NewPgBackend(pool *pgxpool.Pool) (*PgBackend, error) {
	if pool == nil {
		return nil, errors.New("pg backend: pool is required")
	}
	return &PgBackend{pool: pool}, nil
}

func (b *PgBackend) SaveEvent(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	stored := *event
	payload, err := json.Marshal(stored.Payload)
	if err != nil {
		return nil, errors.Wrap(err, "event store: marshal payload")
	}

	q := `INSERT INTO events (id, type, document, date, prefiltered, payload)
	      VALUES ($1, $2, $3, $4, $5, $6)
	      ON CONFLICT (id) DO UPDATE
	         SET type = EXCLUDED.type,
	             document = EXCLUDED.document,
	             date = EXCLUDED.date,
	             prefiltered = EXCLUDED.prefiltered,
	             payload = EXCLUDED.payload`
	if _, err := b.pool.Exec(ctx, q,
		stored.ID, stored.Type, stored.Document.String(), stored.Date, stored.Prefiltered, payload,
	); err != nil {
		return nil, errors.Wrap(err, "event store: save event")
	}
	return &stored, nil
}

func (b *PgBackend) SaveEventStatus(ctx context.Context, status *domain.EventStatus) (*domain.EventStatus, error) {
	q := `INSERT INTO event_statuses (event_id, entity, read)
	      VALUES ($1, $2, $3)
	      ON CONFLICT (event_id, entity) DO UPDATE SET read = EXCLUDED.read`
	if _, err := b.pool.Exec(ctx, q, status.Event.ID, status.Entity, status.Read); err != nil {
		return nil, errors.Wrap(err, "event store: save status")
	}
	stored := *status
	return &stored, nil
}

func (b *PgBackend) SaveMailEntityEvent(ctx context.Context, relation *domain.EntityEvent) (*domain.EntityEvent, error) {
	q := `INSERT INTO entity_events (event_id, entity)
	      VALUES ($1, $2)
	      ON CONFLICT (event_id, entity) DO NOTHING`
	if _, err := b.pool.Exec(ctx, q, relation.Event.ID, relation.Entity); err != nil {
		return nil, errors.Wrap(err, "event store: save mail entity")
	}
	stored := *relation
	return &stored, nil
}

func (b *PgBackend) DeleteEvent(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	return b.DeleteEventByID(ctx, event.ID)
}

func (b *PgBackend) DeleteEventByID(ctx context.Context, id string) (*domain.Event, error) {
	q := `DELETE FROM events WHERE id = $1
	      RETURNING id, type, document, date, prefiltered, payload`
	row := b.pool.QueryRow(ctx, q, id)

	deleted, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "event store: delete event")
	}
	return deleted, nil
}

func (b *PgBackend) DeleteEventStatus(ctx context.Context, status *domain.EventStatus) (*domain.EventStatus, error) {
	q := `DELETE FROM event_statuses WHERE event_id = $1 AND entity = $2 RETURNING read`
	var read bool
	err := b.pool.QueryRow(ctx, q, status.Event.ID, status.Entity).Scan(&read)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "event store: delete status")
	}
	return &domain.EventStatus{Event: status.Event, Entity: status.Entity, Read: read}, nil
}

func (b *PgBackend) DeleteMailEntityEvent(ctx context.Context, relation *domain.EntityEvent) (*domain.EntityEvent, error) {
	q := `DELETE FROM entity_events WHERE event_id = $1 AND entity = $2 RETURNING entity`
	var entity string
	err := b.pool.QueryRow(ctx, q, relation.Event.ID, relation.Entity).Scan(&entity)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "event store: delete mail entity")
	}
	return &domain.EntityEvent{Event: relation.Event, Entity: entity}, nil
}

func (b *PgBackend) PrefilterEvent(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	q := `UPDATE events SET prefiltered = true WHERE id = $1
	      RETURNING id, type, document, date, prefiltered, payload`
	row := b.pool.QueryRow(ctx, q, event.ID)

	updated, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		stored := *event
		stored.Prefiltered = true
		return b.SaveEvent(ctx, &stored)
	}
	if err != nil {
		return nil, errors.Wrap(err, "event store: prefilter event")
	}
	return updated, nil
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var (
		ev      domain.Event
		docRef  string
		payload []byte
	)
	if err := row.Scan(&ev.ID, &ev.Type, &docRef, &ev.Date, &ev.Prefiltered, &payload); err != nil {
		return nil, err
	}
	ev.Document = document.ParseDocumentReference(docRef, "")
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &ev.Payload); err != nil {
			return nil, errors.Wrap(err, "unmarshal payload")
		}
	}
	return &ev, nil
}
