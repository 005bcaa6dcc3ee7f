package domain

import (
	"time"

	document "github.com/lumenwiki/platform/modules/document/domain"
)

// Event is one immutable entry of the event stream. Identity is the id.
type Event struct {
	ID       string
	Type     string
	Document document.DocumentReference
	Date     time.Time
	// Prefiltered marks an event whose target entities have already been
	// computed by the prefiltering pass.
	Prefiltered bool
	Payload     map[string]any
}

// EventStatus is the read/unread state of an event for one entity.
// Identity is (event id, entity).
type EventStatus struct {
	Event  *Event
	Entity string
	Read   bool
}

// EntityEvent is a mail-dispatch relation between an event and an entity.
// Identity is (event id, entity).
type EntityEvent struct {
	Event  *Event
	Entity string
}
