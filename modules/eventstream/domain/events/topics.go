// Package events declares the observation topics published by the event
// store after successful (or failed) mutations. Payloads are the mutated
// entities themselves; a failed task publishes its topic with a nil payload.
package events

const (
	TopicEventAdded           = "eventstream.event.added.v1"
	TopicEventDeleted         = "eventstream.event.deleted.v1"
	TopicStatusAddedOrUpdated = "eventstream.status.addedorupdated.v1"
	TopicStatusDeleted        = "eventstream.status.deleted.v1"
	TopicMailEntityAdded      = "eventstream.mailentity.added.v1"
	TopicMailEntityDeleted    = "eventstream.mailentity.deleted.v1"
)
