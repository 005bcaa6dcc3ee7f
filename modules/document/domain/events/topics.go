// Package events declares the observation topics published when documents
// change. Payloads are the saved *domain.Document revision.
package events

const (
	TopicDocumentCreated = "document.created.v1"
	TopicDocumentUpdated = "document.updated.v1"
)
