package services

import (
	"context"

	"github.com/sirupsen/logrus"

	document "github.com/lumenwiki/platform/modules/document/domain"
	docevents "github.com/lumenwiki/platform/modules/document/domain/events"
	"github.com/lumenwiki/platform/pkg/eventbus"
)

// RegisterDocumentListeners feeds every created or updated document
// revision into the mentions executor. Returns an unsubscribe function.
func RegisterDocumentListeners(bus eventbus.EventBus, executor *MentionsEventExecutor, log *logrus.Entry) func() {
	handler := func(ctx context.Context, payload any) {
		doc, ok := payload.(*document.Document)
		if !ok {
			log.Warnf("mentions: unexpected document event payload %T", payload)
			return
		}
		executor.Submit(ctx, doc.Ref.String(), doc.Author.String(), doc.Version, doc.Ref.Wiki)
	}

	unsubCreated := bus.Subscribe(docevents.TopicDocumentCreated, handler)
	unsubUpdated := bus.Subscribe(docevents.TopicDocumentUpdated, handler)

	return func() {
		unsubCreated()
		unsubUpdated()
	}
}
