package services

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	document "github.com/lumenwiki/platform/modules/document/domain"
	"github.com/lumenwiki/platform/modules/mentions/domain"
	"github.com/lumenwiki/platform/pkg/composables"
	"github.com/lumenwiki/platform/pkg/eventbus"
	"github.com/lumenwiki/platform/pkg/logging"
)

// DataConsumer analyzes one document revision against its predecessor and
// publishes a notification per newly introduced mention. Comment objects
// only have their comment field analyzed; every other object contributes
// all of its large-text fields.
type DataConsumer struct {
	revisions document.RevisionProvider
	parser    document.TreeParser
	resolver  document.UserResolver
	bus       eventbus.EventBus
	log       *logrus.Entry
}

func NewDataConsumer(
	revisions document.RevisionProvider,
	parser document.TreeParser,
	resolver document.UserResolver,
	bus eventbus.EventBus,
	log *logrus.Entry,
) (*DataConsumer, error) {
	if revisions == nil {
		return nil, invalidExecutorConfig("revision provider is required")
	}
	if parser == nil {
		return nil, invalidExecutorConfig("tree parser is required")
	}
	if resolver == nil {
		return nil, invalidExecutorConfig("user resolver is required")
	}
	if bus == nil {
		return nil, invalidExecutorConfig("bus is required")
	}
	if log == nil {
		log = logging.NopLogger()
	}
	return &DataConsumer{
		revisions: revisions,
		parser:    parser,
		resolver:  resolver,
		bus:       bus,
		log:       log,
	}, nil
}

// Consume runs the analysis for one job. A missing revision drops the job;
// any returned error makes the executor requeue it once.
func (c *DataConsumer) Consume(ctx context.Context, job domain.MentionsJob) error {
	author := document.ParseUserReference(job.AuthorReference, job.WikiID)
	ctx = composables.WithUser(ctx, author.String())
	ctx = composables.WithAuthor(ctx, author.String())
	ctx = composables.WithWiki(ctx, job.WikiID)

	ref := document.ParseDocumentReference(job.DocumentReference, job.WikiID)
	doc, err := c.revisions.GetRevision(ctx, ref, job.Version)
	if err != nil {
		return errors.Wrapf(err, "fetch revision %s of %s", job.Version, ref)
	}
	if doc == nil {
		c.log.WithFields(logrus.Fields{
			"document": job.DocumentReference,
			"version":  job.Version,
		}).Debug("mentions: revision not found, dropping job")
		return nil
	}

	var old *document.Document
	if doc.PreviousVersion != "" {
		old, err = c.revisions.GetRevision(ctx, ref, doc.PreviousVersion)
		if err != nil {
			return errors.Wrapf(err, "fetch previous revision %s of %s", doc.PreviousVersion, ref)
		}
	}

	analysis := domain.Analysis{
		Author:   doc.Author,
		Document: doc.Ref,
		Wiki:     doc.Ref.Wiki,
		Resolver: c.resolver,
	}

	c.emit(ctx, analysis.NewMentions(bodyOf(old), doc.Body, domain.LocationDocument))
	c.analyzeObjects(ctx, analysis, old, doc)

	return nil
}

func bodyOf(doc *document.Document) *document.Tree {
	if doc == nil {
		return nil
	}
	return doc.Body
}

func (c *DataConsumer) analyzeObjects(ctx context.Context, analysis domain.Analysis, old, doc *document.Document) {
	for class, objects := range doc.Objects {
		var oldObjects []*document.Object
		if old != nil {
			oldObjects = old.Objects[class]
		}
		for _, object := range objects {
			if object == nil {
				continue
			}
			c.analyzeObject(ctx, analysis, matchByID(oldObjects, object.ID), object, doc.Syntax)
		}
	}
}

// matchByID finds the same object in the previous revision. Object ids are
// stable across revisions and are the matching key.
func matchByID(objects []*document.Object, id int64) *document.Object {
	for _, o := range objects {
		if o != nil && o.ID == id {
			return o
		}
	}
	return nil
}

func (c *DataConsumer) analyzeObject(
	ctx context.Context,
	analysis domain.Analysis,
	old, object *document.Object,
	syntax document.Syntax,
) {
	if object.Class == document.CommentsClass {
		field, ok := object.Field(document.CommentField)
		if !ok {
			return
		}
		location := domain.LocationComment
		if selection, ok := object.Field(document.SelectionField); ok && selection.Value != "" {
			location = domain.LocationAnnotation
		}
		c.analyzeField(ctx, analysis, old, field, location, syntax)
		return
	}

	for _, field := range object.Fields {
		if field.Large {
			c.analyzeField(ctx, analysis, old, field, domain.LocationFieldValue, syntax)
		}
	}
}

func (c *DataConsumer) analyzeField(
	ctx context.Context,
	analysis domain.Analysis,
	old *document.Object,
	field document.Field,
	location domain.MentionLocation,
	syntax document.Syntax,
) {
	newTree := c.parse(field.Value, syntax)
	if newTree == nil {
		return
	}

	var oldTree *document.Tree
	if old != nil {
		if oldField, ok := old.Field(field.Name); ok && oldField.Large {
			oldTree = c.parse(oldField.Value, syntax)
		}
	}

	c.emit(ctx, analysis.NewMentions(oldTree, newTree, location))
}

// parse turns a large-text value into a tree; invalid markup counts as an
// empty side.
func (c *DataConsumer) parse(content string, syntax document.Syntax) *document.Tree {
	tree, err := c.parser.Parse(content, syntax)
	if err != nil {
		c.log.WithError(err).Debug("mentions: unparseable field value, treating as empty")
		return nil
	}
	return tree
}

func (c *DataConsumer) emit(ctx context.Context, notifications []*domain.MentionNotification) {
	for _, n := range notifications {
		c.bus.Publish(ctx, domain.TopicNewMention, n)
		getMentionsMetrics().notificationsTotal.WithLabelValues(n.Location.String()).Inc()
	}
}
