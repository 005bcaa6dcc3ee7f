package domain

import "context"

// Field is one property value of a structured object. Large fields hold
// markup parseable into a structured tree; plain fields are opaque text.
type Field struct {
	Name  string
	Value string
	Large bool
}

// Object is a structured object attached to a document. The id is stable
// across revisions and is the matching key when diffing two revisions.
type Object struct {
	ID     int64
	Class  ClassReference
	Fields []Field
}

func (o *Object) Field(name string) (Field, bool) {
	for _, f := range o.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Document is one revision of a wiki document: its body as a structured
// tree plus the structured objects grouped by class.
type Document struct {
	Ref             DocumentReference
	Author          UserReference
	Syntax          Syntax
	Version         string
	PreviousVersion string
	Body            *Tree
	Objects         map[ClassReference][]*Object
}

// RevisionProvider yields any stored revision of a document, nil when the
// revision does not exist.
type RevisionProvider interface {
	GetRevision(ctx context.Context, ref DocumentReference, version string) (*Document, error)
}

// TreeParser parses large-text markup into a structured tree. A non-nil
// error means the content is not valid markup; callers treat that as an
// empty tree.
type TreeParser interface {
	Parse(content string, syntax Syntax) (*Tree, error)
}

// UserResolver resolves a serialized user reference against a wiki.
type UserResolver interface {
	Resolve(reference string, wiki string) UserReference
}
