package domain

import (
	"fmt"
	"strings"
)

// DocumentReference identifies a document inside a wiki.
type DocumentReference struct {
	Wiki  string
	Space string
	Name  string
}

func (r DocumentReference) String() string {
	return fmt.Sprintf("%s:%s.%s", r.Wiki, r.Space, r.Name)
}

func (r DocumentReference) IsZero() bool {
	return r == DocumentReference{}
}

// ParseDocumentReference parses the serialized "wiki:Space.Name" form.
// A missing wiki part resolves against the given current wiki.
func ParseDocumentReference(s, currentWiki string) DocumentReference {
	wiki := currentWiki
	rest := s
	if i := strings.Index(s, ":"); i >= 0 {
		wiki = s[:i]
		rest = s[i+1:]
	}
	space := ""
	name := rest
	if i := strings.LastIndex(rest, "."); i >= 0 {
		space = rest[:i]
		name = rest[i+1:]
	}
	return DocumentReference{Wiki: wiki, Space: space, Name: name}
}

// UserReference identifies a user, always wiki-qualified.
type UserReference struct {
	Wiki string
	Name string
}

func (r UserReference) String() string {
	return fmt.Sprintf("%s:%s", r.Wiki, r.Name)
}

func (r UserReference) IsZero() bool {
	return r == UserReference{}
}

// ParseUserReference parses the serialized "wiki:Name" form, resolving a
// missing wiki part against the given current wiki.
func ParseUserReference(s, currentWiki string) UserReference {
	if i := strings.Index(s, ":"); i >= 0 {
		return UserReference{Wiki: s[:i], Name: s[i+1:]}
	}
	return UserReference{Wiki: currentWiki, Name: s}
}

// ClassReference identifies a structured-object class, local to a wiki.
type ClassReference struct {
	Space string
	Name  string
}

func (r ClassReference) String() string {
	return fmt.Sprintf("%s.%s", r.Space, r.Name)
}

// CommentsClass is the class of comment and annotation objects. An object of
// this class whose selection field is empty is a plain comment; a non-empty
// selection marks an annotation.
var CommentsClass = ClassReference{Space: "Platform", Name: "Comments"}

const (
	// CommentField holds the body of a comment object.
	CommentField = "comment"
	// SelectionField holds the annotated text range of a comment object.
	SelectionField = "selection"
)

// Syntax names the markup a document body or large-text field is written in.
type Syntax string

const SyntaxMarkup10 Syntax = "lumen/1.0"
