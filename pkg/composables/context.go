// Package composables exposes the ambient request identities carried on a
// context.Context and the snapshot mechanism used by the asynchronous
// pipelines to re-establish those identities on their worker goroutines.
package composables

import "context"

type contextKey string

const (
	userKey   contextKey = "user"
	authorKey contextKey = "author"
	wikiKey   contextKey = "wiki"
)

// StandardEntries is the set of identities captured by default when a task
// is submitted to an asynchronous pipeline.
var StandardEntries = []string{"user", "author", "wiki"}

// Snapshot is a small immutable copy of ambient identities. It is owned by
// the task it was captured for and only read by the worker dispatching it.
type Snapshot map[string]string

func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UseUser returns the acting user from the context. The second return value
// is false when no user is set.
func UseUser(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userKey).(string)
	return v, ok
}

func WithAuthor(ctx context.Context, author string) context.Context {
	return context.WithValue(ctx, authorKey, author)
}

func UseAuthor(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(authorKey).(string)
	return v, ok
}

func WithWiki(ctx context.Context, wiki string) context.Context {
	return context.WithValue(ctx, wikiKey, wiki)
}

func UseWiki(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(wikiKey).(string)
	return v, ok
}

func keyFor(entry string) (contextKey, bool) {
	switch entry {
	case "user":
		return userKey, true
	case "author":
		return authorKey, true
	case "wiki":
		return wikiKey, true
	default:
		return "", false
	}
}

// Save captures the requested entries from the context. Entries absent from
// the context are omitted from the snapshot.
func Save(ctx context.Context, entries []string) Snapshot {
	snap := Snapshot{}
	for _, entry := range entries {
		key, ok := keyFor(entry)
		if !ok {
			continue
		}
		if v, ok := ctx.Value(key).(string); ok {
			snap[entry] = v
		}
	}
	return snap
}

// Restore returns a context carrying the snapshot's identities on top of the
// given parent.
func Restore(ctx context.Context, snap Snapshot) context.Context {
	for entry, value := range snap {
		key, ok := keyFor(entry)
		if !ok {
			continue
		}
		ctx = context.WithValue(ctx, key, value)
	}
	return ctx
}
