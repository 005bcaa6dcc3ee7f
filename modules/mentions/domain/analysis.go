package domain

import (
	document "github.com/lumenwiki/platform/modules/document/domain"
)

// MentionMacro is the macro name marking a user mention in a structured
// tree. Its reference parameter targets the user; the optional anchor
// parameter distinguishes multiple mentions of the same user.
const (
	MentionMacro          = "mention"
	MentionReferenceParam = "reference"
	MentionAnchorParam    = "anchor"
)

// ListMentionMacros returns the mention macro nodes of a tree in document
// order.
func ListMentionMacros(tree *document.Tree) []*document.Node {
	if tree == nil {
		return nil
	}
	return tree.Macros(MentionMacro)
}

// GroupAnchorsByUser resolves each mention's target user against the wiki
// and groups the anchors per user, preserving document order. Mentions
// without a reference parameter are ignored. The returned order lists users
// by first appearance.
func GroupAnchorsByUser(
	blocks []*document.Node,
	wiki string,
	resolver document.UserResolver,
) (map[document.UserReference][]string, []document.UserReference) {
	anchors := map[document.UserReference][]string{}
	var order []document.UserReference
	for _, block := range blocks {
		reference := block.Param(MentionReferenceParam)
		if reference == "" {
			continue
		}
		user := resolver.Resolve(reference, wiki)
		if _, seen := anchors[user]; !seen {
			order = append(order, user)
		}
		anchors[user] = append(anchors[user], block.Param(MentionAnchorParam))
	}
	return anchors, order
}

// NewAnchors computes which of a user's anchors are new relative to the old
// revision. Non-empty anchors are reported once each (duplicates collapse)
// when absent from the old side. Empty anchors form a single aggregate
// bucket: includeEmpty is true when the new side has strictly more empty
// anchors than the old side.
func NewAnchors(oldAnchors, newAnchors []string) (anchors []string, includeEmpty bool) {
	oldEmpty := 0
	oldSet := map[string]struct{}{}
	for _, a := range oldAnchors {
		if a == "" {
			oldEmpty++
			continue
		}
		oldSet[a] = struct{}{}
	}

	newEmpty := 0
	seen := map[string]struct{}{}
	for _, a := range newAnchors {
		if a == "" {
			newEmpty++
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		if _, existed := oldSet[a]; !existed {
			anchors = append(anchors, a)
		}
	}

	return anchors, newEmpty > oldEmpty
}

// Analysis carries the fixed inputs of one revision analysis: the author of
// the change, the analyzed document and the wiki mention references resolve
// against.
type Analysis struct {
	Author   document.UserReference
	Document document.DocumentReference
	Wiki     string
	Resolver document.UserResolver
}

// NewMentions diffs two structured trees and returns one notification per
// newly introduced mention. A nil old tree covers the creation case: every
// distinct anchor is new, plus one empty-anchor notification when any
// empty-anchor mention exists. Removals produce no output, and running the
// diff with identical trees yields nothing.
func (a Analysis) NewMentions(oldTree, newTree *document.Tree, location MentionLocation) []*MentionNotification {
	newBlocks := ListMentionMacros(newTree)
	if len(newBlocks) == 0 {
		return nil
	}

	newCounts, order := GroupAnchorsByUser(newBlocks, a.Wiki, a.Resolver)
	oldCounts, _ := GroupAnchorsByUser(ListMentionMacros(oldTree), a.Wiki, a.Resolver)

	var out []*MentionNotification
	for _, user := range order {
		anchors, includeEmpty := NewAnchors(oldCounts[user], newCounts[user])
		if includeEmpty {
			out = append(out, a.notification(user, "", location, newTree))
		}
		for _, anchor := range anchors {
			out = append(out, a.notification(user, anchor, location, newTree))
		}
	}
	return out
}

func (a Analysis) notification(
	target document.UserReference,
	anchor string,
	location MentionLocation,
	content *document.Tree,
) *MentionNotification {
	return &MentionNotification{
		Author:   a.Author,
		Document: a.Document,
		Target:   target,
		Location: location,
		AnchorID: anchor,
		Content:  content,
	}
}
