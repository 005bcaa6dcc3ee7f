package domain

import (
	document "github.com/lumenwiki/platform/modules/document/domain"
)

// TopicNewMention is published once per newly introduced mention.
const TopicNewMention = "mentions.new.v1"

// MentionNotification is the payload published for one new mention.
type MentionNotification struct {
	Author   document.UserReference
	Document document.DocumentReference
	Target   document.UserReference
	Location MentionLocation
	AnchorID string
	// Content is the structured tree the mention was found in.
	Content *document.Tree
}
