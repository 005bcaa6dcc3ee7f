package domain

// MentionLocation is the semantic region a mention was found in.
type MentionLocation int

const (
	LocationUndefined MentionLocation = iota
	// LocationDocument is the document body.
	LocationDocument
	// LocationFieldValue is a large-text field of a structured object.
	LocationFieldValue
	// LocationComment is the comment field of a comment object without a
	// text selection.
	LocationComment
	// LocationAnnotation is the comment field of a comment object carrying
	// a text selection.
	LocationAnnotation
)

func (l MentionLocation) String() string {
	switch l {
	case LocationDocument:
		return "document"
	case LocationFieldValue:
		return "field"
	case LocationComment:
		return "comment"
	case LocationAnnotation:
		return "annotation"
	default:
		return "undefined"
	}
}
