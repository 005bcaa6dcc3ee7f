package domain

// MentionsJob is one queued analysis request. References are kept in their
// serialized form so jobs survive JSON encoding and compare by value: the
// requeue path relies on tuple equality to recognize a job it already gave
// its second chance to.
type MentionsJob struct {
	DocumentReference string `json:"documentReference"`
	AuthorReference   string `json:"authorReference"`
	Version           string `json:"version"`
	WikiID            string `json:"wikiId"`
}
