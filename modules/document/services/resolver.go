package services

import "github.com/lumenwiki/platform/modules/document/domain"

// DefaultUserResolver resolves serialized user references the way the rest
// of the platform serializes them: "wiki:Name", with the wiki part optional.
type DefaultUserResolver struct{}

func NewUserResolver() *DefaultUserResolver {
	return &DefaultUserResolver{}
}

func (r *DefaultUserResolver) Resolve(reference string, wiki string) domain.UserReference {
	return domain.ParseUserReference(reference, wiki)
}
