package persistence

import (
	"context"
	"sync"

	"github.com/lumenwiki/platform/modules/document/domain"
)

// MemoryRevisions keeps every saved revision of every document in memory.
// It implements domain.RevisionProvider for deployments and tests that do
// not plug an external document store.
type MemoryRevisions struct {
	mu        sync.RWMutex
	revisions map[domain.DocumentReference]map[string]*domain.Document
}

func NewMemoryRevisions() *MemoryRevisions {
	return &MemoryRevisions{
		revisions: map[domain.DocumentReference]map[string]*domain.Document{},
	}
}

// Save stores one revision, keyed by the document's reference and version.
func (s *MemoryRevisions) Save(doc *domain.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byVersion, ok := s.revisions[doc.Ref]
	if !ok {
		byVersion = map[string]*domain.Document{}
		s.revisions[doc.Ref] = byVersion
	}
	byVersion[doc.Version] = doc
}

func (s *MemoryRevisions) GetRevision(_ context.Context, ref domain.DocumentReference, version string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.revisions[ref][version]
	if !ok {
		return nil, nil
	}
	return doc, nil
}
