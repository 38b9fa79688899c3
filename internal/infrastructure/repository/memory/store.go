// Package memory keeps document records and company profiles in process
// memory. It backs local runs and tests; data is lost on restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kirillkom/hrdocs-compliance/internal/core/domain"
)

type Store struct {
	mu        sync.RWMutex
	documents map[string]domain.DocumentRecord
	byCompany map[string][]string
	profiles  map[string]domain.CompanyProfile
}

func NewStore() *Store {
	return &Store{
		documents: make(map[string]domain.DocumentRecord),
		byCompany: make(map[string][]string),
		profiles:  make(map[string]domain.CompanyProfile),
	}
}

func (s *Store) Create(_ context.Context, record *domain.DocumentRecord) error {
	if record == nil || record.ID == "" || record.CompanyID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "create document", fmt.Errorf("record id and company id are required"))
	}
	if err := record.CheckHistory(); err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "create document", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.documents[record.ID]; exists {
		return domain.WrapError(domain.ErrInvalidInput, "create document", fmt.Errorf("document %s already exists", record.ID))
	}
	s.documents[record.ID] = record.Clone()
	s.byCompany[record.CompanyID] = append(s.byCompany[record.CompanyID], record.ID)
	return nil
}

// Revise applies one revision under the write lock, so concurrent saves to
// the same record are serialized and none is lost.
func (s *Store) Revise(_ context.Context, rev domain.DocumentRevision) (*domain.DocumentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.documents[rev.DocumentID]
	if !ok || current.CompanyID != rev.CompanyID {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "revise document", fmt.Errorf("id=%s", rev.DocumentID))
	}
	if rev.ExpectedVersion > 0 && rev.ExpectedVersion != current.Version {
		return nil, domain.WrapError(
			domain.ErrVersionConflict,
			"revise document",
			fmt.Errorf("id=%s expected version %d, current %d", rev.DocumentID, rev.ExpectedVersion, current.Version),
		)
	}

	next := current.Revise(rev.Content, rev.At)
	s.documents[next.ID] = next
	out := next.Clone()
	return &out, nil
}

func (s *Store) GetByID(_ context.Context, companyID, id string) (*domain.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.documents[id]
	if !ok || record.CompanyID != companyID {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id=%s", id))
	}
	out := record.Clone()
	return &out, nil
}

func (s *Store) ListByCompany(_ context.Context, companyID string) ([]domain.DocumentRecord, error) {
	s.mu.RLock()
	ids := s.byCompany[companyID]
	out := make([]domain.DocumentRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.documents[id].Clone())
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) GetProfile(_ context.Context, companyID string) (*domain.CompanyProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[companyID]
	if !ok {
		return nil, domain.WrapError(domain.ErrProfileNotFound, "get profile", fmt.Errorf("company_id=%s", companyID))
	}
	return &profile, nil
}

func (s *Store) UpsertProfile(_ context.Context, profile *domain.CompanyProfile) error {
	if profile == nil || profile.CompanyID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "upsert profile", fmt.Errorf("company id is required"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.CompanyID] = *profile
	return nil
}
