package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirillkom/hrdocs-compliance/internal/core/domain"
)

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func seed(t *testing.T, s *Store, id, companyID string, at time.Time) {
	t.Helper()
	rec := domain.NewDocumentRecord(id, companyID, "disciplinary", domain.KindPolicy, "v1", at)
	require.NoError(t, s.Create(context.Background(), &rec))
}

func TestStoreReviseBuildsHistory(t *testing.T) {
	s := NewStore()
	seed(t, s, "doc-1", "acme", base)

	for i := 2; i <= 4; i++ {
		rec, err := s.Revise(context.Background(), domain.DocumentRevision{
			CompanyID:  "acme",
			DocumentID: "doc-1",
			Content:    fmt.Sprintf("v%d", i),
			At:         base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
		assert.Equal(t, i, rec.Version)
	}

	got, err := s.GetByID(context.Background(), "acme", "doc-1")
	require.NoError(t, err)
	require.NoError(t, got.CheckHistory())
	assert.Equal(t, "v4", got.Content)
	require.Len(t, got.History, 3)
	assert.Equal(t, "v3", got.History[0].Content)
	assert.Equal(t, "v1", got.History[2].Content)
	assert.Equal(t, base, got.History[2].CreatedAt)
}

func TestStoreConcurrentRevisionsAreSerialized(t *testing.T) {
	const writers = 50
	s := NewStore()
	seed(t, s, "doc-1", "acme", base)

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Revise(context.Background(), domain.DocumentRevision{
				CompanyID:  "acme",
				DocumentID: "doc-1",
				Content:    fmt.Sprintf("writer-%d", i),
				At:         base.Add(time.Minute),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := s.GetByID(context.Background(), "acme", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, writers+1, got.Version)
	require.NoError(t, got.CheckHistory())
}

func TestStoreRejectsStaleExpectedVersion(t *testing.T) {
	s := NewStore()
	seed(t, s, "doc-1", "acme", base)

	_, err := s.Revise(context.Background(), domain.DocumentRevision{CompanyID: "acme", DocumentID: "doc-1", Content: "v2", ExpectedVersion: 1, At: base})
	require.NoError(t, err)

	_, err = s.Revise(context.Background(), domain.DocumentRevision{CompanyID: "acme", DocumentID: "doc-1", Content: "late", ExpectedVersion: 1, At: base})
	assert.True(t, domain.IsKind(err, domain.ErrVersionConflict), "got %v", err)

	got, err := s.GetByID(context.Background(), "acme", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Content)
}

func TestStoreIsolatesCompanies(t *testing.T) {
	s := NewStore()
	seed(t, s, "doc-1", "acme", base)

	_, err := s.GetByID(context.Background(), "globex", "doc-1")
	assert.True(t, domain.IsKind(err, domain.ErrDocumentNotFound))

	_, err = s.Revise(context.Background(), domain.DocumentRevision{CompanyID: "globex", DocumentID: "doc-1", Content: "x", At: base})
	assert.True(t, domain.IsKind(err, domain.ErrDocumentNotFound))

	list, err := s.ListByCompany(context.Background(), "globex")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStoreListsNewestFirst(t *testing.T) {
	s := NewStore()
	seed(t, s, "old", "acme", base)
	seed(t, s, "new", "acme", base.Add(time.Hour))

	list, err := s.ListByCompany(context.Background(), "acme")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "old", list[1].ID)
}

func TestStoreReturnsCopies(t *testing.T) {
	s := NewStore()
	seed(t, s, "doc-1", "acme", base)
	_, err := s.Revise(context.Background(), domain.DocumentRevision{CompanyID: "acme", DocumentID: "doc-1", Content: "v2", At: base})
	require.NoError(t, err)

	got, err := s.GetByID(context.Background(), "acme", "doc-1")
	require.NoError(t, err)
	got.History[0].Content = "tampered"

	again, err := s.GetByID(context.Background(), "acme", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "v1", again.History[0].Content)
}

func TestStoreProfiles(t *testing.T) {
	s := NewStore()

	_, err := s.GetProfile(context.Background(), "acme")
	assert.True(t, domain.IsKind(err, domain.ErrProfileNotFound))

	require.NoError(t, s.UpsertProfile(context.Background(), &domain.CompanyProfile{CompanyID: "acme", CompanyName: "Acme"}))
	require.NoError(t, s.UpsertProfile(context.Background(), &domain.CompanyProfile{CompanyID: "acme", CompanyName: "Acme Ltd", Industry: domain.IndustryRetail}))

	got, err := s.GetProfile(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", got.CompanyName)
	assert.Equal(t, domain.IndustryRetail, got.Industry)
}
