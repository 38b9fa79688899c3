package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kirillkom/hrdocs-compliance/internal/core/compliance"
	"github.com/kirillkom/hrdocs-compliance/internal/core/domain"
	"github.com/kirillkom/hrdocs-compliance/internal/infrastructure/repository/memory"
)

type failingDocsRepo struct {
	*memory.Store
	err error
}

func (r *failingDocsRepo) ListByCompany(context.Context, string) ([]domain.DocumentRecord, error) {
	return nil, r.err
}

func newComplianceFixture(t *testing.T) (*ComplianceUseCase, *memory.Store) {
	t.Helper()
	engine, err := compliance.DefaultEngine()
	if err != nil {
		t.Fatalf("load default engine: %v", err)
	}
	store := memory.NewStore()
	return NewComplianceUseCase(engine, store, store), store
}

func addDocument(t *testing.T, store *memory.Store, id, companyID string, typeID domain.DocumentTypeID) {
	t.Helper()
	rec := domain.NewDocumentRecord(id, companyID, typeID, domain.KindPolicy, "body", time.Now().UTC())
	if err := store.Create(context.Background(), &rec); err != nil {
		t.Fatalf("seed document: %v", err)
	}
}

func TestComplianceStatusReflectsCurrentDocuments(t *testing.T) {
	uc, store := newComplianceFixture(t)
	if err := store.UpsertProfile(context.Background(), &domain.CompanyProfile{
		CompanyID:   "acme",
		CompanyName: "Acme",
		Industry:    domain.IndustryTechnology,
		CompanySize: domain.CompanySizeSmall,
	}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	status, err := uc.Status(context.Background(), "acme")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Score != 0 || status.TotalMandatory != 9 {
		t.Fatalf("unexpected initial status: %+v", status)
	}

	addDocument(t, store, "d1", "acme", "confidentiality")
	addDocument(t, store, "d2", "acme", "data-protection-privacy")
	addDocument(t, store, "d3", "globex", "employment-contract")

	status, err = uc.Status(context.Background(), "acme")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.CompletedMandatory != 2 || status.Score != 22 {
		t.Fatalf("expected 2/9 -> 22, got %+v", status)
	}
	if status.NextRecommendation == nil || status.NextRecommendation.ID != "employment-contract" {
		t.Fatalf("unexpected next recommendation: %+v", status.NextRecommendation)
	}

	items, err := uc.Roadmap(context.Background(), "acme")
	if err != nil {
		t.Fatalf("roadmap: %v", err)
	}
	if items[0].ID != "employment-contract" || items[0].Status != domain.StatusMissing {
		t.Fatalf("unexpected first roadmap item: %+v", items[0])
	}
}

func TestComplianceRequiresCompanyName(t *testing.T) {
	uc, store := newComplianceFixture(t)

	_, err := uc.Status(context.Background(), "acme")
	if !domain.IsKind(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected profile not found, got %v", err)
	}

	if err := store.UpsertProfile(context.Background(), &domain.CompanyProfile{CompanyID: "acme", CompanyName: "  "}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	_, err = uc.Roadmap(context.Background(), "acme")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input without a company name, got %v", err)
	}
}

func TestCompliancePropagatesStoreErrors(t *testing.T) {
	engine, err := compliance.DefaultEngine()
	if err != nil {
		t.Fatalf("load default engine: %v", err)
	}
	store := memory.NewStore()
	if err := store.UpsertProfile(context.Background(), &domain.CompanyProfile{CompanyID: "acme", CompanyName: "Acme"}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	storeErr := domain.WrapError(domain.ErrTemporary, "list documents", errors.New("connection reset"))
	uc := NewComplianceUseCase(engine, store, &failingDocsRepo{Store: store, err: storeErr})

	_, err = uc.Status(context.Background(), "acme")
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
}

func TestComplianceRecomputeSkipsUnassessableCompanies(t *testing.T) {
	uc, store := newComplianceFixture(t)

	status, err := uc.Recompute(context.Background(), domain.DocumentSavedEvent{CompanyID: "ghost", DocumentID: "d1"})
	if err != nil || status != nil {
		t.Fatalf("expected skip for missing profile, got status=%v err=%v", status, err)
	}

	if err := store.UpsertProfile(context.Background(), &domain.CompanyProfile{CompanyID: "acme", CompanyName: "Acme"}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	addDocument(t, store, "d1", "acme", "employment-contract")
	status, err = uc.Recompute(context.Background(), domain.DocumentSavedEvent{CompanyID: "acme", DocumentID: "d1", Version: 1})
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if status == nil || status.CompletedMandatory != 1 || status.TotalMandatory != 7 || status.Score != 14 {
		t.Fatalf("unexpected status: %+v", status)
	}
}
