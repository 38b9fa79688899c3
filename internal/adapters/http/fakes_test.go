package httpadapter

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/kirillkom/hrdocs-compliance/internal/config"
	"github.com/kirillkom/hrdocs-compliance/internal/core/domain"
	"github.com/kirillkom/hrdocs-compliance/internal/core/ports"
)

var fixedTime = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

type complianceFake struct {
	err        error
	assessment domain.Assessment
}

func (f *complianceFake) Catalog() []domain.DocumentType {
	return []domain.DocumentType{
		{ID: "employment-contract", Title: "Employment Contract", Kind: domain.KindForm},
		{ID: "disciplinary", Title: "Disciplinary Policy", Kind: domain.KindPolicy},
	}
}

func (f *complianceFake) Roadmap(context.Context, string) ([]domain.RoadmapItem, error) {
	return f.assessment.Items, f.err
}

func (f *complianceFake) Status(context.Context, string) (domain.ComplianceStatus, error) {
	return f.assessment.Status, f.err
}

func (f *complianceFake) Assessment(_ context.Context, companyID string) (*domain.Assessment, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := f.assessment
	out.Profile.CompanyID = companyID
	return &out, nil
}

type documentsFake struct {
	err error

	savedCompany string
	saved        domain.DocumentRecord
	createNew    bool

	importType     domain.DocumentTypeID
	importFilename string
	importMime     string
	importBody     string
}

func (f *documentsFake) record(companyID, id string, typeID domain.DocumentTypeID, content string) *domain.DocumentRecord {
	rec := domain.NewDocumentRecord(id, companyID, typeID, domain.KindPolicy, content, fixedTime)
	return &rec
}

func (f *documentsFake) Create(_ context.Context, companyID string, typeID domain.DocumentTypeID, _ domain.DocumentKind, content string) (*domain.DocumentRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.record(companyID, "doc-new", typeID, content), nil
}

func (f *documentsFake) Save(_ context.Context, companyID string, record domain.DocumentRecord) (*domain.DocumentRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.savedCompany = companyID
	f.saved = record
	id := record.ID
	if f.createNew {
		id = "doc-new"
	}
	return f.record(companyID, id, record.TypeID, record.Content), nil
}

func (f *documentsFake) Get(_ context.Context, companyID, id string) (*domain.DocumentRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.record(companyID, id, "disciplinary", "body"), nil
}

func (f *documentsFake) List(_ context.Context, companyID string) ([]domain.DocumentRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []domain.DocumentRecord{*f.record(companyID, "doc-1", "disciplinary", "body")}, nil
}

func (f *documentsFake) Import(_ context.Context, companyID string, typeID domain.DocumentTypeID, filename, mimeType string, body io.Reader) (*domain.DocumentRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	f.importType = typeID
	f.importFilename = filename
	f.importMime = mimeType
	f.importBody = string(data)
	return f.record(companyID, "doc-imported", typeID, string(data)), nil
}

type profilesFake struct {
	err      error
	upserted domain.CompanyProfile
}

func (f *profilesFake) Get(_ context.Context, companyID string) (*domain.CompanyProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.CompanyProfile{CompanyID: companyID, CompanyName: "Acme"}, nil
}

func (f *profilesFake) Upsert(_ context.Context, profile domain.CompanyProfile) (*domain.CompanyProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.upserted = profile
	return &profile, nil
}

type exporterFake struct {
	profile domain.CompanyProfile
}

func (f *exporterFake) ContentType() string { return "application/test-sheet" }

func (f *exporterFake) Export(_ context.Context, w io.Writer, profile domain.CompanyProfile, items []domain.RoadmapItem, _ domain.ComplianceStatus) error {
	f.profile = profile
	_, err := fmt.Fprintf(w, "rows=%d", len(items))
	return err
}

type routerDeps struct {
	compliance *complianceFake
	documents  *documentsFake
	profiles   *profilesFake
	exporter   *exporterFake
}

func newTestRouter(cfg config.Config) (*Router, *routerDeps) {
	deps := &routerDeps{
		compliance: &complianceFake{assessment: domain.Assessment{
			Items: []domain.RoadmapItem{
				{ID: "employment-contract", Title: "Employment Contract", Kind: domain.KindForm, Priority: domain.PriorityCritical, Status: domain.StatusMissing},
			},
			Status: domain.ComplianceStatus{Score: 0, TotalMandatory: 1, MissingMandatory: []domain.DocumentTypeID{"employment-contract"}},
		}},
		documents: &documentsFake{},
		profiles:  &profilesFake{},
		exporter:  &exporterFake{},
	}
	var (
		cs ports.ComplianceService = deps.compliance
		ds ports.DocumentService   = deps.documents
		ps ports.ProfileService    = deps.profiles
	)
	return NewRouter(cfg, cs, ds, ps, deps.exporter), deps
}
