package ports

import (
	"context"
	"io"

	"github.com/kirillkom/hrdocs-compliance/internal/core/domain"
)

// ComplianceService computes roadmaps and scores on demand. Results are
// never cached.
type ComplianceService interface {
	Catalog() []domain.DocumentType
	Roadmap(ctx context.Context, companyID string) ([]domain.RoadmapItem, error)
	Status(ctx context.Context, companyID string) (domain.ComplianceStatus, error)
	Assessment(ctx context.Context, companyID string) (*domain.Assessment, error)
}

// DocumentService is the inbound contract for document records.
type DocumentService interface {
	Create(ctx context.Context, companyID string, typeID domain.DocumentTypeID, kind domain.DocumentKind, content string) (*domain.DocumentRecord, error)
	Save(ctx context.Context, companyID string, record domain.DocumentRecord) (*domain.DocumentRecord, error)
	Get(ctx context.Context, companyID, id string) (*domain.DocumentRecord, error)
	List(ctx context.Context, companyID string) ([]domain.DocumentRecord, error)
	Import(ctx context.Context, companyID string, typeID domain.DocumentTypeID, filename, mimeType string, body io.Reader) (*domain.DocumentRecord, error)
}

// ProfileService reads and updates company profiles.
type ProfileService interface {
	Get(ctx context.Context, companyID string) (*domain.CompanyProfile, error)
	Upsert(ctx context.Context, profile domain.CompanyProfile) (*domain.CompanyProfile, error)
}
