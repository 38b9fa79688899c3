package ports

import (
	"context"
	"io"

	"github.com/kirillkom/hrdocs-compliance/internal/core/domain"
)

// DocumentRepository persists versioned document records. Revise is the
// single authoritative read-modify-write for an existing record.
type DocumentRepository interface {
	Create(ctx context.Context, record *domain.DocumentRecord) error
	Revise(ctx context.Context, rev domain.DocumentRevision) (*domain.DocumentRecord, error)
	GetByID(ctx context.Context, companyID, id string) (*domain.DocumentRecord, error)
	ListByCompany(ctx context.Context, companyID string) ([]domain.DocumentRecord, error)
}

// ProfileRepository persists company profiles.
type ProfileRepository interface {
	GetProfile(ctx context.Context, companyID string) (*domain.CompanyProfile, error)
	UpsertProfile(ctx context.Context, profile *domain.CompanyProfile) error
}

// ObjectStorage stores original uploaded files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// EventPublisher announces saved documents.
type EventPublisher interface {
	PublishDocumentSaved(ctx context.Context, event domain.DocumentSavedEvent) error
}

// EventSubscriber consumes saved-document announcements.
type EventSubscriber interface {
	SubscribeDocumentSaved(ctx context.Context, handler func(context.Context, domain.DocumentSavedEvent) error) error
}

// TextExtractor extracts plain text from an uploaded file.
type TextExtractor interface {
	Extract(ctx context.Context, mimeType string, data []byte) (string, error)
}

// RoadmapExporter renders a roadmap and its status into a downloadable file.
type RoadmapExporter interface {
	ContentType() string
	Export(ctx context.Context, w io.Writer, profile domain.CompanyProfile, items []domain.RoadmapItem, status domain.ComplianceStatus) error
}

// Retrier repeats an operation while retryable reports true.
type Retrier interface {
	Retry(ctx context.Context, operation string, fn func(context.Context) error, retryable func(error) bool) error
}
