package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/hrdocs-compliance/internal/core/compliance"
	"github.com/kirillkom/hrdocs-compliance/internal/core/domain"
	"github.com/kirillkom/hrdocs-compliance/internal/core/ports"
)

type DocumentUseCase struct {
	repo      ports.DocumentRepository
	catalog   *compliance.Catalog
	storage   ports.ObjectStorage
	extractor ports.TextExtractor
	publisher ports.EventPublisher
	retrier   ports.Retrier

	now   func() time.Time
	newID func() string
}

// DocumentDeps groups the optional collaborators. Import needs Storage and
// Extractor; a nil Publisher disables events and a nil Retrier disables
// optimistic-lock retries.
type DocumentDeps struct {
	Storage   ports.ObjectStorage
	Extractor ports.TextExtractor
	Publisher ports.EventPublisher
	Retrier   ports.Retrier
}

func NewDocumentUseCase(repo ports.DocumentRepository, catalog *compliance.Catalog, deps DocumentDeps) *DocumentUseCase {
	return &DocumentUseCase{
		repo:      repo,
		catalog:   catalog,
		storage:   deps.Storage,
		extractor: deps.Extractor,
		publisher: deps.Publisher,
		retrier:   deps.Retrier,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

func (uc *DocumentUseCase) Create(
	ctx context.Context,
	companyID string,
	typeID domain.DocumentTypeID,
	kind domain.DocumentKind,
	content string,
) (*domain.DocumentRecord, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create document", errCompanyIDRequired)
	}
	kind, err := uc.resolveKind(typeID, kind)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create document", err)
	}
	return uc.create(ctx, uc.newID(), companyID, typeID, kind, content)
}

func (uc *DocumentUseCase) create(
	ctx context.Context,
	id, companyID string,
	typeID domain.DocumentTypeID,
	kind domain.DocumentKind,
	content string,
) (*domain.DocumentRecord, error) {
	record := domain.NewDocumentRecord(id, companyID, typeID, kind, content, uc.now())
	if err := uc.repo.Create(ctx, &record); err != nil {
		return nil, fmt.Errorf("create document record: %w", err)
	}
	uc.announce(ctx, record)
	return &record, nil
}

// Save revises the record named by record.ID when the company owns it and
// creates a new record otherwise. A positive record.Version is the version the
// caller edited; if the store has moved past it the save fails with
// ErrVersionConflict instead of overwriting someone else's revision.
func (uc *DocumentUseCase) Save(ctx context.Context, companyID string, record domain.DocumentRecord) (*domain.DocumentRecord, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "save document", errCompanyIDRequired)
	}

	if id := strings.TrimSpace(record.ID); id != "" {
		existing, err := uc.repo.GetByID(ctx, companyID, id)
		switch {
		case err == nil:
			return uc.revise(ctx, companyID, existing.ID, record.Content, record.Version)
		case !domain.IsKind(err, domain.ErrDocumentNotFound):
			return nil, fmt.Errorf("load document record: %w", err)
		}
	}

	return uc.Create(ctx, companyID, record.TypeID, record.Kind, record.Content)
}

func (uc *DocumentUseCase) revise(ctx context.Context, companyID, id, content string, expectedVersion int) (*domain.DocumentRecord, error) {
	if expectedVersion < 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "save document", fmt.Errorf("negative version %d", expectedVersion))
	}

	var saved *domain.DocumentRecord
	call := func(ctx context.Context) error {
		rec, err := uc.repo.Revise(ctx, domain.DocumentRevision{
			CompanyID:       companyID,
			DocumentID:      id,
			Content:         content,
			ExpectedVersion: expectedVersion,
			At:              uc.now(),
		})
		if err != nil {
			return err
		}
		saved = rec
		return nil
	}

	var err error
	if uc.retrier != nil {
		// A stale caller version is final; only blind saves retry lost races.
		err = uc.retrier.Retry(ctx, "document.revise", call, func(err error) bool {
			return expectedVersion == 0 && domain.IsKind(err, domain.ErrVersionConflict)
		})
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("revise document record: %w", err)
	}

	uc.announce(ctx, *saved)
	return saved, nil
}

func (uc *DocumentUseCase) Get(ctx context.Context, companyID, id string) (*domain.DocumentRecord, error) {
	companyID = strings.TrimSpace(companyID)
	id = strings.TrimSpace(id)
	if companyID == "" || id == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "get document", errors.New("company id and document id are required"))
	}
	return uc.repo.GetByID(ctx, companyID, id)
}

func (uc *DocumentUseCase) List(ctx context.Context, companyID string) ([]domain.DocumentRecord, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "list documents", errCompanyIDRequired)
	}
	return uc.repo.ListByCompany(ctx, companyID)
}

// Import keeps the uploaded original in object storage and records its
// extracted text as a new document of the given type.
func (uc *DocumentUseCase) Import(
	ctx context.Context,
	companyID string,
	typeID domain.DocumentTypeID,
	filename, mimeType string,
	body io.Reader,
) (*domain.DocumentRecord, error) {
	if uc.storage == nil || uc.extractor == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "import document", errors.New("document import is not configured"))
	}
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "import document", errCompanyIDRequired)
	}
	kind, err := uc.resolveKind(typeID, "")
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "import document", err)
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(raw) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "import document", errors.New("uploaded file is empty"))
	}

	text, err := uc.extractor.Extract(ctx, mimeType, raw)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	id := uc.newID()
	key := fmt.Sprintf("%s/%s_%s", sanitizeFilename(companyID), id, sanitizeFilename(filename))
	if err := uc.storage.Save(ctx, key, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	slog.Info("document_imported",
		"company_id", companyID,
		"document_id", id,
		"document_type", typeID,
		"mime_type", mimeType,
		"storage_key", key,
		"bytes", len(raw),
	)
	return uc.create(ctx, id, companyID, typeID, kind, text)
}

func (uc *DocumentUseCase) resolveKind(typeID domain.DocumentTypeID, kind domain.DocumentKind) (domain.DocumentKind, error) {
	entry, ok := uc.catalog.Lookup(typeID)
	if !ok {
		return "", fmt.Errorf("unknown document type %q", typeID)
	}
	if kind == "" {
		return entry.Kind, nil
	}
	if kind != entry.Kind {
		return "", fmt.Errorf("document type %q is a %s, not a %s", typeID, entry.Kind, kind)
	}
	return kind, nil
}

func (uc *DocumentUseCase) announce(ctx context.Context, record domain.DocumentRecord) {
	slog.Info("document_saved",
		"company_id", record.CompanyID,
		"document_id", record.ID,
		"document_type", record.TypeID,
		"version", record.Version,
	)
	if uc.publisher == nil {
		return
	}

	event := domain.DocumentSavedEvent{
		CompanyID:  record.CompanyID,
		DocumentID: record.ID,
		TypeID:     record.TypeID,
		Version:    record.Version,
		SavedAt:    record.CreatedAt,
	}
	if err := uc.publisher.PublishDocumentSaved(ctx, event); err != nil {
		slog.Warn("document_saved_publish_failed",
			"company_id", record.CompanyID,
			"document_id", record.ID,
			"error", err,
		)
	}
}

func sanitizeFilename(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." || base == ".." {
		return "document.bin"
	}
	return base
}
