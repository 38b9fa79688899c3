package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/hrdocs-compliance/internal/core/compliance"
	"github.com/kirillkom/hrdocs-compliance/internal/core/domain"
	"github.com/kirillkom/hrdocs-compliance/internal/core/ports"
)

var errCompanyNameRequired = errors.New("company name is required before an assessment can run")

type ComplianceUseCase struct {
	engine   *compliance.Engine
	profiles ports.ProfileRepository
	docs     ports.DocumentRepository
}

func NewComplianceUseCase(
	engine *compliance.Engine,
	profiles ports.ProfileRepository,
	docs ports.DocumentRepository,
) *ComplianceUseCase {
	return &ComplianceUseCase{
		engine:   engine,
		profiles: profiles,
		docs:     docs,
	}
}

func (uc *ComplianceUseCase) Catalog() []domain.DocumentType {
	return uc.engine.Catalog().Entries()
}

func (uc *ComplianceUseCase) Roadmap(ctx context.Context, companyID string) ([]domain.RoadmapItem, error) {
	assessment, err := uc.Assessment(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return assessment.Items, nil
}

func (uc *ComplianceUseCase) Status(ctx context.Context, companyID string) (domain.ComplianceStatus, error) {
	assessment, err := uc.Assessment(ctx, companyID)
	if err != nil {
		return domain.ComplianceStatus{}, err
	}
	return assessment.Status, nil
}

// Assessment reads the current profile and documents and evaluates them in
// one pass, so roadmap and status always agree.
func (uc *ComplianceUseCase) Assessment(ctx context.Context, companyID string) (*domain.Assessment, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "assess compliance", errCompanyIDRequired)
	}

	profile, err := uc.profiles.GetProfile(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("load company profile: %w", err)
	}
	if !profile.ReadyForAssessment() {
		return nil, domain.WrapError(domain.ErrInvalidInput, "assess compliance", errCompanyNameRequired)
	}

	records, err := uc.docs.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list company documents: %w", err)
	}

	eval := uc.engine.Evaluate(*profile, records)
	if len(eval.Unknown) > 0 {
		slog.Warn("roadmap_unknown_document_type",
			"company_id", companyID,
			"document_types", eval.Unknown,
		)
	}

	return &domain.Assessment{
		Profile: *profile,
		Items:   eval.Items,
		Status:  compliance.Score(eval.Items),
	}, nil
}

// Recompute refreshes the compliance status after a saved-document event.
// Companies that cannot be assessed yet are skipped without error.
func (uc *ComplianceUseCase) Recompute(ctx context.Context, event domain.DocumentSavedEvent) (*domain.ComplianceStatus, error) {
	assessment, err := uc.Assessment(ctx, event.CompanyID)
	switch {
	case err == nil:
	case domain.IsKind(err, domain.ErrProfileNotFound), domain.IsKind(err, domain.ErrInvalidInput):
		slog.Info("compliance_recompute_skipped",
			"company_id", event.CompanyID,
			"document_id", event.DocumentID,
			"reason", err.Error(),
		)
		return nil, nil
	default:
		return nil, err
	}

	status := assessment.Status
	slog.Info("compliance_recomputed",
		"company_id", event.CompanyID,
		"document_id", event.DocumentID,
		"document_type", event.TypeID,
		"version", event.Version,
		"score", status.Score,
		"missing_mandatory", len(status.MissingMandatory),
	)
	return &status, nil
}
