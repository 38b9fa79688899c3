package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kirillkom/hrdocs-compliance/internal/core/domain"
	"github.com/kirillkom/hrdocs-compliance/internal/core/ports"
)

var errCompanyIDRequired = errors.New("company id is required")

type ProfileUseCase struct {
	repo ports.ProfileRepository
	now  func() time.Time
}

func NewProfileUseCase(repo ports.ProfileRepository) *ProfileUseCase {
	return &ProfileUseCase{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (uc *ProfileUseCase) Get(ctx context.Context, companyID string) (*domain.CompanyProfile, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "get profile", errCompanyIDRequired)
	}
	return uc.repo.GetProfile(ctx, companyID)
}

// Upsert stores the profile. Industry and size values outside the closed
// enumerations are cleared rather than rejected.
func (uc *ProfileUseCase) Upsert(ctx context.Context, profile domain.CompanyProfile) (*domain.CompanyProfile, error) {
	profile.CompanyID = strings.TrimSpace(profile.CompanyID)
	if profile.CompanyID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upsert profile", errCompanyIDRequired)
	}

	profile.CompanyName = strings.TrimSpace(profile.CompanyName)
	profile.Industry, _ = domain.ParseIndustry(string(profile.Industry))
	profile.CompanySize, _ = domain.ParseCompanySize(string(profile.CompanySize))
	profile.Address = strings.TrimSpace(profile.Address)
	profile.Website = strings.TrimSpace(profile.Website)
	profile.Summary = strings.TrimSpace(profile.Summary)
	profile.UpdatedAt = uc.now()

	if err := uc.repo.UpsertProfile(ctx, &profile); err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return &profile, nil
}
