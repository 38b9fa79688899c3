package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kirillkom/hrdocs-compliance/internal/core/domain"
)

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetProfile(ctx context.Context, companyID string) (*domain.CompanyProfile, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT company_id, company_name, industry, company_size, address, website, summary, updated_at
FROM company_profiles
WHERE company_id = $1
`, companyID)

	var profile domain.CompanyProfile
	var industry, size string
	err := row.Scan(
		&profile.CompanyID,
		&profile.CompanyName,
		&industry,
		&size,
		&profile.Address,
		&profile.Website,
		&profile.Summary,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrProfileNotFound, "get profile", fmt.Errorf("company_id=%s", companyID))
		}
		return nil, classifyDBError("scan profile", err)
	}
	// Rows written before an enum value was retired read back as unset.
	profile.Industry, _ = domain.ParseIndustry(industry)
	profile.CompanySize, _ = domain.ParseCompanySize(size)
	return &profile, nil
}

func (r *ProfileRepository) UpsertProfile(ctx context.Context, profile *domain.CompanyProfile) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO company_profiles (
	company_id, company_name, industry, company_size, address, website, summary, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (company_id) DO UPDATE SET
	company_name = EXCLUDED.company_name,
	industry = EXCLUDED.industry,
	company_size = EXCLUDED.company_size,
	address = EXCLUDED.address,
	website = EXCLUDED.website,
	summary = EXCLUDED.summary,
	updated_at = EXCLUDED.updated_at
`,
		profile.CompanyID, profile.CompanyName, string(profile.Industry), string(profile.CompanySize),
		profile.Address, profile.Website, profile.Summary, profile.UpdatedAt,
	)
	if err != nil {
		return classifyDBError("upsert profile", err)
	}
	return nil
}
