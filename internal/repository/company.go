package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/PyNerdAlfaiz/referd-backend/pkg/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const companyColumns = `
company_id, name, email, password_hash, description, website,
total_jobs_posted, active_jobs, total_applications, total_hires, total_referrals_paid,
created_at, updated_at`

func scanCompany(row pgx.Row) (*model.Company, error) {
	var c model.Company
	err := row.Scan(
		&c.CompanyID, &c.Name, &c.Email, &c.PasswordHash, &c.Description, &c.Website,
		&c.Stats.TotalJobsPosted, &c.Stats.ActiveJobs, &c.Stats.TotalApplications,
		&c.Stats.TotalHires, &c.Stats.TotalReferralsPaid,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("company: %w", model.ErrNotFound)
		}
		return nil, fmt.Errorf("scan company: %w", err)
	}
	return &c, nil
}

func (r *Repository) CreateCompany(ctx context.Context, company *model.Company) error {
	if company.CompanyID == uuid.Nil {
		company.CompanyID = uuid.New()
	}
	const q = `
INSERT INTO companies (company_id, name, email, password_hash, description, website, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now(), now())
`
	_, err := r.db.Exec(ctx, q, company.CompanyID, company.Name, company.Email,
		company.PasswordHash, company.Description, company.Website)
	if err != nil {
		if isUniqueViolation(err, "companies_email_key") {
			return fmt.Errorf("insert company: %w", model.ErrEmailTaken)
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

func (r *Repository) GetCompanyByID(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	q := `SELECT ` + companyColumns + ` FROM companies WHERE company_id = $1`
	return scanCompany(r.db.QueryRow(ctx, q, id))
}
