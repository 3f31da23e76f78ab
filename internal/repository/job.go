package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PyNerdAlfaiz/referd-backend/pkg/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const jobColumns = `
job_id, company_id, title, description, job_type, work_type, experience_level, category,
referral_fee, referral_fee_currency, status, application_deadline, closed_date,
views, applications, referrals, referral_views, referral_applications,
created_at, updated_at`

func scanJob(row pgx.Row) (*model.Job, error) {
	var j model.Job
	err := row.Scan(
		&j.JobID, &j.CompanyID, &j.Title, &j.Description, &j.JobType, &j.WorkType,
		&j.ExperienceLevel, &j.Category, &j.ReferralFee, &j.ReferralFeeCurrency,
		&j.Status, &j.ApplicationDeadline, &j.ClosedDate,
		&j.Stats.Views, &j.Stats.Applications, &j.Stats.Referrals,
		&j.Stats.ReferralViews, &j.Stats.ReferralApplications,
		&j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("job: %w", model.ErrNotFound)
		}
		return nil, fmt.Errorf("scan job: %w", err)
	}
	return &j, nil
}

// CreateJob inserts the job and bumps the owning company's posting counters
// in the same transaction.
func (r *Repository) CreateJob(ctx context.Context, job *model.Job) error {
	if job.JobID == uuid.Nil {
		job.JobID = uuid.New()
	}
	return r.execTx(ctx, func(tx pgx.Tx) error {
		const q = `
INSERT INTO jobs (
	job_id, company_id, title, description, job_type, work_type, experience_level, category,
	referral_fee, referral_fee_currency, status, application_deadline, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
`
		_, err := tx.Exec(ctx, q,
			job.JobID, job.CompanyID, job.Title, job.Description, job.JobType, job.WorkType,
			job.ExperienceLevel, job.Category, job.ReferralFee, job.ReferralFeeCurrency,
			job.Status, job.ApplicationDeadline,
		)
		if err != nil {
			return fmt.Errorf("insert job: %w", err)
		}

		activeDelta := 0
		if job.Status == model.JobStatusActive {
			activeDelta = 1
		}
		const qc = `
UPDATE companies
SET total_jobs_posted = total_jobs_posted + 1,
    active_jobs = active_jobs + $2,
    updated_at = now()
WHERE company_id = $1
`
		tag, err := tx.Exec(ctx, qc, job.CompanyID, activeDelta)
		if err != nil {
			return fmt.Errorf("update company job counters: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("company: %w", model.ErrNotFound)
		}
		return nil
	})
}

func (r *Repository) GetJob(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	q := `SELECT ` + jobColumns + ` FROM jobs WHERE job_id = $1`
	return scanJob(r.db.QueryRow(ctx, q, id))
}

// UpdateJobStatusGuarded moves a job from one status to another and keeps
// the company's active_jobs counter in step, all in one transaction. The
// WHERE status = $from guard makes the second of two racing writers fail
// with ErrInvalidTransition instead of silently overwriting.
func (r *Repository) UpdateJobStatusGuarded(ctx context.Context, jobID uuid.UUID, from, to model.JobStatus, closedAt *time.Time) error {
	return r.execTx(ctx, func(tx pgx.Tx) error {
		const q = `
UPDATE jobs
SET status = $3, closed_date = COALESCE($4, closed_date), updated_at = now()
WHERE job_id = $1 AND status = $2
RETURNING company_id
`
		var companyID uuid.UUID
		if err := tx.QueryRow(ctx, q, jobID, from, to, closedAt).Scan(&companyID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("job status %s -> %s: %w", from, to, model.ErrInvalidTransition)
			}
			return fmt.Errorf("update job status: %w", err)
		}

		delta := 0
		if from == model.JobStatusActive && to != model.JobStatusActive {
			delta = -1
		} else if from != model.JobStatusActive && to == model.JobStatusActive {
			delta = 1
		}
		if delta == 0 {
			return nil
		}
		const qc = `
UPDATE companies SET active_jobs = active_jobs + $2, updated_at = now() WHERE company_id = $1
`
		if _, err := tx.Exec(ctx, qc, companyID, delta); err != nil {
			return fmt.Errorf("update company active_jobs: %w", err)
		}
		return nil
	})
}

// AddJobView atomically increments view counters; referral views are
// tracked separately when the job was reached through a referral link.
func (r *Repository) AddJobView(ctx context.Context, jobID uuid.UUID, viaReferral bool) error {
	refDelta := 0
	if viaReferral {
		refDelta = 1
	}
	const q = `
UPDATE jobs SET views = views + 1, referral_views = referral_views + $2 WHERE job_id = $1
`
	tag, err := r.db.Exec(ctx, q, jobID, refDelta)
	if err != nil {
		return fmt.Errorf("add job view: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job: %w", model.ErrNotFound)
	}
	return nil
}

// ListExpiredActiveJobs returns active jobs whose application deadline has
// passed, for the deadline sweep.
func (r *Repository) ListExpiredActiveJobs(ctx context.Context, now time.Time, limit int) ([]model.Job, error) {
	q := `SELECT ` + jobColumns + `
FROM jobs
WHERE status = 'active' AND application_deadline IS NOT NULL AND application_deadline < $1
ORDER BY application_deadline ASC
LIMIT $2`
	rows, err := r.db.Query(ctx, q, now, limit)
	if err != nil {
		return nil, fmt.Errorf("query expired jobs: %w", err)
	}
	defer rows.Close()

	out := make([]model.Job, 0, limit)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}
	return out, nil
}

// ListOpenJobs returns publicly visible active jobs.
func (r *Repository) ListOpenJobs(ctx context.Context, query model.ListJobsQuery) ([]model.Job, int, error) {
	args := []interface{}{}
	where := `WHERE status = 'active'`
	if query.Category != "" {
		where += fmt.Sprintf(" AND category = $%d", len(args)+1)
		args = append(args, query.Category)
	}

	var total int
	countQ := `SELECT COUNT(1) FROM jobs ` + where
	if err := r.db.QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count open jobs: %w", err)
	}

	q := `SELECT ` + jobColumns + ` FROM jobs ` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, query.Limit, query.Offset)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query open jobs: %w", err)
	}
	defer rows.Close()

	out := make([]model.Job, 0, query.Limit)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *j)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("rows error: %w", rows.Err())
	}
	return out, total, nil
}

// ListCompanyJobs returns a company's own jobs, all statuses.
func (r *Repository) ListCompanyJobs(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]model.Job, int, error) {
	var total int
	const countQ = `SELECT COUNT(1) FROM jobs WHERE company_id = $1`
	if err := r.db.QueryRow(ctx, countQ, companyID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count company jobs: %w", err)
	}

	q := `SELECT ` + jobColumns + ` FROM jobs WHERE company_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, q, companyID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query company jobs: %w", err)
	}
	defer rows.Close()

	out := make([]model.Job, 0, limit)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *j)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("rows error: %w", rows.Err())
	}
	return out, total, nil
}
