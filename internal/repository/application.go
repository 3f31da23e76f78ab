package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/PyNerdAlfaiz/referd-backend/pkg/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const applicationColumns = `
application_id, job_id, company_id, applicant_id,
referred_by, referral_code, is_referral, status,
payment_eligible, payment_amount, payment_currency, payment_status, payment_reference,
cover_letter, version, created_at, updated_at`

func scanApplication(row pgx.Row) (*model.Application, error) {
	var a model.Application
	var paymentStatus *string
	err := row.Scan(
		&a.ApplicationID, &a.JobID, &a.CompanyID, &a.ApplicantID,
		&a.ReferredBy, &a.ReferralCode, &a.IsReferral, &a.Status,
		&a.ReferralPayment.IsEligible, &a.ReferralPayment.Amount,
		&a.ReferralPayment.Currency, &paymentStatus, &a.ReferralPayment.PaymentReference,
		&a.CoverLetter, &a.Version, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("application: %w", model.ErrNotFound)
		}
		return nil, fmt.Errorf("scan application: %w", err)
	}
	if paymentStatus != nil {
		a.ReferralPayment.Status = model.PaymentStatus(*paymentStatus)
	}
	return &a, nil
}

// CreateApplication creates the application in pending status together with
// every counter derived from it, as one atomic unit. The job counter update
// re-asserts active status, so a racing job close rolls the whole submit
// back with ErrJobNotAcceptingApplications.
func (r *Repository) CreateApplication(ctx context.Context, app *model.Application) error {
	if app.ApplicationID == uuid.Nil {
		app.ApplicationID = uuid.New()
	}
	return r.execTx(ctx, func(tx pgx.Tx) error {
		const q = `
INSERT INTO applications (
	application_id, job_id, company_id, applicant_id,
	referred_by, referral_code, is_referral, status, cover_letter,
	created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
`
		_, err := tx.Exec(ctx, q,
			app.ApplicationID, app.JobID, app.CompanyID, app.ApplicantID,
			app.ReferredBy, app.ReferralCode, app.IsReferral, app.Status, app.CoverLetter,
		)
		if err != nil {
			if isUniqueViolation(err, "applications_job_id_applicant_id_key") {
				return fmt.Errorf("insert application: %w", model.ErrDuplicateApplication)
			}
			return fmt.Errorf("insert application: %w", err)
		}

		refDelta := 0
		if app.IsReferral {
			refDelta = 1
		}
		const qj = `
UPDATE jobs
SET applications = applications + 1,
    referrals = referrals + $2,
    referral_applications = referral_applications + $2,
    updated_at = now()
WHERE job_id = $1 AND status = 'active'
`
		tag, err := tx.Exec(ctx, qj, app.JobID, refDelta)
		if err != nil {
			return fmt.Errorf("update job application counters: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("job closed during submit: %w", model.ErrJobNotAcceptingApplications)
		}

		const qc = `
UPDATE companies SET total_applications = total_applications + 1, updated_at = now() WHERE company_id = $1
`
		if _, err := tx.Exec(ctx, qc, app.CompanyID); err != nil {
			return fmt.Errorf("update company application counter: %w", err)
		}

		if app.IsReferral && app.ReferredBy != nil {
			const qu = `
UPDATE users SET total_referrals = total_referrals + 1, updated_at = now() WHERE user_id = $1
`
			if _, err := tx.Exec(ctx, qu, *app.ReferredBy); err != nil {
				return fmt.Errorf("update referrer total_referrals: %w", err)
			}
		}

		if len(app.StatusHistory) > 0 {
			if err := insertHistory(ctx, tx, app.ApplicationID, app.StatusHistory[0]); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertHistory(ctx context.Context, tx pgx.Tx, applicationID uuid.UUID, entry model.StatusChange) error {
	const q = `
INSERT INTO application_status_history (application_id, status, actor_kind, actor_id, note, changed_at)
VALUES ($1, $2, $3, $4, $5, $6)
`
	if _, err := tx.Exec(ctx, q, applicationID, entry.Status, entry.Actor.Kind, entry.Actor.ID, entry.Note, entry.ChangedAt); err != nil {
		return fmt.Errorf("insert status history: %w", err)
	}
	return nil
}

// GetApplication returns an application including its full status history.
func (r *Repository) GetApplication(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	q := `SELECT ` + applicationColumns + ` FROM applications WHERE application_id = $1`
	app, err := scanApplication(r.db.QueryRow(ctx, q, id))
	if err != nil {
		return nil, err
	}

	const hq = `
SELECT status, actor_kind, actor_id, note, changed_at
FROM application_status_history
WHERE application_id = $1
ORDER BY history_id ASC
`
	rows, err := r.db.Query(ctx, hq, id)
	if err != nil {
		return nil, fmt.Errorf("query status history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e model.StatusChange
		if err := rows.Scan(&e.Status, &e.Actor.Kind, &e.Actor.ID, &e.Note, &e.ChangedAt); err != nil {
			return nil, fmt.Errorf("scan status history: %w", err)
		}
		app.StatusHistory = append(app.StatusHistory, e)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}
	return app, nil
}

// TransitionStatus performs the guarded status move and appends the history
// entry in one transaction. A concurrent writer that got there first leaves
// zero rows for the guard, surfacing as ErrInvalidTransition.
func (r *Repository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.ApplicationStatus, entry model.StatusChange) error {
	return r.execTx(ctx, func(tx pgx.Tx) error {
		const q = `
UPDATE applications
SET status = $3, version = version + 1, updated_at = now()
WHERE application_id = $1 AND status = $2
`
		tag, err := tx.Exec(ctx, q, id, from, to)
		if err != nil {
			return fmt.Errorf("update application status: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("application status %s -> %s: %w", from, to, model.ErrInvalidTransition)
		}
		return insertHistory(ctx, tx, id, entry)
	})
}

// RecordHireStats bumps the hire counters that derive from a confirmed
// hire: the company's total and, for referred hires, the referrer's
// successful count.
func (r *Repository) RecordHireStats(ctx context.Context, companyID uuid.UUID, referrerID *uuid.UUID) error {
	return r.execTx(ctx, func(tx pgx.Tx) error {
		const qc = `
UPDATE companies SET total_hires = total_hires + 1, updated_at = now() WHERE company_id = $1
`
		if _, err := tx.Exec(ctx, qc, companyID); err != nil {
			return fmt.Errorf("update company total_hires: %w", err)
		}
		if referrerID != nil {
			const qu = `
UPDATE users SET successful_referrals = successful_referrals + 1, updated_at = now() WHERE user_id = $1
`
			if _, err := tx.Exec(ctx, qu, *referrerID); err != nil {
				return fmt.Errorf("update referrer successful_referrals: %w", err)
			}
		}
		return nil
	})
}

// ClaimEligiblePayment records payment eligibility exactly once per
// application. The conditional update is the idempotency guard: a second
// invocation claims nothing and increments nothing.
func (r *Repository) ClaimEligiblePayment(ctx context.Context, applicationID, referrerID uuid.UUID, amount int64, currency, reference string) (bool, error) {
	claimed := false
	err := r.execTx(ctx, func(tx pgx.Tx) error {
		const q = `
UPDATE applications
SET payment_eligible = true,
    payment_amount = $2,
    payment_currency = $3,
    payment_status = 'pending',
    payment_reference = $4,
    updated_at = now()
WHERE application_id = $1 AND payment_eligible = false
`
		tag, err := tx.Exec(ctx, q, applicationID, amount, currency, reference)
		if err != nil {
			return fmt.Errorf("claim payment: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		claimed = true

		// Earned means hire-confirmed, not cash-settled: total accrues now.
		const qu = `
UPDATE users
SET pending_earnings = pending_earnings + $2,
    total_earnings = total_earnings + $2,
    updated_at = now()
WHERE user_id = $1
`
		if _, err := tx.Exec(ctx, qu, referrerID, amount); err != nil {
			return fmt.Errorf("accrue referrer earnings: %w", err)
		}
		return nil
	})
	return claimed, err
}

// MarkPaymentIneligible flags an application whose payment could not be
// computed; the hire itself is unaffected.
func (r *Repository) MarkPaymentIneligible(ctx context.Context, applicationID uuid.UUID) error {
	const q = `
UPDATE applications SET payment_eligible = false, payment_status = 'failed', updated_at = now()
WHERE application_id = $1
`
	if _, err := r.db.Exec(ctx, q, applicationID); err != nil {
		return fmt.Errorf("mark payment ineligible: %w", err)
	}
	return nil
}

// UpdatePaymentStatusGuarded drives the non-settling payout steps
// (pending -> processing, -> failed).
func (r *Repository) UpdatePaymentStatusGuarded(ctx context.Context, applicationID uuid.UUID, from, to model.PaymentStatus) error {
	const q = `
UPDATE applications SET payment_status = $3, updated_at = now()
WHERE application_id = $1 AND payment_status = $2 AND payment_eligible = true
`
	tag, err := r.db.Exec(ctx, q, applicationID, from, to)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment status %s -> %s: %w", from, to, model.ErrInvalidTransition)
	}
	return nil
}

// SettlePayment completes a payout: payment goes to paid, the amount moves
// from the referrer's pending to paid earnings (total unchanged), and the
// company's paid-referral counter advances. One transaction keeps the
// earnings invariant intact at every observable point.
func (r *Repository) SettlePayment(ctx context.Context, applicationID, referrerID, companyID uuid.UUID, amount int64) error {
	return r.execTx(ctx, func(tx pgx.Tx) error {
		const q = `
UPDATE applications SET payment_status = 'paid', updated_at = now()
WHERE application_id = $1 AND payment_status = 'processing' AND payment_eligible = true
`
		tag, err := tx.Exec(ctx, q, applicationID)
		if err != nil {
			return fmt.Errorf("settle payment: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("payment settle: %w", model.ErrInvalidTransition)
		}

		const qu = `
UPDATE users
SET pending_earnings = pending_earnings - $2,
    paid_earnings = paid_earnings + $2,
    updated_at = now()
WHERE user_id = $1
`
		if _, err := tx.Exec(ctx, qu, referrerID, amount); err != nil {
			return fmt.Errorf("settle referrer earnings: %w", err)
		}

		const qc = `
UPDATE companies SET total_referrals_paid = total_referrals_paid + 1, updated_at = now() WHERE company_id = $1
`
		if _, err := tx.Exec(ctx, qc, companyID); err != nil {
			return fmt.Errorf("update company total_referrals_paid: %w", err)
		}
		return nil
	})
}

func (r *Repository) listApplications(ctx context.Context, where string, arg interface{}, limit, offset int) ([]model.Application, int, error) {
	var total int
	countQ := `SELECT COUNT(1) FROM applications ` + where
	if err := r.db.QueryRow(ctx, countQ, arg).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	q := `SELECT ` + applicationColumns + ` FROM applications ` + where +
		` ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, q, arg, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close()

	out := make([]model.Application, 0, limit)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *a)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("rows error: %w", rows.Err())
	}
	return out, total, nil
}

func (r *Repository) ListApplicationsByJob(ctx context.Context, jobID uuid.UUID, limit, offset int) ([]model.Application, int, error) {
	return r.listApplications(ctx, `WHERE job_id = $1`, jobID, limit, offset)
}

func (r *Repository) ListApplicationsByApplicant(ctx context.Context, applicantID uuid.UUID, limit, offset int) ([]model.Application, int, error) {
	return r.listApplications(ctx, `WHERE applicant_id = $1`, applicantID, limit, offset)
}

// ListReferralsByReferrer returns applications credited to a referrer.
func (r *Repository) ListReferralsByReferrer(ctx context.Context, referrerID uuid.UUID, limit, offset int) ([]model.Application, int, error) {
	return r.listApplications(ctx, `WHERE referred_by = $1`, referrerID, limit, offset)
}
