package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/PyNerdAlfaiz/referd-backend/pkg/model"
	"github.com/PyNerdAlfaiz/referd-backend/pkg/referralcode"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `
user_id, name, email, password_hash, referral_code,
total_referrals, successful_referrals, total_earnings, pending_earnings, paid_earnings,
created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.UserID, &u.Name, &u.Email, &u.PasswordHash, &u.ReferralCode,
		&u.ReferralStats.TotalReferrals, &u.ReferralStats.SuccessfulReferrals,
		&u.ReferralStats.TotalEarnings, &u.ReferralStats.PendingEarnings, &u.ReferralStats.PaidEarnings,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", model.ErrNotFound)
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// CreateUser inserts a new job seeker. The referral code is generated here,
// exactly once, and retried on the rare unique-index collision.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	if user.UserID == uuid.Nil {
		user.UserID = uuid.New()
	}
	const q = `
INSERT INTO users (user_id, name, email, password_hash, referral_code, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, now(), now())
`
	for attempt := 0; attempt < 3; attempt++ {
		code, err := referralcode.Generate(user.Name)
		if err != nil {
			return fmt.Errorf("generate referral code: %w", err)
		}
		_, err = r.db.Exec(ctx, q, user.UserID, user.Name, user.Email, user.PasswordHash, code)
		if err == nil {
			user.ReferralCode = code
			return nil
		}
		if isUniqueViolation(err, "users_referral_code_key") {
			continue
		}
		if isUniqueViolation(err, "users_email_key") {
			return fmt.Errorf("insert user: %w", model.ErrEmailTaken)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return fmt.Errorf("insert user: referral code collisions exhausted")
}

// GetUserByID returns a user with referral stats.
func (r *Repository) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	return scanUser(r.db.QueryRow(ctx, q, id))
}

// GetUserByReferralCode resolves a normalized (uppercase) code to its owner.
func (r *Repository) GetUserByReferralCode(ctx context.Context, code string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE referral_code = $1`
	return scanUser(r.db.QueryRow(ctx, q, code))
}

// FindIdentityByEmail looks up one email across both account collections and
// returns a tagged result, so login does not care which kind it hit.
func (r *Repository) FindIdentityByEmail(ctx context.Context, email string) (*model.Identity, error) {
	const q = `
SELECT 'user' AS kind, user_id AS id, name, email, password_hash FROM users WHERE email = $1
UNION ALL
SELECT 'company' AS kind, company_id AS id, name, email, password_hash FROM companies WHERE email = $1
LIMIT 1
`
	var ident model.Identity
	var kind string
	row := r.db.QueryRow(ctx, q, email)
	if err := row.Scan(&kind, &ident.ID, &ident.Name, &ident.Email, &ident.PasswordHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("identity: %w", model.ErrNotFound)
		}
		return nil, fmt.Errorf("scan identity: %w", err)
	}
	ident.Kind = model.ActorKind(kind)
	return &ident, nil
}
