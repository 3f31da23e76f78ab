package model

import (
	"time"

	"github.com/google/uuid"
)

// ReferralStats are denormalized counters on a user. They are mutated only
// through the application state machine and the payment ledger, never
// directly by handlers.
type ReferralStats struct {
	TotalReferrals      int   `json:"total_referrals" db:"total_referrals"`
	SuccessfulReferrals int   `json:"successful_referrals" db:"successful_referrals"`
	TotalEarnings       int64 `json:"total_earnings" db:"total_earnings"`
	PendingEarnings     int64 `json:"pending_earnings" db:"pending_earnings"`
	PaidEarnings        int64 `json:"paid_earnings" db:"paid_earnings"`
}

// Consistent reports whether the earnings ledger balances. Must hold after
// every mutation.
func (s ReferralStats) Consistent() bool {
	return s.TotalEarnings == s.PendingEarnings+s.PaidEarnings &&
		s.TotalReferrals >= s.SuccessfulReferrals &&
		s.PendingEarnings >= 0 && s.PaidEarnings >= 0
}

type User struct {
	UserID        uuid.UUID     `json:"user_id" db:"user_id"`
	Name          string        `json:"name" db:"name"`
	Email         string        `json:"email" db:"email"`
	PasswordHash  string        `json:"-" db:"password_hash"`
	ReferralCode  string        `json:"referral_code" db:"referral_code"`
	ReferralStats ReferralStats `json:"referral_stats"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

type SignUpUserReq struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserRes struct {
	UserID       uuid.UUID `json:"user_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	ReferralCode string    `json:"referral_code"`
}

type LoginRes struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	ActorKind   ActorKind `json:"actor_kind"`
	ActorID     uuid.UUID `json:"actor_id"`
}

// Identity is the tagged result of the shared email lookup across the two
// account collections.
type Identity struct {
	Kind         ActorKind
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
}
