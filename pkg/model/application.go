package model

import (
	"time"

	"github.com/google/uuid"
)

type ApplicationStatus string

const (
	StatusPending      ApplicationStatus = "pending"
	StatusReviewing    ApplicationStatus = "reviewing"
	StatusShortlisted  ApplicationStatus = "shortlisted"
	StatusInterviewing ApplicationStatus = "interviewing"
	StatusOffered      ApplicationStatus = "offered"
	StatusHired        ApplicationStatus = "hired"
	StatusRejected     ApplicationStatus = "rejected"
	StatusWithdrawn    ApplicationStatus = "withdrawn"
)

// statusRank orders the forward chain. Terminal exits are handled
// separately.
var statusRank = map[ApplicationStatus]int{
	StatusPending:      0,
	StatusReviewing:    1,
	StatusShortlisted:  2,
	StatusInterviewing: 3,
	StatusOffered:      4,
	StatusHired:        5,
}

// Terminal reports whether no further transition is permitted.
func (s ApplicationStatus) Terminal() bool {
	return s == StatusHired || s == StatusRejected || s == StatusWithdrawn
}

func (s ApplicationStatus) Valid() bool {
	if _, ok := statusRank[s]; ok {
		return true
	}
	return s == StatusRejected || s == StatusWithdrawn
}

// CanTransition is the transition table of the application state machine.
// Forward moves go strictly down the chain (skipping intermediate steps is
// allowed); rejected exits any non-terminal state; withdrawn only from the
// early states.
func CanTransition(from, to ApplicationStatus) bool {
	if from.Terminal() {
		return false
	}
	switch to {
	case StatusRejected:
		return true
	case StatusWithdrawn:
		return from == StatusPending || from == StatusReviewing || from == StatusShortlisted
	default:
		fromRank, ok := statusRank[from]
		if !ok {
			return false
		}
		toRank, ok := statusRank[to]
		if !ok {
			return false
		}
		return toRank > fromRank
	}
}

// AllowedActor reports whether the actor kind may drive the given target
// status. Ownership of the job is checked by the service, not here.
func AllowedActor(kind ActorKind, to ApplicationStatus) bool {
	if to == StatusWithdrawn {
		return kind == ActorUser
	}
	return kind == ActorCompany
}

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentPaid       PaymentStatus = "paid"
	PaymentFailed     PaymentStatus = "failed"
)

// CanTransitionPayment guards the payout progression driven by the
// external gateway.
func CanTransitionPayment(from, to PaymentStatus) bool {
	switch from {
	case PaymentPending:
		return to == PaymentProcessing || to == PaymentFailed
	case PaymentProcessing:
		return to == PaymentPaid || to == PaymentFailed
	default:
		return false
	}
}

// ReferralPayment is the ledger record embedded on an application. The core
// only ever writes eligibility and the pending status; the gateway drives
// the rest.
type ReferralPayment struct {
	IsEligible       bool          `json:"is_eligible" db:"payment_eligible"`
	Amount           int64         `json:"amount" db:"payment_amount"`
	Currency         string        `json:"currency" db:"payment_currency"`
	Status           PaymentStatus `json:"status" db:"payment_status"`
	PaymentReference string        `json:"payment_reference,omitempty" db:"payment_reference"`
}

// StatusChange is one append-only entry in an application's history.
type StatusChange struct {
	Status    ApplicationStatus `json:"status"`
	Actor     Actor             `json:"actor"`
	Note      string            `json:"note,omitempty"`
	ChangedAt time.Time         `json:"changed_at"`
}

type Application struct {
	ApplicationID uuid.UUID `json:"application_id" db:"application_id"`
	JobID         uuid.UUID `json:"job_id" db:"job_id"`
	// CompanyID is a denormalized copy of the job's company, set at
	// creation; jobs are never reassigned between companies.
	CompanyID   uuid.UUID `json:"company_id" db:"company_id"`
	ApplicantID uuid.UUID `json:"applicant_id" db:"applicant_id"`

	// Referral attribution, frozen at submission time. ReferralCode keeps
	// the code string used even if the referrer's code later changes.
	ReferredBy   *uuid.UUID `json:"referred_by,omitempty" db:"referred_by"`
	ReferralCode *string    `json:"referral_code,omitempty" db:"referral_code"`
	IsReferral   bool       `json:"is_referral" db:"is_referral"`

	Status          ApplicationStatus `json:"status" db:"status"`
	StatusHistory   []StatusChange    `json:"status_history,omitempty"`
	ReferralPayment ReferralPayment   `json:"referral_payment"`
	CoverLetter     string            `json:"cover_letter,omitempty" db:"cover_letter"`
	Version         int               `json:"-" db:"version"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" db:"updated_at"`
}

type SubmitApplicationReq struct {
	ReferralCode string `json:"referral_code"`
	CoverLetter  string `json:"cover_letter"`
}

type TransitionApplicationReq struct {
	Status ApplicationStatus `json:"status" binding:"required"`
	Note   string            `json:"note"`
}

type WithdrawApplicationReq struct {
	Note string `json:"note"`
}

type UpdatePaymentStatusReq struct {
	Status PaymentStatus `json:"status" binding:"required"`
}
