package model

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusDraft  JobStatus = "draft"
	JobStatusActive JobStatus = "active"
	JobStatusPaused JobStatus = "paused"
	JobStatusClosed JobStatus = "closed"
	JobStatusFilled JobStatus = "filled"
)

// Terminal reports whether a job can never change status again.
func (s JobStatus) Terminal() bool {
	return s == JobStatusClosed || s == JobStatusFilled
}

// CanTransitionJob is the single source of truth for legal job status
// moves, shared by the status API and the deadline sweep.
func CanTransitionJob(from, to JobStatus) bool {
	if from == to || from.Terminal() {
		return false
	}
	switch from {
	case JobStatusDraft:
		return to == JobStatusActive
	case JobStatusActive:
		return to == JobStatusPaused || to == JobStatusClosed || to == JobStatusFilled
	case JobStatusPaused:
		return to == JobStatusActive || to == JobStatusClosed || to == JobStatusFilled
	default:
		return false
	}
}

// JobStats are per-job counters; applications >= referral_applications
// always.
type JobStats struct {
	Views                int `json:"views" db:"views"`
	Applications         int `json:"applications" db:"applications"`
	Referrals            int `json:"referrals" db:"referrals"`
	ReferralViews        int `json:"referral_views" db:"referral_views"`
	ReferralApplications int `json:"referral_applications" db:"referral_applications"`
}

type Job struct {
	JobID           uuid.UUID `json:"job_id" db:"job_id"`
	CompanyID       uuid.UUID `json:"company_id" db:"company_id"`
	Title           string    `json:"title" db:"title"`
	Description     string    `json:"description" db:"description"`
	JobType         string    `json:"job_type" db:"job_type"`
	WorkType        string    `json:"work_type" db:"work_type"`
	ExperienceLevel string    `json:"experience_level" db:"experience_level"`
	Category        string    `json:"category" db:"category"`

	// ReferralFee is fixed at posting time and immutable afterwards;
	// changing it once applications exist would corrupt payments already
	// computed from it.
	ReferralFee         int64  `json:"referral_fee" db:"referral_fee"`
	ReferralFeeCurrency string `json:"referral_fee_currency" db:"referral_fee_currency"`

	Status              JobStatus  `json:"status" db:"status"`
	ApplicationDeadline *time.Time `json:"application_deadline,omitempty" db:"application_deadline"`
	ClosedDate          *time.Time `json:"closed_date,omitempty" db:"closed_date"`
	Stats               JobStats   `json:"stats"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

// AcceptingApplications reports whether a submit against this job is
// allowed at the given instant.
func (j *Job) AcceptingApplications(now time.Time) bool {
	if j.Status != JobStatusActive {
		return false
	}
	if j.ApplicationDeadline != nil && now.After(*j.ApplicationDeadline) {
		return false
	}
	return true
}

type CreateJobReq struct {
	Title               string     `json:"title" binding:"required,min=3,max=200"`
	Description         string     `json:"description" binding:"required"`
	JobType             string     `json:"job_type" binding:"required"`
	WorkType            string     `json:"work_type"`
	ExperienceLevel     string     `json:"experience_level"`
	Category            string     `json:"category"`
	ReferralFee         int64      `json:"referral_fee" binding:"min=0"`
	ReferralFeeCurrency string     `json:"referral_fee_currency"`
	Status              JobStatus  `json:"status"`
	ApplicationDeadline *time.Time `json:"application_deadline"`
}

type UpdateJobStatusReq struct {
	Status JobStatus `json:"status" binding:"required"`
}

type ListJobsQuery struct {
	Limit    int    `json:"limit" form:"limit,default=20"`
	Offset   int    `json:"offset" form:"offset,default=0"`
	Category string `json:"category" form:"category"`
}
