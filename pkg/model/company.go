package model

import (
	"time"

	"github.com/google/uuid"
)

// CompanyStats are denormalized counters kept in step with job and
// application writes. ActiveJobs must always equal the count of the
// company's jobs in active status.
type CompanyStats struct {
	TotalJobsPosted    int `json:"total_jobs_posted" db:"total_jobs_posted"`
	ActiveJobs         int `json:"active_jobs" db:"active_jobs"`
	TotalApplications  int `json:"total_applications" db:"total_applications"`
	TotalHires         int `json:"total_hires" db:"total_hires"`
	TotalReferralsPaid int `json:"total_referrals_paid" db:"total_referrals_paid"`
}

type Company struct {
	CompanyID    uuid.UUID    `json:"company_id" db:"company_id"`
	Name         string       `json:"name" db:"name"`
	Email        string       `json:"email" db:"email"`
	PasswordHash string       `json:"-" db:"password_hash"`
	Description  string       `json:"description" db:"description"`
	Website      string       `json:"website" db:"website"`
	Stats        CompanyStats `json:"stats"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

type SignUpCompanyReq struct {
	Name        string `json:"name" binding:"required,min=2,max=150"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	Description string `json:"description"`
	Website     string `json:"website"`
}

type CompanyRes struct {
	CompanyID uuid.UUID    `json:"company_id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Stats     CompanyStats `json:"stats"`
}
