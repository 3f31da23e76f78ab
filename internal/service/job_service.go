package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PyNerdAlfaiz/referd-backend/pkg/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sweepBatch bounds how many expired jobs one sweep pass closes.
const sweepBatch = 100

type JobStore interface {
	GetJob(ctx context.Context, id uuid.UUID) (*model.Job, error)
	CreateJob(ctx context.Context, job *model.Job) error
	UpdateJobStatusGuarded(ctx context.Context, jobID uuid.UUID, from, to model.JobStatus, closedAt *time.Time) error
	ListExpiredActiveJobs(ctx context.Context, now time.Time, limit int) ([]model.Job, error)
}

// JobService owns job posting and the job status transition primitive.
// Both the status API and the deadline sweep go through UpdateStatus /
// closeOne, so the company's active_jobs counter has exactly one write
// path.
type JobService struct {
	store           JobStore
	defaultCurrency string
	logger          *zap.Logger
	now             func() time.Time
}

func NewJobService(store JobStore, defaultCurrency string, logger *zap.Logger) *JobService {
	return &JobService{store: store, defaultCurrency: defaultCurrency, logger: logger, now: time.Now}
}

// Create posts a new job for the company. Jobs start in draft unless
// explicitly posted active; the referral fee is fixed here and never
// updated afterwards.
func (s *JobService) Create(ctx context.Context, companyID uuid.UUID, req model.CreateJobReq) (*model.Job, error) {
	status := req.Status
	if status == "" {
		status = model.JobStatusDraft
	}
	if status != model.JobStatusDraft && status != model.JobStatusActive {
		return nil, fmt.Errorf("job cannot be created in status %q: %w", status, model.ErrInvalidTransition)
	}
	currency := req.ReferralFeeCurrency
	if currency == "" {
		currency = s.defaultCurrency
	}

	job := &model.Job{
		CompanyID:           companyID,
		Title:               req.Title,
		Description:         req.Description,
		JobType:             req.JobType,
		WorkType:            req.WorkType,
		ExperienceLevel:     req.ExperienceLevel,
		Category:            req.Category,
		ReferralFee:         req.ReferralFee,
		ReferralFeeCurrency: currency,
		Status:              status,
		ApplicationDeadline: req.ApplicationDeadline,
	}
	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// UpdateStatus moves a job through its lifecycle on behalf of the owning
// company.
func (s *JobService) UpdateStatus(ctx context.Context, jobID, companyID uuid.UUID, to model.JobStatus) (*model.Job, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.CompanyID != companyID {
		return nil, fmt.Errorf("job belongs to another company: %w", model.ErrUnauthorized)
	}
	if !model.CanTransitionJob(job.Status, to) {
		return nil, fmt.Errorf("job status %s -> %s: %w", job.Status, to, model.ErrInvalidTransition)
	}

	var closedAt *time.Time
	if to.Terminal() {
		now := s.now()
		closedAt = &now
	}
	if err := s.store.UpdateJobStatusGuarded(ctx, jobID, job.Status, to, closedAt); err != nil {
		return nil, err
	}
	job.Status = to
	job.ClosedDate = closedAt
	return job, nil
}

// CloseExpired transitions active jobs whose application deadline has
// passed to closed, through the same guarded primitive as an explicit
// status change. Returns how many jobs were closed.
func (s *JobService) CloseExpired(ctx context.Context) (int, error) {
	now := s.now()
	jobs, err := s.store.ListExpiredActiveJobs(ctx, now, sweepBatch)
	if err != nil {
		return 0, fmt.Errorf("list expired jobs: %w", err)
	}

	closed := 0
	for i := range jobs {
		job := &jobs[i]
		err := s.store.UpdateJobStatusGuarded(ctx, job.JobID, model.JobStatusActive, model.JobStatusClosed, &now)
		if err != nil {
			// A racing explicit status change got there first; the counter
			// was handled by whoever won.
			if errors.Is(err, model.ErrInvalidTransition) {
				continue
			}
			s.logger.Sugar().Errorw("deadline close failed", "job_id", job.JobID, "err", err)
			continue
		}
		closed++
	}
	return closed, nil
}
