package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PyNerdAlfaiz/referd-backend/internal/notify"
	"github.com/PyNerdAlfaiz/referd-backend/pkg/model"
	"github.com/PyNerdAlfaiz/referd-backend/pkg/referralcode"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ApplicationStore is the storage contract the state machine relies on.
// CreateApplication and TransitionStatus are atomic units: the primary row
// change and every counter derived from it commit or roll back together.
type ApplicationStore interface {
	GetApplication(ctx context.Context, id uuid.UUID) (*model.Application, error)
	CreateApplication(ctx context.Context, app *model.Application) error
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.ApplicationStatus, entry model.StatusChange) error
	RecordHireStats(ctx context.Context, companyID uuid.UUID, referrerID *uuid.UUID) error
}

type JobGetter interface {
	GetJob(ctx context.Context, id uuid.UUID) (*model.Job, error)
}

type ReferrerLookup interface {
	GetUserByReferralCode(ctx context.Context, code string) (*model.User, error)
}

type PaymentRecorder interface {
	RecordEligiblePayment(ctx context.Context, app *model.Application) error
}

// ApplicationService owns the application lifecycle: submission with
// referral attribution, and status transitions with their side effects.
type ApplicationService struct {
	apps     ApplicationStore
	jobs     JobGetter
	users    ReferrerLookup
	payments PaymentRecorder
	notifier notify.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewApplicationService(apps ApplicationStore, jobs JobGetter, users ReferrerLookup, payments PaymentRecorder, notifier notify.Notifier, logger *zap.Logger) *ApplicationService {
	return &ApplicationService{
		apps:     apps,
		jobs:     jobs,
		users:    users,
		payments: payments,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit creates a new application in pending status. Validation happens
// before any mutation; the store then commits the application and all
// derived counters as one unit.
func (s *ApplicationService) Submit(ctx context.Context, jobID, applicantID uuid.UUID, req model.SubmitApplicationReq) (*model.Application, error) {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.AcceptingApplications(s.now()) {
		return nil, fmt.Errorf("job %s: %w", jobID, model.ErrJobNotAcceptingApplications)
	}

	referredBy, isReferral, code := s.resolveReferral(ctx, applicantID, req.ReferralCode)

	app := &model.Application{
		JobID:        jobID,
		CompanyID:    job.CompanyID,
		ApplicantID:  applicantID,
		ReferredBy:   referredBy,
		ReferralCode: code,
		IsReferral:   isReferral,
		Status:       model.StatusPending,
		CoverLetter:  req.CoverLetter,
		StatusHistory: []model.StatusChange{{
			Status:    model.StatusPending,
			Actor:     model.UserActor(applicantID),
			ChangedAt: s.now(),
		}},
	}
	if err := s.apps.CreateApplication(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// resolveReferral decides whether the submission counts as a referral.
// Unknown codes and self-referrals are silently treated as absent; only the
// submission itself can fail an application. The result is frozen onto the
// application and never revisited.
func (s *ApplicationService) resolveReferral(ctx context.Context, applicantID uuid.UUID, rawCode string) (*uuid.UUID, bool, *string) {
	if strings.TrimSpace(rawCode) == "" {
		return nil, false, nil
	}
	code := referralcode.Normalize(rawCode)
	referrer, err := s.users.GetUserByReferralCode(ctx, code)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			s.logger.Sugar().Warnw("referral lookup failed, treating as non-referral", "code", code, "err", err)
		}
		return nil, false, nil
	}
	if referrer.UserID == applicantID {
		// A user cannot refer themselves.
		return nil, false, nil
	}
	return &referrer.UserID, true, &code
}

// Transition drives the application state machine. Authorization and
// legality are checked before any write; hired side effects run after the
// status commit and never roll it back.
func (s *ApplicationService) Transition(ctx context.Context, applicationID uuid.UUID, to model.ApplicationStatus, actor model.Actor, note string) (*model.Application, error) {
	if !to.Valid() || to == model.StatusPending {
		return nil, fmt.Errorf("unknown target status %q: %w", to, model.ErrInvalidTransition)
	}

	app, err := s.apps.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	if !model.AllowedActor(actor.Kind, to) {
		return nil, fmt.Errorf("%s actor cannot set status %s: %w", actor.Kind, to, model.ErrUnauthorized)
	}
	switch actor.Kind {
	case model.ActorCompany:
		if app.CompanyID != actor.ID {
			return nil, fmt.Errorf("application belongs to another company: %w", model.ErrUnauthorized)
		}
	case model.ActorUser:
		if app.ApplicantID != actor.ID {
			return nil, fmt.Errorf("application belongs to another applicant: %w", model.ErrUnauthorized)
		}
	default:
		return nil, fmt.Errorf("unknown actor kind %q: %w", actor.Kind, model.ErrUnauthorized)
	}

	if !model.CanTransition(app.Status, to) {
		return nil, fmt.Errorf("application status %s -> %s: %w", app.Status, to, model.ErrInvalidTransition)
	}

	entry := model.StatusChange{Status: to, Actor: actor, Note: note, ChangedAt: s.now()}
	if err := s.apps.TransitionStatus(ctx, applicationID, app.Status, to, entry); err != nil {
		return nil, err
	}
	app.Status = to
	app.StatusHistory = append(app.StatusHistory, entry)

	if to == model.StatusHired {
		s.afterHire(ctx, app)
	}
	return app, nil
}

// Withdraw is the applicant-only exit. Re-withdrawing an already-withdrawn
// application fails with ErrInvalidTransition like any other terminal move.
func (s *ApplicationService) Withdraw(ctx context.Context, applicationID, applicantID uuid.UUID, note string) (*model.Application, error) {
	return s.Transition(ctx, applicationID, model.StatusWithdrawn, model.UserActor(applicantID), note)
}

// afterHire performs the bookkeeping a confirmed hire triggers. The hire is
// already committed; failures here are logged for reconciliation, never
// propagated, so a flaky downstream can never block a hiring decision.
func (s *ApplicationService) afterHire(ctx context.Context, app *model.Application) {
	sugar := s.logger.Sugar()

	var referrerID *uuid.UUID
	if app.IsReferral && app.ReferredBy != nil {
		referrerID = app.ReferredBy
	}
	if err := s.apps.RecordHireStats(ctx, app.CompanyID, referrerID); err != nil {
		sugar.Errorw("hire stats update failed", "application_id", app.ApplicationID, "err", err)
	}

	if referrerID == nil {
		return
	}
	if err := s.payments.RecordEligiblePayment(ctx, app); err != nil {
		sugar.Errorw("referral payment recording failed", "application_id", app.ApplicationID, "referrer_id", *referrerID, "err", err)
	}
	if err := s.notifier.Notify(ctx, *referrerID, "referral.hired", map[string]interface{}{
		"application_id": app.ApplicationID.String(),
		"job_id":         app.JobID.String(),
	}); err != nil {
		sugar.Warnw("referral hire notification failed", "referrer_id", *referrerID, "err", err)
	}
}
