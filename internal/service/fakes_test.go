package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PyNerdAlfaiz/referd-backend/pkg/model"
	"github.com/google/uuid"
)

// fakeStore is an in-memory stand-in for the repository. It mirrors the
// storage contract the services rely on: guarded status updates fail when
// the current status no longer matches, counters move together with the
// row change, and the unique (job, applicant) pair is enforced.
type fakeStore struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*model.User
	companies map[uuid.UUID]*model.CompanyStats
	jobs      map[uuid.UUID]*model.Job
	apps      map[uuid.UUID]*model.Application

	// afterList runs between listing expired jobs and closing them, to
	// exercise races with explicit status changes.
	afterList func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     make(map[uuid.UUID]*model.User),
		companies: make(map[uuid.UUID]*model.CompanyStats),
		jobs:      make(map[uuid.UUID]*model.Job),
		apps:      make(map[uuid.UUID]*model.Application),
	}
}

func (f *fakeStore) addUser(name, code string) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &model.User{UserID: uuid.New(), Name: name, ReferralCode: code}
	f.users[u.UserID] = u
	return u
}

func (f *fakeStore) addCompany() uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.companies[id] = &model.CompanyStats{}
	return id
}

func (f *fakeStore) addJob(companyID uuid.UUID, status model.JobStatus, fee int64, deadline *time.Time) *model.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	j := &model.Job{
		JobID:               uuid.New(),
		CompanyID:           companyID,
		Title:               "Backend Engineer",
		Status:              status,
		ReferralFee:         fee,
		ReferralFeeCurrency: "USD",
		ApplicationDeadline: deadline,
	}
	f.jobs[j.JobID] = j
	return j
}

func (f *fakeStore) userStats(id uuid.UUID) model.ReferralStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id].ReferralStats
}

func (f *fakeStore) companyStats(id uuid.UUID) model.CompanyStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.companies[id]
}

func (f *fakeStore) jobByID(id uuid.UUID) model.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.jobs[id]
}

func (f *fakeStore) GetUserByReferralCode(_ context.Context, code string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ReferralCode == code {
			cp := *u
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (f *fakeStore) GetJob(_ context.Context, id uuid.UUID) (*model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (f *fakeStore) CreateJob(_ context.Context, job *model.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job.JobID = uuid.New()
	cp := *job
	f.jobs[job.JobID] = &cp
	stats := f.companies[job.CompanyID]
	stats.TotalJobsPosted++
	if job.Status == model.JobStatusActive {
		stats.ActiveJobs++
	}
	return nil
}

func (f *fakeStore) UpdateJobStatusGuarded(_ context.Context, jobID uuid.UUID, from, to model.JobStatus, closedAt *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[jobID]
	if !ok {
		return model.ErrNotFound
	}
	if j.Status != from {
		return model.ErrInvalidTransition
	}
	j.Status = to
	j.ClosedDate = closedAt
	stats := f.companies[j.CompanyID]
	if from == model.JobStatusActive && to != model.JobStatusActive {
		stats.ActiveJobs--
	}
	if from != model.JobStatusActive && to == model.JobStatusActive {
		stats.ActiveJobs++
	}
	return nil
}

func (f *fakeStore) ListExpiredActiveJobs(_ context.Context, now time.Time, limit int) ([]model.Job, error) {
	f.mu.Lock()
	var out []model.Job
	for _, j := range f.jobs {
		if j.Status == model.JobStatusActive && j.ApplicationDeadline != nil && now.After(*j.ApplicationDeadline) {
			out = append(out, *j)
			if len(out) == limit {
				break
			}
		}
	}
	f.mu.Unlock()
	if f.afterList != nil {
		f.afterList()
	}
	return out, nil
}

func (f *fakeStore) GetApplication(_ context.Context, id uuid.UUID) (*model.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.apps[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *a
	cp.StatusHistory = append([]model.StatusChange(nil), a.StatusHistory...)
	return &cp, nil
}

func (f *fakeStore) CreateApplication(_ context.Context, app *model.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.apps {
		if existing.JobID == app.JobID && existing.ApplicantID == app.ApplicantID {
			return model.ErrDuplicateApplication
		}
	}
	job, ok := f.jobs[app.JobID]
	if !ok || job.Status != model.JobStatusActive {
		return model.ErrJobNotAcceptingApplications
	}

	app.ApplicationID = uuid.New()
	app.Version = 1
	cp := *app
	cp.StatusHistory = append([]model.StatusChange(nil), app.StatusHistory...)
	f.apps[app.ApplicationID] = &cp

	job.Stats.Applications++
	f.companies[app.CompanyID].TotalApplications++
	if app.IsReferral {
		job.Stats.Referrals++
		job.Stats.ReferralApplications++
		if app.ReferredBy != nil {
			f.users[*app.ReferredBy].ReferralStats.TotalReferrals++
		}
	}
	return nil
}

func (f *fakeStore) TransitionStatus(_ context.Context, id uuid.UUID, from, to model.ApplicationStatus, entry model.StatusChange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.apps[id]
	if !ok {
		return model.ErrNotFound
	}
	if a.Status != from {
		return model.ErrInvalidTransition
	}
	a.Status = to
	a.Version++
	a.StatusHistory = append(a.StatusHistory, entry)
	return nil
}

func (f *fakeStore) RecordHireStats(_ context.Context, companyID uuid.UUID, referrerID *uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.companies[companyID].TotalHires++
	if referrerID != nil {
		f.users[*referrerID].ReferralStats.SuccessfulReferrals++
	}
	return nil
}

func (f *fakeStore) ClaimEligiblePayment(_ context.Context, applicationID, referrerID uuid.UUID, amount int64, currency, reference string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.apps[applicationID]
	if !ok {
		return false, model.ErrNotFound
	}
	if a.ReferralPayment.IsEligible {
		return false, nil
	}
	a.ReferralPayment = model.ReferralPayment{
		IsEligible:       true,
		Amount:           amount,
		Currency:         currency,
		Status:           model.PaymentPending,
		PaymentReference: reference,
	}
	stats := &f.users[referrerID].ReferralStats
	stats.PendingEarnings += amount
	stats.TotalEarnings += amount
	return true, nil
}

func (f *fakeStore) MarkPaymentIneligible(_ context.Context, applicationID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.apps[applicationID]
	if !ok {
		return model.ErrNotFound
	}
	a.ReferralPayment.IsEligible = false
	return nil
}

func (f *fakeStore) UpdatePaymentStatusGuarded(_ context.Context, applicationID uuid.UUID, from, to model.PaymentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.apps[applicationID]
	if !ok {
		return model.ErrNotFound
	}
	if a.ReferralPayment.Status != from {
		return model.ErrInvalidTransition
	}
	a.ReferralPayment.Status = to
	return nil
}

func (f *fakeStore) SettlePayment(_ context.Context, applicationID, referrerID, companyID uuid.UUID, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.apps[applicationID]
	if !ok {
		return model.ErrNotFound
	}
	if a.ReferralPayment.Status != model.PaymentProcessing {
		return model.ErrInvalidTransition
	}
	a.ReferralPayment.Status = model.PaymentPaid
	stats := &f.users[referrerID].ReferralStats
	if stats.PendingEarnings < amount {
		return fmt.Errorf("pending earnings %d below settle amount %d", stats.PendingEarnings, amount)
	}
	stats.PendingEarnings -= amount
	stats.PaidEarnings += amount
	f.companies[companyID].TotalReferralsPaid++
	return nil
}

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	UserID uuid.UUID
	Kind   string
}

func (n *recordingNotifier) Notify(_ context.Context, userID uuid.UUID, kind string, _ map[string]interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{UserID: userID, Kind: kind})
	return nil
}

func (n *recordingNotifier) all() []recordedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]recordedEvent(nil), n.events...)
}
