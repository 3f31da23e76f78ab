package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/PyNerdAlfaiz/referd-backend/pkg/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var testClock = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func newTestServices(store *fakeStore) (*ApplicationService, *ReferralService, *JobService, *recordingNotifier) {
	log := zap.NewNop()
	notifier := &recordingNotifier{}
	refSvc := NewReferralService(store, store, log)
	appSvc := NewApplicationService(store, store, store, refSvc, notifier, log)
	appSvc.now = func() time.Time { return testClock }
	jobSvc := NewJobService(store, "USD", log)
	jobSvc.now = func() time.Time { return testClock }
	return appSvc, refSvc, jobSvc, notifier
}

func TestSubmitCreatesPendingApplication(t *testing.T) {
	store := newFakeStore()
	svc, _, _, _ := newTestServices(store)

	companyID := store.addCompany()
	job := store.addJob(companyID, model.JobStatusActive, 50000, nil)
	applicant := store.addUser("Dana", "REF-DANA-111111")

	app, err := svc.Submit(context.Background(), job.JobID, applicant.UserID, model.SubmitApplicationReq{CoverLetter: "hi"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if app.Status != model.StatusPending {
		t.Errorf("status = %s, want pending", app.Status)
	}
	if app.IsReferral || app.ReferredBy != nil {
		t.Errorf("non-referral submission got attribution: %+v", app)
	}
	if len(app.StatusHistory) != 1 || app.StatusHistory[0].Status != model.StatusPending {
		t.Errorf("history = %+v, want single pending entry", app.StatusHistory)
	}
	if got := store.jobByID(job.JobID).Stats; got.Applications != 1 || got.ReferralApplications != 0 {
		t.Errorf("job stats = %+v", got)
	}
	if got := store.companyStats(companyID); got.TotalApplications != 1 {
		t.Errorf("company total applications = %d, want 1", got.TotalApplications)
	}
}

func TestSubmitDuplicateLeavesCountersUntouched(t *testing.T) {
	store := newFakeStore()
	svc, _, _, _ := newTestServices(store)

	companyID := store.addCompany()
	job := store.addJob(companyID, model.JobStatusActive, 0, nil)
	applicant := store.addUser("Dana", "REF-DANA-111111")

	if _, err := svc.Submit(context.Background(), job.JobID, applicant.UserID, model.SubmitApplicationReq{}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := svc.Submit(context.Background(), job.JobID, applicant.UserID, model.SubmitApplicationReq{})
	if !errors.Is(err, model.ErrDuplicateApplication) {
		t.Fatalf("err = %v, want ErrDuplicateApplication", err)
	}
	if got := store.jobByID(job.JobID).Stats.Applications; got != 1 {
		t.Errorf("job applications = %d, want 1", got)
	}
	if got := store.companyStats(companyID).TotalApplications; got != 1 {
		t.Errorf("company applications = %d, want 1", got)
	}
}

func TestSubmitRejectsJobsNotAcceptingApplications(t *testing.T) {
	store := newFakeStore()
	svc, _, _, _ := newTestServices(store)

	companyID := store.addCompany()
	applicant := store.addUser("Dana", "REF-DANA-111111")

	past := testClock.Add(-time.Hour)
	cases := []struct {
		name string
		job  *model.Job
	}{
		{"draft", store.addJob(companyID, model.JobStatusDraft, 0, nil)},
		{"paused", store.addJob(companyID, model.JobStatusPaused, 0, nil)},
		{"deadline passed", store.addJob(companyID, model.JobStatusActive, 0, &past)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tc.job.JobID, applicant.UserID, model.SubmitApplicationReq{})
			if !errors.Is(err, model.ErrJobNotAcceptingApplications) {
				t.Fatalf("err = %v, want ErrJobNotAcceptingApplications", err)
			}
		})
	}
}

func TestSubmitResolvesReferralAttribution(t *testing.T) {
	store := newFakeStore()
	svc, _, _, _ := newTestServices(store)

	companyID := store.addCompany()
	job := store.addJob(companyID, model.JobStatusActive, 50000, nil)
	referrer := store.addUser("John", "REF-JOHN-123456")
	applicant := store.addUser("Dana", "REF-DANA-111111")

	// codes are matched case-insensitively and trimmed
	app, err := svc.Submit(context.Background(), job.JobID, applicant.UserID, model.SubmitApplicationReq{ReferralCode: "  ref-john-123456 "})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !app.IsReferral {
		t.Fatal("IsReferral = false, want true")
	}
	if app.ReferredBy == nil || *app.ReferredBy != referrer.UserID {
		t.Errorf("ReferredBy = %v, want %s", app.ReferredBy, referrer.UserID)
	}
	if app.ReferralCode == nil || *app.ReferralCode != "REF-JOHN-123456" {
		t.Errorf("ReferralCode = %v, want normalized code", app.ReferralCode)
	}
	if got := store.userStats(referrer.UserID).TotalReferrals; got != 1 {
		t.Errorf("referrer total referrals = %d, want 1", got)
	}
	if got := store.jobByID(job.JobID).Stats; got.Referrals != 1 || got.ReferralApplications != 1 {
		t.Errorf("job referral stats = %+v", got)
	}
}

func TestSubmitIgnoresBadReferralCodes(t *testing.T) {
	store := newFakeStore()
	svc, _, _, _ := newTestServices(store)

	companyID := store.addCompany()
	applicant := store.addUser("Dana", "REF-DANA-111111")

	cases := []struct {
		name string
		code string
	}{
		{"unknown code", "REF-NONE-000000"},
		{"own code", "REF-DANA-111111"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			job := store.addJob(companyID, model.JobStatusActive, 0, nil)
			app, err := svc.Submit(context.Background(), job.JobID, applicant.UserID, model.SubmitApplicationReq{ReferralCode: tc.code})
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}
			if app.IsReferral || app.ReferredBy != nil || app.ReferralCode != nil {
				t.Errorf("application carries attribution: %+v", app)
			}
			if got := store.userStats(applicant.UserID).TotalReferrals; got != 0 {
				t.Errorf("total referrals = %d, want 0", got)
			}
		})
	}
}

func TestReferredHireLifecycle(t *testing.T) {
	store := newFakeStore()
	svc, _, _, notifier := newTestServices(store)

	companyID := store.addCompany()
	job := store.addJob(companyID, model.JobStatusActive, 50000, nil)
	referrer := store.addUser("John", "REF-JOHN-123456")
	applicant := store.addUser("Dana", "REF-DANA-111111")

	app, err := svc.Submit(context.Background(), job.JobID, applicant.UserID, model.SubmitApplicationReq{ReferralCode: referrer.ReferralCode})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	company := model.CompanyActor(companyID)
	for _, to := range []model.ApplicationStatus{model.StatusReviewing, model.StatusShortlisted, model.StatusInterviewing, model.StatusOffered, model.StatusHired} {
		if _, err := svc.Transition(context.Background(), app.ApplicationID, to, company, ""); err != nil {
			t.Fatalf("transition to %s: %v", to, err)
		}
	}

	stats := store.userStats(referrer.UserID)
	if stats.SuccessfulReferrals != 1 {
		t.Errorf("successful referrals = %d, want 1", stats.SuccessfulReferrals)
	}
	if stats.PendingEarnings != 50000 || stats.TotalEarnings != 50000 || stats.PaidEarnings != 0 {
		t.Errorf("earnings = %+v", stats)
	}
	if !stats.Consistent() {
		t.Errorf("referral stats inconsistent: %+v", stats)
	}
	if got := store.companyStats(companyID).TotalHires; got != 1 {
		t.Errorf("company hires = %d, want 1", got)
	}

	final, err := store.GetApplication(context.Background(), app.ApplicationID)
	if err != nil {
		t.Fatalf("GetApplication: %v", err)
	}
	pay := final.ReferralPayment
	if !pay.IsEligible || pay.Status != model.PaymentPending || pay.Amount != 50000 || pay.PaymentReference == "" {
		t.Errorf("payment = %+v", pay)
	}
	if len(final.StatusHistory) != 6 {
		t.Errorf("history length = %d, want 6", len(final.StatusHistory))
	}

	events := notifier.all()
	if len(events) != 1 || events[0].Kind != "referral.hired" || events[0].UserID != referrer.UserID {
		t.Errorf("notifications = %+v", events)
	}
}

func TestNonReferralHireSkipsPayment(t *testing.T) {
	store := newFakeStore()
	svc, _, _, notifier := newTestServices(store)

	companyID := store.addCompany()
	job := store.addJob(companyID, model.JobStatusActive, 50000, nil)
	applicant := store.addUser("Dana", "REF-DANA-111111")

	app, err := svc.Submit(context.Background(), job.JobID, applicant.UserID, model.SubmitApplicationReq{})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := svc.Transition(context.Background(), app.ApplicationID, model.StatusHired, model.CompanyActor(companyID), ""); err != nil {
		t.Fatalf("hire: %v", err)
	}

	if got := store.companyStats(companyID).TotalHires; got != 1 {
		t.Errorf("company hires = %d, want 1", got)
	}
	final, _ := store.GetApplication(context.Background(), app.ApplicationID)
	if final.ReferralPayment.IsEligible {
		t.Errorf("non-referral hire produced a payment: %+v", final.ReferralPayment)
	}
	if len(notifier.all()) != 0 {
		t.Errorf("notifications = %+v, want none", notifier.all())
	}
}

func TestTransitionFromTerminalFails(t *testing.T) {
	store := newFakeStore()
	svc, _, _, _ := newTestServices(store)

	companyID := store.addCompany()
	job := store.addJob(companyID, model.JobStatusActive, 0, nil)
	applicant := store.addUser("Dana", "REF-DANA-111111")

	app, _ := svc.Submit(context.Background(), job.JobID, applicant.UserID, model.SubmitApplicationReq{})
	company := model.CompanyActor(companyID)
	if _, err := svc.Transition(context.Background(), app.ApplicationID, model.StatusRejected, company, "not a fit"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	_, err := svc.Transition(context.Background(), app.ApplicationID, model.StatusReviewing, company, "")
	if !errors.Is(err, model.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}

	final, _ := store.GetApplication(context.Background(), app.ApplicationID)
	if len(final.StatusHistory) != 2 {
		t.Errorf("history length = %d, want 2", len(final.StatusHistory))
	}
}

func TestTransitionAuthorization(t *testing.T) {
	store := newFakeStore()
	svc, _, _, _ := newTestServices(store)

	companyID := store.addCompany()
	otherCompanyID := store.addCompany()
	job := store.addJob(companyID, model.JobStatusActive, 0, nil)
	applicant := store.addUser("Dana", "REF-DANA-111111")
	stranger := store.addUser("Eve", "REF-EVEX-222222")

	app, _ := svc.Submit(context.Background(), job.JobID, applicant.UserID, model.SubmitApplicationReq{})

	cases := []struct {
		name  string
		to    model.ApplicationStatus
		actor model.Actor
	}{
		{"applicant cannot advance", model.StatusReviewing, model.UserActor(applicant.UserID)},
		{"applicant cannot hire", model.StatusHired, model.UserActor(applicant.UserID)},
		{"company cannot withdraw", model.StatusWithdrawn, model.CompanyActor(companyID)},
		{"other company cannot touch", model.StatusReviewing, model.CompanyActor(otherCompanyID)},
		{"stranger cannot withdraw", model.StatusWithdrawn, model.UserActor(stranger.UserID)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Transition(context.Background(), app.ApplicationID, tc.to, tc.actor, "")
			if !errors.Is(err, model.ErrUnauthorized) {
				t.Fatalf("err = %v, want ErrUnauthorized", err)
			}
		})
	}

	final, _ := store.GetApplication(context.Background(), app.ApplicationID)
	if final.Status != model.StatusPending || len(final.StatusHistory) != 1 {
		t.Errorf("application mutated by denied transitions: %+v", final)
	}
}

func TestWithdraw(t *testing.T) {
	store := newFakeStore()
	svc, _, _, _ := newTestServices(store)

	companyID := store.addCompany()
	applicant := store.addUser("Dana", "REF-DANA-111111")
	company := model.CompanyActor(companyID)

	t.Run("from pending", func(t *testing.T) {
		job := store.addJob(companyID, model.JobStatusActive, 0, nil)
		app, _ := svc.Submit(context.Background(), job.JobID, applicant.UserID, model.SubmitApplicationReq{})
		got, err := svc.Withdraw(context.Background(), app.ApplicationID, applicant.UserID, "changed my mind")
		if err != nil {
			t.Fatalf("Withdraw: %v", err)
		}
		if got.Status != model.StatusWithdrawn {
			t.Errorf("status = %s, want withdrawn", got.Status)
		}

		_, err = svc.Withdraw(context.Background(), app.ApplicationID, applicant.UserID, "again")
		if !errors.Is(err, model.ErrInvalidTransition) {
			t.Fatalf("re-withdraw err = %v, want ErrInvalidTransition", err)
		}
	})

	t.Run("too late after interviewing", func(t *testing.T) {
		job := store.addJob(companyID, model.JobStatusActive, 0, nil)
		app, _ := svc.Submit(context.Background(), job.JobID, applicant.UserID, model.SubmitApplicationReq{})
		if _, err := svc.Transition(context.Background(), app.ApplicationID, model.StatusInterviewing, company, ""); err != nil {
			t.Fatalf("advance: %v", err)
		}
		_, err := svc.Withdraw(context.Background(), app.ApplicationID, applicant.UserID, "")
		if !errors.Is(err, model.ErrInvalidTransition) {
			t.Fatalf("err = %v, want ErrInvalidTransition", err)
		}
	})
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	store := newFakeStore()
	svc, _, _, _ := newTestServices(store)

	_, err := svc.Transition(context.Background(), uuid.New(), "archived", model.CompanyActor(uuid.New()), "")
	if !errors.Is(err, model.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
	_, err = svc.Transition(context.Background(), uuid.New(), model.StatusPending, model.CompanyActor(uuid.New()), "")
	if !errors.Is(err, model.ErrInvalidTransition) {
		t.Fatalf("pending target err = %v, want ErrInvalidTransition", err)
	}
}
