package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/PyNerdAlfaiz/referd-backend/pkg/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentStore is the ledger's storage contract. ClaimEligiblePayment and
// SettlePayment are atomic units pairing the payment row change with the
// referrer's earnings counters.
type PaymentStore interface {
	GetApplication(ctx context.Context, id uuid.UUID) (*model.Application, error)
	ClaimEligiblePayment(ctx context.Context, applicationID, referrerID uuid.UUID, amount int64, currency, reference string) (bool, error)
	MarkPaymentIneligible(ctx context.Context, applicationID uuid.UUID) error
	UpdatePaymentStatusGuarded(ctx context.Context, applicationID uuid.UUID, from, to model.PaymentStatus) error
	SettlePayment(ctx context.Context, applicationID, referrerID, companyID uuid.UUID, amount int64) error
}

// ReferralService is the referral payment ledger: it records eligibility
// when a referred hire is confirmed and applies the gateway's payout
// progression.
type ReferralService struct {
	store  PaymentStore
	jobs   JobGetter
	logger *zap.Logger
}

func NewReferralService(store PaymentStore, jobs JobGetter, logger *zap.Logger) *ReferralService {
	return &ReferralService{store: store, jobs: jobs, logger: logger}
}

// RecordEligiblePayment computes and records the fee owed to the referrer
// of a hired application. Safe to call more than once: the conditional
// claim in the store makes a retry a no-op rather than a double payment.
func (s *ReferralService) RecordEligiblePayment(ctx context.Context, app *model.Application) error {
	if !app.IsReferral || app.ReferredBy == nil || app.Status != model.StatusHired {
		return fmt.Errorf("application %s: %w", app.ApplicationID, model.ErrPaymentIneligible)
	}

	job, err := s.jobs.GetJob(ctx, app.JobID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			// Referential integrity should make this impossible; the hire
			// still stands, the payment does not.
			if markErr := s.store.MarkPaymentIneligible(ctx, app.ApplicationID); markErr != nil {
				s.logger.Sugar().Errorw("mark payment ineligible failed", "application_id", app.ApplicationID, "err", markErr)
			}
			return fmt.Errorf("job %s missing at payment time: %w", app.JobID, model.ErrPaymentIneligible)
		}
		return fmt.Errorf("load job for payment: %w", err)
	}

	reference := uuid.NewString()
	claimed, err := s.store.ClaimEligiblePayment(ctx, app.ApplicationID, *app.ReferredBy, job.ReferralFee, job.ReferralFeeCurrency, reference)
	if err != nil {
		return err
	}
	if !claimed {
		s.logger.Sugar().Debugw("referral payment already recorded", "application_id", app.ApplicationID)
		return nil
	}

	app.ReferralPayment = model.ReferralPayment{
		IsEligible:       true,
		Amount:           job.ReferralFee,
		Currency:         job.ReferralFeeCurrency,
		Status:           model.PaymentPending,
		PaymentReference: reference,
	}
	return nil
}

// UpdatePaymentStatus applies one step of the gateway-driven payout
// progression (pending -> processing -> paid | failed). Settling to paid
// moves the amount from the referrer's pending to paid earnings.
func (s *ReferralService) UpdatePaymentStatus(ctx context.Context, applicationID uuid.UUID, to model.PaymentStatus) (*model.Application, error) {
	app, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !app.ReferralPayment.IsEligible || app.ReferredBy == nil {
		return nil, fmt.Errorf("application %s: %w", applicationID, model.ErrPaymentIneligible)
	}
	from := app.ReferralPayment.Status
	if !model.CanTransitionPayment(from, to) {
		return nil, fmt.Errorf("payment status %s -> %s: %w", from, to, model.ErrInvalidTransition)
	}

	if to == model.PaymentPaid {
		err = s.store.SettlePayment(ctx, applicationID, *app.ReferredBy, app.CompanyID, app.ReferralPayment.Amount)
	} else {
		err = s.store.UpdatePaymentStatusGuarded(ctx, applicationID, from, to)
	}
	if err != nil {
		return nil, err
	}
	app.ReferralPayment.Status = to
	return app, nil
}
