package model

import "errors"

// Sentinel errors shared across the repository and service layers. Callers
// match them with errors.Is; handlers map them to HTTP status codes.
var (
	ErrNotFound                    = errors.New("resource not found")
	ErrEmailTaken                  = errors.New("email already registered")
	ErrDuplicateApplication        = errors.New("application already exists for this job")
	ErrJobNotAcceptingApplications = errors.New("job is not accepting applications")
	ErrInvalidTransition           = errors.New("invalid status transition")
	ErrUnauthorized                = errors.New("actor not allowed to perform this action")
	ErrPaymentIneligible           = errors.New("application not eligible for referral payment")
)
