package domain

import "errors"

// Common domain errors. Handlers map these to HTTP codes with errors.Is;
// services wrap them with context so the kind stays machine-readable.
var (
	ErrValidation             = errors.New("validation error")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("forbidden")
	ErrNotFound               = errors.New("resource not found")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrTransactionFailed      = errors.New("transaction failed")
	ErrDuplicateEntry         = errors.New("duplicate entry")
)

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountPending     = errors.New("account pending approval")
	ErrAccountExists      = errors.New("user already exists")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// Ledger errors
var (
	ErrMemberNotFound  = errors.New("member not found")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrLoanNotFound    = errors.New("loan not found")
)
