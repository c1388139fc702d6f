package errors

import "errors"

var (
	ErrCourseNotFound           = errors.New("course not found")
	ErrSelfEnrollment           = errors.New("instructor cannot enroll in own course")
	ErrAlreadyEnrolled          = errors.New("student already enrolled")
	ErrNotEnrolled              = errors.New("student is not enrolled")
	ErrAlreadyRegistered        = errors.New("identity already registered")
	ErrUserNotFound             = errors.New("user not found")
	ErrAlreadyPurchased         = errors.New("course already purchased")
	ErrPaymentFailed            = errors.New("payment failed")
	ErrTransactionNotFound      = errors.New("transaction not found")
	ErrTransactionFinalized     = errors.New("transaction already finalized")
	ErrInvalidSettlement        = errors.New("settlement status must be terminal")
	ErrMissingIdentity          = errors.New("caller identity is required")
	ErrInvalidRequest           = errors.New("invalid request")
	ErrPurchaseInProgress       = errors.New("purchase already in progress")
	ErrRepositoryInvariantBroke = errors.New("repository invariant violated")
)
