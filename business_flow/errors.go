// Package businessflow contains the core business logic and use cases for the pricing workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Error taxonomy codes. Handlers map these onto HTTP statuses.
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeNotFound      = "NOT_FOUND"
	CodeConflict      = "CONFLICT"
	CodeConfiguration = "CONFIGURATION_ERROR"
	CodeInternal      = "INTERNAL_ERROR"
)

// Business flow error constants
var (
	// User and session errors
	ErrUserNotFound        = errors.New("user not found")
	ErrAccountInactive     = errors.New("account is inactive")
	ErrIncorrectPassword   = errors.New("incorrect password")
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionExpired      = errors.New("session has expired")
	ErrRefreshTokenInvalid = errors.New("refresh token is invalid")
	ErrPermissionDenied    = errors.New("permission denied")

	// Suggestion errors
	ErrSuggestionNotFound       = errors.New("price suggestion not found")
	ErrSuggestionNotEditable    = errors.New("price suggestion already entered the approval flow")
	ErrSuggestionAlreadyDecided = errors.New("price suggestion already decided at this level")
	ErrSuggestionTerminal       = errors.New("price suggestion reached a terminal state")
	ErrFinalPriceBelowCost      = errors.New("final price must not be below cost price")
	ErrInvalidProductCode       = errors.New("invalid product code")
	ErrObservationsTooLong      = errors.New("observations exceed the maximum length")
	ErrBatchEmpty               = errors.New("batch contains no suggestions")
	ErrBatchTooLarge            = errors.New("batch exceeds the maximum size")
	ErrBatchNotFound            = errors.New("batch not found")

	// Approval errors
	ErrNotLevelApprover = errors.New("caller's profile does not hold the current approval level")
	ErrMarginAboveLimit = errors.New("suggestion margin exceeds the approver's limit")
	ErrInvalidDecision  = errors.New("decision must be approved or rejected")
	ErrNotRepairable    = errors.New("suggestion is not stranded")
	ErrSelfApproval     = errors.New("creator cannot decide on own suggestion")

	// Approval chain registry errors
	ErrApprovalChainEmpty    = errors.New("approval chain has no active levels")
	ErrApprovalChainChanged  = errors.New("approval chain changed during the decision")
	ErrOrderRowNotFound      = errors.New("approval order row not found")
	ErrProfileAlreadyInChain = errors.New("profile already present in the approval chain")
	ErrPositionsNotDense     = errors.New("active positions must form a dense sequence starting at 1")
	ErrPositionsIncomplete   = errors.New("positions must cover every chain row exactly once")
	ErrProfileNotFound       = errors.New("profile not found")
	ErrProfileCannotApprove  = errors.New("profile lacks the approve capability")

	// Reference data errors
	ErrStationNotFound       = errors.New("station not found")
	ErrClientNotFound        = errors.New("client not found")
	ErrPaymentMethodNotFound = errors.New("payment method not found")

	// Notification errors
	ErrNotificationNotFound = errors.New("notification not found")

	// Push subscription errors
	ErrInvalidDeviceClass   = errors.New("invalid device class")
	ErrSubscriptionNotFound = errors.New("push subscription not found")

	// Filter errors
	ErrInvalidPage           = errors.New("page must be at least 1")
	ErrInvalidPageSize       = errors.New("page size must be between 1 and 100")
	ErrStartDateAfterEndDate = errors.New("start date cannot be after end date")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

// CodeOf resolves an error to its taxonomy code. Flow errors carry an
// operation code and wrap a sentinel; classification follows the wrapped
// sentinel so the operation code never shadows the taxonomy.
func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		if isTaxonomyCode(be.Code) {
			return be.Code
		}
		if be.Err != nil {
			return CodeOf(be.Err)
		}
		return CodeInternal
	}

	switch {
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrSuggestionNotFound),
		errors.Is(err, ErrBatchNotFound),
		errors.Is(err, ErrOrderRowNotFound),
		errors.Is(err, ErrProfileNotFound),
		errors.Is(err, ErrStationNotFound),
		errors.Is(err, ErrClientNotFound),
		errors.Is(err, ErrPaymentMethodNotFound),
		errors.Is(err, ErrNotificationNotFound),
		errors.Is(err, ErrSubscriptionNotFound),
		errors.Is(err, ErrSessionNotFound):
		return CodeNotFound
	case errors.Is(err, ErrAccountInactive),
		errors.Is(err, ErrIncorrectPassword),
		errors.Is(err, ErrSessionExpired),
		errors.Is(err, ErrRefreshTokenInvalid),
		errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrNotLevelApprover),
		errors.Is(err, ErrMarginAboveLimit),
		errors.Is(err, ErrSelfApproval):
		return CodeUnauthorized
	case errors.Is(err, ErrSuggestionAlreadyDecided),
		errors.Is(err, ErrSuggestionTerminal),
		errors.Is(err, ErrSuggestionNotEditable),
		errors.Is(err, ErrApprovalChainChanged),
		errors.Is(err, ErrProfileAlreadyInChain),
		errors.Is(err, ErrNotRepairable):
		return CodeConflict
	case errors.Is(err, ErrApprovalChainEmpty):
		return CodeConfiguration
	case errors.Is(err, ErrFinalPriceBelowCost),
		errors.Is(err, ErrInvalidProductCode),
		errors.Is(err, ErrObservationsTooLong),
		errors.Is(err, ErrBatchEmpty),
		errors.Is(err, ErrBatchTooLarge),
		errors.Is(err, ErrInvalidDecision),
		errors.Is(err, ErrPositionsNotDense),
		errors.Is(err, ErrPositionsIncomplete),
		errors.Is(err, ErrProfileCannotApprove),
		errors.Is(err, ErrInvalidDeviceClass),
		errors.Is(err, ErrInvalidPage),
		errors.Is(err, ErrInvalidPageSize),
		errors.Is(err, ErrStartDateAfterEndDate):
		return CodeValidation
	default:
		return CodeInternal
	}
}

func isTaxonomyCode(code string) bool {
	switch code {
	case CodeValidation, CodeUnauthorized, CodeNotFound,
		CodeConflict, CodeConfiguration, CodeInternal:
		return true
	default:
		return false
	}
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsSuggestionNotFound(err error) bool {
	return errors.Is(err, ErrSuggestionNotFound)
}

func IsSuggestionAlreadyDecided(err error) bool {
	return errors.Is(err, ErrSuggestionAlreadyDecided)
}

func IsSuggestionTerminal(err error) bool {
	return errors.Is(err, ErrSuggestionTerminal)
}

func IsApprovalChainEmpty(err error) bool {
	return errors.Is(err, ErrApprovalChainEmpty)
}

func IsApprovalChainChanged(err error) bool {
	return errors.Is(err, ErrApprovalChainChanged)
}

func IsNotLevelApprover(err error) bool {
	return errors.Is(err, ErrNotLevelApprover)
}

func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}
