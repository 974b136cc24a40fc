package service

import "errors"

var (
	ErrInternal        = errors.New("internal server error")
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidParent   = errors.New("invalid parent comment")
	ErrDuplicateReport = errors.New("you have already reported this comment")
	ErrInvalidAction   = errors.New("invalid moderation action")
)

var domainErrors = []error{
	ErrValidation,
	ErrNotFound,
	ErrForbidden,
	ErrInvalidParent,
	ErrDuplicateReport,
	ErrInvalidAction,
}

// isDomainError reports whether err is one of the typed outcomes callers are expected to handle.
func isDomainError(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
