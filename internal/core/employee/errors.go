package employee

import "errors"

var (
	ErrStoreUnavailable = errors.New("employee: store unavailable")
	ErrEmployeeNotFound = errors.New("employee: not found")
	ErrValidationFailed = errors.New("employee: validation failed")
	ErrWriteFailed      = errors.New("employee: write failed")

	ErrInvalidID        = errors.New("employee: invalid id")
	ErrInvalidName      = errors.New("employee: invalid name")
	ErrInvalidTeam      = errors.New("employee: invalid team")
	ErrInvalidPosition  = errors.New("employee: invalid position")
	ErrInvalidStatus    = errors.New("employee: invalid status")
	ErrInvalidStartDate = errors.New("employee: invalid start date")
)

// ValidationError は入力検証の失敗を表し、ErrValidationFailed として判定できます。
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidationFailed, e.Err}
}

// NewValidationError は ValidationError を生成します。
func NewValidationError(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}
