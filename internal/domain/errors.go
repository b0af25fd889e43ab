package domain

import "errors"

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrSessionNotFound = errors.New("onboarding session not found")

	// ErrCannotDecideSelf is returned when a viewer tries to like or skip
	// their own profile.
	ErrCannotDecideSelf = errors.New("cannot like or skip yourself")

	// ErrWrongInputKind is returned when the payload kind does not match the
	// current step (photo during a text step and vice versa). The step does
	// not advance; the caller re-issues the prompt.
	ErrWrongInputKind = errors.New("wrong input kind for current step")
)

// ValidationError is a recoverable per-step rejection. It carries a message
// suitable for re-prompting the user and never aborts the session.
type ValidationError struct {
	Step    Step
	Message string
}

func (e *ValidationError) Error() string {
	return "invalid answer for step " + string(e.Step) + ": " + e.Message
}

func NewValidationError(step Step, msg string) *ValidationError {
	return &ValidationError{Step: step, Message: msg}
}

// IsValidation reports whether err is a recoverable validation rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
