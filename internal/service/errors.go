package service

import (
	"errors"
	"fmt"
)

// --- Error Definitions ---
var (
	ErrValidation         = errors.New("validation failed")
	ErrClientEmailExists  = errors.New("a client with this email already exists")
	ErrClientPhoneExists  = errors.New("a client with this phone number already exists")
	ErrUserNotInvited     = errors.New("user is not invited")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrUserNotFound       = errors.New("user not found")
	ErrNoActiveWorkout    = errors.New("no active workout")
	ErrIndexOutOfRange    = errors.New("exercise or set index out of range")
	ErrWorkoutFinalized   = errors.New("workout has already been saved")
	ErrWorkoutNotFound    = errors.New("workout not found")
	ErrPlanNotFound       = errors.New("workout plan not found")
	ErrUnknownExercise    = errors.New("exercise is not in the catalog")
	ErrTokenGeneration    = errors.New("failed to generate authentication token")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrRoleSwitchDisabled = errors.New("role switching is only available in development mode")
)

// validationErrorf wraps ErrValidation with a caller-facing reason.
func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
