package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownUser            = errors.New("unknown user")
	ErrExpenseNotFound        = errors.New("expense not found")
	ErrParticipantNotFound    = errors.New("user is not a participant of the expense")
	ErrConcurrentModification = errors.New("expense was modified concurrently, retry")
	ErrInvalidName            = errors.New("name must be between 1 and 100 characters")
	ErrInvalidTitle           = errors.New("title is required")
	ErrReservedUser           = errors.New("the primary account holder cannot be removed")
)

// UnknownUserError names the id that could not be resolved.
type UnknownUserError struct {
	UserID string
}

func (e *UnknownUserError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnknownUser, e.UserID)
}

func (e *UnknownUserError) Is(target error) bool {
	return target == ErrUnknownUser
}
