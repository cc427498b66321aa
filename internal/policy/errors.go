package policy

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationRequired is returned when an operation needs a
	// resolved identity and the caller is anonymous
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrForbidden matches every *ForbiddenError via errors.Is
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound matches every *NotFoundError via errors.Is
	ErrNotFound = errors.New("not found")
)

// ForbiddenError is returned when the caller's role and region deny an action
type ForbiddenError struct {
	Action Action
	Reason string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Reason)
}

func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}

// Forbidden builds a ForbiddenError for the given action
func Forbidden(action Action, reason string) error {
	return &ForbiddenError{Action: action, Reason: reason}
}

// NotFoundError is returned when a referenced record does not exist
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NotFound builds a NotFoundError
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}
