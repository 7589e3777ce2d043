package services

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers switch on these with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidState     = errors.New("invalid state")
	ErrValidation       = errors.New("validation failed")
	ErrEmptyRoster      = errors.New("no active executive committee members found to archive")
	ErrBadConfirmation  = errors.New("confirmation token must be CONFIRM")
	ErrTransitionFailed = errors.New("failed to end committee tenure")
)

var (
	ErrUserNotFound        = kind("user not found", ErrNotFound)
	ErrDesignationNotFound = kind("designation not found", ErrNotFound)
	ErrAssignmentNotFound  = kind("committee assignment not found", ErrNotFound)
	ErrCommitteeNotFound   = kind("previous committee not found", ErrNotFound)

	ErrAlreadyInCommittee = kind("user is already in the current committee", ErrConflict)
	ErrMemberOrderTaken   = kind("member order is already used in the current committee", ErrConflict)

	ErrCommitteeAlreadyArchived = kind("current committee number has already been archived", ErrConflict)
	ErrCommitteeNumberArchived  = kind("committee number belongs to an archived committee", ErrConflict)

	ErrAssignmentNotCurrent = kind("can only remove current committee members", ErrInvalidState)

	ErrCommitteeNumberRequired  = kind("new committee number is required", ErrValidation)
	ErrCommitteeNumberTooLong   = kind("new committee number is too long", ErrValidation)
	ErrCommitteeNumberUnchanged = kind("new committee number must differ from the committee being archived", ErrValidation)
	ErrInvalidMemberOrder       = kind("member order must be at least 1", ErrValidation)
	ErrDuplicateMemberOrder     = kind("member order must be unique within the current committee", ErrValidation)
	ErrEmptyReorder             = kind("at least one member order is required", ErrValidation)
	ErrInvalidIdempotencyKey    = kind("idempotency key is too long", ErrValidation)
	ErrNotExecutive             = kind("user is not an executive", ErrInvalidState)
)

type kindError struct {
	msg  string
	kind error
}

func kind(msg string, k error) error {
	return &kindError{msg: msg, kind: k}
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// TransitionError reports a rolled back End-Tenure run.
type TransitionError struct {
	Cause                   error
	RosterSize              int
	ArchivedCommitteeNumber string
	NewCommitteeNumber      string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %v", ErrTransitionFailed.Error(), e.Cause)
}

// Unwrap exposes both ErrTransitionFailed and the underlying cause.
func (e *TransitionError) Unwrap() []error {
	return []error{ErrTransitionFailed, e.Cause}
}
