package domain

import (
	"errors"
	"strings"
)

// Error kinds. Classify with errors.Is(err, domain.ErrConflict).
var (
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation failed")
	ErrReference      = errors.New("reference not found")
	ErrConflict       = errors.New("conflict")
	ErrTransientFault = errors.New("transient server fault")
)

// Error is a domain failure carrying the message shown to API clients.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

var (
	ErrUserNotFound      = &Error{Kind: ErrNotFound, Message: "User not found"}
	ErrRoleNotFound      = &Error{Kind: ErrNotFound, Message: "Role not found"}
	ErrRoleReference     = &Error{Kind: ErrReference, Message: "Referenced role not found"}
	ErrRoleNameTaken     = &Error{Kind: ErrConflict, Message: "Role with given name already exists"}
	ErrUnsetDefaultRole  = &Error{Kind: ErrConflict, Message: "Cannot unset default role"}
	ErrDeleteDefaultRole = &Error{Kind: ErrConflict, Message: "Cannot delete default role"}
	ErrServerFault       = &Error{Kind: ErrTransientFault, Message: "Server Error"}
)

// MissingFields builds the validation error for absent required fields,
// keeping the order in which the fields were given.
func MissingFields(fields ...string) *Error {
	msg := "Missing required field: "
	if len(fields) > 1 {
		msg = "Missing required fields: "
	}
	return &Error{Kind: ErrValidation, Message: msg + strings.Join(fields, ", ")}
}

// Message returns the client-facing message of a domain error, or fallback
// when err is not one.
func Message(err error, fallback string) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return fallback
}
