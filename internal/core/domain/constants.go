package domain

import "errors"

var (
	ErrAlreadyResponded  = errors.New("interaction has already been responded to")
	ErrDeferredNeedsEdit = errors.New("deferred interactions must use the edit path for the initial response")
	ErrNotResponded      = errors.New("cannot send a followup before the initial response")
	ErrAlreadyRegistered = errors.New("custom id is already registered")
	ErrNotFound          = errors.New("custom id not found")
	ErrMissingField      = errors.New("missing required field")
	ErrFieldTypeMismatch = errors.New("field type mismatch")
	ErrNoCallback        = errors.New("no callback found for custom id")
)
