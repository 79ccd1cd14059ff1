package livestore

import "errors"

// Validation errors
var (
	ErrMissingIdentity = errors.New("missing participant identity")
	ErrInvalidPayload  = errors.New("invalid event payload")
	ErrUnknownEvent    = errors.New("unknown event")
	ErrInvalidRole     = errors.New("invalid participant role")
)

// Not-found errors. On the socket path these are logged and swallowed.
var (
	ErrRequestNotFound = errors.New("connection request not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrNotParticipant  = errors.New("identity is not a participant of the session")
	ErrTargetOffline   = errors.New("target participant is not connected")
)
