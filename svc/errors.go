package svc

import "errors"

var (
	// ErrSessionNotFound is returned when no session exists for the given id.
	ErrSessionNotFound = errors.New("diagnosis session not found")

	// ErrSessionComplete is returned when an answer is submitted to a
	// session that already reached a terminal state.
	ErrSessionComplete = errors.New("diagnosis session already complete")

	// ErrCollaborator wraps failures of the external language collaborators
	// (classifier, interpreter, phraser). The turn is abandoned; the stored
	// session is left untouched.
	ErrCollaborator = errors.New("collaborator unavailable")
)
