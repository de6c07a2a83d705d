package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session id is unknown.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrUnknownUser is returned when the selected user is not on the roster.
	ErrUnknownUser = errors.New("unknown user")
	// ErrDataSourceUnavailable indicates the user's word list could not be fetched or parsed.
	ErrDataSourceUnavailable = errors.New("vocabulary data source unavailable")
	// ErrPreconditionViolated is returned when a command does not fit the session's current mode.
	ErrPreconditionViolated = errors.New("command not allowed in current session state")
	// ErrExhausted signals that every entry of the dataset has already been asked.
	ErrExhausted = errors.New("no more questions")
)
