package teamname

import "errors"

var (
	// ErrInvalidArgument indicates a required argument such as the event ID was empty
	ErrInvalidArgument = errors.New("teamname.invalid_argument")

	// ErrConflict is returned by a Store when an active record already holds the name
	ErrConflict = errors.New("teamname.conflict")

	// ErrNotFound is returned by a Store when no active record matches
	ErrNotFound = errors.New("teamname.not_found")

	// ErrPersistence wraps unexpected store failures
	ErrPersistence = errors.New("teamname.persistence_failed")

	// ErrFallbackExhausted indicates every fallback name attempt collided
	ErrFallbackExhausted = errors.New("teamname.fallback_exhausted")

	// ErrTokenGeneration indicates random token or suffix generation failed
	ErrTokenGeneration = errors.New("teamname.token_generation_failed")
)
