package types

import "errors"

var (
	// ErrNotFound is returned when no row matched an id (+ owner) filter.
	// It is an expected condition, distinct from transport failures.
	ErrNotFound = errors.New("not found")

	// ErrNoIdentity is returned by operations that require an
	// authenticated identity when none is set.
	ErrNoIdentity = errors.New("no authenticated identity")

	ErrWelcomeScreenPosition = errors.New("welcome-screen block must be the first block")
	ErrNestedGroup           = errors.New("group blocks cannot be nested")
)
