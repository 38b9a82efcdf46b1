package sync

import "errors"

var (
	// ErrNotStarted is returned when navigation is attempted before the
	// location graph has been loaded.
	ErrNotStarted = errors.New("sync: engine not started")

	// ErrUnknownLocation is returned when a path resolves to no node.
	ErrUnknownLocation = errors.New("sync: unknown location")

	// ErrEditNotAllowed is returned when the signed-in user lacks edit
	// rights for asset mutations.
	ErrEditNotAllowed = errors.New("sync: editing not allowed")

	// ErrBadCredentials is returned by Login on a failed credential check.
	ErrBadCredentials = errors.New("sync: invalid credentials")
)
