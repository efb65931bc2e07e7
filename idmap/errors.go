package idmap

import "errors"

var (
	// ErrFrozen is returned when adding to a map after Build.
	ErrFrozen = errors.New("idmap: map is frozen")
	// ErrCapacityExceeded is returned when more ids are added than were counted up front.
	ErrCapacityExceeded = errors.New("idmap: capacity exceeded")
)
