package domain

import "go.trai.ch/zerr"

var (
	// ErrEntryNotFound is returned by store internals when no entry
	// exists for a key in a given tier.
	ErrEntryNotFound = zerr.New("cache entry not found")

	// ErrEntryCorrupted is returned when a persisted entry cannot be
	// deserialized. The tiered store converts it to a logged miss and
	// deletes the blob; it never reaches callers of Get.
	ErrEntryCorrupted = zerr.New("cache entry corrupted")

	// ErrEntryExpired is returned when an entry exists but its age
	// exceeds the tier TTL.
	ErrEntryExpired = zerr.New("cache entry expired")

	// ErrUnknownOperation is returned when a requested operation is not
	// configured for the project.
	ErrUnknownOperation = zerr.New("unknown operation")

	// ErrNoOperationsSpecified is returned when a run is requested with
	// an empty operation list.
	ErrNoOperationsSpecified = zerr.New("no operations specified")
)
