package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into coded domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrDuplicate: a unique constraint would be violated
// - ErrConflict: entity in a state that forbids the requested operation
// - ErrInvalidState: stored data is inconsistent with what the caller expects
//
// For validation errors (bad input, missing fields), use pkg/domain-errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("duplicate")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
)
