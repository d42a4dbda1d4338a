package domain

import "errors"

// ErrNotFound indicates that a referenced task, section or project does not
// exist. It aborts the operation before any mutation.
var ErrNotFound = errors.New("not found")

// ErrConcurrencyConflict indicates that the underlying storage rejected an
// update because a newer version of the entity is already persisted.
var ErrConcurrencyConflict = errors.New("concurrency conflict")
