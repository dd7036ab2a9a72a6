package domain

import "errors"

// Per-file and run-level failure kinds.
// MissingConfig is not listed: a record without config is still produced, with
// the corresponding fields left unset.
var (
	// ErrFileUnreadable means the file could not be opened, read or decoded
	ErrFileUnreadable = errors.New("log file unreadable")

	// ErrIncompleteRecord means the file had no timestamped [Batch START] or no timestamped [Batch DONE]
	ErrIncompleteRecord = errors.New("log file has no batch start or no batch done")

	// ErrEmptyResultSet means no file produced a record, so there is nothing to write
	ErrEmptyResultSet = errors.New("no records to write")
)

// RunConfig is the batch configuration of a single run.
// Nil fields are unknown.
type RunConfig struct {
	BatchSize   *int
	MaxParallel *int
}

// Complete reports whether both fields are known
func (c RunConfig) Complete() bool {
	return c.BatchSize != nil && c.MaxParallel != nil
}

// Merge fills the unset fields of c from other.
// Fields already set in c are never overwritten.
func (c RunConfig) Merge(other RunConfig) RunConfig {
	if c.BatchSize == nil && other.BatchSize != nil {
		v := *other.BatchSize
		c.BatchSize = &v
	}
	if c.MaxParallel == nil && other.MaxParallel != nil {
		v := *other.MaxParallel
		c.MaxParallel = &v
	}
	return c
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}
