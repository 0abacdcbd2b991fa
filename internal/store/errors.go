package store

import "errors"

// Error variables for storage-facing operations. Callers match them with
// errors.Is; the underlying cause stays wrapped.
var (
	ErrRead    = errors.New("checklist read failed")
	ErrWrite   = errors.New("checklist write failed")
	ErrCorrupt = errors.New("checklist data is corrupt")
)
