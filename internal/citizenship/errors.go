package citizenship

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for facts about application state. Stores return these
// (optionally wrapped) so callers can match with errors.Is.
var (
	ErrNotFound         = errors.New("no application found")
	ErrDuplicatePending = errors.New("a pending application already exists")
	ErrAlreadyReviewed  = errors.New("application already reviewed")

	// ErrBanNotConfirmed reports that the external ban call failed or timed
	// out. It is distinct from a permission failure and never fatal.
	ErrBanNotConfirmed = errors.New("ban not confirmed by external system")
)

// ValidationError lists the form fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid fields: %s", strings.Join(e.Fields, ", "))
}
