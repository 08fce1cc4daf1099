package citizenship

import "context"

// Store is the keyed storage contract for application records, one per
// applicant. Implementations must make every method atomic with respect to
// concurrent callers, and Mutate must serialize read-modify-write sequences
// per applicant key: two concurrent reviews of the same application cannot
// both observe a Pending record.
//
// Interface-driven so the in-memory reference store can be swapped for
// postgres or redis without touching lifecycle logic.
type Store interface {
	// Put inserts or overwrites the record keyed by ApplicantID.
	Put(ctx context.Context, app Application) error

	// Get returns the current record or ErrNotFound.
	Get(ctx context.Context, applicantID string) (Application, error)

	// ListByStatus returns all records matching status. Order is unspecified.
	ListByStatus(ctx context.Context, status Status) ([]Application, error)

	// CreateIfNoPending stores a fresh record unless a Pending record already
	// exists for the same applicant, in which case it returns
	// ErrDuplicatePending. A terminal record is superseded.
	CreateIfNoPending(ctx context.Context, app Application) error

	// Mutate applies fn to the current record under the store's per-key write
	// lock and persists the result. Returns ErrNotFound for an absent key and
	// propagates any error from fn without persisting.
	Mutate(ctx context.Context, applicantID string, fn func(Application) (Application, error)) (Application, error)
}
