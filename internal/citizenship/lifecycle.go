package citizenship

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// FieldLimits carries per-field maximum lengths for form validation.
type FieldLimits struct {
	DisplayName    int
	RobloxUsername int
	Reason         int
	CriminalRecord int
	AdditionalInfo int
}

// DefaultFieldLimits mirrors the limits enforced by the Discord modal.
func DefaultFieldLimits() FieldLimits {
	return FieldLimits{
		DisplayName:    100,
		RobloxUsername: 50,
		Reason:         1000,
		CriminalRecord: 500,
		AdditionalInfo: 500,
	}
}

// Lifecycle owns the application state machine: submit creates a Pending
// record, approve/decline move it to a terminal status exactly once. All
// notification and role-grant side effects belong to Workflow, not here.
type Lifecycle struct {
	store  Store
	limits FieldLimits
	now    func() time.Time
}

func NewLifecycle(store Store, limits FieldLimits) *Lifecycle {
	return &Lifecycle{store: store, limits: limits, now: time.Now}
}

// Submit validates the form fields, then creates a fresh Pending record.
// Validation runs before the duplicate check, so a malformed re-submission is
// reported as a ValidationError rather than ErrDuplicatePending. A previous
// terminal record for the same applicant is superseded.
func (l *Lifecycle) Submit(ctx context.Context, applicantID string, fields FormFields) (Application, error) {
	fields = trimFields(fields)
	if err := l.validate(fields); err != nil {
		return Application{}, err
	}

	app := Application{
		ID:             uuid.NewString(),
		ApplicantID:    applicantID,
		DisplayName:    fields.DisplayName,
		RobloxUsername: fields.RobloxUsername,
		Reason:         fields.Reason,
		CriminalRecord: fields.CriminalRecord,
		AdditionalInfo: fields.AdditionalInfo,
		Status:         StatusPending,
		SubmittedAt:    l.now().UTC(),
	}
	if err := l.store.CreateIfNoPending(ctx, app); err != nil {
		return Application{}, err
	}
	return app, nil
}

// Approve moves a Pending record to Approved. Fails with ErrNotFound for an
// unknown applicant and ErrAlreadyReviewed for a terminal record; terminal
// states are sticky.
func (l *Lifecycle) Approve(ctx context.Context, applicantID, reviewerID string) (Application, error) {
	return l.review(ctx, applicantID, reviewerID, StatusApproved, "")
}

// Decline moves a Pending record to Declined. The reason may be empty; it is
// recorded verbatim and never carried over from a previous decline.
func (l *Lifecycle) Decline(ctx context.Context, applicantID, reviewerID, reason string) (Application, error) {
	return l.review(ctx, applicantID, reviewerID, StatusDeclined, reason)
}

// StatusOf is a read-only projection of the applicant's current record.
func (l *Lifecycle) StatusOf(ctx context.Context, applicantID string) (Application, error) {
	return l.store.Get(ctx, applicantID)
}

// review performs the single permitted terminal transition under the store's
// per-key lock, so concurrent reviews cannot both win.
func (l *Lifecycle) review(ctx context.Context, applicantID, reviewerID string, to Status, reason string) (Application, error) {
	return l.store.Mutate(ctx, applicantID, func(app Application) (Application, error) {
		if app.Status != StatusPending {
			return app, ErrAlreadyReviewed
		}
		now := l.now().UTC()
		app.Status = to
		app.ReviewedAt = &now
		app.ReviewedBy = reviewerID
		if to == StatusDeclined {
			app.DeclineReason = reason
		}
		return app, nil
	})
}

func (l *Lifecycle) validate(fields FormFields) error {
	var bad []string
	// Limits count characters, not bytes, matching what the form enforces.
	check := func(name, value string, max int, required bool) {
		if required && value == "" {
			bad = append(bad, name)
			return
		}
		if max > 0 && utf8.RuneCountInString(value) > max {
			bad = append(bad, name)
		}
	}
	check("display_name", fields.DisplayName, l.limits.DisplayName, true)
	check("roblox_username", fields.RobloxUsername, l.limits.RobloxUsername, true)
	check("reason", fields.Reason, l.limits.Reason, true)
	check("criminal_record", fields.CriminalRecord, l.limits.CriminalRecord, true)
	check("additional_info", fields.AdditionalInfo, l.limits.AdditionalInfo, false)
	if len(bad) > 0 {
		return &ValidationError{Fields: bad}
	}
	return nil
}

func trimFields(f FormFields) FormFields {
	f.DisplayName = strings.TrimSpace(f.DisplayName)
	f.RobloxUsername = strings.TrimSpace(f.RobloxUsername)
	f.Reason = strings.TrimSpace(f.Reason)
	f.CriminalRecord = strings.TrimSpace(f.CriminalRecord)
	f.AdditionalInfo = strings.TrimSpace(f.AdditionalInfo)
	return f
}
