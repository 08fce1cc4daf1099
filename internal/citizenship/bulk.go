package citizenship

import (
	"context"

	"bvi/citizenship_backend/internal/notify"
	"bvi/citizenship_backend/internal/permission"
)

// BulkOperation selects the per-item lifecycle operation for RunBulk.
type BulkOperation string

const (
	BulkApprove BulkOperation = "approve"
	BulkDecline BulkOperation = "decline"
)

// BulkItem is one applicant's outcome. Err is nil on success.
type BulkItem struct {
	ApplicantID string
	Err         error
}

// BulkReport aggregates a whole batch.
type BulkReport struct {
	Succeeded int
	Failed    int
	Items     []BulkItem
}

// RunBulk applies one operation across many applicants. The actor is
// authorized once up front; items are processed sequentially in input order,
// and one item's NotFound or AlreadyReviewed never stops the rest. Outcome
// notifications go out only for items whose state actually changed, after
// every mutation has committed.
func (w *Workflow) RunBulk(ctx context.Context, actor Actor, applicantIDs []string, op BulkOperation, reason string) (BulkReport, error) {
	if err := w.policy.Authorize(w.policy.Capability(actor.RoleIDs), permission.CitizenshipManager); err != nil {
		return BulkReport{}, err
	}

	report := BulkReport{Items: make([]BulkItem, 0, len(applicantIDs))}
	var changed []string

	for _, id := range applicantIDs {
		var err error
		switch op {
		case BulkApprove:
			_, err = w.lifecycle.Approve(ctx, id, actor.ID)
		case BulkDecline:
			_, err = w.lifecycle.Decline(ctx, id, actor.ID, reason)
		default:
			return BulkReport{}, &ValidationError{Fields: []string{"operation"}}
		}

		report.Items = append(report.Items, BulkItem{ApplicantID: id, Err: err})
		if err != nil {
			report.Failed++
			continue
		}
		report.Succeeded++
		changed = append(changed, id)

		switch op {
		case BulkApprove:
			w.countApproved()
			w.grantRole(ctx, id)
		case BulkDecline:
			w.countDeclined()
		}
	}

	if len(changed) > 0 {
		kind := notify.KindApproved
		details := notify.Details{}
		if op == BulkDecline {
			kind = notify.KindDeclined
			details.Reason = reason
		}
		for _, r := range w.dispatcher.NotifyBulk(ctx, changed, kind, details) {
			if r.Err != nil && w.metrics != nil {
				w.metrics.DeliveryFailures.Inc()
			}
		}
	}

	w.logger.Info("bulk operation finished",
		"operation", string(op), "actor_id", actor.ID,
		"succeeded", report.Succeeded, "failed", report.Failed)
	return report, nil
}
