package citizenship

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"bvi/citizenship_backend/internal/metrics"
	"bvi/citizenship_backend/internal/notify"
	"bvi/citizenship_backend/internal/permission"
	"bvi/citizenship_backend/internal/stats"
)

// RoleGranter assigns the citizenship role on the platform. Fallible and
// non-fatal: an approval stands even if the grant fails.
type RoleGranter interface {
	GrantRole(ctx context.Context, userID string) error
}

// BanDelegate executes a ban against the external Roblox place. A failed or
// timed-out call surfaces as ErrBanNotConfirmed, never as a crash.
type BanDelegate interface {
	Ban(ctx context.Context, robloxUsername, placeID, reason string) error
}

// Workflow is the single entry point for inbound requests. Each operation
// runs permission checks first, commits the state mutation second, and only
// then performs network side effects (role grant, notifications, external
// ban), so a suspension on I/O can never interleave with the mutation.
type Workflow struct {
	lifecycle  *Lifecycle
	policy     *permission.Policy
	dispatcher *notify.Dispatcher

	roleGranter RoleGranter
	banDelegate BanDelegate
	tracker     *stats.Tracker
	metrics     *metrics.Metrics
	logger      *slog.Logger
	callTimeout time.Duration
}

type Option func(*Workflow)

func WithRoleGranter(g RoleGranter) Option {
	return func(w *Workflow) { w.roleGranter = g }
}

func WithBanDelegate(b BanDelegate) Option {
	return func(w *Workflow) { w.banDelegate = b }
}

func WithTracker(t *stats.Tracker) Option {
	return func(w *Workflow) { w.tracker = t }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Workflow) { w.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(w *Workflow) { w.logger = l }
}

// WithCallTimeout bounds every outbound network call made by the workflow.
func WithCallTimeout(d time.Duration) Option {
	return func(w *Workflow) { w.callTimeout = d }
}

func NewWorkflow(lifecycle *Lifecycle, policy *permission.Policy, dispatcher *notify.Dispatcher, opts ...Option) *Workflow {
	w := &Workflow{
		lifecycle:   lifecycle,
		policy:      policy,
		dispatcher:  dispatcher,
		logger:      slog.Default(),
		callTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Submit creates a Pending application for the actor themselves. No
// capability is required to apply. Once the record is committed the
// confirmation DM and the log-channel post are sent best-effort.
func (w *Workflow) Submit(ctx context.Context, actor Actor, fields FormFields) (Application, error) {
	app, err := w.lifecycle.Submit(ctx, actor.ID, fields)
	if err != nil {
		return Application{}, err
	}

	w.countSubmitted()
	w.logger.Info("application submitted", "applicant_id", app.ApplicantID, "application_id", app.ID)

	w.notifyApplicant(ctx, app.ApplicantID, notify.KindReceived, notify.Details{})
	w.notifyAudit(ctx, notify.ChannelCitizenshipLog, notify.AuditEntry{
		Event:          "New Citizenship Application",
		ApplicantID:    app.ApplicantID,
		DisplayName:    app.DisplayName,
		RobloxUsername: app.RobloxUsername,
		Reason:         truncate(app.Reason, 500),
	})
	return app, nil
}

// Approve transitions the applicant's Pending record to Approved, then grants
// the citizenship role and notifies the applicant and the status channel.
// Requires CitizenshipManager or better.
func (w *Workflow) Approve(ctx context.Context, actor Actor, applicantID string) (Application, error) {
	if err := w.policy.Authorize(w.policy.Capability(actor.RoleIDs), permission.CitizenshipManager); err != nil {
		return Application{}, err
	}

	app, err := w.lifecycle.Approve(ctx, applicantID, actor.ID)
	if err != nil {
		return Application{}, err
	}

	w.countApproved()
	w.logger.Info("application approved", "applicant_id", applicantID, "reviewer_id", actor.ID)

	w.grantRole(ctx, applicantID)
	w.notifyApplicant(ctx, applicantID, notify.KindApproved, notify.Details{ReviewedBy: actor.ID})
	w.notifyAudit(ctx, notify.ChannelCitizenshipStatus, notify.AuditEntry{
		Event:          "Citizenship Application Approved",
		ApplicantID:    applicantID,
		DisplayName:    app.DisplayName,
		RobloxUsername: app.RobloxUsername,
		Reviewer:       actor.ID,
	})
	return app, nil
}

// Decline transitions the applicant's Pending record to Declined with an
// optional reason, then notifies the applicant and the status channel.
// Requires CitizenshipManager or better.
func (w *Workflow) Decline(ctx context.Context, actor Actor, applicantID, reason string) (Application, error) {
	if err := w.policy.Authorize(w.policy.Capability(actor.RoleIDs), permission.CitizenshipManager); err != nil {
		return Application{}, err
	}

	app, err := w.lifecycle.Decline(ctx, applicantID, actor.ID, reason)
	if err != nil {
		return Application{}, err
	}

	w.countDeclined()
	w.logger.Info("application declined", "applicant_id", applicantID, "reviewer_id", actor.ID)

	w.notifyApplicant(ctx, applicantID, notify.KindDeclined, notify.Details{Reason: reason, ReviewedBy: actor.ID})
	w.notifyAudit(ctx, notify.ChannelCitizenshipStatus, notify.AuditEntry{
		Event:       "Citizenship Application Declined",
		ApplicantID: applicantID,
		DisplayName: app.DisplayName,
		Reviewer:    actor.ID,
		Reason:      reason,
	})
	return app, nil
}

// Ban executes an external-place ban against the applicant's recorded Roblox
// username. Admin only; managers are refused regardless of the capability
// ordering. Delegate failure is reported as ErrBanNotConfirmed, distinct from
// a permission failure, and leaves no state change behind.
func (w *Workflow) Ban(ctx context.Context, actor Actor, applicantID, placeID, reason string) error {
	if err := w.policy.AuthorizeBan(w.policy.Capability(actor.RoleIDs)); err != nil {
		return err
	}
	if w.banDelegate == nil {
		return fmt.Errorf("%w: no ban delegate configured", ErrBanNotConfirmed)
	}

	app, err := w.lifecycle.StatusOf(ctx, applicantID)
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, w.callTimeout)
	err = w.banDelegate.Ban(cctx, app.RobloxUsername, placeID, reason)
	cancel()
	if err != nil {
		if w.metrics != nil {
			w.metrics.BansFailed.Inc()
		}
		w.logger.Error("external ban call failed",
			"applicant_id", applicantID, "roblox_username", app.RobloxUsername, "place_id", placeID, "err", err)
		return fmt.Errorf("%w: %v", ErrBanNotConfirmed, err)
	}

	if w.metrics != nil {
		w.metrics.BansExecuted.Inc()
	}
	w.logger.Info("external ban executed",
		"applicant_id", applicantID, "roblox_username", app.RobloxUsername, "place_id", placeID)

	w.notifyAudit(ctx, notify.ChannelModLog, notify.AuditEntry{
		Event:          "Roblox Ban Executed",
		ApplicantID:    applicantID,
		DisplayName:    app.DisplayName,
		RobloxUsername: app.RobloxUsername,
		Reviewer:       actor.ID,
		Reason:         reason,
		PlaceID:        placeID,
	})
	return nil
}

// Announce posts a server announcement (welcome, maintenance or policy
// update) to the announcements channel. Admin only, like the original
// announcement commands. No state is mutated, so a failed post is returned
// for the admin to see rather than swallowed.
func (w *Workflow) Announce(ctx context.Context, actor Actor, kind notify.Kind, message string) error {
	if err := w.policy.Authorize(w.policy.Capability(actor.RoleIDs), permission.Admin); err != nil {
		return err
	}
	if err := w.dispatcher.Announce(ctx, kind, message); err != nil {
		if w.metrics != nil {
			w.metrics.DeliveryFailures.Inc()
		}
		return err
	}
	w.logger.Info("announcement posted", "kind", string(kind), "actor_id", actor.ID)
	return nil
}

// StatusOf lets an applicant check their own record. Read-only, no
// capability required.
func (w *Workflow) StatusOf(ctx context.Context, applicantID string) (Application, error) {
	app, err := w.lifecycle.StatusOf(ctx, applicantID)
	if err != nil {
		return Application{}, err
	}
	if w.tracker != nil {
		w.tracker.RecordStatusCheck()
	}
	return app, nil
}

// ResendOutcome re-sends the outcome notification for an already-reviewed
// record, recovering DMs lost to a shutdown mid-batch. It never mutates
// state; a Pending record is refused.
func (w *Workflow) ResendOutcome(ctx context.Context, actor Actor, applicantID string) error {
	if err := w.policy.Authorize(w.policy.Capability(actor.RoleIDs), permission.CitizenshipManager); err != nil {
		return err
	}
	app, err := w.lifecycle.StatusOf(ctx, applicantID)
	if err != nil {
		return err
	}
	switch app.Status {
	case StatusApproved:
		return w.dispatcher.NotifyApplicant(ctx, applicantID, notify.KindApproved, notify.Details{ReviewedBy: app.ReviewedBy})
	case StatusDeclined:
		return w.dispatcher.NotifyApplicant(ctx, applicantID, notify.KindDeclined, notify.Details{Reason: app.DeclineReason, ReviewedBy: app.ReviewedBy})
	default:
		return ErrNotFound
	}
}

// grantRole signals the citizenship role grant. The approval already stands;
// a failed grant is logged for manual follow-up.
func (w *Workflow) grantRole(ctx context.Context, userID string) {
	if w.roleGranter == nil {
		return
	}
	cctx, cancel := context.WithTimeout(ctx, w.callTimeout)
	defer cancel()
	if err := w.roleGranter.GrantRole(cctx, userID); err != nil {
		w.logger.Error("role grant failed", "user_id", userID, "err", err)
	}
}

func (w *Workflow) notifyApplicant(ctx context.Context, applicantID string, kind notify.Kind, details notify.Details) {
	if err := w.dispatcher.NotifyApplicant(ctx, applicantID, kind, details); err != nil && w.metrics != nil {
		w.metrics.DeliveryFailures.Inc()
	}
}

func (w *Workflow) notifyAudit(ctx context.Context, channel notify.ChannelKind, entry notify.AuditEntry) {
	if err := w.dispatcher.NotifyAudit(ctx, channel, entry); err != nil && w.metrics != nil {
		w.metrics.DeliveryFailures.Inc()
	}
}

func (w *Workflow) countSubmitted() {
	if w.tracker != nil {
		w.tracker.RecordSubmitted()
	}
	if w.metrics != nil {
		w.metrics.ApplicationsSubmitted.Inc()
	}
}

func (w *Workflow) countApproved() {
	if w.tracker != nil {
		w.tracker.RecordApproved()
	}
	if w.metrics != nil {
		w.metrics.ApplicationsApproved.Inc()
	}
}

func (w *Workflow) countDeclined() {
	if w.tracker != nil {
		w.tracker.RecordDeclined()
	}
	if w.metrics != nil {
		w.metrics.ApplicationsDeclined.Inc()
	}
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}
