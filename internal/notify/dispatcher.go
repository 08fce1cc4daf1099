// Package notify composes outcome messages and delivers them through the
// platform adapter. Delivery failure is always non-fatal: the state mutation
// that triggered a notification has already committed, so a failed send is
// logged and reported as metadata, never propagated as an abort.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Messenger is the outbound delegate implemented by the platform adapter.
// Both methods are fallible and treated as best-effort.
type Messenger interface {
	SendDirectMessage(ctx context.Context, userID, text string) error
	PostToChannel(ctx context.Context, kind ChannelKind, text string) error
}

// DeliveryFailure wraps a failed send with enough context to retry manually.
type DeliveryFailure struct {
	Recipient string
	Channel   ChannelKind
	Err       error
}

func (e *DeliveryFailure) Error() string {
	if e.Channel != "" {
		return fmt.Sprintf("delivery to channel %s failed: %v", e.Channel, e.Err)
	}
	return fmt.Sprintf("delivery to %s failed: %v", e.Recipient, e.Err)
}

func (e *DeliveryFailure) Unwrap() error { return e.Err }

// BulkResult is one recipient's outcome from NotifyBulk.
type BulkResult struct {
	Recipient string
	Err       error
}

const bulkSendLimit = 4

// Dispatcher renders templates and sends them via the Messenger. Every send
// is bounded by timeout so a stalled platform call cannot hold a request
// open indefinitely.
type Dispatcher struct {
	messenger Messenger
	timeout   time.Duration
	logger    *slog.Logger
}

func NewDispatcher(messenger Messenger, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{messenger: messenger, timeout: timeout, logger: logger}
}

// NotifyApplicant DMs the rendered template to one applicant. A failed or
// unreachable recipient yields a *DeliveryFailure return value for the
// caller's metadata; it has already been logged here.
func (d *Dispatcher) NotifyApplicant(ctx context.Context, applicantID string, kind Kind, details Details) error {
	cctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.messenger.SendDirectMessage(cctx, applicantID, Render(kind, details)); err != nil {
		d.logger.Warn("direct message delivery failed",
			"applicant_id", applicantID, "kind", string(kind), "err", err)
		return &DeliveryFailure{Recipient: applicantID, Err: err}
	}
	return nil
}

// NotifyAudit posts a formatted audit entry to a logical channel. A missing
// or unreachable channel is logged and reported, never fatal.
func (d *Dispatcher) NotifyAudit(ctx context.Context, channel ChannelKind, entry AuditEntry) error {
	cctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.messenger.PostToChannel(cctx, channel, entry.String()); err != nil {
		d.logger.Warn("audit post failed",
			"channel", string(channel), "event", entry.Event, "err", err)
		return &DeliveryFailure{Channel: channel, Err: err}
	}
	return nil
}

// Announce posts a rendered announcement (welcome, maintenance, policy
// update) to the announcements channel with the admin's message substituted
// in. Unlike outcome notifications there is no committed mutation behind it,
// so the caller may surface the failure to the admin.
func (d *Dispatcher) Announce(ctx context.Context, kind Kind, message string) error {
	cctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.messenger.PostToChannel(cctx, ChannelAnnouncements, Render(kind, Details{Message: message})); err != nil {
		d.logger.Warn("announcement post failed", "kind", string(kind), "err", err)
		return &DeliveryFailure{Channel: ChannelAnnouncements, Err: err}
	}
	return nil
}

// NotifyBulk fans the single-recipient path out across many recipients with
// bounded parallelism, collecting a per-recipient outcome. One recipient's
// failure never stops the batch. Results are returned in input order.
func (d *Dispatcher) NotifyBulk(ctx context.Context, recipients []string, kind Kind, details Details) []BulkResult {
	results := make([]BulkResult, len(recipients))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkSendLimit)
	for i, id := range recipients {
		i, id := i, id
		g.Go(func() error {
			results[i] = BulkResult{Recipient: id, Err: d.NotifyApplicant(gctx, id, kind, details)}
			return nil
		})
	}
	// Workers never return errors; failures live in the per-recipient slots.
	_ = g.Wait()
	return results
}
