package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMessenger struct {
	mu       sync.Mutex
	dms      []string
	posts    []string
	failFor  map[string]error
	failPost error
}

func (m *stubMessenger) SendDirectMessage(_ context.Context, userID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failFor[userID]; err != nil {
		return err
	}
	m.dms = append(m.dms, userID+": "+text)
	return nil
}

func (m *stubMessenger) PostToChannel(_ context.Context, _ ChannelKind, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPost != nil {
		return m.failPost
	}
	m.posts = append(m.posts, text)
	return nil
}

func TestNotifyApplicantDeliveryFailureIsMetadata(t *testing.T) {
	sendErr := errors.New("user has DMs closed")
	m := &stubMessenger{failFor: map[string]error{"user-1": sendErr}}
	d := NewDispatcher(m, time.Second, nil)

	err := d.NotifyApplicant(context.Background(), "user-1", KindApproved, Details{})
	var failure *DeliveryFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "user-1", failure.Recipient)
	assert.ErrorIs(t, err, sendErr)
}

func TestNotifyAuditFailureNamesChannel(t *testing.T) {
	m := &stubMessenger{failPost: errors.New("channel not found")}
	d := NewDispatcher(m, time.Second, nil)

	err := d.NotifyAudit(context.Background(), ChannelModLog, AuditEntry{Event: "Test"})
	var failure *DeliveryFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, ChannelModLog, failure.Channel)
	assert.Contains(t, failure.Error(), "mod_log")
}

func TestNotifyBulkCollectsPerRecipientOutcomes(t *testing.T) {
	m := &stubMessenger{failFor: map[string]error{"b": errors.New("DMs closed")}}
	d := NewDispatcher(m, time.Second, nil)

	results := d.NotifyBulk(context.Background(), []string{"a", "b", "c"}, KindDeclined, Details{Reason: "wave closed"})
	require.Len(t, results, 3)

	// Input order is preserved regardless of send scheduling.
	assert.Equal(t, "a", results[0].Recipient)
	assert.Equal(t, "b", results[1].Recipient)
	assert.Equal(t, "c", results[2].Recipient)

	assert.NoError(t, results[0].Err)
	assert.NoError(t, results[2].Err)
	var failure *DeliveryFailure
	assert.ErrorAs(t, results[1].Err, &failure)
}

func TestAnnouncePostsRenderedTemplateWithMessage(t *testing.T) {
	m := &stubMessenger{}
	d := NewDispatcher(m, time.Second, nil)

	require.NoError(t, d.Announce(context.Background(), KindMaintenance, "Downtime Saturday 02:00 UTC"))
	require.Len(t, m.posts, 1)
	assert.Contains(t, m.posts[0], "System Maintenance Notice")
	assert.Contains(t, m.posts[0], "Downtime Saturday 02:00 UTC")
}

func TestAnnounceFailureNamesAnnouncementsChannel(t *testing.T) {
	m := &stubMessenger{failPost: errors.New("channel not found")}
	d := NewDispatcher(m, time.Second, nil)

	err := d.Announce(context.Background(), KindPolicyUpdate, "new rules")
	var failure *DeliveryFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, ChannelAnnouncements, failure.Channel)
}

func TestNotifyBulkEmptyRecipients(t *testing.T) {
	d := NewDispatcher(&stubMessenger{}, time.Second, nil)
	assert.Empty(t, d.NotifyBulk(context.Background(), nil, KindApproved, Details{}))
}

func TestRenderDeclineIncludesReasonOnlyWhenPresent(t *testing.T) {
	withReason := Render(KindDeclined, Details{Reason: "incomplete answers"})
	assert.Contains(t, withReason, "Reason: incomplete answers")

	without := Render(KindDeclined, Details{})
	assert.NotContains(t, without, "Reason:")
}

func TestAuditEntryOmitsEmptyFields(t *testing.T) {
	entry := AuditEntry{Event: "Citizenship Application Approved", ApplicantID: "user-1", Reviewer: "admin-1"}
	s := entry.String()
	assert.Contains(t, s, "Applicant ID: user-1")
	assert.Contains(t, s, "Reviewed by: admin-1")
	assert.NotContains(t, s, "Roblox Username")
	assert.NotContains(t, s, "Place ID")
}
