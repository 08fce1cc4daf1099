package citizenship_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bvi/citizenship_backend/internal/citizenship"
	"bvi/citizenship_backend/internal/permission"
)

func TestRunBulkApproveMixedBatch(t *testing.T) {
	ctx := context.Background()
	fx := newWorkflowFixture(t)

	for _, id := range []string{"a", "b", "c"} {
		_, err := fx.workflow.Submit(ctx, citizenship.Actor{ID: id}, validFields())
		require.NoError(t, err)
	}
	// b is already terminal before the batch runs.
	declined, err := fx.workflow.Decline(ctx, managerActor, "b", "prior decision")
	require.NoError(t, err)

	report, err := fx.workflow.RunBulk(ctx, managerActor, []string{"a", "b", "c"}, citizenship.BulkApprove, "")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)

	// Items come back in input order with per-item outcomes.
	require.Len(t, report.Items, 3)
	assert.Equal(t, "a", report.Items[0].ApplicantID)
	assert.NoError(t, report.Items[0].Err)
	assert.Equal(t, "b", report.Items[1].ApplicantID)
	assert.ErrorIs(t, report.Items[1].Err, citizenship.ErrAlreadyReviewed)
	assert.Equal(t, "c", report.Items[2].ApplicantID)
	assert.NoError(t, report.Items[2].Err)

	// b's terminal record is untouched by the failed item.
	got, err := fx.workflow.StatusOf(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, citizenship.StatusDeclined, got.Status)
	require.NotNil(t, got.ReviewedAt)
	assert.True(t, got.ReviewedAt.Equal(*declined.ReviewedAt))

	// Only the changed applicants get roles and outcome DMs.
	assert.ElementsMatch(t, []string{"a", "c"}, fx.granter.granted)
	assert.Equal(t, 2, fx.messenger.dmCount("a")) // received + approved
	assert.Equal(t, 2, fx.messenger.dmCount("b")) // received + prior decline only
	assert.Equal(t, 2, fx.messenger.dmCount("c"))
}

func TestRunBulkDeclineSharesReason(t *testing.T) {
	ctx := context.Background()
	fx := newWorkflowFixture(t)

	for _, id := range []string{"a", "b"} {
		_, err := fx.workflow.Submit(ctx, citizenship.Actor{ID: id}, validFields())
		require.NoError(t, err)
	}

	report, err := fx.workflow.RunBulk(ctx, managerActor, []string{"a", "b"}, citizenship.BulkDecline, "wave closed")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Succeeded)

	for _, id := range []string{"a", "b"} {
		got, err := fx.workflow.StatusOf(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, citizenship.StatusDeclined, got.Status)
		assert.Equal(t, "wave closed", got.DeclineReason)
	}
	assert.Empty(t, fx.granter.granted)
}

func TestRunBulkUnknownApplicantsDoNotStopBatch(t *testing.T) {
	ctx := context.Background()
	fx := newWorkflowFixture(t)

	_, err := fx.workflow.Submit(ctx, citizenship.Actor{ID: "a"}, validFields())
	require.NoError(t, err)

	report, err := fx.workflow.RunBulk(ctx, managerActor, []string{"ghost", "a"}, citizenship.BulkApprove, "")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.ErrorIs(t, report.Items[0].Err, citizenship.ErrNotFound)
	assert.NoError(t, report.Items[1].Err)
}

func TestRunBulkAuthorizesOnceUpFront(t *testing.T) {
	ctx := context.Background()
	fx := newWorkflowFixture(t)

	_, err := fx.workflow.Submit(ctx, citizenship.Actor{ID: "a"}, validFields())
	require.NoError(t, err)

	var denied *permission.DeniedError
	_, err = fx.workflow.RunBulk(ctx, plainActor, []string{"a"}, citizenship.BulkApprove, "")
	require.ErrorAs(t, err, &denied)

	// Nothing was touched.
	got, err := fx.workflow.StatusOf(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, citizenship.StatusPending, got.Status)
}

func TestRunBulkRejectsUnknownOperation(t *testing.T) {
	ctx := context.Background()
	fx := newWorkflowFixture(t)

	var invalid *citizenship.ValidationError
	_, err := fx.workflow.RunBulk(ctx, managerActor, []string{"a"}, citizenship.BulkOperation("purge"), "")
	assert.ErrorAs(t, err, &invalid)
}
