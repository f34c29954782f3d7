package interview_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/interview"
)

func TestRescheduleRoundTripAndLimit(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	original := future(24 * time.Hour)
	iv := h.create(t, "hr", original)

	firstMove := future(48 * time.Hour)
	pending, err := h.svc.RequestReschedule(ctx, candidate, iv.ID, interview.RescheduleInput{NewTime: firstMove, Reason: "exam"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRescheduled, pending.Status)
	assert.Equal(t, 1, pending.RescheduleCount)
	assert.Equal(t, domain.RequestedByCandidate, pending.RescheduleRequestedBy)
	require.NotNil(t, pending.OldScheduledAt)
	assert.True(t, pending.OldScheduledAt.Equal(original))
	assert.Equal(t, domain.NotifyRescheduleRequested, h.notes.last().Type)
	assert.Equal(t, hr.UID, h.notes.last().ReceiverID)

	// the candidate cannot approve their own request
	_, err = h.svc.Accept(ctx, candidate, iv.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = h.svc.AcceptReschedule(ctx, candidate, iv.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)
	_, err = h.svc.AcceptReschedule(ctx, outsider, iv.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)

	moved, err := h.svc.AcceptReschedule(ctx, hr, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, moved.Status)
	assert.True(t, moved.ScheduledStart.Equal(firstMove))
	assert.True(t, moved.ScheduledEnd.Equal(firstMove.Add(30*time.Minute)))

	ev, ok := h.calendar.event(iv.CalendarEventID)
	require.True(t, ok)
	assert.True(t, ev.Start.Equal(firstMove))

	// an interviewer proposal is accepted by the candidate
	secondMove := future(72 * time.Hour)
	pending, err = h.svc.RequestReschedule(ctx, hr, iv.ID, interview.RescheduleInput{NewTime: secondMove})
	require.NoError(t, err)
	assert.Equal(t, domain.RequestedByInterviewer, pending.RescheduleRequestedBy)
	assert.Equal(t, 2, pending.RescheduleCount)

	moved, err = h.svc.Accept(ctx, candidate, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, moved.Status)
	assert.True(t, moved.ScheduledStart.Equal(secondMove))

	_, err = h.svc.RequestReschedule(ctx, candidate, iv.ID, interview.RescheduleInput{NewTime: future(96 * time.Hour)})
	require.ErrorIs(t, err, domain.ErrLimitExceeded)

	got, err := h.svc.Get(ctx, candidate, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got.Status)
	assert.Equal(t, domain.RescheduleLimit, got.RescheduleCount)
}

func TestRescheduleRequestValidation(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	iv := h.create(t, "hm", future(24*time.Hour))

	_, err := h.svc.RequestReschedule(ctx, candidate, iv.ID, interview.RescheduleInput{NewTime: time.Now().Add(-time.Minute)})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = h.svc.RequestReschedule(ctx, stranger, iv.ID, interview.RescheduleInput{NewTime: future(time.Hour)})
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = h.svc.RequestReschedule(ctx, candidate, iv.ID, interview.RescheduleInput{NewTime: future(time.Hour)})
	require.NoError(t, err)

	_, err = h.svc.RequestReschedule(ctx, candidate, iv.ID, interview.RescheduleInput{NewTime: future(2 * time.Hour)})
	require.ErrorIs(t, err, domain.ErrConflict, "a request is already pending")

	_, err = h.svc.AcceptReschedule(ctx, hr, h.create(t, "hr", future(time.Hour)).ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestRejectRescheduleRestoresPreviousSlot(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	original := future(24 * time.Hour)
	iv := h.create(t, "hr", original)

	_, err := h.svc.RequestReschedule(ctx, candidate, iv.ID, interview.RescheduleInput{NewTime: future(30 * time.Hour)})
	require.NoError(t, err)

	_, err = h.svc.RejectReschedule(ctx, candidate, iv.ID, "")
	require.ErrorIs(t, err, domain.ErrForbidden)

	back, err := h.svc.RejectReschedule(ctx, hr, iv.ID, "panel unavailable")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, back.Status)
	assert.True(t, back.ScheduledStart.Equal(original))
	assert.Equal(t, "panel unavailable", back.RejectReason)
	assert.Equal(t, 1, back.RescheduleCount)

	sent := h.notes.last()
	assert.Equal(t, domain.NotifyRescheduleRejected, sent.Type)
	assert.Equal(t, "panel unavailable", sent.Metadata["reject_reason"])
}

func TestRejectRescheduleWithoutPriorSlotCancels(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	iv := h.create(t, "ai", time.Time{})

	pending, err := h.svc.RequestReschedule(ctx, candidate, iv.ID, interview.RescheduleInput{NewTime: future(6 * time.Hour)})
	require.NoError(t, err)
	assert.Nil(t, pending.OldScheduledAt)

	out, err := h.svc.RejectReschedule(ctx, hr, iv.ID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, out.Status)
	require.NotNil(t, out.CancelledAt)

	app := h.application(t)
	assert.Empty(t, app.InterviewIDs)
	assert.Equal(t, domain.ApplicationInReview, app.Status)
}

func TestCalendarFailureBlocksRescheduleCommit(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	original := future(24 * time.Hour)
	iv := h.create(t, "hr", original)

	_, err := h.svc.RequestReschedule(ctx, candidate, iv.ID, interview.RescheduleInput{NewTime: future(36 * time.Hour)})
	require.NoError(t, err)

	h.calendar.mu.Lock()
	h.calendar.updateErr = errors.New("calendar backend unavailable")
	h.calendar.mu.Unlock()

	_, err = h.svc.AcceptReschedule(ctx, hr, iv.ID)
	require.ErrorIs(t, err, domain.ErrDependencyFailure)

	got, err := h.svc.Get(ctx, hr, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRescheduled, got.Status)
	assert.True(t, got.ScheduledStart.Equal(original))
}

func TestCalendarTimeoutBlocksRescheduleCommit(t *testing.T) {
	t.Parallel()

	h := newHarness(t, interview.WithDependencyTimeout(50*time.Millisecond))
	ctx := context.Background()
	iv := h.create(t, "hm", future(24*time.Hour))

	_, err := h.svc.RequestReschedule(ctx, hr, iv.ID, interview.RescheduleInput{NewTime: future(36 * time.Hour)})
	require.NoError(t, err)

	h.calendar.mu.Lock()
	h.calendar.block = true
	h.calendar.mu.Unlock()

	_, err = h.svc.Accept(ctx, candidate, iv.ID)
	require.ErrorIs(t, err, domain.ErrDependencyTimeout)

	got, err := h.svc.Get(ctx, candidate, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRescheduled, got.Status)
}
