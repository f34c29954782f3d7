package interview_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/interview"
)

func TestCreateSchedulesAndLinksApplication(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	start := future(48 * time.Hour)

	iv := h.create(t, "Whr", start)

	assert.Equal(t, domain.ModeHR, iv.Mode)
	assert.Equal(t, domain.StatusScheduled, iv.Status)
	assert.Equal(t, "acme", iv.CompanyID)
	assert.Equal(t, "cand@example.com", iv.CandidateEmail)
	assert.Equal(t, hr.UID, iv.InterviewerID)
	assert.True(t, iv.ScheduledStart.Equal(start))
	assert.True(t, iv.ScheduledEnd.Equal(start.Add(30*time.Minute)))
	assert.NotEmpty(t, iv.CalendarEventID)

	app := h.application(t)
	assert.Equal(t, domain.ApplicationInterviewScheduled, app.Status)
	assert.Equal(t, []string{iv.ID}, app.InterviewIDs)

	sent := h.notes.last()
	assert.Equal(t, domain.NotifyInterviewScheduled, sent.Type)
	assert.Equal(t, "cand-1", sent.ReceiverID)
	assert.Equal(t, iv.ID, sent.Metadata["interview_id"])
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	cases := []struct {
		name string
		who  domain.Identity
		in   interview.CreateInput
		want error
	}{
		{"anonymous", domain.Identity{}, h.input("hr", time.Time{}), domain.ErrUnauthenticated},
		{"candidate", candidate, h.input("hr", time.Time{}), domain.ErrForbidden},
		{"other company", outsider, h.input("hr", time.Time{}), domain.ErrForbidden},
		{"unknown mode", hr, h.input("video", time.Time{}), domain.ErrInvalidInput},
		{"past start", hr, h.input("hm", time.Now().Add(-time.Hour)), domain.ErrInvalidInput},
		{"missing job", hr, interview.CreateInput{ApplicationID: h.appID, Mode: "ai"}, domain.ErrInvalidInput},
		{"unknown job", hr, interview.CreateInput{JobID: "nope", ApplicationID: h.appID, Mode: "ai"}, domain.ErrNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.svc.Create(ctx, tc.who, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	assert.Empty(t, h.application(t).InterviewIDs)
}

func TestOneActiveInterviewPerMode(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	first := h.create(t, "hr", future(24*time.Hour))

	_, err := h.svc.Create(ctx, hr, h.input("HR", future(72*time.Hour)))
	require.ErrorIs(t, err, domain.ErrConflict)

	// a different mode is independent
	h.create(t, "hm", future(24*time.Hour))

	_, err = h.svc.Cancel(ctx, hr, first.ID, "slot no longer available")
	require.NoError(t, err)

	again := h.create(t, "hr", future(96*time.Hour))
	assert.NotEqual(t, first.ID, again.ID)
}

func TestAIQuotaCountsEveryNonCancelledInterview(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	// a cancelled AI interview does not use the quota
	dropped := h.create(t, "ai", time.Time{})
	_, err := h.svc.Cancel(ctx, hr, dropped.ID, "")
	require.NoError(t, err)

	for i := 0; i < domain.DefaultMaxAIInterviews; i++ {
		iv := h.create(t, "Wai", time.Time{})
		h.runToCompletion(t, iv.ID, 80)
	}

	q, err := h.svc.CheckAIQuota(ctx, hr, h.appID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuotaStatus{Allowed: false, Current: 3, Max: 3}, q)

	_, err = h.svc.Create(ctx, hr, h.input("ai", time.Time{}))
	require.ErrorIs(t, err, domain.ErrLimitExceeded)

	// human rounds are not capped
	h.create(t, "hm", future(24*time.Hour))
}

func TestAIQuotaFollowsCompanySettings(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.store.Settings().Upsert(ctx, domain.CompanySettings{
		CompanyID:           "acme",
		MaxAIInterviews:     1,
		ReminderHoursBefore: 24,
	}))

	h.create(t, "ai", time.Time{})

	q, err := h.svc.Quota().CanScheduleAIInterview(ctx, h.appID, "acme")
	require.NoError(t, err)
	assert.False(t, q.Allowed)
	assert.Equal(t, 1, q.Max)

	// the quota is checked before the duplicate rule
	_, err = h.svc.Create(ctx, hr, h.input("ai", time.Time{}))
	assert.ErrorIs(t, err, domain.ErrLimitExceeded)

	_, err = h.svc.CheckAIQuota(ctx, outsider, h.appID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAIQuotaWithOneCompletedAndOneScheduled(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.store.Settings().Upsert(ctx, domain.CompanySettings{
		CompanyID:           "acme",
		MaxAIInterviews:     2,
		ReminderHoursBefore: 24,
	}))

	done := h.create(t, "ai", time.Time{})
	assert.Equal(t, domain.StatusCompleted, h.runToCompletion(t, done.ID, 70).Status)

	scheduled := h.create(t, "ai", time.Time{})
	assert.Equal(t, domain.StatusScheduled, scheduled.Status)

	q, err := h.svc.CheckAIQuota(ctx, hr, h.appID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuotaStatus{Allowed: false, Current: 2, Max: 2}, q)

	_, err = h.svc.Create(ctx, hr, h.input("ai", time.Time{}))
	require.ErrorIs(t, err, domain.ErrLimitExceeded)

	iv, err := h.svc.Create(ctx, hr, h.input("hr", future(24*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, domain.ModeHR, iv.Mode)
}

func TestAcceptRules(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	iv := h.create(t, "hr", future(24*time.Hour))

	_, err := h.svc.Accept(ctx, stranger, iv.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = h.svc.Accept(ctx, hr, iv.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)

	accepted, err := h.svc.Accept(ctx, candidate, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, accepted.Status)
	require.NotNil(t, accepted.CandidateAcceptedAt)
	assert.Equal(t, domain.NotifyInterviewAccepted, h.notes.last().Type)
	assert.Equal(t, hr.UID, h.notes.last().ReceiverID)

	_, err = h.svc.Accept(ctx, candidate, iv.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = h.svc.Accept(ctx, candidate, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIllegalTransitions(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	iv := h.create(t, "ai", time.Time{})

	_, err := h.svc.Start(ctx, candidate, iv.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition, "start needs a confirmed interview")

	_, err = h.svc.Complete(ctx, hr, iv.ID, interview.CompleteInput{OverallScore: 70})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	done := h.runToCompletion(t, iv.ID, 70)
	assert.Equal(t, domain.StatusCompleted, done.Status)

	_, err = h.svc.Complete(ctx, hr, iv.ID, interview.CompleteInput{OverallScore: 70})
	require.ErrorIs(t, err, domain.ErrConflict)

	_, err = h.svc.Accept(ctx, candidate, iv.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = h.svc.Cancel(ctx, hr, iv.ID, "")
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = h.svc.RequestReschedule(ctx, candidate, iv.ID, interview.RescheduleInput{NewTime: future(time.Hour)})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	got, err := h.svc.Get(ctx, hr, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
}

func TestStartRequiresParticipant(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	iv := h.create(t, "hm", future(24*time.Hour))
	_, err := h.svc.Accept(ctx, candidate, iv.ID)
	require.NoError(t, err)

	_, err = h.svc.Start(ctx, stranger, iv.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)
	_, err = h.svc.Start(ctx, outsider, iv.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)
	_, err = h.svc.Start(ctx, domain.SystemIdentity(), iv.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)

	started, err := h.svc.Start(ctx, hr, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, started.Status)
	require.NotNil(t, started.StartedAt)
	assert.Equal(t, domain.NotifyInterviewStarted, h.notes.last().Type)
	assert.Equal(t, "cand-1", h.notes.last().ReceiverID)
}

func TestCompleteValidatesScore(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	iv := h.create(t, "ai", time.Time{})

	_, err := h.svc.Complete(ctx, hr, iv.ID, interview.CompleteInput{OverallScore: 101})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = h.svc.Complete(ctx, candidate, iv.ID, interview.CompleteInput{OverallScore: 50})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAutoRejectBelowThreshold(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.Settings().Upsert(ctx, domain.CompanySettings{
		CompanyID:            "acme",
		MaxAIInterviews:      3,
		ReminderHoursBefore:  24,
		AutoRejectBelowScore: 60,
	}))

	passed := h.create(t, "ai", time.Time{})
	h.runToCompletion(t, passed.ID, 60)
	assert.Equal(t, domain.ApplicationInterviewScheduled, h.application(t).Status)

	failed := h.create(t, "ai", time.Time{})
	done := h.runToCompletion(t, failed.ID, 42.5)
	require.NotNil(t, done.OverallScore)
	assert.InDelta(t, 42.5, *done.OverallScore, 0.001)

	assert.Equal(t, domain.ApplicationRejected, h.application(t).Status)
	assert.Contains(t, h.notes.types(), domain.NotifyApplicationRejected)
}

func TestCancelRecomputesApplicationStatus(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	hrRound := h.create(t, "hr", future(24*time.Hour))
	hmRound := h.create(t, "hm", future(48*time.Hour))

	_, err := h.svc.Cancel(ctx, stranger, hrRound.ID, "")
	require.ErrorIs(t, err, domain.ErrForbidden)

	cancelled, err := h.svc.Cancel(ctx, candidate, hrRound.ID, "found another role")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.Equal(t, "found another role", cancelled.CancelReason)
	assert.Contains(t, h.calendar.deleted, hrRound.CalendarEventID)

	app := h.application(t)
	assert.Equal(t, []string{hmRound.ID}, app.InterviewIDs)
	assert.Equal(t, domain.ApplicationInterviewScheduled, app.Status)

	_, err = h.svc.Cancel(ctx, hr, hrRound.ID, "")
	require.ErrorIs(t, err, domain.ErrConflict)

	_, err = h.svc.Cancel(ctx, hr, hmRound.ID, "")
	require.NoError(t, err)

	app = h.application(t)
	assert.Empty(t, app.InterviewIDs)
	assert.Equal(t, domain.ApplicationInReview, app.Status)
}

func TestApplicationViewReadsLiveInterviews(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	iv := h.create(t, "hr", future(24*time.Hour))

	_, err := h.svc.Accept(ctx, candidate, iv.ID)
	require.NoError(t, err)

	view, err := h.svc.ApplicationView(ctx, candidate, h.appID)
	require.NoError(t, err)
	require.Len(t, view.Interviews, 1)
	assert.Equal(t, domain.StatusConfirmed, view.Interviews[0].Status)

	_, err = h.svc.ApplicationView(ctx, stranger, h.appID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = h.svc.ApplicationView(ctx, outsider, h.appID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = h.svc.Get(ctx, stranger, iv.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
