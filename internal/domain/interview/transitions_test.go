package interview

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
)

func TestTransitionGraph(t *testing.T) {
	t.Parallel()

	assert.True(t, CanTransition(domain.StatusScheduled, domain.StatusConfirmed))
	assert.True(t, CanTransition(domain.StatusRescheduled, domain.StatusCancelled))
	assert.True(t, CanTransition(domain.StatusInProgress, domain.StatusCompleted))
	assert.False(t, CanTransition(domain.StatusScheduled, domain.StatusInProgress))
	assert.False(t, CanTransition(domain.StatusCompleted, domain.StatusCancelled))
	assert.False(t, CanTransition(domain.StatusCancelled, domain.StatusScheduled))
}

func TestSourcesFollowGraph(t *testing.T) {
	t.Parallel()

	for action, from := range sources {
		target, ok := targets[action]
		if !ok {
			continue
		}
		for _, status := range from {
			assert.True(t, CanTransition(status, target), "%s: %s -> %s", action, status, target)
		}
	}
}

func TestCheckSource(t *testing.T) {
	t.Parallel()

	cases := []struct {
		action Action
		from   domain.InterviewStatus
		want   error
	}{
		{ActionStart, domain.StatusConfirmed, nil},
		{ActionStart, domain.StatusScheduled, domain.ErrInvalidTransition},
		{ActionStart, domain.StatusInProgress, domain.ErrConflict},
		{ActionCancel, domain.StatusRescheduled, nil},
		{ActionCancel, domain.StatusCancelled, domain.ErrConflict},
		{ActionCancel, domain.StatusCompleted, domain.ErrInvalidTransition},
		{ActionComplete, domain.StatusCompleted, domain.ErrConflict},
		{ActionRequestReschedule, domain.StatusInProgress, domain.ErrInvalidTransition},
		{ActionAccept, domain.StatusCancelled, domain.ErrInvalidTransition},
	}

	for _, tc := range cases {
		err := checkSource(tc.action, tc.from)
		if tc.want == nil {
			assert.NoError(t, err, "%s from %s", tc.action, tc.from)
			continue
		}
		assert.ErrorIs(t, err, tc.want, "%s from %s", tc.action, tc.from)
	}
}

func TestCheckAcceptFromReschedule(t *testing.T) {
	t.Parallel()

	iv := domain.Interview{Status: domain.StatusRescheduled, RescheduleRequestedBy: domain.RequestedByCandidate}
	assert.ErrorIs(t, checkAccept(iv), domain.ErrInvalidTransition)

	iv.RescheduleRequestedBy = domain.RequestedByInterviewer
	assert.NoError(t, checkAccept(iv))

	iv.Status = domain.StatusConfirmed
	assert.ErrorIs(t, checkAccept(iv), domain.ErrInvalidTransition)
}
