package interview

import (
	"fmt"
	"slices"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
)

// Action names a lifecycle operation
type Action string

const (
	ActionCreate            Action = "create"
	ActionAccept            Action = "accept"
	ActionRequestReschedule Action = "reschedule_request"
	ActionAcceptReschedule  Action = "reschedule_accept"
	ActionRejectReschedule  Action = "reschedule_reject"
	ActionStart             Action = "start"
	ActionComplete          Action = "complete"
	ActionCancel            Action = "cancel"
)

// edges is the lifecycle graph
var edges = map[domain.InterviewStatus][]domain.InterviewStatus{
	domain.StatusScheduled:   {domain.StatusConfirmed, domain.StatusRescheduled, domain.StatusCancelled},
	domain.StatusConfirmed:   {domain.StatusRescheduled, domain.StatusInProgress, domain.StatusCancelled},
	domain.StatusRescheduled: {domain.StatusConfirmed, domain.StatusCancelled},
	domain.StatusInProgress:  {domain.StatusCompleted, domain.StatusCancelled},
}

// sources lists the statuses each action may start from
var sources = map[Action][]domain.InterviewStatus{
	ActionAccept:            {domain.StatusScheduled, domain.StatusRescheduled},
	ActionRequestReschedule: {domain.StatusScheduled, domain.StatusConfirmed},
	ActionAcceptReschedule:  {domain.StatusRescheduled},
	ActionRejectReschedule:  {domain.StatusRescheduled},
	ActionStart:             {domain.StatusConfirmed},
	ActionComplete:          {domain.StatusInProgress},
	ActionCancel:            domain.ActiveStatuses,
}

// targets is where a repeated action would land; hitting it again is a conflict
var targets = map[Action]domain.InterviewStatus{
	ActionRequestReschedule: domain.StatusRescheduled,
	ActionAcceptReschedule:  domain.StatusConfirmed,
	ActionStart:             domain.StatusInProgress,
	ActionComplete:          domain.StatusCompleted,
	ActionCancel:            domain.StatusCancelled,
}

// CanTransition reports whether the graph has an edge from -> to
func CanTransition(from, to domain.InterviewStatus) bool {
	return slices.Contains(edges[from], to)
}

// checkSource validates that action may run on an interview in status from
func checkSource(action Action, from domain.InterviewStatus) error {
	if slices.Contains(sources[action], from) {
		return nil
	}
	if target, ok := targets[action]; ok && target == from {
		return fmt.Errorf("%w: interview is already %s", domain.ErrConflict, from)
	}
	return fmt.Errorf("%w: cannot %s an interview that is %s", domain.ErrInvalidTransition, action, from)
}
