package domain

import (
	"fmt"
	"strings"
)

// InterviewMode is who conducts the interview
type InterviewMode string

const (
	ModeAI InterviewMode = "ai"
	ModeHR InterviewMode = "hr"
	ModeHM InterviewMode = "hm"
)

// ParseMode normalizes a mode string, including the legacy W-prefixed forms
// such as "Wai", "WAI", "Whr" and "Whm".
func ParseMode(s string) (InterviewMode, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if len(v) == 3 && v[0] == 'w' {
		v = v[1:]
	}

	switch InterviewMode(v) {
	case ModeAI, ModeHR, ModeHM:
		return InterviewMode(v), nil
	}

	return "", fmt.Errorf("%w: unknown interview mode %q", ErrInvalidInput, s)
}

// InterviewStatus is a state of the interview lifecycle
type InterviewStatus string

const (
	StatusScheduled   InterviewStatus = "scheduled"
	StatusConfirmed   InterviewStatus = "confirmed"
	StatusRescheduled InterviewStatus = "rescheduled"
	StatusInProgress  InterviewStatus = "in_progress"
	StatusCompleted   InterviewStatus = "completed"
	StatusCancelled   InterviewStatus = "cancelled"
)

// ActiveStatuses are the non-terminal statuses
var ActiveStatuses = []InterviewStatus{
	StatusScheduled,
	StatusConfirmed,
	StatusRescheduled,
	StatusInProgress,
}

// NonCancelledStatuses are all statuses an interview keeps its application slot in
var NonCancelledStatuses = []InterviewStatus{
	StatusScheduled,
	StatusConfirmed,
	StatusRescheduled,
	StatusInProgress,
	StatusCompleted,
}

// Terminal reports whether no transition leaves s
func (s InterviewStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Valid reports whether s is a known status
func (s InterviewStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusRescheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ApplicationStatus tracks an application through hiring
type ApplicationStatus string

const (
	ApplicationApplied            ApplicationStatus = "applied"
	ApplicationInReview           ApplicationStatus = "in_review"
	ApplicationInterviewScheduled ApplicationStatus = "interview_scheduled"
	ApplicationRejected           ApplicationStatus = "rejected"
)

// RescheduleParty records who asked for a new time
type RescheduleParty string

const (
	RequestedByCandidate   RescheduleParty = "candidate"
	RequestedByInterviewer RescheduleParty = "interviewer"
)

// NotificationType classifies in-app notifications
type NotificationType string

const (
	NotifyInterviewScheduled  NotificationType = "interview_scheduled"
	NotifyInterviewAccepted   NotificationType = "interview_accepted"
	NotifyRescheduleRequested NotificationType = "reschedule_requested"
	NotifyRescheduleAccepted  NotificationType = "reschedule_accepted"
	NotifyRescheduleRejected  NotificationType = "reschedule_rejected"
	NotifyInterviewStarted    NotificationType = "interview_started"
	NotifyInterviewCompleted  NotificationType = "interview_completed"
	NotifyInterviewCancelled  NotificationType = "interview_cancelled"
	NotifyInterviewReminder   NotificationType = "interview_reminder"
	NotifyApplicationRejected NotificationType = "application_rejected"
)
