package interview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/access"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/repository"
)

// RescheduleInput asks for a new slot
type RescheduleInput struct {
	NewTime time.Time
	Reason  string
}

// RequestReschedule proposes a new time. Candidates and interviewers may
// both ask; the other side decides.
func (s *Service) RequestReschedule(ctx context.Context, who domain.Identity, id string, in RescheduleInput) (iv domain.Interview, err error) {
	defer func() { s.record(ActionRequestReschedule, err) }()

	if err := s.policy.Require(who, access.RequestReschedule); err != nil {
		return domain.Interview{}, err
	}

	current, err := s.store.Interviews().Get(ctx, id)
	if err != nil {
		return domain.Interview{}, err
	}
	if err := authorizeParticipant(who, current); err != nil {
		return domain.Interview{}, err
	}
	party := domain.RequestedByInterviewer
	if who.IsCandidate() {
		party = domain.RequestedByCandidate
	}

	if current.RescheduleCount >= domain.RescheduleLimit {
		return domain.Interview{}, limitError()
	}
	if in.NewTime.IsZero() || !in.NewTime.After(s.now()) {
		return domain.Interview{}, fmt.Errorf("%w: requested time must be in the future", domain.ErrInvalidInput)
	}
	if err := checkSource(ActionRequestReschedule, current.Status); err != nil {
		return domain.Interview{}, err
	}

	newTime := in.NewTime.UTC()
	reason := strings.TrimSpace(in.Reason)

	iv, err = s.apply(ctx, id, step{
		decide: func(iv domain.Interview) (domain.InterviewUpdate, error) {
			if iv.RescheduleCount >= domain.RescheduleLimit {
				return domain.InterviewUpdate{}, limitError()
			}
			if err := checkSource(ActionRequestReschedule, iv.Status); err != nil {
				return domain.InterviewUpdate{}, err
			}

			u := domain.InterviewUpdate{
				Status:                statusPtr(domain.StatusRescheduled),
				RequestedNewTime:      &newTime,
				RescheduleReason:      &reason,
				RescheduleRequestedBy: &party,
				IncrementReschedule:   true,
			}
			if iv.HasSchedule() {
				old := iv.ScheduledStart
				u.OldScheduledAt = &old
			}
			return u, nil
		},
	})
	if err != nil {
		return domain.Interview{}, err
	}

	s.logger.Info("reschedule requested",
		"interview_id", iv.ID,
		"requested_by", party,
		"reschedule_count", iv.RescheduleCount,
	)

	msg := fmt.Sprintf("A new time was requested for the %s interview: %s.", modeLabel(iv.Mode), formatSlot(newTime))
	if reason != "" {
		msg += " Reason: " + reason
	}
	s.notifyCounterparty(ctx, who, iv, domain.NotifyRescheduleRequested, "Reschedule requested", msg)

	return iv, nil
}

// AcceptReschedule adopts the requested time. The calendar update must
// succeed before the store is touched.
func (s *Service) AcceptReschedule(ctx context.Context, who domain.Identity, id string) (iv domain.Interview, err error) {
	defer func() { s.record(ActionAcceptReschedule, err) }()

	if err := s.policy.Require(who, access.DecideReschedule); err != nil {
		return domain.Interview{}, err
	}

	current, err := s.store.Interviews().Get(ctx, id)
	if err != nil {
		return domain.Interview{}, err
	}
	if err := s.policy.RequireCompany(who, access.DecideReschedule, current.CompanyID); err != nil {
		return domain.Interview{}, err
	}
	if err := checkSource(ActionAcceptReschedule, current.Status); err != nil {
		return domain.Interview{}, err
	}

	iv, err = s.commitReschedule(ctx, who, current, ActionAcceptReschedule)
	if err != nil {
		return domain.Interview{}, err
	}

	s.notifyCandidate(ctx, who, iv, domain.NotifyRescheduleAccepted, "Reschedule accepted",
		fmt.Sprintf("Your %s interview has been moved%s.", modeLabel(iv.Mode), slotSuffix(iv)), nil)

	return iv, nil
}

// RejectReschedule declines a pending request. The interview returns to its
// previous slot, or is cancelled when it never had one.
func (s *Service) RejectReschedule(ctx context.Context, who domain.Identity, id, reason string) (iv domain.Interview, err error) {
	defer func() { s.record(ActionRejectReschedule, err) }()

	if err := s.policy.Require(who, access.DecideReschedule); err != nil {
		return domain.Interview{}, err
	}

	now := s.now()
	reason = strings.TrimSpace(reason)

	iv, err = s.apply(ctx, id, step{
		decide: func(iv domain.Interview) (domain.InterviewUpdate, error) {
			if !who.InCompany(iv.CompanyID) {
				return domain.InterviewUpdate{}, fmt.Errorf("%w: interview belongs to another company", domain.ErrForbidden)
			}
			if err := checkSource(ActionRejectReschedule, iv.Status); err != nil {
				return domain.InterviewUpdate{}, err
			}

			u := domain.InterviewUpdate{RejectReason: &reason}
			if iv.OldScheduledAt == nil {
				cancelReason := "reschedule rejected"
				if reason != "" {
					cancelReason += ": " + reason
				}
				u.Status = statusPtr(domain.StatusCancelled)
				u.CancelReason = &cancelReason
				u.CancelledAt = &now
				return u, nil
			}

			start := iv.OldScheduledAt.UTC()
			end := start.Add(durationOf(iv))
			u.Status = statusPtr(domain.StatusConfirmed)
			u.ScheduledStart = &start
			u.ScheduledEnd = &end
			return u, nil
		},
		then: func(ctx context.Context, tx repository.Repositories, updated domain.Interview) error {
			if updated.Status != domain.StatusCancelled {
				return nil
			}
			return s.detach(ctx, tx, updated)
		},
	})
	if err != nil {
		return domain.Interview{}, err
	}

	s.logger.Info("reschedule rejected", "interview_id", iv.ID, "status", iv.Status)

	msg := "Your reschedule request was declined."
	if iv.Status == domain.StatusCancelled {
		s.removeCalendarEvent(ctx, iv)
		msg = "Your reschedule request was declined and the interview has been cancelled."
	} else {
		msg += fmt.Sprintf(" The interview stays%s.", slotSuffix(iv))
	}
	if reason != "" {
		msg += " Reason: " + reason
	}
	s.notifyCandidate(ctx, who, iv, domain.NotifyRescheduleRejected, "Reschedule declined", msg, map[string]string{
		"reject_reason": reason,
	})

	return iv, nil
}

// commitReschedule moves current to its requested time. The external calendar
// is updated first; only when that succeeds is the store written. If the
// store write then loses a race the calendar is put back on a best-effort basis.
func (s *Service) commitReschedule(ctx context.Context, who domain.Identity, current domain.Interview, action Action) (domain.Interview, error) {
	if current.RequestedNewTime == nil {
		return domain.Interview{}, fmt.Errorf("%w: no new time was requested", domain.ErrInvalidTransition)
	}

	start := current.RequestedNewTime.UTC()
	end := start.Add(durationOf(current))

	calendarMoved := false
	if s.calendar != nil && current.CalendarEventID != "" {
		ev := s.eventFor(current, start, end)
		ev.Description += fmt.Sprintf("\nRescheduled by %s from %s.", who.Email, formatSlot(current.ScheduledStart))
		if err := s.callCalendar(ctx, func(ctx context.Context) error {
			return s.calendar.UpdateEvent(ctx, current.CalendarEventID, ev)
		}); err != nil {
			s.logger.Warn("calendar update failed, reschedule not applied",
				"interview_id", current.ID,
				"error", err,
			)
			return domain.Interview{}, err
		}
		calendarMoved = true
	}

	now := s.now()
	iv, err := s.apply(ctx, current.ID, step{
		decide: func(iv domain.Interview) (domain.InterviewUpdate, error) {
			if err := checkSource(ActionAcceptReschedule, iv.Status); err != nil {
				return domain.InterviewUpdate{}, err
			}
			if !sameInstant(iv.RequestedNewTime, current.RequestedNewTime) {
				return domain.InterviewUpdate{}, fmt.Errorf("%w: the reschedule request changed", domain.ErrConflict)
			}
			u := domain.InterviewUpdate{
				Status:         statusPtr(domain.StatusConfirmed),
				ScheduledStart: &start,
				ScheduledEnd:   &end,
			}
			if action == ActionAccept {
				u.CandidateAcceptedAt = &now
			}
			return u, nil
		},
	})
	if err != nil {
		if calendarMoved {
			s.revertCalendar(ctx, current)
		}
		return domain.Interview{}, err
	}

	s.logger.Info("reschedule accepted",
		"interview_id", iv.ID,
		"scheduled_start", iv.ScheduledStart,
		"by", who.UID,
	)

	if iv.CalendarEventID == "" {
		iv = s.attachCalendarEvent(ctx, iv)
	}
	return iv, nil
}

func limitError() error {
	return fmt.Errorf("%w: an interview can be rescheduled at most %d times", domain.ErrLimitExceeded, domain.RescheduleLimit)
}

func durationOf(iv domain.Interview) time.Duration {
	minutes := iv.DurationMinutes
	if minutes <= 0 {
		minutes = domain.DefaultDurationMinutes
	}
	return time.Duration(minutes) * time.Minute
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
