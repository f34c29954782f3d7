package interview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
)

const slotLayout = "Mon, 02 Jan 2006 15:04 MST"

func (s *Service) callCalendar(ctx context.Context, fn func(ctx context.Context) error) error {
	err := domain.CallDependency(ctx, "calendar", s.timeout, fn)
	s.metrics.ObserveDependency("calendar", err)
	return err
}

func (s *Service) eventFor(iv domain.Interview, start, end time.Time) domain.CalendarEvent {
	attendees := []string{iv.CandidateEmail}
	if iv.InterviewerEmail != "" && !strings.EqualFold(iv.InterviewerEmail, iv.CandidateEmail) {
		attendees = append(attendees, iv.InterviewerEmail)
	}

	desc := fmt.Sprintf("%s interview for application %s", modeLabel(iv.Mode), iv.ApplicationID)
	if len(iv.InterviewTypes) > 0 {
		desc += "\nFocus: " + strings.Join(iv.InterviewTypes, ", ")
	}

	return domain.CalendarEvent{
		Summary:     fmt.Sprintf("%s interview with %s", modeLabel(iv.Mode), candidateLabel(iv)),
		Description: desc,
		Start:       start,
		End:         end,
		Attendees:   attendees,
	}
}

// attachCalendarEvent creates the event for a slotted interview. Failures
// are logged; the interview stands without an event.
func (s *Service) attachCalendarEvent(ctx context.Context, iv domain.Interview) domain.Interview {
	if s.calendar == nil || !iv.HasSchedule() {
		return iv
	}

	var eventID string
	err := s.callCalendar(ctx, func(ctx context.Context) error {
		var err error
		eventID, err = s.calendar.CreateEvent(ctx, s.eventFor(iv, iv.ScheduledStart, iv.ScheduledEnd))
		return err
	})
	if err != nil {
		s.logger.Warn("calendar event not created", "interview_id", iv.ID, "error", err)
		return iv
	}

	if err := s.store.Interviews().SetCalendarEvent(ctx, iv.ID, eventID); err != nil {
		s.logger.Warn("calendar event id not saved", "interview_id", iv.ID, "event_id", eventID, "error", err)
		return iv
	}
	iv.CalendarEventID = eventID
	return iv
}

func (s *Service) removeCalendarEvent(ctx context.Context, iv domain.Interview) {
	if s.calendar == nil || iv.CalendarEventID == "" {
		return
	}
	err := s.callCalendar(ctx, func(ctx context.Context) error {
		return s.calendar.DeleteEvent(ctx, iv.CalendarEventID)
	})
	if err != nil {
		s.logger.Warn("calendar event not removed", "interview_id", iv.ID, "event_id", iv.CalendarEventID, "error", err)
	}
}

// revertCalendar puts the event back on the slot recorded in before
func (s *Service) revertCalendar(ctx context.Context, before domain.Interview) {
	if !before.HasSchedule() {
		s.removeCalendarEvent(ctx, before)
		return
	}

	ev := s.eventFor(before, before.ScheduledStart, before.ScheduledEnd)
	err := s.callCalendar(context.WithoutCancel(ctx), func(ctx context.Context) error {
		return s.calendar.UpdateEvent(ctx, before.CalendarEventID, ev)
	})
	if err != nil {
		s.logger.Error("calendar revert failed, event and interview disagree",
			"interview_id", before.ID,
			"event_id", before.CalendarEventID,
			"error", err,
		)
		return
	}
	s.logger.Warn("calendar reverted after failed reschedule commit", "interview_id", before.ID)
}

func (s *Service) notifyCandidate(ctx context.Context, who domain.Identity, iv domain.Interview, typ domain.NotificationType, title, msg string, extra map[string]string) {
	s.send(ctx, who, iv.CandidateID, iv.CandidateEmail, iv, typ, title, msg, extra)
}

func (s *Service) notifyInterviewer(ctx context.Context, who domain.Identity, iv domain.Interview, typ domain.NotificationType, title, msg string, extra map[string]string) {
	s.send(ctx, who, iv.InterviewerID, iv.InterviewerEmail, iv, typ, title, msg, extra)
}

// notifyCounterparty tells the side that did not act
func (s *Service) notifyCounterparty(ctx context.Context, who domain.Identity, iv domain.Interview, typ domain.NotificationType, title, msg string) {
	if who.IsCandidate() {
		s.notifyInterviewer(ctx, who, iv, typ, title, msg, nil)
		return
	}
	s.notifyCandidate(ctx, who, iv, typ, title, msg, nil)
}

func (s *Service) send(ctx context.Context, who domain.Identity, receiverID, receiverEmail string, iv domain.Interview, typ domain.NotificationType, title, msg string, extra map[string]string) {
	if receiverID == "" && receiverEmail == "" {
		return
	}
	if receiverID == "" {
		receiverID = strings.ToLower(receiverEmail)
	}

	meta := map[string]string{
		"interview_id":   iv.ID,
		"application_id": iv.ApplicationID,
		"job_id":         iv.JobID,
		"status":         string(iv.Status),
		"mode":           string(iv.Mode),
	}
	for k, v := range extra {
		meta[k] = v
	}

	s.notifier.Notify(ctx, domain.Notification{
		SenderID:      who.UID,
		ReceiverID:    receiverID,
		ReceiverEmail: receiverEmail,
		Type:          typ,
		Title:         title,
		Message:       msg,
		Metadata:      meta,
		CreatedAt:     s.now(),
	})
}

func modeLabel(m domain.InterviewMode) string {
	switch m {
	case domain.ModeAI:
		return "AI"
	case domain.ModeHR:
		return "HR"
	case domain.ModeHM:
		return "Hiring manager"
	}
	return string(m)
}

func candidateLabel(iv domain.Interview) string {
	if iv.CandidateName != "" {
		return iv.CandidateName
	}
	return iv.CandidateEmail
}

func formatSlot(t time.Time) string {
	if t.IsZero() {
		return "no set time"
	}
	return t.UTC().Format(slotLayout)
}

func slotSuffix(iv domain.Interview) string {
	if !iv.HasSchedule() {
		return ""
	}
	return " for " + formatSlot(iv.ScheduledStart)
}
