package interview

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/access"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/repository"
)

const (
	minDurationMinutes = 5
	maxDurationMinutes = 480
)

// CreateInput describes a new interview. Mode accepts legacy spellings.
type CreateInput struct {
	JobID           string
	ApplicationID   string
	Mode            string
	InterviewTypes  []string
	DurationMinutes int
	// ScheduledStart may be zero for an AI interview taken on demand.
	ScheduledStart time.Time
}

// CompleteInput carries the evaluation recorded at completion
type CompleteInput struct {
	OverallScore float64
	Result       string
	Suggestion   string
	Comments     string
}

// step is one compare-and-swap mutation of an interview
type step struct {
	// decide validates the freshly read interview and builds the write.
	decide func(iv domain.Interview) (domain.InterviewUpdate, error)
	// then runs in the same transaction after the write succeeded.
	then func(ctx context.Context, tx repository.Repositories, updated domain.Interview) error
}

// apply reads, validates and writes one interview in a transaction. The write
// is conditioned on the status decide saw, so a concurrent transition makes
// this one fail with ErrConflict instead of overwriting it.
func (s *Service) apply(ctx context.Context, id string, st step) (domain.Interview, error) {
	var updated domain.Interview
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		iv, err := tx.Interviews().Get(ctx, id)
		if err != nil {
			return err
		}

		u, err := st.decide(iv)
		if err != nil {
			return err
		}

		updated, err = tx.Interviews().Update(ctx, id, []domain.InterviewStatus{iv.Status}, u)
		if err != nil {
			return casError(err)
		}

		if st.then != nil {
			return st.then(ctx, tx, updated)
		}
		return nil
	})
	if err != nil {
		return domain.Interview{}, err
	}
	return updated, nil
}

func casError(err error) error {
	if errors.Is(err, repository.ErrStale) {
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	}
	return err
}

// Create schedules an interview for an application
func (s *Service) Create(ctx context.Context, who domain.Identity, in CreateInput) (iv domain.Interview, err error) {
	defer func() { s.record(ActionCreate, err) }()

	if err := s.policy.Require(who, access.CreateInterview); err != nil {
		return domain.Interview{}, err
	}

	mode, err := domain.ParseMode(in.Mode)
	if err != nil {
		return domain.Interview{}, err
	}
	in.JobID = strings.TrimSpace(in.JobID)
	in.ApplicationID = strings.TrimSpace(in.ApplicationID)
	if in.JobID == "" || in.ApplicationID == "" {
		return domain.Interview{}, fmt.Errorf("%w: job_id and application_id are required", domain.ErrInvalidInput)
	}

	duration := in.DurationMinutes
	if duration == 0 {
		duration = domain.DefaultDurationMinutes
	}
	if duration < minDurationMinutes || duration > maxDurationMinutes {
		return domain.Interview{}, fmt.Errorf("%w: duration must be between %d and %d minutes",
			domain.ErrInvalidInput, minDurationMinutes, maxDurationMinutes)
	}

	now := s.now()
	var start, end time.Time
	if !in.ScheduledStart.IsZero() {
		start = in.ScheduledStart.UTC()
		if !start.After(now) {
			return domain.Interview{}, fmt.Errorf("%w: scheduled time must be in the future", domain.ErrInvalidInput)
		}
		end = start.Add(time.Duration(duration) * time.Minute)
	}

	var id string
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		job, err := tx.Jobs().Get(ctx, in.JobID)
		if err != nil {
			return err
		}
		if !who.InCompany(job.CompanyID) {
			return fmt.Errorf("%w: job %s belongs to another company", domain.ErrForbidden, job.ID)
		}

		app, err := tx.Applications().Get(ctx, in.ApplicationID)
		if err != nil {
			return err
		}
		if app.JobID != job.ID {
			return fmt.Errorf("%w: application %s is not for job %s", domain.ErrInvalidInput, app.ID, job.ID)
		}
		if err := tx.Applications().Lock(ctx, app.ID); err != nil {
			return err
		}

		if mode == domain.ModeAI {
			q, err := s.quota.check(ctx, tx, app.ID, job.CompanyID)
			if err != nil {
				return err
			}
			if !q.Allowed {
				return fmt.Errorf("%w: application already has %d of %d AI interviews",
					domain.ErrLimitExceeded, q.Current, q.Max)
			}
		}

		active, err := tx.Interviews().Count(ctx, repository.InterviewFilter{
			ApplicationID: app.ID,
			JobID:         job.ID,
			Mode:          mode,
			Statuses:      domain.ActiveStatuses,
		})
		if err != nil {
			return err
		}
		if active > 0 {
			return fmt.Errorf("%w: an active %s interview already exists for this application", domain.ErrConflict, mode)
		}

		id, err = tx.Interviews().Add(ctx, domain.Interview{
			ApplicationID:    app.ID,
			JobID:            job.ID,
			CompanyID:        job.CompanyID,
			CandidateID:      app.ApplicantID,
			CandidateEmail:   app.ApplicantEmail,
			CandidateName:    app.ApplicantName,
			InterviewerID:    who.UID,
			InterviewerEmail: who.Email,
			Mode:             mode,
			InterviewTypes:   cleanTypes(in.InterviewTypes),
			Status:           domain.StatusScheduled,
			ScheduledStart:   start,
			ScheduledEnd:     end,
			DurationMinutes:  duration,
		})
		if err != nil {
			return err
		}

		if err := tx.Applications().AttachInterview(ctx, app.ID, id); err != nil {
			return err
		}
		if app.Status == domain.ApplicationRejected {
			return nil
		}
		return tx.Applications().SetStatus(ctx, app.ID, domain.ApplicationInterviewScheduled)
	})
	if err != nil {
		return domain.Interview{}, err
	}

	iv, err = s.store.Interviews().Get(ctx, id)
	if err != nil {
		return domain.Interview{}, err
	}

	s.logger.Info("interview created",
		"interview_id", iv.ID,
		"application_id", iv.ApplicationID,
		"mode", iv.Mode,
	)

	iv = s.attachCalendarEvent(ctx, iv)
	s.notifyCandidate(ctx, who, iv, domain.NotifyInterviewScheduled, "Interview scheduled",
		fmt.Sprintf("A %s interview has been scheduled%s.", modeLabel(iv.Mode), slotSuffix(iv)), nil)

	return iv, nil
}

// Accept confirms an interview on behalf of its candidate. From rescheduled it
// adopts the interviewer's proposed time, gated on the calendar update.
func (s *Service) Accept(ctx context.Context, who domain.Identity, id string) (iv domain.Interview, err error) {
	defer func() { s.record(ActionAccept, err) }()

	if err := s.policy.Require(who, access.AcceptInterview); err != nil {
		return domain.Interview{}, err
	}

	current, err := s.store.Interviews().Get(ctx, id)
	if err != nil {
		return domain.Interview{}, err
	}
	if !strings.EqualFold(strings.TrimSpace(who.Email), current.CandidateEmail) {
		return domain.Interview{}, fmt.Errorf("%w: only the invited candidate may accept", domain.ErrForbidden)
	}
	if err := checkAccept(current); err != nil {
		return domain.Interview{}, err
	}

	if current.Status == domain.StatusRescheduled {
		iv, err = s.commitReschedule(ctx, who, current, ActionAccept)
		if err != nil {
			return domain.Interview{}, err
		}
		s.notifyInterviewer(ctx, who, iv, domain.NotifyRescheduleAccepted, "Reschedule accepted",
			fmt.Sprintf("%s accepted the new interview time%s.", candidateLabel(iv), slotSuffix(iv)), nil)
		return iv, nil
	}

	now := s.now()
	iv, err = s.apply(ctx, id, step{
		decide: func(iv domain.Interview) (domain.InterviewUpdate, error) {
			if err := checkAccept(iv); err != nil {
				return domain.InterviewUpdate{}, err
			}
			if iv.Status != domain.StatusScheduled {
				return domain.InterviewUpdate{}, fmt.Errorf("%w: interview changed to %s", domain.ErrConflict, iv.Status)
			}
			return domain.InterviewUpdate{
				Status:              statusPtr(domain.StatusConfirmed),
				CandidateAcceptedAt: &now,
			}, nil
		},
	})
	if err != nil {
		return domain.Interview{}, err
	}

	s.logger.Info("interview accepted", "interview_id", iv.ID)
	s.notifyInterviewer(ctx, who, iv, domain.NotifyInterviewAccepted, "Interview accepted",
		fmt.Sprintf("%s accepted the %s interview%s.", candidateLabel(iv), modeLabel(iv.Mode), slotSuffix(iv)), nil)

	return iv, nil
}

func checkAccept(iv domain.Interview) error {
	switch iv.Status {
	case domain.StatusConfirmed, domain.StatusCompleted:
		return fmt.Errorf("%w: interview is already %s", domain.ErrInvalidTransition, iv.Status)
	case domain.StatusRescheduled:
		if iv.RescheduleRequestedBy != domain.RequestedByInterviewer {
			return fmt.Errorf("%w: the reschedule request is waiting on the interviewer", domain.ErrInvalidTransition)
		}
		return nil
	}
	return checkSource(ActionAccept, iv.Status)
}

// Start moves a confirmed interview into progress
func (s *Service) Start(ctx context.Context, who domain.Identity, id string) (iv domain.Interview, err error) {
	defer func() { s.record(ActionStart, err) }()

	if err := s.policy.Require(who, access.StartInterview); err != nil {
		return domain.Interview{}, err
	}

	now := s.now()
	iv, err = s.apply(ctx, id, step{
		decide: func(iv domain.Interview) (domain.InterviewUpdate, error) {
			if err := authorizeParticipant(who, iv); err != nil {
				return domain.InterviewUpdate{}, err
			}
			if err := checkSource(ActionStart, iv.Status); err != nil {
				return domain.InterviewUpdate{}, err
			}
			return domain.InterviewUpdate{
				Status:    statusPtr(domain.StatusInProgress),
				StartedAt: &now,
			}, nil
		},
	})
	if err != nil {
		return domain.Interview{}, err
	}

	s.logger.Info("interview started", "interview_id", iv.ID, "by", who.UID)
	s.notifyCounterparty(ctx, who, iv, domain.NotifyInterviewStarted, "Interview started",
		fmt.Sprintf("The %s interview has started.", modeLabel(iv.Mode)))

	return iv, nil
}

// Complete records the outcome of an in-progress interview and applies the
// company's auto-reject threshold to the application.
func (s *Service) Complete(ctx context.Context, who domain.Identity, id string, in CompleteInput) (iv domain.Interview, err error) {
	defer func() { s.record(ActionComplete, err) }()

	if err := s.policy.Require(who, access.CompleteInterview); err != nil {
		return domain.Interview{}, err
	}
	if math.IsNaN(in.OverallScore) || in.OverallScore < 0 || in.OverallScore > 100 {
		return domain.Interview{}, fmt.Errorf("%w: overall score must be within 0..100", domain.ErrInvalidInput)
	}

	now := s.now()
	score := in.OverallScore
	var autoRejected bool

	iv, err = s.apply(ctx, id, step{
		decide: func(iv domain.Interview) (domain.InterviewUpdate, error) {
			if !who.InCompany(iv.CompanyID) {
				return domain.InterviewUpdate{}, fmt.Errorf("%w: interview belongs to another company", domain.ErrForbidden)
			}
			if err := checkSource(ActionComplete, iv.Status); err != nil {
				return domain.InterviewUpdate{}, err
			}
			return domain.InterviewUpdate{
				Status:       statusPtr(domain.StatusCompleted),
				EndedAt:      &now,
				OverallScore: &score,
				Result:       &in.Result,
				Suggestion:   &in.Suggestion,
				Comments:     &in.Comments,
			}, nil
		},
		then: func(ctx context.Context, tx repository.Repositories, updated domain.Interview) error {
			settings, err := repository.SettingsOrDefault(ctx, tx.Settings(), updated.CompanyID)
			if err != nil {
				return err
			}
			autoRejected = settings.AutoRejectBelowScore > 0 && score < settings.AutoRejectBelowScore
			if !autoRejected {
				return nil
			}
			return tx.Applications().SetStatus(ctx, updated.ApplicationID, domain.ApplicationRejected)
		},
	})
	if err != nil {
		return domain.Interview{}, err
	}

	s.logger.Info("interview completed",
		"interview_id", iv.ID,
		"score", score,
		"auto_rejected", autoRejected,
	)

	s.notifyCandidate(ctx, who, iv, domain.NotifyInterviewCompleted, "Interview completed",
		fmt.Sprintf("Your %s interview is complete.", modeLabel(iv.Mode)), map[string]string{
			"overall_score": fmt.Sprintf("%.1f", score),
		})
	if autoRejected {
		s.notifyCandidate(ctx, who, iv, domain.NotifyApplicationRejected, "Application update",
			"Thank you for your time. The company has decided not to move forward with your application.", nil)
	}

	return iv, nil
}

// Cancel ends an active interview and detaches it from its application
func (s *Service) Cancel(ctx context.Context, who domain.Identity, id, reason string) (iv domain.Interview, err error) {
	defer func() { s.record(ActionCancel, err) }()

	if err := s.policy.Require(who, access.CancelInterview); err != nil {
		return domain.Interview{}, err
	}

	now := s.now()
	reason = strings.TrimSpace(reason)

	iv, err = s.apply(ctx, id, step{
		decide: func(iv domain.Interview) (domain.InterviewUpdate, error) {
			if err := authorizeParticipant(who, iv); err != nil {
				return domain.InterviewUpdate{}, err
			}
			if err := checkSource(ActionCancel, iv.Status); err != nil {
				return domain.InterviewUpdate{}, err
			}
			return domain.InterviewUpdate{
				Status:       statusPtr(domain.StatusCancelled),
				CancelReason: &reason,
				CancelledAt:  &now,
			}, nil
		},
		then: s.detach,
	})
	if err != nil {
		return domain.Interview{}, err
	}

	s.logger.Info("interview cancelled", "interview_id", iv.ID, "by", who.UID)
	s.removeCalendarEvent(ctx, iv)

	msg := fmt.Sprintf("The %s interview has been cancelled.", modeLabel(iv.Mode))
	if reason != "" {
		msg += " Reason: " + reason
	}
	s.notifyCounterparty(ctx, who, iv, domain.NotifyInterviewCancelled, "Interview cancelled", msg)

	return iv, nil
}

// detach drops a cancelled interview from its application and recomputes the
// application status. A rejected application stays rejected.
func (s *Service) detach(ctx context.Context, tx repository.Repositories, iv domain.Interview) error {
	remaining, err := tx.Applications().DetachInterview(ctx, iv.ApplicationID, iv.ID)
	if err != nil {
		return err
	}

	app, err := tx.Applications().Get(ctx, iv.ApplicationID)
	if err != nil {
		return err
	}
	if app.Status == domain.ApplicationRejected {
		return nil
	}

	status := domain.ApplicationInReview
	if remaining > 0 {
		status = domain.ApplicationInterviewScheduled
	}
	return tx.Applications().SetStatus(ctx, iv.ApplicationID, status)
}

// authorizeParticipant admits the interview's own candidate or staff of its company
func authorizeParticipant(who domain.Identity, iv domain.Interview) error {
	if who.IsCandidate() {
		if who.IsCandidateOf(iv) {
			return nil
		}
		return fmt.Errorf("%w: interview belongs to another candidate", domain.ErrForbidden)
	}
	if who.IsInterviewer() && who.InCompany(iv.CompanyID) {
		return nil
	}
	return fmt.Errorf("%w: interview belongs to another company", domain.ErrForbidden)
}

func cleanTypes(types []string) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func statusPtr(s domain.InterviewStatus) *domain.InterviewStatus {
	return &s
}
