// Package reminder notifies both parties ahead of scheduled interviews.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/repository"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/logging"
)

// DefaultSchedule runs a sweep every five minutes
const DefaultSchedule = "@every 5m"

// maxLead is the longest reminder window a company may configure
const maxLead = 168 * time.Hour

// Notifier receives reminder notifications
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}

// Service finds interviews inside their company's reminder window
type Service struct {
	store    repository.Store
	notifier Notifier
	logger   *logging.Logger
	clock    func() time.Time

	cron *cron.Cron
}

func NewService(store repository.Store, notifier Notifier, logger *logging.Logger) (*Service, error) {
	if store == nil || notifier == nil {
		return nil, errors.New("reminder service requires a store and a notifier")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{
		store:    store,
		notifier: notifier,
		logger:   logger.Named("reminder"),
		clock:    time.Now,
	}, nil
}

// WithClock replaces the time source
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// Sweep sends due reminders once and returns how many interviews were reminded
func (s *Service) Sweep(ctx context.Context) (int, error) {
	now := s.clock().UTC()

	due, err := s.store.Interviews().ListDueForReminder(ctx, now, now.Add(maxLead))
	if err != nil {
		return 0, fmt.Errorf("list due interviews: %w", err)
	}

	leads := make(map[string]time.Duration)
	sent := 0
	for _, iv := range due {
		lead, ok := leads[iv.CompanyID]
		if !ok {
			settings, err := repository.SettingsOrDefault(ctx, s.store.Settings(), iv.CompanyID)
			if err != nil {
				s.logger.Warn("settings unavailable, skipping company", "company_id", iv.CompanyID, "error", err)
				continue
			}
			hours := settings.ReminderHoursBefore
			if hours <= 0 {
				hours = domain.DefaultReminderHoursBefore
			}
			lead = time.Duration(hours) * time.Hour
			leads[iv.CompanyID] = lead
		}

		if iv.ScheduledStart.Sub(now) > lead {
			continue
		}

		won, err := s.store.Interviews().MarkReminded(ctx, iv.ID, now)
		if err != nil {
			s.logger.Warn("mark reminded failed", "interview_id", iv.ID, "error", err)
			continue
		}
		if !won {
			continue
		}

		s.remind(ctx, iv)
		sent++
	}

	if sent > 0 {
		s.logger.Info("reminders sent", "count", sent)
	}
	return sent, nil
}

func (s *Service) remind(ctx context.Context, iv domain.Interview) {
	when := iv.ScheduledStart.UTC().Format("Mon, 02 Jan 2006 15:04 MST")
	meta := map[string]string{
		"interview_id":    iv.ID,
		"application_id":  iv.ApplicationID,
		"scheduled_start": iv.ScheduledStart.UTC().Format(time.RFC3339),
	}

	recipients := []struct{ id, email string }{
		{iv.CandidateID, iv.CandidateEmail},
		{iv.InterviewerID, iv.InterviewerEmail},
	}
	for _, r := range recipients {
		if r.id == "" {
			continue
		}
		s.notifier.Notify(ctx, domain.Notification{
			SenderID:      domain.SystemIdentity().UID,
			ReceiverID:    r.id,
			ReceiverEmail: r.email,
			Type:          domain.NotifyInterviewReminder,
			Title:         "Upcoming interview",
			Message:       fmt.Sprintf("Reminder: your %s interview starts %s.", iv.Mode, when),
			Metadata:      meta,
			CreatedAt:     s.clock().UTC(),
		})
	}
}

// Start schedules Sweep on spec (standard five-field cron or a descriptor
// such as "@every 5m").
func (s *Service) Start(ctx context.Context, spec string) error {
	if spec == "" {
		spec = DefaultSchedule
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	adapter := cronLogger{s.logger}
	c := cron.New(
		cron.WithParser(parser),
		cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
	)

	_, err := c.AddFunc(spec, func() {
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Error("reminder sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}

	s.cron = c
	c.Start()
	s.logger.Info("reminder scheduler started", "schedule", spec)
	return nil
}

// Stop halts the scheduler and waits for a running sweep
func (s *Service) Stop(ctx context.Context) error {
	if s.cron == nil {
		return nil
	}
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type cronLogger struct {
	l *logging.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error(msg, append(keysAndValues, "error", err)...)
}
