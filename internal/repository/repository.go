package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
)

// ErrStale is returned when a compare-and-swap write finds the record in a
// different state than expected.
var ErrStale = errors.New("record changed concurrently")

// Store is the document store behind the lifecycle. Repositories reached
// directly from Store run each call on its own; WithinTx groups calls into
// one atomic unit.
type Store interface {
	Repositories
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Repositories exposes per-collection access
type Repositories interface {
	Jobs() JobRepository
	Applications() ApplicationRepository
	Interviews() InterviewRepository
	Settings() SettingsRepository
	Notifications() NotificationRepository
	QnA() QnARepository
}

// JobRepository reads job postings
type JobRepository interface {
	Get(ctx context.Context, id string) (domain.Job, error)
	Add(ctx context.Context, job domain.Job) (string, error)
}

// ApplicationRepository keeps applications and their interview id set
type ApplicationRepository interface {
	Get(ctx context.Context, id string) (domain.Application, error)
	Add(ctx context.Context, app domain.Application) (string, error)
	// Lock takes the application's write lock for the rest of the transaction.
	Lock(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, status domain.ApplicationStatus) error
	AttachInterview(ctx context.Context, applicationID, interviewID string) error
	// DetachInterview removes the id and returns how many ids remain.
	DetachInterview(ctx context.Context, applicationID, interviewID string) (int, error)
}

// InterviewFilter narrows interview queries. Empty fields match everything.
type InterviewFilter struct {
	ApplicationID string
	JobID         string
	Mode          domain.InterviewMode
	Statuses      []domain.InterviewStatus
}

// InterviewRepository persists interviews
type InterviewRepository interface {
	Get(ctx context.Context, id string) (domain.Interview, error)
	Add(ctx context.Context, iv domain.Interview) (string, error)
	// Update applies u only while the interview's status is one of expected.
	// It returns ErrStale when the status moved on, and domain.ErrLimitExceeded
	// when an increment would pass the reschedule limit.
	Update(ctx context.Context, id string, expected []domain.InterviewStatus, u domain.InterviewUpdate) (domain.Interview, error)
	SetCalendarEvent(ctx context.Context, id, eventID string) error
	Count(ctx context.Context, f InterviewFilter) (int, error)
	List(ctx context.Context, f InterviewFilter) ([]domain.Interview, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.Interview, error)
	// ListDueForReminder returns unreminded interviews starting in [from, to).
	ListDueForReminder(ctx context.Context, from, to time.Time) ([]domain.Interview, error)
	// MarkReminded sets reminder_sent_at if unset; false means another run won.
	MarkReminded(ctx context.Context, id string, at time.Time) (bool, error)
}

// SettingsRepository stores company policy
type SettingsRepository interface {
	// Get returns domain.ErrNotFound when the company has no stored settings.
	Get(ctx context.Context, companyID string) (domain.CompanySettings, error)
	Upsert(ctx context.Context, s domain.CompanySettings) error
}

// NotificationRepository stores in-app notifications
type NotificationRepository interface {
	Add(ctx context.Context, n domain.Notification) (string, error)
	ListForReceiver(ctx context.Context, receiverID string, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, receiverID string) error
}

// QnARepository stores interview questions, answers and evaluations
type QnARepository interface {
	Replace(ctx context.Context, interviewID string, items []domain.QnA) error
	List(ctx context.Context, interviewID string) ([]domain.QnA, error)
	SaveAnswers(ctx context.Context, interviewID string, answers map[string]string) error
	SaveEvaluations(ctx context.Context, interviewID string, items []domain.QnA) error
}

// SettingsOrDefault loads company settings, falling back to the defaults
func SettingsOrDefault(ctx context.Context, r SettingsRepository, companyID string) (domain.CompanySettings, error) {
	s, err := r.Get(ctx, companyID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.DefaultCompanySettings(companyID), nil
	}
	if err != nil {
		return domain.CompanySettings{}, err
	}
	return s, nil
}

// StaleReason explains why a compare-and-swap update matched nothing, given
// the record as it is now.
func StaleReason(current domain.Interview, expected []domain.InterviewStatus, increment bool) error {
	if len(expected) > 0 && !slices.Contains(expected, current.Status) {
		return fmt.Errorf("interview %s is %s: %w", current.ID, current.Status, ErrStale)
	}
	if increment && current.RescheduleCount >= domain.RescheduleLimit {
		return fmt.Errorf("interview %s rescheduled %d times: %w", current.ID, current.RescheduleCount, domain.ErrLimitExceeded)
	}
	return fmt.Errorf("interview %s: %w", current.ID, ErrStale)
}
