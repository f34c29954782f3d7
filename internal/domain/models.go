package domain

import (
	"time"
)

// RescheduleLimit bounds how many times one interview may be moved
const RescheduleLimit = 2

// Default company policy values used when no settings are stored
const (
	DefaultMaxAIInterviews     = 3
	DefaultReminderHoursBefore = 24
	DefaultDurationMinutes     = 30
)

// Job is a posting candidates apply to
type Job struct {
	ID          string
	CompanyID   string
	Title       string
	Description string
	Skills      []string
	Location    string
	CreatedBy   string
	CreatedAt   time.Time
}

// Application is a candidate's submission against a job
type Application struct {
	ID              string
	JobID           string
	CompanyID       string
	ApplicantID     string
	ApplicantEmail  string
	ApplicantName   string
	ApplicantPhone  string
	ResumeURL       string
	MatchPercentage float64
	Status          ApplicationStatus
	// InterviewIDs holds ids only; interview state is always read live.
	InterviewIDs []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Interview is one scheduled or conducted session for an application
type Interview struct {
	ID               string
	ApplicationID    string
	JobID            string
	CompanyID        string
	CandidateID      string
	CandidateEmail   string
	CandidateName    string
	InterviewerID    string
	InterviewerEmail string
	Mode             InterviewMode
	InterviewTypes   []string
	Status           InterviewStatus

	ScheduledStart  time.Time
	ScheduledEnd    time.Time
	DurationMinutes int
	CalendarEventID string

	RescheduleCount       int
	OldScheduledAt        *time.Time
	RequestedNewTime      *time.Time
	RescheduleReason      string
	RescheduleRequestedBy RescheduleParty
	RejectReason          string

	CandidateAcceptedAt *time.Time
	StartedAt           *time.Time
	EndedAt             *time.Time
	OverallScore        *float64
	Result              string
	Suggestion          string
	Comments            string
	CancelReason        string
	CancelledAt         *time.Time
	ReminderSentAt      *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasSchedule reports whether a slot has been assigned
func (i Interview) HasSchedule() bool {
	return !i.ScheduledStart.IsZero()
}

// InterviewUpdate is a partial write applied to an interview.
// Nil fields are left untouched.
type InterviewUpdate struct {
	Status                *InterviewStatus
	ScheduledStart        *time.Time
	ScheduledEnd          *time.Time
	OldScheduledAt        *time.Time
	RequestedNewTime      *time.Time
	RescheduleReason      *string
	RescheduleRequestedBy *RescheduleParty
	RejectReason          *string
	CandidateAcceptedAt   *time.Time
	StartedAt             *time.Time
	EndedAt               *time.Time
	OverallScore          *float64
	Result                *string
	Suggestion            *string
	Comments              *string
	CancelReason          *string
	CancelledAt           *time.Time

	// IncrementReschedule bumps reschedule_count in the store, guarded by RescheduleLimit.
	IncrementReschedule bool
}

// CompanySettings is per-tenant interview policy
type CompanySettings struct {
	CompanyID             string
	MaxAIInterviews       int
	AllowAdditionalRounds bool
	MaxAdditionalRounds   int
	ReminderHoursBefore   int
	AutoRejectBelowScore  float64
	UpdatedAt             time.Time
}

// DefaultCompanySettings returns the policy applied when a company has none stored
func DefaultCompanySettings(companyID string) CompanySettings {
	return CompanySettings{
		CompanyID:           companyID,
		MaxAIInterviews:     DefaultMaxAIInterviews,
		ReminderHoursBefore: DefaultReminderHoursBefore,
	}
}

// Notification is an append-only in-app message
type Notification struct {
	ID            string
	SenderID      string
	ReceiverID    string
	ReceiverEmail string
	Type          NotificationType
	Title         string
	Message       string
	Metadata      map[string]string
	Read          bool
	CreatedAt     time.Time
}

// QnA is one generated question with its answer and evaluation
type QnA struct {
	ID          string
	InterviewID string
	Position    int
	Question    string
	Category    string
	Answer      string
	Score       *float64
	Feedback    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// QuotaStatus is the result of an AI interview quota check
type QuotaStatus struct {
	Allowed bool `json:"allowed"`
	Current int  `json:"current"`
	Max     int  `json:"max"`
}

// ApplicationView joins an application with its live interviews
type ApplicationView struct {
	Application Application
	Interviews  []Interview
}

// CalendarEvent mirrors an interview slot in an external calendar
type CalendarEvent struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Attendees   []string
}

// ScorecardRow is one completed interview in an export
type ScorecardRow struct {
	InterviewID    string
	CandidateName  string
	CandidateEmail string
	Mode           InterviewMode
	OverallScore   float64
	Result         string
	Suggestion     string
	EndedAt        time.Time
}
