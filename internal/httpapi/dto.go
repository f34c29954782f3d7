package httpapi

import (
	"time"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/assessment"
)

type interviewJSON struct {
	ID                    string     `json:"id"`
	ApplicationID         string     `json:"application_id"`
	JobID                 string     `json:"job_id"`
	CompanyID             string     `json:"company_id"`
	CandidateID           string     `json:"candidate_id"`
	CandidateEmail        string     `json:"candidate_email"`
	CandidateName         string     `json:"candidate_name,omitempty"`
	InterviewerID         string     `json:"interviewer_id,omitempty"`
	InterviewerEmail      string     `json:"interviewer_email,omitempty"`
	Mode                  string     `json:"mode"`
	InterviewTypes        []string   `json:"interview_types,omitempty"`
	Status                string     `json:"status"`
	ScheduledStart        *time.Time `json:"scheduled_start,omitempty"`
	ScheduledEnd          *time.Time `json:"scheduled_end,omitempty"`
	DurationMinutes       int        `json:"duration_minutes"`
	CalendarEventID       string     `json:"calendar_event_id,omitempty"`
	RescheduleCount       int        `json:"reschedule_count"`
	OldScheduledAt        *time.Time `json:"old_scheduled_at,omitempty"`
	RequestedNewTime      *time.Time `json:"requested_new_time,omitempty"`
	RescheduleReason      string     `json:"reschedule_reason,omitempty"`
	RescheduleRequestedBy string     `json:"reschedule_requested_by,omitempty"`
	RejectReason          string     `json:"reject_reason,omitempty"`
	CandidateAcceptedAt   *time.Time `json:"candidate_accepted_at,omitempty"`
	StartedAt             *time.Time `json:"started_at,omitempty"`
	EndedAt               *time.Time `json:"ended_at,omitempty"`
	OverallScore          *float64   `json:"overall_score,omitempty"`
	Result                string     `json:"result,omitempty"`
	Suggestion            string     `json:"suggestion,omitempty"`
	Comments              string     `json:"comments,omitempty"`
	CancelReason          string     `json:"cancel_reason,omitempty"`
	CancelledAt           *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

func toInterview(iv domain.Interview) interviewJSON {
	return interviewJSON{
		ID:                    iv.ID,
		ApplicationID:         iv.ApplicationID,
		JobID:                 iv.JobID,
		CompanyID:             iv.CompanyID,
		CandidateID:           iv.CandidateID,
		CandidateEmail:        iv.CandidateEmail,
		CandidateName:         iv.CandidateName,
		InterviewerID:         iv.InterviewerID,
		InterviewerEmail:      iv.InterviewerEmail,
		Mode:                  string(iv.Mode),
		InterviewTypes:        iv.InterviewTypes,
		Status:                string(iv.Status),
		ScheduledStart:        optTime(iv.ScheduledStart),
		ScheduledEnd:          optTime(iv.ScheduledEnd),
		DurationMinutes:       iv.DurationMinutes,
		CalendarEventID:       iv.CalendarEventID,
		RescheduleCount:       iv.RescheduleCount,
		OldScheduledAt:        iv.OldScheduledAt,
		RequestedNewTime:      iv.RequestedNewTime,
		RescheduleReason:      iv.RescheduleReason,
		RescheduleRequestedBy: string(iv.RescheduleRequestedBy),
		RejectReason:          iv.RejectReason,
		CandidateAcceptedAt:   iv.CandidateAcceptedAt,
		StartedAt:             iv.StartedAt,
		EndedAt:               iv.EndedAt,
		OverallScore:          iv.OverallScore,
		Result:                iv.Result,
		Suggestion:            iv.Suggestion,
		Comments:              iv.Comments,
		CancelReason:          iv.CancelReason,
		CancelledAt:           iv.CancelledAt,
		CreatedAt:             iv.CreatedAt,
		UpdatedAt:             iv.UpdatedAt,
	}
}

func toInterviews(ivs []domain.Interview) []interviewJSON {
	out := make([]interviewJSON, len(ivs))
	for i, iv := range ivs {
		out[i] = toInterview(iv)
	}
	return out
}

type applicationJSON struct {
	ID              string          `json:"id"`
	JobID           string          `json:"job_id"`
	CompanyID       string          `json:"company_id"`
	ApplicantID     string          `json:"applicant_id"`
	ApplicantEmail  string          `json:"applicant_email"`
	ApplicantName   string          `json:"applicant_name,omitempty"`
	MatchPercentage float64         `json:"match_percentage"`
	Status          string          `json:"status"`
	InterviewIDs    []string        `json:"interview_ids"`
	Interviews      []interviewJSON `json:"interviews"`
}

func toApplicationView(v domain.ApplicationView) applicationJSON {
	ids := v.Application.InterviewIDs
	if ids == nil {
		ids = []string{}
	}
	return applicationJSON{
		ID:              v.Application.ID,
		JobID:           v.Application.JobID,
		CompanyID:       v.Application.CompanyID,
		ApplicantID:     v.Application.ApplicantID,
		ApplicantEmail:  v.Application.ApplicantEmail,
		ApplicantName:   v.Application.ApplicantName,
		MatchPercentage: v.Application.MatchPercentage,
		Status:          string(v.Application.Status),
		InterviewIDs:    ids,
		Interviews:      toInterviews(v.Interviews),
	}
}

type settingsJSON struct {
	CompanyID             string    `json:"company_id"`
	MaxAIInterviews       int       `json:"max_ai_interviews"`
	AllowAdditionalRounds bool      `json:"allow_additional_rounds"`
	MaxAdditionalRounds   int       `json:"max_additional_rounds"`
	ReminderHoursBefore   int       `json:"reminder_hours_before"`
	AutoRejectBelowScore  float64   `json:"auto_reject_below_score"`
	UpdatedAt             time.Time `json:"updated_at,omitzero"`
}

func toSettings(s domain.CompanySettings) settingsJSON {
	return settingsJSON{
		CompanyID:             s.CompanyID,
		MaxAIInterviews:       s.MaxAIInterviews,
		AllowAdditionalRounds: s.AllowAdditionalRounds,
		MaxAdditionalRounds:   s.MaxAdditionalRounds,
		ReminderHoursBefore:   s.ReminderHoursBefore,
		AutoRejectBelowScore:  s.AutoRejectBelowScore,
		UpdatedAt:             s.UpdatedAt,
	}
}

type notificationJSON struct {
	ID        string            `json:"id"`
	SenderID  string            `json:"sender_id"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"created_at"`
}

func toNotifications(ns []domain.Notification) []notificationJSON {
	out := make([]notificationJSON, len(ns))
	for i, n := range ns {
		out[i] = notificationJSON{
			ID:        n.ID,
			SenderID:  n.SenderID,
			Type:      string(n.Type),
			Title:     n.Title,
			Message:   n.Message,
			Metadata:  n.Metadata,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		}
	}
	return out
}

type questionJSON struct {
	ID       string   `json:"id"`
	Position int      `json:"position"`
	Question string   `json:"question"`
	Category string   `json:"category,omitempty"`
	Answer   string   `json:"answer,omitempty"`
	Score    *float64 `json:"score,omitempty"`
	Feedback string   `json:"feedback,omitempty"`
}

// toQuestions hides scores and feedback from candidates
func toQuestions(items []domain.QnA, staff bool) []questionJSON {
	out := make([]questionJSON, len(items))
	for i, q := range items {
		out[i] = questionJSON{
			ID:       q.ID,
			Position: q.Position,
			Question: q.Question,
			Category: q.Category,
			Answer:   q.Answer,
		}
		if staff {
			out[i].Score = q.Score
			out[i].Feedback = q.Feedback
		}
	}
	return out
}

type evaluationJSON struct {
	OverallScore float64        `json:"overall_score"`
	Result       string         `json:"result"`
	Suggestion   string         `json:"suggestion,omitempty"`
	Summary      string         `json:"summary,omitempty"`
	Items        []questionJSON `json:"items"`
}

func toEvaluation(e assessment.Evaluation) evaluationJSON {
	return evaluationJSON{
		OverallScore: e.OverallScore,
		Result:       e.Result,
		Suggestion:   e.Suggestion,
		Summary:      e.Summary,
		Items:        toQuestions(e.Items, true),
	}
}

func optTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}
