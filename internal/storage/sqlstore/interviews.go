package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/repository"
)

type interviewRow struct {
	ID                    string          `db:"id"`
	ApplicationID         string          `db:"application_id"`
	JobID                 string          `db:"job_id"`
	CompanyID             string          `db:"company_id"`
	CandidateID           string          `db:"candidate_id"`
	CandidateEmail        string          `db:"candidate_email"`
	CandidateName         string          `db:"candidate_name"`
	InterviewerID         string          `db:"interviewer_id"`
	InterviewerEmail      string          `db:"interviewer_email"`
	Mode                  string          `db:"mode"`
	InterviewTypes        string          `db:"interview_types"`
	Status                string          `db:"status"`
	ScheduledStart        sql.NullInt64   `db:"scheduled_start"`
	ScheduledEnd          sql.NullInt64   `db:"scheduled_end"`
	DurationMinutes       int             `db:"duration_minutes"`
	CalendarEventID       string          `db:"calendar_event_id"`
	RescheduleCount       int             `db:"reschedule_count"`
	OldScheduledAt        sql.NullInt64   `db:"old_scheduled_at"`
	RequestedNewTime      sql.NullInt64   `db:"requested_new_time"`
	RescheduleReason      string          `db:"reschedule_reason"`
	RescheduleRequestedBy string          `db:"reschedule_requested_by"`
	RejectReason          string          `db:"reject_reason"`
	CandidateAcceptedAt   sql.NullInt64   `db:"candidate_accepted_at"`
	StartedAt             sql.NullInt64   `db:"started_at"`
	EndedAt               sql.NullInt64   `db:"ended_at"`
	OverallScore          sql.NullFloat64 `db:"overall_score"`
	Result                string          `db:"result"`
	Suggestion            string          `db:"suggestion"`
	Comments              string          `db:"comments"`
	CancelReason          string          `db:"cancel_reason"`
	CancelledAt           sql.NullInt64   `db:"cancelled_at"`
	ReminderSentAt        sql.NullInt64   `db:"reminder_sent_at"`
	CreatedAt             int64           `db:"created_at"`
	UpdatedAt             int64           `db:"updated_at"`
}

const interviewColumns = `id, application_id, job_id, company_id, candidate_id, candidate_email, candidate_name,
	interviewer_id, interviewer_email, mode, interview_types, status, scheduled_start, scheduled_end,
	duration_minutes, calendar_event_id, reschedule_count, old_scheduled_at, requested_new_time,
	reschedule_reason, reschedule_requested_by, reject_reason, candidate_accepted_at, started_at, ended_at,
	overall_score, result, suggestion, comments, cancel_reason, cancelled_at, reminder_sent_at,
	created_at, updated_at`

func (r interviewRow) toDomain() domain.Interview {
	return domain.Interview{
		ID:                    r.ID,
		ApplicationID:         r.ApplicationID,
		JobID:                 r.JobID,
		CompanyID:             r.CompanyID,
		CandidateID:           r.CandidateID,
		CandidateEmail:        r.CandidateEmail,
		CandidateName:         r.CandidateName,
		InterviewerID:         r.InterviewerID,
		InterviewerEmail:      r.InterviewerEmail,
		Mode:                  domain.InterviewMode(r.Mode),
		InterviewTypes:        decodeStrings(r.InterviewTypes),
		Status:                domain.InterviewStatus(r.Status),
		ScheduledStart:        timeOrZero(r.ScheduledStart),
		ScheduledEnd:          timeOrZero(r.ScheduledEnd),
		DurationMinutes:       r.DurationMinutes,
		CalendarEventID:       r.CalendarEventID,
		RescheduleCount:       r.RescheduleCount,
		OldScheduledAt:        fromNullMillis(r.OldScheduledAt),
		RequestedNewTime:      fromNullMillis(r.RequestedNewTime),
		RescheduleReason:      r.RescheduleReason,
		RescheduleRequestedBy: domain.RescheduleParty(r.RescheduleRequestedBy),
		RejectReason:          r.RejectReason,
		CandidateAcceptedAt:   fromNullMillis(r.CandidateAcceptedAt),
		StartedAt:             fromNullMillis(r.StartedAt),
		EndedAt:               fromNullMillis(r.EndedAt),
		OverallScore:          fromNullFloat(r.OverallScore),
		Result:                r.Result,
		Suggestion:            r.Suggestion,
		Comments:              r.Comments,
		CancelReason:          r.CancelReason,
		CancelledAt:           fromNullMillis(r.CancelledAt),
		ReminderSentAt:        fromNullMillis(r.ReminderSentAt),
		CreatedAt:             fromMillis(r.CreatedAt),
		UpdatedAt:             fromMillis(r.UpdatedAt),
	}
}

func rowsToInterviews(rows []interviewRow) []domain.Interview {
	out := make([]domain.Interview, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}

type interviewRepo struct {
	q *queryer
}

var _ repository.InterviewRepository = (*interviewRepo)(nil)

func (r *interviewRepo) Get(ctx context.Context, id string) (domain.Interview, error) {
	var row interviewRow
	if err := r.q.get(ctx, &row, `SELECT `+interviewColumns+` FROM interviews WHERE id = ?`, id); err != nil {
		return domain.Interview{}, notFound(err, "interview", id)
	}
	return row.toDomain(), nil
}

func (r *interviewRepo) Add(ctx context.Context, iv domain.Interview) (string, error) {
	if iv.ID == "" {
		iv.ID = uuid.NewString()
	}
	now := r.q.now()

	_, err := r.q.exec(ctx, `INSERT INTO interviews (`+interviewColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		iv.ID, iv.ApplicationID, iv.JobID, iv.CompanyID, iv.CandidateID, iv.CandidateEmail, iv.CandidateName,
		iv.InterviewerID, iv.InterviewerEmail, string(iv.Mode), encodeStrings(iv.InterviewTypes), string(iv.Status),
		zeroableMillis(iv.ScheduledStart), zeroableMillis(iv.ScheduledEnd),
		iv.DurationMinutes, iv.CalendarEventID, iv.RescheduleCount,
		nullMillis(iv.OldScheduledAt), nullMillis(iv.RequestedNewTime),
		iv.RescheduleReason, string(iv.RescheduleRequestedBy), iv.RejectReason,
		nullMillis(iv.CandidateAcceptedAt), nullMillis(iv.StartedAt), nullMillis(iv.EndedAt),
		nullFloat(iv.OverallScore), iv.Result, iv.Suggestion, iv.Comments, iv.CancelReason,
		nullMillis(iv.CancelledAt), nullMillis(iv.ReminderSentAt),
		now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("active %s interview for application %s: %w", iv.Mode, iv.ApplicationID, domain.ErrConflict)
		}
		return "", fmt.Errorf("insert interview: %w", err)
	}
	return iv.ID, nil
}

func (r *interviewRepo) Update(
	ctx context.Context,
	id string,
	expected []domain.InterviewStatus,
	u domain.InterviewUpdate,
) (domain.Interview, error) {
	set, args := updateClauses(u)
	set = append(set, "updated_at = ?")
	args = append(args, r.q.now())

	query := `UPDATE interviews SET ` + strings.Join(set, ", ") + ` WHERE id = ?`
	args = append(args, id)
	if len(expected) > 0 {
		query += ` AND status IN (?)`
		args = append(args, statusStrings(expected))
	}
	if u.IncrementReschedule {
		query += ` AND reschedule_count < ?`
		args = append(args, domain.RescheduleLimit)
	}

	res, err := r.q.execIn(ctx, query, args...)
	if err != nil {
		return domain.Interview{}, fmt.Errorf("update interview: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Interview{}, fmt.Errorf("update interview: %w", err)
	}

	current, err := r.Get(ctx, id)
	if err != nil {
		return domain.Interview{}, err
	}
	if n == 0 {
		return current, repository.StaleReason(current, expected, u.IncrementReschedule)
	}
	return current, nil
}

// updateClauses renders u as SET fragments
func updateClauses(u domain.InterviewUpdate) ([]string, []any) {
	var set []string
	var args []any
	add := func(col string, v any) {
		set = append(set, col+" = ?")
		args = append(args, v)
	}

	if u.Status != nil {
		add("status", string(*u.Status))
	}
	if u.ScheduledStart != nil {
		add("scheduled_start", zeroableMillis(*u.ScheduledStart))
	}
	if u.ScheduledEnd != nil {
		add("scheduled_end", zeroableMillis(*u.ScheduledEnd))
	}
	if u.OldScheduledAt != nil {
		add("old_scheduled_at", nullMillis(u.OldScheduledAt))
	}
	if u.RequestedNewTime != nil {
		add("requested_new_time", nullMillis(u.RequestedNewTime))
	}
	if u.RescheduleReason != nil {
		add("reschedule_reason", *u.RescheduleReason)
	}
	if u.RescheduleRequestedBy != nil {
		add("reschedule_requested_by", string(*u.RescheduleRequestedBy))
	}
	if u.RejectReason != nil {
		add("reject_reason", *u.RejectReason)
	}
	if u.CandidateAcceptedAt != nil {
		add("candidate_accepted_at", nullMillis(u.CandidateAcceptedAt))
	}
	if u.StartedAt != nil {
		add("started_at", nullMillis(u.StartedAt))
	}
	if u.EndedAt != nil {
		add("ended_at", nullMillis(u.EndedAt))
	}
	if u.OverallScore != nil {
		add("overall_score", nullFloat(u.OverallScore))
	}
	if u.Result != nil {
		add("result", *u.Result)
	}
	if u.Suggestion != nil {
		add("suggestion", *u.Suggestion)
	}
	if u.Comments != nil {
		add("comments", *u.Comments)
	}
	if u.CancelReason != nil {
		add("cancel_reason", *u.CancelReason)
	}
	if u.CancelledAt != nil {
		add("cancelled_at", nullMillis(u.CancelledAt))
	}
	if u.IncrementReschedule {
		set = append(set, "reschedule_count = reschedule_count + 1")
	}

	return set, args
}

func (r *interviewRepo) SetCalendarEvent(ctx context.Context, id, eventID string) error {
	res, err := r.q.exec(ctx, `UPDATE interviews SET calendar_event_id = ?, updated_at = ? WHERE id = ?`,
		eventID, r.q.now(), id)
	if err != nil {
		return fmt.Errorf("set calendar event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("interview %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func filterClause(f repository.InterviewFilter) (string, []any) {
	var where []string
	var args []any

	if f.ApplicationID != "" {
		where = append(where, "application_id = ?")
		args = append(args, f.ApplicationID)
	}
	if f.JobID != "" {
		where = append(where, "job_id = ?")
		args = append(args, f.JobID)
	}
	if f.Mode != "" {
		where = append(where, "mode = ?")
		args = append(args, string(f.Mode))
	}
	if len(f.Statuses) > 0 {
		where = append(where, "status IN (?)")
		args = append(args, statusStrings(f.Statuses))
	}

	if len(where) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

func (r *interviewRepo) Count(ctx context.Context, f repository.InterviewFilter) (int, error) {
	where, args := filterClause(f)

	var n int
	if err := r.q.getIn(ctx, &n, `SELECT COUNT(*) FROM interviews`+where, args...); err != nil {
		return 0, fmt.Errorf("count interviews: %w", err)
	}
	return n, nil
}

func (r *interviewRepo) List(ctx context.Context, f repository.InterviewFilter) ([]domain.Interview, error) {
	where, args := filterClause(f)

	var rows []interviewRow
	err := r.q.in(ctx, &rows, `SELECT `+interviewColumns+` FROM interviews`+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list interviews: %w", err)
	}
	return rowsToInterviews(rows), nil
}

func (r *interviewRepo) ListByIDs(ctx context.Context, ids []string) ([]domain.Interview, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []interviewRow
	err := r.q.in(ctx, &rows, `SELECT `+interviewColumns+` FROM interviews WHERE id IN (?) ORDER BY created_at, id`, ids)
	if err != nil {
		return nil, fmt.Errorf("list interviews: %w", err)
	}
	return rowsToInterviews(rows), nil
}

func (r *interviewRepo) ListDueForReminder(ctx context.Context, from, to time.Time) ([]domain.Interview, error) {
	var rows []interviewRow
	err := r.q.in(ctx, &rows, `SELECT `+interviewColumns+` FROM interviews
		WHERE status IN (?) AND reminder_sent_at IS NULL
		AND scheduled_start >= ? AND scheduled_start < ?
		ORDER BY scheduled_start, id`,
		statusStrings([]domain.InterviewStatus{domain.StatusScheduled, domain.StatusConfirmed}),
		millis(from), millis(to))
	if err != nil {
		return nil, fmt.Errorf("list due interviews: %w", err)
	}
	return rowsToInterviews(rows), nil
}

func (r *interviewRepo) MarkReminded(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.q.exec(ctx, `UPDATE interviews SET reminder_sent_at = ?, updated_at = ?
		WHERE id = ? AND reminder_sent_at IS NULL`, millis(at), r.q.now(), id)
	if err != nil {
		return false, fmt.Errorf("mark reminded: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark reminded: %w", err)
	}
	return n == 1, nil
}
