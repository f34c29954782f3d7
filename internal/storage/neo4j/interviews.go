package neo4j

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/repository"
)

type interviewRepo struct {
	exec executor
}

var _ repository.InterviewRepository = (*interviewRepo)(nil)

func toInterview(props map[string]any) domain.Interview {
	return domain.Interview{
		ID:                    propString(props, "id"),
		ApplicationID:         propString(props, "application_id"),
		JobID:                 propString(props, "job_id"),
		CompanyID:             propString(props, "company_id"),
		CandidateID:           propString(props, "candidate_id"),
		CandidateEmail:        propString(props, "candidate_email"),
		CandidateName:         propString(props, "candidate_name"),
		InterviewerID:         propString(props, "interviewer_id"),
		InterviewerEmail:      propString(props, "interviewer_email"),
		Mode:                  domain.InterviewMode(propString(props, "mode")),
		InterviewTypes:        propStrings(props, "interview_types"),
		Status:                domain.InterviewStatus(propString(props, "status")),
		ScheduledStart:        propTime(props, "scheduled_start"),
		ScheduledEnd:          propTime(props, "scheduled_end"),
		DurationMinutes:       propInt(props, "duration_minutes"),
		CalendarEventID:       propString(props, "calendar_event_id"),
		RescheduleCount:       propInt(props, "reschedule_count"),
		OldScheduledAt:        propTimePtr(props, "old_scheduled_at"),
		RequestedNewTime:      propTimePtr(props, "requested_new_time"),
		RescheduleReason:      propString(props, "reschedule_reason"),
		RescheduleRequestedBy: domain.RescheduleParty(propString(props, "reschedule_requested_by")),
		RejectReason:          propString(props, "reject_reason"),
		CandidateAcceptedAt:   propTimePtr(props, "candidate_accepted_at"),
		StartedAt:             propTimePtr(props, "started_at"),
		EndedAt:               propTimePtr(props, "ended_at"),
		OverallScore:          propFloatPtr(props, "overall_score"),
		Result:                propString(props, "result"),
		Suggestion:            propString(props, "suggestion"),
		Comments:              propString(props, "comments"),
		CancelReason:          propString(props, "cancel_reason"),
		CancelledAt:           propTimePtr(props, "cancelled_at"),
		ReminderSentAt:        propTimePtr(props, "reminder_sent_at"),
		CreatedAt:             propTime(props, "created_at"),
		UpdatedAt:             propTime(props, "updated_at"),
	}
}

func interviewProps(iv domain.Interview, now int64) map[string]any {
	return map[string]any{
		"id":                      iv.ID,
		"application_id":          iv.ApplicationID,
		"job_id":                  iv.JobID,
		"company_id":              iv.CompanyID,
		"candidate_id":            iv.CandidateID,
		"candidate_email":         iv.CandidateEmail,
		"candidate_name":          iv.CandidateName,
		"interviewer_id":          iv.InterviewerID,
		"interviewer_email":       iv.InterviewerEmail,
		"mode":                    string(iv.Mode),
		"interview_types":         stringsOrEmpty(iv.InterviewTypes),
		"status":                  string(iv.Status),
		"scheduled_start":         zeroableMillis(iv.ScheduledStart),
		"scheduled_end":           zeroableMillis(iv.ScheduledEnd),
		"duration_minutes":        iv.DurationMinutes,
		"calendar_event_id":       iv.CalendarEventID,
		"reschedule_count":        iv.RescheduleCount,
		"old_scheduled_at":        ptrMillis(iv.OldScheduledAt),
		"requested_new_time":      ptrMillis(iv.RequestedNewTime),
		"reschedule_reason":       iv.RescheduleReason,
		"reschedule_requested_by": string(iv.RescheduleRequestedBy),
		"reject_reason":           iv.RejectReason,
		"candidate_accepted_at":   ptrMillis(iv.CandidateAcceptedAt),
		"started_at":              ptrMillis(iv.StartedAt),
		"ended_at":                ptrMillis(iv.EndedAt),
		"overall_score":           ptrFloat(iv.OverallScore),
		"result":                  iv.Result,
		"suggestion":              iv.Suggestion,
		"comments":                iv.Comments,
		"cancel_reason":           iv.CancelReason,
		"cancelled_at":            ptrMillis(iv.CancelledAt),
		"reminder_sent_at":        ptrMillis(iv.ReminderSentAt),
		"created_at":              now,
		"updated_at":              now,
	}
}

// updateProps renders u as a property map for SET +=. A null value removes
// the property, which is how pointer fields set to the zero time clear.
func updateProps(u domain.InterviewUpdate) map[string]any {
	props := map[string]any{}
	if u.Status != nil {
		props["status"] = string(*u.Status)
	}
	if u.ScheduledStart != nil {
		props["scheduled_start"] = zeroableMillis(*u.ScheduledStart)
	}
	if u.ScheduledEnd != nil {
		props["scheduled_end"] = zeroableMillis(*u.ScheduledEnd)
	}
	if u.OldScheduledAt != nil {
		props["old_scheduled_at"] = ptrMillis(u.OldScheduledAt)
	}
	if u.RequestedNewTime != nil {
		props["requested_new_time"] = ptrMillis(u.RequestedNewTime)
	}
	if u.RescheduleReason != nil {
		props["reschedule_reason"] = *u.RescheduleReason
	}
	if u.RescheduleRequestedBy != nil {
		props["reschedule_requested_by"] = string(*u.RescheduleRequestedBy)
	}
	if u.RejectReason != nil {
		props["reject_reason"] = *u.RejectReason
	}
	if u.CandidateAcceptedAt != nil {
		props["candidate_accepted_at"] = ptrMillis(u.CandidateAcceptedAt)
	}
	if u.StartedAt != nil {
		props["started_at"] = ptrMillis(u.StartedAt)
	}
	if u.EndedAt != nil {
		props["ended_at"] = ptrMillis(u.EndedAt)
	}
	if u.OverallScore != nil {
		props["overall_score"] = *u.OverallScore
	}
	if u.Result != nil {
		props["result"] = *u.Result
	}
	if u.Suggestion != nil {
		props["suggestion"] = *u.Suggestion
	}
	if u.Comments != nil {
		props["comments"] = *u.Comments
	}
	if u.CancelReason != nil {
		props["cancel_reason"] = *u.CancelReason
	}
	if u.CancelledAt != nil {
		props["cancelled_at"] = ptrMillis(u.CancelledAt)
	}
	return props
}

func interviewsFrom(records []*neo4j.Record) ([]domain.Interview, error) {
	out := make([]domain.Interview, 0, len(records))
	for _, rec := range records {
		props, err := nodeProps(rec, "i")
		if err != nil {
			return nil, err
		}
		out = append(out, toInterview(props))
	}
	return out, nil
}

func (r *interviewRepo) Get(ctx context.Context, id string) (domain.Interview, error) {
	var iv domain.Interview
	err := r.exec.read(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) error {
		records, err := collect(ctx, tx, `MATCH (i:Interview {id: $id}) RETURN i`, map[string]any{"id": id})
		if err != nil {
			return fmt.Errorf("get interview: %w", err)
		}
		if len(records) == 0 {
			return notFound("interview", id)
		}
		props, err := nodeProps(records[0], "i")
		if err != nil {
			return err
		}
		iv = toInterview(props)
		return nil
	})
	return iv, err
}

func (r *interviewRepo) Add(ctx context.Context, iv domain.Interview) (string, error) {
	if iv.ID == "" {
		iv.ID = uuid.NewString()
	}

	err := r.exec.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) error {
		if isActive(iv.Status) {
			n, err := count(ctx, tx, `MATCH (i:Interview {application_id: $application_id, job_id: $job_id, mode: $mode})
				WHERE i.status IN $active
				RETURN count(i) AS n`, map[string]any{
				"application_id": iv.ApplicationID,
				"job_id":         iv.JobID,
				"mode":           string(iv.Mode),
				"active":         statusStrings(domain.ActiveStatuses),
			})
			if err != nil {
				return fmt.Errorf("check active interview: %w", err)
			}
			if n > 0 {
				return fmt.Errorf("active %s interview for application %s: %w", iv.Mode, iv.ApplicationID, domain.ErrConflict)
			}
		}

		_, err := collect(ctx, tx, `CREATE (i:Interview) SET i = $props`, map[string]any{
			"props": interviewProps(iv, millis(r.exec.now())),
		})
		if err != nil {
			if isConstraintViolation(err) {
				return fmt.Errorf("interview %s: %w", iv.ID, domain.ErrConflict)
			}
			return fmt.Errorf("create interview: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return iv.ID, nil
}

func isActive(s domain.InterviewStatus) bool {
	for _, a := range domain.ActiveStatuses {
		if a == s {
			return true
		}
	}
	return false
}

func (r *interviewRepo) Update(
	ctx context.Context,
	id string,
	expected []domain.InterviewStatus,
	u domain.InterviewUpdate,
) (domain.Interview, error) {
	var (
		updated domain.Interview
		matched bool
	)

	err := r.exec.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) error {
		var where []string
		params := map[string]any{
			"id":    id,
			"props": updateProps(u),
			"now":   millis(r.exec.now()),
			"inc":   u.IncrementReschedule,
		}
		if len(expected) > 0 {
			where = append(where, "i.status IN $expected")
			params["expected"] = statusStrings(expected)
		}
		if u.IncrementReschedule {
			where = append(where, "coalesce(i.reschedule_count, 0) < $limit")
			params["limit"] = domain.RescheduleLimit
		}

		// the guard is read under the node's write lock so concurrent
		// transitions see each other's committed status and count
		cypher := `MATCH (i:Interview {id: $id})
			SET i._lock = true
			REMOVE i._lock
			WITH i`
		if len(where) > 0 {
			cypher += ` WHERE ` + strings.Join(where, " AND ")
		}
		cypher += `
			SET i += $props,
				i.updated_at = $now,
				i.reschedule_count = coalesce(i.reschedule_count, 0) + CASE WHEN $inc THEN 1 ELSE 0 END
			RETURN i`

		records, err := collect(ctx, tx, cypher, params)
		if err != nil {
			return fmt.Errorf("update interview: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		props, err := nodeProps(records[0], "i")
		if err != nil {
			return err
		}
		updated, matched = toInterview(props), true
		return nil
	})
	if err != nil {
		return domain.Interview{}, err
	}
	if matched {
		return updated, nil
	}

	current, err := r.Get(ctx, id)
	if err != nil {
		return domain.Interview{}, err
	}
	return current, repository.StaleReason(current, expected, u.IncrementReschedule)
}

func (r *interviewRepo) SetCalendarEvent(ctx context.Context, id, eventID string) error {
	return r.exec.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) error {
		n, err := count(ctx, tx, `MATCH (i:Interview {id: $id})
			SET i.calendar_event_id = $event_id, i.updated_at = $now
			RETURN count(i) AS n`, map[string]any{"id": id, "event_id": eventID, "now": millis(r.exec.now())})
		if err != nil {
			return fmt.Errorf("set calendar event: %w", err)
		}
		if n == 0 {
			return notFound("interview", id)
		}
		return nil
	})
}

func filterClause(f repository.InterviewFilter) (string, map[string]any) {
	var where []string
	params := map[string]any{}

	if f.ApplicationID != "" {
		where = append(where, "i.application_id = $application_id")
		params["application_id"] = f.ApplicationID
	}
	if f.JobID != "" {
		where = append(where, "i.job_id = $job_id")
		params["job_id"] = f.JobID
	}
	if f.Mode != "" {
		where = append(where, "i.mode = $mode")
		params["mode"] = string(f.Mode)
	}
	if len(f.Statuses) > 0 {
		where = append(where, "i.status IN $statuses")
		params["statuses"] = statusStrings(f.Statuses)
	}

	if len(where) == 0 {
		return "", params
	}
	return " WHERE " + strings.Join(where, " AND "), params
}

func (r *interviewRepo) Count(ctx context.Context, f repository.InterviewFilter) (int, error) {
	where, params := filterClause(f)

	var n int
	err := r.exec.read(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) error {
		var err error
		n, err = count(ctx, tx, `MATCH (i:Interview)`+where+` RETURN count(i) AS n`, params)
		if err != nil {
			return fmt.Errorf("count interviews: %w", err)
		}
		return nil
	})
	return n, err
}

func (r *interviewRepo) List(ctx context.Context, f repository.InterviewFilter) ([]domain.Interview, error) {
	where, params := filterClause(f)
	return r.list(ctx, `MATCH (i:Interview)`+where+` RETURN i ORDER BY i.created_at, i.id`, params)
}

func (r *interviewRepo) ListByIDs(ctx context.Context, ids []string) ([]domain.Interview, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, `MATCH (i:Interview) WHERE i.id IN $ids RETURN i ORDER BY i.created_at, i.id`,
		map[string]any{"ids": ids})
}

func (r *interviewRepo) ListDueForReminder(ctx context.Context, from, to time.Time) ([]domain.Interview, error) {
	return r.list(ctx, `MATCH (i:Interview)
		WHERE i.status IN $statuses AND i.reminder_sent_at IS NULL
			AND i.scheduled_start >= $from AND i.scheduled_start < $to
		RETURN i ORDER BY i.scheduled_start, i.id`, map[string]any{
		"statuses": statusStrings([]domain.InterviewStatus{domain.StatusScheduled, domain.StatusConfirmed}),
		"from":     millis(from),
		"to":       millis(to),
	})
}

func (r *interviewRepo) list(ctx context.Context, cypher string, params map[string]any) ([]domain.Interview, error) {
	var out []domain.Interview
	err := r.exec.read(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) error {
		records, err := collect(ctx, tx, cypher, params)
		if err != nil {
			return fmt.Errorf("list interviews: %w", err)
		}
		out, err = interviewsFrom(records)
		return err
	})
	return out, err
}

func (r *interviewRepo) MarkReminded(ctx context.Context, id string, at time.Time) (bool, error) {
	var n int
	err := r.exec.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) error {
		var err error
		n, err = count(ctx, tx, `MATCH (i:Interview {id: $id})
			WHERE i.reminder_sent_at IS NULL
			SET i.reminder_sent_at = $at, i.updated_at = $now
			RETURN count(i) AS n`, map[string]any{"id": id, "at": millis(at), "now": millis(r.exec.now())})
		if err != nil {
			return fmt.Errorf("mark reminded: %w", err)
		}
		return nil
	})
	return n == 1, err
}
