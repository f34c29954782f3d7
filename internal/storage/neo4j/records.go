package neo4j

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
)

type jobRepo struct {
	exec executor
}

func (r *jobRepo) Get(ctx context.Context, id string) (domain.Job, error) {
	var job domain.Job
	err := r.exec.read(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) error {
		records, err := collect(ctx, tx, `MATCH (j:Job {id: $id}) RETURN j`, map[string]any{"id": id})
		if err != nil {
			return fmt.Errorf("get job: %w", err)
		}
		if len(records) == 0 {
			return notFound("job", id)
		}
		props, err := nodeProps(records[0], "j")
		if err != nil {
			return err
		}
		job = domain.Job{
			ID:          propString(props, "id"),
			CompanyID:   propString(props, "company_id"),
			Title:       propString(props, "title"),
			Description: propString(props, "description"),
			Skills:      propStrings(props, "skills"),
			Location:    propString(props, "location"),
			CreatedBy:   propString(props, "created_by"),
			CreatedAt:   propTime(props, "created_at"),
		}
		return nil
	})
	return job, err
}

func (r *jobRepo) Add(ctx context.Context, job domain.Job) (string, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	createdAt := job.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.exec.now()
	}

	err := r.exec.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) error {
		_, err := collect(ctx, tx, `CREATE (j:Job) SET j = $props`, map[string]any{"props": map[string]any{
			"id":          job.ID,
			"company_id":  job.CompanyID,
			"title":       job.Title,
			"description": job.Description,
			"skills":      stringsOrEmpty(job.Skills),
			"location":    job.Location,
			"created_by":  job.CreatedBy,
			"created_at":  millis(createdAt),
		}})
		if err != nil {
			if isConstraintViolation(err) {
				return fmt.Errorf("job %s: %w", job.ID, domain.ErrConflict)
			}
			return fmt.Errorf("create job: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return job.ID, nil
}

type settingsRepo struct {
	exec executor
}

func (r *settingsRepo) Get(ctx context.Context, companyID string) (domain.CompanySettings, error) {
	var s domain.CompanySettings
	err := r.exec.read(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) error {
		records, err := collect(ctx, tx, `MATCH (c:CompanySettings {company_id: $id}) RETURN c`,
			map[string]any{"id": companyID})
		if err != nil {
			return fmt.Errorf("get company settings: %w", err)
		}
		if len(records) == 0 {
			return notFound("company settings", companyID)
		}
		props, err := nodeProps(records[0], "c")
		if err != nil {
			return err
		}
		s = domain.CompanySettings{
			CompanyID:             propString(props, "company_id"),
			MaxAIInterviews:       propInt(props, "max_ai_interviews"),
			AllowAdditionalRounds: propBool(props, "allow_additional_rounds"),
			MaxAdditionalRounds:   propInt(props, "max_additional_rounds"),
			ReminderHoursBefore:   propInt(props, "reminder_hours_before"),
			AutoRejectBelowScore:  propFloat(props, "auto_reject_below_score"),
			UpdatedAt:             propTime(props, "updated_at"),
		}
		return nil
	})
	return s, err
}

func (r *settingsRepo) Upsert(ctx context.Context, s domain.CompanySettings) error {
	return r.exec.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) error {
		_, err := collect(ctx, tx, `MERGE (c:CompanySettings {company_id: $company_id})
			SET c += $props`, map[string]any{
			"company_id": s.CompanyID,
			"props": map[string]any{
				"max_ai_interviews":       s.MaxAIInterviews,
				"allow_additional_rounds": s.AllowAdditionalRounds,
				"max_additional_rounds":   s.MaxAdditionalRounds,
				"reminder_hours_before":   s.ReminderHoursBefore,
				"auto_reject_below_score": s.AutoRejectBelowScore,
				"updated_at":              millis(r.exec.now()),
			},
		})
		if err != nil {
			return fmt.Errorf("upsert company settings: %w", err)
		}
		return nil
	})
}

type notificationRepo struct {
	exec executor
}

func (r *notificationRepo) Add(ctx context.Context, n domain.Notification) (string, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	createdAt := n.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.exec.now()
	}

	err := r.exec.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) error {
		_, err := collect(ctx, tx, `CREATE (n:Notification) SET n = $props`, map[string]any{"props": map[string]any{
			"id":             n.ID,
			"sender_id":      n.SenderID,
			"receiver_id":    n.ReceiverID,
			"receiver_email": n.ReceiverEmail,
			"type":           string(n.Type),
			"title":          n.Title,
			"message":        n.Message,
			"metadata":       encodeMap(n.Metadata),
			"is_read":        false,
			"created_at":     millis(createdAt),
		}})
		if err != nil {
			return fmt.Errorf("create notification: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return n.ID, nil
}

func (r *notificationRepo) ListForReceiver(ctx context.Context, receiverID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	var out []domain.Notification
	err := r.exec.read(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) error {
		records, err := collect(ctx, tx, `MATCH (n:Notification {receiver_id: $receiver_id})
			RETURN n ORDER BY n.created_at DESC, n.id DESC LIMIT $limit`,
			map[string]any{"receiver_id": receiverID, "limit": limit})
		if err != nil {
			return fmt.Errorf("list notifications: %w", err)
		}

		out = make([]domain.Notification, 0, len(records))
		for _, rec := range records {
			props, err := nodeProps(rec, "n")
			if err != nil {
				return err
			}
			out = append(out, domain.Notification{
				ID:            propString(props, "id"),
				SenderID:      propString(props, "sender_id"),
				ReceiverID:    propString(props, "receiver_id"),
				ReceiverEmail: propString(props, "receiver_email"),
				Type:          domain.NotificationType(propString(props, "type")),
				Title:         propString(props, "title"),
				Message:       propString(props, "message"),
				Metadata:      decodeMap(propString(props, "metadata")),
				Read:          propBool(props, "is_read"),
				CreatedAt:     propTime(props, "created_at"),
			})
		}
		return nil
	})
	return out, err
}

func (r *notificationRepo) MarkRead(ctx context.Context, id, receiverID string) error {
	return r.exec.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) error {
		n, err := count(ctx, tx, `MATCH (note:Notification {id: $id, receiver_id: $receiver_id})
			SET note.is_read = true
			RETURN count(note) AS n`, map[string]any{"id": id, "receiver_id": receiverID})
		if err != nil {
			return fmt.Errorf("mark notification read: %w", err)
		}
		if n == 0 {
			return notFound("notification", id)
		}
		return nil
	})
}

type qnaRepo struct {
	exec executor
}

// Replace swaps the question set of an interview. Run it inside WithinTx.
func (r *qnaRepo) Replace(ctx context.Context, interviewID string, items []domain.QnA) error {
	now := millis(r.exec.now())
	rows := make([]any, 0, len(items))
	for i, item := range items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		rows = append(rows, map[string]any{
			"id":           item.ID,
			"interview_id": interviewID,
			"position":     i + 1,
			"question":     item.Question,
			"category":     item.Category,
			"answer":       item.Answer,
			"score":        ptrFloat(item.Score),
			"feedback":     item.Feedback,
			"created_at":   now,
			"updated_at":   now,
		})
	}

	return r.exec.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) error {
		_, err := collect(ctx, tx, `MATCH (q:Question {interview_id: $interview_id}) DETACH DELETE q`,
			map[string]any{"interview_id": interviewID})
		if err != nil {
			return fmt.Errorf("clear questions: %w", err)
		}

		_, err = collect(ctx, tx, `UNWIND $rows AS row
			CREATE (q:Question) SET q = row
			WITH q
			OPTIONAL MATCH (i:Interview {id: q.interview_id})
			FOREACH (_ IN CASE WHEN i IS NULL THEN [] ELSE [1] END | MERGE (i)-[:ASKED]->(q))`,
			map[string]any{"rows": rows})
		if err != nil {
			return fmt.Errorf("create questions: %w", err)
		}
		return nil
	})
}

func (r *qnaRepo) List(ctx context.Context, interviewID string) ([]domain.QnA, error) {
	var out []domain.QnA
	err := r.exec.read(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) error {
		records, err := collect(ctx, tx, `MATCH (q:Question {interview_id: $interview_id})
			RETURN q ORDER BY q.position`, map[string]any{"interview_id": interviewID})
		if err != nil {
			return fmt.Errorf("list questions: %w", err)
		}

		out = make([]domain.QnA, 0, len(records))
		for _, rec := range records {
			props, err := nodeProps(rec, "q")
			if err != nil {
				return err
			}
			out = append(out, domain.QnA{
				ID:          propString(props, "id"),
				InterviewID: propString(props, "interview_id"),
				Position:    propInt(props, "position"),
				Question:    propString(props, "question"),
				Category:    propString(props, "category"),
				Answer:      propString(props, "answer"),
				Score:       propFloatPtr(props, "score"),
				Feedback:    propString(props, "feedback"),
				CreatedAt:   propTime(props, "created_at"),
				UpdatedAt:   propTime(props, "updated_at"),
			})
		}
		return nil
	})
	return out, err
}

func (r *qnaRepo) SaveAnswers(ctx context.Context, interviewID string, answers map[string]string) error {
	now := millis(r.exec.now())
	return r.exec.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) error {
		for id, answer := range answers {
			n, err := count(ctx, tx, `MATCH (q:Question {id: $id, interview_id: $interview_id})
				SET q.answer = $answer, q.updated_at = $now
				RETURN count(q) AS n`, map[string]any{
				"id": id, "interview_id": interviewID, "answer": answer, "now": now,
			})
			if err != nil {
				return fmt.Errorf("save answer: %w", err)
			}
			if n == 0 {
				return notFound("question", id)
			}
		}
		return nil
	})
}

func (r *qnaRepo) SaveEvaluations(ctx context.Context, interviewID string, items []domain.QnA) error {
	now := millis(r.exec.now())
	return r.exec.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) error {
		for _, item := range items {
			_, err := collect(ctx, tx, `MATCH (q:Question {id: $id, interview_id: $interview_id})
				SET q.score = $score, q.feedback = $feedback, q.updated_at = $now`, map[string]any{
				"id": item.ID, "interview_id": interviewID,
				"score": ptrFloat(item.Score), "feedback": item.Feedback, "now": now,
			})
			if err != nil {
				return fmt.Errorf("save evaluation: %w", err)
			}
		}
		return nil
	})
}
