package neo4j

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
)

type applicationRepo struct {
	exec executor
}

func (r *applicationRepo) Get(ctx context.Context, id string) (domain.Application, error) {
	var app domain.Application
	err := r.exec.read(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) error {
		records, err := collect(ctx, tx, `MATCH (a:Application {id: $id})
			OPTIONAL MATCH (a)-[h:HAS_INTERVIEW]->(i:Interview)
			WITH a, h, i ORDER BY h.added_at, i.id
			RETURN a, [x IN collect(i.id) WHERE x IS NOT NULL] AS interview_ids`, map[string]any{"id": id})
		if err != nil {
			return fmt.Errorf("get application: %w", err)
		}
		if len(records) == 0 {
			return notFound("application", id)
		}

		props, err := nodeProps(records[0], "a")
		if err != nil {
			return err
		}
		ids, _, err := neo4j.GetRecordValue[[]any](records[0], "interview_ids")
		if err != nil {
			return err
		}

		app = domain.Application{
			ID:              propString(props, "id"),
			JobID:           propString(props, "job_id"),
			CompanyID:       propString(props, "company_id"),
			ApplicantID:     propString(props, "applicant_id"),
			ApplicantEmail:  propString(props, "applicant_email"),
			ApplicantName:   propString(props, "applicant_name"),
			ApplicantPhone:  propString(props, "applicant_phone"),
			ResumeURL:       propString(props, "resume_url"),
			MatchPercentage: propFloat(props, "match_percentage"),
			Status:          domain.ApplicationStatus(propString(props, "status")),
			InterviewIDs:    propStrings(map[string]any{"ids": ids}, "ids"),
			CreatedAt:       propTime(props, "created_at"),
			UpdatedAt:       propTime(props, "updated_at"),
		}
		return nil
	})
	return app, err
}

func (r *applicationRepo) Add(ctx context.Context, app domain.Application) (string, error) {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.Status == "" {
		app.Status = domain.ApplicationApplied
	}
	now := millis(r.exec.now())

	err := r.exec.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) error {
		_, err := collect(ctx, tx, `CREATE (a:Application) SET a = $props
			WITH a
			OPTIONAL MATCH (j:Job {id: a.job_id})
			FOREACH (_ IN CASE WHEN j IS NULL THEN [] ELSE [1] END | MERGE (j)-[:HAS_APPLICATION]->(a))`,
			map[string]any{"props": map[string]any{
				"id":               app.ID,
				"job_id":           app.JobID,
				"company_id":       app.CompanyID,
				"applicant_id":     app.ApplicantID,
				"applicant_email":  app.ApplicantEmail,
				"applicant_name":   app.ApplicantName,
				"applicant_phone":  app.ApplicantPhone,
				"resume_url":       app.ResumeURL,
				"match_percentage": app.MatchPercentage,
				"status":           string(app.Status),
				"created_at":       now,
				"updated_at":       now,
			}})
		if err != nil {
			if isConstraintViolation(err) {
				return fmt.Errorf("application %s: %w", app.ID, domain.ErrConflict)
			}
			return fmt.Errorf("create application: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return app.ID, nil
}

// Lock writes the node so the enclosing transaction holds its write lock
func (r *applicationRepo) Lock(ctx context.Context, id string) error {
	return r.touch(ctx, id, map[string]any{})
}

func (r *applicationRepo) SetStatus(ctx context.Context, id string, status domain.ApplicationStatus) error {
	return r.touch(ctx, id, map[string]any{"status": string(status)})
}

func (r *applicationRepo) touch(ctx context.Context, id string, props map[string]any) error {
	return r.exec.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) error {
		n, err := count(ctx, tx, `MATCH (a:Application {id: $id})
			SET a += $props, a.updated_at = $now
			RETURN count(a) AS n`, map[string]any{"id": id, "props": props, "now": millis(r.exec.now())})
		if err != nil {
			return fmt.Errorf("update application: %w", err)
		}
		if n == 0 {
			return notFound("application", id)
		}
		return nil
	})
}

func (r *applicationRepo) AttachInterview(ctx context.Context, applicationID, interviewID string) error {
	return r.exec.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) error {
		n, err := count(ctx, tx, `MATCH (a:Application {id: $application_id}), (i:Interview {id: $interview_id})
			MERGE (a)-[h:HAS_INTERVIEW]->(i)
			ON CREATE SET h.added_at = $now
			RETURN count(h) AS n`, map[string]any{
			"application_id": applicationID,
			"interview_id":   interviewID,
			"now":            millis(r.exec.now()),
		})
		if err != nil {
			return fmt.Errorf("attach interview: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("attach interview %s to %s: %w", interviewID, applicationID, domain.ErrNotFound)
		}
		return nil
	})
}

func (r *applicationRepo) DetachInterview(ctx context.Context, applicationID, interviewID string) (int, error) {
	var remaining int
	err := r.exec.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) error {
		_, err := collect(ctx, tx, `MATCH (:Application {id: $application_id})-[h:HAS_INTERVIEW]->(:Interview {id: $interview_id})
			DELETE h`, map[string]any{"application_id": applicationID, "interview_id": interviewID})
		if err != nil {
			return fmt.Errorf("detach interview: %w", err)
		}

		remaining, err = count(ctx, tx, `MATCH (:Application {id: $id})-[h:HAS_INTERVIEW]->()
			RETURN count(h) AS n`, map[string]any{"id": applicationID})
		if err != nil {
			return fmt.Errorf("count interviews: %w", err)
		}
		return nil
	})
	return remaining, err
}

func isConstraintViolation(err error) bool {
	var neoErr *neo4j.Neo4jError
	return errors.As(err, &neoErr) && neoErr.Code == "Neo.ClientError.Schema.ConstraintValidationFailed"
}
