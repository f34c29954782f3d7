package sqlstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
)

type applicationRow struct {
	ID              string  `db:"id"`
	JobID           string  `db:"job_id"`
	CompanyID       string  `db:"company_id"`
	ApplicantID     string  `db:"applicant_id"`
	ApplicantEmail  string  `db:"applicant_email"`
	ApplicantName   string  `db:"applicant_name"`
	ApplicantPhone  string  `db:"applicant_phone"`
	ResumeURL       string  `db:"resume_url"`
	MatchPercentage float64 `db:"match_percentage"`
	Status          string  `db:"status"`
	CreatedAt       int64   `db:"created_at"`
	UpdatedAt       int64   `db:"updated_at"`
}

const applicationColumns = `id, job_id, company_id, applicant_id, applicant_email, applicant_name,
	applicant_phone, resume_url, match_percentage, status, created_at, updated_at`

type applicationRepo struct {
	q *queryer
}

func (r *applicationRepo) Get(ctx context.Context, id string) (domain.Application, error) {
	var row applicationRow
	if err := r.q.get(ctx, &row, `SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id); err != nil {
		return domain.Application{}, notFound(err, "application", id)
	}

	var ids []string
	err := r.q.selectAll(ctx, &ids, `SELECT interview_id FROM application_interviews
		WHERE application_id = ? ORDER BY added_at, interview_id`, id)
	if err != nil {
		return domain.Application{}, fmt.Errorf("load interview ids: %w", err)
	}

	return domain.Application{
		ID:              row.ID,
		JobID:           row.JobID,
		CompanyID:       row.CompanyID,
		ApplicantID:     row.ApplicantID,
		ApplicantEmail:  row.ApplicantEmail,
		ApplicantName:   row.ApplicantName,
		ApplicantPhone:  row.ApplicantPhone,
		ResumeURL:       row.ResumeURL,
		MatchPercentage: row.MatchPercentage,
		Status:          domain.ApplicationStatus(row.Status),
		InterviewIDs:    ids,
		CreatedAt:       fromMillis(row.CreatedAt),
		UpdatedAt:       fromMillis(row.UpdatedAt),
	}, nil
}

func (r *applicationRepo) Add(ctx context.Context, app domain.Application) (string, error) {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.Status == "" {
		app.Status = domain.ApplicationApplied
	}
	now := r.q.now()

	_, err := r.q.exec(ctx, `INSERT INTO applications (`+applicationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		app.ID, app.JobID, app.CompanyID, app.ApplicantID, app.ApplicantEmail, app.ApplicantName,
		app.ApplicantPhone, app.ResumeURL, app.MatchPercentage, string(app.Status), now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("application %s: %w", app.ID, domain.ErrConflict)
		}
		return "", fmt.Errorf("insert application: %w", err)
	}
	return app.ID, nil
}

// Lock writes the row so the enclosing transaction holds its lock
func (r *applicationRepo) Lock(ctx context.Context, id string) error {
	return r.touch(ctx, `UPDATE applications SET updated_at = ? WHERE id = ?`, r.q.now(), id)
}

func (r *applicationRepo) SetStatus(ctx context.Context, id string, status domain.ApplicationStatus) error {
	return r.touch(ctx, `UPDATE applications SET status = ?, updated_at = ? WHERE id = ?`, string(status), r.q.now(), id)
}

func (r *applicationRepo) touch(ctx context.Context, query string, args ...any) error {
	res, err := r.q.exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("application %v: %w", args[len(args)-1], domain.ErrNotFound)
	}
	return nil
}

func (r *applicationRepo) AttachInterview(ctx context.Context, applicationID, interviewID string) error {
	_, err := r.q.exec(ctx, `INSERT INTO application_interviews (application_id, interview_id, added_at)
		VALUES (?, ?, ?) ON CONFLICT (application_id, interview_id) DO NOTHING`, applicationID, interviewID, r.q.now())
	if err != nil {
		return fmt.Errorf("attach interview: %w", err)
	}
	return nil
}

func (r *applicationRepo) DetachInterview(ctx context.Context, applicationID, interviewID string) (int, error) {
	_, err := r.q.exec(ctx, `DELETE FROM application_interviews WHERE application_id = ? AND interview_id = ?`,
		applicationID, interviewID)
	if err != nil {
		return 0, fmt.Errorf("detach interview: %w", err)
	}

	var remaining int
	err = r.q.get(ctx, &remaining, `SELECT COUNT(*) FROM application_interviews WHERE application_id = ?`, applicationID)
	if err != nil {
		return 0, fmt.Errorf("count interviews: %w", err)
	}
	return remaining, nil
}
