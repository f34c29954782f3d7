package sqlstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
)

type jobRow struct {
	ID          string `db:"id"`
	CompanyID   string `db:"company_id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	Skills      string `db:"skills"`
	Location    string `db:"location"`
	CreatedBy   string `db:"created_by"`
	CreatedAt   int64  `db:"created_at"`
}

func (r jobRow) toDomain() domain.Job {
	return domain.Job{
		ID:          r.ID,
		CompanyID:   r.CompanyID,
		Title:       r.Title,
		Description: r.Description,
		Skills:      decodeStrings(r.Skills),
		Location:    r.Location,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   fromMillis(r.CreatedAt),
	}
}

type jobRepo struct {
	q *queryer
}

func (r *jobRepo) Get(ctx context.Context, id string) (domain.Job, error) {
	var row jobRow
	err := r.q.get(ctx, &row, `SELECT id, company_id, title, description, skills, location, created_by, created_at
		FROM jobs WHERE id = ?`, id)
	if err != nil {
		return domain.Job{}, notFound(err, "job", id)
	}
	return row.toDomain(), nil
}

func (r *jobRepo) Add(ctx context.Context, job domain.Job) (string, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	createdAt := job.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.q.clock()
	}

	_, err := r.q.exec(ctx, `INSERT INTO jobs (id, company_id, title, description, skills, location, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.CompanyID, job.Title, job.Description, encodeStrings(job.Skills),
		job.Location, job.CreatedBy, millis(createdAt))
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("job %s: %w", job.ID, domain.ErrConflict)
		}
		return "", fmt.Errorf("insert job: %w", err)
	}
	return job.ID, nil
}
