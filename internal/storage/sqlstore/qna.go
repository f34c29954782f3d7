package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
)

type qnaRow struct {
	ID          string          `db:"id"`
	InterviewID string          `db:"interview_id"`
	Position    int             `db:"position"`
	Question    string          `db:"question"`
	Category    string          `db:"category"`
	Answer      string          `db:"answer"`
	Score       sql.NullFloat64 `db:"score"`
	Feedback    string          `db:"feedback"`
	CreatedAt   int64           `db:"created_at"`
	UpdatedAt   int64           `db:"updated_at"`
}

type qnaRepo struct {
	q *queryer
}

// Replace swaps the question set of an interview. Run it inside WithinTx.
func (r *qnaRepo) Replace(ctx context.Context, interviewID string, items []domain.QnA) error {
	if _, err := r.q.exec(ctx, `DELETE FROM interview_qna WHERE interview_id = ?`, interviewID); err != nil {
		return fmt.Errorf("clear questions: %w", err)
	}

	now := r.q.now()
	for i, item := range items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		_, err := r.q.exec(ctx, `INSERT INTO interview_qna (id, interview_id, position, question, category,
				answer, score, feedback, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, interviewID, i+1, item.Question, item.Category, item.Answer,
			nullFloat(item.Score), item.Feedback, now, now)
		if err != nil {
			return fmt.Errorf("insert question: %w", err)
		}
	}
	return nil
}

func (r *qnaRepo) List(ctx context.Context, interviewID string) ([]domain.QnA, error) {
	var rows []qnaRow
	err := r.q.selectAll(ctx, &rows, `SELECT id, interview_id, position, question, category, answer, score,
			feedback, created_at, updated_at
		FROM interview_qna WHERE interview_id = ? ORDER BY position`, interviewID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	out := make([]domain.QnA, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.QnA{
			ID:          row.ID,
			InterviewID: row.InterviewID,
			Position:    row.Position,
			Question:    row.Question,
			Category:    row.Category,
			Answer:      row.Answer,
			Score:       fromNullFloat(row.Score),
			Feedback:    row.Feedback,
			CreatedAt:   fromMillis(row.CreatedAt),
			UpdatedAt:   fromMillis(row.UpdatedAt),
		})
	}
	return out, nil
}

func (r *qnaRepo) SaveAnswers(ctx context.Context, interviewID string, answers map[string]string) error {
	now := r.q.now()
	for id, answer := range answers {
		res, err := r.q.exec(ctx, `UPDATE interview_qna SET answer = ?, updated_at = ?
			WHERE id = ? AND interview_id = ?`, answer, now, id, interviewID)
		if err != nil {
			return fmt.Errorf("save answer: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("question %s: %w", id, domain.ErrNotFound)
		}
	}
	return nil
}

func (r *qnaRepo) SaveEvaluations(ctx context.Context, interviewID string, items []domain.QnA) error {
	now := r.q.now()
	for _, item := range items {
		_, err := r.q.exec(ctx, `UPDATE interview_qna SET score = ?, feedback = ?, updated_at = ?
			WHERE id = ? AND interview_id = ?`, nullFloat(item.Score), item.Feedback, now, item.ID, interviewID)
		if err != nil {
			return fmt.Errorf("save evaluation: %w", err)
		}
	}
	return nil
}
