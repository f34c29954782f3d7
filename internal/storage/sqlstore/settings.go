package sqlstore

import (
	"context"
	"fmt"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
)

type settingsRow struct {
	CompanyID             string  `db:"company_id"`
	MaxAIInterviews       int     `db:"max_ai_interviews"`
	AllowAdditionalRounds bool    `db:"allow_additional_rounds"`
	MaxAdditionalRounds   int     `db:"max_additional_rounds"`
	ReminderHoursBefore   int     `db:"reminder_hours_before"`
	AutoRejectBelowScore  float64 `db:"auto_reject_below_score"`
	UpdatedAt             int64   `db:"updated_at"`
}

type settingsRepo struct {
	q *queryer
}

func (r *settingsRepo) Get(ctx context.Context, companyID string) (domain.CompanySettings, error) {
	var row settingsRow
	err := r.q.get(ctx, &row, `SELECT company_id, max_ai_interviews, allow_additional_rounds, max_additional_rounds,
		reminder_hours_before, auto_reject_below_score, updated_at
		FROM company_settings WHERE company_id = ?`, companyID)
	if err != nil {
		return domain.CompanySettings{}, notFound(err, "company settings", companyID)
	}

	return domain.CompanySettings{
		CompanyID:             row.CompanyID,
		MaxAIInterviews:       row.MaxAIInterviews,
		AllowAdditionalRounds: row.AllowAdditionalRounds,
		MaxAdditionalRounds:   row.MaxAdditionalRounds,
		ReminderHoursBefore:   row.ReminderHoursBefore,
		AutoRejectBelowScore:  row.AutoRejectBelowScore,
		UpdatedAt:             fromMillis(row.UpdatedAt),
	}, nil
}

func (r *settingsRepo) Upsert(ctx context.Context, s domain.CompanySettings) error {
	_, err := r.q.exec(ctx, `INSERT INTO company_settings (company_id, max_ai_interviews, allow_additional_rounds,
			max_additional_rounds, reminder_hours_before, auto_reject_below_score, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (company_id) DO UPDATE SET
			max_ai_interviews = excluded.max_ai_interviews,
			allow_additional_rounds = excluded.allow_additional_rounds,
			max_additional_rounds = excluded.max_additional_rounds,
			reminder_hours_before = excluded.reminder_hours_before,
			auto_reject_below_score = excluded.auto_reject_below_score,
			updated_at = excluded.updated_at`,
		s.CompanyID, s.MaxAIInterviews, s.AllowAdditionalRounds, s.MaxAdditionalRounds,
		s.ReminderHoursBefore, s.AutoRejectBelowScore, r.q.now())
	if err != nil {
		return fmt.Errorf("upsert company settings: %w", err)
	}
	return nil
}
