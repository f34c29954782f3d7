package interview

import (
	"context"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/repository"
)

// QuotaPolicy caps AI interviews per application. Every non-cancelled AI
// interview counts, so a completed round still uses its slot.
type QuotaPolicy struct {
	store repository.Repositories
}

func NewQuotaPolicy(store repository.Repositories) *QuotaPolicy {
	return &QuotaPolicy{store: store}
}

// CanScheduleAIInterview reports whether applicationID may take one more AI interview
func (q *QuotaPolicy) CanScheduleAIInterview(ctx context.Context, applicationID, companyID string) (domain.QuotaStatus, error) {
	return q.check(ctx, q.store, applicationID, companyID)
}

// check evaluates the quota against r, which is a transaction during Create
func (q *QuotaPolicy) check(ctx context.Context, r repository.Repositories, applicationID, companyID string) (domain.QuotaStatus, error) {
	if _, err := r.Applications().Get(ctx, applicationID); err != nil {
		return domain.QuotaStatus{}, err
	}

	settings, err := repository.SettingsOrDefault(ctx, r.Settings(), companyID)
	if err != nil {
		return domain.QuotaStatus{}, err
	}
	limit := settings.MaxAIInterviews
	if limit <= 0 {
		limit = domain.DefaultMaxAIInterviews
	}

	current, err := r.Interviews().Count(ctx, repository.InterviewFilter{
		ApplicationID: applicationID,
		Mode:          domain.ModeAI,
		Statuses:      domain.NonCancelledStatuses,
	})
	if err != nil {
		return domain.QuotaStatus{}, err
	}

	return domain.QuotaStatus{Allowed: current < limit, Current: current, Max: limit}, nil
}
