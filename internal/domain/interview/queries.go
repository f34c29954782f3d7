package interview

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/access"
)

// Get returns one interview the caller may see
func (s *Service) Get(ctx context.Context, who domain.Identity, id string) (domain.Interview, error) {
	if err := s.policy.Require(who, access.ViewInterview); err != nil {
		return domain.Interview{}, err
	}

	iv, err := s.store.Interviews().Get(ctx, id)
	if err != nil {
		return domain.Interview{}, err
	}
	if !who.CanView(iv) {
		return domain.Interview{}, fmt.Errorf("%w: interview is outside the caller's scope", domain.ErrForbidden)
	}
	return iv, nil
}

// ApplicationView returns an application with the live state of every
// interview it references.
func (s *Service) ApplicationView(ctx context.Context, who domain.Identity, applicationID string) (domain.ApplicationView, error) {
	if err := s.policy.Require(who, access.ViewApplication); err != nil {
		return domain.ApplicationView{}, err
	}

	app, err := s.store.Applications().Get(ctx, applicationID)
	if err != nil {
		return domain.ApplicationView{}, err
	}
	if err := canViewApplication(who, app); err != nil {
		return domain.ApplicationView{}, err
	}

	interviews, err := s.store.Interviews().ListByIDs(ctx, app.InterviewIDs)
	if err != nil {
		return domain.ApplicationView{}, err
	}
	return domain.ApplicationView{Application: app, Interviews: interviews}, nil
}

// CheckAIQuota reports the AI interview quota of an application
func (s *Service) CheckAIQuota(ctx context.Context, who domain.Identity, applicationID string) (domain.QuotaStatus, error) {
	if err := s.policy.Require(who, access.CheckQuota); err != nil {
		return domain.QuotaStatus{}, err
	}

	app, err := s.store.Applications().Get(ctx, applicationID)
	if err != nil {
		return domain.QuotaStatus{}, err
	}
	if !who.InCompany(app.CompanyID) {
		return domain.QuotaStatus{}, fmt.Errorf("%w: application belongs to another company", domain.ErrForbidden)
	}
	return s.quota.CanScheduleAIInterview(ctx, app.ID, app.CompanyID)
}

func canViewApplication(who domain.Identity, app domain.Application) error {
	if who.IsCandidate() {
		if who.UID == app.ApplicantID || (who.Email != "" && strings.EqualFold(who.Email, app.ApplicantEmail)) {
			return nil
		}
		return fmt.Errorf("%w: application belongs to another candidate", domain.ErrForbidden)
	}
	if !who.InCompany(app.CompanyID) {
		return fmt.Errorf("%w: application belongs to another company", domain.ErrForbidden)
	}
	return nil
}
