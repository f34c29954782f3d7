// Package company manages per-company interview policy.
package company

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/access"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/repository"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/logging"
)

// Bounds accepted for settings fields
const (
	MaxAIInterviewsCeiling     = 3
	MaxAdditionalRoundsCeiling = 5
	MaxReminderHoursBefore     = 168
)

// SettingsPatch changes selected settings. Nil fields keep their value.
type SettingsPatch struct {
	MaxAIInterviews       *int     `json:"max_ai_interviews,omitempty"`
	AllowAdditionalRounds *bool    `json:"allow_additional_rounds,omitempty"`
	MaxAdditionalRounds   *int     `json:"max_additional_rounds,omitempty"`
	ReminderHoursBefore   *int     `json:"reminder_hours_before,omitempty"`
	AutoRejectBelowScore  *float64 `json:"auto_reject_below_score,omitempty"`
}

// Validate checks every set field against its bounds
func (p SettingsPatch) Validate() error {
	var errs []error
	if p.MaxAIInterviews != nil && (*p.MaxAIInterviews < 1 || *p.MaxAIInterviews > MaxAIInterviewsCeiling) {
		errs = append(errs, fmt.Errorf("max_ai_interviews must be within 1..%d", MaxAIInterviewsCeiling))
	}
	if p.MaxAdditionalRounds != nil && (*p.MaxAdditionalRounds < 0 || *p.MaxAdditionalRounds > MaxAdditionalRoundsCeiling) {
		errs = append(errs, fmt.Errorf("max_additional_rounds must be within 0..%d", MaxAdditionalRoundsCeiling))
	}
	if p.ReminderHoursBefore != nil && (*p.ReminderHoursBefore < 1 || *p.ReminderHoursBefore > MaxReminderHoursBefore) {
		errs = append(errs, fmt.Errorf("reminder_hours_before must be within 1..%d", MaxReminderHoursBefore))
	}
	if p.AutoRejectBelowScore != nil {
		v := *p.AutoRejectBelowScore
		if math.IsNaN(v) || v < 0 || v > 100 {
			errs = append(errs, errors.New("auto_reject_below_score must be within 0..100"))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}

func (p SettingsPatch) apply(s *domain.CompanySettings) {
	if p.MaxAIInterviews != nil {
		s.MaxAIInterviews = *p.MaxAIInterviews
	}
	if p.AllowAdditionalRounds != nil {
		s.AllowAdditionalRounds = *p.AllowAdditionalRounds
	}
	if p.MaxAdditionalRounds != nil {
		s.MaxAdditionalRounds = *p.MaxAdditionalRounds
	}
	if p.ReminderHoursBefore != nil {
		s.ReminderHoursBefore = *p.ReminderHoursBefore
	}
	if p.AutoRejectBelowScore != nil {
		s.AutoRejectBelowScore = *p.AutoRejectBelowScore
	}
}

// Service reads and updates company settings
type Service struct {
	store  repository.Store
	policy access.Policy
	logger *logging.Logger
}

func NewService(store repository.Store, logger *logging.Logger) (*Service, error) {
	if store == nil {
		return nil, errors.New("company service requires a store")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{store: store, policy: access.NewPolicy(nil), logger: logger.Named("company")}, nil
}

// Settings returns stored settings or the defaults
func (s *Service) Settings(ctx context.Context, who domain.Identity, companyID string) (domain.CompanySettings, error) {
	if err := s.policy.RequireCompany(who, access.ViewSettings, companyID); err != nil {
		return domain.CompanySettings{}, err
	}
	return repository.SettingsOrDefault(ctx, s.store.Settings(), companyID)
}

// UpdateSettings applies patch to the company's settings
func (s *Service) UpdateSettings(ctx context.Context, who domain.Identity, companyID string, patch SettingsPatch) (domain.CompanySettings, error) {
	if err := s.policy.RequireCompany(who, access.ManageSettings, companyID); err != nil {
		return domain.CompanySettings{}, err
	}
	if companyID == "" {
		return domain.CompanySettings{}, fmt.Errorf("%w: company id is required", domain.ErrInvalidInput)
	}
	if err := patch.Validate(); err != nil {
		return domain.CompanySettings{}, err
	}

	var out domain.CompanySettings
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		current, err := repository.SettingsOrDefault(ctx, tx.Settings(), companyID)
		if err != nil {
			return err
		}
		patch.apply(&current)
		if err := tx.Settings().Upsert(ctx, current); err != nil {
			return err
		}
		out, err = tx.Settings().Get(ctx, companyID)
		return err
	})
	if err != nil {
		return domain.CompanySettings{}, err
	}

	s.logger.Info("company settings updated", "company_id", companyID, "by", who.UID)
	return out, nil
}
