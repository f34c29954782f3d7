// Package assessment generates interview questions and scores answers with
// a language model. Scoring an AI interview completes it.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/access"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/interview"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/repository"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/logging"
)

// Question count bounds
const (
	DefaultQuestionCount = 5
	MaxQuestionCount     = 20
)

const defaultTimeout = 60 * time.Second

// Generator produces model text
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Completer closes an interview with its evaluation
type Completer interface {
	Complete(ctx context.Context, who domain.Identity, id string, in interview.CompleteInput) (domain.Interview, error)
}

type Service struct {
	store     repository.Store
	generator Generator
	completer Completer
	policy    access.Policy
	logger    *logging.Logger
	timeout   time.Duration
}

func NewService(store repository.Store, generator Generator, completer Completer, logger *logging.Logger) (*Service, error) {
	if store == nil || completer == nil {
		return nil, errors.New("assessment service requires a store and a completer")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{
		store:     store,
		generator: generator,
		completer: completer,
		policy:    access.NewPolicy(nil),
		logger:    logger.Named("assessment"),
		timeout:   defaultTimeout,
	}, nil
}

// WithTimeout returns a copy of s that bounds model calls by d
func (s *Service) WithTimeout(d time.Duration) *Service {
	cp := *s
	cp.timeout = d
	return &cp
}

// GenerateQuestions replaces the interview's question set with count fresh questions
func (s *Service) GenerateQuestions(ctx context.Context, who domain.Identity, interviewID string, count int) ([]domain.QnA, error) {
	if err := s.policy.Require(who, access.GenerateQuestions); err != nil {
		return nil, err
	}
	if count == 0 {
		count = DefaultQuestionCount
	}
	if count < 1 || count > MaxQuestionCount {
		return nil, fmt.Errorf("%w: question count must be within 1..%d", domain.ErrInvalidInput, MaxQuestionCount)
	}

	iv, err := s.store.Interviews().Get(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if !who.CanView(iv) {
		return nil, fmt.Errorf("%w: interview is outside the caller's scope", domain.ErrForbidden)
	}
	if iv.Status.Terminal() {
		return nil, fmt.Errorf("%w: interview is %s", domain.ErrInvalidTransition, iv.Status)
	}

	job, err := s.store.Jobs().Get(ctx, iv.JobID)
	if err != nil {
		return nil, err
	}

	raw, err := s.generate(ctx, questionSystem, questionPrompt(job, iv, count))
	if err != nil {
		return nil, err
	}
	items, err := parseQuestions(raw, count)
	if err != nil {
		return nil, fmt.Errorf("%w: llm: %v", domain.ErrDependencyFailure, err)
	}

	var out []domain.QnA
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		if err := tx.QnA().Replace(ctx, iv.ID, items); err != nil {
			return err
		}
		out, err = tx.QnA().List(ctx, iv.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("questions generated", "interview_id", iv.ID, "count", len(out))
	return out, nil
}

// Questions lists the interview's question set
func (s *Service) Questions(ctx context.Context, who domain.Identity, interviewID string) ([]domain.QnA, error) {
	if err := s.policy.Require(who, access.ViewInterview); err != nil {
		return nil, err
	}
	iv, err := s.store.Interviews().Get(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if !who.CanView(iv) {
		return nil, fmt.Errorf("%w: interview is outside the caller's scope", domain.ErrForbidden)
	}
	return s.store.QnA().List(ctx, iv.ID)
}

// SubmitAnswers stores the candidate's answers to an in-progress AI interview,
// scores them and completes the interview on the system's behalf.
func (s *Service) SubmitAnswers(ctx context.Context, who domain.Identity, interviewID string, answers map[string]string) (domain.Interview, Evaluation, error) {
	if err := s.policy.Require(who, access.SubmitAnswers); err != nil {
		return domain.Interview{}, Evaluation{}, err
	}
	if len(answers) == 0 {
		return domain.Interview{}, Evaluation{}, fmt.Errorf("%w: no answers submitted", domain.ErrInvalidInput)
	}

	iv, err := s.store.Interviews().Get(ctx, interviewID)
	if err != nil {
		return domain.Interview{}, Evaluation{}, err
	}
	if !who.IsCandidateOf(iv) {
		return domain.Interview{}, Evaluation{}, fmt.Errorf("%w: interview belongs to another candidate", domain.ErrForbidden)
	}
	if iv.Mode != domain.ModeAI {
		return domain.Interview{}, Evaluation{}, fmt.Errorf("%w: answers are only collected for AI interviews", domain.ErrInvalidInput)
	}
	if iv.Status != domain.StatusInProgress {
		return domain.Interview{}, Evaluation{}, fmt.Errorf("%w: interview is %s", domain.ErrInvalidTransition, iv.Status)
	}

	if err := s.store.QnA().SaveAnswers(ctx, iv.ID, answers); err != nil {
		return domain.Interview{}, Evaluation{}, err
	}

	eval, err := s.score(ctx, iv)
	if err != nil {
		return domain.Interview{}, Evaluation{}, err
	}

	completed, err := s.completer.Complete(ctx, domain.SystemIdentity(), iv.ID, interview.CompleteInput{
		OverallScore: eval.OverallScore,
		Result:       eval.Result,
		Suggestion:   eval.Suggestion,
		Comments:     eval.Summary,
	})
	if err != nil {
		return domain.Interview{}, Evaluation{}, err
	}

	s.logger.Info("ai interview scored", "interview_id", iv.ID, "overall_score", eval.OverallScore)
	return completed, eval, nil
}

// Evaluate re-scores the stored answers without changing the interview
func (s *Service) Evaluate(ctx context.Context, who domain.Identity, interviewID string) (Evaluation, error) {
	if err := s.policy.Require(who, access.EvaluateInterview); err != nil {
		return Evaluation{}, err
	}

	iv, err := s.store.Interviews().Get(ctx, interviewID)
	if err != nil {
		return Evaluation{}, err
	}
	if !who.InCompany(iv.CompanyID) {
		return Evaluation{}, fmt.Errorf("%w: interview belongs to another company", domain.ErrForbidden)
	}
	return s.score(ctx, iv)
}

// score evaluates the answered questions of iv and stores per-question results
func (s *Service) score(ctx context.Context, iv domain.Interview) (Evaluation, error) {
	items, err := s.store.QnA().List(ctx, iv.ID)
	if err != nil {
		return Evaluation{}, err
	}

	answered := items[:0:0]
	for _, item := range items {
		if strings.TrimSpace(item.Answer) != "" {
			answered = append(answered, item)
		}
	}
	if len(answered) == 0 {
		return Evaluation{}, fmt.Errorf("%w: no answered questions to evaluate", domain.ErrInvalidInput)
	}

	job, err := s.store.Jobs().Get(ctx, iv.JobID)
	if err != nil {
		return Evaluation{}, err
	}

	raw, err := s.generate(ctx, evaluationSystem, evaluationPrompt(job, answered))
	if err != nil {
		return Evaluation{}, err
	}
	eval, err := parseEvaluation(raw, answered)
	if err != nil {
		return Evaluation{}, fmt.Errorf("%w: llm: %v", domain.ErrDependencyFailure, err)
	}

	if err := s.store.QnA().SaveEvaluations(ctx, iv.ID, eval.Items); err != nil {
		return Evaluation{}, err
	}
	return eval, nil
}

func (s *Service) generate(ctx context.Context, system, prompt string) (string, error) {
	if s.generator == nil {
		return "", fmt.Errorf("%w: llm: no provider configured", domain.ErrDependencyFailure)
	}

	var out string
	err := domain.CallDependency(ctx, "llm", s.timeout, func(ctx context.Context) error {
		var err error
		out, err = s.generator.Generate(ctx, system, prompt)
		return err
	})
	return out, err
}
