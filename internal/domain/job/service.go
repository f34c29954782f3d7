// Package job imports job postings and candidate applications from
// external sources into the store the interview lifecycle reads.
package job

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/access"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/repository"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/logging"
)

// Option configures Service
type Option func(*config)

type config struct {
	clock  func() time.Time
	logger *logging.Logger
}

// WithClock sets a custom clock
func WithClock(clock func() time.Time) Option {
	return func(c *config) {
		c.clock = clock
	}
}

func WithLogger(l *logging.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// Rejection is a record the import refused
type Rejection struct {
	Kind   string `json:"kind"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

// ImportResult summarizes one Import call
type ImportResult struct {
	Sources             int               `json:"sources"`
	FailedSources       map[string]string `json:"failed_sources,omitempty"`
	JobsCreated         int               `json:"jobs_created"`
	JobsSkipped         int               `json:"jobs_skipped"`
	ApplicationsCreated int               `json:"applications_created"`
	ApplicationsSkipped int               `json:"applications_skipped"`
	Rejected            []Rejection       `json:"rejected,omitempty"`
	ImportedAt          time.Time         `json:"imported_at"`
}

type Service struct {
	store  repository.Store
	policy access.Policy
	clock  func() time.Time
	logger *logging.Logger
}

// NewService builds Service from options
func NewService(store repository.Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("job.Service: store is required")
	}
	cfg := &config{clock: time.Now, logger: logging.Nop()}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Service{
		store:  store,
		policy: access.NewPolicy(nil),
		clock:  cfg.clock,
		logger: cfg.logger.Named("job"),
	}, nil
}

// Import loads every source and stores records that are not already present.
// Records with an existing id are skipped, never overwritten. A source that
// fails to load is reported and the rest still import; Import fails only
// when every source fails.
func (s *Service) Import(ctx context.Context, who domain.Identity, sources ...Source) (ImportResult, error) {
	if err := s.policy.Require(who, access.ImportRecords); err != nil {
		return ImportResult{}, err
	}
	if len(sources) == 0 {
		return ImportResult{}, fmt.Errorf("%w: no sources", domain.ErrInvalidInput)
	}

	res := ImportResult{Sources: len(sources), ImportedAt: s.clock().UTC()}
	var (
		jobs    = newOrdered[domain.Job]()
		apps    = newOrdered[domain.Application]()
		lastErr error
	)
	for _, src := range sources {
		b, err := src.Load(ctx)
		if err != nil {
			if res.FailedSources == nil {
				res.FailedSources = map[string]string{}
			}
			res.FailedSources[src.Name()] = err.Error()
			s.logger.Warn("job source failed", "source", src.Name(), "err", err)
			lastErr = err
			continue
		}

		for _, j := range b.Jobs {
			if reason := s.checkJob(who, j); reason != "" {
				res.Rejected = append(res.Rejected, Rejection{Kind: "job", ID: j.ID, Reason: reason})
				continue
			}
			if j.ID == "" {
				j.ID = uuid.NewString()
			}
			if j.CreatedBy == "" {
				j.CreatedBy = who.UID
			}
			jobs.put(j.ID, j)
		}
		for _, a := range b.Applications {
			if reason := checkApplication(a); reason != "" {
				res.Rejected = append(res.Rejected, Rejection{Kind: "application", ID: a.ID, Reason: reason})
				continue
			}
			if a.ID == "" {
				a.ID = uuid.NewString()
			}
			apps.put(a.ID, a)
		}
	}
	if len(res.FailedSources) == len(sources) {
		return ImportResult{}, fmt.Errorf("every source failed: %w", lastErr)
	}

	// Rejections found inside the transaction are only kept once it commits.
	var txRejected []Rejection
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		res.JobsCreated, res.JobsSkipped = 0, 0
		res.ApplicationsCreated, res.ApplicationsSkipped = 0, 0
		txRejected = nil

		for _, j := range jobs.values() {
			created, err := addJob(ctx, tx.Jobs(), j)
			if err != nil {
				return err
			}
			if created {
				res.JobsCreated++
			} else {
				res.JobsSkipped++
			}
		}

		for _, a := range apps.values() {
			parent, err := tx.Jobs().Get(ctx, a.JobID)
			if errors.Is(err, domain.ErrNotFound) {
				txRejected = append(txRejected, Rejection{Kind: "application", ID: a.ID, Reason: "unknown job " + a.JobID})
				continue
			}
			if err != nil {
				return err
			}
			if !who.InCompany(parent.CompanyID) {
				txRejected = append(txRejected, Rejection{Kind: "application", ID: a.ID, Reason: "job belongs to another company"})
				continue
			}
			a.CompanyID = parent.CompanyID
			a.Status = domain.ApplicationApplied
			a.InterviewIDs = nil

			created, err := addApplication(ctx, tx.Applications(), a)
			if err != nil {
				return err
			}
			if created {
				res.ApplicationsCreated++
			} else {
				res.ApplicationsSkipped++
			}
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	res.Rejected = append(res.Rejected, txRejected...)

	s.logger.Info("records imported",
		"by", who.UID,
		"jobs", res.JobsCreated,
		"applications", res.ApplicationsCreated,
		"rejected", len(res.Rejected),
	)
	return res, nil
}

func (s *Service) checkJob(who domain.Identity, j domain.Job) string {
	switch {
	case strings.TrimSpace(j.CompanyID) == "":
		return "company_id is required"
	case strings.TrimSpace(j.Title) == "":
		return "title is required"
	case !who.InCompany(j.CompanyID):
		return "company is outside the caller's scope"
	}
	return ""
}

func checkApplication(a domain.Application) string {
	switch {
	case strings.TrimSpace(a.JobID) == "":
		return "job_id is required"
	case strings.TrimSpace(a.ApplicantID) == "":
		return "applicant_id is required"
	case a.MatchPercentage < 0 || a.MatchPercentage > 100:
		return "match_percentage must be within 0..100"
	}
	return ""
}

func addJob(ctx context.Context, jobs repository.JobRepository, j domain.Job) (bool, error) {
	_, err := jobs.Get(ctx, j.ID)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, domain.ErrNotFound):
		return false, err
	}
	if _, err := jobs.Add(ctx, j); err != nil {
		return false, err
	}
	return true, nil
}

func addApplication(ctx context.Context, apps repository.ApplicationRepository, a domain.Application) (bool, error) {
	_, err := apps.Get(ctx, a.ID)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, domain.ErrNotFound):
		return false, err
	}
	if _, err := apps.Add(ctx, a); err != nil {
		return false, err
	}
	return true, nil
}

// ordered dedups by key; the last record wins but keeps its first position
type ordered[T any] struct {
	index map[string]int
	items []T
}

func newOrdered[T any]() *ordered[T] {
	return &ordered[T]{index: map[string]int{}}
}

func (o *ordered[T]) put(key string, v T) {
	if i, ok := o.index[key]; ok {
		o.items[i] = v
		return
	}
	o.index[key] = len(o.items)
	o.items = append(o.items, v)
}

func (o *ordered[T]) values() []T { return o.items }
