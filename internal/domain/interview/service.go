// Package interview drives the interview lifecycle: scheduling, acceptance,
// rescheduling, start, completion and cancellation.
package interview

import (
	"errors"
	"time"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/access"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/repository"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/logging"
)

// DefaultDependencyTimeout bounds each calendar call
const DefaultDependencyTimeout = 10 * time.Second

// Service is the lifecycle engine
type Service struct {
	store    repository.Store
	quota    *QuotaPolicy
	policy   access.Policy
	calendar Calendar
	notifier Notifier
	metrics  Recorder
	logger   *logging.Logger
	clock    func() time.Time
	timeout  time.Duration
}

// Option configures optional dependencies.
type Option func(*Service)

// WithStore sets the document store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithCalendar enables calendar sync. Without it interviews carry no event.
func WithCalendar(c Calendar) Option {
	return func(s *Service) {
		s.calendar = c
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		s.metrics = r
	}
}

func WithLogger(l *logging.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithPolicy overrides the default capability matrix.
func WithPolicy(p access.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithDependencyTimeout bounds each external call made on the request path.
func WithDependencyTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}

// NewService constructs the lifecycle engine.
func NewService(opts ...Option) (*Service, error) {
	svc := &Service{
		policy:  access.NewPolicy(nil),
		clock:   time.Now,
		timeout: DefaultDependencyTimeout,
	}

	for _, opt := range opts {
		opt(svc)
	}

	if svc.store == nil {
		return nil, errors.New("interview service requires a store")
	}
	if svc.notifier == nil {
		svc.notifier = discardNotifier{}
	}
	if svc.metrics == nil {
		svc.metrics = discardRecorder{}
	}
	if svc.logger == nil {
		svc.logger = logging.Nop()
	}
	svc.logger = svc.logger.Named("interview")
	svc.quota = NewQuotaPolicy(svc.store)

	return svc, nil
}

// NewServiceWithDeps is a Wire-compatible constructor. calendar may be nil.
func NewServiceWithDeps(store repository.Store, calendar Calendar, notifier Notifier, recorder Recorder, logger *logging.Logger) (*Service, error) {
	return NewService(
		WithStore(store),
		WithCalendar(calendar),
		WithNotifier(notifier),
		WithRecorder(recorder),
		WithLogger(logger),
	)
}

// Quota exposes the AI interview quota policy
func (s *Service) Quota() *QuotaPolicy {
	return s.quota
}

func (s *Service) now() time.Time {
	return s.clock().UTC()
}

func (s *Service) record(action Action, err error) {
	s.metrics.ObserveTransition(string(action), err)
}
