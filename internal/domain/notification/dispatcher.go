// Package notification persists in-app notifications and fans them out to
// the event stream and email. Delivery is best-effort and never fails the
// lifecycle operation that triggered it.
package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/access"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/repository"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/logging"
)

const defaultTimeout = 10 * time.Second

// Publisher forwards a stored notification to subscribers
type Publisher interface {
	Publish(ctx context.Context, n domain.Notification) error
}

// Mailer sends a plain text email
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Recorder observes delivery outcomes
type Recorder interface {
	ObserveDependency(dependency string, err error)
	ObserveNotification(kind string, err error)
}

// Dispatcher delivers notifications in the background
type Dispatcher struct {
	store     repository.NotificationRepository
	publisher Publisher
	mailer    Mailer
	metrics   Recorder
	logger    *logging.Logger
	policy    access.Policy
	timeout   time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

type Option func(*Dispatcher)

func WithPublisher(p Publisher) Option {
	return func(d *Dispatcher) {
		d.publisher = p
	}
}

func WithMailer(m Mailer) Option {
	return func(d *Dispatcher) {
		d.mailer = m
	}
}

func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) {
		d.metrics = r
	}
}

func WithLogger(l *logging.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// WithTimeout bounds each delivery step
func WithTimeout(t time.Duration) Option {
	return func(d *Dispatcher) {
		d.timeout = t
	}
}

func NewDispatcher(store repository.NotificationRepository, opts ...Option) (*Dispatcher, error) {
	if store == nil {
		return nil, errors.New("notification dispatcher requires a store")
	}

	d := &Dispatcher{
		store:   store,
		policy:  access.NewPolicy(nil),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logging.Nop()
	}
	d.logger = d.logger.Named("notification")
	return d, nil
}

// Notify queues n for delivery and returns at once. After Close it drops n.
func (d *Dispatcher) Notify(ctx context.Context, n domain.Notification) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warn("dispatcher closed, notification dropped", "type", n.Type, "receiver_id", n.ReceiverID)
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	go func() {
		defer d.wg.Done()
		d.deliver(ctx, n)
	}()
}

// Deliver runs every delivery step synchronously and reports the first
// failure. The in-app copy is always attempted first.
func (d *Dispatcher) Deliver(ctx context.Context, n domain.Notification) error {
	if n.ReceiverID == "" {
		return fmt.Errorf("%w: notification has no receiver", domain.ErrInvalidInput)
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	id, err := d.call(ctx, "notification_store", func(ctx context.Context) (string, error) {
		return d.store.Add(ctx, n)
	})
	if err != nil {
		return err
	}
	n.ID = id

	var errs []error
	if d.publisher != nil {
		_, err := d.call(ctx, "event_stream", func(ctx context.Context) (string, error) {
			return "", d.publisher.Publish(ctx, n)
		})
		errs = append(errs, err)
	}
	if d.mailer != nil && n.ReceiverEmail != "" {
		_, err := d.call(ctx, "mail", func(ctx context.Context) (string, error) {
			return "", d.mailer.Send(ctx, n.ReceiverEmail, n.Title, n.Message)
		})
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) deliver(ctx context.Context, n domain.Notification) {
	err := d.Deliver(ctx, n)
	if d.metrics != nil {
		d.metrics.ObserveNotification(string(n.Type), err)
	}
	if err != nil {
		d.logger.Warn("notification delivery incomplete",
			"type", n.Type,
			"receiver_id", n.ReceiverID,
			"error", err,
		)
	}
}

func (d *Dispatcher) call(ctx context.Context, name string, fn func(ctx context.Context) (string, error)) (string, error) {
	var out string
	err := domain.CallDependency(ctx, name, d.timeout, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	})
	if d.metrics != nil {
		d.metrics.ObserveDependency(name, err)
	}
	return out, err
}

// Close stops accepting notifications and waits for in-flight deliveries
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for notification deliveries: %w", ctx.Err())
	}
}

// List returns the caller's latest notifications
func (d *Dispatcher) List(ctx context.Context, who domain.Identity, limit int) ([]domain.Notification, error) {
	if err := d.policy.Require(who, access.ReadNotifications); err != nil {
		return nil, err
	}
	return d.store.ListForReceiver(ctx, who.UID, limit)
}

// MarkRead flags one of the caller's notifications as read
func (d *Dispatcher) MarkRead(ctx context.Context, who domain.Identity, id string) error {
	if err := d.policy.Require(who, access.ReadNotifications); err != nil {
		return err
	}
	return d.store.MarkRead(ctx, id, who.UID)
}
