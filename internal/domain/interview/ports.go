package interview

import (
	"context"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
)

// Calendar mirrors interview slots into an external calendar
type Calendar interface {
	CreateEvent(ctx context.Context, ev domain.CalendarEvent) (string, error)
	UpdateEvent(ctx context.Context, eventID string, ev domain.CalendarEvent) error
	DeleteEvent(ctx context.Context, eventID string) error
}

// Notifier delivers notifications. Implementations must not block the caller
// on delivery and must not report failures back to the lifecycle.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}

// Recorder observes lifecycle outcomes
type Recorder interface {
	ObserveTransition(action string, err error)
	ObserveDependency(dependency string, err error)
}

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, domain.Notification) {}

type discardRecorder struct{}

func (discardRecorder) ObserveTransition(string, error) {}

func (discardRecorder) ObserveDependency(string, error) {}
