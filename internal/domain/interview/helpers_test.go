package interview_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/interview"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/repository"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/storage/sqlstore/sqlstoretest"
)

var (
	hr = domain.Identity{UID: "hr-1", Email: "hr@acme.test", Role: domain.RoleHR, CompanyID: "acme"}

	outsider = domain.Identity{UID: "hr-9", Email: "hr@globex.test", Role: domain.RoleHR, CompanyID: "globex"}

	candidate = domain.Identity{UID: "cand-1", Email: "Cand@Example.com", Role: domain.RoleCandidate}

	stranger = domain.Identity{UID: "cand-2", Email: "other@example.com", Role: domain.RoleCandidate}
)

type fakeCalendar struct {
	mu        sync.Mutex
	seq       int
	events    map[string]domain.CalendarEvent
	deleted   []string
	updateErr error
	// block makes UpdateEvent wait for its context.
	block bool
}

func newFakeCalendar() *fakeCalendar {
	return &fakeCalendar{events: map[string]domain.CalendarEvent{}}
}

func (c *fakeCalendar) CreateEvent(_ context.Context, ev domain.CalendarEvent) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	id := fmt.Sprintf("evt-%d", c.seq)
	c.events[id] = ev
	return id, nil
}

func (c *fakeCalendar) UpdateEvent(ctx context.Context, id string, ev domain.CalendarEvent) error {
	c.mu.Lock()
	block, failure := c.block, c.updateErr
	c.mu.Unlock()

	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	if failure != nil {
		return failure
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.events[id]; !ok {
		return errors.New("event not found")
	}
	c.events[id] = ev
	return nil
}

func (c *fakeCalendar) DeleteEvent(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.events, id)
	c.deleted = append(c.deleted, id)
	return nil
}

func (c *fakeCalendar) event(id string) (domain.CalendarEvent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ev, ok := c.events[id]
	return ev, ok
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, msg domain.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

func (n *recordingNotifier) last() domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return domain.Notification{}
	}
	return n.sent[len(n.sent)-1]
}

func (n *recordingNotifier) types() []domain.NotificationType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.NotificationType, 0, len(n.sent))
	for _, m := range n.sent {
		out = append(out, m.Type)
	}
	return out
}

type harness struct {
	svc      *interview.Service
	store    repository.Store
	calendar *fakeCalendar
	notes    *recordingNotifier
	jobID    string
	appID    string
}

func newHarness(t *testing.T, opts ...interview.Option) *harness {
	t.Helper()
	return newHarnessOn(t, sqlstoretest.New(t), opts...)
}

// newHarnessOn seeds one job and application in store and builds the service over it
func newHarnessOn(t *testing.T, store repository.Store, opts ...interview.Option) *harness {
	t.Helper()
	ctx := context.Background()

	h := &harness{store: store, calendar: newFakeCalendar(), notes: &recordingNotifier{}}

	jobID, err := store.Jobs().Add(ctx, domain.Job{CompanyID: "acme", Title: "Platform Engineer"})
	require.NoError(t, err)
	appID, err := store.Applications().Add(ctx, domain.Application{
		JobID:          jobID,
		CompanyID:      "acme",
		ApplicantID:    "cand-1",
		ApplicantEmail: "cand@example.com",
		ApplicantName:  "Casey",
	})
	require.NoError(t, err)
	h.jobID, h.appID = jobID, appID

	base := []interview.Option{
		interview.WithStore(store),
		interview.WithCalendar(h.calendar),
		interview.WithNotifier(h.notes),
	}
	h.svc, err = interview.NewService(append(base, opts...)...)
	require.NoError(t, err)

	return h
}

func (h *harness) input(mode string, start time.Time) interview.CreateInput {
	return interview.CreateInput{
		JobID:          h.jobID,
		ApplicationID:  h.appID,
		Mode:           mode,
		InterviewTypes: []string{"technical"},
		ScheduledStart: start,
	}
}

func (h *harness) create(t *testing.T, mode string, start time.Time) domain.Interview {
	t.Helper()
	iv, err := h.svc.Create(context.Background(), hr, h.input(mode, start))
	require.NoError(t, err)
	return iv
}

// runToCompletion takes a fresh interview through accept, start and complete
func (h *harness) runToCompletion(t *testing.T, id string, score float64) domain.Interview {
	t.Helper()
	ctx := context.Background()

	_, err := h.svc.Accept(ctx, candidate, id)
	require.NoError(t, err)
	_, err = h.svc.Start(ctx, candidate, id)
	require.NoError(t, err)
	iv, err := h.svc.Complete(ctx, domain.SystemIdentity(), id, interview.CompleteInput{OverallScore: score, Result: "pass"})
	require.NoError(t, err)
	return iv
}

func (h *harness) application(t *testing.T) domain.Application {
	t.Helper()
	app, err := h.store.Applications().Get(context.Background(), h.appID)
	require.NoError(t, err)
	return app
}

func future(d time.Duration) time.Time {
	return time.Now().UTC().Add(d).Truncate(time.Millisecond)
}
