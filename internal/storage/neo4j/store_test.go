package neo4j_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/repository"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/storage/neo4j"
	pkgneo4j "github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/neo4j"
)

// openStore connects to NEO4J_URI. Every test works on fresh uuids so runs
// against a shared database do not collide.
func openStore(t *testing.T) *neo4j.Store {
	t.Helper()
	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		t.Skip("NEO4J_URI not set")
	}

	ctx := context.Background()
	client, err := pkgneo4j.NewClient(ctx, pkgneo4j.Config{
		URI:      uri,
		Username: os.Getenv("NEO4J_USERNAME"),
		Password: os.Getenv("NEO4J_PASSWORD"),
		Database: os.Getenv("NEO4J_DATABASE"),
	})
	require.NoError(t, err)

	store, err := neo4j.NewStore(ctx, client)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

func seed(t *testing.T, store repository.Store) (domain.Job, domain.Application) {
	t.Helper()
	ctx := context.Background()

	jobID, err := store.Jobs().Add(ctx, domain.Job{CompanyID: "acme", Title: "Graph Engineer", Skills: []string{"cypher"}})
	require.NoError(t, err)
	appID, err := store.Applications().Add(ctx, domain.Application{
		JobID: jobID, CompanyID: "acme", ApplicantID: "cand-1", ApplicantEmail: "cand@example.com",
	})
	require.NoError(t, err)

	job, err := store.Jobs().Get(ctx, jobID)
	require.NoError(t, err)
	app, err := store.Applications().Get(ctx, appID)
	require.NoError(t, err)
	return job, app
}

func TestInterviewLifecycleOnGraph(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	job, app := seed(t, store)

	assert.Equal(t, []string{"cypher"}, job.Skills)
	assert.Equal(t, domain.ApplicationApplied, app.Status)
	assert.Empty(t, app.InterviewIDs)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Millisecond).UTC()
	iv := domain.Interview{
		ApplicationID: app.ID, JobID: job.ID, CompanyID: "acme",
		Mode: domain.ModeHR, Status: domain.StatusScheduled,
		ScheduledStart: start, ScheduledEnd: start.Add(30 * time.Minute), DurationMinutes: 30,
	}

	var id string
	err := store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		require.NoError(t, tx.Applications().Lock(ctx, app.ID))
		var err error
		id, err = tx.Interviews().Add(ctx, iv)
		if err != nil {
			return err
		}
		return tx.Applications().AttachInterview(ctx, app.ID, id)
	})
	require.NoError(t, err)

	_, err = store.Interviews().Add(ctx, iv)
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := store.Applications().Get(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{id}, got.InterviewIDs)

	confirmed := domain.StatusConfirmed
	updated, err := store.Interviews().Update(ctx, id, []domain.InterviewStatus{domain.StatusScheduled},
		domain.InterviewUpdate{Status: &confirmed})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, updated.Status)
	assert.True(t, updated.ScheduledStart.Equal(start))

	_, err = store.Interviews().Update(ctx, id, []domain.InterviewStatus{domain.StatusScheduled},
		domain.InterviewUpdate{Status: &confirmed})
	assert.ErrorIs(t, err, repository.ErrStale)

	for range domain.RescheduleLimit {
		_, err = store.Interviews().Update(ctx, id, nil, domain.InterviewUpdate{IncrementReschedule: true})
		require.NoError(t, err)
	}
	_, err = store.Interviews().Update(ctx, id, nil, domain.InterviewUpdate{IncrementReschedule: true})
	assert.ErrorIs(t, err, domain.ErrLimitExceeded)

	remaining, err := store.Applications().DetachInterview(ctx, app.ID, id)
	require.NoError(t, err)
	assert.Zero(t, remaining)
}

// raceUpdates runs n copies of update at once and returns their errors
func raceUpdates(n int, update func() error) []error {
	var (
		wg   sync.WaitGroup
		gate = make(chan struct{})
		errs = make([]error, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-gate
			errs[i] = update()
		}(i)
	}
	close(gate)
	wg.Wait()
	return errs
}

func TestConcurrentUpdatesOnGraphHaveOneWinner(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	job, app := seed(t, store)

	start := time.Now().Add(48 * time.Hour).Truncate(time.Millisecond).UTC()
	id, err := store.Interviews().Add(ctx, domain.Interview{
		ApplicationID: app.ID, JobID: job.ID, CompanyID: "acme",
		Mode: domain.ModeHM, Status: domain.StatusScheduled,
		ScheduledStart: start, ScheduledEnd: start.Add(30 * time.Minute), DurationMinutes: 30,
	})
	require.NoError(t, err)

	const racers = 8
	confirmed := domain.StatusConfirmed
	errs := raceUpdates(racers, func() error {
		_, err := store.Interviews().Update(ctx, id, []domain.InterviewStatus{domain.StatusScheduled},
			domain.InterviewUpdate{Status: &confirmed})
		return err
	})
	won := 0
	for _, err := range errs {
		if err == nil {
			won++
			continue
		}
		assert.ErrorIs(t, err, repository.ErrStale)
	}
	assert.Equal(t, 1, won)

	// one slot left under the reschedule limit
	for range domain.RescheduleLimit - 1 {
		_, err = store.Interviews().Update(ctx, id, nil, domain.InterviewUpdate{IncrementReschedule: true})
		require.NoError(t, err)
	}

	rescheduled := domain.StatusRescheduled
	errs = raceUpdates(racers, func() error {
		_, err := store.Interviews().Update(ctx, id, []domain.InterviewStatus{domain.StatusConfirmed, domain.StatusRescheduled},
			domain.InterviewUpdate{Status: &rescheduled, IncrementReschedule: true})
		return err
	})
	won = 0
	for _, err := range errs {
		if err == nil {
			won++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrLimitExceeded)
	}
	assert.Equal(t, 1, won)

	got, err := store.Interviews().Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.RescheduleLimit, got.RescheduleCount)
	assert.Equal(t, domain.StatusRescheduled, got.Status)
}

func TestWithinTxRollsBackOnGraph(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	_, app := seed(t, store)

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		require.NoError(t, tx.Applications().SetStatus(ctx, app.ID, domain.ApplicationRejected))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := store.Applications().Get(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationApplied, got.Status)
}

func TestRecordsOnGraph(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	_, err := store.Settings().Get(ctx, "graph-co-missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Settings().Upsert(ctx, domain.CompanySettings{CompanyID: "graph-co", MaxAIInterviews: 5, ReminderHoursBefore: 2}))
	s, err := store.Settings().Get(ctx, "graph-co")
	require.NoError(t, err)
	assert.Equal(t, 5, s.MaxAIInterviews)

	noteID, err := store.Notifications().Add(ctx, domain.Notification{
		ReceiverID: "graph-user", Type: domain.NotifyInterviewScheduled, Metadata: map[string]string{"k": "v"},
	})
	require.NoError(t, err)
	assert.ErrorIs(t, store.Notifications().MarkRead(ctx, noteID, "someone-else"), domain.ErrNotFound)
	require.NoError(t, store.Notifications().MarkRead(ctx, noteID, "graph-user"))

	interviewID := "graph-qna-" + noteID
	require.NoError(t, store.QnA().Replace(ctx, interviewID, []domain.QnA{{Question: "One?"}, {Question: "Two?"}}))
	items, err := store.QnA().List(ctx, interviewID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].Position)

	require.NoError(t, store.QnA().SaveAnswers(ctx, interviewID, map[string]string{items[1].ID: "yes"}))
	assert.ErrorIs(t, store.QnA().SaveAnswers(ctx, interviewID, map[string]string{"nope": "x"}), domain.ErrNotFound)
}
