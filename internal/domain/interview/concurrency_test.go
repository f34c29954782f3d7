package interview_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/config"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/interview"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/storage/sqlstore"
)

const racers = 8

// race runs fn racers times at once and returns the errors
func race(fn func() error) []error {
	var (
		wg   sync.WaitGroup
		gate = make(chan struct{})
		errs = make([]error, racers)
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-gate
			errs[i] = fn()
		}(i)
	}
	close(gate)
	wg.Wait()
	return errs
}

func successes(errs []error) int {
	n := 0
	for _, err := range errs {
		if err == nil {
			n++
		}
	}
	return n
}

func TestConcurrentCreateKeepsOneActivePerMode(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	errs := race(func() error {
		_, err := h.svc.Create(ctx, hr, h.input("hr", future(24*time.Hour)))
		return err
	})

	assert.Equal(t, 1, successes(errs))
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrConflict)
		}
	}
	assert.Len(t, h.application(t).InterviewIDs, 1)
}

func TestConcurrentAcceptAppliesOnce(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	iv := h.create(t, "hm", future(24*time.Hour))

	errs := race(func() error {
		_, err := h.svc.Accept(ctx, candidate, iv.ID)
		return err
	})

	assert.Equal(t, 1, successes(errs))
	for _, err := range errs {
		if err != nil {
			assert.True(t, errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrInvalidTransition), err.Error())
		}
	}
}

func TestConcurrentCancelAndStartNeverBothWin(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	iv := h.create(t, "hr", future(24*time.Hour))
	_, err := h.svc.Accept(ctx, candidate, iv.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var startErr, cancelErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, startErr = h.svc.Start(ctx, candidate, iv.ID)
	}()
	go func() {
		defer wg.Done()
		_, cancelErr = h.svc.Cancel(ctx, hr, iv.ID, "")
	}()
	wg.Wait()

	got, err := h.svc.Get(ctx, hr, iv.ID)
	require.NoError(t, err)

	// cancel is legal from in_progress too, so both may succeed in that order
	switch {
	case startErr == nil && cancelErr == nil:
		assert.Equal(t, domain.StatusCancelled, got.Status)
	case startErr == nil:
		assert.Equal(t, domain.StatusInProgress, got.Status)
	case cancelErr == nil:
		assert.Equal(t, domain.StatusCancelled, got.Status)
	default:
		t.Fatalf("both transitions failed: start=%v cancel=%v", startErr, cancelErr)
	}
}

func TestConcurrentRescheduleRequestsRespectLimit(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	iv := h.create(t, "hr", future(24*time.Hour))

	for round := 0; round < 3; round++ {
		race(func() error {
			_, err := h.svc.RequestReschedule(ctx, candidate, iv.ID, interview.RescheduleInput{NewTime: future(48 * time.Hour)})
			return err
		})
		// approve whatever is pending so the next round can request again
		_, _ = h.svc.AcceptReschedule(ctx, hr, iv.ID)
	}

	got, err := h.svc.Get(ctx, hr, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RescheduleLimit, got.RescheduleCount)
	assert.Equal(t, domain.StatusConfirmed, got.Status)
}

func TestConcurrentCreatesOnDistinctApplicationsWithConfiguredStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// a bare file DSN, the way an operator would set it
	path := filepath.Join(t.TempDir(), "recruito.db")
	cfg, err := config.FromEnv(func(k string) string {
		switch k {
		case "SESSION_SECRET":
			return "concurrency-secret"
		case "STORE_DSN":
			return "file:" + path
		}
		return ""
	})
	require.NoError(t, err)

	store, err := sqlstore.Open(ctx, sqlstore.Config{
		Driver:  cfg.Store.Driver,
		DSN:     cfg.Store.DSN,
		Migrate: cfg.Store.Migrate,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(ctx) })

	h := newHarnessOn(t, store)
	apps := []string{h.appID}
	for len(apps) < racers {
		id, err := store.Applications().Add(ctx, domain.Application{
			JobID:          h.jobID,
			CompanyID:      "acme",
			ApplicantID:    "cand-1",
			ApplicantEmail: "cand@example.com",
		})
		require.NoError(t, err)
		apps = append(apps, id)
	}

	var next atomic.Int32
	errs := race(func() error {
		in := h.input("ai", time.Time{})
		in.ApplicationID = apps[next.Add(1)-1]
		_, err := h.svc.Create(ctx, hr, in)
		return err
	})
	for _, err := range errs {
		assert.NoError(t, err)
	}

	for _, id := range apps {
		app, err := store.Applications().Get(ctx, id)
		require.NoError(t, err)
		assert.Len(t, app.InterviewIDs, 1, id)
	}
}
