package job_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/job"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/storage/sqlstore/sqlstoretest"
)

const fixture = `{
  "jobs": [
    {"id": "job-1", "company_id": "acme", "title": "Backend Engineer", "skills": ["go", "sql"]},
    {"id": "job-2", "company_id": "globex", "title": "Designer"},
    {"id": "job-3", "company_id": "acme"}
  ],
  "applications": [
    {"id": "app-1", "job_id": "job-1", "applicant_id": "cand-1", "applicant_email": "c1@example.com"},
    {"id": "app-2", "job_id": "missing", "applicant_id": "cand-2"},
    {"id": "app-3", "job_id": "job-1"}
  ]
}`

var (
	admin  = domain.Identity{UID: "admin-1", Role: domain.RoleAdmin}
	hadmin = domain.Identity{UID: "hadmin-1", Role: domain.RoleHAdmin, CompanyID: "acme"}
)

type failingSource struct{}

func (failingSource) Name() string { return "broken" }
func (failingSource) Load(context.Context) (job.Batch, error) {
	return job.Batch{}, errors.New("feed offline")
}

func newService(t *testing.T) (*job.Service, context.Context) {
	t.Helper()
	store := sqlstoretest.New(t)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc, err := job.NewService(store, job.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	return svc, context.Background()
}

func TestImportStoresValidRecords(t *testing.T) {
	svc, ctx := newService(t)

	res, err := svc.Import(ctx, admin, job.ReaderSource("fixture", strings.NewReader(fixture)))
	require.NoError(t, err)

	assert.Equal(t, 2, res.JobsCreated)
	assert.Equal(t, 1, res.ApplicationsCreated)
	assert.ElementsMatch(t, []job.Rejection{
		{Kind: "job", ID: "job-3", Reason: "title is required"},
		{Kind: "application", ID: "app-3", Reason: "applicant_id is required"},
		{Kind: "application", ID: "app-2", Reason: "unknown job missing"},
	}, res.Rejected)
}

func TestImportSkipsExistingRecords(t *testing.T) {
	svc, ctx := newService(t)

	_, err := svc.Import(ctx, admin, job.ReaderSource("first", strings.NewReader(fixture)))
	require.NoError(t, err)

	res, err := svc.Import(ctx, admin, job.ReaderSource("second", strings.NewReader(fixture)))
	require.NoError(t, err)
	assert.Zero(t, res.JobsCreated)
	assert.Equal(t, 2, res.JobsSkipped)
	assert.Equal(t, 1, res.ApplicationsSkipped)
}

func TestImportScopesToCallerCompany(t *testing.T) {
	svc, ctx := newService(t)

	res, err := svc.Import(ctx, hadmin, job.ReaderSource("fixture", strings.NewReader(fixture)))
	require.NoError(t, err)
	assert.Equal(t, 1, res.JobsCreated)
	assert.Contains(t, res.Rejected, job.Rejection{Kind: "job", ID: "job-2", Reason: "company is outside the caller's scope"})
}

func TestImportRequiresCapability(t *testing.T) {
	svc, ctx := newService(t)

	hr := domain.Identity{UID: "hr-1", Role: domain.RoleHR, CompanyID: "acme"}
	_, err := svc.Import(ctx, hr, job.ReaderSource("fixture", strings.NewReader(fixture)))
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestImportToleratesFailingSource(t *testing.T) {
	svc, ctx := newService(t)

	res, err := svc.Import(ctx, admin, failingSource{}, job.ReaderSource("fixture", strings.NewReader(fixture)))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"broken": "feed offline"}, res.FailedSources)
	assert.Equal(t, 2, res.JobsCreated)

	_, err = svc.Import(ctx, admin, failingSource{})
	assert.ErrorContains(t, err, "every source failed")
}

func TestJSONSourceRejectsUnknownFields(t *testing.T) {
	_, err := job.ReaderSource("bad", strings.NewReader(`{"postings": []}`)).Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
