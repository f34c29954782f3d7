package scorecard_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/scorecard"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/repository"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/storage/sqlstore/sqlstoretest"
)

var hr = domain.Identity{UID: "hr-1", Email: "hr@acme.test", Role: domain.RoleHR, CompanyID: "acme"}

type sheetCall struct {
	op     string
	range_ string
	values [][]interface{}
}

type fakeSheets struct {
	calls []sheetCall
	err   error
}

func (f *fakeSheets) AppendValues(_ context.Context, _ string, r string, v [][]interface{}) error {
	f.calls = append(f.calls, sheetCall{"append", r, v})
	return f.err
}

func (f *fakeSheets) UpdateValues(_ context.Context, _ string, r string, v [][]interface{}) error {
	f.calls = append(f.calls, sheetCall{"update", r, v})
	return f.err
}

func (f *fakeSheets) ClearValues(_ context.Context, _ string, r string) error {
	f.calls = append(f.calls, sheetCall{"clear", r, nil})
	return f.err
}

func seed(t *testing.T, store repository.Store) string {
	t.Helper()
	ctx := context.Background()

	jobID, err := store.Jobs().Add(ctx, domain.Job{CompanyID: "acme", Title: "Backend"})
	require.NoError(t, err)

	ended := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	add := func(name string, status domain.InterviewStatus, mode domain.InterviewMode, score float64) {
		appID, err := store.Applications().Add(ctx, domain.Application{
			JobID: jobID, CompanyID: "acme", ApplicantID: name, ApplicantEmail: name + "@example.com",
		})
		require.NoError(t, err)
		iv := domain.Interview{
			ApplicationID:  appID,
			JobID:          jobID,
			CompanyID:      "acme",
			CandidateID:    name,
			CandidateEmail: name + "@example.com",
			CandidateName:  name,
			Mode:           mode,
			Status:         status,
		}
		if status == domain.StatusCompleted {
			iv.OverallScore = &score
			iv.EndedAt = &ended
			iv.Result = "recommended"
		}
		_, err = store.Interviews().Add(ctx, iv)
		require.NoError(t, err)
	}

	add("ana", domain.StatusCompleted, domain.ModeAI, 71)
	add("ben", domain.StatusCompleted, domain.ModeHR, 92.5)
	add("cy", domain.StatusScheduled, domain.ModeHR, 0)
	return jobID
}

func TestRowsOnlyCompletedBestFirst(t *testing.T) {
	store := sqlstoretest.New(t)
	jobID := seed(t, store)

	svc, err := scorecard.NewService(store, nil, nil)
	require.NoError(t, err)

	rows, err := svc.Rows(context.Background(), hr, jobID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ben", rows[0].CandidateName)
	assert.Equal(t, 92.5, rows[0].OverallScore)
	assert.Equal(t, "ana", rows[1].CandidateName)

	outsider := domain.Identity{UID: "hr-9", Role: domain.RoleHR, CompanyID: "globex"}
	_, err = svc.Rows(context.Background(), outsider, jobID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestWriteXLSXRoundTrip(t *testing.T) {
	ended := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	rows := []domain.ScorecardRow{
		{InterviewID: "iv-1", CandidateName: "Ana", CandidateEmail: "ana@example.com", Mode: domain.ModeAI, OverallScore: 81, Result: "recommended", EndedAt: ended},
	}

	var buf bytes.Buffer
	require.NoError(t, scorecard.WriteXLSX(&buf, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows("Scorecards")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, scorecard.Header, got[0])
	assert.Equal(t, "iv-1", got[1][0])
	assert.Equal(t, "Ana", got[1][1])
	assert.Equal(t, "2026-03-02T15:00:00Z", got[1][7])
}

func TestExportSheetReplacesTab(t *testing.T) {
	store := sqlstoretest.New(t)
	jobID := seed(t, store)
	sheets := &fakeSheets{}

	svc, err := scorecard.NewService(store, sheets, nil)
	require.NoError(t, err)

	res, err := svc.ExportSheet(context.Background(), hr, jobID, scorecard.SheetTarget{SpreadsheetID: "sheet-1", Tab: "Backend"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.WrittenRows)
	assert.Equal(t, "Backend", res.Tab)

	require.Len(t, sheets.calls, 2)
	assert.Equal(t, "clear", sheets.calls[0].op)
	assert.Equal(t, "Backend!A1:Z", sheets.calls[0].range_)
	assert.Equal(t, "update", sheets.calls[1].op)
	assert.Len(t, sheets.calls[1].values, 3, "header plus two rows")
}

func TestExportSheetAppend(t *testing.T) {
	store := sqlstoretest.New(t)
	jobID := seed(t, store)
	sheets := &fakeSheets{}

	svc, err := scorecard.NewService(store, sheets, nil)
	require.NoError(t, err)

	_, err = svc.ExportSheet(context.Background(), hr, jobID, scorecard.SheetTarget{SpreadsheetID: "sheet-1", Append: true})
	require.NoError(t, err)
	require.Len(t, sheets.calls, 1)
	assert.Equal(t, "append", sheets.calls[0].op)
	assert.Equal(t, "Sheet1!A1", sheets.calls[0].range_)
	assert.Len(t, sheets.calls[0].values, 2)
}

func TestExportSheetFailures(t *testing.T) {
	store := sqlstoretest.New(t)
	jobID := seed(t, store)
	ctx := context.Background()

	noSheets, err := scorecard.NewService(store, nil, nil)
	require.NoError(t, err)
	_, err = noSheets.ExportSheet(ctx, hr, jobID, scorecard.SheetTarget{SpreadsheetID: "s"})
	assert.ErrorIs(t, err, domain.ErrDependencyFailure)

	_, err = noSheets.ExportSheet(ctx, hr, jobID, scorecard.SheetTarget{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	broken, err := scorecard.NewService(store, &fakeSheets{err: errors.New("quota exceeded")}, nil)
	require.NoError(t, err)
	_, err = broken.ExportSheet(ctx, hr, jobID, scorecard.SheetTarget{SpreadsheetID: "s"})
	assert.ErrorIs(t, err, domain.ErrDependencyFailure)
}
