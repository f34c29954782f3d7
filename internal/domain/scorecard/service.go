// Package scorecard exports completed interview results for a job as an
// xlsx workbook or into a Google Sheet.
package scorecard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/access"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/repository"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/logging"
)

// Header is the column layout shared by both export formats
var Header = []string{"Interview", "Candidate", "Email", "Mode", "Score", "Result", "Suggestion", "Completed"}

// SheetWriter is the subset of the Sheets client used for exports
type SheetWriter interface {
	AppendValues(ctx context.Context, spreadsheetID, range_ string, values [][]interface{}) error
	UpdateValues(ctx context.Context, spreadsheetID, range_ string, values [][]interface{}) error
	ClearValues(ctx context.Context, spreadsheetID, range_ string) error
}

// SheetTarget selects where rows go
type SheetTarget struct {
	SpreadsheetID string `json:"spreadsheet_id" jsonschema:"target spreadsheet id"`
	Tab           string `json:"tab,omitempty" jsonschema:"sheet tab, defaults to Sheet1"`
	// Append adds rows under existing data instead of replacing the tab.
	Append bool `json:"append,omitempty" jsonschema:"append instead of replacing existing rows"`
}

// SheetResult reports a finished sheet export
type SheetResult struct {
	SpreadsheetID string    `json:"spreadsheet_id"`
	Tab           string    `json:"tab"`
	WrittenRows   int       `json:"written_rows"`
	Message       string    `json:"message"`
	CompletedAt   time.Time `json:"completed_at"`
}

type Service struct {
	store   repository.Store
	sheets  SheetWriter
	policy  access.Policy
	logger  *logging.Logger
	timeout time.Duration
}

// NewService builds the exporter. sheets may be nil when Sheets is not configured.
func NewService(store repository.Store, sheets SheetWriter, logger *logging.Logger) (*Service, error) {
	if store == nil {
		return nil, errors.New("scorecard service requires a store")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{
		store:   store,
		sheets:  sheets,
		policy:  access.NewPolicy(nil),
		logger:  logger.Named("scorecard"),
		timeout: 30 * time.Second,
	}, nil
}

// Rows returns one row per completed interview of jobID, best score first
func (s *Service) Rows(ctx context.Context, who domain.Identity, jobID string) ([]domain.ScorecardRow, error) {
	job, err := s.store.Jobs().Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.RequireCompany(who, access.ExportScorecards, job.CompanyID); err != nil {
		return nil, err
	}

	interviews, err := s.store.Interviews().List(ctx, repository.InterviewFilter{
		JobID:    job.ID,
		Statuses: []domain.InterviewStatus{domain.StatusCompleted},
	})
	if err != nil {
		return nil, err
	}
	return BuildRows(interviews), nil
}

// BuildRows maps completed interviews to rows
func BuildRows(interviews []domain.Interview) []domain.ScorecardRow {
	rows := make([]domain.ScorecardRow, 0, len(interviews))
	for _, iv := range interviews {
		if iv.Status != domain.StatusCompleted {
			continue
		}
		row := domain.ScorecardRow{
			InterviewID:    iv.ID,
			CandidateName:  iv.CandidateName,
			CandidateEmail: iv.CandidateEmail,
			Mode:           iv.Mode,
			Result:         iv.Result,
			Suggestion:     iv.Suggestion,
		}
		if iv.OverallScore != nil {
			row.OverallScore = *iv.OverallScore
		}
		if iv.EndedAt != nil {
			row.EndedAt = iv.EndedAt.UTC()
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].OverallScore > rows[j].OverallScore
	})
	return rows
}

// ExportSheet writes the job's scorecards into a spreadsheet tab
func (s *Service) ExportSheet(ctx context.Context, who domain.Identity, jobID string, target SheetTarget) (SheetResult, error) {
	if target.SpreadsheetID == "" {
		return SheetResult{}, fmt.Errorf("%w: spreadsheet_id is required", domain.ErrInvalidInput)
	}

	rows, err := s.Rows(ctx, who, jobID)
	if err != nil {
		return SheetResult{}, err
	}

	result := SheetResult{SpreadsheetID: target.SpreadsheetID, Tab: tabName(target.Tab)}
	if s.sheets == nil {
		return result, fmt.Errorf("%w: sheets: client not configured", domain.ErrDependencyFailure)
	}

	err = domain.CallDependency(ctx, "sheets", s.timeout, func(ctx context.Context) error {
		return s.write(ctx, target, rows)
	})
	if err != nil {
		return result, err
	}

	result.WrittenRows = len(rows)
	result.CompletedAt = time.Now().UTC()
	result.Message = fmt.Sprintf("exported %d scorecard(s)", len(rows))
	s.logger.Info("scorecards exported to sheet", "job_id", jobID, "rows", len(rows), "spreadsheet_id", target.SpreadsheetID)
	return result, nil
}

func (s *Service) write(ctx context.Context, target SheetTarget, rows []domain.ScorecardRow) error {
	tab := tabName(target.Tab)
	values := toValues(rows)

	if target.Append {
		if len(values) == 0 {
			return nil
		}
		if err := s.sheets.AppendValues(ctx, target.SpreadsheetID, tab+"!A1", values); err != nil {
			return fmt.Errorf("append rows: %w", err)
		}
		return nil
	}

	if err := s.sheets.ClearValues(ctx, target.SpreadsheetID, clearRange(tab)); err != nil {
		return fmt.Errorf("clear sheet: %w", err)
	}
	all := append([][]interface{}{headerValues()}, values...)
	if err := s.sheets.UpdateValues(ctx, target.SpreadsheetID, tab+"!A1", all); err != nil {
		return fmt.Errorf("update rows: %w", err)
	}
	return nil
}

func tabName(tab string) string {
	if tab == "" {
		return "Sheet1"
	}
	return tab
}

func clearRange(tab string) string {
	return fmt.Sprintf("%s!A1:Z", tab)
}

func headerValues() []interface{} {
	out := make([]interface{}, len(Header))
	for i, h := range Header {
		out[i] = h
	}
	return out
}

func toValues(rows []domain.ScorecardRow) [][]interface{} {
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = []interface{}{
			row.InterviewID,
			row.CandidateName,
			row.CandidateEmail,
			string(row.Mode),
			row.OverallScore,
			row.Result,
			row.Suggestion,
			formatTime(row.EndedAt),
		}
	}
	return values
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
