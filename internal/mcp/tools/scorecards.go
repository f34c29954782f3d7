package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/scorecard"
)

// ScorecardExporter writes scorecards to a spreadsheet
type ScorecardExporter interface {
	ExportSheet(ctx context.Context, who domain.Identity, jobID string, target scorecard.SheetTarget) (scorecard.SheetResult, error)
}

// ScorecardExportParams defines the arguments for scorecard_export
type ScorecardExportParams struct {
	JobID string                `json:"job_id" jsonschema:"Job whose completed interviews are exported"`
	Sheet scorecard.SheetTarget `json:"sheet" jsonschema:"Destination sheet information"`
}

// WithScorecardExport registers scorecard_export
func WithScorecardExport(exporter ScorecardExporter) Option {
	return func(reg *registry) {
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "scorecard_export",
			Description: "Export completed interview scorecards for a job to Google Sheets",
		}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ScorecardExportParams) (*sdkmcp.CallToolResult, scorecard.SheetResult, error) {
			res, err := exporter.ExportSheet(ctx, reg.who, in.JobID, in.Sheet)
			if err != nil {
				return nil, scorecard.SheetResult{}, toolError(reg.logger, "scorecard_export", err)
			}
			return nil, res, nil
		})
	}
}
