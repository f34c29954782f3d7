package tools

import (
	"context"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
)

// InterviewReader is the read side of the interview lifecycle
type InterviewReader interface {
	ApplicationView(ctx context.Context, who domain.Identity, applicationID string) (domain.ApplicationView, error)
	CheckAIQuota(ctx context.Context, who domain.Identity, applicationID string) (domain.QuotaStatus, error)
}

// ApplicationParams selects one application
type ApplicationParams struct {
	ApplicationID string `json:"application_id" jsonschema:"Application identifier"`
}

// InterviewSummary is one live interview of an application
type InterviewSummary struct {
	ID              string     `json:"id"`
	Mode            string     `json:"mode"`
	Status          string     `json:"status"`
	ScheduledStart  *time.Time `json:"scheduled_start,omitempty"`
	RescheduleCount int        `json:"reschedule_count"`
	OverallScore    *float64   `json:"overall_score,omitempty"`
	Result          string     `json:"result,omitempty"`
}

// InterviewLookupResult is the structured response of interview_lookup
type InterviewLookupResult struct {
	ApplicationID string             `json:"application_id"`
	JobID         string             `json:"job_id"`
	Status        string             `json:"status"`
	Interviews    []InterviewSummary `json:"interviews"`
}

type interviewTools struct {
	reader InterviewReader
	reg    *registry
}

// WithInterviewLookup registers interview_lookup
func WithInterviewLookup(reader InterviewReader) Option {
	return func(reg *registry) {
		t := interviewTools{reader: reader, reg: reg}
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "interview_lookup",
			Description: "Show an application's status and every interview attached to it",
		}, t.lookup)
	}
}

// WithQuotaCheck registers ai_quota_check
func WithQuotaCheck(reader InterviewReader) Option {
	return func(reg *registry) {
		t := interviewTools{reader: reader, reg: reg}
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "ai_quota_check",
			Description: "Report how many AI interviews an application has used and whether another may be scheduled",
		}, t.quota)
	}
}

func (t interviewTools) lookup(ctx context.Context, _ *sdkmcp.CallToolRequest, in ApplicationParams) (*sdkmcp.CallToolResult, InterviewLookupResult, error) {
	view, err := t.reader.ApplicationView(ctx, t.reg.who, in.ApplicationID)
	if err != nil {
		return nil, InterviewLookupResult{}, toolError(t.reg.logger, "interview_lookup", err)
	}

	out := InterviewLookupResult{
		ApplicationID: view.Application.ID,
		JobID:         view.Application.JobID,
		Status:        string(view.Application.Status),
		Interviews:    make([]InterviewSummary, 0, len(view.Interviews)),
	}
	for _, iv := range view.Interviews {
		s := InterviewSummary{
			ID:              iv.ID,
			Mode:            string(iv.Mode),
			Status:          string(iv.Status),
			RescheduleCount: iv.RescheduleCount,
			OverallScore:    iv.OverallScore,
			Result:          iv.Result,
		}
		if iv.HasSchedule() {
			start := iv.ScheduledStart.UTC()
			s.ScheduledStart = &start
		}
		out.Interviews = append(out.Interviews, s)
	}
	return nil, out, nil
}

func (t interviewTools) quota(ctx context.Context, _ *sdkmcp.CallToolRequest, in ApplicationParams) (*sdkmcp.CallToolResult, domain.QuotaStatus, error) {
	status, err := t.reader.CheckAIQuota(ctx, t.reg.who, in.ApplicationID)
	if err != nil {
		return nil, domain.QuotaStatus{}, toolError(t.reg.logger, "ai_quota_check", err)
	}
	return nil, status, nil
}
