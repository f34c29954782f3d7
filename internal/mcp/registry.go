package mcp

import (
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/mcp/tools"
)

// Resources are the services the tools call into. Nil entries leave the
// matching tool unregistered.
type Resources struct {
	Interviews tools.InterviewReader
	Questions  tools.QuestionGenerator
	Scorecards tools.ScorecardExporter
}

func (r Resources) options() []tools.Option {
	var opts []tools.Option
	if r.Interviews != nil {
		opts = append(opts, tools.WithInterviewLookup(r.Interviews), tools.WithQuotaCheck(r.Interviews))
	}
	if r.Questions != nil {
		opts = append(opts, tools.WithInterviewQuestions(r.Questions))
	}
	if r.Scorecards != nil {
		opts = append(opts, tools.WithScorecardExport(r.Scorecards))
	}
	return opts
}
