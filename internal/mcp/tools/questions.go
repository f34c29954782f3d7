package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
)

// QuestionGenerator creates AI interview questions
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, who domain.Identity, interviewID string, count int) ([]domain.QnA, error)
}

// QuestionsParams defines the arguments for interview_questions
type QuestionsParams struct {
	InterviewID string `json:"interview_id" jsonschema:"AI interview identifier"`
	Count       int    `json:"count,omitempty" jsonschema:"How many questions to generate (default 5, max 20)"`
}

// Question is one generated question
type Question struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
	Question string `json:"question"`
	Category string `json:"category,omitempty"`
}

// QuestionsResult lists the generated questions
type QuestionsResult struct {
	InterviewID string     `json:"interview_id"`
	Questions   []Question `json:"questions"`
}

// WithInterviewQuestions registers interview_questions
func WithInterviewQuestions(gen QuestionGenerator) Option {
	return func(reg *registry) {
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "interview_questions",
			Description: "Generate the question set for an AI interview, replacing any previous set",
		}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in QuestionsParams) (*sdkmcp.CallToolResult, QuestionsResult, error) {
			items, err := gen.GenerateQuestions(ctx, reg.who, in.InterviewID, in.Count)
			if err != nil {
				return nil, QuestionsResult{}, toolError(reg.logger, "interview_questions", err)
			}

			out := QuestionsResult{InterviewID: in.InterviewID, Questions: make([]Question, len(items))}
			for i, q := range items {
				out.Questions[i] = Question{ID: q.ID, Position: q.Position, Question: q.Question, Category: q.Category}
			}
			return nil, out, nil
		})
	}
}
