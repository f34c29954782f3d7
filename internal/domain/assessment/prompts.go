package assessment

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/llm"
)

const questionSystem = `You are an experienced technical recruiter preparing interview questions.
Respond with JSON only: {"questions":[{"question":"...","category":"..."}]}.`

const evaluationSystem = `You are an interview assessor. Score each answer from 0 to 100 against the
job requirements. Respond with JSON only:
{"evaluations":[{"id":"...","score":0,"feedback":"..."}],"overall_score":0,
"result":"recommended|not_recommended","suggestion":"...","summary":"..."}.`

func questionPrompt(job domain.Job, iv domain.Interview, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write %d interview questions for a %s interview.\n", count, iv.Mode)
	fmt.Fprintf(&b, "Role: %s\n", job.Title)
	if len(job.Skills) > 0 {
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(job.Skills, ", "))
	}
	if len(iv.InterviewTypes) > 0 {
		fmt.Fprintf(&b, "Focus areas: %s\n", strings.Join(iv.InterviewTypes, ", "))
	}
	if job.Description != "" {
		fmt.Fprintf(&b, "Job description:\n%s\n", job.Description)
	}
	b.WriteString("Mix difficulty levels and keep each question answerable in a few minutes.")
	return b.String()
}

func evaluationPrompt(job domain.Job, items []domain.QnA) string {
	type qa struct {
		ID       string `json:"id"`
		Question string `json:"question"`
		Category string `json:"category,omitempty"`
		Answer   string `json:"answer"`
	}
	list := make([]qa, 0, len(items))
	for _, item := range items {
		list = append(list, qa{ID: item.ID, Question: item.Question, Category: item.Category, Answer: item.Answer})
	}
	payload, _ := json.MarshalIndent(list, "", "  ")

	var b strings.Builder
	fmt.Fprintf(&b, "Role: %s\n", job.Title)
	if len(job.Skills) > 0 {
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(job.Skills, ", "))
	}
	b.WriteString("Questions and answers:\n")
	b.Write(payload)
	return b.String()
}

type generatedQuestion struct {
	Question string `json:"question"`
	Category string `json:"category"`
}

// parseQuestions accepts {"questions":[...]} or a bare array
func parseQuestions(raw string, limit int) ([]domain.QnA, error) {
	body := llm.ExtractJSON(raw)

	var list []generatedQuestion
	if strings.HasPrefix(body, "[") {
		if err := json.Unmarshal([]byte(body), &list); err != nil {
			return nil, fmt.Errorf("decode questions: %w", err)
		}
	} else {
		var wrapped struct {
			Questions []generatedQuestion `json:"questions"`
		}
		if err := json.Unmarshal([]byte(body), &wrapped); err != nil {
			return nil, fmt.Errorf("decode questions: %w", err)
		}
		list = wrapped.Questions
	}

	out := make([]domain.QnA, 0, len(list))
	for _, q := range list {
		text := strings.TrimSpace(q.Question)
		if text == "" {
			continue
		}
		out = append(out, domain.QnA{Question: text, Category: strings.TrimSpace(q.Category)})
		if len(out) == limit {
			break
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("model returned no questions")
	}
	return out, nil
}

// Evaluation is the scored outcome of an answer set
type Evaluation struct {
	Items        []domain.QnA
	OverallScore float64
	Result       string
	Suggestion   string
	Summary      string
}

// parseEvaluation merges model scores into items. Unscored answers get 0 and
// a missing overall score falls back to the mean.
func parseEvaluation(raw string, items []domain.QnA) (Evaluation, error) {
	var resp struct {
		Evaluations []struct {
			ID       string   `json:"id"`
			Score    *float64 `json:"score"`
			Feedback string   `json:"feedback"`
		} `json:"evaluations"`
		OverallScore *float64 `json:"overall_score"`
		Result       string   `json:"result"`
		Suggestion   string   `json:"suggestion"`
		Summary      string   `json:"summary"`
	}
	if err := json.Unmarshal([]byte(llm.ExtractJSON(raw)), &resp); err != nil {
		return Evaluation{}, fmt.Errorf("decode evaluation: %w", err)
	}

	byID := make(map[string]int, len(resp.Evaluations))
	for i, e := range resp.Evaluations {
		byID[e.ID] = i
	}

	out := Evaluation{Items: make([]domain.QnA, len(items))}
	var total float64
	for i, item := range items {
		score := 0.0
		if j, ok := byID[item.ID]; ok {
			if s := resp.Evaluations[j].Score; s != nil {
				score = clamp(*s)
			}
			item.Feedback = strings.TrimSpace(resp.Evaluations[j].Feedback)
		}
		item.Score = &score
		out.Items[i] = item
		total += score
	}

	if resp.OverallScore != nil {
		out.OverallScore = clamp(*resp.OverallScore)
	} else if len(items) > 0 {
		out.OverallScore = math.Round(total/float64(len(items))*10) / 10
	}

	out.Result = strings.TrimSpace(resp.Result)
	if out.Result == "" {
		out.Result = "not_recommended"
		if out.OverallScore >= 60 {
			out.Result = "recommended"
		}
	}
	out.Suggestion = strings.TrimSpace(resp.Suggestion)
	out.Summary = strings.TrimSpace(resp.Summary)
	return out, nil
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
