package quiz

import (
	"strings"

	"learnlab/internal/services"
)

// QuestionResult is the per-question outcome of a graded attempt.
type QuestionResult struct {
	Prompt        string `json:"question"`
	Submitted     string `json:"submitted_answer"`
	CorrectAnswer string `json:"correct_answer"`
	Correct       bool   `json:"correct"`
	Explanation   string `json:"explanation,omitempty"`
}

// Report summarizes a graded quiz attempt.
type Report struct {
	Title        string           `json:"title"`
	Score        float64          `json:"score_percent"`
	CorrectCount int              `json:"correct_count"`
	Total        int              `json:"total_questions"`
	Results      []QuestionResult `json:"results"`
}

// Grade scores submitted answers against a quiz. Answers are matched by
// position; a short submission leaves the remaining questions unanswered
// and counted wrong. Comparison ignores case and surrounding whitespace.
func Grade(set *Set, answers []string) (*Report, error) {
	if set == nil || len(set.Questions) == 0 {
		return nil, services.Wrap(services.ErrValidation, "quiz", "grade", "quiz has no questions", nil)
	}
	if len(answers) > len(set.Questions) {
		return nil, services.Wrap(services.ErrValidation, "quiz", "grade", "more answers than questions", nil)
	}

	report := &Report{
		Title:   set.Title,
		Total:   len(set.Questions),
		Results: make([]QuestionResult, 0, len(set.Questions)),
	}
	for i, question := range set.Questions {
		submitted := ""
		if i < len(answers) {
			submitted = answers[i]
		}
		correct := answersMatch(submitted, question.Answer)
		if correct {
			report.CorrectCount++
		}
		report.Results = append(report.Results, QuestionResult{
			Prompt:        question.Prompt,
			Submitted:     strings.TrimSpace(submitted),
			CorrectAnswer: question.Answer,
			Correct:       correct,
			Explanation:   question.Explanation,
		})
	}
	report.Score = float64(report.CorrectCount) / float64(report.Total) * 100
	return report, nil
}

func answersMatch(submitted, expected string) bool {
	submitted = strings.TrimSpace(submitted)
	if submitted == "" {
		return false
	}
	return strings.EqualFold(submitted, strings.TrimSpace(expected))
}
