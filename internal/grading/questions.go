package grading

import (
	"fmt"
	"strings"

	"github.com/campusgrid/lectern/internal/model"
)

// ValidateQuestion enforces the editor rules before a question is created or
// updated: text is required, multiple choice needs at least two non-empty
// options and an in-range answer key, true/false needs a selected answer.
func ValidateQuestion(q model.Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("question text is required")
	}
	if q.Points < 0 {
		return fmt.Errorf("points must not be negative")
	}
	switch q.Type {
	case model.QuestionMCQ:
		var filled int
		for _, opt := range q.Options {
			if strings.TrimSpace(opt) != "" {
				filled++
			}
		}
		if filled < 2 {
			return fmt.Errorf("multiple choice needs at least two options")
		}
		if q.CorrectIndex == nil {
			return fmt.Errorf("select the correct option")
		}
		if *q.CorrectIndex < 0 || *q.CorrectIndex >= len(q.Options) {
			return fmt.Errorf("correct option is out of range")
		}
		if strings.TrimSpace(q.Options[*q.CorrectIndex]) == "" {
			return fmt.Errorf("correct option must not be empty")
		}
	case model.QuestionTrueFalse:
		if q.CorrectAnswer != "true" && q.CorrectAnswer != "false" {
			return fmt.Errorf("select true or false as the answer")
		}
	case model.QuestionShortAnswer, model.QuestionEssay:
		// No answer key required; these may be graded manually.
	default:
		return fmt.Errorf("unknown question type %q", q.Type)
	}
	return nil
}
