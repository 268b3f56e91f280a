package grading

import (
	"fmt"
	"math"

	"github.com/campusgrid/lectern/internal/backend"
	"github.com/campusgrid/lectern/internal/model"
)

// Sheet is the working state of manually grading one exam response. Scores
// are buffered per question and only leave the sheet as a single aggregate
// payload on Save.
type Sheet struct {
	response  model.ExamResponse
	questions []model.Question
	scores    map[string]float64
	feedback  string
	flagged   bool
}

// NewSheet seeds the buffer from the response's existing scores so a partly
// graded response resumes where it left off.
func NewSheet(r model.ExamResponse, questions []model.Question) *Sheet {
	scores := make(map[string]float64, len(r.QuestionScores))
	for id, v := range r.QuestionScores {
		scores[id] = v
	}
	return &Sheet{
		response:  r,
		questions: questions,
		scores:    scores,
		feedback:  r.Feedback,
		flagged:   r.FlaggedForReview,
	}
}

// SetScore records a score for one question. It must not exceed the
// question's point value or fall below zero.
func (s *Sheet) SetScore(questionID string, points float64) error {
	var q *model.Question
	for i := range s.questions {
		if s.questions[i].ID == questionID {
			q = &s.questions[i]
			break
		}
	}
	if q == nil {
		return fmt.Errorf("question %s is not on this exam", questionID)
	}
	if points < 0 || points > q.Points {
		return fmt.Errorf("score for %q must be between 0 and %g", q.Text, q.Points)
	}
	s.scores[questionID] = points
	return nil
}

// Score returns the buffered score for a question, if any.
func (s *Sheet) Score(questionID string) (float64, bool) {
	v, ok := s.scores[questionID]
	return v, ok
}

func (s *Sheet) SetFeedback(fb string) { s.feedback = fb }
func (s *Sheet) SetFlagged(f bool)     { s.flagged = f }
func (s *Sheet) Flagged() bool         { return s.flagged }

// Totals is the live aggregate shown while grading: entered points over the
// exam's total points, with the percentage rounded to two decimals.
func (s *Sheet) Totals() (total, max, percentage float64) {
	for _, q := range s.questions {
		max += q.Points
		if v, ok := s.scores[q.ID]; ok {
			total += v
		}
	}
	if max > 0 {
		percentage = math.Round(total/max*100*100) / 100
	}
	return total, max, percentage
}

// Ungraded lists questions with no buffered score yet.
func (s *Sheet) Ungraded() []model.Question {
	var out []model.Question
	for _, q := range s.questions {
		if _, ok := s.scores[q.ID]; !ok {
			out = append(out, q)
		}
	}
	return out
}

// SuggestMissing fills ungraded objective questions from the suggester.
// Questions the suggester marks NeedsManual stay ungraded.
func (s *Sheet) SuggestMissing(g *Suggester) int {
	filled := 0
	for _, q := range s.Ungraded() {
		sug := g.Suggest(q, s.response.Answers[q.ID])
		if sug.NeedsManual {
			continue
		}
		s.scores[q.ID] = sug.Points
		filled++
	}
	return filled
}

// Payload builds the single aggregate save request.
func (s *Sheet) Payload() backend.ResponseGrade {
	total, max, pct := s.Totals()
	scores := make(map[string]float64, len(s.scores))
	for id, v := range s.scores {
		scores[id] = v
	}
	return backend.ResponseGrade{
		ResponseID:     s.response.ID,
		QuestionScores: scores,
		TotalScore:     total,
		MaxScore:       max,
		Percentage:     pct,
		Feedback:       s.feedback,
		Flagged:        s.flagged,
	}
}
