// Package grading covers instructor-side grading of exam responses: status
// classification, the manual grading sheet, question validation and local
// score suggestions for objective question types.
package grading

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/campusgrid/lectern/internal/model"
)

// Suggestion is a locally computed score hint for one question, shown in the
// grading sheet before the instructor commits a score.
type Suggestion struct {
	Points      float64
	MaxPoints   float64
	NeedsManual bool
	Note        string
}

// Strategy scores one answer against a question. Strategies never error on
// unscoreable input; they flag NeedsManual instead.
type Strategy interface {
	Suggest(q model.Question, answer string) Suggestion
}

// Suggester routes questions to the strategy for their type. Unknown types
// fall through to manual review.
type Suggester struct {
	strategies map[string]Strategy
}

type SuggesterOption func(*Suggester)

// WithStrategy overrides or adds the strategy for a question type.
func WithStrategy(questionType string, s Strategy) SuggesterOption {
	return func(g *Suggester) { g.strategies[questionType] = s }
}

func NewSuggester(opts ...SuggesterOption) *Suggester {
	g := &Suggester{strategies: map[string]Strategy{
		model.QuestionMCQ:         choiceStrategy{},
		model.QuestionTrueFalse:   trueFalseStrategy{},
		model.QuestionShortAnswer: shortAnswerStrategy{maxEdit: 1},
		model.QuestionEssay:       essayStrategy{},
	}}
	for _, o := range opts {
		o(g)
	}
	return g
}

func (g *Suggester) Suggest(q model.Question, answer string) Suggestion {
	s, ok := g.strategies[q.Type]
	if !ok {
		return Suggestion{MaxPoints: q.Points, NeedsManual: true, Note: "no automatic scoring for this type"}
	}
	return s.Suggest(q, answer)
}

// choiceStrategy scores multiple choice: the answer is the selected option
// index or the option text itself.
type choiceStrategy struct{}

func (choiceStrategy) Suggest(q model.Question, answer string) Suggestion {
	res := Suggestion{MaxPoints: q.Points}
	if q.CorrectIndex == nil {
		res.NeedsManual = true
		res.Note = "question has no answer key"
		return res
	}
	idx := *q.CorrectIndex
	if idx < 0 || idx >= len(q.Options) {
		res.NeedsManual = true
		res.Note = "answer key out of range"
		return res
	}
	if answer == q.Options[idx] || answer == strconv.Itoa(idx) {
		res.Points = q.Points
	}
	return res
}

type trueFalseStrategy struct{}

func (trueFalseStrategy) Suggest(q model.Question, answer string) Suggestion {
	res := Suggestion{MaxPoints: q.Points}
	if q.CorrectAnswer == "" {
		res.NeedsManual = true
		res.Note = "question has no answer key"
		return res
	}
	if strings.EqualFold(strings.TrimSpace(answer), q.CorrectAnswer) {
		res.Points = q.Points
	}
	return res
}

// shortAnswerStrategy awards full points on a normalized exact match and
// half points within maxEdit edits of the key.
type shortAnswerStrategy struct{ maxEdit int }

func (s shortAnswerStrategy) Suggest(q model.Question, answer string) Suggestion {
	res := Suggestion{MaxPoints: q.Points}
	if q.CorrectAnswer == "" {
		res.NeedsManual = true
		res.Note = "question has no answer key"
		return res
	}
	key := normalize(q.CorrectAnswer)
	got := normalize(answer)
	if got == key {
		res.Points = q.Points
		return res
	}
	if s.maxEdit > 0 && editDistance(key, got) <= s.maxEdit {
		res.Points = q.Points / 2
		res.Note = "close match, review suggested"
		res.NeedsManual = true
	}
	return res
}

type essayStrategy struct{}

func (essayStrategy) Suggest(q model.Question, _ string) Suggestion {
	return Suggestion{MaxPoints: q.Points, NeedsManual: true, Note: "manual grading required"}
}

// normalize casefolds, strips punctuation and collapses whitespace.
func normalize(s string) string {
	out := make([]rune, 0, len(s))
	space := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			space = true
		case unicode.IsPunct(r):
		default:
			if space && len(out) > 0 {
				out = append(out, ' ')
			}
			space = false
			out = append(out, unicode.ToLower(r))
		}
	}
	return string(out)
}

// editDistance is Levenshtein with unit costs.
func editDistance(a, b string) int {
	ar, br := []rune(a), []rune(b)
	n, m := len(ar), len(br)
	if n == 0 {
		return m
	}
	if m == 0 {
		return n
	}
	dp := make([]int, m+1)
	for j := 0; j <= m; j++ {
		dp[j] = j
	}
	for i := 1; i <= n; i++ {
		prev := dp[0]
		dp[0] = i
		for j := 1; j <= m; j++ {
			tmp := dp[j]
			cost := 0
			if ar[i-1] != br[j-1] {
				cost = 1
			}
			dp[j] = min3(dp[j]+1, dp[j-1]+1, prev+cost)
			prev = tmp
		}
	}
	return dp[m]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
