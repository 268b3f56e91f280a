package grading

import (
	"strings"
	"testing"

	"github.com/campusgrid/lectern/internal/model"
)

func TestStatusPrecedence(t *testing.T) {
	cases := []struct {
		name string
		r    model.ExamResponse
		want string
	}{
		{"flagged wins over everything", model.ExamResponse{FlaggedForReview: true, Graded: true, AutoGraded: true, Status: "submitted"}, StatusFlagged},
		{"in-progress before grading states", model.ExamResponse{Status: "in-progress", AutoGraded: true}, StatusInProgress},
		{"auto-graded before manual", model.ExamResponse{AutoGraded: true, Graded: true, Status: "submitted"}, StatusAutoGraded},
		{"manually graded", model.ExamResponse{Graded: true, Status: "submitted"}, StatusManuallyGraded},
		{"auto-graded but not finalized still needs grading", model.ExamResponse{AutoGraded: true, Status: "submitted"}, StatusNeedsGrading},
		{"submitted needs grading", model.ExamResponse{Status: "submitted"}, StatusNeedsGrading},
		{"backend graded status", model.ExamResponse{Status: "graded"}, StatusGraded},
		{"backend reviewed status", model.ExamResponse{Status: "reviewed"}, StatusReviewed},
		{"empty is unknown", model.ExamResponse{}, StatusUnknown},
	}
	for _, tc := range cases {
		if got := Status(&tc.r); got != tc.want {
			t.Errorf("%s: Status = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func intPtr(n int) *int { return &n }

func examQuestions() []model.Question {
	return []model.Question{
		{ID: "q1", Type: model.QuestionMCQ, Text: "Pick one", Options: []string{"a", "b"}, CorrectIndex: intPtr(1), Points: 4},
		{ID: "q2", Type: model.QuestionTrueFalse, Text: "Yes?", CorrectAnswer: "true", Points: 2},
		{ID: "q3", Type: model.QuestionEssay, Text: "Discuss", Points: 10},
	}
}

func TestSheetTotals(t *testing.T) {
	r := model.ExamResponse{ID: "r1", QuestionScores: map[string]float64{"q1": 4}}
	s := NewSheet(r, examQuestions())

	total, max, pct := s.Totals()
	if total != 4 || max != 16 || pct != 25 {
		t.Errorf("seeded totals = %v/%v %v%%", total, max, pct)
	}

	if err := s.SetScore("q3", 7); err != nil {
		t.Fatalf("SetScore: %v", err)
	}
	total, max, pct = s.Totals()
	// 11/16 = 68.75
	if total != 11 || max != 16 || pct != 68.75 {
		t.Errorf("totals = %v/%v %v%%", total, max, pct)
	}
}

func TestSheetRejectsOutOfRangeScore(t *testing.T) {
	s := NewSheet(model.ExamResponse{ID: "r1"}, examQuestions())
	if err := s.SetScore("q2", 3); err == nil {
		t.Error("score above question points accepted")
	}
	if err := s.SetScore("q2", -1); err == nil {
		t.Error("negative score accepted")
	}
	if err := s.SetScore("nope", 1); err == nil {
		t.Error("unknown question accepted")
	}
}

func TestSheetPayloadAggregates(t *testing.T) {
	r := model.ExamResponse{ID: "r1", FlaggedForReview: true}
	s := NewSheet(r, examQuestions())
	s.SetScore("q1", 4)
	s.SetScore("q2", 2)
	s.SetScore("q3", 5)
	s.SetFeedback("solid work")
	s.SetFlagged(false)

	p := s.Payload()
	if p.ResponseID != "r1" {
		t.Errorf("ResponseID = %q", p.ResponseID)
	}
	if p.TotalScore != 11 || p.MaxScore != 16 || p.Percentage != 68.75 {
		t.Errorf("aggregate = %v/%v %v%%", p.TotalScore, p.MaxScore, p.Percentage)
	}
	if p.Feedback != "solid work" || p.Flagged {
		t.Errorf("feedback=%q flagged=%v", p.Feedback, p.Flagged)
	}
	if len(p.QuestionScores) != 3 {
		t.Errorf("scores = %v", p.QuestionScores)
	}
}

func TestSheetSuggestMissing(t *testing.T) {
	r := model.ExamResponse{
		ID:      "r1",
		Answers: map[string]string{"q1": "b", "q2": "false", "q3": "long essay text"},
	}
	s := NewSheet(r, examQuestions())
	filled := s.SuggestMissing(NewSuggester())
	if filled != 2 {
		t.Fatalf("filled = %d, want 2 (essay stays manual)", filled)
	}
	if v, _ := s.Score("q1"); v != 4 {
		t.Errorf("q1 suggestion = %v, want 4", v)
	}
	if v, _ := s.Score("q2"); v != 0 {
		t.Errorf("q2 suggestion = %v, want 0 (wrong answer)", v)
	}
	if _, ok := s.Score("q3"); ok {
		t.Error("essay received a suggested score")
	}
}

func TestSuggesterShortAnswer(t *testing.T) {
	q := model.Question{Type: model.QuestionShortAnswer, CorrectAnswer: "Dijkstra", Points: 5}
	g := NewSuggester()

	if got := g.Suggest(q, "dijkstra"); got.Points != 5 {
		t.Errorf("normalized exact match = %+v", got)
	}
	near := g.Suggest(q, "Dijkstr")
	if near.Points != 2.5 || !near.NeedsManual {
		t.Errorf("fuzzy match = %+v", near)
	}
	if got := g.Suggest(q, "Bellman-Ford"); got.Points != 0 {
		t.Errorf("wrong answer = %+v", got)
	}
}

func TestValidateQuestion(t *testing.T) {
	cases := []struct {
		name    string
		q       model.Question
		wantErr string
	}{
		{"empty text", model.Question{Type: model.QuestionEssay, Text: "  "}, "text is required"},
		{"mcq one option", model.Question{Type: model.QuestionMCQ, Text: "x", Options: []string{"a", " "}, CorrectIndex: intPtr(0)}, "two options"},
		{"mcq no key", model.Question{Type: model.QuestionMCQ, Text: "x", Options: []string{"a", "b"}}, "correct option"},
		{"mcq key out of range", model.Question{Type: model.QuestionMCQ, Text: "x", Options: []string{"a", "b"}, CorrectIndex: intPtr(5)}, "out of range"},
		{"true-false no answer", model.Question{Type: model.QuestionTrueFalse, Text: "x"}, "true or false"},
		{"unknown type", model.Question{Type: "matching", Text: "x"}, "unknown question type"},
		{"valid essay", model.Question{Type: model.QuestionEssay, Text: "Discuss", Points: 10}, ""},
		{"valid mcq", model.Question{Type: model.QuestionMCQ, Text: "x", Options: []string{"a", "b"}, CorrectIndex: intPtr(1), Points: 2}, ""},
	}
	for _, tc := range cases {
		err := ValidateQuestion(tc.q)
		if tc.wantErr == "" {
			if err != nil {
				t.Errorf("%s: unexpected error %v", tc.name, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
			t.Errorf("%s: err = %v, want substring %q", tc.name, err, tc.wantErr)
		}
	}
}
