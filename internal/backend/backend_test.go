package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusgrid/lectern/internal/model"
	"github.com/campusgrid/lectern/internal/rest"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	api := rest.New(srv.URL, rest.StaticToken("t"), 5*time.Second, zerolog.Nop())
	return New(api, zerolog.Nop())
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestStudentsForCourseMergesGrades(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/courses/c1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, model.Course{
			ID: "c1", Title: "Databases",
			Enrollments: map[string][]string{
				"2025": {"s1", "s2"},
				"2026": {"s2", "s3"}, // s2 enrolled twice, must appear once
			},
		})
	})
	mux.HandleFunc("/users/by-ids", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			IDs []string `json:"ids"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if len(body.IDs) != 3 {
			t.Errorf("requested ids = %v, want 3 unique", body.IDs)
		}
		writeJSON(t, w, []map[string]string{
			{"id": "s1", "firstName": "Ada", "lastName": "Byron", "email": "ada@uni.edu"},
			{"id": "s2", "name": "Grace Hopper", "email": "grace@uni.edu"},
			{"id": "s3", "email": "anon@uni.edu"},
		})
	})
	mux.HandleFunc("/courses/c1/grades", func(w http.ResponseWriter, r *http.Request) {
		g := 85.5
		writeJSON(t, w, []map[string]any{
			{"studentId": "s1", "grades": map[string]*float64{"col1": &g}, "finalGrade": 8.55},
		})
	})

	c := newTestClient(t, mux)
	students, err := c.StudentsForCourse(context.Background(), "c1")
	if err != nil {
		t.Fatalf("StudentsForCourse: %v", err)
	}
	if len(students) != 3 {
		t.Fatalf("got %d students, want 3", len(students))
	}
	byID := map[string]model.Student{}
	for _, s := range students {
		byID[s.ID] = s
	}
	if byID["s1"].Name != "Ada Byron" {
		t.Errorf("s1 name = %q", byID["s1"].Name)
	}
	if byID["s3"].Name != "anon@uni.edu" {
		t.Errorf("s3 fallback name = %q", byID["s3"].Name)
	}
	s1 := byID["s1"]
	if g, ok := s1.Grade("col1"); !ok || g != 85.5 {
		t.Errorf("s1 col1 grade = %v, %v", g, ok)
	}
	if byID["s1"].FinalGrade != 8.55 {
		t.Errorf("s1 final = %v", byID["s1"].FinalGrade)
	}
	// Students with no grade row get an empty, non-nil map.
	if byID["s2"].Grades == nil {
		t.Error("s2 grades map is nil")
	}
}

func TestStudentsForCourseNoGradebookYet(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/courses/c1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, model.Course{ID: "c1", Enrollments: map[string][]string{"2026": {"s1"}}})
	})
	mux.HandleFunc("/users/by-ids", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []map[string]string{{"id": "s1", "name": "Ada", "email": "a@b.c"}})
	})
	mux.HandleFunc("/courses/c1/grades", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no gradebook", http.StatusNotFound)
	})

	c := newTestClient(t, mux)
	students, err := c.StudentsForCourse(context.Background(), "c1")
	if err != nil {
		t.Fatalf("StudentsForCourse: %v", err)
	}
	if len(students) != 1 || len(students[0].Grades) != 0 {
		t.Errorf("students = %+v", students)
	}
}

func TestResponsesForCourseFanOut(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	mux := http.NewServeMux()
	mux.HandleFunc("/exams/e1/responses", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []model.ExamResponse{
			{ID: "r1", ExamID: "e1", SubmittedAt: now.Add(-time.Hour)},
		})
	})
	mux.HandleFunc("/exams/e2/responses", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/exams/e3/responses", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []model.ExamResponse{
			{ID: "r2", ExamID: "e3", SubmittedAt: now},
		})
	})

	c := newTestClient(t, mux)
	exams := []model.Exam{
		{ID: "e1", Title: "Midterm"},
		{ID: "e2", Title: "Broken"},
		{ID: "e3", Title: "Final"},
	}
	got := c.ResponsesForCourse(context.Background(), "c1", exams)
	if len(got) != 2 {
		t.Fatalf("got %d responses, want 2 (failing exam skipped)", len(got))
	}
	// Newest first.
	if got[0].ID != "r2" || got[1].ID != "r1" {
		t.Errorf("order = %s, %s", got[0].ID, got[1].ID)
	}
	if got[0].CourseID != "c1" || got[0].ExamTitle != "Final" {
		t.Errorf("stamping: courseId=%q examTitle=%q", got[0].CourseID, got[0].ExamTitle)
	}
}

func TestValidateUpload(t *testing.T) {
	if err := ValidateUpload("notes.pdf", 1024); err != nil {
		t.Errorf("pdf rejected: %v", err)
	}
	if err := ValidateUpload("huge.pdf", MaxUploadBytes+1); err == nil {
		t.Error("oversized file accepted")
	}
	if err := ValidateUpload("malware.exe", 10); err == nil {
		t.Error(".exe accepted")
	}
}

func TestGradeResponsePayload(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/exam-responses/grade", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s", r.Method)
		}
		var g ResponseGrade
		json.NewDecoder(r.Body).Decode(&g)
		if g.ResponseID != "r1" || g.QuestionScores["q1"] != 4 || g.Percentage != 80 {
			t.Errorf("payload = %+v", g)
		}
		writeJSON(t, w, model.ExamResponse{ID: "r1", Graded: true, TotalScore: g.TotalScore})
	})
	c := newTestClient(t, mux)
	out, err := c.GradeResponse(context.Background(), ResponseGrade{
		ResponseID:     "r1",
		QuestionScores: map[string]float64{"q1": 4},
		TotalScore:     4, MaxScore: 5, Percentage: 80,
	})
	if err != nil {
		t.Fatalf("GradeResponse: %v", err)
	}
	if !out.Graded {
		t.Error("response not marked graded")
	}
}
