package dashboard

import (
	"time"

	"github.com/campusgrid/lectern/internal/model"
)

// Tab names as they appear in the UI.
const (
	TabGrades      = "grades"
	TabAssignments = "assignments"
	TabExams       = "exams"
	TabSubmissions = "submissions"
	TabResponses   = "responses"
)

// State is everything the views render. It is owned by a Controller and
// mutated only through its command methods; Snapshot hands out copies.
type State struct {
	Courses          []model.Course
	SelectedCourseID string
	ActiveTab        string

	Students    []model.Student
	Assignments []model.Assignment
	Submissions []model.Submission
	Exams       []model.Exam
	Responses   []model.ExamResponse
	Columns     []model.GradeColumn

	Loading bool
	// Offline means every course fetch failed and the data shown came from
	// the local snapshot cache.
	Offline  bool
	CachedAt time.Time

	Error   string
	Success string
}

// SelectedCourse returns the course the dashboard is focused on, or nil.
func (s *State) SelectedCourse() *model.Course {
	for i := range s.Courses {
		if s.Courses[i].ID == s.SelectedCourseID {
			return &s.Courses[i]
		}
	}
	return nil
}

// clone deep-copies the mutable collections so views can render without
// holding the controller lock.
func (s *State) clone() State {
	out := *s
	out.Courses = append([]model.Course(nil), s.Courses...)
	out.Assignments = append([]model.Assignment(nil), s.Assignments...)
	out.Submissions = append([]model.Submission(nil), s.Submissions...)
	out.Exams = make([]model.Exam, len(s.Exams))
	for i, e := range s.Exams {
		e.Questions = append([]model.Question(nil), e.Questions...)
		for j := range e.Questions {
			e.Questions[j].Options = append([]string(nil), e.Questions[j].Options...)
		}
		out.Exams[i] = e
	}
	out.Responses = append([]model.ExamResponse(nil), s.Responses...)
	out.Columns = append([]model.GradeColumn(nil), s.Columns...)
	out.Students = make([]model.Student, len(s.Students))
	for i, st := range s.Students {
		cp := st
		cp.Grades = make(map[string]*float64, len(st.Grades))
		for k, v := range st.Grades {
			cp.Grades[k] = v
		}
		out.Students[i] = cp
	}
	return out
}

// resetCourseScope clears everything tied to the previously selected course.
func (s *State) resetCourseScope() {
	s.Students = nil
	s.Assignments = nil
	s.Submissions = nil
	s.Exams = nil
	s.Responses = nil
	s.Columns = nil
	s.Offline = false
	s.CachedAt = time.Time{}
	s.Error = ""
}
