// Package model holds the domain entities shared across the dashboard:
// courses, students, grade columns, assignments, exams and the grading
// artifacts attached to them. All types mirror the backend's JSON shapes.
package model

import "time"

// Course is a teaching unit. Enrollments maps an academic year label to the
// student IDs enrolled for that year.
type Course struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Code        string              `json:"code"`
	Description string              `json:"description,omitempty"`
	Enrollments map[string][]string `json:"enrollments,omitempty"`
}

// Student is an enrolled learner plus their per-column grades for the
// currently selected course. Grades maps grade-column ID to a score in
// [0,100]; a missing key means "not yet graded" and is distinct from zero.
type Student struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Email      string              `json:"email"`
	Grades     map[string]*float64 `json:"grades"`
	FinalGrade float64             `json:"finalGrade"`
}

// Grade returns the student's score for a column and whether one is present.
func (s *Student) Grade(columnID string) (float64, bool) {
	v, ok := s.Grades[columnID]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// GradeColumn is one weighted category in the course gradebook.
// SourceAssignmentID links a column to the assignment that spawned it; it is
// empty for columns created by hand or predating the link.
type GradeColumn struct {
	ID                 string  `json:"id"`
	CourseID           string  `json:"courseId"`
	Name               string  `json:"name"`
	Type               string  `json:"type"`
	Percentage         float64 `json:"percentage"`
	MaxPoints          float64 `json:"maxPoints"`
	SourceAssignmentID string  `json:"sourceAssignmentId,omitempty"`
}

// Assignment is a task students submit work for. At most one file is
// attached; FileID is empty when there is none.
type Assignment struct {
	ID              string    `json:"id"`
	CourseID        string    `json:"courseId"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	Type            string    `json:"type"`
	DueDate         string    `json:"dueDate"`
	DueTime         string    `json:"dueTime,omitempty"`
	MaxPoints       float64   `json:"maxPoints"`
	FileID          string    `json:"fileId,omitempty"`
	FileName        string    `json:"fileName,omitempty"`
	SubmissionCount int       `json:"submissionCount"`
	GradedCount     int       `json:"gradedCount"`
	CreatedAt       time.Time `json:"createdAt,omitempty"`
}

// Submission is a student's uploaded work for an assignment. Grade is nil
// until the submission has been graded.
type Submission struct {
	ID           string           `json:"id"`
	AssignmentID string           `json:"assignmentId"`
	CourseID     string           `json:"courseId"`
	StudentID    string           `json:"studentId"`
	StudentName  string           `json:"studentName,omitempty"`
	SubmittedAt  time.Time        `json:"submittedAt"`
	Status       string           `json:"status"`
	Grade        *float64         `json:"grade,omitempty"`
	Feedback     string           `json:"feedback,omitempty"`
	Files        []SubmissionFile `json:"files,omitempty"`
}

// SubmissionFile is one uploaded artifact within a submission.
type SubmissionFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Exam is a timed assessment with an availability window.
type Exam struct {
	ID             string     `json:"id"`
	CourseID       string     `json:"courseId"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	DurationMins   int        `json:"durationMinutes"`
	AvailableFrom  time.Time  `json:"availableFrom"`
	AvailableUntil time.Time  `json:"availableUntil"`
	MaxAttempts    int        `json:"maxAttempts"`
	PassPercentage float64    `json:"passPercentage"`
	Published      bool       `json:"published"`
	Questions      []Question `json:"questions,omitempty"`
}

// TotalPoints is the sum of all question point values.
func (e Exam) TotalPoints() float64 {
	var total float64
	for _, q := range e.Questions {
		total += q.Points
	}
	return total
}

// Question types understood by the grading pipeline.
const (
	QuestionMCQ         = "multiple-choice"
	QuestionTrueFalse   = "true-false"
	QuestionShortAnswer = "short-answer"
	QuestionEssay       = "essay"
)

// Question is one item on an exam. CorrectIndex applies to multiple-choice,
// CorrectAnswer to true/false and short-answer; essays have neither.
type Question struct {
	ID            string   `json:"id"`
	ExamID        string   `json:"examId"`
	Type          string   `json:"type"`
	Text          string   `json:"text"`
	Options       []string `json:"options,omitempty"`
	CorrectIndex  *int     `json:"correctIndex,omitempty"`
	CorrectAnswer string   `json:"correctAnswer,omitempty"`
	Points        float64  `json:"points"`
	Explanation   string   `json:"explanation,omitempty"`
	Required      bool     `json:"required"`
	TimeLimitSecs int      `json:"timeLimitSeconds,omitempty"`
	Position      int      `json:"position"`
}

// ExamResponse is one student attempt at an exam. QuestionScores maps
// question ID to the points awarded; TotalScore/MaxScore/Percentage are the
// stored aggregates.
type ExamResponse struct {
	ID               string             `json:"id"`
	ExamID           string             `json:"examId"`
	ExamTitle        string             `json:"examTitle,omitempty"`
	CourseID         string             `json:"courseId,omitempty"`
	StudentID        string             `json:"studentId"`
	StudentName      string             `json:"studentName,omitempty"`
	StudentEmail     string             `json:"studentEmail,omitempty"`
	Attempt          int                `json:"attempt"`
	SubmittedAt      time.Time          `json:"submittedAt"`
	TimeSpentSecs    int                `json:"timeSpentSeconds"`
	Status           string             `json:"status"`
	Answers          map[string]string  `json:"answers,omitempty"`
	QuestionScores   map[string]float64 `json:"questionScores,omitempty"`
	TotalScore       float64            `json:"totalScore"`
	MaxScore         float64            `json:"maxScore"`
	Percentage       float64            `json:"percentage"`
	Passed           bool               `json:"passed"`
	Graded           bool               `json:"graded"`
	AutoGraded       bool               `json:"autoGraded"`
	FlaggedForReview bool               `json:"flaggedForReview"`
	Feedback         string             `json:"feedback,omitempty"`
}

// FileInfo describes a stored assignment file.
type FileInfo struct {
	ID           string    `json:"id"`
	AssignmentID string    `json:"assignmentId"`
	CourseID     string    `json:"courseId"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"contentType"`
	Description  string    `json:"description,omitempty"`
	UploadedAt   time.Time `json:"uploadedAt"`
}
