package gradebook

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/campusgrid/lectern/internal/model"
)

// Backend is the slice of the campus API the syncer needs.
type Backend interface {
	CreateColumn(ctx context.Context, col model.GradeColumn) (*model.GradeColumn, error)
	UpdateColumn(ctx context.Context, col model.GradeColumn) (*model.GradeColumn, error)
	DeleteColumn(ctx context.Context, id string) error
	SetGrade(ctx context.Context, studentID, columnID string, grade *float64) error
}

// Syncer keeps grade columns consistent with assignment lifecycle events and
// applies grade edits optimistically against local state.
type Syncer struct {
	Backend Backend
	Log     zerolog.Logger
}

func NewSyncer(b Backend, log zerolog.Logger) *Syncer {
	return &Syncer{Backend: b, Log: log}
}

// EnsureColumn guarantees an assignment has a grade column. If one already
// matches it is returned unchanged; otherwise a column is created with the
// type-derived weight and appended to cols. Creation failure is swallowed:
// the assignment itself must not fail because of gradebook bookkeeping, so
// the error is logged and cols come back untouched.
func (s *Syncer) EnsureColumn(ctx context.Context, cols []model.GradeColumn, a model.Assignment) []model.GradeColumn {
	if existing := MatchColumn(cols, a); existing != nil {
		return cols
	}
	col := model.GradeColumn{
		CourseID:           a.CourseID,
		Name:               a.Title,
		Type:               a.Type,
		Percentage:         SuggestedPercentage(a.Type, cols),
		MaxPoints:          a.MaxPoints,
		SourceAssignmentID: a.ID,
	}
	created, err := s.Backend.CreateColumn(ctx, col)
	if err != nil {
		s.Log.Warn().Str("assignment", a.ID).Err(err).Msg("grade column auto-create failed")
		return cols
	}
	return append(cols, *created)
}

// SyncRename propagates an assignment update to its column: name, type and
// max points follow the assignment. Recorded grades are keyed by column ID
// and are untouched. No-op when no column matches.
func (s *Syncer) SyncRename(ctx context.Context, cols []model.GradeColumn, a model.Assignment) ([]model.GradeColumn, error) {
	col := MatchColumn(cols, a)
	if col == nil {
		return cols, nil
	}
	updated := *col
	updated.Name = a.Title
	updated.Type = a.Type
	updated.MaxPoints = a.MaxPoints
	got, err := s.Backend.UpdateColumn(ctx, updated)
	if err != nil {
		return cols, fmt.Errorf("sync column for assignment %s: %w", a.ID, err)
	}
	*col = *got
	return cols, nil
}

// StripColumn drops a column locally: the column itself, its key in every
// student's grade map, and recomputed finals. Pure local mutation so callers
// can hold their own lock; the backend delete happens separately. Idempotent:
// an absent colID changes nothing.
func StripColumn(cols []model.GradeColumn, students []model.Student, colID string) []model.GradeColumn {
	out := cols[:0]
	for _, c := range cols {
		if c.ID != colID {
			out = append(out, c)
		}
	}
	for i := range students {
		delete(students[i].Grades, colID)
		students[i].FinalGrade = FinalGrade(&students[i], out)
	}
	return out
}

// GradeEdit is one applied cell edit with enough recorded to undo it.
type GradeEdit struct {
	StudentID string
	ColumnID  string
	// Grade is the parsed new value, nil for a cleared cell.
	Grade *float64

	prev      *float64
	had       bool
	prevFinal float64
}

// ApplyGradeEdit mutates the cell and the student's final grade locally and
// returns the undo record. The caller sends Grade to the backend afterwards
// and calls Rollback if that write fails. raw follows ParseGradeInput rules;
// rejected input leaves the state untouched.
func ApplyGradeEdit(students []model.Student, cols []model.GradeColumn, studentID, columnID, raw string) (*GradeEdit, error) {
	grade, err := ParseGradeInput(raw)
	if err != nil {
		return nil, err
	}
	var student *model.Student
	for i := range students {
		if students[i].ID == studentID {
			student = &students[i]
			break
		}
	}
	if student == nil {
		return nil, fmt.Errorf("unknown student %s", studentID)
	}

	edit := &GradeEdit{StudentID: studentID, ColumnID: columnID, Grade: grade, prevFinal: student.FinalGrade}
	edit.prev, edit.had = student.Grades[columnID]

	if grade == nil {
		delete(student.Grades, columnID)
	} else {
		if student.Grades == nil {
			student.Grades = map[string]*float64{}
		}
		student.Grades[columnID] = grade
	}
	student.FinalGrade = FinalGrade(student, cols)
	return edit, nil
}

// Rollback restores the exact prior cell value and final grade.
func (e *GradeEdit) Rollback(students []model.Student) {
	for i := range students {
		if students[i].ID != e.StudentID {
			continue
		}
		if e.had {
			students[i].Grades[e.ColumnID] = e.prev
		} else {
			delete(students[i].Grades, e.ColumnID)
		}
		students[i].FinalGrade = e.prevFinal
		return
	}
}
