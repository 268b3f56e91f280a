package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"

	"github.com/campusgrid/lectern/internal/backend"
	"github.com/campusgrid/lectern/internal/gradebook"
	"github.com/campusgrid/lectern/internal/grading"
	"github.com/campusgrid/lectern/internal/model"
)

var validate = validator.New()

// AssignmentForm is what the create/edit assignment page posts. The file, if
// any, is buffered by the caller and uploaded only after the assignment
// itself is created.
type AssignmentForm struct {
	ID          string
	Title       string `validate:"required"`
	Description string
	Type        string  `validate:"required"`
	DueDate     string  `validate:"required"`
	DueTime     string  `validate:"required"`
	MaxPoints   float64 `validate:"gte=0"`
}

func (f AssignmentForm) validateForm() error {
	if err := validate.Struct(f); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) && len(errs) > 0 {
			return fmt.Errorf("%s is required", formFieldLabel(errs[0].Field()))
		}
		return err
	}
	return nil
}

func formFieldLabel(field string) string {
	switch field {
	case "Title":
		return "title"
	case "Type":
		return "assignment type"
	case "DueDate":
		return "due date"
	case "DueTime":
		return "due time"
	case "MaxPoints":
		return "max points"
	default:
		return field
	}
}

// CreateAssignment creates the assignment, then guarantees a matching grade
// column exists. The column step is best-effort: its failure never undoes
// the assignment.
func (c *Controller) CreateAssignment(ctx context.Context, f AssignmentForm) (*model.Assignment, error) {
	if err := f.validateForm(); err != nil {
		c.setError(err.Error())
		return nil, err
	}
	c.mu.Lock()
	courseID := c.state.SelectedCourseID
	c.mu.Unlock()

	created, err := c.api.CreateTask(ctx, model.Assignment{
		CourseID:    courseID,
		Title:       f.Title,
		Description: f.Description,
		Type:        f.Type,
		DueDate:     f.DueDate,
		DueTime:     f.DueTime,
		MaxPoints:   f.MaxPoints,
	})
	if err != nil {
		c.setError(userMessage(err))
		return nil, err
	}

	c.mu.Lock()
	c.state.Assignments = append(c.state.Assignments, *created)
	cols := append([]model.GradeColumn(nil), c.state.Columns...)
	c.mu.Unlock()

	// The column call runs outside the lock; it is a network round trip.
	cols = c.syncer.EnsureColumn(ctx, cols, *created)
	c.mu.Lock()
	c.state.Columns = cols
	c.mu.Unlock()
	c.setSuccess(fmt.Sprintf("Assignment %q created.", created.Title))
	return created, nil
}

// UpdateAssignment saves edits and keeps the linked grade column's name,
// type and max points in step. Recorded grades are untouched.
func (c *Controller) UpdateAssignment(ctx context.Context, f AssignmentForm) error {
	if err := f.validateForm(); err != nil {
		c.setError(err.Error())
		return err
	}
	c.mu.Lock()
	courseID := c.state.SelectedCourseID
	c.mu.Unlock()

	updated, err := c.api.UpdateTask(ctx, model.Assignment{
		ID:          f.ID,
		CourseID:    courseID,
		Title:       f.Title,
		Description: f.Description,
		Type:        f.Type,
		DueDate:     f.DueDate,
		DueTime:     f.DueTime,
		MaxPoints:   f.MaxPoints,
	})
	if err != nil {
		c.setError(userMessage(err))
		return err
	}

	c.mu.Lock()
	for i := range c.state.Assignments {
		if c.state.Assignments[i].ID == updated.ID {
			c.state.Assignments[i] = *updated
			break
		}
	}
	cols := append([]model.GradeColumn(nil), c.state.Columns...)
	c.mu.Unlock()

	cols, syncErr := c.syncer.SyncRename(ctx, cols, *updated)
	c.mu.Lock()
	c.state.Columns = cols
	c.mu.Unlock()
	if syncErr != nil {
		c.setError("Assignment saved, but its grade column could not be updated.")
		return nil
	}
	c.setSuccess(fmt.Sprintf("Assignment %q updated.", updated.Title))
	return nil
}

// DeleteAssignment removes the assignment, its grade column and every grade
// recorded under that column.
func (c *Controller) DeleteAssignment(ctx context.Context, id string) error {
	c.mu.Lock()
	var target *model.Assignment
	for i := range c.state.Assignments {
		if c.state.Assignments[i].ID == id {
			a := c.state.Assignments[i]
			target = &a
			break
		}
	}
	c.mu.Unlock()
	if target == nil {
		return fmt.Errorf("unknown assignment %s", id)
	}

	if err := c.api.DeleteTask(ctx, id); err != nil {
		c.setError(userMessage(err))
		return err
	}

	c.mu.Lock()
	kept := c.state.Assignments[:0]
	for _, a := range c.state.Assignments {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	c.state.Assignments = kept
	var colID string
	if col := gradebook.MatchColumn(c.state.Columns, *target); col != nil {
		colID = col.ID
	}
	c.mu.Unlock()

	if colID != "" {
		if err := c.api.DeleteColumn(ctx, colID); err != nil {
			c.setError("Assignment deleted, but its grade column could not be removed.")
			return nil
		}
		c.mu.Lock()
		c.state.Columns = gradebook.StripColumn(c.state.Columns, c.state.Students, colID)
		c.mu.Unlock()
	}
	c.setSuccess(fmt.Sprintf("Assignment %q deleted.", target.Title))
	return nil
}

// UploadAssignmentFile attaches a file to an existing assignment.
func (c *Controller) UploadAssignmentFile(ctx context.Context, assignmentID, description, name string, size int64, r io.Reader) error {
	c.mu.Lock()
	courseID := c.state.SelectedCourseID
	c.mu.Unlock()

	info, err := c.api.UploadAssignmentFile(ctx, assignmentID, courseID, description, name, size, r)
	if err != nil {
		c.setError(userMessage(err))
		return err
	}
	c.mu.Lock()
	for i := range c.state.Assignments {
		if c.state.Assignments[i].ID == assignmentID {
			c.state.Assignments[i].FileID = info.ID
			c.state.Assignments[i].FileName = info.Name
			break
		}
	}
	c.mu.Unlock()
	c.setSuccess(fmt.Sprintf("File %q uploaded.", info.Name))
	return nil
}

// UpdateGrade edits one gradebook cell optimistically: the local value
// changes under the lock, the backend write follows outside it, and on
// failure the recorded prior value is restored and the error surfaced.
func (c *Controller) UpdateGrade(ctx context.Context, studentID, columnID, raw string) error {
	c.mu.Lock()
	edit, err := gradebook.ApplyGradeEdit(c.state.Students, c.state.Columns, studentID, columnID, raw)
	c.mu.Unlock()
	if err != nil {
		c.setError(userMessage(err))
		return err
	}

	if err := c.api.SetGrade(ctx, studentID, columnID, edit.Grade); err != nil {
		c.mu.Lock()
		edit.Rollback(c.state.Students)
		c.mu.Unlock()
		c.setError(userMessage(err))
		return err
	}
	return nil
}

// AddColumn creates a manual grade column after checking the 100% budget.
func (c *Controller) AddColumn(ctx context.Context, col model.GradeColumn) error {
	c.mu.Lock()
	col.CourseID = c.state.SelectedCourseID
	budgetErr := gradebook.ValidateNewColumn(c.state.Columns, col.Percentage)
	c.mu.Unlock()
	if budgetErr != nil {
		c.setError(budgetErr.Error())
		return budgetErr
	}

	created, err := c.api.CreateColumn(ctx, col)
	if err != nil {
		c.setError(userMessage(err))
		return err
	}
	c.mu.Lock()
	c.state.Columns = append(c.state.Columns, *created)
	c.mu.Unlock()
	c.setSuccess(fmt.Sprintf("Grade column %q added.", created.Name))
	return nil
}

// UpdateColumn saves column edits.
func (c *Controller) UpdateColumn(ctx context.Context, col model.GradeColumn) error {
	updated, err := c.api.UpdateColumn(ctx, col)
	if err != nil {
		c.setError(userMessage(err))
		return err
	}
	c.mu.Lock()
	for i := range c.state.Columns {
		if c.state.Columns[i].ID == updated.ID {
			c.state.Columns[i] = *updated
			break
		}
	}
	for i := range c.state.Students {
		c.state.Students[i].FinalGrade = gradebook.FinalGrade(&c.state.Students[i], c.state.Columns)
	}
	c.mu.Unlock()
	c.setSuccess(fmt.Sprintf("Grade column %q updated.", updated.Name))
	return nil
}

// DeleteColumn removes a column and strips its grades from every student.
func (c *Controller) DeleteColumn(ctx context.Context, id string) error {
	if err := c.api.DeleteColumn(ctx, id); err != nil {
		c.setError(userMessage(err))
		return err
	}
	c.mu.Lock()
	c.state.Columns = gradebook.StripColumn(c.state.Columns, c.state.Students, id)
	c.mu.Unlock()
	c.setSuccess("Grade column deleted.")
	return nil
}

// GradeSubmissionCmd saves a grade and feedback for one submission.
func (c *Controller) GradeSubmissionCmd(ctx context.Context, id string, grade float64, feedback string) error {
	if grade < 0 || grade > 100 {
		err := fmt.Errorf("grade must be between 0 and 100")
		c.setError(err.Error())
		return err
	}
	updated, err := c.api.GradeSubmission(ctx, id, grade, feedback)
	if err != nil {
		c.setError(userMessage(err))
		return err
	}
	c.mu.Lock()
	for i := range c.state.Submissions {
		if c.state.Submissions[i].ID == updated.ID {
			c.state.Submissions[i] = *updated
			break
		}
	}
	c.mu.Unlock()
	c.setSuccess("Submission graded.")
	return nil
}

// Exam commands.

func (c *Controller) CreateExam(ctx context.Context, e model.Exam) (*model.Exam, error) {
	c.mu.Lock()
	e.CourseID = c.state.SelectedCourseID
	c.mu.Unlock()
	created, err := c.api.CreateExam(ctx, e)
	if err != nil {
		c.setError(userMessage(err))
		return nil, err
	}
	c.mu.Lock()
	c.state.Exams = append(c.state.Exams, *created)
	c.mu.Unlock()
	c.setSuccess(fmt.Sprintf("Exam %q created.", created.Title))
	return created, nil
}

func (c *Controller) UpdateExam(ctx context.Context, e model.Exam) error {
	updated, err := c.api.UpdateExam(ctx, e)
	if err != nil {
		c.setError(userMessage(err))
		return err
	}
	c.mu.Lock()
	for i := range c.state.Exams {
		if c.state.Exams[i].ID == updated.ID {
			c.state.Exams[i] = *updated
			break
		}
	}
	c.mu.Unlock()
	c.setSuccess(fmt.Sprintf("Exam %q updated.", updated.Title))
	return nil
}

func (c *Controller) DeleteExam(ctx context.Context, id string) error {
	if err := c.api.DeleteExam(ctx, id); err != nil {
		c.setError(userMessage(err))
		return err
	}
	c.mu.Lock()
	kept := c.state.Exams[:0]
	for _, e := range c.state.Exams {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	c.state.Exams = kept
	keptResponses := c.state.Responses[:0]
	for _, r := range c.state.Responses {
		if r.ExamID != id {
			keptResponses = append(keptResponses, r)
		}
	}
	c.state.Responses = keptResponses
	c.mu.Unlock()
	c.setSuccess("Exam deleted.")
	return nil
}

// SetExamPublished publishes or unpublishes an exam.
func (c *Controller) SetExamPublished(ctx context.Context, id string, published bool) error {
	var err error
	if published {
		err = c.api.PublishExam(ctx, id)
	} else {
		err = c.api.UnpublishExam(ctx, id)
	}
	if err != nil {
		c.setError(userMessage(err))
		return err
	}
	c.mu.Lock()
	for i := range c.state.Exams {
		if c.state.Exams[i].ID == id {
			c.state.Exams[i].Published = published
			break
		}
	}
	c.mu.Unlock()
	if published {
		c.setSuccess("Exam published.")
	} else {
		c.setSuccess("Exam unpublished.")
	}
	return nil
}

// Question commands.

func (c *Controller) AddQuestion(ctx context.Context, examID string, q model.Question) error {
	if err := grading.ValidateQuestion(q); err != nil {
		c.setError(err.Error())
		return err
	}
	created, err := c.api.AddQuestion(ctx, examID, q)
	if err != nil {
		c.setError(userMessage(err))
		return err
	}
	c.mu.Lock()
	for i := range c.state.Exams {
		if c.state.Exams[i].ID == examID {
			c.state.Exams[i].Questions = append(c.state.Exams[i].Questions, *created)
			break
		}
	}
	c.mu.Unlock()
	c.setSuccess("Question added.")
	return nil
}

func (c *Controller) UpdateQuestion(ctx context.Context, examID string, q model.Question) error {
	if err := grading.ValidateQuestion(q); err != nil {
		c.setError(err.Error())
		return err
	}
	updated, err := c.api.UpdateQuestion(ctx, examID, q)
	if err != nil {
		c.setError(userMessage(err))
		return err
	}
	c.mu.Lock()
	for i := range c.state.Exams {
		if c.state.Exams[i].ID != examID {
			continue
		}
		for j := range c.state.Exams[i].Questions {
			if c.state.Exams[i].Questions[j].ID == updated.ID {
				c.state.Exams[i].Questions[j] = *updated
				break
			}
		}
	}
	c.mu.Unlock()
	c.setSuccess("Question updated.")
	return nil
}

func (c *Controller) DeleteQuestion(ctx context.Context, examID, questionID string) error {
	if err := c.api.DeleteQuestion(ctx, examID, questionID); err != nil {
		c.setError(userMessage(err))
		return err
	}
	c.mu.Lock()
	for i := range c.state.Exams {
		if c.state.Exams[i].ID != examID {
			continue
		}
		kept := c.state.Exams[i].Questions[:0]
		for _, q := range c.state.Exams[i].Questions {
			if q.ID != questionID {
				kept = append(kept, q)
			}
		}
		c.state.Exams[i].Questions = kept
	}
	c.mu.Unlock()
	c.setSuccess("Question deleted.")
	return nil
}

// ReorderQuestions sends the complete new ordering in one call and reorders
// the local copy to match.
func (c *Controller) ReorderQuestions(ctx context.Context, examID string, orderedIDs []string) error {
	if err := c.api.ReorderQuestions(ctx, examID, orderedIDs); err != nil {
		c.setError(userMessage(err))
		return err
	}
	c.mu.Lock()
	for i := range c.state.Exams {
		if c.state.Exams[i].ID != examID {
			continue
		}
		byID := make(map[string]model.Question, len(c.state.Exams[i].Questions))
		for _, q := range c.state.Exams[i].Questions {
			byID[q.ID] = q
		}
		reordered := make([]model.Question, 0, len(orderedIDs))
		for pos, id := range orderedIDs {
			if q, ok := byID[id]; ok {
				q.Position = pos
				reordered = append(reordered, q)
			}
		}
		c.state.Exams[i].Questions = reordered
	}
	c.mu.Unlock()
	c.setSuccess("Question order saved.")
	return nil
}

// MoveQuestionsToTop moves the selected questions to the front of the exam,
// keeping their relative order, and saves the resulting ordering.
func (c *Controller) MoveQuestionsToTop(ctx context.Context, examID string, questionIDs []string) error {
	selected := make(map[string]bool, len(questionIDs))
	for _, id := range questionIDs {
		selected[id] = true
	}

	c.mu.Lock()
	var ordered []string
	for i := range c.state.Exams {
		if c.state.Exams[i].ID != examID {
			continue
		}
		for _, q := range c.state.Exams[i].Questions {
			if selected[q.ID] {
				ordered = append(ordered, q.ID)
			}
		}
		for _, q := range c.state.Exams[i].Questions {
			if !selected[q.ID] {
				ordered = append(ordered, q.ID)
			}
		}
	}
	c.mu.Unlock()

	if len(ordered) == 0 {
		return nil
	}
	return c.ReorderQuestions(ctx, examID, ordered)
}

// LoadQuestions replaces an exam's local question list with the backend's,
// so the question manager opens on current data.
func (c *Controller) LoadQuestions(ctx context.Context, examID string) error {
	qs, err := c.api.Questions(ctx, examID)
	if err != nil {
		c.setError(userMessage(err))
		return err
	}
	c.mu.Lock()
	for i := range c.state.Exams {
		if c.state.Exams[i].ID == examID {
			c.state.Exams[i].Questions = qs
		}
	}
	c.mu.Unlock()
	return nil
}

// Exam response commands.

func (c *Controller) replaceResponse(updated *model.ExamResponse) {
	c.mu.Lock()
	for i := range c.state.Responses {
		if c.state.Responses[i].ID == updated.ID {
			// Keep the stamped course/exam context the list view relies on.
			if updated.CourseID == "" {
				updated.CourseID = c.state.Responses[i].CourseID
			}
			if updated.ExamTitle == "" {
				updated.ExamTitle = c.state.Responses[i].ExamTitle
			}
			c.state.Responses[i] = *updated
			break
		}
	}
	c.mu.Unlock()
}

// RefreshResponse refetches one response so the grading sheet opens on
// current data. On failure the cached copy stays; the sheet is still usable.
func (c *Controller) RefreshResponse(ctx context.Context, id string) error {
	updated, err := c.api.Response(ctx, id)
	if err != nil {
		c.log.Debug().Str("response", id).Err(err).Msg("response refresh failed")
		return err
	}
	c.replaceResponse(updated)
	return nil
}

// SaveResponseGrade commits a completed grading sheet in one call.
func (c *Controller) SaveResponseGrade(ctx context.Context, payload backend.ResponseGrade) error {
	updated, err := c.api.GradeResponse(ctx, payload)
	if err != nil {
		c.setError(userMessage(err))
		return err
	}
	c.replaceResponse(updated)
	c.setSuccess("Response graded.")
	return nil
}

func (c *Controller) AutoGradeResponse(ctx context.Context, id string) error {
	updated, err := c.api.AutoGradeResponse(ctx, id)
	if err != nil {
		c.setError(userMessage(err))
		return err
	}
	c.replaceResponse(updated)
	c.setSuccess("Response auto-graded.")
	return nil
}

// AutoGradeAll regrades an exam server-side and merges the returned
// responses into local state. Responses the backend did not return are left
// exactly as they were.
func (c *Controller) AutoGradeAll(ctx context.Context, examID string) error {
	graded, err := c.api.AutoGradeAll(ctx, examID)
	if err != nil {
		c.setError(userMessage(err))
		return err
	}
	c.mu.Lock()
	byID := make(map[string]*model.ExamResponse, len(graded))
	for i := range graded {
		byID[graded[i].ID] = &graded[i]
	}
	for i := range c.state.Responses {
		if g, ok := byID[c.state.Responses[i].ID]; ok {
			if g.CourseID == "" {
				g.CourseID = c.state.Responses[i].CourseID
			}
			if g.ExamTitle == "" {
				g.ExamTitle = c.state.Responses[i].ExamTitle
			}
			c.state.Responses[i] = *g
		}
	}
	c.mu.Unlock()
	c.setSuccess(fmt.Sprintf("Auto-graded %d responses.", len(graded)))
	return nil
}

// SetResponseFlag flags or unflags a response for review.
func (c *Controller) SetResponseFlag(ctx context.Context, id string, flagged bool) error {
	var (
		updated *model.ExamResponse
		err     error
	)
	if flagged {
		updated, err = c.api.FlagResponse(ctx, id)
	} else {
		updated, err = c.api.UnflagResponse(ctx, id)
	}
	if err != nil {
		c.setError(userMessage(err))
		return err
	}
	c.replaceResponse(updated)
	return nil
}

// Student commands.

func (c *Controller) AddStudent(ctx context.Context, s model.Student) error {
	c.mu.Lock()
	courseID := c.state.SelectedCourseID
	c.mu.Unlock()
	created, err := c.api.EnrollStudent(ctx, courseID, s)
	if err != nil {
		c.setError(userMessage(err))
		return err
	}
	if created.Grades == nil {
		created.Grades = map[string]*float64{}
	}
	c.mu.Lock()
	c.state.Students = append(c.state.Students, *created)
	c.mu.Unlock()
	c.setSuccess(fmt.Sprintf("Student %s enrolled.", created.Name))
	return nil
}

func (c *Controller) UpdateStudent(ctx context.Context, s model.Student) error {
	updated, err := c.api.UpdateStudent(ctx, s)
	if err != nil {
		c.setError(userMessage(err))
		return err
	}
	c.mu.Lock()
	for i := range c.state.Students {
		if c.state.Students[i].ID == updated.ID {
			c.state.Students[i].Name = updated.Name
			c.state.Students[i].Email = updated.Email
			break
		}
	}
	c.mu.Unlock()
	c.setSuccess("Student updated.")
	return nil
}

func (c *Controller) RemoveStudent(ctx context.Context, studentID string) error {
	c.mu.Lock()
	courseID := c.state.SelectedCourseID
	c.mu.Unlock()
	if err := c.api.RemoveStudent(ctx, courseID, studentID); err != nil {
		c.setError(userMessage(err))
		return err
	}
	c.mu.Lock()
	kept := c.state.Students[:0]
	for _, s := range c.state.Students {
		if s.ID != studentID {
			kept = append(kept, s)
		}
	}
	c.state.Students = kept
	c.mu.Unlock()
	c.setSuccess("Student removed from course.")
	return nil
}
