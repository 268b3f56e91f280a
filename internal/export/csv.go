// Package export builds the CSV downloads offered by the dashboard.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/campusgrid/lectern/internal/grading"
	"github.com/campusgrid/lectern/internal/model"
)

// Grades writes the gradebook: one column per grade column with its weight
// in the header, empty cells for missing grades, final grade as a percent.
func Grades(w io.Writer, students []model.Student, cols []model.GradeColumn) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, len(cols)+2)
	header = append(header, "Student Name")
	for _, col := range cols {
		header = append(header, fmt.Sprintf("%s (%g%%)", col.Name, col.Percentage))
	}
	header = append(header, "Final Grade")
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range students {
		row := make([]string, 0, len(header))
		row = append(row, s.Name)
		for _, col := range cols {
			if g, ok := s.Grade(col.ID); ok {
				row = append(row, strconv.FormatFloat(g, 'f', -1, 64))
			} else {
				row = append(row, "")
			}
		}
		row = append(row, fmt.Sprintf("%g%%", s.FinalGrade))
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Responses writes the exam-response report for one exam or a whole course.
func Responses(w io.Writer, responses []model.ExamResponse) error {
	cw := csv.NewWriter(w)
	header := []string{
		"Student Name", "Email", "Exam", "Attempt", "Submitted At", "Time Spent",
		"Score", "Percentage", "Status", "Passed", "Grading Status", "Flagged",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := range responses {
		r := &responses[i]
		row := []string{
			r.StudentName,
			r.StudentEmail,
			r.ExamTitle,
			strconv.Itoa(r.Attempt),
			r.SubmittedAt.Format(time.RFC3339),
			formatDuration(r.TimeSpentSecs),
			fmt.Sprintf("%g/%g", r.TotalScore, r.MaxScore),
			fmt.Sprintf("%g%%", r.Percentage),
			r.Status,
			yesNo(r.Passed),
			grading.StatusLabel(grading.Status(r)),
			yesNo(r.FlaggedForReview),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatDuration(secs int) string {
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}
	return fmt.Sprintf("%dm %ds", secs/60, secs%60)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
