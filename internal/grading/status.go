package grading

import "github.com/campusgrid/lectern/internal/model"

// Grading statuses, in display form.
const (
	StatusFlagged        = "flagged"
	StatusInProgress     = "in-progress"
	StatusAutoGraded     = "auto-graded"
	StatusManuallyGraded = "manually-graded"
	StatusNeedsGrading   = "needs-grading"
	StatusGraded         = "graded"
	StatusReviewed       = "reviewed"
	StatusUnknown        = "unknown"
)

// Status classifies a response for badges and exports. Precedence is total:
// a flagged response reports flagged no matter what else is true, an attempt
// still open reports in-progress, and so on down the list.
func Status(r *model.ExamResponse) string {
	switch {
	case r.FlaggedForReview:
		return StatusFlagged
	case r.Status == "in-progress":
		return StatusInProgress
	case r.Graded && r.AutoGraded:
		return StatusAutoGraded
	case r.Graded:
		return StatusManuallyGraded
	case r.Status == "submitted":
		return StatusNeedsGrading
	case r.Status == "graded":
		return StatusGraded
	case r.Status == "reviewed":
		return StatusReviewed
	default:
		return StatusUnknown
	}
}

// StatusLabel is the human form used in badges and CSV cells.
func StatusLabel(status string) string {
	switch status {
	case StatusFlagged:
		return "Flagged for Review"
	case StatusInProgress:
		return "In Progress"
	case StatusAutoGraded:
		return "Auto-Graded"
	case StatusManuallyGraded:
		return "Manually Graded"
	case StatusNeedsGrading:
		return "Needs Grading"
	case StatusGraded:
		return "Graded"
	case StatusReviewed:
		return "Reviewed"
	default:
		return "Unknown"
	}
}
