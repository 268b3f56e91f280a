package backend

import (
	"context"
	"fmt"

	"github.com/campusgrid/lectern/internal/model"
	"github.com/campusgrid/lectern/internal/rest"
)

func (c *Client) SubmissionsForCourse(ctx context.Context, courseID string) ([]model.Submission, error) {
	var out []model.Submission
	if err := c.api.Get(ctx, "/submissions/course/"+rest.PathEscape(courseID), &out); err != nil {
		return nil, fmt.Errorf("list submissions for course %s: %w", courseID, err)
	}
	return out, nil
}

// GradeSubmission sets the grade (0-100) and feedback; the backend returns
// the updated record.
func (c *Client) GradeSubmission(ctx context.Context, id string, grade float64, feedback string) (*model.Submission, error) {
	body := map[string]any{"grade": grade, "feedback": feedback}
	var out model.Submission
	if err := c.api.Put(ctx, "/submissions/"+rest.PathEscape(id)+"/grade", body, &out); err != nil {
		return nil, fmt.Errorf("grade submission %s: %w", id, err)
	}
	return &out, nil
}
