package backend

import (
	"context"
	"fmt"

	"github.com/campusgrid/lectern/internal/model"
	"github.com/campusgrid/lectern/internal/rest"
)

// EnrollStudent creates (or enrolls an existing) student on a course.
func (c *Client) EnrollStudent(ctx context.Context, courseID string, s model.Student) (*model.Student, error) {
	var out model.Student
	path := "/courses/" + rest.PathEscape(courseID) + "/students"
	if err := c.api.Post(ctx, path, s, &out); err != nil {
		return nil, fmt.Errorf("enroll student on course %s: %w", courseID, err)
	}
	return &out, nil
}

func (c *Client) UpdateStudent(ctx context.Context, s model.Student) (*model.Student, error) {
	var out model.Student
	if err := c.api.Put(ctx, "/users/"+rest.PathEscape(s.ID), s, &out); err != nil {
		return nil, fmt.Errorf("update student %s: %w", s.ID, err)
	}
	return &out, nil
}

// RemoveStudent drops a student from a course. Their user record survives.
func (c *Client) RemoveStudent(ctx context.Context, courseID, studentID string) error {
	path := "/courses/" + rest.PathEscape(courseID) + "/students/" + rest.PathEscape(studentID)
	if err := c.api.Delete(ctx, path); err != nil {
		return fmt.Errorf("remove student %s from course %s: %w", studentID, courseID, err)
	}
	return nil
}
