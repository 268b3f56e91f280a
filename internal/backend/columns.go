package backend

import (
	"context"
	"fmt"

	"github.com/campusgrid/lectern/internal/model"
	"github.com/campusgrid/lectern/internal/rest"
)

func (c *Client) ColumnsForCourse(ctx context.Context, courseID string) ([]model.GradeColumn, error) {
	var out []model.GradeColumn
	if err := c.api.Get(ctx, "/courses/"+rest.PathEscape(courseID)+"/grade-columns", &out); err != nil {
		return nil, fmt.Errorf("list grade columns for course %s: %w", courseID, err)
	}
	return out, nil
}

func (c *Client) CreateColumn(ctx context.Context, col model.GradeColumn) (*model.GradeColumn, error) {
	var out model.GradeColumn
	if err := c.api.Post(ctx, "/grade-columns", col, &out); err != nil {
		return nil, fmt.Errorf("create grade column: %w", err)
	}
	return &out, nil
}

func (c *Client) UpdateColumn(ctx context.Context, col model.GradeColumn) (*model.GradeColumn, error) {
	var out model.GradeColumn
	if err := c.api.Put(ctx, "/grade-columns/"+rest.PathEscape(col.ID), col, &out); err != nil {
		return nil, fmt.Errorf("update grade column %s: %w", col.ID, err)
	}
	return &out, nil
}

func (c *Client) DeleteColumn(ctx context.Context, id string) error {
	if err := c.api.Delete(ctx, "/grade-columns/"+rest.PathEscape(id)); err != nil {
		return fmt.Errorf("delete grade column %s: %w", id, err)
	}
	return nil
}

// SetGrade writes one gradebook cell. grade nil clears the cell.
func (c *Client) SetGrade(ctx context.Context, studentID, columnID string, grade *float64) error {
	path := "/students/" + rest.PathEscape(studentID) + "/grades/" + rest.PathEscape(columnID)
	body := map[string]any{"grade": grade}
	if err := c.api.Put(ctx, path, body, nil); err != nil {
		return fmt.Errorf("set grade for student %s column %s: %w", studentID, columnID, err)
	}
	return nil
}
