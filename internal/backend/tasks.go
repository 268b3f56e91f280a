package backend

import (
	"context"
	"fmt"

	"github.com/campusgrid/lectern/internal/model"
	"github.com/campusgrid/lectern/internal/rest"
)

func (c *Client) TasksForCourse(ctx context.Context, courseID string) ([]model.Assignment, error) {
	var out []model.Assignment
	if err := c.api.Get(ctx, "/tasks/course/"+rest.PathEscape(courseID), &out); err != nil {
		return nil, fmt.Errorf("list tasks for course %s: %w", courseID, err)
	}
	return out, nil
}

func (c *Client) CreateTask(ctx context.Context, a model.Assignment) (*model.Assignment, error) {
	var out model.Assignment
	if err := c.api.Post(ctx, "/tasks", a, &out); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &out, nil
}

func (c *Client) UpdateTask(ctx context.Context, a model.Assignment) (*model.Assignment, error) {
	var out model.Assignment
	if err := c.api.Put(ctx, "/tasks/"+rest.PathEscape(a.ID), a, &out); err != nil {
		return nil, fmt.Errorf("update task %s: %w", a.ID, err)
	}
	return &out, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if err := c.api.Delete(ctx, "/tasks/"+rest.PathEscape(id)); err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}
