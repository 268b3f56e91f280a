package backend

import (
	"context"
	"fmt"

	"github.com/campusgrid/lectern/internal/model"
	"github.com/campusgrid/lectern/internal/rest"
)

func (c *Client) ExamsForCourse(ctx context.Context, courseID string) ([]model.Exam, error) {
	var out []model.Exam
	if err := c.api.Get(ctx, "/courses/"+rest.PathEscape(courseID)+"/exams", &out); err != nil {
		return nil, fmt.Errorf("list exams for course %s: %w", courseID, err)
	}
	return out, nil
}

func (c *Client) Exam(ctx context.Context, id string) (*model.Exam, error) {
	var out model.Exam
	if err := c.api.Get(ctx, "/exams/"+rest.PathEscape(id), &out); err != nil {
		return nil, fmt.Errorf("fetch exam %s: %w", id, err)
	}
	return &out, nil
}

func (c *Client) CreateExam(ctx context.Context, e model.Exam) (*model.Exam, error) {
	var out model.Exam
	if err := c.api.Post(ctx, "/exams", e, &out); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}
	return &out, nil
}

func (c *Client) UpdateExam(ctx context.Context, e model.Exam) (*model.Exam, error) {
	var out model.Exam
	if err := c.api.Put(ctx, "/exams/"+rest.PathEscape(e.ID), e, &out); err != nil {
		return nil, fmt.Errorf("update exam %s: %w", e.ID, err)
	}
	return &out, nil
}

func (c *Client) DeleteExam(ctx context.Context, id string) error {
	if err := c.api.Delete(ctx, "/exams/"+rest.PathEscape(id)); err != nil {
		return fmt.Errorf("delete exam %s: %w", id, err)
	}
	return nil
}

func (c *Client) PublishExam(ctx context.Context, id string) error {
	if err := c.api.Post(ctx, "/exams/"+rest.PathEscape(id)+"/publish", nil, nil); err != nil {
		return fmt.Errorf("publish exam %s: %w", id, err)
	}
	return nil
}

func (c *Client) UnpublishExam(ctx context.Context, id string) error {
	if err := c.api.Post(ctx, "/exams/"+rest.PathEscape(id)+"/unpublish", nil, nil); err != nil {
		return fmt.Errorf("unpublish exam %s: %w", id, err)
	}
	return nil
}

// ExamStatus is the backend's live view of an exam: attempt counts and
// whether the availability window is open.
type ExamStatus struct {
	ExamID       string `json:"examId"`
	Open         bool   `json:"open"`
	AttemptCount int    `json:"attemptCount"`
	GradedCount  int    `json:"gradedCount"`
}

func (c *Client) ExamStatusFor(ctx context.Context, id string) (*ExamStatus, error) {
	var out ExamStatus
	if err := c.api.Get(ctx, "/exams/"+rest.PathEscape(id)+"/status", &out); err != nil {
		return nil, fmt.Errorf("fetch exam status %s: %w", id, err)
	}
	return &out, nil
}
