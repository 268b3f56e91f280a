package backend

import (
	"context"
	"fmt"

	"github.com/campusgrid/lectern/internal/model"
	"github.com/campusgrid/lectern/internal/rest"
)

func (c *Client) Questions(ctx context.Context, examID string) ([]model.Question, error) {
	var out []model.Question
	if err := c.api.Get(ctx, "/exams/"+rest.PathEscape(examID)+"/questions", &out); err != nil {
		return nil, fmt.Errorf("list questions for exam %s: %w", examID, err)
	}
	return out, nil
}

func (c *Client) AddQuestion(ctx context.Context, examID string, q model.Question) (*model.Question, error) {
	var out model.Question
	if err := c.api.Post(ctx, "/exams/"+rest.PathEscape(examID)+"/questions", q, &out); err != nil {
		return nil, fmt.Errorf("add question to exam %s: %w", examID, err)
	}
	return &out, nil
}

func (c *Client) UpdateQuestion(ctx context.Context, examID string, q model.Question) (*model.Question, error) {
	var out model.Question
	path := "/exams/" + rest.PathEscape(examID) + "/questions/" + rest.PathEscape(q.ID)
	if err := c.api.Put(ctx, path, q, &out); err != nil {
		return nil, fmt.Errorf("update question %s: %w", q.ID, err)
	}
	return &out, nil
}

func (c *Client) DeleteQuestion(ctx context.Context, examID, questionID string) error {
	path := "/exams/" + rest.PathEscape(examID) + "/questions/" + rest.PathEscape(questionID)
	if err := c.api.Delete(ctx, path); err != nil {
		return fmt.Errorf("delete question %s: %w", questionID, err)
	}
	return nil
}

// ReorderQuestions sends the complete new ordering in one call.
func (c *Client) ReorderQuestions(ctx context.Context, examID string, orderedIDs []string) error {
	body := map[string][]string{"questionIds": orderedIDs}
	path := "/exams/" + rest.PathEscape(examID) + "/questions/reorder"
	if err := c.api.Put(ctx, path, body, nil); err != nil {
		return fmt.Errorf("reorder questions for exam %s: %w", examID, err)
	}
	return nil
}
