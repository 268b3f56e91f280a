package dashboard

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/campusgrid/lectern/internal/model"
)

// BulkResult is the outcome for one item of a bulk operation. Err is nil on
// success; failed items never abort the rest of the batch.
type BulkResult struct {
	ID  string
	Err error
}

// BulkOutcome summarizes a finished batch.
type BulkOutcome struct {
	// BatchID identifies the run in logs.
	BatchID string
	Results []BulkResult
}

func (o BulkOutcome) Failed() int {
	n := 0
	for _, r := range o.Results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// SubmissionGradeItem is one entry of a bulk submission-grading request.
type SubmissionGradeItem struct {
	SubmissionID string
	Grade        float64
	Feedback     string
}

// BulkGradeSubmissions grades submissions one at a time, in order, and
// reports per-item results.
func (c *Controller) BulkGradeSubmissions(ctx context.Context, items []SubmissionGradeItem) BulkOutcome {
	out := BulkOutcome{BatchID: uuid.NewString()}
	for _, item := range items {
		var err error
		if item.Grade < 0 || item.Grade > 100 {
			err = fmt.Errorf("grade must be between 0 and 100")
		} else {
			var updated *model.Submission
			updated, err = c.api.GradeSubmission(ctx, item.SubmissionID, item.Grade, item.Feedback)
			if err == nil {
				c.mu.Lock()
				for i := range c.state.Submissions {
					if c.state.Submissions[i].ID == updated.ID {
						c.state.Submissions[i] = *updated
						break
					}
				}
				c.mu.Unlock()
			}
		}
		out.Results = append(out.Results, BulkResult{ID: item.SubmissionID, Err: err})
	}
	c.finishBulk("submission grading", out)
	return out
}

// BulkAutoGradeResponses auto-grades the selected responses sequentially.
func (c *Controller) BulkAutoGradeResponses(ctx context.Context, responseIDs []string) BulkOutcome {
	out := BulkOutcome{BatchID: uuid.NewString()}
	for _, id := range responseIDs {
		updated, err := c.api.AutoGradeResponse(ctx, id)
		if err == nil {
			c.replaceResponse(updated)
		}
		out.Results = append(out.Results, BulkResult{ID: id, Err: err})
	}
	c.finishBulk("response auto-grading", out)
	return out
}

// BulkDeleteQuestions deletes the selected questions sequentially.
func (c *Controller) BulkDeleteQuestions(ctx context.Context, examID string, questionIDs []string) BulkOutcome {
	out := BulkOutcome{BatchID: uuid.NewString()}
	for _, id := range questionIDs {
		err := c.api.DeleteQuestion(ctx, examID, id)
		if err == nil {
			c.mu.Lock()
			for i := range c.state.Exams {
				if c.state.Exams[i].ID != examID {
					continue
				}
				kept := c.state.Exams[i].Questions[:0]
				for _, q := range c.state.Exams[i].Questions {
					if q.ID != id {
						kept = append(kept, q)
					}
				}
				c.state.Exams[i].Questions = kept
			}
			c.mu.Unlock()
		}
		out.Results = append(out.Results, BulkResult{ID: id, Err: err})
	}
	c.finishBulk("question deletion", out)
	return out
}

// BulkSetQuestionPoints sets the same point value on each selected question.
func (c *Controller) BulkSetQuestionPoints(ctx context.Context, examID string, questionIDs []string, points float64) BulkOutcome {
	out := BulkOutcome{BatchID: uuid.NewString()}
	for _, id := range questionIDs {
		var err error
		q, ok := c.findQuestion(examID, id)
		if !ok {
			err = fmt.Errorf("question %s is not on this exam", id)
		} else {
			q.Points = points
			var updated *model.Question
			updated, err = c.api.UpdateQuestion(ctx, examID, q)
			if err == nil {
				c.mu.Lock()
				for i := range c.state.Exams {
					if c.state.Exams[i].ID != examID {
						continue
					}
					for j := range c.state.Exams[i].Questions {
						if c.state.Exams[i].Questions[j].ID == updated.ID {
							c.state.Exams[i].Questions[j] = *updated
						}
					}
				}
				c.mu.Unlock()
			}
		}
		out.Results = append(out.Results, BulkResult{ID: id, Err: err})
	}
	c.finishBulk("question points update", out)
	return out
}

func (c *Controller) findQuestion(examID, questionID string) (model.Question, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.state.Exams {
		if c.state.Exams[i].ID != examID {
			continue
		}
		for _, q := range c.state.Exams[i].Questions {
			if q.ID == questionID {
				return q, true
			}
		}
	}
	return model.Question{}, false
}

func (c *Controller) finishBulk(what string, out BulkOutcome) {
	failed := out.Failed()
	total := len(out.Results)
	c.log.Info().Str("batch", out.BatchID).Int("total", total).Int("failed", failed).Msgf("bulk %s finished", what)
	switch {
	case total == 0:
	case failed == 0:
		c.setSuccess(fmt.Sprintf("Bulk %s completed for %d items.", what, total))
	case failed < total:
		c.setError(fmt.Sprintf("Bulk %s finished with %d of %d items failing.", what, failed, total))
	default:
		c.setError(fmt.Sprintf("Bulk %s failed for all %d items.", what, total))
	}
}
