package backend

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/campusgrid/lectern/internal/model"
	"github.com/campusgrid/lectern/internal/rest"
)

func (c *Client) ResponsesForExam(ctx context.Context, examID string) ([]model.ExamResponse, error) {
	var out []model.ExamResponse
	if err := c.api.Get(ctx, "/exams/"+rest.PathEscape(examID)+"/responses", &out); err != nil {
		return nil, fmt.Errorf("list responses for exam %s: %w", examID, err)
	}
	return out, nil
}

// ResponsesForCourse collects responses across all of a course's exams. Each
// exam is fetched concurrently; an exam whose fetch fails contributes no
// responses rather than failing the whole call. Results are stamped with the
// course ID and exam title and sorted newest-submitted first.
func (c *Client) ResponsesForCourse(ctx context.Context, courseID string, exams []model.Exam) []model.ExamResponse {
	var (
		mu  sync.Mutex
		all []model.ExamResponse
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, exam := range exams {
		exam := exam
		g.Go(func() error {
			rs, err := c.ResponsesForExam(ctx, exam.ID)
			if err != nil {
				c.log.Debug().Str("exam", exam.ID).Err(err).Msg("skipping exam responses")
				return nil
			}
			for i := range rs {
				rs[i].CourseID = courseID
				if rs[i].ExamTitle == "" {
					rs[i].ExamTitle = exam.Title
				}
			}
			mu.Lock()
			all = append(all, rs...)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	sort.Slice(all, func(i, j int) bool { return all[i].SubmittedAt.After(all[j].SubmittedAt) })
	return all
}

func (c *Client) Response(ctx context.Context, id string) (*model.ExamResponse, error) {
	var out model.ExamResponse
	if err := c.api.Get(ctx, "/exam-responses/"+rest.PathEscape(id), &out); err != nil {
		return nil, fmt.Errorf("fetch response %s: %w", id, err)
	}
	return &out, nil
}

// ResponseGrade is the aggregate manual-grading payload: per-question scores
// plus the client-computed totals, saved in a single call.
type ResponseGrade struct {
	ResponseID     string             `json:"responseId"`
	QuestionScores map[string]float64 `json:"questionScores"`
	TotalScore     float64            `json:"totalScore"`
	MaxScore       float64            `json:"maxScore"`
	Percentage     float64            `json:"percentage"`
	Feedback       string             `json:"feedback,omitempty"`
	Flagged        bool               `json:"flaggedForReview"`
}

func (c *Client) GradeResponse(ctx context.Context, g ResponseGrade) (*model.ExamResponse, error) {
	var out model.ExamResponse
	if err := c.api.Put(ctx, "/exam-responses/grade", g, &out); err != nil {
		return nil, fmt.Errorf("grade response %s: %w", g.ResponseID, err)
	}
	return &out, nil
}

func (c *Client) AutoGradeResponse(ctx context.Context, id string) (*model.ExamResponse, error) {
	var out model.ExamResponse
	if err := c.api.Post(ctx, "/exam-responses/"+rest.PathEscape(id)+"/auto-grade", nil, &out); err != nil {
		return nil, fmt.Errorf("auto-grade response %s: %w", id, err)
	}
	return &out, nil
}

// AutoGradeAll grades every auto-gradable response on an exam server-side and
// returns only the responses the backend actually regraded.
func (c *Client) AutoGradeAll(ctx context.Context, examID string) ([]model.ExamResponse, error) {
	var out []model.ExamResponse
	if err := c.api.Post(ctx, "/exams/"+rest.PathEscape(examID)+"/auto-grade-all", nil, &out); err != nil {
		return nil, fmt.Errorf("auto-grade exam %s: %w", examID, err)
	}
	return out, nil
}

func (c *Client) FlagResponse(ctx context.Context, id string) (*model.ExamResponse, error) {
	var out model.ExamResponse
	if err := c.api.Post(ctx, "/exam-responses/"+rest.PathEscape(id)+"/flag", nil, &out); err != nil {
		return nil, fmt.Errorf("flag response %s: %w", id, err)
	}
	return &out, nil
}

func (c *Client) UnflagResponse(ctx context.Context, id string) (*model.ExamResponse, error) {
	var out model.ExamResponse
	if err := c.api.Post(ctx, "/exam-responses/"+rest.PathEscape(id)+"/unflag", nil, &out); err != nil {
		return nil, fmt.Errorf("unflag response %s: %w", id, err)
	}
	return &out, nil
}
