// Package dashboard holds the application state behind the lecturer UI and
// the commands that mutate it. One Controller instance serves one lecturer
// session; handlers call commands and render from Snapshot.
package dashboard

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/campusgrid/lectern/internal/backend"
	"github.com/campusgrid/lectern/internal/cache"
	"github.com/campusgrid/lectern/internal/gradebook"
	"github.com/campusgrid/lectern/internal/model"
	"github.com/campusgrid/lectern/internal/rest"
)

// API is the slice of the campus backend the controller drives. It is
// satisfied by *backend.Client and by fakes in tests.
type API interface {
	gradebook.Backend

	Courses(ctx context.Context) ([]model.Course, error)
	StudentsForCourse(ctx context.Context, courseID string) ([]model.Student, error)

	TasksForCourse(ctx context.Context, courseID string) ([]model.Assignment, error)
	CreateTask(ctx context.Context, a model.Assignment) (*model.Assignment, error)
	UpdateTask(ctx context.Context, a model.Assignment) (*model.Assignment, error)
	DeleteTask(ctx context.Context, id string) error

	SubmissionsForCourse(ctx context.Context, courseID string) ([]model.Submission, error)
	GradeSubmission(ctx context.Context, id string, grade float64, feedback string) (*model.Submission, error)

	ExamsForCourse(ctx context.Context, courseID string) ([]model.Exam, error)
	CreateExam(ctx context.Context, e model.Exam) (*model.Exam, error)
	UpdateExam(ctx context.Context, e model.Exam) (*model.Exam, error)
	DeleteExam(ctx context.Context, id string) error
	PublishExam(ctx context.Context, id string) error
	UnpublishExam(ctx context.Context, id string) error

	Questions(ctx context.Context, examID string) ([]model.Question, error)
	AddQuestion(ctx context.Context, examID string, q model.Question) (*model.Question, error)
	UpdateQuestion(ctx context.Context, examID string, q model.Question) (*model.Question, error)
	DeleteQuestion(ctx context.Context, examID, questionID string) error
	ReorderQuestions(ctx context.Context, examID string, orderedIDs []string) error

	ResponsesForCourse(ctx context.Context, courseID string, exams []model.Exam) []model.ExamResponse
	Response(ctx context.Context, id string) (*model.ExamResponse, error)
	GradeResponse(ctx context.Context, g backend.ResponseGrade) (*model.ExamResponse, error)
	AutoGradeResponse(ctx context.Context, id string) (*model.ExamResponse, error)
	AutoGradeAll(ctx context.Context, examID string) ([]model.ExamResponse, error)
	FlagResponse(ctx context.Context, id string) (*model.ExamResponse, error)
	UnflagResponse(ctx context.Context, id string) (*model.ExamResponse, error)

	ColumnsForCourse(ctx context.Context, courseID string) ([]model.GradeColumn, error)

	EnrollStudent(ctx context.Context, courseID string, s model.Student) (*model.Student, error)
	UpdateStudent(ctx context.Context, s model.Student) (*model.Student, error)
	RemoveStudent(ctx context.Context, courseID, studentID string) error

	UploadAssignmentFile(ctx context.Context, assignmentID, courseID, description, name string, size int64, r io.Reader) (*model.FileInfo, error)
}

// Snapshots is the slice of the cache the controller uses.
type Snapshots interface {
	Put(ctx context.Context, courseID, resource string, v any, fetchedAt time.Time) error
	Get(ctx context.Context, courseID, resource string, out any) (time.Time, error)
	Purge(ctx context.Context, courseID string) error
}

// Banner lifetimes.
const (
	errorBannerTTL   = 5 * time.Second
	successBannerTTL = 3 * time.Second
)

type Controller struct {
	mu     sync.Mutex
	state  State
	api    API
	syncer *gradebook.Syncer
	snaps  Snapshots
	log    zerolog.Logger

	// Now and Schedule are injectable for tests.
	Now      func() time.Time
	Schedule func(d time.Duration, f func())

	bannerSeq int
}

func NewController(api API, snaps Snapshots, log zerolog.Logger) *Controller {
	return &Controller{
		state:  State{ActiveTab: TabGrades},
		api:    api,
		syncer: gradebook.NewSyncer(api, log),
		snaps:  snaps,
		log:    log,
		Now:    time.Now,
		Schedule: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// Snapshot returns a deep copy of the current state for rendering.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Init loads the course list and selects the first course.
func (c *Controller) Init(ctx context.Context) error {
	courses, err := c.api.Courses(ctx)
	if err != nil {
		c.setError(userMessage(err))
		return err
	}
	c.mu.Lock()
	c.state.Courses = courses
	c.mu.Unlock()
	if len(courses) > 0 {
		return c.SelectCourse(ctx, courses[0].ID)
	}
	return nil
}

// SelectCourse switches the dashboard to a course and reloads every
// course-scoped resource concurrently. Each resource falls back to empty on
// failure; a backend 404 is treated as "no data yet", never as an error. If
// every fetch fails the last cached snapshot is shown read-only.
func (c *Controller) SelectCourse(ctx context.Context, courseID string) error {
	c.mu.Lock()
	c.state.SelectedCourseID = courseID
	c.state.resetCourseScope()
	c.state.Loading = true
	c.mu.Unlock()

	var (
		students    []model.Student
		assignments []model.Assignment
		submissions []model.Submission
		exams       []model.Exam
		responses   []model.ExamResponse
		columns     []model.GradeColumn
		failMu      sync.Mutex
		failures    int
	)
	const fetches = 5

	noteFailure := func(resource string, err error) {
		if rest.IsNotFound(err) {
			return
		}
		c.log.Warn().Str("course", courseID).Str("resource", resource).Err(err).Msg("course fetch failed")
		failMu.Lock()
		failures++
		failMu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if students, err = c.api.StudentsForCourse(gctx, courseID); err != nil {
			students = nil
			noteFailure(cache.ResourceStudents, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if assignments, err = c.api.TasksForCourse(gctx, courseID); err != nil {
			assignments = nil
			noteFailure(cache.ResourceAssignments, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if submissions, err = c.api.SubmissionsForCourse(gctx, courseID); err != nil {
			submissions = nil
			noteFailure(cache.ResourceSubmissions, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if exams, err = c.api.ExamsForCourse(gctx, courseID); err != nil {
			exams = nil
			noteFailure(cache.ResourceExams, err)
			return nil
		}
		responses = c.api.ResponsesForCourse(gctx, courseID, exams)
		return nil
	})
	g.Go(func() error {
		var err error
		if columns, err = c.api.ColumnsForCourse(gctx, courseID); err != nil {
			columns = nil
			noteFailure(cache.ResourceColumns, err)
		}
		return nil
	})
	g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.SelectedCourseID != courseID {
		// The user moved on while this load was in flight.
		return nil
	}
	c.state.Loading = false

	if failures == fetches {
		if c.restoreFromCacheLocked(ctx, courseID) {
			return nil
		}
		c.setErrorLocked("Could not load course data. Please try again later.")
		return nil
	}

	c.state.Students = students
	c.state.Assignments = assignments
	c.state.Submissions = submissions
	c.state.Exams = exams
	c.state.Responses = responses
	c.state.Columns = columns
	c.persistSnapshotLocked(ctx, courseID)
	return nil
}

// RefreshCourse drops the selected course's cached snapshot and refetches
// everything, so a stale offline copy cannot come back.
func (c *Controller) RefreshCourse(ctx context.Context) error {
	c.mu.Lock()
	courseID := c.state.SelectedCourseID
	c.mu.Unlock()
	if courseID == "" {
		return nil
	}
	if c.snaps != nil {
		if err := c.snaps.Purge(ctx, courseID); err != nil {
			c.log.Warn().Str("course", courseID).Err(err).Msg("snapshot purge failed")
		}
	}
	return c.SelectCourse(ctx, courseID)
}

func (c *Controller) persistSnapshotLocked(ctx context.Context, courseID string) {
	if c.snaps == nil {
		return
	}
	now := c.Now()
	put := func(resource string, v any) {
		if err := c.snaps.Put(ctx, courseID, resource, v, now); err != nil {
			c.log.Debug().Str("resource", resource).Err(err).Msg("snapshot write failed")
		}
	}
	put(cache.ResourceStudents, c.state.Students)
	put(cache.ResourceAssignments, c.state.Assignments)
	put(cache.ResourceSubmissions, c.state.Submissions)
	put(cache.ResourceExams, c.state.Exams)
	put(cache.ResourceResponses, c.state.Responses)
	put(cache.ResourceColumns, c.state.Columns)
}

func (c *Controller) restoreFromCacheLocked(ctx context.Context, courseID string) bool {
	if c.snaps == nil {
		return false
	}
	var students []model.Student
	at, err := c.snaps.Get(ctx, courseID, cache.ResourceStudents, &students)
	if err != nil {
		return false
	}
	c.state.Students = students
	c.snaps.Get(ctx, courseID, cache.ResourceAssignments, &c.state.Assignments)
	c.snaps.Get(ctx, courseID, cache.ResourceSubmissions, &c.state.Submissions)
	c.snaps.Get(ctx, courseID, cache.ResourceExams, &c.state.Exams)
	c.snaps.Get(ctx, courseID, cache.ResourceResponses, &c.state.Responses)
	c.snaps.Get(ctx, courseID, cache.ResourceColumns, &c.state.Columns)
	c.state.Offline = true
	c.state.CachedAt = at
	c.log.Info().Str("course", courseID).Time("cachedAt", at).Msg("serving cached course data")
	return true
}

// SetTab switches the active tab.
func (c *Controller) SetTab(tab string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch tab {
	case TabGrades, TabAssignments, TabExams, TabSubmissions, TabResponses:
		c.state.ActiveTab = tab
	}
}

// Banners. Each new message restarts the auto-clear timer; a stale timer
// firing after a newer message must not clear it, hence the sequence check.

func (c *Controller) setError(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setErrorLocked(msg)
}

func (c *Controller) setErrorLocked(msg string) {
	c.state.Error = msg
	c.state.Success = ""
	c.bannerSeq++
	seq := c.bannerSeq
	c.Schedule(errorBannerTTL, func() { c.clearBanner(seq) })
}

func (c *Controller) setSuccess(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Success = msg
	c.state.Error = ""
	c.bannerSeq++
	seq := c.bannerSeq
	c.Schedule(successBannerTTL, func() { c.clearBanner(seq) })
}

func (c *Controller) clearBanner(seq int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq == c.bannerSeq {
		c.state.Error = ""
		c.state.Success = ""
	}
}

// ClearBanners dismisses both banners immediately.
func (c *Controller) ClearBanners() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bannerSeq++
	c.state.Error = ""
	c.state.Success = ""
}

// userMessage maps an error to banner text.
func userMessage(err error) string {
	var ae *rest.APIError
	if errors.As(err, &ae) {
		return ae.UserMessage()
	}
	if rest.IsTimeout(err) {
		return "The request timed out. Please check your connection and try again."
	}
	return "Something went wrong. Please try again."
}
