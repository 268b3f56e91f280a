package dashboard

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusgrid/lectern/internal/backend"
	"github.com/campusgrid/lectern/internal/model"
	"github.com/campusgrid/lectern/internal/rest"
)

// fakeAPI is an in-memory backend. Individual calls can be failed by adding
// their name to fail.
type fakeAPI struct {
	courses     []model.Course
	students    []model.Student
	assignments []model.Assignment
	submissions []model.Submission
	exams       []model.Exam
	responses   map[string][]model.ExamResponse // by exam
	columns     []model.GradeColumn

	fail       map[string]error
	nextColID  int
	gradeCalls []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{fail: map[string]error{}, responses: map[string][]model.ExamResponse{}}
}

func notFound() error {
	return &rest.APIError{Status: http.StatusNotFound, Op: "GET /x", Message: "missing"}
}

func (f *fakeAPI) err(name string) error { return f.fail[name] }

func (f *fakeAPI) Courses(context.Context) ([]model.Course, error) {
	return f.courses, f.err("courses")
}

func (f *fakeAPI) StudentsForCourse(context.Context, string) ([]model.Student, error) {
	if err := f.err("students"); err != nil {
		return nil, err
	}
	return f.students, nil
}

func (f *fakeAPI) TasksForCourse(context.Context, string) ([]model.Assignment, error) {
	if err := f.err("tasks"); err != nil {
		return nil, err
	}
	return f.assignments, nil
}

func (f *fakeAPI) CreateTask(_ context.Context, a model.Assignment) (*model.Assignment, error) {
	if err := f.err("createTask"); err != nil {
		return nil, err
	}
	a.ID = "a-new"
	return &a, nil
}

func (f *fakeAPI) UpdateTask(_ context.Context, a model.Assignment) (*model.Assignment, error) {
	return &a, f.err("updateTask")
}

func (f *fakeAPI) DeleteTask(context.Context, string) error { return f.err("deleteTask") }

func (f *fakeAPI) SubmissionsForCourse(context.Context, string) ([]model.Submission, error) {
	if err := f.err("submissions"); err != nil {
		return nil, err
	}
	return f.submissions, nil
}

func (f *fakeAPI) GradeSubmission(_ context.Context, id string, grade float64, feedback string) (*model.Submission, error) {
	if err := f.err("gradeSubmission:" + id); err != nil {
		return nil, err
	}
	if err := f.err("gradeSubmission"); err != nil {
		return nil, err
	}
	f.gradeCalls = append(f.gradeCalls, id)
	return &model.Submission{ID: id, Grade: &grade, Feedback: feedback, Status: "graded"}, nil
}

func (f *fakeAPI) ExamsForCourse(context.Context, string) ([]model.Exam, error) {
	if err := f.err("exams"); err != nil {
		return nil, err
	}
	return f.exams, nil
}

func (f *fakeAPI) CreateExam(_ context.Context, e model.Exam) (*model.Exam, error) {
	e.ID = "e-new"
	return &e, f.err("createExam")
}
func (f *fakeAPI) UpdateExam(_ context.Context, e model.Exam) (*model.Exam, error) {
	return &e, f.err("updateExam")
}
func (f *fakeAPI) DeleteExam(context.Context, string) error    { return f.err("deleteExam") }
func (f *fakeAPI) PublishExam(context.Context, string) error   { return f.err("publishExam") }
func (f *fakeAPI) UnpublishExam(context.Context, string) error { return f.err("unpublishExam") }

func (f *fakeAPI) Questions(_ context.Context, examID string) ([]model.Question, error) {
	for _, e := range f.exams {
		if e.ID == examID {
			return e.Questions, nil
		}
	}
	return nil, nil
}

func (f *fakeAPI) AddQuestion(_ context.Context, _ string, q model.Question) (*model.Question, error) {
	q.ID = "q-new"
	return &q, f.err("addQuestion")
}

func (f *fakeAPI) UpdateQuestion(_ context.Context, _ string, q model.Question) (*model.Question, error) {
	return &q, f.err("updateQuestion")
}

func (f *fakeAPI) DeleteQuestion(_ context.Context, _, questionID string) error {
	return f.err("deleteQuestion:" + questionID)
}

func (f *fakeAPI) ReorderQuestions(_ context.Context, _ string, _ []string) error {
	return f.err("reorder")
}

func (f *fakeAPI) ResponsesForCourse(_ context.Context, courseID string, exams []model.Exam) []model.ExamResponse {
	var all []model.ExamResponse
	for _, e := range exams {
		for _, r := range f.responses[e.ID] {
			r.CourseID = courseID
			r.ExamTitle = e.Title
			all = append(all, r)
		}
	}
	return all
}

func (f *fakeAPI) Response(_ context.Context, id string) (*model.ExamResponse, error) {
	if err := f.err("response:" + id); err != nil {
		return nil, err
	}
	for _, rs := range f.responses {
		for _, r := range rs {
			if r.ID == id {
				cp := r
				return &cp, nil
			}
		}
	}
	return nil, errors.New("response not found")
}

func (f *fakeAPI) GradeResponse(_ context.Context, g backend.ResponseGrade) (*model.ExamResponse, error) {
	if err := f.err("gradeResponse"); err != nil {
		return nil, err
	}
	return &model.ExamResponse{ID: g.ResponseID, Graded: true, TotalScore: g.TotalScore, MaxScore: g.MaxScore, Percentage: g.Percentage, Status: "submitted"}, nil
}

func (f *fakeAPI) AutoGradeResponse(_ context.Context, id string) (*model.ExamResponse, error) {
	if err := f.err("autoGrade:" + id); err != nil {
		return nil, err
	}
	return &model.ExamResponse{ID: id, AutoGraded: true, Status: "submitted"}, nil
}

func (f *fakeAPI) AutoGradeAll(_ context.Context, examID string) ([]model.ExamResponse, error) {
	if err := f.err("autoGradeAll"); err != nil {
		return nil, err
	}
	var out []model.ExamResponse
	for _, r := range f.responses[examID] {
		if r.Status == "submitted" && !r.Graded {
			r.AutoGraded = true
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAPI) FlagResponse(_ context.Context, id string) (*model.ExamResponse, error) {
	return &model.ExamResponse{ID: id, FlaggedForReview: true, Status: "submitted"}, nil
}

func (f *fakeAPI) UnflagResponse(_ context.Context, id string) (*model.ExamResponse, error) {
	return &model.ExamResponse{ID: id, Status: "submitted"}, nil
}

func (f *fakeAPI) ColumnsForCourse(context.Context, string) ([]model.GradeColumn, error) {
	if err := f.err("columns"); err != nil {
		return nil, err
	}
	return f.columns, nil
}

func (f *fakeAPI) CreateColumn(_ context.Context, col model.GradeColumn) (*model.GradeColumn, error) {
	if err := f.err("createColumn"); err != nil {
		return nil, err
	}
	f.nextColID++
	col.ID = "col-new"
	return &col, nil
}

func (f *fakeAPI) UpdateColumn(_ context.Context, col model.GradeColumn) (*model.GradeColumn, error) {
	return &col, f.err("updateColumn")
}

func (f *fakeAPI) DeleteColumn(context.Context, string) error { return f.err("deleteColumn") }

func (f *fakeAPI) SetGrade(_ context.Context, studentID, columnID string, _ *float64) error {
	return f.err("setGrade")
}

func (f *fakeAPI) EnrollStudent(_ context.Context, _ string, s model.Student) (*model.Student, error) {
	s.ID = "s-new"
	return &s, f.err("enroll")
}

func (f *fakeAPI) UpdateStudent(_ context.Context, s model.Student) (*model.Student, error) {
	return &s, f.err("updateStudent")
}

func (f *fakeAPI) RemoveStudent(context.Context, string, string) error {
	return f.err("removeStudent")
}

func (f *fakeAPI) UploadAssignmentFile(_ context.Context, assignmentID, courseID, description, name string, size int64, _ io.Reader) (*model.FileInfo, error) {
	if err := f.err("upload"); err != nil {
		return nil, err
	}
	return &model.FileInfo{ID: "f-new", AssignmentID: assignmentID, CourseID: courseID, Name: name, Size: size}, nil
}

// fakeScheduler collects banner timers so tests fire them by hand.
type fakeScheduler struct {
	fns  []func()
	durs []time.Duration
}

func (s *fakeScheduler) schedule(d time.Duration, f func()) {
	s.durs = append(s.durs, d)
	s.fns = append(s.fns, f)
}

func (s *fakeScheduler) fire(i int) { s.fns[i]() }

func seedController(t *testing.T) (*Controller, *fakeAPI, *fakeScheduler) {
	t.Helper()
	f := newFakeAPI()
	f.courses = []model.Course{{ID: "c1", Title: "Databases"}, {ID: "c2", Title: "Networks"}}
	f.students = []model.Student{
		{ID: "s1", Name: "Ada", Grades: map[string]*float64{}},
	}
	f.assignments = []model.Assignment{{ID: "a1", CourseID: "c1", Title: "Homework 1", Type: "homework", MaxPoints: 100}}
	f.exams = []model.Exam{{ID: "e1", CourseID: "c1", Title: "Midterm"}}
	f.responses["e1"] = []model.ExamResponse{
		{ID: "r1", ExamID: "e1", Status: "submitted"},
		{ID: "r2", ExamID: "e1", Status: "submitted", Graded: true},
	}
	f.columns = []model.GradeColumn{{ID: "col1", CourseID: "c1", Name: "Homework 1", Type: "homework", Percentage: 10}}

	c := NewController(f, nil, zerolog.Nop())
	sched := &fakeScheduler{}
	c.Schedule = sched.schedule
	c.Now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	return c, f, sched
}

func TestInitSelectsFirstCourse(t *testing.T) {
	c, _, _ := seedController(t)
	if err := c.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	st := c.Snapshot()
	if st.SelectedCourseID != "c1" {
		t.Errorf("selected = %q", st.SelectedCourseID)
	}
	if len(st.Students) != 1 || len(st.Assignments) != 1 || len(st.Exams) != 1 || len(st.Columns) != 1 {
		t.Errorf("course data not loaded: %+v", st)
	}
	if len(st.Responses) != 2 {
		t.Errorf("responses = %d", len(st.Responses))
	}
	if st.Responses[0].ExamTitle != "Midterm" {
		t.Errorf("response not stamped: %+v", st.Responses[0])
	}
}

func TestSelectCourseNotFoundIsEmptyNotError(t *testing.T) {
	c, f, _ := seedController(t)
	f.fail["submissions"] = notFound()
	f.fail["columns"] = notFound()

	if err := c.SelectCourse(context.Background(), "c1"); err != nil {
		t.Fatalf("SelectCourse: %v", err)
	}
	st := c.Snapshot()
	if st.Error != "" {
		t.Errorf("404 produced an error banner: %q", st.Error)
	}
	if len(st.Submissions) != 0 || len(st.Columns) != 0 {
		t.Errorf("missing resources not empty")
	}
	if len(st.Students) != 1 {
		t.Errorf("healthy resource dropped")
	}
	if st.Offline {
		t.Error("partial 404s flipped the dashboard offline")
	}
}

func TestSelectCoursePartialFailureKeepsRest(t *testing.T) {
	c, f, _ := seedController(t)
	f.fail["students"] = errors.New("boom")

	c.SelectCourse(context.Background(), "c1")
	st := c.Snapshot()
	if len(st.Students) != 0 {
		t.Errorf("failed resource not empty")
	}
	if len(st.Assignments) != 1 || len(st.Exams) != 1 {
		t.Errorf("other resources lost")
	}
	if st.Offline {
		t.Error("single failure flipped offline")
	}
}

type fakeSnaps struct {
	data   map[string]any
	at     time.Time
	purged []string
}

func (s *fakeSnaps) Purge(_ context.Context, courseID string) error {
	s.purged = append(s.purged, courseID)
	for k := range s.data {
		if strings.HasPrefix(k, courseID+"/") {
			delete(s.data, k)
		}
	}
	return nil
}

func (s *fakeSnaps) Put(_ context.Context, courseID, resource string, v any, at time.Time) error {
	s.data[courseID+"/"+resource] = v
	s.at = at
	return nil
}

func (s *fakeSnaps) Get(_ context.Context, courseID, resource string, out any) (time.Time, error) {
	v, ok := s.data[courseID+"/"+resource]
	if !ok {
		return time.Time{}, errors.New("miss")
	}
	switch dst := out.(type) {
	case *[]model.Student:
		*dst = v.([]model.Student)
	case *[]model.Assignment:
		*dst = v.([]model.Assignment)
	case *[]model.Submission:
		*dst = v.([]model.Submission)
	case *[]model.Exam:
		*dst = v.([]model.Exam)
	case *[]model.ExamResponse:
		if vv, ok := v.([]model.ExamResponse); ok {
			*dst = vv
		}
	case *[]model.GradeColumn:
		*dst = v.([]model.GradeColumn)
	}
	return s.at, nil
}

func TestSelectCourseTotalFailureServesCache(t *testing.T) {
	f := newFakeAPI()
	f.courses = []model.Course{{ID: "c1"}}
	snaps := &fakeSnaps{data: map[string]any{
		"c1/students":    []model.Student{{ID: "s1", Name: "Ada"}},
		"c1/assignments": []model.Assignment{{ID: "a1"}},
		"c1/submissions": []model.Submission{},
		"c1/exams":       []model.Exam{{ID: "e1"}},
		"c1/responses":   []model.ExamResponse{},
		"c1/columns":     []model.GradeColumn{{ID: "col1"}},
	}, at: time.Date(2026, 4, 30, 8, 0, 0, 0, time.UTC)}
	c := NewController(f, snaps, zerolog.Nop())
	c.Schedule = (&fakeScheduler{}).schedule

	for _, k := range []string{"students", "tasks", "submissions", "exams", "columns"} {
		f.fail[k] = errors.New("backend down")
	}
	c.SelectCourse(context.Background(), "c1")
	st := c.Snapshot()
	if !st.Offline {
		t.Fatal("total failure did not switch to cached data")
	}
	if len(st.Students) != 1 || st.Students[0].Name != "Ada" {
		t.Errorf("cached students = %+v", st.Students)
	}
	if !st.CachedAt.Equal(snaps.at) {
		t.Errorf("CachedAt = %v", st.CachedAt)
	}
}

func TestBannerAutoClearAndRestart(t *testing.T) {
	c, _, sched := seedController(t)

	c.setError("first problem")
	if len(sched.durs) != 1 || sched.durs[0] != 5*time.Second {
		t.Fatalf("error timer = %v", sched.durs)
	}
	// A success replaces the error and schedules its own 3s timer.
	c.setSuccess("all good")
	if sched.durs[1] != 3*time.Second {
		t.Fatalf("success timer = %v", sched.durs)
	}
	st := c.Snapshot()
	if st.Error != "" || st.Success != "all good" {
		t.Errorf("banner state = error %q success %q", st.Error, st.Success)
	}

	// The stale error timer fires; the newer success must survive.
	sched.fire(0)
	if st = c.Snapshot(); st.Success != "all good" {
		t.Errorf("stale timer cleared the new banner")
	}
	// The success's own timer clears it.
	sched.fire(1)
	if st = c.Snapshot(); st.Success != "" {
		t.Errorf("success banner not cleared")
	}
}

func TestCreateAssignmentEnsuresColumn(t *testing.T) {
	c, _, _ := seedController(t)
	c.Init(context.Background())

	_, err := c.CreateAssignment(context.Background(), AssignmentForm{
		Title: "Lab Report", Type: "lab", DueDate: "2026-05-10", DueTime: "23:59", MaxPoints: 50,
	})
	if err != nil {
		t.Fatalf("CreateAssignment: %v", err)
	}
	st := c.Snapshot()
	if len(st.Assignments) != 2 {
		t.Errorf("assignments = %d", len(st.Assignments))
	}
	if len(st.Columns) != 2 {
		t.Fatalf("column not auto-created")
	}
	col := st.Columns[1]
	if col.SourceAssignmentID != "a-new" || col.Percentage != 10 {
		t.Errorf("auto column = %+v", col)
	}
}

func TestCreateAssignmentColumnFailureIsSwallowed(t *testing.T) {
	c, f, _ := seedController(t)
	c.Init(context.Background())
	f.fail["createColumn"] = errors.New("backend refuses")

	_, err := c.CreateAssignment(context.Background(), AssignmentForm{
		Title: "Lab Report", Type: "lab", DueDate: "2026-05-10", DueTime: "23:59",
	})
	if err != nil {
		t.Fatalf("assignment creation failed on column error: %v", err)
	}
	st := c.Snapshot()
	if len(st.Assignments) != 2 {
		t.Errorf("assignment missing after swallowed column failure")
	}
	if len(st.Columns) != 1 {
		t.Errorf("columns = %d", len(st.Columns))
	}
}

func TestCreateAssignmentValidation(t *testing.T) {
	c, _, _ := seedController(t)
	_, err := c.CreateAssignment(context.Background(), AssignmentForm{Type: "homework", DueDate: "x", DueTime: "y"})
	if err == nil {
		t.Fatal("missing title accepted")
	}
	if st := c.Snapshot(); st.Error == "" {
		t.Error("validation failure raised no banner")
	}
}

func TestUpdateGradeFailureRollsBackAndBanners(t *testing.T) {
	c, f, _ := seedController(t)
	c.Init(context.Background())
	f.fail["setGrade"] = &rest.APIError{Status: http.StatusInternalServerError, Op: "PUT /g", Message: "boom"}

	before := c.Snapshot()
	if err := c.UpdateGrade(context.Background(), "s1", "col1", "88"); err == nil {
		t.Fatal("expected failure")
	}
	after := c.Snapshot()
	if _, ok := after.Students[0].Grade("col1"); ok {
		t.Error("grade survived rollback")
	}
	if after.Students[0].FinalGrade != before.Students[0].FinalGrade {
		t.Error("final grade not restored")
	}
	if after.Error == "" {
		t.Error("no error banner")
	}
}

func TestAutoGradeAllMergesOnlyReturned(t *testing.T) {
	c, _, _ := seedController(t)
	c.Init(context.Background())

	// Fake regrades only r1 (r2 is already graded).
	if err := c.AutoGradeAll(context.Background(), "e1"); err != nil {
		t.Fatalf("AutoGradeAll: %v", err)
	}
	st := c.Snapshot()
	var r1, r2 *model.ExamResponse
	for i := range st.Responses {
		switch st.Responses[i].ID {
		case "r1":
			r1 = &st.Responses[i]
		case "r2":
			r2 = &st.Responses[i]
		}
	}
	if r1 == nil || !r1.AutoGraded {
		t.Errorf("r1 not merged: %+v", r1)
	}
	if r1.ExamTitle != "Midterm" {
		t.Errorf("merge lost exam title: %+v", r1)
	}
	if r2 == nil || r2.AutoGraded || !r2.Graded {
		t.Errorf("r2 was touched: %+v", r2)
	}
}

func TestBulkGradeSubmissionsPerItemResults(t *testing.T) {
	c, f, _ := seedController(t)
	f.submissions = []model.Submission{{ID: "sub1"}, {ID: "sub2"}, {ID: "sub3"}}
	c.Init(context.Background())
	f.fail["gradeSubmission:sub2"] = errors.New("conflict")

	out := c.BulkGradeSubmissions(context.Background(), []SubmissionGradeItem{
		{SubmissionID: "sub1", Grade: 90},
		{SubmissionID: "sub2", Grade: 80},
		{SubmissionID: "sub3", Grade: 70},
	})
	if len(out.Results) != 3 {
		t.Fatalf("results = %d", len(out.Results))
	}
	if out.Results[0].Err != nil || out.Results[2].Err != nil {
		t.Errorf("healthy items failed: %+v", out.Results)
	}
	if out.Results[1].Err == nil {
		t.Error("failing item reported success")
	}
	// The failure must not stop the batch.
	if len(f.gradeCalls) != 2 || f.gradeCalls[1] != "sub3" {
		t.Errorf("calls = %v", f.gradeCalls)
	}
	if out.Failed() != 1 {
		t.Errorf("Failed() = %d", out.Failed())
	}
}

func TestReorderQuestionsLocalOrderFollows(t *testing.T) {
	c, f, _ := seedController(t)
	f.exams[0].Questions = []model.Question{{ID: "q1"}, {ID: "q2"}, {ID: "q3"}}
	c.Init(context.Background())

	if err := c.ReorderQuestions(context.Background(), "e1", []string{"q3", "q1", "q2"}); err != nil {
		t.Fatalf("ReorderQuestions: %v", err)
	}
	st := c.Snapshot()
	qs := st.Exams[0].Questions
	if qs[0].ID != "q3" || qs[1].ID != "q1" || qs[2].ID != "q2" {
		t.Errorf("order = %s %s %s", qs[0].ID, qs[1].ID, qs[2].ID)
	}
	if qs[0].Position != 0 || qs[2].Position != 2 {
		t.Errorf("positions not renumbered: %+v", qs)
	}
}

func TestSnapshotUnaffectedByLaterQuestionEdits(t *testing.T) {
	c, f, _ := seedController(t)
	f.exams[0].Questions = []model.Question{{ID: "q1"}, {ID: "q2"}, {ID: "q3"}}
	c.Init(context.Background())

	before := c.Snapshot()

	if err := c.DeleteQuestion(context.Background(), "e1", "q2"); err != nil {
		t.Fatalf("DeleteQuestion: %v", err)
	}
	c.AddQuestion(context.Background(), "e1", model.Question{Text: "What is a B-tree?", Type: model.QuestionEssay, Points: 5})

	qs := before.Exams[0].Questions
	if len(qs) != 3 || qs[0].ID != "q1" || qs[1].ID != "q2" || qs[2].ID != "q3" {
		ids := make([]string, len(qs))
		for i, q := range qs {
			ids[i] = q.ID
		}
		t.Errorf("earlier snapshot changed after question edits: %v", ids)
	}
}

func TestRefreshCoursePurgesSnapshot(t *testing.T) {
	f := newFakeAPI()
	f.courses = []model.Course{{ID: "c1", Title: "Databases"}}
	snaps := &fakeSnaps{data: map[string]any{
		"c1/students": []model.Student{{ID: "stale", Name: "Stale"}},
	}}
	c := NewController(f, snaps, zerolog.Nop())
	c.Schedule = (&fakeScheduler{}).schedule
	c.Init(context.Background())

	if err := c.RefreshCourse(context.Background()); err != nil {
		t.Fatalf("RefreshCourse: %v", err)
	}
	if len(snaps.purged) != 1 || snaps.purged[0] != "c1" {
		t.Errorf("purged = %v", snaps.purged)
	}
	if _, ok := snaps.data["c1/students"].([]model.Student); ok {
		st := snaps.data["c1/students"].([]model.Student)
		if len(st) > 0 && st[0].ID == "stale" {
			t.Error("stale snapshot survived the refresh")
		}
	}
}

func TestLoadQuestionsReplacesLocalList(t *testing.T) {
	c, f, _ := seedController(t)
	c.Init(context.Background())

	f.exams = []model.Exam{{ID: "e1", CourseID: "c1", Title: "Midterm", Questions: []model.Question{
		{ID: "q1", Text: "What is a join?", Points: 2},
		{ID: "q2", Text: "Name two isolation levels.", Points: 3},
	}}}
	if err := c.LoadQuestions(context.Background(), "e1"); err != nil {
		t.Fatalf("LoadQuestions: %v", err)
	}
	st := c.Snapshot()
	qs := st.Exams[0].Questions
	if len(qs) != 2 || qs[0].ID != "q1" || qs[1].ID != "q2" {
		t.Errorf("questions = %+v", qs)
	}
}

func TestRefreshResponseKeepsStamps(t *testing.T) {
	c, _, _ := seedController(t)
	c.Init(context.Background())

	if err := c.RefreshResponse(context.Background(), "r1"); err != nil {
		t.Fatalf("RefreshResponse: %v", err)
	}
	st := c.Snapshot()
	for _, r := range st.Responses {
		if r.ID != "r1" {
			continue
		}
		if r.CourseID != "c1" || r.ExamTitle != "Midterm" {
			t.Errorf("stamps lost on refresh: %+v", r)
		}
		return
	}
	t.Fatal("r1 missing after refresh")
}

func TestMoveQuestionsToTopKeepsRelativeOrder(t *testing.T) {
	c, f, _ := seedController(t)
	f.exams[0].Questions = []model.Question{{ID: "q1"}, {ID: "q2"}, {ID: "q3"}, {ID: "q4"}}
	c.Init(context.Background())

	if err := c.MoveQuestionsToTop(context.Background(), "e1", []string{"q2", "q4"}); err != nil {
		t.Fatalf("MoveQuestionsToTop: %v", err)
	}
	st := c.Snapshot()
	qs := st.Exams[0].Questions
	want := []string{"q2", "q4", "q1", "q3"}
	for i, id := range want {
		if qs[i].ID != id {
			t.Fatalf("order[%d] = %s, want %s", i, qs[i].ID, id)
		}
	}
}

func TestSelectCourseResetsScope(t *testing.T) {
	c, f, _ := seedController(t)
	c.Init(context.Background())
	c.setError("leftover")

	f.students = nil
	f.assignments = nil
	f.exams = nil
	f.columns = nil
	c.SelectCourse(context.Background(), "c2")
	st := c.Snapshot()
	if st.Error != "" {
		t.Errorf("error banner survived course switch: %q", st.Error)
	}
	if len(st.Students) != 0 || len(st.Responses) != 0 {
		t.Errorf("stale course data: %+v", st)
	}
}
