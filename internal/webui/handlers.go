package webui

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/campusgrid/lectern/internal/backend"
	"github.com/campusgrid/lectern/internal/dashboard"
	"github.com/campusgrid/lectern/internal/export"
	"github.com/campusgrid/lectern/internal/grading"
	"github.com/campusgrid/lectern/internal/model"
)

// viewData is the payload every page template receives.
type viewData struct {
	State   dashboard.State
	Session SessionInfo
	Page    any
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, page any) {
	data := viewData{
		State:   s.ctrl.Snapshot(),
		Session: sessionInfo(r, s.cfg.AuthCookieName, s.clock()),
		Page:    page,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error().Str("template", name).Err(err).Msg("render failed")
	}
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	st := s.ctrl.Snapshot()
	if len(st.Courses) == 0 {
		if err := s.ctrl.Init(r.Context()); err != nil {
			s.log.Warn().Err(err).Msg("dashboard init failed")
		}
	}
	s.render(w, r, "layout.html", nil)
}

func (s *Server) handleSelectCourse(w http.ResponseWriter, r *http.Request) {
	if id := r.FormValue("courseId"); id != "" {
		s.ctrl.SelectCourse(r.Context(), id)
	}
	redirectHome(w, r)
}

func (s *Server) handleRefreshCourse(w http.ResponseWriter, r *http.Request) {
	s.ctrl.RefreshCourse(r.Context())
	redirectHome(w, r)
}

func (s *Server) handleSetTab(w http.ResponseWriter, r *http.Request) {
	s.ctrl.SetTab(r.FormValue("tab"))
	redirectHome(w, r)
}

func (s *Server) handleClearBanners(w http.ResponseWriter, r *http.Request) {
	s.ctrl.ClearBanners()
	redirectHome(w, r)
}

// Assignments.

func assignmentFormFrom(r *http.Request) dashboard.AssignmentForm {
	maxPoints, _ := strconv.ParseFloat(r.FormValue("maxPoints"), 64)
	return dashboard.AssignmentForm{
		ID:          chi.URLParam(r, "id"),
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: r.FormValue("description"),
		Type:        r.FormValue("type"),
		DueDate:     r.FormValue("dueDate"),
		DueTime:     r.FormValue("dueTime"),
		MaxPoints:   maxPoints,
	}
}

func (s *Server) handleCreateAssignment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		r.ParseForm()
	}
	created, err := s.ctrl.CreateAssignment(r.Context(), assignmentFormFrom(r))
	if err == nil && created != nil {
		// A file picked during creation is uploaded once the assignment
		// exists; the upload failing must not undo the assignment.
		if file, hdr, ferr := r.FormFile("file"); ferr == nil {
			defer file.Close()
			s.ctrl.UploadAssignmentFile(r.Context(), created.ID, r.FormValue("fileDescription"), hdr.Filename, hdr.Size, file)
		}
	}
	redirectHome(w, r)
}

func (s *Server) handleUpdateAssignment(w http.ResponseWriter, r *http.Request) {
	s.ctrl.UpdateAssignment(r.Context(), assignmentFormFrom(r))
	redirectHome(w, r)
}

func (s *Server) handleDeleteAssignment(w http.ResponseWriter, r *http.Request) {
	if r.FormValue("confirm") != "yes" {
		s.render(w, r, "confirm.html", map[string]string{
			"What":   "assignment",
			"ID":     chi.URLParam(r, "id"),
			"Action": "/assignments/" + chi.URLParam(r, "id") + "/delete",
			"Note":   "Its grade column and all recorded grades for it will be removed as well.",
		})
		return
	}
	s.ctrl.DeleteAssignment(r.Context(), chi.URLParam(r, "id"))
	redirectHome(w, r)
}

func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		http.Error(w, "upload too large", http.StatusRequestEntityTooLarge)
		return
	}
	file, hdr, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()
	s.ctrl.UploadAssignmentFile(r.Context(), chi.URLParam(r, "id"), r.FormValue("description"), hdr.Filename, hdr.Size, file)
	redirectHome(w, r)
}

// Grades.

func (s *Server) handleUpdateGrade(w http.ResponseWriter, r *http.Request) {
	s.ctrl.UpdateGrade(r.Context(), r.FormValue("studentId"), r.FormValue("columnId"), r.FormValue("grade"))
	redirectHome(w, r)
}

func (s *Server) handleAddColumn(w http.ResponseWriter, r *http.Request) {
	pct, _ := strconv.ParseFloat(r.FormValue("percentage"), 64)
	maxPoints, _ := strconv.ParseFloat(r.FormValue("maxPoints"), 64)
	s.ctrl.AddColumn(r.Context(), model.GradeColumn{
		Name:       strings.TrimSpace(r.FormValue("name")),
		Type:       r.FormValue("type"),
		Percentage: pct,
		MaxPoints:  maxPoints,
	})
	redirectHome(w, r)
}

func (s *Server) handleUpdateColumn(w http.ResponseWriter, r *http.Request) {
	pct, _ := strconv.ParseFloat(r.FormValue("percentage"), 64)
	maxPoints, _ := strconv.ParseFloat(r.FormValue("maxPoints"), 64)
	s.ctrl.UpdateColumn(r.Context(), model.GradeColumn{
		ID:         chi.URLParam(r, "id"),
		CourseID:   r.FormValue("courseId"),
		Name:       strings.TrimSpace(r.FormValue("name")),
		Type:       r.FormValue("type"),
		Percentage: pct,
		MaxPoints:  maxPoints,
	})
	redirectHome(w, r)
}

func (s *Server) handleDeleteColumn(w http.ResponseWriter, r *http.Request) {
	if r.FormValue("confirm") != "yes" {
		s.render(w, r, "confirm.html", map[string]string{
			"What":   "grade column",
			"ID":     chi.URLParam(r, "id"),
			"Action": "/grades/columns/" + chi.URLParam(r, "id") + "/delete",
			"Note":   "All grades recorded in this column will be removed.",
		})
		return
	}
	s.ctrl.DeleteColumn(r.Context(), chi.URLParam(r, "id"))
	redirectHome(w, r)
}

func (s *Server) handleExportGrades(w http.ResponseWriter, r *http.Request) {
	st := s.ctrl.Snapshot()
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="grades.csv"`)
	if err := export.Grades(w, st.Students, st.Columns); err != nil {
		s.log.Error().Err(err).Msg("grades export failed")
	}
}

// Exams.

func examFrom(r *http.Request) model.Exam {
	duration, _ := strconv.Atoi(r.FormValue("durationMinutes"))
	attempts, _ := strconv.Atoi(r.FormValue("maxAttempts"))
	pass, _ := strconv.ParseFloat(r.FormValue("passPercentage"), 64)
	return model.Exam{
		ID:             chi.URLParam(r, "id"),
		Title:          strings.TrimSpace(r.FormValue("title")),
		Description:    r.FormValue("description"),
		DurationMins:   duration,
		MaxAttempts:    attempts,
		PassPercentage: pass,
	}
}

func (s *Server) handleCreateExam(w http.ResponseWriter, r *http.Request) {
	s.ctrl.CreateExam(r.Context(), examFrom(r))
	redirectHome(w, r)
}

func (s *Server) handleUpdateExam(w http.ResponseWriter, r *http.Request) {
	s.ctrl.UpdateExam(r.Context(), examFrom(r))
	redirectHome(w, r)
}

func (s *Server) handleDeleteExam(w http.ResponseWriter, r *http.Request) {
	if r.FormValue("confirm") != "yes" {
		s.render(w, r, "confirm.html", map[string]string{
			"What":   "exam",
			"ID":     chi.URLParam(r, "id"),
			"Action": "/exams/" + chi.URLParam(r, "id") + "/delete",
			"Note":   "All student responses for this exam will no longer be shown.",
		})
		return
	}
	s.ctrl.DeleteExam(r.Context(), chi.URLParam(r, "id"))
	redirectHome(w, r)
}

func (s *Server) handlePublishExam(w http.ResponseWriter, r *http.Request) {
	s.ctrl.SetExamPublished(r.Context(), chi.URLParam(r, "id"), true)
	redirectHome(w, r)
}

func (s *Server) handleUnpublishExam(w http.ResponseWriter, r *http.Request) {
	s.ctrl.SetExamPublished(r.Context(), chi.URLParam(r, "id"), false)
	redirectHome(w, r)
}

func (s *Server) handleAutoGradeAll(w http.ResponseWriter, r *http.Request) {
	s.ctrl.AutoGradeAll(r.Context(), chi.URLParam(r, "id"))
	redirectHome(w, r)
}

// Questions.

type questionManagerPage struct {
	Exam   model.Exam
	Status *backend.ExamStatus
}

func (s *Server) handleQuestionManager(w http.ResponseWriter, r *http.Request) {
	examID := chi.URLParam(r, "id")
	s.ctrl.LoadQuestions(r.Context(), examID)
	// Live status is advisory; the page renders without it.
	status, err := s.api.ExamStatusFor(r.Context(), examID)
	if err != nil {
		status = nil
	}
	st := s.ctrl.Snapshot()
	for _, e := range st.Exams {
		if e.ID == examID {
			s.render(w, r, "questions.html", questionManagerPage{Exam: e, Status: status})
			return
		}
	}
	http.NotFound(w, r)
}

func questionFrom(r *http.Request) model.Question {
	points, _ := strconv.ParseFloat(r.FormValue("points"), 64)
	q := model.Question{
		ID:            chi.URLParam(r, "qid"),
		Type:          r.FormValue("type"),
		Text:          strings.TrimSpace(r.FormValue("text")),
		Points:        points,
		Explanation:   r.FormValue("explanation"),
		Required:      r.FormValue("required") == "on",
		CorrectAnswer: r.FormValue("correctAnswer"),
	}
	for _, opt := range r.Form["options"] {
		q.Options = append(q.Options, opt)
	}
	if v := r.FormValue("correctIndex"); v != "" {
		if idx, err := strconv.Atoi(v); err == nil {
			q.CorrectIndex = &idx
		}
	}
	if v := r.FormValue("timeLimitSeconds"); v != "" {
		q.TimeLimitSecs, _ = strconv.Atoi(v)
	}
	return q
}

func (s *Server) questionsRedirect(w http.ResponseWriter, r *http.Request, examID string) {
	http.Redirect(w, r, "/exams/"+examID+"/questions", http.StatusSeeOther)
}

func (s *Server) handleAddQuestion(w http.ResponseWriter, r *http.Request) {
	r.ParseForm()
	examID := chi.URLParam(r, "id")
	s.ctrl.AddQuestion(r.Context(), examID, questionFrom(r))
	s.questionsRedirect(w, r, examID)
}

func (s *Server) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	r.ParseForm()
	examID := chi.URLParam(r, "id")
	s.ctrl.UpdateQuestion(r.Context(), examID, questionFrom(r))
	s.questionsRedirect(w, r, examID)
}

func (s *Server) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	examID := chi.URLParam(r, "id")
	s.ctrl.DeleteQuestion(r.Context(), examID, chi.URLParam(r, "qid"))
	s.questionsRedirect(w, r, examID)
}

func (s *Server) handleReorderQuestions(w http.ResponseWriter, r *http.Request) {
	r.ParseForm()
	examID := chi.URLParam(r, "id")
	order := splitIDs(r.FormValue("order"))
	s.ctrl.ReorderQuestions(r.Context(), examID, order)
	s.questionsRedirect(w, r, examID)
}

func (s *Server) handleBulkDeleteQuestions(w http.ResponseWriter, r *http.Request) {
	r.ParseForm()
	examID := chi.URLParam(r, "id")
	s.ctrl.BulkDeleteQuestions(r.Context(), examID, r.Form["selected"])
	s.questionsRedirect(w, r, examID)
}

func (s *Server) handleMoveQuestionsToTop(w http.ResponseWriter, r *http.Request) {
	r.ParseForm()
	examID := chi.URLParam(r, "id")
	s.ctrl.MoveQuestionsToTop(r.Context(), examID, r.Form["selected"])
	s.questionsRedirect(w, r, examID)
}

func (s *Server) handleBulkSetPoints(w http.ResponseWriter, r *http.Request) {
	r.ParseForm()
	examID := chi.URLParam(r, "id")
	points, _ := strconv.ParseFloat(r.FormValue("points"), 64)
	s.ctrl.BulkSetQuestionPoints(r.Context(), examID, r.Form["selected"], points)
	s.questionsRedirect(w, r, examID)
}

// Submissions.

func (s *Server) handleGradeSubmission(w http.ResponseWriter, r *http.Request) {
	grade, err := strconv.ParseFloat(r.FormValue("grade"), 64)
	if err != nil {
		redirectHome(w, r)
		return
	}
	s.ctrl.GradeSubmissionCmd(r.Context(), chi.URLParam(r, "id"), grade, r.FormValue("feedback"))
	redirectHome(w, r)
}

func (s *Server) handleBulkGradeSubmissions(w http.ResponseWriter, r *http.Request) {
	r.ParseForm()
	var items []dashboard.SubmissionGradeItem
	feedback := r.FormValue("feedback")
	grade, err := strconv.ParseFloat(r.FormValue("grade"), 64)
	if err != nil {
		redirectHome(w, r)
		return
	}
	for _, id := range r.Form["selected"] {
		items = append(items, dashboard.SubmissionGradeItem{SubmissionID: id, Grade: grade, Feedback: feedback})
	}
	s.ctrl.BulkGradeSubmissions(r.Context(), items)
	redirectHome(w, r)
}

// Exam responses.

type gradingSheetPage struct {
	Response  model.ExamResponse
	Questions []model.Question
	Status    string
	Total     float64
	Max       float64
	Pct       float64
}

func (s *Server) findResponse(id string) (model.ExamResponse, []model.Question, bool) {
	st := s.ctrl.Snapshot()
	for _, resp := range st.Responses {
		if resp.ID != id {
			continue
		}
		for _, e := range st.Exams {
			if e.ID == resp.ExamID {
				return resp, e.Questions, true
			}
		}
		return resp, nil, true
	}
	return model.ExamResponse{}, nil, false
}

func (s *Server) handleGradingSheet(w http.ResponseWriter, r *http.Request) {
	s.ctrl.RefreshResponse(r.Context(), chi.URLParam(r, "id"))
	resp, questions, ok := s.findResponse(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	sheet := grading.NewSheet(resp, questions)
	if r.URL.Query().Get("suggest") == "1" {
		sheet.SuggestMissing(grading.NewSuggester())
	}
	total, max, pct := sheet.Totals()
	s.render(w, r, "grading.html", gradingSheetPage{
		Response:  resp,
		Questions: questions,
		Status:    grading.Status(&resp),
		Total:     total,
		Max:       max,
		Pct:       pct,
	})
}

func (s *Server) handleSaveResponseGrade(w http.ResponseWriter, r *http.Request) {
	r.ParseForm()
	resp, questions, ok := s.findResponse(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	sheet := grading.NewSheet(resp, questions)
	for _, q := range questions {
		raw := r.FormValue("score_" + q.ID)
		if raw == "" {
			continue
		}
		score, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		if err := sheet.SetScore(q.ID, score); err != nil {
			s.log.Debug().Str("question", q.ID).Err(err).Msg("score rejected")
		}
	}
	sheet.SetFeedback(r.FormValue("feedback"))
	sheet.SetFlagged(r.FormValue("flagged") == "on")
	s.ctrl.SaveResponseGrade(r.Context(), sheet.Payload())
	redirectHome(w, r)
}

func (s *Server) handleAutoGradeResponse(w http.ResponseWriter, r *http.Request) {
	s.ctrl.AutoGradeResponse(r.Context(), chi.URLParam(r, "id"))
	redirectHome(w, r)
}

func (s *Server) handleBulkAutoGradeResponses(w http.ResponseWriter, r *http.Request) {
	r.ParseForm()
	s.ctrl.BulkAutoGradeResponses(r.Context(), r.Form["selected"])
	redirectHome(w, r)
}

func (s *Server) handleFlagResponse(w http.ResponseWriter, r *http.Request) {
	s.ctrl.SetResponseFlag(r.Context(), chi.URLParam(r, "id"), true)
	redirectHome(w, r)
}

func (s *Server) handleUnflagResponse(w http.ResponseWriter, r *http.Request) {
	s.ctrl.SetResponseFlag(r.Context(), chi.URLParam(r, "id"), false)
	redirectHome(w, r)
}

func (s *Server) handleExportResponses(w http.ResponseWriter, r *http.Request) {
	st := s.ctrl.Snapshot()
	responses := st.Responses
	if examID := r.URL.Query().Get("examId"); examID != "" {
		filtered := responses[:0:0]
		for _, resp := range responses {
			if resp.ExamID == examID {
				filtered = append(filtered, resp)
			}
		}
		responses = filtered
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="exam-responses.csv"`)
	if err := export.Responses(w, responses); err != nil {
		s.log.Error().Err(err).Msg("responses export failed")
	}
}

// Students.

func (s *Server) handleAddStudent(w http.ResponseWriter, r *http.Request) {
	s.ctrl.AddStudent(r.Context(), model.Student{
		Name:  strings.TrimSpace(r.FormValue("name")),
		Email: strings.TrimSpace(r.FormValue("email")),
	})
	redirectHome(w, r)
}

func (s *Server) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	s.ctrl.UpdateStudent(r.Context(), model.Student{
		ID:    chi.URLParam(r, "id"),
		Name:  strings.TrimSpace(r.FormValue("name")),
		Email: strings.TrimSpace(r.FormValue("email")),
	})
	redirectHome(w, r)
}

func (s *Server) handleRemoveStudent(w http.ResponseWriter, r *http.Request) {
	if r.FormValue("confirm") != "yes" {
		s.render(w, r, "confirm.html", map[string]string{
			"What":   "student",
			"ID":     chi.URLParam(r, "id"),
			"Action": "/students/" + chi.URLParam(r, "id") + "/remove",
			"Note":   "The student will be removed from this course only.",
		})
		return
	}
	s.ctrl.RemoveStudent(r.Context(), chi.URLParam(r, "id"))
	redirectHome(w, r)
}

// Files: the dashboard proxies file bytes so the browser never needs the
// backend token directly.

func (s *Server) proxyFile(w http.ResponseWriter, r *http.Request, fetch func() (io.ReadCloser, string, error), disposition string) {
	body, contentType, err := fetch()
	if err != nil {
		http.Error(w, "file unavailable", http.StatusBadGateway)
		return
	}
	defer body.Close()
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if disposition != "" {
		w.Header().Set("Content-Disposition", disposition)
	}
	if _, err := io.Copy(w, body); err != nil {
		s.log.Debug().Err(err).Msg("file stream interrupted")
	}
}

func (s *Server) handleViewFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	api := s.requestAPI()
	s.proxyFile(w, r, func() (io.ReadCloser, string, error) {
		return api.ViewFile(r.Context(), id)
	}, "")
}

func (s *Server) handleDownloadFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	api := s.requestAPI()
	s.proxyFile(w, r, func() (io.ReadCloser, string, error) {
		return api.DownloadFile(r.Context(), id)
	}, fmt.Sprintf("attachment; filename=%q", id))
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	api := s.requestAPI()
	if err := api.DeleteFile(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.log.Warn().Err(err).Msg("file delete failed")
	}
	redirectHome(w, r)
}

// requestAPI returns the backend client; its token source already reads from
// the request context.
func (s *Server) requestAPI() *backend.Client { return s.api }

func splitIDs(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
