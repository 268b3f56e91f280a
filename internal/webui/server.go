// Package webui serves the lecturer dashboard: server-rendered tabs over the
// controller's state, form-posted commands, CSV downloads and file proxying.
package webui

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/campusgrid/lectern/internal/backend"
	"github.com/campusgrid/lectern/internal/config"
	"github.com/campusgrid/lectern/internal/dashboard"
	"github.com/campusgrid/lectern/internal/grading"
	"github.com/campusgrid/lectern/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

type Server struct {
	cfg   config.Config
	ctrl  *dashboard.Controller
	api   *backend.Client
	tmpl  *template.Template
	log   zerolog.Logger
	clock func() time.Time
}

func NewServer(cfg config.Config, ctrl *dashboard.Controller, api *backend.Client, log zerolog.Logger) (*Server, error) {
	tmpl, err := template.New("lectern").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:   cfg,
		ctrl:  ctrl,
		api:   api,
		tmpl:  tmpl,
		log:   log,
		clock: time.Now,
	}, nil
}

type tabLink struct {
	Key   string
	Label string
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"statusLabel": grading.StatusLabel,
		"gradingStatus": func(r model.ExamResponse) string {
			return grading.Status(&r)
		},
		"tabs": func() []tabLink {
			return []tabLink{
				{dashboard.TabGrades, "Grades"},
				{dashboard.TabAssignments, "Assignments"},
				{dashboard.TabExams, "Exams"},
				{dashboard.TabSubmissions, "Submissions"},
				{dashboard.TabResponses, "Exam Responses"},
			}
		},
		"fmtTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006 15:04")
		},
		"pct": func(v float64) string { return trimFloat(v) + "%" },
		"num": trimFloat,
		"deref": func(v *float64) float64 {
			if v == nil {
				return 0
			}
			return *v
		},
		"cell": func(grades map[string]*float64, colID string) string {
			if v, ok := grades[colID]; ok && v != nil {
				return trimFloat(*v)
			}
			return ""
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(basicAuth(s.cfg.DashboardUser, s.cfg.DashboardPassHash))
	r.Use(withBackendToken(s.cfg.AuthCookieName))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/", s.handleDashboard)
	r.Post("/courses/select", s.handleSelectCourse)
	r.Post("/courses/refresh", s.handleRefreshCourse)
	r.Post("/tab", s.handleSetTab)
	r.Post("/banners/clear", s.handleClearBanners)

	r.Route("/assignments", func(r chi.Router) {
		r.Post("/", s.handleCreateAssignment)
		r.Post("/{id}", s.handleUpdateAssignment)
		r.Post("/{id}/delete", s.handleDeleteAssignment)
		r.Post("/{id}/file", s.handleUploadFile)
	})

	r.Route("/grades", func(r chi.Router) {
		r.Post("/cell", s.handleUpdateGrade)
		r.Post("/columns", s.handleAddColumn)
		r.Post("/columns/{id}", s.handleUpdateColumn)
		r.Post("/columns/{id}/delete", s.handleDeleteColumn)
		r.Get("/export.csv", s.handleExportGrades)
	})

	r.Route("/exams", func(r chi.Router) {
		r.Post("/", s.handleCreateExam)
		r.Post("/{id}", s.handleUpdateExam)
		r.Post("/{id}/delete", s.handleDeleteExam)
		r.Post("/{id}/publish", s.handlePublishExam)
		r.Post("/{id}/unpublish", s.handleUnpublishExam)
		r.Post("/{id}/auto-grade-all", s.handleAutoGradeAll)
		r.Get("/{id}/questions", s.handleQuestionManager)
		r.Post("/{id}/questions", s.handleAddQuestion)
		r.Post("/{id}/questions/reorder", s.handleReorderQuestions)
		r.Post("/{id}/questions/bulk-delete", s.handleBulkDeleteQuestions)
		r.Post("/{id}/questions/bulk-points", s.handleBulkSetPoints)
		r.Post("/{id}/questions/move-top", s.handleMoveQuestionsToTop)
		r.Post("/{id}/questions/{qid}", s.handleUpdateQuestion)
		r.Post("/{id}/questions/{qid}/delete", s.handleDeleteQuestion)
	})

	r.Route("/submissions", func(r chi.Router) {
		r.Post("/{id}/grade", s.handleGradeSubmission)
		r.Post("/bulk-grade", s.handleBulkGradeSubmissions)
	})

	r.Route("/responses", func(r chi.Router) {
		r.Get("/{id}/grade", s.handleGradingSheet)
		r.Post("/{id}/grade", s.handleSaveResponseGrade)
		r.Post("/{id}/auto-grade", s.handleAutoGradeResponse)
		r.Post("/{id}/flag", s.handleFlagResponse)
		r.Post("/{id}/unflag", s.handleUnflagResponse)
		r.Post("/bulk-auto-grade", s.handleBulkAutoGradeResponses)
		r.Get("/export.csv", s.handleExportResponses)
	})

	r.Route("/students", func(r chi.Router) {
		r.Post("/", s.handleAddStudent)
		r.Post("/{id}", s.handleUpdateStudent)
		r.Post("/{id}/remove", s.handleRemoveStudent)
	})

	r.Route("/files", func(r chi.Router) {
		r.Get("/{id}/view", s.handleViewFile)
		r.Get("/{id}/download", s.handleDownloadFile)
		r.Post("/{id}/delete", s.handleDeleteFile)
	})

	return r
}

// requestLogger emits one structured line per request.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("elapsed", time.Since(start)).
				Str("reqId", middleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}
