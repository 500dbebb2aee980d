package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/company-profiler/internal/bulk"
	"github.com/sells-group/company-profiler/internal/model"
	"github.com/sells-group/company-profiler/internal/pipeline"
	"github.com/sells-group/company-profiler/internal/store"
)

const (
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxReportedUpload = 10
	defaultUploadMB   = 20
)

// apiServer exposes the job service over HTTP.
type apiServer struct {
	jobs        *jobService
	maxUploadMB int
}

// buildRouter mounts every route under /api behind CORS, request IDs and
// panic recovery.
func buildRouter(api *apiServer, corsOrigins []string) http.Handler {
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"message": "Hello World"})
		})
		r.Post("/scrape/url", api.scrapeURL)
		r.Post("/scrape/name", api.scrapeName)
		r.Post("/bulk/upload", api.bulkUpload)
		r.Get("/download/{jobID}", api.download)
		r.Get("/jobs", api.listJobs)
		r.Get("/jobs/{jobID}", api.getJob)

		r.Route("/session", func(r chi.Router) {
			r.Post("/start", api.startSession)
			r.Post("/add/url", api.sessionAddURL)
			r.Post("/add/name", api.sessionAddName)
			r.Get("/{sessionID}", api.getSession)
			r.Get("/{sessionID}/download", api.sessionDownload)
		})
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

type scrapeURLRequest struct {
	URL  string     `json:"url"`
	Mode model.Mode `json:"mode"`
}

type scrapeNameRequest struct {
	CompanyName string     `json:"company_name"`
	Geography   string     `json:"geography"`
	Mode        model.Mode `json:"mode"`
}

type scrapeResponse struct {
	JobID     string          `json:"job_id"`
	Status    model.JobStatus `json:"status"`
	Data      model.Profile   `json:"data"`
	ExcelPath string          `json:"excel_path"`
	CreatedAt time.Time       `json:"created_at"`
}

func (a *apiServer) scrapeURL(w http.ResponseWriter, r *http.Request) {
	var req scrapeURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	a.scrape(w, r, model.JobKindURL, model.Input{URL: req.URL, Mode: req.Mode})
}

func (a *apiServer) scrapeName(w http.ResponseWriter, r *http.Request) {
	var req scrapeNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.CompanyName) == "" {
		writeError(w, http.StatusBadRequest, "company_name is required")
		return
	}
	a.scrape(w, r, model.JobKindName, model.Input{
		CompanyName: req.CompanyName,
		Geography:   req.Geography,
		Mode:        req.Mode,
	})
}

func (a *apiServer) scrape(w http.ResponseWriter, r *http.Request, kind model.JobKind, in model.Input) {
	job, out, err := a.jobs.scrape(r.Context(), kind, in)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scrapeResponse{
		JobID:     job.ID,
		Status:    job.Status,
		Data:      out.Profile,
		ExcelPath: job.ReportPath,
		CreatedAt: job.CreatedAt,
	})
}

func (a *apiServer) bulkUpload(w http.ResponseWriter, r *http.Request) {
	limit := a.uploadLimit()
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		writeError(w, http.StatusBadRequest, "invalid upload: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload: "+err.Error())
		return
	}

	mode, err := model.ParseMode(r.FormValue("mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := a.jobs.bulkUpload(r.Context(), header.Filename, data, mode)
	switch {
	case errors.Is(err, bulk.ErrNoSuccess):
		writeError(w, http.StatusBadRequest, "No successful rows. "+err.Error())
		return
	case errors.Is(err, errBadUpload):
		writeError(w, http.StatusBadRequest, "Failed to parse file: "+err.Error())
		return
	case err != nil:
		writeFailure(w, err)
		return
	}

	errs := job.Errors
	if len(errs) > maxReportedUpload {
		errs = errs[:maxReportedUpload]
	}
	if errs == nil {
		errs = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"job_id":   job.ID,
		"status":   job.Status,
		"rows":     len(job.Profiles),
		"errors":   errs,
		"download": "/api/download/" + job.ID,
	})
}

// uploadLimit is the request body ceiling in bytes.
func (a *apiServer) uploadLimit() int64 {
	mb := int64(a.maxUploadMB)
	if mb <= 0 {
		mb = defaultUploadMB
	}
	return mb << 20
}

func (a *apiServer) download(w http.ResponseWriter, r *http.Request) {
	job, err := a.jobs.store.GetJob(r.Context(), chi.URLParam(r, "jobID"))
	if isNotFound(err) {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}
	if err != nil {
		writeFailure(w, err)
		return
	}
	serveReport(w, r, job.ReportPath)
}

func (a *apiServer) listJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := a.jobs.store.ListJobs(r.Context(), 0)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if jobs == nil {
		jobs = []model.Job{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (a *apiServer) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := a.jobs.store.GetJob(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (a *apiServer) startSession(w http.ResponseWriter, r *http.Request) {
	sess, err := a.jobs.store.CreateSession(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"session_id": sess.ID})
}

func (a *apiServer) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := a.jobs.store.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if isNotFound(err) {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		writeFailure(w, err)
		return
	}
	items := sess.Items
	if items == nil {
		items = []model.Profile{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sess.ID,
		"count":      len(items),
		"items":      items,
	})
}

func (a *apiServer) sessionAddURL(w http.ResponseWriter, r *http.Request) {
	in, ok := a.sessionInput(w, r)
	if !ok {
		return
	}
	in.URL = strings.TrimSpace(r.FormValue("url"))
	if in.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	a.sessionAdd(w, r, in)
}

func (a *apiServer) sessionAddName(w http.ResponseWriter, r *http.Request) {
	in, ok := a.sessionInput(w, r)
	if !ok {
		return
	}
	in.CompanyName = strings.TrimSpace(r.FormValue("company_name"))
	in.Geography = strings.TrimSpace(r.FormValue("geography"))
	if in.CompanyName == "" {
		writeError(w, http.StatusBadRequest, "company_name is required")
		return
	}
	a.sessionAdd(w, r, in)
}

// sessionInput reads the form fields shared by both session add endpoints.
// Both urlencoded and multipart bodies are accepted.
func (a *apiServer) sessionInput(w http.ResponseWriter, r *http.Request) (model.Input, bool) {
	err := r.ParseMultipartForm(a.uploadLimit())
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeError(w, http.StatusBadRequest, "invalid form: "+err.Error())
		return model.Input{}, false
	}
	if strings.TrimSpace(r.FormValue("session_id")) == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return model.Input{}, false
	}
	mode, err := model.ParseMode(r.FormValue("mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return model.Input{}, false
	}
	return model.Input{Mode: mode}, true
}

func (a *apiServer) sessionAdd(w http.ResponseWriter, r *http.Request, in model.Input) {
	id := strings.TrimSpace(r.FormValue("session_id"))
	count, err := a.jobs.sessionAdd(r.Context(), id, in)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": id,
		"added":      1,
		"count":      count,
	})
}

func (a *apiServer) sessionDownload(w http.ResponseWriter, r *http.Request) {
	path, err := a.jobs.sessionReport(r.Context(), chi.URLParam(r, "sessionID"))
	switch {
	case errors.Is(err, errEmptySession):
		writeError(w, http.StatusNotFound, "No items in session")
		return
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		writeFailure(w, err)
		return
	}
	serveReport(w, r, path)
}

func serveReport(w http.ResponseWriter, r *http.Request, path string) {
	if path == "" {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}
	f, err := os.Open(path)
	if err != nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}
	defer f.Close() //nolint:errcheck

	info, err := f.Stat()
	if err != nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(path)+`"`)
	http.ServeContent(w, r, filepath.Base(path), info.ModTime(), f)
}

// writeFailure maps a service error to its HTTP status.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case pipeline.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case isNotFound(err):
		writeError(w, http.StatusNotFound, "Not found")
	default:
		zap.L().Error("api: request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
