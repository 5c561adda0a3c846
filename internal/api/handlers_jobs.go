package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/mdsite/internal/pipeline"
	"github.com/dgallion1/mdsite/internal/slug"
	"github.com/dgallion1/mdsite/internal/source"
)

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), bodyErrorStatus(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		jsonError(w, "file is required", http.StatusBadRequest)
		return
	}

	job, code, err := s.newJob(files[0])
	if err != nil {
		jsonError(w, err.Error(), code)
		return
	}
	job.Title = strings.TrimSpace(r.FormValue("title"))
	if v := r.FormValue("slug"); v != "" {
		job.Slug = slug.Make(v)
	}
	job.Force, _ = strconv.ParseBool(r.FormValue("force"))

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, submitted(job))
}

func (s *Server) handleBatchSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), bodyErrorStatus(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}
	force, _ := strconv.ParseBool(r.FormValue("force"))

	results := make([]map[string]any, 0, len(files))
	for _, fh := range files {
		job, _, err := s.newJob(fh)
		if err != nil {
			results = append(results, map[string]any{
				"filename": sanitizeFilename(fh.Filename),
				"error":    err.Error(),
			})
			continue
		}
		job.Force = force

		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, map[string]any{
				"filename": job.Filename,
				"job_id":   job.ID,
				"error":    err.Error(),
			})
			continue
		}
		results = append(results, submitted(job))
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": results})
}

// newJob reads an uploaded file into a queued job. On failure it also
// returns the HTTP status to answer with.
func (s *Server) newJob(fh *multipart.FileHeader) (*pipeline.Job, int, error) {
	filename := sanitizeFilename(fh.Filename)
	if !source.IsSupportedExtension(filename) {
		return nil, http.StatusBadRequest, fmt.Errorf("unsupported file type: %q", filepath.Ext(filename))
	}

	f, err := fh.Open()
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to open file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to read file")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}
	return pipeline.NewJob(filename, data), 0, nil
}

func submitted(job *pipeline.Job) map[string]any {
	snap := job.Snapshot()
	return map[string]any{
		"job_id":   snap.ID,
		"filename": snap.Filename,
		"status":   snap.Status,
		"poll_url": "/api/jobs/" + snap.ID,
	}
}

func (s *Server) jobFromPath(w http.ResponseWriter, r *http.Request) *pipeline.Job {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
	}
	return job
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.jobFromPath(w, r)
	if job == nil {
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleJobHTML(w http.ResponseWriter, r *http.Request) {
	job := s.jobFromPath(w, r)
	if job == nil {
		return
	}
	result := job.Result()
	if result == nil {
		jsonError(w, fmt.Sprintf("job is %s", job.Snapshot().Status), http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, result.HTML)
}

func (s *Server) handleJobIndex(w http.ResponseWriter, r *http.Request) {
	job := s.jobFromPath(w, r)
	if job == nil {
		return
	}
	result := job.Result()
	if result == nil {
		jsonError(w, fmt.Sprintf("job is %s", job.Snapshot().Status), http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"job_id": job.ID,
		"slug":   result.Slug,
		"index":  pipeline.ResultIndex(result),
	})
}

func sanitizeFilename(name string) string {
	// Uploads from Windows clients may carry backslash paths.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
