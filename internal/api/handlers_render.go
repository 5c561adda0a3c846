package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/dgallion1/mdsite/internal/slug"
	"github.com/dgallion1/mdsite/internal/source"
)

type renderRequest struct {
	Markdown string `json:"markdown"`
	Title    string `json:"title"`
}

// handleRender renders Markdown synchronously. The body is either JSON
// {"markdown": ...} or the raw Markdown text.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req renderRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, "invalid json: "+err.Error(), bodyErrorStatus(err))
			return
		}
	} else {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			jsonError(w, "failed to read body: "+err.Error(), bodyErrorStatus(err))
			return
		}
		req.Markdown = string(data)
		req.Title = r.URL.Query().Get("title")
	}

	if strings.TrimSpace(req.Markdown) == "" {
		jsonError(w, "markdown is required", http.StatusBadRequest)
		return
	}

	doc, err := (&source.MarkdownImporter{}).Import(strings.NewReader(req.Markdown), "untitled.md")
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if req.Title != "" {
		doc.Title = req.Title
		if doc.Meta.Slug == "" {
			doc.Slug = slug.Make(req.Title)
		}
	}

	result, err := s.orchestrator.Renderer().Render(doc)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	resp := map[string]any{
		"html":   result.HTML,
		"title":  result.Title,
		"slug":   result.Slug,
		"blocks": result.Blocks,
		"links":  result.Links,
	}
	if r.URL.Query().Get("index") == "true" {
		resp["index"] = result.Index
	}
	writeJSON(w, http.StatusOK, resp)
}

func bodyErrorStatus(err error) int {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
