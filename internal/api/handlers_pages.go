package api

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/mdsite/internal/sitestore"
	"github.com/dgallion1/mdsite/internal/slug"
)

const defaultPageLimit = 200

type pageSummary struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	ContentHash string    `json:"content_hash"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s *Server) store(w http.ResponseWriter) *sitestore.Client {
	store := s.orchestrator.Store()
	if store == nil {
		jsonError(w, "publishing is disabled", http.StatusServiceUnavailable)
	}
	return store
}

// pageSlug reads the slug path parameter; only canonical slugs are accepted.
func pageSlug(w http.ResponseWriter, r *http.Request) (string, bool) {
	s := chi.URLParam(r, "slug")
	if s == "" || slug.Make(s) != s {
		jsonError(w, "invalid slug", http.StatusBadRequest)
		return "", false
	}
	return s, true
}

// handleListPages lists published pages of the configured site.
func (s *Server) handleListPages(w http.ResponseWriter, r *http.Request) {
	store := s.store(w)
	if store == nil {
		return
	}
	limit := defaultPageLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := store.ListPages(r.Context(), sitestore.PagesPrefix(s.cfg.SiteName), limit)
	if err != nil {
		jsonError(w, "failed to list pages: "+err.Error(), http.StatusBadGateway)
		return
	}

	pages := make([]pageSummary, 0, len(entries))
	for _, e := range entries {
		pages = append(pages, pageSummary{
			Slug:        e.Page.Slug,
			Title:       e.Page.Title,
			ContentHash: e.Page.ContentHash,
			UpdatedAt:   e.Page.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"site": s.cfg.SiteName, "pages": pages})
}

// handleGetPage returns a page as JSON, or its HTML with ?format=html.
func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	store := s.store(w)
	if store == nil {
		return
	}
	name, ok := pageSlug(w, r)
	if !ok {
		return
	}

	page, err := store.GetPage(r.Context(), sitestore.PageKey(s.cfg.SiteName, name))
	if err != nil {
		jsonError(w, "failed to get page: "+err.Error(), http.StatusBadGateway)
		return
	}
	if page == nil {
		jsonError(w, "page not found", http.StatusNotFound)
		return
	}

	if r.URL.Query().Get("format") == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, page.HTML)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// handleDeletePage deletes a page and its dedup reference.
func (s *Server) handleDeletePage(w http.ResponseWriter, r *http.Request) {
	store := s.store(w)
	if store == nil {
		return
	}
	name, ok := pageSlug(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	key := sitestore.PageKey(s.cfg.SiteName, name)
	page, err := store.GetPage(ctx, key)
	if err != nil {
		jsonError(w, "failed to get page: "+err.Error(), http.StatusBadGateway)
		return
	}
	if page == nil {
		jsonError(w, "page not found", http.StatusNotFound)
		return
	}
	if err := store.DeletePage(ctx, key); err != nil {
		jsonError(w, "failed to delete page: "+err.Error(), http.StatusBadGateway)
		return
	}

	refDeleted := s.deleteHashRef(ctx, store, page)
	writeJSON(w, http.StatusOK, map[string]any{
		"slug":        name,
		"deleted":     true,
		"ref_deleted": refDeleted,
	})
}

// deleteHashRef removes the dedup reference if it still points at page.
func (s *Server) deleteHashRef(ctx context.Context, store *sitestore.Client, page *sitestore.Page) bool {
	if page.ContentHash == "" {
		return false
	}
	key := sitestore.HashKey(s.cfg.SiteName, page.ContentHash)
	ref, err := store.GetRef(ctx, key)
	if err != nil || ref == nil || ref.Slug != page.Slug {
		return false
	}
	if err := store.DeleteRef(ctx, key); err != nil {
		s.log.Warn("hash ref delete failed", "key", key, "error", err)
		return false
	}
	return true
}
