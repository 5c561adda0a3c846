// Package storetest provides an in-memory page store server for tests.
package storetest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Server is an in-memory stand-in for the page store HTTP API.
type Server struct {
	*httptest.Server

	mu     sync.Mutex
	values map[string]json.RawMessage

	failNext   int
	failStatus int
	requests   int
}

// NewServer starts a server that accepts apiKey as bearer token.
func NewServer(apiKey string) *Server {
	s := &Server{values: make(map[string]json.RawMessage)}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handle(w, r, apiKey)
	}))
	return s
}

// FailNext makes the next n requests fail with status.
func (s *Server) FailNext(n, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext, s.failStatus = n, status
}

// Requests reports how many requests were served.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// Keys lists stored keys in order.
func (s *Server) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request, apiKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++

	if r.Header.Get("Authorization") != "Bearer "+apiKey {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if s.failNext > 0 {
		s.failNext--
		http.Error(w, "injected failure", s.failStatus)
		return
	}

	key, ok := strings.CutPrefix(r.URL.Path, "/kv/")
	if !ok {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodPut:
		var body struct {
			Value json.RawMessage `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.values[key] = body.Value
		w.WriteHeader(http.StatusCreated)
	case http.MethodGet:
		if prefix, isList := strings.CutSuffix(key, "/*"); isList {
			s.list(w, r, prefix)
			return
		}
		v, ok := s.values[key]
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, map[string]any{"key_path": key, "value": v})
	case http.MethodDelete:
		if _, ok := s.values[key]; !ok {
			http.NotFound(w, r)
			return
		}
		delete(s.values, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) list(w http.ResponseWriter, r *http.Request, prefix string) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	var keys []string
	for k := range s.values {
		if strings.HasPrefix(k, prefix+"/") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	nodes := make([]map[string]any, 0, len(keys))
	for _, k := range keys {
		nodes = append(nodes, map[string]any{"key_path": k, "value": s.values[k]})
	}
	writeJSON(w, map[string]any{"nodes": nodes})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
