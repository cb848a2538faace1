// Package toolgateway serves a tool registry over HTTP, so the engine can
// run its backends in a separate process and route to them in gateway mode.
package toolgateway

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tripsmith/tripsmith/internal/toolrouter"
)

type Server struct {
	Router   *chi.Mux
	Addr     string
	registry toolrouter.Registry
}

// New builds the gateway server. When apiKey is non-empty every /tools
// request must carry it as a bearer token.
func New(addr, apiKey string, registry toolrouter.Registry) *Server {
	s := &Server{
		Addr:     addr,
		registry: registry,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Get("/tools", s.handleCatalog)
	r.Group(func(r chi.Router) {
		if apiKey != "" {
			r.Use(bearerAuth(apiKey))
		}
		r.Post("/tools/{tool}", s.handleCall)
	})

	s.Router = r
	return s
}

func (s *Server) Start() error {
	log.Printf("Tool gateway listening on %s (%d backends)", s.Addr, len(s.registry))
	return http.ListenAndServe(s.Addr, s.Router)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	prefixes := make([]string, 0, len(s.registry))
	for p := range s.registry {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"registered": prefixes,
	})
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": s.registry.Catalog()})
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	tool := chi.URLParam(r, "tool")
	prefix, method := toolrouter.SplitName(tool)

	backend, ok := s.registry[prefix]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": fmt.Sprintf("no backend for prefix %q", prefix),
		})
		return
	}

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": fmt.Sprintf("invalid payload: %v", err),
		})
		return
	}

	start := time.Now()
	result, err := backend.Handle(r.Context(), method, payload)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tool":       tool,
		"result":     result,
		"latency_ms": time.Since(start).Milliseconds(),
	})
}

func bearerAuth(apiKey string) func(http.Handler) http.Handler {
	want := "Bearer " + apiKey
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != want {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
