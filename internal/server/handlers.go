package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"storysmith/internal/core"
	"storysmith/internal/llm"
	"storysmith/internal/quality"
	"storysmith/internal/render"
	"storysmith/internal/store"
	"storysmith/internal/story"
)

// maxRequestBytes bounds request bodies; Fix submissions carry base64 evidence images.
const maxRequestBytes = 20 << 20

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ValidationResponse reports form problems in the order they were found.
type ValidationResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// StoryListResponse wraps the session's stories in creation order.
type StoryListResponse struct {
	Stories []map[string]any `json:"stories"`
	Total   int              `json:"total"`
}

// RegenerateRequest names the section to rewrite.
type RegenerateRequest struct {
	Section string `json:"section"`
}

// handleHealth handles the /health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	if _, err := s.repo.List(r.Context()); err != nil {
		checks["store"] = "error"
		s.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unhealthy",
			Checks: checks,
		})
		return
	}

	checks["store"] = "ok"

	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Checks: checks,
	})
}

// handleValidateStory handles POST /api/stories/validate
func (s *Server) handleValidateStory(w http.ResponseWriter, r *http.Request) {
	form, ok := s.decodeForm(w, r)
	if !ok {
		return
	}
	valid, problems := story.Validate(form)
	s.respondJSON(w, http.StatusOK, ValidationResponse{Valid: valid, Errors: problems})
}

// handleCreateStory handles POST /api/stories
func (s *Server) handleCreateStory(w http.ResponseWriter, r *http.Request) {
	form, ok := s.decodeForm(w, r)
	if !ok {
		return
	}
	if valid, problems := story.Validate(form); !valid {
		s.respondJSON(w, http.StatusUnprocessableEntity, ValidationResponse{Valid: false, Errors: problems})
		return
	}

	start := time.Now()
	created, err := s.assembler.Create(r.Context(), form)
	if err != nil {
		s.analytics.TrackGenerationFailed(r.Context(), form.Category, string(llm.KindOf(err)))
		s.respondGenerationError(w, err)
		return
	}
	s.analytics.TrackStoryCreated(r.Context(), *created, time.Since(start))
	s.respondJSON(w, http.StatusCreated, created.Record())
}

// handleListStories handles GET /api/stories
func (s *Server) handleListStories(w http.ResponseWriter, r *http.Request) {
	stories, err := s.repo.List(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list stories")
		s.respondError(w, http.StatusInternalServerError, "Failed to list stories")
		return
	}

	records := make([]map[string]any, 0, len(stories))
	for _, st := range stories {
		records = append(records, st.Record())
	}
	s.respondJSON(w, http.StatusOK, StoryListResponse{Stories: records, Total: len(records)})
}

// handleGetStory handles GET /api/stories/{id}
func (s *Server) handleGetStory(w http.ResponseWriter, r *http.Request) {
	st, ok := s.resolveStory(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, st.Record())
}

// handleDeleteStory handles DELETE /api/stories/{id}
func (s *Server) handleDeleteStory(w http.ResponseWriter, r *http.Request) {
	st, ok := s.resolveStory(w, r)
	if !ok {
		return
	}
	if err := s.repo.Delete(r.Context(), st.ID); err != nil {
		s.log.Error().Err(err).Str("id", st.ID).Msg("Failed to delete story")
		s.respondError(w, http.StatusInternalServerError, "Failed to delete story")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleScoreStory handles GET /api/stories/{id}/score. ?mode=ai asks the model for the
// review; the default is the local heuristic.
func (s *Server) handleScoreStory(w http.ResponseWriter, r *http.Request) {
	st, ok := s.resolveStory(w, r)
	if !ok {
		return
	}

	var (
		score *quality.InvestScore
		err   error
	)
	switch mode := r.URL.Query().Get("mode"); mode {
	case "", "heuristic":
		score = s.evaluator.Evaluate(st)
	case "ai":
		if s.reviewer == nil {
			s.respondError(w, http.StatusBadRequest, "AI review is not enabled on this server")
			return
		}
		score, err = s.reviewer.Review(r.Context(), st)
		if err != nil {
			s.respondGenerationError(w, err)
			return
		}
	default:
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown score mode %q", mode))
		return
	}
	s.analytics.TrackStoryScored(r.Context(), st.ID, score.Source, score.Overall)
	s.respondJSON(w, http.StatusOK, score)
}

// handleRegenerateSection handles POST /api/stories/{id}/regenerate
func (s *Server) handleRegenerateSection(w http.ResponseWriter, r *http.Request) {
	var req RegenerateRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := s.assembler.ApplyRegeneration(r.Context(), chi.URLParam(r, "id"), req.Section)
	switch {
	case err == nil:
		s.analytics.TrackSectionRegenerated(r.Context(), updated.ID, req.Section)
		s.respondJSON(w, http.StatusOK, updated.Record())
	case errors.Is(err, story.ErrUnknownSection):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrAmbiguous):
		s.respondStoreError(w, err)
	default:
		s.respondGenerationError(w, err)
	}
}

// handleExportStory handles GET /api/stories/{id}/export?format=md|json|txt|html
func (s *Server) handleExportStory(w http.ResponseWriter, r *http.Request) {
	st, ok := s.resolveStory(w, r)
	if !ok {
		return
	}

	format := render.FormatMarkdown
	if raw := r.URL.Query().Get("format"); raw != "" {
		f, err := render.ParseFormat(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		format = f
	}

	content, err := render.Render(st, format)
	if err != nil {
		s.log.Error().Err(err).Str("id", st.ID).Msg("Failed to render story")
		s.respondError(w, http.StatusInternalServerError, "Failed to render story")
		return
	}

	s.analytics.TrackStoryExported(r.Context(), st.ID, string(format))
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", render.Filename(st, format)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

func (s *Server) decodeForm(w http.ResponseWriter, r *http.Request) (core.FormSubmission, bool) {
	var form core.FormSubmission
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return form, false
	}
	if strings.TrimSpace(string(form.Category)) == "" {
		form.Category = core.CategoryBusiness
	}
	return form, true
}

func (s *Server) resolveStory(w http.ResponseWriter, r *http.Request) (core.Story, bool) {
	st, err := store.Resolve(r.Context(), s.repo, chi.URLParam(r, "id"))
	if err != nil {
		s.respondStoreError(w, err)
		return core.Story{}, false
	}
	return st, true
}

func (s *Server) respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "Story not found")
	case errors.Is(err, store.ErrAmbiguous):
		s.respondError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error().Err(err).Msg("Failed to load story")
		s.respondError(w, http.StatusInternalServerError, "Failed to load story")
	}
}

// statusForKind maps a generation failure to the HTTP status returned to clients.
func statusForKind(kind llm.ErrorKind) int {
	switch kind {
	case llm.KindTimeout:
		return http.StatusGatewayTimeout
	case llm.KindRateLimit:
		return http.StatusTooManyRequests
	case llm.KindConnection:
		return http.StatusBadGateway
	case llm.KindAPIKey:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondGenerationError writes the user message for the failure kind; the operator detail stays in
// the log.
func (s *Server) respondGenerationError(w http.ResponseWriter, err error) {
	kind := llm.KindOf(err)
	status := statusForKind(kind)
	s.respondJSON(w, status, map[string]any{
		"error": map[string]any{
			"status":  status,
			"kind":    kind,
			"message": llm.UserMessage(kind),
		},
	})
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]any{
		"error": map[string]any{
			"status":  status,
			"message": message,
		},
	})
}
