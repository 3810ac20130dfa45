package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"storysmith/internal/config"
	"storysmith/internal/core"
	"storysmith/internal/llm"
	"storysmith/internal/store"
	"storysmith/internal/story"
)

type stubGenerator struct {
	reply string
	err   error
	calls int
}

func (g *stubGenerator) Generate(context.Context, string, []core.Attachment) (string, error) {
	g.calls++
	return g.reply, g.err
}

const generatedBody = "## Implementar OAuth\n\n### Contexto\n\nLogin social.\n\n### Criterios de Aceitacao\n\nCA1 - Login\n"

const createBody = `{
  "category": "business",
  "title": "Implementar OAuth",
  "objectives": {"goal": "login"},
  "complexity": 5,
  "business": {
    "business_rules": ["Regra A"],
    "integrations": ["Google OAuth"],
    "acceptance_criteria": ["CA1", "CA2", "CA3"]
  }
}`

func newTestServer(t *testing.T, gen *stubGenerator) (*Server, store.Repository) {
	t.Helper()
	repo := store.NewSession()
	asm := story.NewAssembler(gen, repo)
	srv := New(config.Server{Host: "127.0.0.1", Port: 0}, Deps{
		Assembler: asm,
		Reviewer:  story.NewReviewer(gen, nil),
		Gatherer:  prometheus.NewRegistry(),
	})
	return srv, repo
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func seed(t *testing.T, repo store.Repository) core.Story {
	t.Helper()
	var form core.FormSubmission
	require.NoError(t, json.Unmarshal([]byte(createBody), &form))
	s := core.NewStory(form, generatedBody, time.Now().UTC())
	require.NoError(t, repo.Add(context.Background(), s))
	return s
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{})
	rec := do(t, srv, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestValidateStory(t *testing.T) {
	gen := &stubGenerator{}
	srv, _ := newTestServer(t, gen)

	rec := do(t, srv, http.MethodPost, "/api/stories/validate", `{"category":"business","title":"","complexity":0}`)
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode(t, rec)
	assert.Equal(t, false, out["valid"])
	assert.Contains(t, out["errors"], "Título é obrigatório")
	assert.Contains(t, out["errors"], "Complexidade deve estar entre 1 e 21")
	assert.Zero(t, gen.calls)
}

func TestValidateStory_CategoryLabels(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{})

	for _, label := range []string{"Fix", "fix", "FIX", "bug", "Fix/Bug/Incidente"} {
		t.Run(label, func(t *testing.T) {
			body := `{"category":"` + label + `","title":"Erro no checkout","complexity":3,"fix":{"description":"500 ao pagar"}}`
			rec := do(t, srv, http.MethodPost, "/api/stories/validate", body)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, true, decode(t, rec)["valid"], rec.Body.String())
		})
	}

	rec := do(t, srv, http.MethodPost, "/api/stories/validate", `{"category":"epic","title":"X","complexity":3}`)
	out := decode(t, rec)
	assert.Equal(t, false, out["valid"])
	assert.Contains(t, out["errors"], "Categoria desconhecida: epic")
}

func TestCreateStory_LegacyObjectiveKeys(t *testing.T) {
	gen := &stubGenerator{reply: generatedBody}
	srv, _ := newTestServer(t, gen)

	body := strings.Replace(createBody, `{"goal": "login"}`, `{"como": "cliente", "quero": "login"}`, 1)
	rec := do(t, srv, http.MethodPost, "/api/stories", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	objectives := decode(t, rec)["objectives"].(map[string]any)
	assert.Equal(t, "cliente", objectives["actor"])
	assert.Equal(t, "login", objectives["goal"])
}

func TestCreateStory(t *testing.T) {
	gen := &stubGenerator{reply: generatedBody}
	srv, repo := newTestServer(t, gen)

	rec := do(t, srv, http.MethodPost, "/api/stories", createBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	out := decode(t, rec)
	assert.Equal(t, "Implementar OAuth", out["title"])
	assert.Equal(t, "Business", out["category"])
	assert.Equal(t, generatedBody, out["generated_body"])

	stories, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.Equal(t, out["id"], stories[0].ID)
}

func TestCreateStory_InvalidForm(t *testing.T) {
	gen := &stubGenerator{reply: generatedBody}
	srv, _ := newTestServer(t, gen)

	rec := do(t, srv, http.MethodPost, "/api/stories", `{"category":"business","title":"X","complexity":5}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Zero(t, gen.calls)

	rec = do(t, srv, http.MethodPost, "/api/stories", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateStory_GenerationErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		kind   llm.ErrorKind
	}{
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, llm.KindTimeout},
		{"rate limit", genai.APIError{Code: 429, Message: "quota"}, http.StatusTooManyRequests, llm.KindRateLimit},
		{"api key", errors.New("unauthorized"), http.StatusServiceUnavailable, llm.KindAPIKey},
		{"generic", errors.New("boom"), http.StatusInternalServerError, llm.KindGeneric},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, repo := newTestServer(t, &stubGenerator{err: tc.err})

			rec := do(t, srv, http.MethodPost, "/api/stories", createBody)
			require.Equal(t, tc.status, rec.Code, rec.Body.String())

			errBody := decode(t, rec)["error"].(map[string]any)
			assert.Equal(t, string(tc.kind), errBody["kind"])
			assert.Equal(t, llm.UserMessage(tc.kind), errBody["message"])

			stories, err := repo.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, stories)
		})
	}
}

func TestListAndGetStory(t *testing.T) {
	srv, repo := newTestServer(t, &stubGenerator{})
	s := seed(t, repo)

	rec := do(t, srv, http.MethodGet, "/api/stories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["total"])

	rec = do(t, srv, http.MethodGet, "/api/stories/"+s.ID[:8], "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, s.ID, decode(t, rec)["id"])

	rec = do(t, srv, http.MethodGet, "/api/stories/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteStory(t *testing.T) {
	srv, repo := newTestServer(t, &stubGenerator{})
	s := seed(t, repo)

	rec := do(t, srv, http.MethodDelete, "/api/stories/"+s.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, err := repo.Get(context.Background(), s.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestScoreStory(t *testing.T) {
	gen := &stubGenerator{reply: "sem json"}
	srv, repo := newTestServer(t, gen)
	s := seed(t, repo)

	rec := do(t, srv, http.MethodGet, "/api/stories/"+s.ID+"/score", "")
	require.Equal(t, http.StatusOK, rec.Code)
	heuristic := decode(t, rec)
	assert.Equal(t, "heuristic", heuristic["source"])
	assert.Zero(t, gen.calls)

	rec = do(t, srv, http.MethodGet, "/api/stories/"+s.ID+"/score?mode=ai", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, heuristic["overall"], decode(t, rec)["overall"], "malformed review falls back to the heuristic")
	assert.Equal(t, 1, gen.calls)

	rec = do(t, srv, http.MethodGet, "/api/stories/"+s.ID+"/score?mode=magic", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegenerateSection(t *testing.T) {
	gen := &stubGenerator{reply: "### Criterios de Aceitacao\n\nCA1 - Novo\n"}
	srv, repo := newTestServer(t, gen)
	s := seed(t, repo)

	rec := do(t, srv, http.MethodPost, "/api/stories/"+s.ID+"/regenerate", `{"section":"criteria"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)["generated_body"].(string)
	assert.Contains(t, body, "CA1 - Novo")
	assert.NotContains(t, body, "CA1 - Login")
	assert.Contains(t, body, "### Contexto")

	rec = do(t, srv, http.MethodPost, "/api/stories/"+s.ID+"/regenerate", `{"section":"history"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/stories/nope/regenerate", `{"section":"criteria"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegenerateSection_Timeout(t *testing.T) {
	srv, repo := newTestServer(t, &stubGenerator{err: context.DeadlineExceeded})
	s := seed(t, repo)

	rec := do(t, srv, http.MethodPost, "/api/stories/"+s.ID+"/regenerate", `{"section":"benefits"}`)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)

	stored, err := repo.Get(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, generatedBody, stored.Body)
}

func TestExportStory(t *testing.T) {
	srv, repo := newTestServer(t, &stubGenerator{})
	s := seed(t, repo)

	rec := do(t, srv, http.MethodGet, "/api/stories/"+s.ID+"/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, generatedBody, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".md")

	rec = do(t, srv, http.MethodGet, "/api/stories/"+s.ID+"/export?format=html", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<h2")

	rec = do(t, srv, http.MethodGet, "/api/stories/"+s.ID+"/export?format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{})
	rec := do(t, srv, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusForKind(t *testing.T) {
	assert.Equal(t, http.StatusBadGateway, statusForKind(llm.KindConnection))
	assert.Equal(t, http.StatusInternalServerError, statusForKind(""))
}
