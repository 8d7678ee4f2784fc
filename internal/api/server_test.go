package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/commander-forge/internal/deckbuilder"
	"github.com/ramonehamilton/commander-forge/internal/metrics"
	"github.com/ramonehamilton/commander-forge/internal/storage"
)

// stubGenerator returns one fixed option for any commander.
type stubGenerator struct {
	lastReq deckbuilder.Request
}

func (g *stubGenerator) Generate(_ context.Context, req deckbuilder.Request) ([]deckbuilder.DeckOption, error) {
	g.lastReq = req
	commander := deckbuilder.CardRecord{Name: req.Commander, TypeLine: "Legendary Creature — Elf", ColorIdentity: []string{"G"}}
	return []deckbuilder.DeckOption{{
		Commander:     commander,
		Format:        req.Format,
		ArchetypeName: "Tokens",
		Cards: []deckbuilder.DeckCardEntry{
			{Card: commander, Quantity: 1},
			{Card: deckbuilder.CardRecord{Name: "Sol Ring", TypeLine: "Artifact", CMC: 1}, Quantity: 1},
		},
		ColorIdentity: []string{"G"},
		ManaCurve:     map[int]int{1: 1},
		TotalCards:    2,
	}}, nil
}

func newTestServer(t *testing.T) (*Server, *stubGenerator, *metrics.Manager) {
	t.Helper()

	db, err := storage.OpenMemory()
	require.NoError(t, err)
	svc := storage.NewService(db)
	t.Cleanup(func() { _ = svc.Close() })

	gen := &stubGenerator{}
	m := metrics.NewManager()
	server, err := NewServer(nil, &Dependencies{
		Generator:  gen,
		Decks:      svc.Decks(),
		Collection: svc.Collection(),
		Metrics:    m,
	}, nil)
	require.NoError(t, err)
	return server, gen, m
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestNewServer_RequiresDependencies(t *testing.T) {
	_, err := NewServer(nil, nil, nil)
	assert.Error(t, err)

	_, err = NewServer(nil, &Dependencies{Generator: &stubGenerator{}}, nil)
	assert.Error(t, err)
}

func TestNewServer_Defaults(t *testing.T) {
	server, _, _ := newTestServer(t)
	assert.Equal(t, 8080, server.Port())
	assert.Equal(t, deckbuilder.FormatCommander.ID, server.deps.DefaultFormat)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 8080, cfg.Port)
	assert.NotEmpty(t, cfg.AllowedOrigins)
	assert.Positive(t, cfg.RequestTimeout)
}

func TestHealthCheck(t *testing.T) {
	server, _, _ := newTestServer(t)

	w := do(t, server.Handler(), http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestJSONContentTypeMiddleware(t *testing.T) {
	server, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/decks/generate", strings.NewReader(`{"commander":"x"}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestRoutes_GenerateSaveExport(t *testing.T) {
	server, gen, _ := newTestServer(t)
	h := server.Handler()

	w := do(t, h, http.MethodPost, "/api/v1/collection/import", map[string]any{
		"content": "1 Sol Ring\n10 Forest",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, h, http.MethodPost, "/api/v1/decks/generate", map[string]any{
		"commander": "Lathril, Blade of the Elves",
		"save":      true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "commander", gen.lastReq.Format)
	assert.Len(t, gen.lastReq.Collection, 2)

	var generated struct {
		Data struct {
			SavedIDs []string `json:"savedIds"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&generated))
	require.Len(t, generated.Data.SavedIDs, 1)
	id := generated.Data.SavedIDs[0]

	w = do(t, h, http.MethodGet, "/api/v1/decks?commander=lathril,+blade+of+the+elves", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id)

	w = do(t, h, http.MethodGet, "/api/v1/decks/"+id+"/export?format=arena", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "1 Sol Ring")

	w = do(t, h, http.MethodGet, "/api/v1/decks/"+id+"/curve", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodDelete, "/api/v1/decks/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/decks/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoutes_CollectionExport(t *testing.T) {
	server, _, _ := newTestServer(t)
	h := server.Handler()

	w := do(t, h, http.MethodPut, "/api/v1/collection", map[string]any{
		"cards": []deckbuilder.OwnedCard{{Name: "Command Tower", SetCode: "cmr", Quantity: 1}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, h, http.MethodGet, "/api/v1/collection/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "name,set,quantity\nCommand Tower,CMR,1\n", w.Body.String())

	w = do(t, h, http.MethodDelete, "/api/v1/collection", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRoutes_MetricsAndStats(t *testing.T) {
	server, _, _ := newTestServer(t)
	h := server.Handler()

	w := do(t, h, http.MethodGet, "/api/v1/formats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `commander_forge_http_requests_total{method="GET",route="/api/v1/formats",status_code="200"} 1`)

	w = do(t, h, http.MethodGet, "/api/v1/stats", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/version", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
