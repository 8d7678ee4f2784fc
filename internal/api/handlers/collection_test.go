package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/commander-forge/internal/deckbuilder"
	"github.com/ramonehamilton/commander-forge/internal/metrics"
	"github.com/ramonehamilton/commander-forge/internal/storage/repository"
)

// memoryStore merges entries the way the SQLite repository does.
type memoryStore struct {
	cards []deckbuilder.OwnedCard
	err   error
}

func (m *memoryStore) ListOwned(_ context.Context) ([]deckbuilder.OwnedCard, error) {
	return m.cards, m.err
}

func (m *memoryStore) Count(_ context.Context) (int, int, error) {
	total := 0
	for _, c := range m.cards {
		total += c.Quantity
	}
	return len(m.cards), total, m.err
}

func (m *memoryStore) Add(_ context.Context, cards []deckbuilder.OwnedCard) error {
	if m.err != nil {
		return m.err
	}
	for _, c := range cards {
		if c.Quantity < 0 {
			return fmt.Errorf("%w: negative quantity", repository.ErrInvalidEntry)
		}
		merged := false
		for i := range m.cards {
			if strings.EqualFold(m.cards[i].Name, c.Name) && m.cards[i].SetCode == c.SetCode {
				m.cards[i].Quantity += c.Quantity
				merged = true
			}
		}
		if !merged {
			m.cards = append(m.cards, c)
		}
	}
	return nil
}

func (m *memoryStore) ReplaceAll(ctx context.Context, cards []deckbuilder.OwnedCard) error {
	if m.err != nil {
		return m.err
	}
	m.cards = nil
	return m.Add(ctx, cards)
}

type mockValidator struct {
	unknown []deckbuilder.OwnedCard
	err     error
	calls   int
}

func (m *mockValidator) Validate(_ context.Context, _ []deckbuilder.OwnedCard) ([]deckbuilder.OwnedCard, error) {
	m.calls++
	return m.unknown, m.err
}

func TestCollectionHandler_GetCollection(t *testing.T) {
	store := &memoryStore{cards: []deckbuilder.OwnedCard{
		{Name: "Sol Ring", Quantity: 2},
		{Name: "Forest", SetCode: "M21", Quantity: 10},
	}}
	h := NewCollectionHandler(store, nil, nil)

	w := httptest.NewRecorder()
	h.GetCollection(w, httptest.NewRequest(http.MethodGet, "/api/v1/collection", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp CollectionResponse
	decodeData(t, w.Body, &resp)
	assert.Equal(t, 2, resp.Entries)
	assert.Equal(t, 12, resp.Total)
	assert.Len(t, resp.Cards, 2)
}

func TestCollectionHandler_GetCollection_Empty(t *testing.T) {
	h := NewCollectionHandler(&memoryStore{}, nil, nil)

	w := httptest.NewRecorder()
	h.GetCollection(w, httptest.NewRequest(http.MethodGet, "/api/v1/collection", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cards":[]`)
}

func TestCollectionHandler_ImportCollection(t *testing.T) {
	tests := []struct {
		name      string
		initial   []deckbuilder.OwnedCard
		req       ImportCollectionRequest
		wantCards int
		wantTotal int
	}{
		{
			name:      "text merges into existing",
			initial:   []deckbuilder.OwnedCard{{Name: "Sol Ring", Quantity: 1}},
			req:       ImportCollectionRequest{Content: "2 Sol Ring\n1x Arcane Signet\n"},
			wantCards: 2,
			wantTotal: 4,
		},
		{
			name:      "replace drops existing",
			initial:   []deckbuilder.OwnedCard{{Name: "Swamp", Quantity: 30}},
			req:       ImportCollectionRequest{Content: "Sol Ring\n", Replace: true},
			wantCards: 1,
			wantTotal: 1,
		},
		{
			name:      "csv",
			req:       ImportCollectionRequest{Format: "csv", Content: "name,set,quantity\nForest,m21,8\nSol Ring,,1\n"},
			wantCards: 2,
			wantTotal: 9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memoryStore{cards: tt.initial}
			h := NewCollectionHandler(store, nil, nil)

			w := httptest.NewRecorder()
			h.ImportCollection(w, postJSON("/api/v1/collection/import", tt.req))

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Len(t, store.cards, tt.wantCards)
			total := 0
			for _, c := range store.cards {
				total += c.Quantity
			}
			assert.Equal(t, tt.wantTotal, total)
		})
	}
}

func TestCollectionHandler_ImportCollection_Warnings(t *testing.T) {
	h := NewCollectionHandler(&memoryStore{}, nil, nil)

	w := httptest.NewRecorder()
	h.ImportCollection(w, postJSON("/", ImportCollectionRequest{Content: "4 Lightning Bolt\n---\n"}))

	require.Equal(t, http.StatusOK, w.Code)
	var resp ImportCollectionResponse
	decodeData(t, w.Body, &resp)
	assert.Equal(t, 1, resp.Imported)
	assert.Equal(t, 4, resp.Total)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "Line 2")
}

func TestCollectionHandler_ImportCollection_Errors(t *testing.T) {
	t.Run("empty content", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewCollectionHandler(&memoryStore{}, nil, nil).ImportCollection(w, postJSON("/", ImportCollectionRequest{Content: "\n# nothing\n"}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown format", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewCollectionHandler(&memoryStore{}, nil, nil).ImportCollection(w, postJSON("/", ImportCollectionRequest{Format: "xml", Content: "Sol Ring"}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("validation without validator", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewCollectionHandler(&memoryStore{}, nil, nil).ImportCollection(w, postJSON("/", ImportCollectionRequest{Content: "Sol Ring", Validate: true}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("validator unavailable", func(t *testing.T) {
		store := &memoryStore{}
		validator := &mockValidator{err: deckbuilder.ErrProviderUnavailable}
		w := httptest.NewRecorder()
		NewCollectionHandler(store, validator, nil).ImportCollection(w, postJSON("/", ImportCollectionRequest{Content: "Sol Ring", Validate: true}))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Empty(t, store.cards)
	})

	t.Run("store failure", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewCollectionHandler(&memoryStore{err: errors.New("disk full")}, nil, nil).ImportCollection(w, postJSON("/", ImportCollectionRequest{Content: "Sol Ring"}))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestCollectionHandler_ImportCollection_ReportsUnknown(t *testing.T) {
	store := &memoryStore{}
	validator := &mockValidator{unknown: []deckbuilder.OwnedCard{{Name: "Sol Rnig", Quantity: 1}}}
	h := NewCollectionHandler(store, validator, nil)

	w := httptest.NewRecorder()
	h.ImportCollection(w, postJSON("/", ImportCollectionRequest{Content: "Sol Rnig\n1 Arcane Signet", Validate: true}))

	require.Equal(t, http.StatusOK, w.Code)
	var resp ImportCollectionResponse
	decodeData(t, w.Body, &resp)
	assert.Equal(t, 1, validator.calls)
	require.Len(t, resp.Unknown, 1)
	assert.Equal(t, "Sol Rnig", resp.Unknown[0].Name)
	assert.Len(t, store.cards, 2)
}

func TestCollectionHandler_ReplaceCollection(t *testing.T) {
	store := &memoryStore{cards: []deckbuilder.OwnedCard{{Name: "Island", Quantity: 20}}}
	h := NewCollectionHandler(store, nil, nil)

	body := ReplaceCollectionRequest{Cards: []deckbuilder.OwnedCard{{Name: "Sol Ring", Quantity: 1}}}
	w := httptest.NewRecorder()
	h.ReplaceCollection(w, httptest.NewRequest(http.MethodPut, "/", postJSON("/", body).Body))

	require.Equal(t, http.StatusOK, w.Code)
	var resp CollectionResponse
	decodeData(t, w.Body, &resp)
	assert.Equal(t, 1, resp.Entries)
	assert.Equal(t, "Sol Ring", resp.Cards[0].Name)
}

func TestCollectionHandler_ReplaceCollection_InvalidEntry(t *testing.T) {
	h := NewCollectionHandler(&memoryStore{}, nil, nil)

	body := ReplaceCollectionRequest{Cards: []deckbuilder.OwnedCard{{Name: "Sol Ring", Quantity: -1}}}
	w := httptest.NewRecorder()
	h.ReplaceCollection(w, postJSON("/", body))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCollectionHandler_ClearCollection(t *testing.T) {
	store := &memoryStore{cards: []deckbuilder.OwnedCard{{Name: "Island", Quantity: 20}}}
	h := NewCollectionHandler(store, nil, nil)

	w := httptest.NewRecorder()
	h.ClearCollection(w, httptest.NewRequest(http.MethodDelete, "/", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, store.cards)
}

func TestCollectionHandler_ExportCollection(t *testing.T) {
	store := &memoryStore{cards: []deckbuilder.OwnedCard{
		{Name: "Forest", SetCode: "M21", Quantity: 8},
		{Name: "Sol Ring", Quantity: 1},
	}}
	h := NewCollectionHandler(store, nil, nil)

	w := httptest.NewRecorder()
	h.ExportCollection(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "name,set,quantity\nForest,M21,8\nSol Ring,,1\n", w.Body.String())
}

func TestSystemHandler(t *testing.T) {
	m := metrics.NewManager()
	m.ObserveGeneration(0, 2, nil)
	h := NewSystemHandler(m, "1.2.3")

	t.Run("stats", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.GetStats(w, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var stats metrics.Stats
		decodeData(t, w.Body, &stats)
		assert.Equal(t, uint64(1), stats.Generations)
	})

	t.Run("version", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.GetVersion(w, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var v map[string]string
		decodeData(t, w.Body, &v)
		assert.Equal(t, "1.2.3", v["version"])
	})
}
