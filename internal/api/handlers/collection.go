package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ramonehamilton/commander-forge/internal/api/response"
	"github.com/ramonehamilton/commander-forge/internal/collection"
	"github.com/ramonehamilton/commander-forge/internal/deckbuilder"
	"github.com/ramonehamilton/commander-forge/internal/storage/repository"
)

// CollectionStore is the subset of the collection repository the handler needs.
type CollectionStore interface {
	ListOwned(ctx context.Context) ([]deckbuilder.OwnedCard, error)
	Count(ctx context.Context) (entries int, total int, err error)
	Add(ctx context.Context, cards []deckbuilder.OwnedCard) error
	ReplaceAll(ctx context.Context, cards []deckbuilder.OwnedCard) error
}

// CardValidator reports which collection entries the card provider does not know.
type CardValidator interface {
	Validate(ctx context.Context, cards []deckbuilder.OwnedCard) ([]deckbuilder.OwnedCard, error)
}

// CollectionHandler handles collection-related API requests.
type CollectionHandler struct {
	store     CollectionStore
	validator CardValidator
	logger    *slog.Logger
}

// NewCollectionHandler creates a new CollectionHandler. validator may be nil,
// in which case import requests asking for validation are rejected.
func NewCollectionHandler(store CollectionStore, validator CardValidator, logger *slog.Logger) *CollectionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CollectionHandler{store: store, validator: validator, logger: logger}
}

// CollectionResponse is the stored collection with its totals.
type CollectionResponse struct {
	Cards   []deckbuilder.OwnedCard `json:"cards"`
	Entries int                     `json:"entries"`
	Total   int                     `json:"total"`
}

// GetCollection returns the full collection.
func (h *CollectionHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	h.writeCollection(w, r)
}

func (h *CollectionHandler) writeCollection(w http.ResponseWriter, r *http.Request) {
	cards, err := h.store.ListOwned(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}

	entries, total, err := h.store.Count(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}

	if cards == nil {
		cards = []deckbuilder.OwnedCard{}
	}
	response.Success(w, CollectionResponse{Cards: cards, Entries: entries, Total: total})
}

// ReplaceCollectionRequest represents a request to overwrite the collection.
type ReplaceCollectionRequest struct {
	Cards []deckbuilder.OwnedCard `json:"cards"`
}

// ReplaceCollection overwrites the collection with the given cards.
func (h *CollectionHandler) ReplaceCollection(w http.ResponseWriter, r *http.Request) {
	var req ReplaceCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	if err := h.store.ReplaceAll(r.Context(), req.Cards); err != nil {
		writeStoreError(w, err)
		return
	}

	h.writeCollection(w, r)
}

// ClearCollection removes every card.
func (h *CollectionHandler) ClearCollection(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ReplaceAll(r.Context(), nil); err != nil {
		response.InternalError(w, err)
		return
	}
	response.NoContent(w)
}

// ImportCollectionRequest represents a collection import in text or CSV form.
type ImportCollectionRequest struct {
	Format   string `json:"format,omitempty"` // "text" (default) or "csv"
	Content  string `json:"content"`
	Replace  bool   `json:"replace,omitempty"`
	Validate bool   `json:"validate,omitempty"`
}

// ImportCollectionResponse summarises an import.
type ImportCollectionResponse struct {
	Imported int                     `json:"imported"`
	Total    int                     `json:"total"`
	Warnings []string                `json:"warnings,omitempty"`
	Unknown  []deckbuilder.OwnedCard `json:"unknown,omitempty"`
}

// ImportCollection parses a decklist or CSV and stores the cards.
func (h *CollectionHandler) ImportCollection(w http.ResponseWriter, r *http.Request) {
	var req ImportCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	format, err := collection.ParseFormat(req.Format)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	result, err := collection.Parse(strings.NewReader(req.Content), format)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	resp := ImportCollectionResponse{
		Imported: len(result.Cards),
		Total:    result.Total(),
		Warnings: result.Warnings,
	}

	if req.Validate {
		if h.validator == nil {
			response.BadRequest(w, errors.New("card validation is not available"))
			return
		}
		unknown, err := h.validator.Validate(r.Context(), result.Cards)
		if err != nil {
			h.logger.Warn("Collection validation failed", "error", err)
			response.ServiceUnavailable(w, err)
			return
		}
		resp.Unknown = unknown
	}

	if req.Replace {
		err = h.store.ReplaceAll(r.Context(), result.Cards)
	} else {
		err = h.store.Add(r.Context(), result.Cards)
	}
	if err != nil {
		writeStoreError(w, err)
		return
	}

	h.logger.Info("Imported collection", "entries", resp.Imported, "cards", resp.Total, "replace", req.Replace)
	response.Success(w, resp)
}

// ExportCollection writes the collection as CSV.
func (h *CollectionHandler) ExportCollection(w http.ResponseWriter, r *http.Request) {
	cards, err := h.store.ListOwned(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="collection.csv"`)
	if err := collection.WriteCSV(w, cards); err != nil {
		h.logger.Error("Failed to write collection CSV", "error", err)
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrInvalidEntry) {
		response.BadRequest(w, err)
		return
	}
	response.InternalError(w, err)
}
