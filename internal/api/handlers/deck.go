package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/commander-forge/internal/api/response"
	"github.com/ramonehamilton/commander-forge/internal/charts"
	"github.com/ramonehamilton/commander-forge/internal/deckbuilder"
	"github.com/ramonehamilton/commander-forge/internal/deckexport"
	"github.com/ramonehamilton/commander-forge/internal/storage/models"
	"github.com/ramonehamilton/commander-forge/internal/storage/repository"
)

// DeckGenerator builds deck options for a commander.
type DeckGenerator interface {
	Generate(ctx context.Context, req deckbuilder.Request) ([]deckbuilder.DeckOption, error)
}

// DeckHandler handles deck generation and saved deck requests.
type DeckHandler struct {
	generator     DeckGenerator
	decks         repository.DeckRepository
	collection    deckbuilder.CollectionSource
	defaultFormat string
	logger        *slog.Logger
}

// NewDeckHandler creates a new DeckHandler. Requests that name no format use defaultFormat.
func NewDeckHandler(generator DeckGenerator, decks repository.DeckRepository, collection deckbuilder.CollectionSource, defaultFormat string, logger *slog.Logger) *DeckHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeckHandler{
		generator:     generator,
		decks:         decks,
		collection:    collection,
		defaultFormat: defaultFormat,
		logger:        logger,
	}
}

// GenerateDeckRequest represents a request to generate decks for a commander.
type GenerateDeckRequest struct {
	Commander    string `json:"commander"`
	CommanderSet string `json:"commanderSet,omitempty"`
	Format       string `json:"format,omitempty"`

	// Collection overrides the stored collection when present.
	Collection []deckbuilder.OwnedCard `json:"collection,omitempty"`

	// Save stores every generated option.
	Save bool `json:"save,omitempty"`
}

// GenerateDeckResponse holds the generated options and, when saved, their IDs.
type GenerateDeckResponse struct {
	Options  []deckbuilder.DeckOption `json:"options"`
	SavedIDs []string                 `json:"savedIds,omitempty"`
}

// GenerateDecks builds one deck option per viable archetype.
func (h *DeckHandler) GenerateDecks(w http.ResponseWriter, r *http.Request) {
	var req GenerateDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	if strings.TrimSpace(req.Commander) == "" {
		response.BadRequest(w, errors.New("commander is required"))
		return
	}

	format := req.Format
	if format == "" {
		format = h.defaultFormat
	}

	collection := req.Collection
	if collection == nil {
		owned, err := h.collection.ListOwned(r.Context())
		if err != nil {
			response.InternalError(w, err)
			return
		}
		collection = owned
	}

	options, err := h.generator.Generate(r.Context(), deckbuilder.Request{
		Commander:    req.Commander,
		CommanderSet: req.CommanderSet,
		Format:       format,
		Collection:   collection,
	})
	if err != nil {
		h.logger.Warn("Deck generation failed", "commander", req.Commander, "format", format, "error", err)
		writeGenerationError(w, err)
		return
	}

	resp := GenerateDeckResponse{Options: options}
	if req.Save {
		for _, option := range options {
			saved, err := h.decks.Save(r.Context(), "", option)
			if err != nil {
				response.InternalError(w, err)
				return
			}
			resp.SavedIDs = append(resp.SavedIDs, saved.ID)
		}
	}

	response.Success(w, resp)
}

// GetDecks returns saved decks, optionally filtered by commander, format or card.
func (h *DeckHandler) GetDecks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := models.DeckFilter{
		Commander: query.Get("commander"),
		Format:    query.Get("format"),
		Card:      query.Get("card"),
	}

	decks, err := h.decks.List(r.Context(), filter)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, decks)
}

// SaveDeckRequest represents a request to store a generated option.
type SaveDeckRequest struct {
	Name   string                 `json:"name"`
	Option deckbuilder.DeckOption `json:"option"`
}

// SaveDeck stores a deck option.
func (h *DeckHandler) SaveDeck(w http.ResponseWriter, r *http.Request) {
	var req SaveDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	if req.Option.Commander.Name == "" || len(req.Option.Cards) == 0 {
		response.BadRequest(w, errors.New("deck option with a commander and cards is required"))
		return
	}

	saved, err := h.decks.Save(r.Context(), req.Name, req.Option)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Created(w, saved.Summary())
}

// loadDeck fetches the deck named by the URL, writing an error response when
// it cannot be returned.
func (h *DeckHandler) loadDeck(w http.ResponseWriter, r *http.Request) (*models.SavedDeck, bool) {
	deckID := chi.URLParam(r, "deckID")
	if deckID == "" {
		response.BadRequest(w, errors.New("deck ID is required"))
		return nil, false
	}

	deck, err := h.decks.Get(r.Context(), deckID)
	if err != nil {
		response.InternalError(w, err)
		return nil, false
	}

	if deck == nil {
		response.NotFound(w, errors.New("deck not found"))
		return nil, false
	}

	return deck, true
}

// GetDeck returns a single saved deck by ID.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	deck, ok := h.loadDeck(w, r)
	if !ok {
		return
	}
	response.Success(w, deck)
}

// DeleteDeck removes a saved deck.
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")
	if deckID == "" {
		response.BadRequest(w, errors.New("deck ID is required"))
		return
	}

	if err := h.decks.Delete(r.Context(), deckID); err != nil {
		if errors.Is(err, repository.ErrDeckNotFound) {
			response.NotFound(w, errors.New("deck not found"))
			return
		}
		response.InternalError(w, err)
		return
	}

	response.NoContent(w)
}

// ExportDeck renders a saved deck as a decklist. The format query parameter
// selects arena, text, commander or json.
func (h *DeckHandler) ExportDeck(w http.ResponseWriter, r *http.Request) {
	format, err := deckexport.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	deck, ok := h.loadDeck(w, r)
	if !ok {
		return
	}

	body, err := deckexport.String(deck.Option, format)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	if r.URL.Query().Get("download") == "true" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(deck, format)))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func exportFilename(deck *models.SavedDeck, format deckexport.Format) string {
	ext := "txt"
	if format == deckexport.FormatJSON {
		ext = "json"
	}
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '"', ',':
			return '_'
		}
		return r
	}, deck.Name)
	return fmt.Sprintf("%s.%s", name, ext)
}

// GetDeckCurve renders the mana curve of a saved deck as an HTML chart.
func (h *DeckHandler) GetDeckCurve(w http.ResponseWriter, r *http.Request) {
	deck, ok := h.loadDeck(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	config := charts.DefaultChartConfig()
	config.Title = deck.Name
	if err := charts.RenderManaCurve(w, deck.Option, config); err != nil {
		h.logger.Error("Failed to render mana curve", "deck", deck.ID, "error", err)
	}
}
