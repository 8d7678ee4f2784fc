package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/commander-forge/internal/api/handlers"
	"github.com/ramonehamilton/commander-forge/internal/api/response"
	"github.com/ramonehamilton/commander-forge/internal/version"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	if s.deps.Metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.deps.Metrics.Handler())
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		formatHandler := handlers.NewFormatHandler()
		r.Get("/formats", formatHandler.GetFormats)

		systemHandler := handlers.NewSystemHandler(s.deps.Metrics, version.GetVersion())
		r.Get("/version", systemHandler.GetVersion)
		if s.deps.Metrics != nil {
			r.Get("/stats", systemHandler.GetStats)
		}

		// Collection routes
		collectionHandler := handlers.NewCollectionHandler(s.deps.Collection, s.deps.Validator, s.logger)
		r.Route("/collection", func(r chi.Router) {
			r.Get("/", collectionHandler.GetCollection)
			r.Put("/", collectionHandler.ReplaceCollection)
			r.Delete("/", collectionHandler.ClearCollection)
			r.Post("/import", collectionHandler.ImportCollection)
			r.Get("/export", collectionHandler.ExportCollection)
		})

		// Deck routes
		deckHandler := handlers.NewDeckHandler(s.deps.Generator, s.deps.Decks, s.deps.Collection, s.deps.DefaultFormat, s.logger)
		r.Route("/decks", func(r chi.Router) {
			r.Post("/generate", deckHandler.GenerateDecks)
			r.Get("/", deckHandler.GetDecks)
			r.Post("/", deckHandler.SaveDeck)
			r.Get("/{deckID}", deckHandler.GetDeck)
			r.Delete("/{deckID}", deckHandler.DeleteDeck)
			r.Get("/{deckID}/export", deckHandler.ExportDeck)
			r.Get("/{deckID}/curve", deckHandler.GetDeckCurve)
		})
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "commander-forge-api",
	})
}
