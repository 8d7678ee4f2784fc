package handlers

import (
	"net/http"

	"github.com/ramonehamilton/commander-forge/internal/api/response"
	"github.com/ramonehamilton/commander-forge/internal/deckbuilder"
)

// FormatHandler serves the supported game formats.
type FormatHandler struct{}

// NewFormatHandler creates a new FormatHandler.
func NewFormatHandler() *FormatHandler {
	return &FormatHandler{}
}

// GetFormats returns every supported format.
func (h *FormatHandler) GetFormats(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, deckbuilder.Formats())
}
