package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/ramonehamilton/commander-forge/internal/api/response"
	"github.com/ramonehamilton/commander-forge/internal/deckbuilder"
)

// writeGenerationError maps deck generation failures to HTTP status codes.
func writeGenerationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, deckbuilder.ErrUnknownFormat):
		response.BadRequest(w, err)
	case errors.Is(err, deckbuilder.ErrCardNotFound):
		response.NotFound(w, err)
	case errors.Is(err, deckbuilder.ErrIneligibleCommander),
		errors.Is(err, deckbuilder.ErrNoViableDeck):
		response.UnprocessableEntity(w, err)
	case errors.Is(err, context.DeadlineExceeded):
		response.Error(w, http.StatusGatewayTimeout, err)
	case errors.Is(err, deckbuilder.ErrProviderUnavailable):
		response.ServiceUnavailable(w, err)
	default:
		response.InternalError(w, err)
	}
}
