package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/djcafe/cafe/internal/core"
	"github.com/djcafe/cafe/internal/display"
	"github.com/djcafe/cafe/internal/storage"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// PaginatedResponse wraps a list with pagination metadata.
type PaginatedResponse struct {
	Items      any    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// WritePaginated writes a paginated JSON response.
func WritePaginated(w http.ResponseWriter, status int, items any, nextCursor string, hasMore bool) {
	WriteJSON(w, status, PaginatedResponse{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	})
}

// WriteServiceError maps a service error onto a status code. Unclassified
// errors are logged with the request logger and reported generically.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		WriteError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, core.ErrNotFound):
		WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrConflict), errors.Is(err, display.ErrBusy):
		WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, storage.ErrDisabled):
		WriteError(w, http.StatusServiceUnavailable, err.Error())
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
