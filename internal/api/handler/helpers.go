package handler

import (
	"errors"
	"net/http"

	"github.com/superpanel/superpanel/internal/api/response"
	"github.com/superpanel/superpanel/internal/core"
)

// writeServiceError maps core sentinel errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		response.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrInvalidState):
		response.WriteError(w, http.StatusConflict, err.Error())
	default:
		response.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

// callerID resolves the audit identity for a request. Identity is recorded,
// never enforced.
func callerID(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return "anonymous"
}
