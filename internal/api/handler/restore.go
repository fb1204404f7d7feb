package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/superpanel/superpanel/internal/api/request"
	"github.com/superpanel/superpanel/internal/api/response"
	"github.com/superpanel/superpanel/internal/core"
	"github.com/superpanel/superpanel/internal/model"
)

type Restore struct {
	svc *core.RestoreService
}

func NewRestore(svc *core.RestoreService) *Restore {
	return &Restore{svc: svc}
}

// Run restores a completed backup and blocks until the outcome is known.
// A restore that fails inside the engine still returns 200 with Success=false;
// only infrastructure errors map to error statuses.
func (h *Restore) Run(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.RestoreBackup
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.Restore(r.Context(), id, model.RestoreRequest{
		RestorePath: req.RestorePath,
		Overwrite:   req.Overwrite,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, result)
}

func (h *Restore) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	op, err := h.svc.GetOperation(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, op)
}

func (h *Restore) ListForBackup(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ops, err := h.svc.ListForJob(r.Context(), id)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, ops)
}
