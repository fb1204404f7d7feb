package handler

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/superpanel/superpanel/internal/api/request"
	"github.com/superpanel/superpanel/internal/api/response"
	"github.com/superpanel/superpanel/internal/core"
	"github.com/superpanel/superpanel/internal/model"
	"github.com/superpanel/superpanel/internal/platform"
)

type Backup struct {
	svc              *core.BackupJobService
	logs             *core.BackupLogService
	defaultRetention int
}

func NewBackup(svc *core.BackupJobService, logs *core.BackupLogService, defaultRetentionDays int) *Backup {
	return &Backup{svc: svc, logs: logs, defaultRetention: defaultRetentionDays}
}

func (h *Backup) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateBackupJob
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.ValidateSource(); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	retention := h.defaultRetention
	if req.RetentionDays != nil {
		retention = *req.RetentionDays
	}

	now := time.Now()
	job := &model.BackupJob{
		ID:            platform.NewID(),
		Name:          req.Name,
		Description:   req.Description,
		Kind:          req.Kind,
		Status:        model.StatusPending,
		ServerID:      req.ServerID,
		DatabaseID:    req.DatabaseID,
		DomainID:      req.DomainID,
		SourcePath:    req.SourcePath,
		IsCompressed:  req.Compress,
		IsEncrypted:   req.Encrypt,
		RetentionDays: retention,
		CreatedBy:     callerID(r),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := h.svc.Create(r.Context(), job); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusAccepted, job)
}

func (h *Backup) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, job)
}

func (h *Backup) List(w http.ResponseWriter, r *http.Request) {
	pg := request.ParsePagination(r)
	q := r.URL.Query()
	filter := core.ListFilter{
		ServerID:   q.Get("server_id"),
		DatabaseID: q.Get("database_id"),
		DomainID:   q.Get("domain_id"),
		Kind:       q.Get("kind"),
		Status:     q.Get("status"),
	}

	jobs, hasMore, err := h.svc.List(r.Context(), filter, pg.Limit, pg.Cursor)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var nextCursor string
	if hasMore && len(jobs) > 0 {
		nextCursor = jobs[len(jobs)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, jobs, nextCursor, hasMore)
}

func (h *Backup) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Download streams a completed job's artifact file.
func (h *Backup) Download(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if job.Status != model.StatusCompleted || job.FilePath == "" {
		response.WriteError(w, http.StatusConflict, "backup job has no downloadable artifact")
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(job.FilePath)+`"`)
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeFile(w, r, job.FilePath)
}

func (h *Backup) Logs(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	pg := request.ParsePagination(r)

	entries, hasMore, err := h.logs.ListFor(r.Context(), id, pg.Limit, pg.Cursor)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var nextCursor string
	if hasMore && len(entries) > 0 {
		nextCursor = entries[len(entries)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, entries, nextCursor, hasMore)
}
