package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	temporalmocks "go.temporal.io/sdk/mocks"

	"github.com/superpanel/superpanel/internal/core"
	"github.com/superpanel/superpanel/internal/model"
)

func newBackupHandler(db core.DB) (*Backup, *temporalmocks.Client) {
	tc := &temporalmocks.Client{}
	return NewBackup(core.NewBackupJobService(db, tc), core.NewBackupLogService(db), 30), tc
}

// --- Create ---

func TestBackupCreate_InvalidJSON(t *testing.T) {
	h, _ := newBackupHandler(&handlerMockDB{})
	rec := httptest.NewRecorder()
	r := newRequestRaw(http.MethodPost, "/backups", "{bad json")

	h.Create(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "invalid JSON")
}

func TestBackupCreate_MissingRequiredFields(t *testing.T) {
	h, _ := newBackupHandler(&handlerMockDB{})
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/backups", map[string]any{})

	h.Create(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "validation error")
}

func TestBackupCreate_UnknownKind(t *testing.T) {
	h, _ := newBackupHandler(&handlerMockDB{})
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/backups", map[string]any{
		"name": "nightly",
		"kind": "floppy_disk",
	})

	h.Create(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBackupCreate_MissingSourceReference(t *testing.T) {
	tests := []struct {
		kind    string
		wantErr string
	}{
		{"database", "database_id"},
		{"file_tree", "source_path"},
		{"website", "domain_id"},
		{"mailbox", "domain_id"},
		{"full_server", "server_id"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			h, _ := newBackupHandler(&handlerMockDB{})
			rec := httptest.NewRecorder()
			r := newRequest(http.MethodPost, "/backups", map[string]any{
				"name": "nightly",
				"kind": tt.kind,
			})

			h.Create(rec, r)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeErrorResponse(rec)
			assert.Contains(t, body["error"], tt.wantErr)
		})
	}
}

func TestBackupCreate_InvalidRetention(t *testing.T) {
	h, _ := newBackupHandler(&handlerMockDB{})
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/backups", map[string]any{
		"name":           "nightly",
		"kind":           "database",
		"database_id":    "test-db-1",
		"retention_days": 0,
	})

	h.Create(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBackupCreate_Accepted(t *testing.T) {
	db := &handlerMockDB{}
	h, tc := newBackupHandler(db)

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.CommandTag{}, nil)
	wfRun := &temporalmocks.WorkflowRun{}
	tc.On("ExecuteWorkflow", mock.Anything, mock.Anything, "CreateBackupJobWorkflow", mock.Anything).Return(wfRun, nil)

	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/backups", map[string]any{
		"name":        "nightly",
		"kind":        "database",
		"database_id": "test-db-1",
		"compress":    true,
	})
	r.Header.Set("X-User-ID", "admin")

	h.Create(rec, r)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var job model.BackupJob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, model.StatusPending, job.Status)
	assert.Equal(t, "admin", job.CreatedBy)
	assert.True(t, job.IsCompressed)
	assert.False(t, job.IsEncrypted)
	assert.Equal(t, 30, job.RetentionDays)
	db.AssertExpectations(t)
	tc.AssertExpectations(t)
}

// --- Get ---

func TestBackupGet_EmptyID(t *testing.T) {
	h, _ := newBackupHandler(&handlerMockDB{})
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodGet, "/backups/", nil)
	r = withChiURLParam(r, "id", "")

	h.Get(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "missing required ID")
}

func TestBackupGet_NotFound(t *testing.T) {
	db := &handlerMockDB{}
	h, _ := newBackupHandler(db)

	row := &handlerMockRow{scanFunc: func(dest ...any) error {
		return pgx.ErrNoRows
	}}
	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(row)

	rec := httptest.NewRecorder()
	r := newRequest(http.MethodGet, "/backups/"+validID, nil)
	r = withChiURLParam(r, "id", validID)

	h.Get(rec, r)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	db.AssertExpectations(t)
}

// --- Delete ---

func TestBackupDelete_EmptyID(t *testing.T) {
	h, _ := newBackupHandler(&handlerMockDB{})
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodDelete, "/backups/", nil)
	r = withChiURLParam(r, "id", "")

	h.Delete(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBackupDelete_RunningConflict(t *testing.T) {
	db := &handlerMockDB{}
	h, _ := newBackupHandler(db)

	row := &handlerMockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*string)) = model.StatusRunning
		*(dest[1].(*string)) = ""
		return nil
	}}
	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(row)

	rec := httptest.NewRecorder()
	r := newRequest(http.MethodDelete, "/backups/"+validID, nil)
	r = withChiURLParam(r, "id", validID)

	h.Delete(rec, r)

	assert.Equal(t, http.StatusConflict, rec.Code)
	db.AssertExpectations(t)
}

// --- Download ---

func TestBackupDownload_NotCompleted(t *testing.T) {
	db := &handlerMockDB{}
	h, _ := newBackupHandler(db)

	row := &handlerMockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*string)) = validID
		*(dest[1].(*string)) = "nightly"
		*(dest[3].(*string)) = model.BackupKindDatabase
		*(dest[4].(*string)) = model.StatusRunning
		return nil
	}}
	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(row)

	rec := httptest.NewRecorder()
	r := newRequest(http.MethodGet, "/backups/"+validID+"/download", nil)
	r = withChiURLParam(r, "id", validID)

	h.Download(rec, r)

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "no downloadable artifact")
	db.AssertExpectations(t)
}

// --- Logs ---

func TestBackupLogs_EmptyID(t *testing.T) {
	h, _ := newBackupHandler(&handlerMockDB{})
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodGet, "/backups//logs", nil)
	r = withChiURLParam(r, "id", "")

	h.Logs(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- Error response format ---

func TestBackupCreate_ErrorResponseFormat(t *testing.T) {
	h, _ := newBackupHandler(&handlerMockDB{})
	rec := httptest.NewRecorder()
	r := newRequestRaw(http.MethodPost, "/backups", "{bad")

	h.Create(rec, r)

	var body map[string]any
	err := json.Unmarshal(rec.Body.Bytes(), &body)
	require.NoError(t, err)
	_, hasError := body["error"]
	assert.True(t, hasError)
}
