package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	temporalmocks "go.temporal.io/sdk/mocks"

	"github.com/superpanel/superpanel/internal/model"
)

func statusRow(status string) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*string)) = status
		return nil
	}}
}

func TestRestoreService_Restore_Success(t *testing.T) {
	db := &mockDB{}
	tc := &temporalmocks.Client{}
	svc := NewRestoreService(db, tc)
	ctx := context.Background()

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(statusRow(model.StatusCompleted))
	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.CommandTag{}, nil)

	wfRun := &temporalmocks.WorkflowRun{}
	wfRun.On("Get", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		result := args.Get(1).(*model.RestoreResult)
		*result = model.RestoreResult{Success: true, Message: "restore completed", BytesRestored: 4096}
	}).Return(nil)
	tc.On("ExecuteWorkflow", mock.Anything, mock.Anything, "RestoreBackupWorkflow", mock.Anything).Return(wfRun, nil)

	result, err := svc.Restore(ctx, "test-job-1", model.RestoreRequest{RestorePath: "/srv/restore", Overwrite: true})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Success)
	assert.Equal(t, int64(4096), result.BytesRestored)
	db.AssertExpectations(t)
	tc.AssertExpectations(t)
}

func TestRestoreService_Restore_NotCompleted(t *testing.T) {
	db := &mockDB{}
	tc := &temporalmocks.Client{}
	svc := NewRestoreService(db, tc)
	ctx := context.Background()

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(statusRow(model.StatusRunning))

	result, err := svc.Restore(ctx, "test-job-1", model.RestoreRequest{})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrInvalidState)
	db.AssertExpectations(t)
}

func TestRestoreService_Restore_NotFound(t *testing.T) {
	db := &mockDB{}
	tc := &temporalmocks.Client{}
	svc := NewRestoreService(db, tc)
	ctx := context.Background()

	row := &mockRow{scanFunc: func(dest ...any) error {
		return pgx.ErrNoRows
	}}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(row)

	result, err := svc.Restore(ctx, "nonexistent", model.RestoreRequest{})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNotFound)
	db.AssertExpectations(t)
}

func TestRestoreService_Restore_WorkflowError(t *testing.T) {
	db := &mockDB{}
	tc := &temporalmocks.Client{}
	svc := NewRestoreService(db, tc)
	ctx := context.Background()

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(statusRow(model.StatusCompleted))
	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.CommandTag{}, nil)
	tc.On("ExecuteWorkflow", mock.Anything, mock.Anything, "RestoreBackupWorkflow", mock.Anything).Return(nil, errors.New("temporal down"))

	result, err := svc.Restore(ctx, "test-job-1", model.RestoreRequest{})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "start RestoreBackupWorkflow")
	db.AssertExpectations(t)
	tc.AssertExpectations(t)
}

func TestRestoreService_GetOperation_Success(t *testing.T) {
	db := &mockDB{}
	tc := &temporalmocks.Client{}
	svc := NewRestoreService(db, tc)
	ctx := context.Background()

	now := time.Now().Truncate(time.Microsecond)
	row := &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*string)) = "test-restore-1"
		*(dest[1].(*string)) = "test-job-1"
		*(dest[2].(*string)) = model.StatusCompleted
		*(dest[3].(*string)) = "/srv/restore"
		*(dest[4].(*bool)) = true
		*(dest[5].(*int64)) = 4096
		*(dest[6].(**string)) = nil
		*(dest[7].(**time.Time)) = &now
		*(dest[8].(**time.Time)) = &now
		*(dest[9].(*time.Time)) = now
		return nil
	}}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(row)

	op, err := svc.GetOperation(ctx, "test-restore-1")
	require.NoError(t, err)
	require.NotNil(t, op)
	assert.Equal(t, "test-job-1", op.BackupJobID)
	assert.Equal(t, int64(4096), op.BytesRestored)
	db.AssertExpectations(t)
}

func TestRestoreService_GetOperation_NotFound(t *testing.T) {
	db := &mockDB{}
	tc := &temporalmocks.Client{}
	svc := NewRestoreService(db, tc)
	ctx := context.Background()

	row := &mockRow{scanFunc: func(dest ...any) error {
		return pgx.ErrNoRows
	}}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(row)

	op, err := svc.GetOperation(ctx, "nonexistent")
	require.Error(t, err)
	assert.Nil(t, op)
	assert.ErrorIs(t, err, ErrNotFound)
	db.AssertExpectations(t)
}
