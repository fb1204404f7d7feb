package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superpanel/superpanel/internal/model"
)

func TestStrategyForCoversAllKinds(t *testing.T) {
	for _, kind := range model.BackupKinds {
		s, err := StrategyFor(kind)
		require.NoError(t, err, kind)
		assert.NotNil(t, s.Produce, kind)
		assert.NotNil(t, s.Restore, kind)
	}

	_, err := StrategyFor("tape")
	require.Error(t, err)
}

func TestDatabaseBackupRestore(t *testing.T) {
	catalog := newStubCatalog()
	catalog.databases["db-1"] = &model.Database{ID: "db-1", ServerID: "srv-1", Name: "shop"}
	catalog.dumps["shop"] = "CREATE TABLE orders (id INT);\nINSERT INTO orders VALUES (1);\n"

	engine, _ := newTestEngine(t, catalog)
	job := &model.BackupJob{
		ID:           "job-db",
		Kind:         model.BackupKindDatabase,
		DatabaseID:   strPtr("db-1"),
		IsCompressed: true,
	}

	result, err := engine.Run(context.Background(), job)
	require.NoError(t, err)
	job.FilePath = result.FilePath

	n, err := engine.Restore(context.Background(), job, model.RestoreRequest{})
	require.NoError(t, err)

	assert.Equal(t, catalog.dumps["shop"], catalog.restoredDumps["shop"])
	assert.Equal(t, int64(len(catalog.dumps["shop"])), n)
}

func TestWebsiteBackupUsesDomainStorage(t *testing.T) {
	storage := t.TempDir()
	writeTree(t, storage, map[string]string{
		"public/index.html": "<p>site</p>",
	})

	catalog := newStubCatalog()
	catalog.domains["dom-1"] = &model.Domain{ID: "dom-1", ServerID: "srv-1", Name: "example.com", StoragePath: storage}

	engine, _ := newTestEngine(t, catalog)
	job := &model.BackupJob{
		ID:       "job-web",
		Kind:     model.BackupKindWebsite,
		DomainID: strPtr("dom-1"),
	}

	result, err := engine.Run(context.Background(), job)
	require.NoError(t, err)
	job.FilePath = result.FilePath

	dest := t.TempDir()
	n, err := engine.Restore(context.Background(), job, model.RestoreRequest{RestorePath: dest, Overwrite: true})
	require.NoError(t, err)
	assert.Greater(t, n, int64(0))

	data, err := os.ReadFile(filepath.Join(dest, "public", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<p>site</p>", string(data))
}

func TestWebsiteBackupRequiresDomainOrSource(t *testing.T) {
	engine, _ := newTestEngine(t, newStubCatalog())

	_, err := engine.Run(context.Background(), &model.BackupJob{
		ID:   "job-web",
		Kind: model.BackupKindWebsite,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "domain reference or source path")
}

func TestMailboxBackupRestore(t *testing.T) {
	catalog := newStubCatalog()
	catalog.domains["dom-1"] = &model.Domain{ID: "dom-1", ServerID: "srv-1", Name: "example.com"}
	catalog.accounts["dom-1"] = []model.MailAccount{
		{ID: "ma-1", DomainID: "dom-1", Address: "info@example.com", DisplayName: "Info", QuotaBytes: 1 << 30},
		{ID: "ma-2", DomainID: "dom-1", Address: "sales@example.com", DisplayName: "Sales", QuotaBytes: 2 << 30},
	}

	engine, _ := newTestEngine(t, catalog)
	job := &model.BackupJob{
		ID:       "job-mail",
		Kind:     model.BackupKindMailbox,
		DomainID: strPtr("dom-1"),
	}

	result, err := engine.Run(context.Background(), job)
	require.NoError(t, err)
	job.FilePath = result.FilePath

	n, err := engine.Restore(context.Background(), job, model.RestoreRequest{})
	require.NoError(t, err)
	assert.Greater(t, n, int64(0))
	assert.Equal(t, catalog.accounts["dom-1"], catalog.restoredAccounts["dom-1"])
}

func TestFullServerBackupRestore(t *testing.T) {
	storage := t.TempDir()
	writeTree(t, storage, map[string]string{
		"index.html": "<p>home</p>",
	})

	catalog := newStubCatalog()
	catalog.servers["srv-1"] = &model.Server{ID: "srv-1", Name: "web01", Hostname: "web01.internal"}
	catalog.databases["db-1"] = &model.Database{ID: "db-1", ServerID: "srv-1", Name: "shop"}
	catalog.databases["db-2"] = &model.Database{ID: "db-2", ServerID: "srv-1", Name: "blog"}
	catalog.domains["dom-1"] = &model.Domain{ID: "dom-1", ServerID: "srv-1", Name: "example.com", StoragePath: storage}
	catalog.dumps["shop"] = "INSERT INTO orders VALUES (1);\n"
	catalog.dumps["blog"] = "INSERT INTO posts VALUES (1);\n"

	engine, _ := newTestEngine(t, catalog)
	job := &model.BackupJob{
		ID:           "job-srv",
		Kind:         model.BackupKindFullServer,
		ServerID:     strPtr("srv-1"),
		IsCompressed: true,
	}

	result, err := engine.Run(context.Background(), job)
	require.NoError(t, err)
	job.FilePath = result.FilePath

	dest := t.TempDir()
	n, err := engine.Restore(context.Background(), job, model.RestoreRequest{RestorePath: dest, Overwrite: true})
	require.NoError(t, err)
	assert.Greater(t, n, int64(0))

	assert.Equal(t, catalog.dumps["shop"], catalog.restoredDumps["shop"])
	assert.Equal(t, catalog.dumps["blog"], catalog.restoredDumps["blog"])

	data, err := os.ReadFile(filepath.Join(dest, "domains", "example.com", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<p>home</p>", string(data))
}

func TestFullServerBackupRequiresServer(t *testing.T) {
	engine, _ := newTestEngine(t, newStubCatalog())

	_, err := engine.Run(context.Background(), &model.BackupJob{
		ID:   "job-srv",
		Kind: model.BackupKindFullServer,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server reference")
}
