package activity

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os/exec"
	"strings"

	"github.com/superpanel/superpanel/internal/model"
)

// Catalog is the worker's view of the panel's source records, backed by the
// job database plus the MySQL server holding tenant databases. It satisfies
// the engine's catalog interface.
type Catalog struct {
	db       DB
	mysqlDSN string
}

// NewCatalog creates a new Catalog over the job database and a MySQL DSN in
// Go driver format (user:pass@tcp(host:port)/).
func NewCatalog(db DB, mysqlDSN string) *Catalog {
	return &Catalog{db: db, mysqlDSN: mysqlDSN}
}

func (c *Catalog) ServerByID(ctx context.Context, id string) (*model.Server, error) {
	var s model.Server
	err := c.db.QueryRow(ctx,
		`SELECT id, name, hostname, created_at FROM servers WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.Hostname, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get server by id: %w", err)
	}
	return &s, nil
}

func (c *Catalog) DatabaseByID(ctx context.Context, id string) (*model.Database, error) {
	var d model.Database
	err := c.db.QueryRow(ctx,
		`SELECT id, server_id, name, created_at FROM databases WHERE id = $1`, id,
	).Scan(&d.ID, &d.ServerID, &d.Name, &d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get database by id: %w", err)
	}
	return &d, nil
}

func (c *Catalog) DomainByID(ctx context.Context, id string) (*model.Domain, error) {
	var d model.Domain
	err := c.db.QueryRow(ctx,
		`SELECT id, server_id, name, storage_path, created_at FROM domains WHERE id = $1`, id,
	).Scan(&d.ID, &d.ServerID, &d.Name, &d.StoragePath, &d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get domain by id: %w", err)
	}
	return &d, nil
}

func (c *Catalog) DatabasesByServer(ctx context.Context, serverID string) ([]model.Database, error) {
	rows, err := c.db.Query(ctx,
		`SELECT id, server_id, name, created_at FROM databases WHERE server_id = $1 ORDER BY name`, serverID)
	if err != nil {
		return nil, fmt.Errorf("list databases by server: %w", err)
	}
	defer rows.Close()

	var databases []model.Database
	for rows.Next() {
		var d model.Database
		if err := rows.Scan(&d.ID, &d.ServerID, &d.Name, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan database: %w", err)
		}
		databases = append(databases, d)
	}
	return databases, rows.Err()
}

func (c *Catalog) DomainsByServer(ctx context.Context, serverID string) ([]model.Domain, error) {
	rows, err := c.db.Query(ctx,
		`SELECT id, server_id, name, storage_path, created_at FROM domains WHERE server_id = $1 ORDER BY name`, serverID)
	if err != nil {
		return nil, fmt.Errorf("list domains by server: %w", err)
	}
	defer rows.Close()

	var domains []model.Domain
	for rows.Next() {
		var d model.Domain
		if err := rows.Scan(&d.ID, &d.ServerID, &d.Name, &d.StoragePath, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan domain: %w", err)
		}
		domains = append(domains, d)
	}
	return domains, rows.Err()
}

func (c *Catalog) MailAccountsByDomain(ctx context.Context, domainID string) ([]model.MailAccount, error) {
	rows, err := c.db.Query(ctx,
		`SELECT id, domain_id, address, display_name, quota_bytes, created_at
		 FROM mail_accounts WHERE domain_id = $1 ORDER BY address`, domainID)
	if err != nil {
		return nil, fmt.Errorf("list mail accounts by domain: %w", err)
	}
	defer rows.Close()

	var accounts []model.MailAccount
	for rows.Next() {
		var m model.MailAccount
		if err := rows.Scan(&m.ID, &m.DomainID, &m.Address, &m.DisplayName, &m.QuotaBytes, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan mail account: %w", err)
		}
		accounts = append(accounts, m)
	}
	return accounts, rows.Err()
}

// DumpDatabase streams a mysqldump of the named database into w.
func (c *Catalog) DumpDatabase(ctx context.Context, name string, w io.Writer) error {
	if err := validateDatabaseName(name); err != nil {
		return err
	}
	args, err := mysqlArgs(c.mysqlDSN)
	if err != nil {
		return fmt.Errorf("parse mysql DSN: %w", err)
	}
	args = append(args, "--single-transaction", "--routines", "--triggers", name)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "mysqldump", args...)
	cmd.Stdout = w
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("mysqldump %s: %w: %s", name, err, stderr.String())
	}
	return nil
}

// RestoreDatabase replays a SQL export from r against the named database.
func (c *Catalog) RestoreDatabase(ctx context.Context, name string, r io.Reader) error {
	if err := validateDatabaseName(name); err != nil {
		return err
	}
	args, err := mysqlArgs(c.mysqlDSN)
	if err != nil {
		return fmt.Errorf("parse mysql DSN: %w", err)
	}
	args = append(args, name)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "mysql", args...)
	cmd.Stdin = r
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("mysql import into %s: %w: %s", name, err, stderr.String())
	}
	return nil
}

// RestoreMailAccounts upserts exported mail account metadata for a domain.
func (c *Catalog) RestoreMailAccounts(ctx context.Context, domainID string, accounts []model.MailAccount) error {
	for _, account := range accounts {
		_, err := c.db.Exec(ctx,
			`INSERT INTO mail_accounts (id, domain_id, address, display_name, quota_bytes, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (id) DO UPDATE SET address = $3, display_name = $4, quota_bytes = $5`,
			account.ID, domainID, account.Address, account.DisplayName, account.QuotaBytes, account.CreatedAt)
		if err != nil {
			return fmt.Errorf("upsert mail account %s: %w", account.Address, err)
		}
	}
	return nil
}

// validateDatabaseName keeps names we pass to mysql tooling shell-safe.
func validateDatabaseName(name string) error {
	if name == "" {
		return fmt.Errorf("empty database name")
	}
	for _, r := range name {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == '-') {
			return fmt.Errorf("invalid database name %q", name)
		}
	}
	return nil
}

// mysqlArgs converts a Go MySQL driver DSN (user:pass@tcp(host:port)/dbname)
// into command line auth arguments for mysql and mysqldump.
func mysqlArgs(dsn string) ([]string, error) {
	var args []string

	if !strings.Contains(dsn, "@tcp(") {
		return nil, fmt.Errorf("invalid mysql DSN format")
	}
	parts := strings.SplitN(dsn, "@tcp(", 2)

	userPass := parts[0]
	hostRest := parts[1]

	if idx := strings.Index(userPass, ":"); idx >= 0 {
		user := userPass[:idx]
		pass := userPass[idx+1:]
		args = append(args, "-u", user)
		if pass != "" {
			args = append(args, fmt.Sprintf("-p%s", pass))
		}
	} else {
		args = append(args, "-u", userPass)
	}

	if idx := strings.Index(hostRest, ")"); idx >= 0 {
		hostPort := hostRest[:idx]
		host, port, err := net.SplitHostPort(hostPort)
		if err != nil {
			args = append(args, "-h", hostPort)
		} else {
			args = append(args, "-h", host)
			if port != "" {
				args = append(args, "-P", port)
			}
		}
	}

	return args, nil
}

// Recorder writes engine log entries straight to the job database. It backs
// the engine's recorder interface; unlike Store it is not registered as an
// activity struct.
type Recorder struct {
	db DB
}

// NewRecorder creates a new Recorder.
func NewRecorder(db DB) *Recorder {
	return &Recorder{db: db}
}

func (r *Recorder) Append(ctx context.Context, jobID, level, message string, details *string) error {
	store := Store{db: r.db}
	return store.AppendBackupLog(ctx, AppendBackupLogParams{
		BackupJobID: jobID,
		Level:       level,
		Message:     message,
		Details:     details,
	})
}
