package backup

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/superpanel/superpanel/internal/model"
)

// stubCatalog serves canned records and captures replayed restores.
type stubCatalog struct {
	servers   map[string]*model.Server
	databases map[string]*model.Database
	domains   map[string]*model.Domain
	accounts  map[string][]model.MailAccount

	dumps map[string]string

	mu               sync.Mutex
	restoredDumps    map[string]string
	restoredAccounts map[string][]model.MailAccount
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{
		servers:          map[string]*model.Server{},
		databases:        map[string]*model.Database{},
		domains:          map[string]*model.Domain{},
		accounts:         map[string][]model.MailAccount{},
		dumps:            map[string]string{},
		restoredDumps:    map[string]string{},
		restoredAccounts: map[string][]model.MailAccount{},
	}
}

func (s *stubCatalog) ServerByID(_ context.Context, id string) (*model.Server, error) {
	srv, ok := s.servers[id]
	if !ok {
		return nil, fmt.Errorf("server %s not found", id)
	}
	return srv, nil
}

func (s *stubCatalog) DatabaseByID(_ context.Context, id string) (*model.Database, error) {
	db, ok := s.databases[id]
	if !ok {
		return nil, fmt.Errorf("database %s not found", id)
	}
	return db, nil
}

func (s *stubCatalog) DomainByID(_ context.Context, id string) (*model.Domain, error) {
	d, ok := s.domains[id]
	if !ok {
		return nil, fmt.Errorf("domain %s not found", id)
	}
	return d, nil
}

func (s *stubCatalog) DatabasesByServer(_ context.Context, serverID string) ([]model.Database, error) {
	var out []model.Database
	for _, db := range s.databases {
		if db.ServerID == serverID {
			out = append(out, *db)
		}
	}
	return out, nil
}

func (s *stubCatalog) DomainsByServer(_ context.Context, serverID string) ([]model.Domain, error) {
	var out []model.Domain
	for _, d := range s.domains {
		if d.ServerID == serverID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (s *stubCatalog) MailAccountsByDomain(_ context.Context, domainID string) ([]model.MailAccount, error) {
	return s.accounts[domainID], nil
}

func (s *stubCatalog) DumpDatabase(_ context.Context, name string, w io.Writer) error {
	dump, ok := s.dumps[name]
	if !ok {
		return fmt.Errorf("no dump registered for %s", name)
	}
	_, err := io.WriteString(w, dump)
	return err
}

func (s *stubCatalog) RestoreDatabase(_ context.Context, name string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.restoredDumps[name] = string(data)
	s.mu.Unlock()
	return nil
}

func (s *stubCatalog) RestoreMailAccounts(_ context.Context, domainID string, accounts []model.MailAccount) error {
	s.mu.Lock()
	s.restoredAccounts[domainID] = accounts
	s.mu.Unlock()
	return nil
}

// memoryRecorder accumulates log entries in order.
type memoryRecorder struct {
	mu       sync.Mutex
	messages []string
}

func (m *memoryRecorder) Append(_ context.Context, _, _, message string, _ *string) error {
	m.mu.Lock()
	m.messages = append(m.messages, message)
	m.mu.Unlock()
	return nil
}

func strPtr(s string) *string {
	return &s
}
