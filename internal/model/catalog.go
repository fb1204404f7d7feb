package model

import "time"

// The catalog types mirror records owned by the wider panel. The backup
// engine only reads them, to validate source references and to derive
// human-readable names for logs and artifact content.

type Server struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Hostname  string    `json:"hostname"`
	CreatedAt time.Time `json:"created_at"`
}

type Database struct {
	ID        string    `json:"id"`
	ServerID  string    `json:"server_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Domain struct {
	ID          string    `json:"id"`
	ServerID    string    `json:"server_id"`
	Name        string    `json:"name"`
	StoragePath string    `json:"storage_path"`
	CreatedAt   time.Time `json:"created_at"`
}

type MailAccount struct {
	ID          string    `json:"id"`
	DomainID    string    `json:"domain_id"`
	Address     string    `json:"address"`
	DisplayName string    `json:"display_name,omitempty"`
	QuotaBytes  int64     `json:"quota_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}
