// Package storage persists published error databases and API keys.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roeezolantz/errdex/internal/config"
	"github.com/roeezolantz/errdex/internal/errordb"
)

// DatabaseStore handles published error database operations
type DatabaseStore interface {
	CreateDatabase(ctx context.Context, db *Database, records []errordb.Record) error
	GetDatabase(ctx context.Context, name, version string) (*Database, error)
	GetRecords(ctx context.Context, databaseID string) ([]errordb.Record, error)
	GetVersions(ctx context.Context, name string) ([]string, error)
	ListDatabases(ctx context.Context, filter DatabaseFilter, pagination PaginationParams) (*PaginatedResult[Database], error)
	DeleteDatabase(ctx context.Context, name, version string) error
	DatabaseExists(ctx context.Context, name, version string) (bool, error)
	GetDatabaseOwner(ctx context.Context, name string) (string, error)
	SetDatabaseOwner(ctx context.Context, name, ownerKeyID string) error
	LookupSelector(ctx context.Context, databaseID, selector string) (*errordb.Record, error)
	SearchRecords(ctx context.Context, databaseID, query string) ([]errordb.Record, error)
}

// APIKeyStore handles API key operations
type APIKeyStore interface {
	CreateAPIKey(ctx context.Context, name string) (key string, err error)
	ValidateAPIKey(ctx context.Context, key string) (*APIKey, error)
	ListAPIKeys(ctx context.Context) ([]APIKey, error)
	RevokeAPIKey(ctx context.Context, id string) error
}

// Store combines all storage interfaces with lifecycle methods.
// Domain services define their own minimal interfaces based on their actual usage.
type Store interface {
	DatabaseStore
	APIKeyStore

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}

// Database represents one published error database version
type Database struct {
	ID          string
	Name        string
	Version     string
	Description string
	RecordCount int
	OwnerID     string // API key ID that first published this name
	CreatedAt   string
	Versions    []string // Used for list aggregation (not stored directly)
}

// APIKey represents an API key
type APIKey struct {
	ID         string
	Name       string
	KeyHash    string
	CreatedAt  string
	LastUsedAt string
	RevokedAt  string
}

// DatabaseFilter contains filter options for listing databases
type DatabaseFilter struct {
	Query string
}

// PaginationParams contains pagination options
type PaginationParams struct {
	Limit  int
	Cursor string
}

// PaginatedResult contains paginated results
type PaginatedResult[T any] struct {
	Data       []T
	HasMore    bool
	NextCursor string
}

// New creates a new store based on configuration
func New(cfg config.StorageConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Type {
	case "sqlite":
		return NewSQLiteStore(cfg.SQLite.Path, logger)
	case "postgres":
		return NewPostgresStore(cfg.Postgres.URL, logger)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
