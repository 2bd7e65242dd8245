package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/roeezolantz/errdex/internal/errordb"
)

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresStore creates a new Postgres store
func NewPostgresStore(url string, logger *slog.Logger) (*PostgresStore, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{db: db, logger: logger}, nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Migrate runs database migrations
func (s *PostgresStore) Migrate(ctx context.Context) error {
	schema := `
	-- API keys (created first since database_owners references it)
	CREATE TABLE IF NOT EXISTS api_keys (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		key_hash TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		last_used_at TIMESTAMPTZ,
		revoked_at TIMESTAMPTZ
	);

	-- Database name ownership
	CREATE TABLE IF NOT EXISTS database_owners (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		database_name TEXT NOT NULL UNIQUE,
		owner_key_id UUID REFERENCES api_keys(id),
		created_at TIMESTAMPTZ DEFAULT NOW()
	);

	-- Published error databases
	CREATE TABLE IF NOT EXISTS databases (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		version TEXT NOT NULL,
		description TEXT,
		record_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		UNIQUE(name, version)
	);

	-- Error records, ordered by selector within a database
	CREATE TABLE IF NOT EXISTS error_records (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		database_id UUID REFERENCES databases(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		signature TEXT NOT NULL,
		inputs JSONB NOT NULL,
		input_types JSONB NOT NULL,
		source TEXT NOT NULL,
		selector TEXT NOT NULL,
		UNIQUE(database_id, signature)
	);

	-- Indexes
	CREATE INDEX IF NOT EXISTS idx_databases_name ON databases(name);
	CREATE INDEX IF NOT EXISTS idx_error_records_selector ON error_records(database_id, selector);
	CREATE INDEX IF NOT EXISTS idx_error_records_name ON error_records(database_id, name);
	`

	_, err := s.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	s.logger.Info("database migrations complete")
	return nil
}

// CreateDatabase creates a new database version together with its records
func (s *PostgresStore) CreateDatabase(ctx context.Context, db *Database, records []errordb.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO databases (id, name, version, description, record_count)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.ExecContext(ctx, query, db.ID, db.Name, db.Version, db.Description, len(records)); err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrVersionExists
		}
		return err
	}

	recordQuery := `
		INSERT INTO error_records (id, database_id, name, signature, inputs, input_types, source, selector)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, r := range records {
		_, err := tx.ExecContext(ctx, recordQuery,
			generateID(), db.ID, r.Name, r.Signature,
			marshalStrings(r.Inputs), marshalStrings(r.InputTypes), r.Source, r.Selector,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetDatabase retrieves a database by name and version
func (s *PostgresStore) GetDatabase(ctx context.Context, name, version string) (*Database, error) {
	query := `
		SELECT id, name, version, description, record_count, created_at
		FROM databases
		WHERE name = $1 AND version = $2
	`
	var db Database
	var description sql.NullString
	err := s.db.QueryRowContext(ctx, query, name, version).Scan(
		&db.ID, &db.Name, &db.Version, &description, &db.RecordCount, &db.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	db.Description = description.String
	return &db, err
}

// GetRecords retrieves a database's records in selector order
func (s *PostgresStore) GetRecords(ctx context.Context, databaseID string) ([]errordb.Record, error) {
	query := `
		SELECT name, signature, inputs, input_types, source, selector
		FROM error_records
		WHERE database_id = $1
		ORDER BY selector ASC
	`
	rows, err := s.db.QueryContext(ctx, query, databaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetVersions retrieves all versions of a database, newest first
func (s *PostgresStore) GetVersions(ctx context.Context, name string) ([]string, error) {
	query := `SELECT version FROM databases WHERE name = $1 ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// ListDatabases lists databases with filtering and cursor-based pagination
func (s *PostgresStore) ListDatabases(ctx context.Context, filter DatabaseFilter, pagination PaginationParams) (*PaginatedResult[Database], error) {
	baseQuery := `
		SELECT
			name,
			STRING_AGG(version, ',') as versions,
			MAX(record_count) as record_count
		FROM databases
	`
	groupBy := ` GROUP BY name ORDER BY name`

	var query string
	var args []any
	switch {
	case pagination.Cursor != "" && filter.Query != "":
		query = baseQuery + ` WHERE name > $1 AND name ILIKE $2` + groupBy + ` LIMIT $3`
		args = []any{pagination.Cursor, "%" + filter.Query + "%", pagination.Limit + 1}
	case pagination.Cursor != "":
		query = baseQuery + ` WHERE name > $1` + groupBy + ` LIMIT $2`
		args = []any{pagination.Cursor, pagination.Limit + 1}
	case filter.Query != "":
		query = baseQuery + ` WHERE name ILIKE $1` + groupBy + ` LIMIT $2`
		args = []any{"%" + filter.Query + "%", pagination.Limit + 1}
	default:
		query = baseQuery + groupBy + ` LIMIT $1`
		args = []any{pagination.Limit + 1}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var databases []Database
	for rows.Next() {
		var name, versions string
		var recordCount int
		if err := rows.Scan(&name, &versions, &recordCount); err != nil {
			return nil, err
		}
		var versionList []string
		if versions != "" {
			versionList = strings.Split(versions, ",")
		}
		databases = append(databases, Database{
			Name:        name,
			RecordCount: recordCount,
			Versions:    versionList,
		})
	}

	hasMore := len(databases) > pagination.Limit
	var nextCursor string
	if hasMore {
		databases = databases[:pagination.Limit]
	}
	if len(databases) > 0 {
		nextCursor = databases[len(databases)-1].Name
	}

	return &PaginatedResult[Database]{
		Data:       databases,
		HasMore:    hasMore,
		NextCursor: nextCursor,
	}, rows.Err()
}

// DeleteDatabase deletes one version of a database
func (s *PostgresStore) DeleteDatabase(ctx context.Context, name, version string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM databases WHERE name = $1 AND version = $2", name, version)
	return err
}

// DatabaseExists checks if a database version exists
func (s *PostgresStore) DatabaseExists(ctx context.Context, name, version string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM databases WHERE name = $1 AND version = $2", name, version).Scan(&count)
	return count > 0, err
}

// GetDatabaseOwner returns the owner ID of a database name (first publisher)
func (s *PostgresStore) GetDatabaseOwner(ctx context.Context, name string) (string, error) {
	var ownerID sql.NullString
	query := `SELECT owner_key_id FROM database_owners WHERE database_name = $1`
	err := s.db.QueryRowContext(ctx, query, name).Scan(&ownerID)
	if err == sql.ErrNoRows {
		return "", nil // No owner (new database)
	}
	if err != nil {
		return "", err
	}
	return ownerID.String, nil
}

// SetDatabaseOwner sets the owner of a database name (first-come-first-served)
func (s *PostgresStore) SetDatabaseOwner(ctx context.Context, name, ownerKeyID string) error {
	query := `
		INSERT INTO database_owners (database_name, owner_key_id)
		VALUES ($1, $2)
		ON CONFLICT (database_name) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query, name, ownerKeyID)
	return err
}

// LookupSelector finds the record matching a normalized selector
func (s *PostgresStore) LookupSelector(ctx context.Context, databaseID, selector string) (*errordb.Record, error) {
	query := `
		SELECT name, signature, inputs, input_types, source, selector
		FROM error_records
		WHERE database_id = $1 AND selector = $2
	`
	var r errordb.Record
	var inputs, inputTypes string
	err := s.db.QueryRowContext(ctx, query, databaseID, selector).Scan(
		&r.Name, &r.Signature, &inputs, &inputTypes, &r.Source, &r.Selector,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	r.Inputs = unmarshalStrings(inputs)
	r.InputTypes = unmarshalStrings(inputTypes)
	return &r, nil
}

// SearchRecords finds records whose error name contains query, case-insensitive
func (s *PostgresStore) SearchRecords(ctx context.Context, databaseID, query string) ([]errordb.Record, error) {
	stmt := `
		SELECT name, signature, inputs, input_types, source, selector
		FROM error_records
		WHERE database_id = $1 AND name ILIKE $2
		ORDER BY selector ASC
	`
	rows, err := s.db.QueryContext(ctx, stmt, databaseID, "%"+query+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

// CreateAPIKey creates a new API key
func (s *PostgresStore) CreateAPIKey(ctx context.Context, name string) (string, error) {
	key := generateAPIKey()
	hash := hashAPIKey(key)
	_, err := s.db.ExecContext(ctx, "INSERT INTO api_keys (key_hash, name) VALUES ($1, $2)", hash, name)
	if err != nil {
		return "", err
	}
	return key, nil
}

// ValidateAPIKey validates an API key
func (s *PostgresStore) ValidateAPIKey(ctx context.Context, key string) (*APIKey, error) {
	hash := hashAPIKey(key)
	var ak APIKey
	err := s.db.QueryRowContext(ctx, "SELECT id, key_hash, name, created_at FROM api_keys WHERE key_hash = $1 AND revoked_at IS NULL", hash).Scan(
		&ak.ID, &ak.KeyHash, &ak.Name, &ak.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	// Update last used
	_, _ = s.db.ExecContext(ctx, "UPDATE api_keys SET last_used_at = NOW() WHERE id = $1", ak.ID)
	return &ak, nil
}

// ListAPIKeys lists all API keys
func (s *PostgresStore) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, created_at, last_used_at FROM api_keys WHERE revoked_at IS NULL")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []APIKey
	for rows.Next() {
		var k APIKey
		var lastUsed sql.NullString
		if err := rows.Scan(&k.ID, &k.Name, &k.CreatedAt, &lastUsed); err != nil {
			return nil, err
		}
		if lastUsed.Valid {
			k.LastUsedAt = lastUsed.String
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// RevokeAPIKey revokes an API key
func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE api_keys SET revoked_at = NOW() WHERE id = $1", id)
	return err
}
