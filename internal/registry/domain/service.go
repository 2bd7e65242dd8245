package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roeezolantz/errdex/internal/errordb"
	"github.com/roeezolantz/errdex/internal/selector"
	"github.com/roeezolantz/errdex/internal/storage"
	"github.com/roeezolantz/errdex/internal/validation"
)

// Common errors returned by the registry service.
var (
	ErrNotFound        = errors.New("database not found")
	ErrVersionExists   = errors.New("version already exists")
	ErrForbidden       = errors.New("not authorized to modify this database")
	ErrInvalidVersion  = errors.New("invalid semver version")
	ErrInvalidName     = errors.New("invalid database name")
	ErrInvalidSelector = errors.New("invalid selector")
	ErrSelectorMiss    = errors.New("selector not found")
)

// DatabaseStore defines the storage operations needed by the registry domain.
type DatabaseStore interface {
	CreateDatabase(ctx context.Context, db *storage.Database, records []errordb.Record) error
	GetDatabase(ctx context.Context, name, version string) (*storage.Database, error)
	GetRecords(ctx context.Context, databaseID string) ([]errordb.Record, error)
	GetVersions(ctx context.Context, name string) ([]string, error)
	ListDatabases(ctx context.Context, filter storage.DatabaseFilter, pagination storage.PaginationParams) (*storage.PaginatedResult[storage.Database], error)
	DeleteDatabase(ctx context.Context, name, version string) error
	DatabaseExists(ctx context.Context, name, version string) (bool, error)
	GetDatabaseOwner(ctx context.Context, name string) (string, error)
	SetDatabaseOwner(ctx context.Context, name, ownerKeyID string) error
	LookupSelector(ctx context.Context, databaseID, sel string) (*errordb.Record, error)
	SearchRecords(ctx context.Context, databaseID, query string) ([]errordb.Record, error)
}

type service struct {
	databases DatabaseStore
}

// NewService creates a new registry service.
func NewService(databases DatabaseStore) *service {
	return &service{databases: databases}
}

// Publish publishes a new database version. An explicit version in the
// request wins; otherwise the latest published version's patch is bumped,
// and a brand-new name starts at 0.1.0.
func (s *service) Publish(ctx context.Context, name, ownerID string, req PublishRequest) (*PublishResult, error) {
	if err := validation.ValidateDatabaseName(name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidName, err)
	}

	// Check name ownership
	currentOwner, err := s.databases.GetDatabaseOwner(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("checking ownership: %w", err)
	}
	if currentOwner != "" && currentOwner != ownerID {
		return nil, ErrForbidden
	}

	version, err := s.resolvePublishVersion(ctx, name, req.Version)
	if err != nil {
		return nil, err
	}

	db := &storage.Database{
		ID:          uuid.New().String(),
		Name:        name,
		Version:     version,
		Description: req.Description,
		OwnerID:     ownerID,
	}

	if err := s.databases.CreateDatabase(ctx, db, req.Records); err != nil {
		if errors.Is(err, storage.ErrVersionExists) {
			return nil, ErrVersionExists
		}
		return nil, fmt.Errorf("creating database: %w", err)
	}

	// First publisher owns the name. Best-effort, publish already
	// succeeded.
	if ownerID != "" {
		_ = s.databases.SetDatabaseOwner(ctx, name, ownerID)
	}

	return &PublishResult{
		Name:        name,
		Version:     version,
		RecordCount: len(req.Records),
	}, nil
}

// resolvePublishVersion applies the version policy for a publish.
func (s *service) resolvePublishVersion(ctx context.Context, name, requested string) (string, error) {
	if requested != "" {
		if err := validation.ValidateVersion(requested); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidVersion, err)
		}
		version := validation.NormalizeVersion(requested)

		exists, err := s.databases.DatabaseExists(ctx, name, version)
		if err != nil {
			return "", fmt.Errorf("checking existence: %w", err)
		}
		if exists {
			return "", ErrVersionExists
		}
		return version, nil
	}

	versions, err := s.databases.GetVersions(ctx, name)
	if err != nil {
		return "", fmt.Errorf("getting versions: %w", err)
	}
	if len(versions) == 0 {
		return "0.1.0", nil
	}

	bumped, err := validation.BumpPatch(validation.ResolveLatest(versions))
	if err != nil {
		return "", fmt.Errorf("bumping version: %w", err)
	}
	return bumped, nil
}

// Get retrieves a specific database version. "latest" and "" resolve to
// the newest published version.
func (s *service) Get(ctx context.Context, name, version string) (*Database, error) {
	db, err := s.getStored(ctx, name, version)
	if err != nil {
		return nil, err
	}
	return toDatabase(db), nil
}

// GetRecords retrieves a database version's records in selector order.
func (s *service) GetRecords(ctx context.Context, name, version string) ([]errordb.Record, error) {
	db, err := s.getStored(ctx, name, version)
	if err != nil {
		return nil, err
	}

	records, err := s.databases.GetRecords(ctx, db.ID)
	if err != nil {
		return nil, fmt.Errorf("getting records: %w", err)
	}
	return records, nil
}

// GetVersions retrieves all versions of a database.
func (s *service) GetVersions(ctx context.Context, name string) (*VersionsResult, error) {
	versions, err := s.databases.GetVersions(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("getting versions: %w", err)
	}
	if len(versions) == 0 {
		return nil, ErrNotFound
	}

	return &VersionsResult{
		Name:     name,
		Versions: versions,
		Latest:   validation.ResolveLatest(versions),
	}, nil
}

// List lists databases with filtering and pagination.
func (s *service) List(ctx context.Context, filter ListFilter, pagination PaginationParams) (*ListResult, error) {
	result, err := s.databases.ListDatabases(ctx, storage.DatabaseFilter{
		Query: filter.Query,
	}, storage.PaginationParams{
		Limit:  pagination.Limit,
		Cursor: pagination.Cursor,
	})
	if err != nil {
		return nil, fmt.Errorf("listing databases: %w", err)
	}

	databases := make([]Database, len(result.Data))
	for i, d := range result.Data {
		databases[i] = *toDatabase(&d)
	}

	return &ListResult{
		Databases:  databases,
		HasMore:    result.HasMore,
		NextCursor: result.NextCursor,
	}, nil
}

// Delete deletes a database version. Only the name's owner may delete.
func (s *service) Delete(ctx context.Context, name, version string, ownerID string) error {
	currentOwner, err := s.databases.GetDatabaseOwner(ctx, name)
	if err != nil {
		return fmt.Errorf("checking ownership: %w", err)
	}
	if currentOwner != "" && currentOwner != ownerID {
		return ErrForbidden
	}

	if err := s.databases.DeleteDatabase(ctx, name, version); err != nil {
		return fmt.Errorf("deleting database: %w", err)
	}
	return nil
}

// Lookup resolves a selector against a database version. A malformed
// selector fails with ErrInvalidSelector, a well-formed one with no match
// fails with ErrSelectorMiss.
func (s *service) Lookup(ctx context.Context, name, version, sel string) (*errordb.Record, error) {
	normalized, err := selector.Normalize(sel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSelector, err)
	}

	db, err := s.getStored(ctx, name, version)
	if err != nil {
		return nil, err
	}

	record, err := s.databases.LookupSelector(ctx, db.ID, normalized)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrSelectorMiss
		}
		return nil, fmt.Errorf("looking up selector: %w", err)
	}
	return record, nil
}

// Search finds records whose error name contains query, case-insensitive.
func (s *service) Search(ctx context.Context, name, version, query string) ([]errordb.Record, error) {
	db, err := s.getStored(ctx, name, version)
	if err != nil {
		return nil, err
	}

	records, err := s.databases.SearchRecords(ctx, db.ID, query)
	if err != nil {
		return nil, fmt.Errorf("searching records: %w", err)
	}
	return records, nil
}

// Summary returns per-source record counts for a database version.
func (s *service) Summary(ctx context.Context, name, version string) ([]errordb.SourceCount, error) {
	records, err := s.GetRecords(ctx, name, version)
	if err != nil {
		return nil, err
	}
	return errordb.SummarizeBySource(records), nil
}

func (s *service) getStored(ctx context.Context, name, version string) (*storage.Database, error) {
	if version == "" || version == "latest" {
		versions, err := s.databases.GetVersions(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("getting versions: %w", err)
		}
		if len(versions) == 0 {
			return nil, ErrNotFound
		}
		version = validation.ResolveLatest(versions)
	}

	db, err := s.databases.GetDatabase(ctx, name, version)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting database: %w", err)
	}
	return db, nil
}

func toDatabase(d *storage.Database) *Database {
	var createdAt time.Time
	if d.CreatedAt != "" {
		// SQLite datetime format; Postgres timestamps parse with RFC3339.
		createdAt, _ = time.Parse("2006-01-02 15:04:05", d.CreatedAt)
		if createdAt.IsZero() {
			createdAt, _ = time.Parse(time.RFC3339, d.CreatedAt)
		}
	}
	return &Database{
		ID:          d.ID,
		Name:        d.Name,
		Version:     d.Version,
		Description: d.Description,
		RecordCount: d.RecordCount,
		OwnerID:     d.OwnerID,
		CreatedAt:   createdAt,
		Versions:    d.Versions,
	}
}
