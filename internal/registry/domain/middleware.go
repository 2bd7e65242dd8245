package domain

import (
	"context"
	"log/slog"
	"time"

	"github.com/roeezolantz/errdex/internal/errordb"
)

// Service is the registry behavior exposed to transports.
type Service interface {
	Publish(ctx context.Context, name, ownerID string, req PublishRequest) (*PublishResult, error)
	Get(ctx context.Context, name, version string) (*Database, error)
	GetRecords(ctx context.Context, name, version string) ([]errordb.Record, error)
	GetVersions(ctx context.Context, name string) (*VersionsResult, error)
	List(ctx context.Context, filter ListFilter, pagination PaginationParams) (*ListResult, error)
	Delete(ctx context.Context, name, version string, ownerID string) error
	Lookup(ctx context.Context, name, version, sel string) (*errordb.Record, error)
	Search(ctx context.Context, name, version, query string) ([]errordb.Record, error)
	Summary(ctx context.Context, name, version string) ([]errordb.SourceCount, error)
}

// LoggingMiddleware returns a service middleware that logs all operations.
func LoggingMiddleware(logger *slog.Logger) func(Service) Service {
	return func(next Service) Service {
		return &loggingMiddleware{
			next:   next,
			logger: logger,
		}
	}
}

type loggingMiddleware struct {
	next   Service
	logger *slog.Logger
}

func (m *loggingMiddleware) Publish(ctx context.Context, name, ownerID string, req PublishRequest) (*PublishResult, error) {
	start := time.Now()
	result, err := m.next.Publish(ctx, name, ownerID, req)
	m.logger.Info("Publish",
		"name", name,
		"requestedVersion", req.Version,
		"records", len(req.Records),
		"duration", time.Since(start),
		"error", err,
	)
	return result, err
}

func (m *loggingMiddleware) Get(ctx context.Context, name, version string) (*Database, error) {
	start := time.Now()
	db, err := m.next.Get(ctx, name, version)
	m.logger.Debug("Get",
		"name", name,
		"version", version,
		"duration", time.Since(start),
		"error", err,
	)
	return db, err
}

func (m *loggingMiddleware) GetRecords(ctx context.Context, name, version string) ([]errordb.Record, error) {
	start := time.Now()
	records, err := m.next.GetRecords(ctx, name, version)
	m.logger.Debug("GetRecords",
		"name", name,
		"version", version,
		"count", len(records),
		"duration", time.Since(start),
		"error", err,
	)
	return records, err
}

func (m *loggingMiddleware) GetVersions(ctx context.Context, name string) (*VersionsResult, error) {
	start := time.Now()
	result, err := m.next.GetVersions(ctx, name)
	m.logger.Debug("GetVersions",
		"name", name,
		"duration", time.Since(start),
		"error", err,
	)
	return result, err
}

func (m *loggingMiddleware) List(ctx context.Context, filter ListFilter, pagination PaginationParams) (*ListResult, error) {
	start := time.Now()
	result, err := m.next.List(ctx, filter, pagination)
	m.logger.Debug("List",
		"query", filter.Query,
		"limit", pagination.Limit,
		"duration", time.Since(start),
		"error", err,
	)
	return result, err
}

func (m *loggingMiddleware) Delete(ctx context.Context, name, version string, ownerID string) error {
	start := time.Now()
	err := m.next.Delete(ctx, name, version, ownerID)
	m.logger.Info("Delete",
		"name", name,
		"version", version,
		"duration", time.Since(start),
		"error", err,
	)
	return err
}

func (m *loggingMiddleware) Lookup(ctx context.Context, name, version, sel string) (*errordb.Record, error) {
	start := time.Now()
	record, err := m.next.Lookup(ctx, name, version, sel)
	m.logger.Debug("Lookup",
		"name", name,
		"version", version,
		"selector", sel,
		"duration", time.Since(start),
		"error", err,
	)
	return record, err
}

func (m *loggingMiddleware) Search(ctx context.Context, name, version, query string) ([]errordb.Record, error) {
	start := time.Now()
	records, err := m.next.Search(ctx, name, version, query)
	m.logger.Debug("Search",
		"name", name,
		"version", version,
		"query", query,
		"count", len(records),
		"duration", time.Since(start),
		"error", err,
	)
	return records, err
}

func (m *loggingMiddleware) Summary(ctx context.Context, name, version string) ([]errordb.SourceCount, error) {
	start := time.Now()
	summary, err := m.next.Summary(ctx, name, version)
	m.logger.Debug("Summary",
		"name", name,
		"version", version,
		"sources", len(summary),
		"duration", time.Since(start),
		"error", err,
	)
	return summary, err
}
