// Package domain contains the business logic for the error database
// registry.
package domain

import (
	"time"

	"github.com/roeezolantz/errdex/internal/errordb"
)

// Database represents a published error database version.
type Database struct {
	ID          string
	Name        string
	Version     string
	Description string
	RecordCount int
	OwnerID     string
	CreatedAt   time.Time
	Versions    []string // Used for list aggregation
}

// PublishRequest is the request to publish a new database version.
type PublishRequest struct {
	// Version is optional. When empty the registry bumps the latest
	// version's patch, or starts at 0.1.0 for a new name.
	Version     string           `json:"version,omitempty"`
	Description string           `json:"description,omitempty"`
	Records     []errordb.Record `json:"records"`
}

// PublishResult reports what was actually published.
type PublishResult struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	RecordCount int    `json:"recordCount"`
}

// ListFilter contains filter options for listing databases.
type ListFilter struct {
	Query string
}

// PaginationParams contains pagination options.
type PaginationParams struct {
	Limit  int
	Cursor string
}

// ListResult contains paginated list results.
type ListResult struct {
	Databases  []Database
	HasMore    bool
	NextCursor string
}

// VersionsResult contains version list results.
type VersionsResult struct {
	Name     string
	Versions []string
	Latest   string
}
