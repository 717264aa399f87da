// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/pagepulse/schema"
)

// AuditProvider fetches a raw audit document for a URL.
// This allows the audit pipeline to be tested without the network.
type AuditProvider interface {
	// Fetch asks the provider to score url under strategy.
	Fetch(ctx context.Context, url string, strategy schema.Strategy) (*schema.RawResponse, error)
}

// RunStore defines persistence of audit runs.
type RunStore interface {
	// InsertRun writes one immutable run row.
	InsertRun(ctx context.Context, run *schema.Run) error

	// PruneRuns keeps the newest keep runs for (siteID, strategy) and deletes the rest.
	// It returns the number of deleted rows.
	PruneRuns(ctx context.Context, siteID string, strategy schema.Strategy, keep int) (int, error)

	// ListRuns returns the runs owned by userID that match the query.
	ListRuns(ctx context.Context, userID string, query schema.RunQuery) ([]schema.Run, error)

	// CountRunsSince counts runs owned by userID created at or after since.
	CountRunsSince(ctx context.Context, userID string, since time.Time) (int, error)

	// GetRun returns a single run owned by userID.
	GetRun(ctx context.Context, userID, runID string) (*schema.Run, error)
}

// SiteStore defines persistence of monitored sites.
type SiteStore interface {
	CreateSite(ctx context.Context, site *schema.Site) error
	GetSite(ctx context.Context, userID, siteID string) (*schema.Site, error)
	ListSites(ctx context.Context, userID string) ([]schema.Site, error)

	// ListAllSites lists sites across all users, oldest first, up to limit.
	ListAllSites(ctx context.Context, limit int) ([]schema.Site, error)

	UpdateSite(ctx context.Context, site *schema.Site) error

	// DeleteSite removes the site and all of its runs.
	DeleteSite(ctx context.Context, userID, siteID string) error
}

// Store is the full persistence surface used by the audit pipeline.
type Store interface {
	RunStore
	SiteStore

	// GetStatus returns status information about the store.
	GetStatus(ctx context.Context) (schema.StoreStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// Clock returns the current time. Tests inject a fixed clock.
type Clock func() time.Time

// Identity resolves a bearer credential into the calling user.
type Identity interface {
	Authenticate(token string) (schema.User, error)
}
