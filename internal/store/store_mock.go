package store

import (
	"context"
	"time"

	"github.com/huangsam/pagepulse/internal/contract"
	"github.com/huangsam/pagepulse/schema"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store for testing.
type MockStore struct {
	mock.Mock
}

var _ contract.Store = &MockStore{} // Compile-time check

// InsertRun implements the Store interface.
func (m *MockStore) InsertRun(ctx context.Context, run *schema.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

// PruneRuns implements the Store interface.
func (m *MockStore) PruneRuns(ctx context.Context, siteID string, strategy schema.Strategy, keep int) (int, error) {
	args := m.Called(ctx, siteID, strategy, keep)
	return args.Int(0), args.Error(1)
}

// ListRuns implements the Store interface.
func (m *MockStore) ListRuns(ctx context.Context, userID string, query schema.RunQuery) ([]schema.Run, error) {
	args := m.Called(ctx, userID, query)
	runs, _ := args.Get(0).([]schema.Run)
	return runs, args.Error(1)
}

// CountRunsSince implements the Store interface.
func (m *MockStore) CountRunsSince(ctx context.Context, userID string, since time.Time) (int, error) {
	args := m.Called(ctx, userID, since)
	return args.Int(0), args.Error(1)
}

// GetRun implements the Store interface.
func (m *MockStore) GetRun(ctx context.Context, userID, runID string) (*schema.Run, error) {
	args := m.Called(ctx, userID, runID)
	run, _ := args.Get(0).(*schema.Run)
	return run, args.Error(1)
}

// CreateSite implements the Store interface.
func (m *MockStore) CreateSite(ctx context.Context, site *schema.Site) error {
	args := m.Called(ctx, site)
	return args.Error(0)
}

// GetSite implements the Store interface.
func (m *MockStore) GetSite(ctx context.Context, userID, siteID string) (*schema.Site, error) {
	args := m.Called(ctx, userID, siteID)
	site, _ := args.Get(0).(*schema.Site)
	return site, args.Error(1)
}

// ListSites implements the Store interface.
func (m *MockStore) ListSites(ctx context.Context, userID string) ([]schema.Site, error) {
	args := m.Called(ctx, userID)
	sites, _ := args.Get(0).([]schema.Site)
	return sites, args.Error(1)
}

// ListAllSites implements the Store interface.
func (m *MockStore) ListAllSites(ctx context.Context, limit int) ([]schema.Site, error) {
	args := m.Called(ctx, limit)
	sites, _ := args.Get(0).([]schema.Site)
	return sites, args.Error(1)
}

// UpdateSite implements the Store interface.
func (m *MockStore) UpdateSite(ctx context.Context, site *schema.Site) error {
	args := m.Called(ctx, site)
	return args.Error(0)
}

// DeleteSite implements the Store interface.
func (m *MockStore) DeleteSite(ctx context.Context, userID, siteID string) error {
	args := m.Called(ctx, userID, siteID)
	return args.Error(0)
}

// GetStatus implements the Store interface.
func (m *MockStore) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the Store interface.
func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
