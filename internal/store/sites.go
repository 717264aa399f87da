package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/huangsam/pagepulse/schema"
)

const siteColumns = "id, user_id, url, name, created_at"

// CreateSite stores a new site. A URL may be registered only once per user.
func (s *SQLStore) CreateSite(ctx context.Context, site *schema.Site) error {
	if s.disabled() {
		return nil
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?)", quoteTableName(sitesTable, s.backend), siteColumns)
	_, err := s.db.ExecContext(ctx, s.rebind(query),
		site.ID, site.UserID, site.URL, site.Name, formatTime(site.CreatedAt, s.backend))
	if err != nil {
		if isUniqueViolation(err) {
			return schema.NewError(schema.KindInvalidInput, "site already exists")
		}
		return storageErr("create site", err)
	}
	return nil
}

// GetSite returns one of the user's sites. Sites owned by someone else are reported as not found.
// The none backend acknowledges any site so audits can run without persistence.
func (s *SQLStore) GetSite(ctx context.Context, userID, siteID string) (*schema.Site, error) {
	if s.disabled() {
		return &schema.Site{ID: siteID, UserID: userID}, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? AND user_id = ?", siteColumns, quoteTableName(sitesTable, s.backend))
	site, err := scanSite(s.db.QueryRowContext(ctx, s.rebind(query), siteID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, schema.NewError(schema.KindNotFound, "site not found")
		}
		return nil, err
	}
	return site, nil
}

// ListSites returns the user's sites, oldest first.
func (s *SQLStore) ListSites(ctx context.Context, userID string) ([]schema.Site, error) {
	if s.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE user_id = ? ORDER BY created_at ASC, id ASC", siteColumns, quoteTableName(sitesTable, s.backend))
	return s.querySites(ctx, s.rebind(query), userID)
}

// ListAllSites returns up to limit sites across all users, oldest first.
func (s *SQLStore) ListAllSites(ctx context.Context, limit int) ([]schema.Site, error) {
	if s.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY created_at ASC, id ASC LIMIT ?", siteColumns, quoteTableName(sitesTable, s.backend))
	return s.querySites(ctx, s.rebind(query), limit)
}

// UpdateSite persists a changed URL or name.
func (s *SQLStore) UpdateSite(ctx context.Context, site *schema.Site) error {
	if s.disabled() {
		return nil
	}

	query := fmt.Sprintf("UPDATE %s SET url = ?, name = ? WHERE id = ? AND user_id = ?", quoteTableName(sitesTable, s.backend))
	res, err := s.db.ExecContext(ctx, s.rebind(query), site.URL, site.Name, site.ID, site.UserID)
	if err != nil {
		if isUniqueViolation(err) {
			return schema.NewError(schema.KindInvalidInput, "site already exists")
		}
		return storageErr("update site", err)
	}
	// MySQL reports zero affected rows for no-op updates.
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := s.GetSite(ctx, site.UserID, site.ID); err != nil {
			return err
		}
	}
	return nil
}

// DeleteSite removes a site and all of its runs in one transaction.
func (s *SQLStore) DeleteSite(ctx context.Context, userID, siteID string) error {
	if s.disabled() {
		return nil
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		runs := fmt.Sprintf("DELETE FROM %s WHERE site_id = ? AND user_id = ?", quoteTableName(runsTable, s.backend))
		if _, err := tx.ExecContext(ctx, s.rebind(runs), siteID, userID); err != nil {
			return storageErr("delete site runs", err)
		}
		sites := fmt.Sprintf("DELETE FROM %s WHERE id = ? AND user_id = ?", quoteTableName(sitesTable, s.backend))
		res, err := tx.ExecContext(ctx, s.rebind(sites), siteID, userID)
		if err != nil {
			return storageErr("delete site", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return schema.NewError(schema.KindNotFound, "site not found")
		}
		return nil
	})
}

func (s *SQLStore) querySites(ctx context.Context, query string, args ...any) ([]schema.Site, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list sites", err)
	}
	defer func() { _ = rows.Close() }()

	var sites []schema.Site
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, *site)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate sites", err)
	}
	return sites, nil
}

func scanSite(row rowScanner) (*schema.Site, error) {
	var (
		site      schema.Site
		name      sql.NullString
		createdAt timeValue
	)
	if err := row.Scan(&site.ID, &site.UserID, &site.URL, &name, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, storageErr("scan site", err)
	}
	site.Name = stringPtr(name)
	site.CreatedAt = createdAt.Time
	return &site, nil
}
