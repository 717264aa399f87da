package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/pagepulse/schema"
)

// pruneChunk bounds the number of ids deleted per statement.
const pruneChunk = 200

// runColumns lists the run columns read back by listings, without raw.
const runColumns = "id, site_id, user_id, strategy, created_at, performance, seo, accessibility, best_practices, lcp_ms, cls, inp_ms, inp_source, final_url, page_title, lighthouse_version"

// InsertRun stores a run. Runs are immutable once written.
func (s *SQLStore) InsertRun(ctx context.Context, run *schema.Run) error {
	if s.disabled() {
		return nil
	}

	m := run.Metrics
	var raw any
	if len(run.Raw) > 0 {
		raw = string(run.Raw)
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, site_id, user_id, strategy, created_at, performance, seo, accessibility, best_practices,
		lcp_ms, cls, inp_ms, inp_source, final_url, page_title, lighthouse_version, raw)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, quoteTableName(runsTable, s.backend))

	_, err := s.db.ExecContext(ctx, s.rebind(query),
		run.ID, run.SiteID, run.UserID, string(run.Strategy), formatTime(run.CreatedAt, s.backend),
		m.Performance, m.SEO, m.Accessibility, m.BestPractices,
		m.LCPMs, m.CLS, m.INPMs, string(m.INPSource),
		m.FinalURL, m.PageTitle, m.LighthouseVersion, raw,
	)
	if err != nil {
		return storageErr("insert run", err)
	}
	return nil
}

// PruneRuns keeps the newest keep runs of a (site, strategy) pair and deletes the rest.
// Ties on created_at are broken by id so the result is deterministic.
func (s *SQLStore) PruneRuns(ctx context.Context, siteID string, strategy schema.Strategy, keep int) (int, error) {
	if s.disabled() {
		return 0, nil
	}
	if keep < 0 {
		keep = 0
	}

	table := quoteTableName(runsTable, s.backend)
	query := fmt.Sprintf("SELECT id FROM %s WHERE site_id = ? AND strategy = ? ORDER BY created_at DESC, id DESC", table)
	rows, err := s.db.QueryContext(ctx, s.rebind(query), siteID, string(strategy))
	if err != nil {
		return 0, storageErr("select runs to prune", err)
	}

	var stale []any
	idx := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return 0, storageErr("scan run id", err)
		}
		if idx >= keep {
			stale = append(stale, id)
		}
		idx++
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return 0, storageErr("iterate runs", err)
	}
	_ = rows.Close()

	deleted := 0
	for start := 0; start < len(stale); start += pruneChunk {
		end := min(start+pruneChunk, len(stale))
		chunk := stale[start:end]
		del := fmt.Sprintf("DELETE FROM %s WHERE id IN (%s)", table, placeholders(len(chunk)))
		res, err := s.db.ExecContext(ctx, s.rebind(del), chunk...)
		if err != nil {
			return deleted, storageErr("prune runs", err)
		}
		n, _ := res.RowsAffected()
		deleted += int(n)
	}
	return deleted, nil
}

// ListRuns returns the user's runs matching query, newest first unless Ascending.
// A zero Limit returns every match.
func (s *SQLStore) ListRuns(ctx context.Context, userID string, query schema.RunQuery) ([]schema.Run, error) {
	if s.disabled() {
		return nil, nil
	}

	where, args := runFilter(userID, query, s.backend)
	order := "DESC"
	if query.Ascending {
		order = "ASC"
	}
	stmt := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY created_at %s, id %s",
		runColumns, quoteTableName(runsTable, s.backend), where, order, order)
	if query.Limit > 0 {
		stmt += " LIMIT ? OFFSET ?"
		args = append(args, query.Limit, query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(stmt), args...)
	if err != nil {
		return nil, storageErr("list runs", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []schema.Run
	for rows.Next() {
		run, err := scanRun(rows, false)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate runs", err)
	}
	return runs, nil
}

// runFilter builds the WHERE clause of a run listing.
func runFilter(userID string, query schema.RunQuery, backend schema.DatabaseBackend) (string, []any) {
	clauses := []string{"user_id = ?"}
	args := []any{userID}

	if len(query.SiteIDs) > 0 {
		clauses = append(clauses, fmt.Sprintf("site_id IN (%s)", placeholders(len(query.SiteIDs))))
		for _, id := range query.SiteIDs {
			args = append(args, id)
		}
	}
	if query.Strategy != "" {
		clauses = append(clauses, "strategy = ?")
		args = append(args, string(query.Strategy))
	}
	if query.From != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, formatTime(*query.From, backend))
	}
	if query.To != nil {
		clauses = append(clauses, "created_at <= ?")
		args = append(args, formatTime(*query.To, backend))
	}
	return strings.Join(clauses, " AND "), args
}

// CountRunsSince counts the user's runs created at or after since.
func (s *SQLStore) CountRunsSince(ctx context.Context, userID string, since time.Time) (int, error) {
	if s.disabled() {
		return 0, nil
	}

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE user_id = ? AND created_at >= ?", quoteTableName(runsTable, s.backend))
	var count int
	if err := s.db.QueryRowContext(ctx, s.rebind(query), userID, formatTime(since, s.backend)).Scan(&count); err != nil {
		return 0, storageErr("count runs", err)
	}
	return count, nil
}

// GetRun returns one of the user's runs including its raw response.
func (s *SQLStore) GetRun(ctx context.Context, userID, runID string) (*schema.Run, error) {
	if s.disabled() {
		return nil, schema.NewError(schema.KindNotFound, "run not found")
	}

	query := fmt.Sprintf("SELECT %s, raw FROM %s WHERE id = ? AND user_id = ?", runColumns, quoteTableName(runsTable, s.backend))
	run, err := scanRun(s.db.QueryRowContext(ctx, s.rebind(query), runID, userID), true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, schema.NewError(schema.KindNotFound, "run not found")
		}
		return nil, err
	}
	return run, nil
}

// ListRunRecords returns every stored run joined with its site URL, oldest first.
func (s *SQLStore) ListRunRecords(ctx context.Context) ([]schema.RunRecord, error) {
	if s.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT r.id, r.site_id, COALESCE(s.url, ''), r.user_id, r.strategy, r.created_at,
		r.performance, r.seo, r.accessibility, r.best_practices, r.lcp_ms, r.cls, r.inp_ms, r.inp_source,
		r.final_url, r.page_title, r.lighthouse_version
		FROM %s r LEFT JOIN %s s ON s.id = r.site_id
		ORDER BY r.created_at ASC, r.id ASC`,
		quoteTableName(runsTable, s.backend), quoteTableName(sitesTable, s.backend))

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storageErr("list run records", err)
	}
	defer func() { _ = rows.Close() }()

	var records []schema.RunRecord
	for rows.Next() {
		var (
			rec                                    schema.RunRecord
			createdAt                              timeValue
			perf, seo, a11y, bp                    sql.NullInt64
			lcp, cls, inp                          sql.NullFloat64
			finalURL, pageTitle, lighthouseVersion sql.NullString
		)
		if err := rows.Scan(&rec.RunID, &rec.SiteID, &rec.SiteURL, &rec.UserID, &rec.Strategy, &createdAt,
			&perf, &seo, &a11y, &bp, &lcp, &cls, &inp, &rec.INPSource,
			&finalURL, &pageTitle, &lighthouseVersion); err != nil {
			return nil, storageErr("scan run record", err)
		}
		rec.CreatedAt = createdAt.Time
		rec.Performance, rec.SEO, rec.Accessibility, rec.BestPractices = intPtr(perf), intPtr(seo), intPtr(a11y), intPtr(bp)
		rec.LCPMs, rec.CLS, rec.INPMs = floatPtr(lcp), floatPtr(cls), floatPtr(inp)
		rec.FinalURL, rec.PageTitle, rec.LighthouseVersion = stringPtr(finalURL), stringPtr(pageTitle), stringPtr(lighthouseVersion)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate run records", err)
	}
	return records, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRun reads the runColumns projection, optionally followed by raw.
func scanRun(row rowScanner, withRaw bool) (*schema.Run, error) {
	var (
		run                                    schema.Run
		strategy, inpSource                    string
		createdAt                              timeValue
		perf, seo, a11y, bp                    sql.NullInt64
		lcp, cls, inp                          sql.NullFloat64
		finalURL, pageTitle, lighthouseVersion sql.NullString
		raw                                    sql.NullString
	)
	dest := []any{&run.ID, &run.SiteID, &run.UserID, &strategy, &createdAt,
		&perf, &seo, &a11y, &bp, &lcp, &cls, &inp, &inpSource,
		&finalURL, &pageTitle, &lighthouseVersion}
	if withRaw {
		dest = append(dest, &raw)
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, storageErr("scan run", err)
	}

	run.Strategy = schema.Strategy(strategy)
	run.CreatedAt = createdAt.Time
	run.Metrics = schema.MetricSet{
		Performance:       intPtr(perf),
		SEO:               intPtr(seo),
		Accessibility:     intPtr(a11y),
		BestPractices:     intPtr(bp),
		LCPMs:             floatPtr(lcp),
		CLS:               floatPtr(cls),
		INPMs:             floatPtr(inp),
		INPSource:         schema.InpSource(inpSource),
		FinalURL:          stringPtr(finalURL),
		PageTitle:         stringPtr(pageTitle),
		LighthouseVersion: stringPtr(lighthouseVersion),
	}
	if raw.Valid && raw.String != "" {
		run.Raw = json.RawMessage(raw.String)
	}
	return &run, nil
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
