package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"redust/internal/config"
	"redust/internal/services"
)

// timeLayout is fixed-width so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages ledger persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database under the state directory.
func Open(cfg *config.Config) (*Store, error) {
	return OpenPath(cfg.LedgerPath())
}

// OpenPath opens the ledger at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure ledger directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// RecordCatalog upserts a fetched catalog version. A zero FetchedAt is
// replaced with the current time; an empty RunID is taken from ctx.
func (s *Store) RecordCatalog(ctx context.Context, rec CatalogRecord) error {
	if rec.Version == "" {
		return errors.New("record catalog: version is required")
	}
	if rec.FetchedAt.IsZero() {
		rec.FetchedAt = time.Now().UTC()
	}
	if rec.RunID == "" {
		rec.RunID, _ = services.RunIDFromContext(ctx)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO catalog_versions (version, quality, fetched_at, bundle_count, run_id)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(version, quality) DO UPDATE SET
             fetched_at = excluded.fetched_at,
             bundle_count = excluded.bundle_count,
             run_id = excluded.run_id`,
		rec.Version,
		rec.Quality,
		rec.FetchedAt.UTC().Format(timeLayout),
		rec.BundleCount,
		nullableString(rec.RunID),
	)
	if err != nil {
		return fmt.Errorf("record catalog: %w", err)
	}
	return nil
}

// LatestCatalog returns the most recently fetched catalog for quality, or nil
// when none has been recorded. An empty quality matches any.
func (s *Store) LatestCatalog(ctx context.Context, quality string) (*CatalogRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT version, quality, fetched_at, bundle_count, run_id FROM catalog_versions
         WHERE (? = '' OR quality = ?)
         ORDER BY fetched_at DESC LIMIT 1`,
		quality, quality,
	)
	var (
		rec     CatalogRecord
		fetched string
		runID   sql.NullString
	)
	err := row.Scan(&rec.Version, &rec.Quality, &fetched, &rec.BundleCount, &runID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest catalog: %w", err)
	}
	rec.FetchedAt = parseTime(fetched)
	rec.RunID = runID.String
	return &rec, nil
}

// RecordBundles replaces the bundle list stored for version.
func (s *Store) RecordBundles(ctx context.Context, version string, bundles []BundleRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bundles tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bundles WHERE version = ?`, version); err != nil {
		return fmt.Errorf("clear bundles: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO bundles (name, hash, size, key, version) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare bundle insert: %w", err)
	}
	defer stmt.Close()
	for _, b := range bundles {
		if _, err := stmt.ExecContext(ctx, b.Name, b.Hash, b.Size, b.Key, version); err != nil {
			return fmt.Errorf("insert bundle %s: %w", b.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bundles: %w", err)
	}
	return nil
}

// KnownBundles lists the bundles recorded for version ordered by key.
func (s *Store) KnownBundles(ctx context.Context, version string) ([]BundleRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, hash, size, key, version FROM bundles WHERE version = ? ORDER BY key, name`, version)
	if err != nil {
		return nil, fmt.Errorf("query bundles: %w", err)
	}
	defer rows.Close()

	var out []BundleRecord
	for rows.Next() {
		var b BundleRecord
		if err := rows.Scan(&b.Name, &b.Hash, &b.Size, &b.Key, &b.Version); err != nil {
			return nil, fmt.Errorf("scan bundle: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// RecordOutput appends a written modded bundle.
func (s *Store) RecordOutput(ctx context.Context, rec OutputRecord) (int64, error) {
	if rec.WrittenAt.IsZero() {
		rec.WrittenAt = time.Now().UTC()
	}
	if rec.RunID == "" {
		rec.RunID, _ = services.RunIDFromContext(ctx)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO outputs (bundle_path, digest, mod_count, written_at, run_id) VALUES (?, ?, ?, ?, ?)`,
		rec.BundlePath,
		rec.Digest,
		rec.ModCount,
		rec.WrittenAt.UTC().Format(timeLayout),
		nullableString(rec.RunID),
	)
	if err != nil {
		return 0, fmt.Errorf("record output: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// Outputs returns the newest outputs first. A limit <= 0 returns all rows.
func (s *Store) Outputs(ctx context.Context, limit int) ([]OutputRecord, error) {
	query := `SELECT id, bundle_path, digest, mod_count, written_at, run_id FROM outputs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query outputs: %w", err)
	}
	defer rows.Close()

	var out []OutputRecord
	for rows.Next() {
		var (
			rec     OutputRecord
			written string
			runID   sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.BundlePath, &rec.Digest, &rec.ModCount, &written, &runID); err != nil {
			return nil, fmt.Errorf("scan output: %w", err)
		}
		rec.WrittenAt = parseTime(written)
		rec.RunID = runID.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
