package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"graphio/internal/repository"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var _ repository.SnapshotStore = (*Repository)(nil)

// Repository implements repository.SnapshotStore using SQLite
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	repo := &Repository{db: db, now: time.Now}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func dsn(path string) string {
	if path == ":memory:" {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		format TEXT NOT NULL,
		node_count INTEGER NOT NULL DEFAULT 0,
		edge_count INTEGER NOT NULL DEFAULT 0,
		data BLOB NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_name ON snapshots(name, created_at);
	`

	if _, err := r.db.Exec(schema); err != nil {
		return err
	}

	// Columns added after the first schema
	if !r.columnExists("snapshots", "envelope") {
		if _, err := r.db.Exec(`ALTER TABLE snapshots ADD COLUMN envelope TEXT`); err != nil {
			return fmt.Errorf("add envelope column: %w", err)
		}
	}

	return nil
}

func (r *Repository) columnExists(table, column string) bool {
	rows, err := r.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return false
		}
		if name == column {
			return true
		}
	}
	return false
}

// Save stores a snapshot
func (r *Repository) Save(ctx context.Context, s *repository.Snapshot) error {
	if s.Name == "" {
		return fmt.Errorf("snapshot name is required")
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = r.now().UTC()
	}
	data := s.Data
	if data == nil {
		data = []byte{}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, name, format, envelope, node_count, edge_count, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.Name, s.Format, stringToNull(s.Envelope), s.NodeCount, s.EdgeCount, data, s.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return nil
}

// Get retrieves a snapshot by ID
func (r *Repository) Get(ctx context.Context, id string) (*repository.Snapshot, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+`, data FROM snapshots WHERE id = ?
	`, id)
	return scanSnapshot(row, id)
}

// Latest retrieves the newest snapshot stored under name
func (r *Repository) Latest(ctx context.Context, name string) (*repository.Snapshot, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+`, data FROM snapshots
		WHERE name = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`, name)
	return scanSnapshot(row, name)
}

func scanSnapshot(row *sql.Row, key string) (*repository.Snapshot, error) {
	var sr snapshotRow
	if err := row.Scan(sr.scanArgs(true)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", repository.ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	return sr.toDomain(), nil
}

// List returns snapshot metadata, newest first
func (r *Repository) List(ctx context.Context, name string) ([]*repository.Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM snapshots`
	var args []interface{}
	if name != "" {
		query += ` WHERE name = ?`
		args = append(args, name)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*repository.Snapshot
	for rows.Next() {
		var sr snapshotRow
		if err := rows.Scan(sr.scanArgs(false)...); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, sr.toDomain())
	}

	return snapshots, rows.Err()
}

// Delete removes a snapshot by ID
func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM snapshots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
