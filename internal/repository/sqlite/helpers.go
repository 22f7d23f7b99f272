package sqlite

import (
	"database/sql"
	"time"

	"graphio/internal/repository"
)

// ============================================================================
// Null Conversion Helpers
// ============================================================================

// nullToString converts sql.NullString to string (empty if null)
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull converts string to sql.NullString (null if empty)
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// ============================================================================
// Row Types
// ============================================================================

// snapshotColumns lists columns in scan order, without data
const snapshotColumns = `id, name, format, envelope, node_count, edge_count, created_at`

// snapshotRow represents a database row for snapshots
type snapshotRow struct {
	ID        string
	Name      string
	Format    string
	Envelope  sql.NullString
	NodeCount int
	EdgeCount int
	CreatedAt int64
	Data      []byte
}

// scanArgs returns pointers for scanning snapshotColumns, plus data when withData is set
func (r *snapshotRow) scanArgs(withData bool) []interface{} {
	args := []interface{}{
		&r.ID, &r.Name, &r.Format, &r.Envelope,
		&r.NodeCount, &r.EdgeCount, &r.CreatedAt,
	}
	if withData {
		args = append(args, &r.Data)
	}
	return args
}

// toDomain converts a snapshotRow to a repository.Snapshot
func (r *snapshotRow) toDomain() *repository.Snapshot {
	return &repository.Snapshot{
		ID:        r.ID,
		Name:      r.Name,
		Format:    r.Format,
		Envelope:  nullToString(r.Envelope),
		NodeCount: r.NodeCount,
		EdgeCount: r.EdgeCount,
		Data:      r.Data,
		CreatedAt: time.Unix(0, r.CreatedAt).UTC(),
	}
}
