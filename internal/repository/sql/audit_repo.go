package sql

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql" // Ensure mysql driver is imported anonymously

	"github.com/ejnero-dev/wall-e-research-sub001/internal/core"
)

// AuditRepository writes the append-only audit trail to MySQL. Entries are
// never updated or deleted.
type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// EnsureSchema creates the audit table if it does not exist yet.
func (r *AuditRepository) EnsureSchema(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS audit_entries (
		id VARCHAR(36) PRIMARY KEY,
		ts DATETIME NOT NULL,
		action VARCHAR(64) NOT NULL,
		actor VARCHAR(16) NOT NULL,
		outcome VARCHAR(16) NOT NULL,
		supervised TINYINT(1) NOT NULL
	)`
	_, err := r.db.ExecContext(ctx, query)
	return err
}

func (r *AuditRepository) Append(ctx context.Context, entry core.AuditEntry) error {
	query := `INSERT INTO audit_entries (id, ts, action, actor, outcome, supervised)
	          VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.Timestamp,
		entry.Action,
		entry.Actor,
		entry.Outcome,
		entry.Supervised,
	)
	return err
}

// Recent returns the newest entries, most recent first.
func (r *AuditRepository) Recent(ctx context.Context, limit int) ([]core.AuditEntry, error) {
	query := `SELECT id, ts, action, actor, outcome, supervised
	          FROM audit_entries ORDER BY ts DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []core.AuditEntry
	for rows.Next() {
		var e core.AuditEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Action, &e.Actor, &e.Outcome, &e.Supervised); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
