package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/caregate/caregate/pkg/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS audit_log (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL DEFAULT '',
	action        TEXT NOT NULL,
	resource      TEXT NOT NULL DEFAULT '',
	ip_address    TEXT NOT NULL DEFAULT '',
	user_agent    TEXT NOT NULL DEFAULT '',
	metadata      TEXT,
	phi_accessed  INTEGER NOT NULL DEFAULT 0,
	created_at    DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_log_created_at ON audit_log(created_at);
CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
`

// SQLiteSink is an append-only audit sink backed by SQLite. The table is
// insert-only; nothing in this package updates or deletes rows.
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLite opens (creating if missing) the audit database at path and
// applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying audit schema: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

// Record appends one audit record.
func (s *SQLiteSink) Record(ctx context.Context, rec domain.AuditRecord) error {
	var metadata []byte
	if rec.Metadata != nil {
		var err error
		metadata, err = json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("encoding audit metadata: %w", err)
		}
	}

	phi := 0
	if rec.PHIAccessed {
		phi = 1
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (id, user_id, action, resource, ip_address, user_agent, metadata, phi_accessed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.Action, rec.Resource, rec.IPAddress, rec.UserAgent,
		string(metadata), phi, rec.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("inserting audit record: %w", err)
	}
	return nil
}

// Recent returns up to n records, newest first.
func (s *SQLiteSink) Recent(ctx context.Context, n int) ([]domain.AuditRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, action, resource, ip_address, user_agent, metadata, phi_accessed, created_at
		 FROM audit_log ORDER BY created_at DESC, rowid DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AuditRecord
	for rows.Next() {
		var rec domain.AuditRecord
		var metadata string
		var phi int
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Action, &rec.Resource,
			&rec.IPAddress, &rec.UserAgent, &metadata, &phi, &createdAt); err != nil {
			return nil, err
		}
		if metadata != "" {
			if err := json.Unmarshal([]byte(metadata), &rec.Metadata); err != nil {
				return nil, fmt.Errorf("decoding audit metadata: %w", err)
			}
		}
		rec.PHIAccessed = phi == 1
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			rec.CreatedAt = ts
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
