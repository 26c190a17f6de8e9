package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"nightdrive/models"
)

// PostgresWriter mirrors captured leads to PostgreSQL for reporting. It is
// optional; the NDJSON store remains the system of record.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection, runs schema migrations, and returns
// a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS leads (
			id         SERIAL PRIMARY KEY,
			kind       VARCHAR(20) NOT NULL,
			name       TEXT        NOT NULL DEFAULT '',
			email      TEXT        NOT NULL,
			message    TEXT        NOT NULL DEFAULT '',
			phone      TEXT        NOT NULL DEFAULT '',
			subject    TEXT        NOT NULL DEFAULT '',
			vehicle    TEXT        NOT NULL DEFAULT '',
			source     TEXT        NOT NULL DEFAULT '',
			ip         TEXT        NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_leads_kind       ON leads(kind);
		CREATE INDEX IF NOT EXISTS idx_leads_email      ON leads(email);
		CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at);
	`)
	return err
}

// Append inserts one captured lead.
func (pw *PostgresWriter) Append(kind string, lead models.Lead) error {
	_, err := pw.db.Exec(`
		INSERT INTO leads (kind, name, email, message, phone, subject, vehicle, source, ip)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, kind, lead.Name, lead.Email, lead.Message, lead.Phone, lead.Subject, lead.Vehicle, lead.Source, lead.IP)
	if err != nil {
		return fmt.Errorf("postgres: insert lead: %w", err)
	}
	return nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
