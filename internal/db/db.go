// internal/db/db.go
package db

import (
    "database/sql"
    "fmt"

    _ "github.com/lib/pq"
    "go.uber.org/zap"

    "github.com/unclebandit/outreach-backend/internal/config"
)

// Connect opens and pings the store handle. Callers own the handle and pass
// it into repositories explicitly; there is no package-level connection.
func Connect(cfg config.DBConfig, log *zap.Logger) (*sql.DB, error) {
    conn, err := sql.Open("postgres", cfg.DSN())
    if err != nil {
        return nil, fmt.Errorf("open database: %w", err)
    }

    if err := conn.Ping(); err != nil {
        conn.Close()
        return nil, fmt.Errorf("ping database: %w", err)
    }

    log.Info("✅ Connected to database")
    return conn, nil
}

// EnsureSchema creates the four tables and the uniqueness constraints the
// reconciliation engine relies on. Safe to run on every start.
func EnsureSchema(conn *sql.DB) error {
    statements := []string{
        `CREATE TABLE IF NOT EXISTS employees (
            id SERIAL PRIMARY KEY,
            email TEXT NOT NULL UNIQUE,
            name TEXT NOT NULL,
            company TEXT NOT NULL,
            context TEXT NOT NULL DEFAULT ''
        )`,
        `CREATE TABLE IF NOT EXISTS campaigns (
            id SERIAL PRIMARY KEY,
            num_users INT NOT NULL CHECK (num_users > 0),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
        `CREATE TABLE IF NOT EXISTS campaign_members (
            campaign_id INT NOT NULL REFERENCES campaigns(id),
            employee_id INT NOT NULL REFERENCES employees(id),
            assigned_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            PRIMARY KEY (campaign_id, employee_id)
        )`,
        `CREATE TABLE IF NOT EXISTS campaign_emails (
            id SERIAL PRIMARY KEY,
            campaign_id INT NOT NULL REFERENCES campaigns(id),
            employee_id INT NOT NULL REFERENCES employees(id),
            recipient_email TEXT NOT NULL,
            subject TEXT NOT NULL DEFAULT '',
            resend_message_id TEXT UNIQUE,
            status TEXT NOT NULL DEFAULT 'queued',
            last_event TEXT NOT NULL DEFAULT '',
            last_event_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            sent_at TIMESTAMPTZ,
            delivered_at TIMESTAMPTZ,
            opened_at TIMESTAMPTZ,
            clicked_at TIMESTAMPTZ,
            bounced_at TIMESTAMPTZ,
            complained_at TIMESTAMPTZ,
            CONSTRAINT uq_campaign_email_recipient UNIQUE (campaign_id, employee_id)
        )`,
        `CREATE INDEX IF NOT EXISTS idx_campaign_emails_recipient ON campaign_emails (recipient_email)`,
    }

    for _, stmt := range statements {
        if _, err := conn.Exec(stmt); err != nil {
            return fmt.Errorf("ensure schema: %w", err)
        }
    }
    return nil
}
