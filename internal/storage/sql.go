package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"telemetry_logger/internal/config"
	"telemetry_logger/internal/models"
)

// SQLSink inserts one row per record into a Postgres table. The table is
// created at construction time when absent; an unreachable database aborts
// startup.
type SQLSink struct {
	conn  *sqlx.DB
	table string
}

// NewSQLSink connects to Postgres and ensures the log table exists.
func NewSQLSink(dsn, table string) (*SQLSink, error) {
	if table == "" {
		table = config.DefaultStoreName
	}

	conn, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &SQLSink{
		conn:  conn,
		table: table,
	}

	if err := s.ensureTable(); err != nil {
		conn.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLSink) ensureTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), config.SinkTimeout)
	defer cancel()

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			request_id UUID PRIMARY KEY,
			method TEXT NOT NULL,
			url TEXT NOT NULL,
			status_code INTEGER NOT NULL,
			response_time DOUBLE PRECISION NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL,
			memory_usage JSONB,
			cpu_usage JSONB
		)`, pq.QuoteIdentifier(s.table))

	if _, err := s.conn.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure table %s: %w", s.table, err)
	}
	return nil
}

// Write inserts one record. Durability is the database's own guarantee.
func (s *SQLSink) Write(ctx context.Context, rec *models.LogRecord) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (request_id, method, url, status_code, response_time, timestamp, memory_usage, cpu_usage)
		VALUES (:request_id, :method, :url, :status_code, :response_time, :timestamp, :memory_usage, :cpu_usage)`,
		pq.QuoteIdentifier(s.table))

	if _, err := s.conn.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("failed to insert log record: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *SQLSink) Close() error {
	return s.conn.Close()
}
