package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"telemetry_logger/internal/config"
	"telemetry_logger/internal/models"
)

// NoSQLSink pushes schemaless JSON documents onto a Redis list named after
// the configured collection. No schema is enforced and nothing is read back.
type NoSQLSink struct {
	client     *redis.Client
	collection string
}

// NewNoSQLSink parses the connection string (redis:// URL form), establishes
// the connection and verifies it with a ping. An unreachable server aborts
// startup.
func NewNoSQLSink(connStr, collection string) (*NoSQLSink, error) {
	if collection == "" {
		collection = config.DefaultStoreName
	}

	opts, err := redis.ParseURL(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), config.SinkTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &NoSQLSink{
		client:     client,
		collection: collection,
	}, nil
}

// Write appends one document to the collection list.
func (s *NoSQLSink) Write(ctx context.Context, rec *models.LogRecord) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal log record: %w", err)
	}

	if err := s.client.RPush(ctx, s.collection, doc).Err(); err != nil {
		return fmt.Errorf("failed to push log record: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *NoSQLSink) Close() error {
	return s.client.Close()
}
