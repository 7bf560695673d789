package storage

import (
	"context"
	"fmt"

	"telemetry_logger/internal/config"
	"telemetry_logger/internal/models"
)

// Sink durably persists one log record per call. Once Write returns nil the
// record is flushed (fsync for the file backend, the client's own durability
// guarantee for SQL/NoSQL). Per-request write failures are reported by the
// caller and never retried.
type Sink interface {
	Write(ctx context.Context, rec *models.LogRecord) error
	Close() error
}

// New constructs the sink selected by the configuration. Construction-time
// failures (bad key, unreachable database) are fatal to startup, not
// per-request errors.
func New(cfg *config.Config) (Sink, error) {
	switch cfg.Backend {
	case config.BackendText:
		var codec *Encryption
		if cfg.Text.EnableEncryption {
			key, err := cfg.EncryptionKeyBytes()
			if err != nil {
				return nil, err
			}
			codec, err = NewEncryption(key)
			if err != nil {
				return nil, err
			}
		}
		return NewFileSink(cfg.Text.FilePath, codec)
	case config.BackendSQL:
		return NewSQLSink(cfg.SQL.ConnectionString, cfg.SQL.TableName)
	case config.BackendNoSQL:
		return NewNoSQLSink(cfg.NoSQL.ConnectionString, cfg.NoSQL.CollectionName)
	default:
		return nil, fmt.Errorf("unknown database type %q", cfg.Backend)
	}
}

// ReadStoredLogs returns every record the sink has persisted, in write order.
// Only the file backend supports retrieval; any other sink fails with
// ErrUnsupported.
func ReadStoredLogs(s Sink) ([]models.LogRecord, error) {
	fs, ok := s.(*FileSink)
	if !ok {
		return nil, ErrUnsupported
	}
	return fs.ReadAll()
}
