package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"telemetry_logger/internal/models"
)

// FileSink persists records into a single JSON-array container file. Each
// element is either a plain record object or, when a codec is configured, a
// hex-envelope string. Every append reads the whole container, adds one entry
// and rewrites the file, so a container is either all-plaintext or
// all-envelope for the sink's lifetime.
//
// Writes are serialized within this process; the whole-file read-modify-write
// is still unsafe when several processes share one container, and a
// concurrent external writer can lose entries.
type FileSink struct {
	path  string
	codec *Encryption // nil when encryption is disabled

	mu sync.Mutex
}

// NewFileSink creates a file sink, ensuring the parent directory exists.
// The container file itself is created lazily on first write.
func NewFileSink(path string, codec *Encryption) (*FileSink, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	return &FileSink{
		path:  path,
		codec: codec,
	}, nil
}

// Write appends one record to the container and flushes it to disk.
func (s *FileSink) Write(_ context.Context, rec *models.LogRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readEntries()
	if err != nil && !errors.Is(err, ErrEmptyLog) {
		return err
	}

	var entry json.RawMessage
	if s.codec != nil {
		envelope, err := s.codec.EncryptRecord(rec)
		if err != nil {
			return err
		}
		entry, err = json.Marshal(envelope)
		if err != nil {
			return fmt.Errorf("failed to marshal envelope: %w", err)
		}
	} else {
		entry, err = json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
	}

	data, err := json.Marshal(append(entries, entry))
	if err != nil {
		return fmt.Errorf("failed to marshal container: %w", err)
	}

	return s.rewrite(data)
}

// ReadAll returns every stored record in write order, decrypting envelopes
// when a codec is configured. It fails with ErrEmptyLog when the container is
// absent or empty and ErrFormat when the content is not a well-formed
// sequence.
func (s *FileSink) ReadAll() ([]models.LogRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readEntries()
	if err != nil {
		return nil, err
	}

	records := make([]models.LogRecord, 0, len(entries))
	for _, entry := range entries {
		if s.codec != nil {
			var envelope string
			if err := json.Unmarshal(entry, &envelope); err != nil {
				return nil, fmt.Errorf("%w: entry is not an envelope string: %v", ErrFormat, err)
			}
			rec, err := s.codec.DecryptRecord(envelope)
			if err != nil {
				return nil, err
			}
			records = append(records, *rec)
		} else {
			var rec models.LogRecord
			if err := json.Unmarshal(entry, &rec); err != nil {
				return nil, fmt.Errorf("%w: entry is not a record object: %v", ErrFormat, err)
			}
			records = append(records, rec)
		}
	}

	return records, nil
}

// Close implements Sink. The file handle is not held between writes.
func (s *FileSink) Close() error {
	return nil
}

func (s *FileSink) readEntries() ([]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrEmptyLog
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read log container: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyLog
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if len(entries) == 0 {
		return nil, ErrEmptyLog
	}

	return entries, nil
}

// rewrite replaces the container content and fsyncs before returning, so a
// successful Write is durable.
func (s *FileSink) rewrite(data []byte) error {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log container: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write log container: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to sync log container: %w", err)
	}
	return f.Close()
}
