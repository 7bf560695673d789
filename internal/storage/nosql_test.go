package storage

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telemetry_logger/internal/config"
	"telemetry_logger/internal/models"
)

func TestNoSQLSinkWrite(t *testing.T) {
	mr := miniredis.RunT(t)

	sink, err := NewNoSQLSink("redis://"+mr.Addr(), "")
	require.NoError(t, err)
	defer sink.Close()

	ctx := context.Background()
	require.NoError(t, sink.Write(ctx, makeRecord("GET", "/one")))
	require.NoError(t, sink.Write(ctx, makeRecord("POST", "/two")))

	docs, err := sink.client.LRange(ctx, config.DefaultStoreName, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, docs, 2)

	var first models.LogRecord
	require.NoError(t, json.Unmarshal([]byte(docs[0]), &first))
	assert.Equal(t, "GET", first.Method)
	assert.Equal(t, "/one", first.URL)
}

func TestNoSQLSinkCustomCollection(t *testing.T) {
	mr := miniredis.RunT(t)

	sink, err := NewNoSQLSink("redis://"+mr.Addr(), "auditTrail")
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.Write(context.Background(), makeRecord("GET", "/x")))

	docs, err := sink.client.LRange(context.Background(), "auditTrail", 0, -1).Result()
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestNoSQLSinkConstruction(t *testing.T) {
	// Malformed connection string fails fast.
	_, err := NewNoSQLSink("not-a-url", "")
	assert.Error(t, err)

	// Unreachable server fails fast.
	_, err = NewNoSQLSink("redis://127.0.0.1:1", "")
	assert.Error(t, err)
}

func TestNoSQLSinkDoesNotSupportReads(t *testing.T) {
	mr := miniredis.RunT(t)

	sink, err := NewNoSQLSink("redis://"+mr.Addr(), "")
	require.NoError(t, err)
	defer sink.Close()

	_, err = ReadStoredLogs(sink)
	assert.ErrorIs(t, err, ErrUnsupported)
}
