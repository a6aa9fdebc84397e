package storage

import (
	"context"
	"io"
	"testing"

	"github.com/dimitrije/internal-ops/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, "invoices/a.html", []byte("<p>a</p>"), "text/html"))
	assert.Equal(t, []string{"invoices/a.html"}, s.Keys())

	rc, err := s.Get(ctx, "invoices/a.html")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "<p>a</p>", string(body))

	require.NoError(t, s.Delete(ctx, "invoices/a.html"))
	_, err = s.Get(ctx, "invoices/a.html")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewMinioStore_RequiresEndpoint(t *testing.T) {
	_, err := NewMinioStore(context.Background(), config.MinIOConfig{Bucket: "invoices"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestOpen_FallsBackToMemory(t *testing.T) {
	s, err := Open(context.Background(), config.MinIOConfig{Bucket: "invoices"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
}
