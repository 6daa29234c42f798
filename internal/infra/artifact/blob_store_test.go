package artifact

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStore_PutReadDelete(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, "mem://", discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	location, err := store.Put(ctx, "orders/1.txt", []byte("1 Paracetamol 500mg - 10"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "mem://orders/1.txt", location)

	data, err := store.Read(ctx, "orders/1.txt")
	require.NoError(t, err)
	assert.Equal(t, "1 Paracetamol 500mg - 10", string(data))

	require.NoError(t, store.Delete(ctx, "orders/1.txt"))
	require.NoError(t, store.Delete(ctx, "orders/1.txt"))

	_, err = store.Read(ctx, "orders/1.txt")
	require.Error(t, err)
}

func TestStore_FileBucketCreatesDirectory(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "share", "staging")

	store, err := Open(ctx, "file://"+dir, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	location, err := store.Put(ctx, "summary.txt", []byte("hello"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "file://"+dir+"/summary.txt", location)

	data, err := os.ReadFile(filepath.Join(dir, "summary.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestOpen_InvalidURL(t *testing.T) {
	_, err := Open(context.Background(), "unknown-scheme://bucket", discardLogger())
	require.Error(t, err)
}
