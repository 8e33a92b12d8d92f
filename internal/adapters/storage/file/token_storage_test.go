package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "petctl")
	s := NewTokenStorage(dir)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.Save(ctx, "tok-1"))

	// otro proceso (otra instancia) ve el mismo valor
	got, err = NewTokenStorage(dir).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", got)

	info, err := os.Stat(filepath.Join(dir, storageFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, s.Clear(ctx))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTokenStorage_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, storageFile), []byte("{not json"), 0o600))

	_, err := NewTokenStorage(dir).Load(context.Background())
	assert.Error(t, err)
}

func TestDefaultDir(t *testing.T) {
	got, err := DefaultDir("/tmp/custom")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom", got)
}
