package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Corre solo con TEST_DB_DSN apuntando a un Postgres descartable.
func TestClientStorage_RoundTrip(t *testing.T) {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()
	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()

	s := NewClientStorage(db)
	require.NoError(t, s.EnsureSchema(ctx))

	slot := s.For(uuid.NewString())
	got, err := slot.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, slot.Save(ctx, "tok-1"))
	require.NoError(t, slot.Save(ctx, "tok-2"))
	got, err = slot.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", got)

	require.NoError(t, slot.Clear(ctx))
	got, err = slot.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
