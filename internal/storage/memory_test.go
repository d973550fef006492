package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStorage runs the contract every backend has to satisfy.
func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	_, err := s.GetItem(ctx, "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, s.SetItem(ctx, "cart", `[{"id":"a","quantity":1}]`))
	value, err := s.GetItem(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a","quantity":1}]`, value)

	require.NoError(t, s.SetItem(ctx, "cart", `[]`))
	value, err = s.GetItem(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, `[]`, value)

	require.NoError(t, s.RemoveItem(ctx, "cart"))
	_, err = s.GetItem(ctx, "cart")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	// removing twice is fine
	assert.NoError(t, s.RemoveItem(ctx, "cart"))
}

func TestMemoryStorage_Contract(t *testing.T) {
	exerciseStorage(t, NewMemoryStorage())
}

func TestMemoryStorage_Closed(t *testing.T) {
	s := NewMemoryStorage()
	require.NoError(t, s.Close())

	_, err := s.GetItem(context.Background(), "cart")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.SetItem(context.Background(), "cart", "[]"), ErrClosed)
	assert.ErrorIs(t, s.RemoveItem(context.Background(), "cart"), ErrClosed)
}
