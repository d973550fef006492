package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/marinamsm/GoMarketplace/internal/cart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) {
	t.Setenv("CART_STORAGE_DRIVER", "sqlite")
	t.Setenv("CART_SQLITE_PATH", filepath.Join(t.TempDir(), "cart.db"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
}

func run(t *testing.T, args ...string) (cart.Snapshot, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	args = append(args, "--env-file", "")

	err := execute(context.Background(), args, &stdout, &stderr)
	if err != nil {
		return cart.Snapshot{}, err
	}

	var snap cart.Snapshot
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &snap), "stdout: %s", stdout.String())
	return snap, nil
}

func TestCartctl_PersistsAcrossInvocations(t *testing.T) {
	setupEnv(t)

	snap, err := run(t, "add", "--id", "a", "--title", "Apple", "--price", "10")
	require.NoError(t, err)
	require.Len(t, snap.Products, 1)

	_, err = run(t, "add", "--id", "a", "--price", "10")
	require.NoError(t, err)

	snap, err = run(t, "list")
	require.NoError(t, err)
	require.Len(t, snap.Products, 1)
	assert.Equal(t, "Apple", snap.Products[0].Title)
	assert.Equal(t, 2, snap.Products[0].Quantity)

	snap, err = run(t, "decrement", "a")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Products[0].Quantity)

	snap, err = run(t, "increment", "a")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Products[0].Quantity)
}

func TestCartctl_ClearData(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "add", "--id", "a", "--price", "1")
	require.NoError(t, err)

	snap, err := run(t, "clear-data")
	require.NoError(t, err)
	assert.Empty(t, snap.Products)

	snap, err = run(t, "list")
	require.NoError(t, err)
	assert.Empty(t, snap.Products)
}

func TestCartctl_UnknownProduct(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "increment", "ghost")
	assert.ErrorIs(t, err, cart.ErrProductNotFound)
}

func TestCartctl_UnknownDriver(t *testing.T) {
	setupEnv(t)
	t.Setenv("CART_STORAGE_DRIVER", "floppy")

	_, err := run(t, "list")
	assert.ErrorContains(t, err, "failed to open floppy storage")
}
