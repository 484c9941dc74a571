package app

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskapi/internal/config"
	"taskapi/internal/logging"
	"taskapi/repository"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	mem, err := OpenStore(ctx, config.StoreConfig{Backend: config.BackendMemory})
	require.NoError(t, err)
	_, isMem := mem.Users.(*repository.MemoryUsers)
	assert.True(t, isMem)

	sq, err := OpenStore(ctx, config.StoreConfig{Backend: config.BackendSQLite, Path: filepath.Join(t.TempDir(), "app.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sq.Close() })
	_, isSQL := sq.Users.(*repository.UserRepository)
	assert.True(t, isSQL)

	_, err = OpenStore(ctx, config.StoreConfig{Backend: "mongo"})
	assert.Error(t, err)
}

func TestNewStack_ServesBothTransports(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	run, err := NewStack(ctx, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = run.Shutdown(context.Background()) })

	resp, err := http.Get(run.BaseURL() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, run.GRPCAddr.String())
}
