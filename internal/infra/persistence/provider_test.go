package persistence

import (
	"io"
	"log/slog"
	"testing"

	"quill/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

func newParams(t *testing.T, driver string) Params {
	t.Helper()

	cfg := &config.Config{}
	cfg.Storage.Driver = driver

	return Params{
		Lifecycle: fxtest.NewLifecycle(t),
		Config:    cfg,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestNewRepositories_Memory(t *testing.T) {
	repos, err := NewRepositories(newParams(t, config.StorageDriverMemory))
	require.NoError(t, err)
	assert.NotNil(t, repos.Users)
	assert.NotNil(t, repos.Posts)
}

func TestNewRepositories_UnknownDriver(t *testing.T) {
	_, err := NewRepositories(newParams(t, "cassandra"))
	assert.Error(t, err)
}
