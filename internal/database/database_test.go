package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/blackhole-core/agentmesh/config"
)

func TestOpenSQLite(t *testing.T) {
	cfg := config.DatabaseConfig{
		Driver:       "sqlite",
		Name:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	db, err := Open(cfg, zap.NewNop())
	require.NoError(t, err)
	defer Close(db)

	assert.NoError(t, Ping(context.Background(), db))
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"}, zap.NewNop())
	assert.Error(t, err)
}

func TestOpenDefaultsToSQLite(t *testing.T) {
	cfg := config.DatabaseConfig{Name: filepath.Join(t.TempDir(), "default.db")}
	db, err := Open(cfg, zap.NewNop())
	require.NoError(t, err)
	defer Close(db)
	assert.NoError(t, Ping(context.Background(), db))
}
