package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/blackhole-core/agentmesh/config"
)

func TestInitComponentsFileBackedStore(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Database.Driver = "file"
	cfg.Database.Name = filepath.Join(t.TempDir(), "agent_configs.json")
	require.NoError(t, cfg.Validate())

	s := NewServer(cfg, zap.NewNop(), nil)
	require.NoError(t, s.initComponents())

	// A fresh JSON store seeds the default templates on first load.
	configs := s.registry.List()
	require.NotEmpty(t, configs)
	assert.FileExists(t, cfg.Database.Name)

	ids := make([]string, 0, len(configs))
	for _, c := range configs {
		ids = append(ids, c.ID)
	}
	assert.Contains(t, ids, "example_http_agent")
}
