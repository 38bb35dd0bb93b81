package registry

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFileStore_SeedsDefaultsOnFirstLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent_configs.json")
	store := NewFileStore(path)

	configs, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, configs, len(DefaultTemplates()))

	for _, cfg := range configs {
		assert.False(t, cfg.Enabled, "templates ship disabled")
	}

	// Second load reads the seeded file, not the in-memory defaults.
	configs, err = store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, configs, len(DefaultTemplates()))
}

func TestFileStore_SaveDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "agent_configs.json")
	store := NewFileStore(path)
	ctx := context.Background()

	cfg := validHTTPConfig("persisted")
	require.NoError(t, store.Save(ctx, cfg))

	configs, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, "persisted", configs[0].ID)
	assert.Equal(t, []string{"test"}, configs[0].Keywords)

	require.NoError(t, store.Delete(ctx, "persisted"))
	configs, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, configs)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func TestGormStore_RoundTrip(t *testing.T) {
	store, err := NewGormStore(openTestDB(t))
	require.NoError(t, err)
	ctx := context.Background()

	cfg := validHTTPConfig("db_agent")
	cfg.Headers = map[string]string{"X-Token": "abc"}
	cfg.Patterns = []string{`db\s+(.+)`}
	require.NoError(t, store.Save(ctx, cfg))

	configs, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, "db_agent", configs[0].ID)
	assert.Equal(t, "abc", configs[0].Headers["X-Token"])
	assert.Equal(t, []string{`db\s+(.+)`}, configs[0].Patterns)

	// Upsert replaces the existing row.
	cfg.Description = "updated"
	require.NoError(t, store.Save(ctx, cfg))
	configs, err = store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, "updated", configs[0].Description)

	require.NoError(t, store.Delete(ctx, "db_agent"))
	require.NoError(t, store.Delete(ctx, "db_agent")) // idempotent
	configs, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, configs)
}

func TestRegistry_LoadFromStore(t *testing.T) {
	store, err := NewGormStore(openTestDB(t))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, validHTTPConfig("a1")))
	require.NoError(t, store.Save(ctx, validHTTPConfig("a2")))

	r := New(store, nil)
	require.NoError(t, r.LoadFromStore(ctx))
	assert.Len(t, r.List(), 2)
}
