package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/blackhole-core/agentmesh/orchestrator"
	"github.com/blackhole-core/agentmesh/types"
)

func newTestCache(t *testing.T) (*ResponseCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := New(Config{Addr: mr.Addr(), TTL: time.Minute}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestResponseRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	resp := orchestrator.Response{
		Status:            types.StatusSuccess,
		WorkflowID:        "wf-123",
		CollaborationUsed: true,
		AgentsInvolved:    []string{"document_processor", "archive_search"},
		Approach:          "collaborative",
		Timestamp:         time.Now().Truncate(time.Second),
	}
	require.NoError(t, c.PutResponse(ctx, "Analyze this thoroughly", resp))

	got, err := c.GetResponse(ctx, "Analyze this thoroughly")
	require.NoError(t, err)
	assert.Equal(t, "wf-123", got.WorkflowID)
	assert.True(t, got.CollaborationUsed)
	assert.Equal(t, resp.AgentsInvolved, got.AgentsInvolved)
}

func TestMissOnUnknownInput(t *testing.T) {
	c, _ := newTestCache(t)
	_, err := c.GetResponse(context.Background(), "never seen")
	assert.True(t, IsMiss(err))
}

func TestKeyNormalization(t *testing.T) {
	// Case and whitespace differences map to the same entry.
	assert.Equal(t, Key("Analyze   This"), Key("analyze this"))
	assert.NotEqual(t, Key("analyze this"), Key("analyze that"))
}

func TestEntriesExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.PutResponse(ctx, "short lived", orchestrator.Response{WorkflowID: "wf-ttl"}))
	mr.FastForward(2 * time.Minute)

	_, err := c.GetResponse(ctx, "short lived")
	assert.True(t, IsMiss(err))
}

func TestInvalidate(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.PutResponse(ctx, "to remove", orchestrator.Response{WorkflowID: "wf-x"}))
	require.NoError(t, c.Invalidate(ctx, "to remove"))

	_, err := c.GetResponse(ctx, "to remove")
	assert.True(t, IsMiss(err))
}

func TestClosedCacheRejectsOperations(t *testing.T) {
	c, _ := newTestCache(t)
	require.NoError(t, c.Close())

	_, err := c.GetResponse(context.Background(), "x")
	assert.Error(t, err)
	assert.False(t, IsMiss(err))
	assert.Error(t, c.PutResponse(context.Background(), "x", orchestrator.Response{}))
	assert.NoError(t, c.Close(), "double close is a no-op")
}
