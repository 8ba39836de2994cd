package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unclek/unclek/internal/config"
	"github.com/unclek/unclek/internal/store"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	db, err := store.OpenSQLite(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.Default()
	cfg.Retention.Enabled = false

	e := New(cfg, zap.NewNop(), nil, store.NewSQLiteTopicStore(db), store.NewSQLiteGroupStore(db))
	return e
}

func TestEngineProduceFetchRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.EnsureTopic("orders", false, 0))

	base, err := e.Produce("orders", 0, []store.Record{
		{Key: []byte("k1"), Value: []byte("v1")},
		{Key: []byte("k2"), Value: []byte("v2")},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 0, base)

	latest, err := e.LatestOffset("orders")
	require.NoError(t, err)
	assert.EqualValues(t, 2, latest)

	records, err := e.Fetch("orders", 0, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []byte("v1"), records[0].Value)
}

func TestEngineProduceAutoCreatesTopicWhenEnabled(t *testing.T) {
	e := newTestEngine(t)
	e.config.Topics.AutoCreate = true

	_, err := e.Produce("new-topic", 0, []store.Record{{Value: []byte("x")}})
	require.NoError(t, err)
	assert.True(t, e.TopicExists("new-topic"))
}

func TestEngineProduceFailsWithoutAutoCreate(t *testing.T) {
	e := newTestEngine(t)
	e.config.Topics.AutoCreate = false

	_, err := e.Produce("missing-topic", 0, []store.Record{{Value: []byte("x")}})
	assert.Error(t, err)
}

func TestEngineFetchUnknownTopic(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Fetch("nope", 0, 10)
	assert.Error(t, err)
}

func TestEngineJoinGroupAndCommitOffset(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.EnsureTopic("orders", false, 0))

	group, err := e.JoinGroup("g1", "member-1", "client-a", []byte("meta"))
	require.NoError(t, err)
	assert.Contains(t, group.Members, "member-1")

	require.NoError(t, e.CommitOffset("g1", "orders", 7))
	offset, err := e.FetchOffset("g1", "orders")
	require.NoError(t, err)
	assert.EqualValues(t, 7, offset)

	require.NoError(t, e.LeaveGroup("g1", "member-1"))
	group, _ = e.GetGroup("g1")
	assert.NotContains(t, group.Members, "member-1")
}

func TestEngineExpireMembers(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.JoinGroup("g1", "stale", "client-a", nil)
	require.NoError(t, err)

	expired, err := e.ExpireMembers(0 * time.Second)
	require.NoError(t, err)
	assert.Contains(t, expired, "stale")
}
