package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBadgerDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir(), false)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBadgerTopicStoreProduceFetchRoundTrip(t *testing.T) {
	db := newTestBadgerDB(t)
	ts := NewTopicStore(db)

	require.NoError(t, ts.EnsureTopic("orders", false, 0))
	assert.True(t, ts.TopicExists("orders"))

	off0, err := ts.Append("orders", 0, []byte("k1"), []byte("v1"))
	require.NoError(t, err)
	assert.EqualValues(t, 0, off0)

	off1, err := ts.Append("orders", 0, nil, []byte("v2"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, off1)

	records, err := ts.Scan("orders", 0, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []byte("v1"), records[0].Value)
	assert.Equal(t, []byte("v2"), records[1].Value)
}

func TestBadgerTopicStoreCompactedUpsert(t *testing.T) {
	db := newTestBadgerDB(t)
	ts := NewTopicStore(db)

	require.NoError(t, ts.EnsureTopic("config", true, 0))

	off, err := ts.Append("config", 0, []byte("retries"), []byte("3"))
	require.NoError(t, err)

	off2, err := ts.Append("config", 0, []byte("retries"), []byte("5"))
	require.NoError(t, err)
	assert.EqualValues(t, off, off2)

	records, err := ts.Scan("config", 0, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []byte("5"), records[0].Value)

	off3, err := ts.Append("config", 0, []byte("timeout"), []byte("30"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, off3)
}

func TestBadgerTopicStoreScanFromOffset(t *testing.T) {
	db := newTestBadgerDB(t)
	ts := NewTopicStore(db)

	require.NoError(t, ts.EnsureTopic("events", false, 0))
	for i := 0; i < 5; i++ {
		_, err := ts.Append("events", 0, nil, []byte{byte(i)})
		require.NoError(t, err)
	}

	records, err := ts.Scan("events", 3, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.EqualValues(t, 3, records[0].Offset)
	assert.EqualValues(t, 4, records[1].Offset)
}

func TestBadgerTopicStoreDeleteExpired(t *testing.T) {
	db := newTestBadgerDB(t)
	ts := NewTopicStore(db)

	require.NoError(t, ts.EnsureTopic("logs", false, 0))
	_, err := ts.Append("logs", 0, nil, []byte("stale"))
	require.NoError(t, err)

	deleted, err := ts.DeleteExpired("logs", -1)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	records, err := ts.Scan("logs", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestBadgerTopicStoreDeleteTopic(t *testing.T) {
	db := newTestBadgerDB(t)
	ts := NewTopicStore(db)

	require.NoError(t, ts.EnsureTopic("temp", false, 0))
	_, err := ts.Append("temp", 0, nil, []byte("x"))
	require.NoError(t, err)

	require.NoError(t, ts.DeleteTopic("temp"))
	assert.False(t, ts.TopicExists("temp"))
}

func TestBadgerGroupStoreJoinAndOffsets(t *testing.T) {
	db := newTestBadgerDB(t)
	gs := NewGroupStore(db)

	group, err := gs.GetOrCreateGroup("consumers")
	require.NoError(t, err)
	assert.Equal(t, "consumers", group.ID)

	require.NoError(t, gs.AddMember("consumers", "member-1", "client-a", []byte("meta")))

	got, ok := gs.GetGroup("consumers")
	require.True(t, ok)
	assert.Contains(t, got.Members, "member-1")

	require.NoError(t, gs.CommitOffset("consumers", "orders", 42))
	offset, err := gs.FetchOffset("consumers", "orders")
	require.NoError(t, err)
	assert.EqualValues(t, 42, offset)

	require.NoError(t, gs.RemoveMember("consumers", "member-1"))
	got, ok = gs.GetGroup("consumers")
	require.True(t, ok)
	assert.NotContains(t, got.Members, "member-1")
}

func TestBadgerGroupStoreExpireMembers(t *testing.T) {
	db := newTestBadgerDB(t)
	gs := NewGroupStore(db)

	_, err := gs.GetOrCreateGroup("consumers")
	require.NoError(t, err)
	require.NoError(t, gs.AddMember("consumers", "stale-member", "client-a", nil))

	expired, err := gs.ExpireMembers(0 * time.Second)
	require.NoError(t, err)
	assert.Contains(t, expired, "stale-member")
}
