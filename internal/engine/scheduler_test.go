package engine

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclek/unclek/internal/config"
	"github.com/unclek/unclek/internal/store"
)

func TestFetchSchedulerCompletesParkedFetchOnTick(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.EnsureTopic("orders", false, 0))

	conn, _ := net.Pipe()
	defer conn.Close()

	respCh := make(chan FetchResult, 1)
	e.ParkFetch(&PendingFetch{
		Conn:         conn,
		Topic:        "orders",
		Offset:       0,
		MaxBytes:     1024,
		Deadline:     time.Now().Add(2 * time.Second),
		ResponseChan: respCh,
	})

	sched := NewFetchScheduler(e, 10*time.Millisecond)
	sched.Start()
	defer sched.Stop()

	_, err := e.Produce("orders", 0, []store.Record{{Value: []byte("hello")}})
	require.NoError(t, err)

	select {
	case result := <-respCh:
		require.NoError(t, result.Error)
		require.Len(t, result.Records, 1)
		assert.Equal(t, []byte("hello"), result.Records[0].Value)
	case <-time.After(2 * time.Second):
		t.Fatal("parked fetch was never completed by the scheduler")
	}
}

func TestRetentionSchedulerDeletesExpiredRecords(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.EnsureTopic("logs", false, 0))

	_, err := e.Produce("logs", 0, []store.Record{{Value: []byte("stale")}})
	require.NoError(t, err)

	cfg := config.RetentionConfig{Enabled: true, MaxAge: -1 * time.Millisecond, CheckInterval: 10 * time.Millisecond}
	sched := NewRetentionScheduler(e, cfg)
	sched.Start()
	defer sched.Stop()

	require.Eventually(t, func() bool {
		records, err := e.Fetch("logs", 0, 10)
		return err == nil && len(records) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestRetentionSchedulerDisabledNeverStarts(t *testing.T) {
	e := newTestEngine(t)
	cfg := config.RetentionConfig{Enabled: false, CheckInterval: 10 * time.Millisecond}
	sched := NewRetentionScheduler(e, cfg)
	sched.Start()
	assert.Nil(t, sched.ticker)
	sched.Stop()
}

func TestMemberExpirationSchedulerEvictsStaleMembers(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.JoinGroup("g1", "stale", "client-a", nil)
	require.NoError(t, err)

	// Start() floors the check interval at 1s regardless of timeout, so a
	// near-zero timeout here still needs a few seconds of real time to
	// observe the first expiration pass.
	sched := NewMemberExpirationScheduler(e, 10*time.Millisecond)
	sched.Start()
	defer sched.Stop()

	require.Eventually(t, func() bool {
		group, ok := e.GetGroup("g1")
		return ok && !contains(group.Members, "stale")
	}, 3*time.Second, 100*time.Millisecond)
}

func contains(members map[string]store.Member, id string) bool {
	_, ok := members[id]
	return ok
}
