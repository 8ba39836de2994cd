package server

import (
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unclek/unclek/internal/config"
	"github.com/unclek/unclek/internal/engine"
	"github.com/unclek/unclek/internal/protocol"
	"github.com/unclek/unclek/internal/store"
)

func newTestKafkaServer(t *testing.T) (*KafkaServer, string) {
	t.Helper()

	db, err := store.OpenSQLite(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.Default()
	cfg.Server.KafkaAddr = "127.0.0.1:0"
	cfg.Retention.Enabled = false
	cfg.Topics.AutoCreate = true

	eng := engine.New(cfg, zap.NewNop(), nil, store.NewSQLiteTopicStore(db), store.NewSQLiteGroupStore(db))
	eng.Start()
	t.Cleanup(eng.Stop)

	srv := NewKafkaServer(cfg, eng, zap.NewNop(), nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv.listener = ln
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			srv.connections.Store(conn, true)
			srv.wg.Add(1)
			go srv.handleConnection(conn)
		}
	}()
	t.Cleanup(func() { srv.Close() })

	return srv, ln.Addr().String()
}

func writeRequest(t *testing.T, conn net.Conn, apiKey, apiVersion int16, correlationID int32, body []byte) {
	t.Helper()

	e := protocol.NewEncoder()
	e.WriteInt16(apiKey)
	e.WriteInt16(apiVersion)
	e.WriteInt32(correlationID)
	e.WriteString("test-client")
	e.WriteRaw(body)

	full := e.Bytes()
	sizeBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(sizeBuf, uint32(len(full)))

	_, err := conn.Write(sizeBuf)
	require.NoError(t, err)
	_, err = conn.Write(full)
	require.NoError(t, err)
}

func readResponse(t *testing.T, conn net.Conn) []byte {
	t.Helper()

	sizeBuf := make([]byte, 4)
	_, err := io.ReadFull(conn, sizeBuf)
	require.NoError(t, err)

	size := binary.BigEndian.Uint32(sizeBuf)
	body := make([]byte, size)
	_, err = io.ReadFull(conn, body)
	require.NoError(t, err)
	return body
}

func encodeProduceV0(topic string, partition int32, msgs []protocol.Message) []byte {
	e := protocol.NewEncoder()
	e.WriteInt16(1) // acks
	e.WriteInt32(1000) // timeout ms
	e.WriteArrayLen(1)
	e.WriteString(topic)
	e.WriteArrayLen(1)
	e.WriteInt32(partition)
	e.WriteBytes(protocol.EncodeMessageSet(msgs))
	return e.Bytes()
}

func encodeFetchV0(topic string, partition int32, offset int64) []byte {
	e := protocol.NewEncoder()
	e.WriteInt32(-1)   // replica id
	e.WriteInt32(1000) // max wait ms
	e.WriteInt32(1)    // min bytes
	e.WriteArrayLen(1)
	e.WriteString(topic)
	e.WriteArrayLen(1)
	e.WriteInt32(partition)
	e.WriteInt64(offset)
	e.WriteInt32(65536) // max bytes
	return e.Bytes()
}

func TestKafkaServerProduceFetchRoundTrip(t *testing.T) {
	_, addr := newTestKafkaServer(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	writeRequest(t, conn, protocol.APIKeyProduce, 0, 1, encodeProduceV0("orders", 0, []protocol.Message{
		{Timestamp: 1, Key: []byte("k1"), Value: []byte("v1")},
	}))
	produceResp := readResponse(t, conn)
	require.NotEmpty(t, produceResp)

	writeRequest(t, conn, protocol.APIKeyFetch, 0, 2, encodeFetchV0("orders", 0, 0))
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	fetchResp := readResponse(t, conn)
	require.NotEmpty(t, fetchResp)
}

// TestKafkaServerEmptyFetchBackoff asserts a Fetch with no available
// records is held back for the fixed backoff window rather than
// written immediately.
func TestKafkaServerEmptyFetchBackoff(t *testing.T) {
	_, addr := newTestKafkaServer(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	writeRequest(t, conn, protocol.APIKeyMetadata, 0, 1, func() []byte {
		e := protocol.NewEncoder()
		e.WriteArrayLen(1)
		e.WriteString("empty-topic")
		return e.Bytes()
	}())
	readResponse(t, conn) // drain metadata response, which also creates the topic

	start := time.Now()
	writeRequest(t, conn, protocol.APIKeyFetch, 0, 2, encodeFetchV0("empty-topic", 0, 0))
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	readResponse(t, conn)
	elapsed := time.Since(start)

	require.GreaterOrEqual(t, elapsed, emptyFetchBackoff-50*time.Millisecond)
}

// TestKafkaServerResponsesArriveInRequestOrder sends several requests
// back to back on one connection and checks their correlation IDs come
// back in the same order they were sent, even though each is handled by
// a different worker-pool goroutine.
func TestKafkaServerResponsesArriveInRequestOrder(t *testing.T) {
	_, addr := newTestKafkaServer(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	const n = 10
	for i := int32(1); i <= n; i++ {
		writeRequest(t, conn, protocol.APIKeyApiVersions, 0, i, nil)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for i := int32(1); i <= n; i++ {
		resp := readResponse(t, conn)
		require.GreaterOrEqual(t, len(resp), 4)
		got := int32(binary.BigEndian.Uint32(resp[:4]))
		require.Equal(t, i, got, "response %d arrived out of order", i)
	}
}
