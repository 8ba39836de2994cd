package server

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/unclek/unclek/internal/config"
	"github.com/unclek/unclek/internal/engine"
	"github.com/unclek/unclek/internal/metrics"
	"github.com/unclek/unclek/internal/protocol"
	"github.com/unclek/unclek/internal/store"
)

// emptyFetchBackoff is how long a Fetch response carrying zero records
// across every partition is held before being written. Real long-polling
// would hold the request open on the broker side, risking out-of-order
// writes on a connection serviced by more than one worker; a flat delay
// gives the same "don't busy-loop" effect to clients without that risk.
const emptyFetchBackoff = 1000 * time.Millisecond

// KafkaServer handles Kafka protocol connections
type KafkaServer struct {
	config      *config.Config
	engine      *engine.Engine
	log         *zap.Logger
	metrics     *metrics.Metrics
	listener    net.Listener
	connections sync.Map
	connCount   int32
	sem         chan struct{} // bounds concurrent in-flight request handlers
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

// NewKafkaServer creates a new KafkaServer
func NewKafkaServer(cfg *config.Config, eng *engine.Engine, log *zap.Logger, m *metrics.Metrics) *KafkaServer {
	threads := cfg.Server.Threads
	if threads <= 0 {
		threads = 100
	}
	return &KafkaServer{
		config:   cfg,
		engine:   eng,
		log:      log,
		metrics:  m,
		sem:      make(chan struct{}, threads),
		stopChan: make(chan struct{}),
	}
}

// ListenAndServe starts the server
func (s *KafkaServer) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.config.Server.KafkaAddr)
	if err != nil {
		return err
	}
	s.listener = ln

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.stopChan:
				return nil
			default:
				s.log.Warn("accept error", zap.Error(err))
				continue
			}
		}

		if int(atomic.LoadInt32(&s.connCount)) >= s.config.Limits.MaxConnections {
			s.log.Warn("connection limit reached, rejecting")
			conn.Close()
			continue
		}

		atomic.AddInt32(&s.connCount, 1)
		s.connections.Store(conn, true)

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// Close closes the server
func (s *KafkaServer) Close() error {
	close(s.stopChan)
	if s.listener != nil {
		s.listener.Close()
	}

	s.connections.Range(func(key, value interface{}) bool {
		if conn, ok := key.(net.Conn); ok {
			conn.Close()
		}
		return true
	})

	s.wg.Wait()
	return nil
}

// handleConnection reads requests off conn serially, but hands each one
// to the bounded worker pool so slow requests don't stall the reader.
// Responses are written in request arrival order by a dedicated writer
// goroutine draining respQueue, regardless of which worker finishes
// first — a slot is a 1-buffered channel reserved at dispatch time and
// filled once that request's handler completes.
func (s *KafkaServer) handleConnection(conn net.Conn) {
	remoteAddr := conn.RemoteAddr().String()
	s.log.Info("new connection", zap.String("remote", remoteAddr))
	if s.metrics != nil {
		s.metrics.ActiveConnections.Inc()
	}

	respQueue := make(chan chan []byte, 256)
	writerDone := make(chan struct{})
	go s.writeLoop(conn, respQueue, writerDone)

	defer func() {
		close(respQueue)
		<-writerDone
		s.log.Info("closing connection", zap.String("remote", remoteAddr))
		conn.Close()
		s.connections.Delete(conn)
		atomic.AddInt32(&s.connCount, -1)
		if s.metrics != nil {
			s.metrics.ActiveConnections.Dec()
		}
		s.engine.GetPendingQueue().Remove(conn)
		s.wg.Done()
	}()

	for {
		select {
		case <-s.stopChan:
			return
		default:
		}

		sizeBuf := make([]byte, 4)
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		n, err := io.ReadFull(conn, sizeBuf)
		if err != nil {
			if err != io.EOF && n > 0 {
				s.log.Warn("read size error", zap.Error(err), zap.Int("read", n))
			}
			return
		}

		size := int32(binary.BigEndian.Uint32(sizeBuf))
		if size < 0 || size > int32(s.config.Limits.MaxMessageSize) {
			s.log.Warn("invalid message size", zap.Int32("size", size))
			return
		}

		body := make([]byte, size)
		if _, err := io.ReadFull(conn, body); err != nil {
			s.log.Warn("read body error", zap.Error(err))
			return
		}

		slot := make(chan []byte, 1)
		select {
		case respQueue <- slot:
		case <-s.stopChan:
			return
		}

		select {
		case s.sem <- struct{}{}:
		case <-s.stopChan:
			return
		}

		s.wg.Add(1)
		go s.serve(body, slot)
	}
}

// serve runs one request's handler, releases its worker-pool slot, waits
// out any backpressure delay the handler asked for, then fills the
// response slot — in that order, so the delay never holds a pool slot.
func (s *KafkaServer) serve(body []byte, slot chan []byte) {
	defer s.wg.Done()

	resp, delay, err := s.handleRequest(body)

	<-s.sem // release before any delay

	if err != nil {
		s.log.Warn("handle error", zap.Error(err))
	}

	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-s.stopChan:
			timer.Stop()
		}
	}

	slot <- resp
}

func (s *KafkaServer) writeLoop(conn net.Conn, respQueue chan chan []byte, done chan struct{}) {
	defer close(done)
	for slot := range respQueue {
		resp := <-slot
		if resp == nil {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(30 * time.Second))
		if _, err := conn.Write(resp); err != nil {
			s.log.Warn("write error", zap.Error(err))
			return
		}
	}
}

func (s *KafkaServer) handleRequest(body []byte) ([]byte, time.Duration, error) {
	decoder := protocol.NewDecoder(bytes.NewReader(body))

	header, err := decoder.ReadHeader()
	if err != nil {
		return nil, 0, fmt.Errorf("decode header: %w", err)
	}

	s.log.Debug("request",
		zap.Int16("api", header.APIKey), zap.Int16("version", header.APIVersion),
		zap.Int32("correlation_id", header.CorrelationID), zap.String("client", header.ClientID))

	start := time.Now()
	var resp []byte
	var delay time.Duration
	var handlerErr error

	switch header.APIKey {
	case protocol.APIKeyApiVersions:
		resp, handlerErr = s.handleApiVersions(header, decoder)
	case protocol.APIKeyMetadata:
		resp, handlerErr = s.handleMetadata(header, decoder)
	case protocol.APIKeyProduce:
		resp, handlerErr = s.handleProduce(header, decoder)
	case protocol.APIKeyFetch:
		resp, delay, handlerErr = s.handleFetch(header, decoder)
	case protocol.APIKeyListOffsets:
		resp, handlerErr = s.handleListOffsets(header, decoder)
	case protocol.APIKeyFindCoordinator:
		resp, handlerErr = s.handleFindCoordinator(header, decoder)
	case protocol.APIKeyJoinGroup:
		resp, handlerErr = s.handleJoinGroup(header, decoder)
	case protocol.APIKeySyncGroup:
		resp, handlerErr = s.handleSyncGroup(header, decoder)
	case protocol.APIKeyHeartbeat:
		resp, handlerErr = s.handleHeartbeat(header, decoder)
	case protocol.APIKeyLeaveGroup:
		resp, handlerErr = s.handleLeaveGroup(header, decoder)
	case protocol.APIKeyOffsetCommit:
		resp, handlerErr = s.handleOffsetCommit(header, decoder)
	case protocol.APIKeyOffsetFetch:
		resp, handlerErr = s.handleOffsetFetch(header, decoder)
	default:
		s.log.Warn("unrecognized API key", zap.Int16("api", header.APIKey))
		return s.errorResponse(header.CorrelationID, protocol.ErrOperationNotAttempted), 0, nil
	}

	if s.metrics != nil {
		errCode := protocol.ErrNone
		if handlerErr != nil {
			errCode = -1
		}
		s.metrics.RequestsTotal.WithLabelValues(fmt.Sprintf("%d", header.APIKey), fmt.Sprintf("%d", errCode)).Inc()
		s.metrics.RequestDuration.WithLabelValues(fmt.Sprintf("%d", header.APIKey)).Observe(time.Since(start).Seconds())
	}

	return resp, delay, handlerErr
}

// ============================================================================
// API Handlers
// ============================================================================

func (s *KafkaServer) handleApiVersions(header protocol.RequestHeader, dec *protocol.Decoder) ([]byte, error) {
	protocol.DecodeApiVersionsRequest(dec, header.APIVersion)

	resp := &protocol.ApiVersionsResponse{
		ErrorCode:      protocol.ErrNone,
		ApiVersions:    protocol.DefaultApiVersions(),
		ThrottleTimeMs: 0,
	}

	enc := protocol.NewEncoder()
	enc.WriteResponseHeader(header.CorrelationID)
	protocol.EncodeApiVersionsResponse(enc, header.APIVersion, resp)

	return s.wrapResponse(enc.Bytes()), nil
}

// handleMetadata always succeeds: naming a topic — whether or not it has
// been produced to yet — is how this broker learns about it. There is no
// replication to describe, so every topic gets exactly one partition led
// by the sole broker.
func (s *KafkaServer) handleMetadata(header protocol.RequestHeader, dec *protocol.Decoder) ([]byte, error) {
	req, err := protocol.DecodeMetadataRequest(dec, header.APIVersion)
	if err != nil {
		return nil, fmt.Errorf("decode metadata request: %w", err)
	}

	host, port := parseAddr(s.config.Server.KafkaAddr, s.config.Server.Hostname)

	var topicNames []string
	if len(req.Topics) == 0 {
		topicNames = s.engine.ListTopics()
	} else {
		topicNames = req.Topics
	}

	resp := &protocol.MetadataResponse{
		Brokers: []protocol.MetadataBroker{
			{NodeID: 0, Host: host, Port: port, Rack: nil},
		},
		ClusterID:    strPtr("UncleK"),
		ControllerID: 0,
	}

	for _, name := range topicNames {
		if err := s.engine.EnsureTopic(name, false, 0); err != nil {
			s.log.Warn("ensure topic failed", zap.String("topic", name), zap.Error(err))
		}

		topic := protocol.MetadataTopic{
			Name:       name,
			IsInternal: false,
			ErrorCode:  protocol.ErrNone,
			Partitions: []protocol.MetadataPartition{
				{
					ErrorCode:       protocol.ErrNone,
					PartitionIndex:  0,
					LeaderID:        0,
					ReplicaNodes:    []int32{0},
					IsrNodes:        []int32{0},
					OfflineReplicas: []int32{},
				},
			},
		}

		resp.Topics = append(resp.Topics, topic)
	}

	enc := protocol.NewEncoder()
	enc.WriteResponseHeader(header.CorrelationID)
	protocol.EncodeMetadataResponse(enc, header.APIVersion, resp)

	return s.wrapResponse(enc.Bytes()), nil
}

func (s *KafkaServer) handleProduce(header protocol.RequestHeader, dec *protocol.Decoder) ([]byte, error) {
	req, err := protocol.DecodeProduceRequest(dec, header.APIVersion)
	if err != nil {
		return nil, fmt.Errorf("decode produce request: %w", err)
	}

	resp := &protocol.ProduceResponse{
		ThrottleTimeMs: 0,
	}

	for _, t := range req.Topics {
		topicResp := protocol.ProduceResponseTopic{
			Name: t.Name,
		}

		for _, p := range t.Partitions {
			partResp := protocol.ProduceResponsePartition{
				Index:           p.Index,
				LogAppendTimeMs: -1,
			}

			msgs := protocol.DecodeMessageSet(p.Records)
			records := make([]store.Record, len(msgs))
			for i, m := range msgs {
				records[i] = store.Record{Timestamp: m.Timestamp, Key: m.Key, Value: m.Value}
			}

			baseOffset, err := s.engine.Produce(t.Name, p.Index, records)
			if err != nil {
				partResp.ErrorCode = protocol.ErrUnknownTopicOrPartition
			} else {
				partResp.ErrorCode = protocol.ErrNone
				partResp.BaseOffset = baseOffset
			}

			topicResp.Partitions = append(topicResp.Partitions, partResp)
		}

		resp.Topics = append(resp.Topics, topicResp)
	}

	enc := protocol.NewEncoder()
	enc.WriteResponseHeader(header.CorrelationID)
	protocol.EncodeProduceResponse(enc, header.APIVersion, resp)

	return s.wrapResponse(enc.Bytes()), nil
}

const defaultFetchMaxRecords = 500

func (s *KafkaServer) handleFetch(header protocol.RequestHeader, dec *protocol.Decoder) ([]byte, time.Duration, error) {
	req, err := protocol.DecodeFetchRequest(dec, header.APIVersion)
	if err != nil {
		return nil, 0, fmt.Errorf("decode fetch request: %w", err)
	}

	resp := &protocol.FetchResponse{
		ThrottleTimeMs: 0,
	}

	totalRecords := 0

	for _, t := range req.Topics {
		topicResp := protocol.FetchResponseTopic{
			Name: t.Name,
		}

		for _, p := range t.Partitions {
			partResp := protocol.FetchResponsePartition{
				Index: p.Index,
			}

			if !s.engine.TopicExists(t.Name) {
				partResp.ErrorCode = protocol.ErrUnknownTopicOrPartition
			} else {
				records, _ := s.engine.Fetch(t.Name, p.FetchOffset, defaultFetchMaxRecords)
				highWatermark, _ := s.engine.LatestOffset(t.Name)

				partResp.ErrorCode = protocol.ErrNone
				partResp.HighWatermark = highWatermark

				if len(records) > 0 {
					msgs := make([]protocol.Message, len(records))
					for i, r := range records {
						msgs[i] = protocol.Message{Offset: r.Offset, Timestamp: r.Timestamp, Key: r.Key, Value: r.Value}
					}
					partResp.Records = protocol.EncodeMessageSet(msgs)
					totalRecords += len(records)
				}
			}

			topicResp.Partitions = append(topicResp.Partitions, partResp)
		}

		resp.Topics = append(resp.Topics, topicResp)
	}

	enc := protocol.NewEncoder()
	enc.WriteResponseHeader(header.CorrelationID)
	protocol.EncodeFetchResponse(enc, header.APIVersion, resp)

	var delay time.Duration
	if totalRecords == 0 {
		delay = emptyFetchBackoff
	}

	return s.wrapResponse(enc.Bytes()), delay, nil
}

func (s *KafkaServer) handleListOffsets(header protocol.RequestHeader, dec *protocol.Decoder) ([]byte, error) {
	req, err := protocol.DecodeListOffsetsRequest(dec, header.APIVersion)
	if err != nil {
		return nil, fmt.Errorf("decode list offsets request: %w", err)
	}

	resp := &protocol.ListOffsetsResponse{}

	for _, t := range req.Topics {
		topicResp := protocol.ListOffsetsResponseTopic{
			Name: t.Name,
		}

		for _, p := range t.Partitions {
			partResp := protocol.ListOffsetsResponsePartition{
				PartitionIndex: p.PartitionIndex,
			}

			var offset int64
			var err error

			switch p.Timestamp {
			case protocol.OffsetLatest:
				offset, err = s.engine.LatestOffset(t.Name)
			case protocol.OffsetEarliest:
				offset, err = s.engine.EarliestOffset(t.Name)
			}

			if err != nil {
				partResp.ErrorCode = protocol.ErrUnknownTopicOrPartition
			} else {
				partResp.ErrorCode = protocol.ErrNone
				partResp.Timestamp = p.Timestamp
				partResp.Offset = offset
			}

			topicResp.Partitions = append(topicResp.Partitions, partResp)
		}

		resp.Topics = append(resp.Topics, topicResp)
	}

	enc := protocol.NewEncoder()
	enc.WriteResponseHeader(header.CorrelationID)
	protocol.EncodeListOffsetsResponse(enc, header.APIVersion, resp)

	return s.wrapResponse(enc.Bytes()), nil
}

func (s *KafkaServer) handleFindCoordinator(header protocol.RequestHeader, dec *protocol.Decoder) ([]byte, error) {
	req, err := protocol.DecodeFindCoordinatorRequest(dec, header.APIVersion)
	if err != nil {
		return nil, fmt.Errorf("decode find coordinator request: %w", err)
	}
	_ = req // single-node broker: every group's coordinator is this node

	host, port := parseAddr(s.config.Server.KafkaAddr, s.config.Server.Hostname)

	resp := &protocol.FindCoordinatorResponse{
		ErrorCode: protocol.ErrNone,
		NodeID:    0,
		Host:      host,
		Port:      port,
	}

	enc := protocol.NewEncoder()
	enc.WriteResponseHeader(header.CorrelationID)
	protocol.EncodeFindCoordinatorResponse(enc, header.APIVersion, resp)

	return s.wrapResponse(enc.Bytes()), nil
}

func (s *KafkaServer) handleJoinGroup(header protocol.RequestHeader, dec *protocol.Decoder) ([]byte, error) {
	req, err := protocol.DecodeJoinGroupRequest(dec, header.APIVersion)
	if err != nil {
		return nil, fmt.Errorf("decode join group request: %w", err)
	}

	memberID := req.MemberID
	if memberID == "" {
		memberID = fmt.Sprintf("%s-%d", req.GroupID, time.Now().UnixNano())
	}

	var firstMetadata []byte
	var protocolName string
	if len(req.Protocols) > 0 {
		firstMetadata = req.Protocols[0].Metadata
		protocolName = req.Protocols[0].Name
	}

	if _, err := s.engine.JoinGroup(req.GroupID, memberID, header.ClientID, firstMetadata); err != nil {
		s.log.Warn("join group failed", zap.String("group", req.GroupID), zap.Error(err))
	}

	resp := &protocol.JoinGroupResponse{
		ErrorCode:    protocol.ErrNone,
		GenerationID: 1,
		ProtocolName: protocolName,
		LeaderID:     memberID, // single-node broker: the joining member is always its own leader
		MemberID:     memberID,
		Members: []protocol.JoinGroupResponseMember{
			{MemberID: memberID, Metadata: firstMetadata},
		},
	}

	enc := protocol.NewEncoder()
	enc.WriteResponseHeader(header.CorrelationID)
	protocol.EncodeJoinGroupResponse(enc, header.APIVersion, resp)

	return s.wrapResponse(enc.Bytes()), nil
}

func (s *KafkaServer) handleSyncGroup(header protocol.RequestHeader, dec *protocol.Decoder) ([]byte, error) {
	req, err := protocol.DecodeSyncGroupRequest(dec, header.APIVersion)
	if err != nil {
		return nil, fmt.Errorf("decode sync group request: %w", err)
	}

	var assignment []byte
	for _, a := range req.Assignments {
		if a.MemberID == req.MemberID {
			assignment = a.Assignment
		}
	}

	if len(assignment) > 0 {
		if err := s.engine.SyncGroup(req.GroupID, req.MemberID, assignment); err != nil {
			s.log.Warn("sync group failed", zap.String("group", req.GroupID), zap.Error(err))
		}
	}

	resp := &protocol.SyncGroupResponse{
		ErrorCode:  protocol.ErrNone,
		Assignment: assignment,
	}

	enc := protocol.NewEncoder()
	enc.WriteResponseHeader(header.CorrelationID)
	protocol.EncodeSyncGroupResponse(enc, header.APIVersion, resp)

	return s.wrapResponse(enc.Bytes()), nil
}

func (s *KafkaServer) handleHeartbeat(header protocol.RequestHeader, dec *protocol.Decoder) ([]byte, error) {
	req, err := protocol.DecodeHeartbeatRequest(dec, header.APIVersion)
	if err != nil {
		return nil, fmt.Errorf("decode heartbeat request: %w", err)
	}

	if err := s.engine.Heartbeat(req.GroupID, req.MemberID); err != nil {
		s.log.Warn("heartbeat failed", zap.String("group", req.GroupID), zap.Error(err))
	}

	resp := &protocol.HeartbeatResponse{ErrorCode: protocol.ErrNone}

	enc := protocol.NewEncoder()
	enc.WriteResponseHeader(header.CorrelationID)
	protocol.EncodeHeartbeatResponse(enc, header.APIVersion, resp)

	return s.wrapResponse(enc.Bytes()), nil
}

func (s *KafkaServer) handleLeaveGroup(header protocol.RequestHeader, dec *protocol.Decoder) ([]byte, error) {
	req, err := protocol.DecodeLeaveGroupRequest(dec, header.APIVersion)
	if err != nil {
		return nil, fmt.Errorf("decode leave group request: %w", err)
	}

	if err := s.engine.LeaveGroup(req.GroupID, req.MemberID); err != nil {
		s.log.Warn("leave group failed", zap.String("group", req.GroupID), zap.Error(err))
	}

	resp := &protocol.LeaveGroupResponse{ErrorCode: protocol.ErrNone}

	enc := protocol.NewEncoder()
	enc.WriteResponseHeader(header.CorrelationID)
	protocol.EncodeLeaveGroupResponse(enc, header.APIVersion, resp)

	return s.wrapResponse(enc.Bytes()), nil
}

func (s *KafkaServer) handleOffsetCommit(header protocol.RequestHeader, dec *protocol.Decoder) ([]byte, error) {
	req, err := protocol.DecodeOffsetCommitRequest(dec, header.APIVersion)
	if err != nil {
		return nil, fmt.Errorf("decode offset commit request: %w", err)
	}

	s.engine.GetOrCreateGroup(req.GroupID)

	resp := &protocol.OffsetCommitResponse{}
	for _, t := range req.Topics {
		topicResp := protocol.OffsetCommitResponseTopic{Name: t.Name}

		for _, p := range t.Partitions {
			if p.Index == 0 {
				if err := s.engine.CommitOffset(req.GroupID, t.Name, p.CommittedOffset); err != nil {
					s.log.Warn("offset commit failed", zap.String("group", req.GroupID), zap.String("topic", t.Name), zap.Error(err))
				}
			}
			topicResp.Partitions = append(topicResp.Partitions, protocol.OffsetCommitResponsePartition{
				Index: p.Index, ErrorCode: protocol.ErrNone,
			})
		}

		resp.Topics = append(resp.Topics, topicResp)
	}

	enc := protocol.NewEncoder()
	enc.WriteResponseHeader(header.CorrelationID)
	protocol.EncodeOffsetCommitResponse(enc, header.APIVersion, resp)

	return s.wrapResponse(enc.Bytes()), nil
}

func (s *KafkaServer) handleOffsetFetch(header protocol.RequestHeader, dec *protocol.Decoder) ([]byte, error) {
	req, err := protocol.DecodeOffsetFetchRequest(dec, header.APIVersion)
	if err != nil {
		return nil, fmt.Errorf("decode offset fetch request: %w", err)
	}

	topics := req.Topics
	if topics == nil {
		for _, name := range s.engine.ListTopics() {
			topics = append(topics, protocol.OffsetFetchRequestTopic{Name: name, Partitions: []int32{0}})
		}
	}

	resp := &protocol.OffsetFetchResponse{ErrorCode: protocol.ErrNone}
	for _, t := range topics {
		topicResp := protocol.OffsetFetchResponseTopic{Name: t.Name}

		for _, partIndex := range t.Partitions {
			var committedOffset int64 = -1
			if partIndex == 0 {
				if offset, err := s.engine.FetchOffset(req.GroupID, t.Name); err == nil && offset >= 0 {
					committedOffset = offset
				}
			}
			topicResp.Partitions = append(topicResp.Partitions, protocol.OffsetFetchResponsePartition{
				Index: partIndex, CommittedOffset: committedOffset, ErrorCode: protocol.ErrNone,
			})
		}

		resp.Topics = append(resp.Topics, topicResp)
	}

	enc := protocol.NewEncoder()
	enc.WriteResponseHeader(header.CorrelationID)
	protocol.EncodeOffsetFetchResponse(enc, header.APIVersion, resp)

	return s.wrapResponse(enc.Bytes()), nil
}

// ============================================================================
// Helpers
// ============================================================================

func (s *KafkaServer) errorResponse(correlationID int32, errorCode int16) []byte {
	enc := protocol.NewEncoder()
	enc.WriteResponseHeader(correlationID)
	enc.WriteInt16(errorCode)
	return s.wrapResponse(enc.Bytes())
}

func (s *KafkaServer) wrapResponse(body []byte) []byte {
	size := len(body)
	result := make([]byte, 4+size)
	binary.BigEndian.PutUint32(result[:4], uint32(size))
	copy(result[4:], body)
	return result
}

func parseAddr(addr, hostname string) (string, int32) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return hostname, 9092
	}
	host := hostname
	if host == "" {
		host = "localhost"
	}
	var port int32 = 9092
	fmt.Sscanf(portStr, "%d", &port)
	return host, port
}

func strPtr(s string) *string {
	return &s
}
