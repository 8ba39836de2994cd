package engine

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/unclek/unclek/internal/config"
	"github.com/unclek/unclek/internal/metrics"
	"github.com/unclek/unclek/internal/store"
)

// Engine is the core business logic layer
type Engine struct {
	config         *config.Config
	log            *zap.Logger
	metrics        *metrics.Metrics
	topicStore     store.TopicStoreInterface
	groupStore     store.GroupStoreInterface
	pending        *PendingQueue
	fetchSched     *FetchScheduler
	retentionSched *RetentionScheduler
	memberSched    *MemberExpirationScheduler
	stopChan       chan struct{}
	wg             sync.WaitGroup
}

// New creates a new Engine
func New(cfg *config.Config, log *zap.Logger, m *metrics.Metrics, topicStore store.TopicStoreInterface, groupStore store.GroupStoreInterface) *Engine {
	e := &Engine{
		config:     cfg,
		log:        log,
		metrics:    m,
		topicStore: topicStore,
		groupStore: groupStore,
		pending:    NewPendingQueue(),
		stopChan:   make(chan struct{}),
	}
	e.fetchSched = NewFetchScheduler(e, cfg.Scheduler.TickInterval)
	e.retentionSched = NewRetentionScheduler(e, cfg.Retention)
	e.memberSched = NewMemberExpirationScheduler(e, cfg.Groups.SessionTimeout)
	return e
}

// Start starts the engine's background tasks
func (e *Engine) Start() {
	e.fetchSched.Start()
	if e.config.Retention.Enabled {
		e.retentionSched.Start()
	}
	e.memberSched.Start()
}

// Stop stops the engine
func (e *Engine) Stop() {
	close(e.stopChan)
	e.fetchSched.Stop()
	e.retentionSched.Stop()
	e.memberSched.Stop()
	e.wg.Wait()
}

// --- Topic Operations ---

// EnsureTopic creates a topic if it doesn't exist yet, declaring whether
// it is compacted (upsert-on-key) and its retention. Calling it for
// an already-declared topic is a no-op — this is also what keeps
// Metadata requests for an unknown topic name always succeeding instead
// of erroring: naming a topic is how a producer or consumer declares it.
func (e *Engine) EnsureTopic(name string, compacted bool, retentionMs int64) error {
	return e.topicStore.EnsureTopic(name, compacted, retentionMs)
}

// ListTopics returns all topic names
func (e *Engine) ListTopics() []string {
	return e.topicStore.ListTopics()
}

// DeleteTopic deletes a topic
func (e *Engine) DeleteTopic(name string) error {
	return e.topicStore.DeleteTopic(name)
}

// GetTopicMeta returns topic metadata
func (e *Engine) GetTopicMeta(name string) (*store.TopicMeta, error) {
	return e.topicStore.GetMeta(name)
}

// TopicExists checks if a topic exists
func (e *Engine) TopicExists(name string) bool {
	return e.topicStore.TopicExists(name)
}

// --- Message Operations ---

// Produce appends a batch of decoded messages to a topic, assigning each
// one the next offset (or, on a compacted topic, the offset of the
// existing record sharing its key). It returns the offset the first
// message in the batch landed at.
func (e *Engine) Produce(topic string, partition int32, messages []store.Record) (int64, error) {
	if !e.topicStore.TopicExists(topic) {
		if !e.config.Topics.AutoCreate {
			return 0, fmt.Errorf("topic not found: %s", topic)
		}
		if err := e.topicStore.EnsureTopic(topic, false, 0); err != nil {
			return 0, err
		}
	}

	baseOffset := int64(-1)
	for _, msg := range messages {
		offset, err := e.topicStore.Append(topic, partition, msg.Key, msg.Value)
		if err != nil {
			return 0, err
		}
		if baseOffset < 0 {
			baseOffset = offset
		}
		if e.metrics != nil {
			e.metrics.MessagesProduced.Inc()
		}
	}
	if baseOffset < 0 {
		return e.topicStore.NextOffset(topic)
	}
	return baseOffset, nil
}

// Fetch reads up to maxRecords records from a topic starting at offset.
func (e *Engine) Fetch(topic string, offset int64, maxRecords int) ([]store.Record, error) {
	if !e.topicStore.TopicExists(topic) {
		return nil, fmt.Errorf("topic not found: %s", topic)
	}
	records, err := e.topicStore.Scan(topic, offset, maxRecords)
	if err == nil && e.metrics != nil {
		e.metrics.MessagesFetched.Add(float64(len(records)))
	}
	return records, err
}

// LatestOffset returns the offset the next produced message would land
// at for a topic.
func (e *Engine) LatestOffset(topic string) (int64, error) {
	return e.topicStore.NextOffset(topic)
}

// EarliestOffset returns the earliest retained offset for a topic
func (e *Engine) EarliestOffset(topic string) (int64, error) {
	return e.topicStore.EarliestOffset(topic)
}

// --- Pending Fetch Operations ---

// ParkFetch parks a fetch request for later processing
func (e *Engine) ParkFetch(req *PendingFetch) {
	e.pending.Add(req)
}

// GetPendingQueue returns the pending queue
func (e *Engine) GetPendingQueue() *PendingQueue {
	return e.pending
}

// GetTopicStore returns the topic store
func (e *Engine) GetTopicStore() store.TopicStoreInterface {
	return e.topicStore
}

// --- Consumer Group Operations ---

// GetOrCreateGroup gets or creates a consumer group
func (e *Engine) GetOrCreateGroup(groupID string) (*store.Group, error) {
	return e.groupStore.GetOrCreateGroup(groupID)
}

// GetGroup gets a consumer group
func (e *Engine) GetGroup(groupID string) (*store.Group, bool) {
	return e.groupStore.GetGroup(groupID)
}

// ListGroups returns all group IDs
func (e *Engine) ListGroups() []string {
	return e.groupStore.ListGroups()
}

// JoinGroup handles a consumer joining a group
func (e *Engine) JoinGroup(groupID, memberID, clientID string, metadata []byte) (*store.Group, error) {
	if _, err := e.groupStore.GetOrCreateGroup(groupID); err != nil {
		return nil, err
	}

	if err := e.groupStore.AddMember(groupID, memberID, clientID, metadata); err != nil {
		return nil, err
	}

	group, _ := e.groupStore.GetGroup(groupID)
	return group, nil
}

// SyncGroup handles group sync
func (e *Engine) SyncGroup(groupID, memberID string, assignment []byte) error {
	return e.groupStore.SetMemberAssignment(groupID, memberID, assignment)
}

// Heartbeat updates member heartbeat
func (e *Engine) Heartbeat(groupID, memberID string) error {
	return e.groupStore.UpdateHeartbeat(groupID, memberID)
}

// LeaveGroup handles a consumer leaving a group
func (e *Engine) LeaveGroup(groupID, memberID string) error {
	return e.groupStore.RemoveMember(groupID, memberID)
}

// CommitOffset commits an offset
func (e *Engine) CommitOffset(groupID, topic string, offset int64) error {
	return e.groupStore.CommitOffset(groupID, topic, offset)
}

// FetchOffset fetches the committed offset
func (e *Engine) FetchOffset(groupID, topic string) (int64, error) {
	return e.groupStore.FetchOffset(groupID, topic)
}

// IncrementGeneration increments group generation
func (e *Engine) IncrementGeneration(groupID string) (int32, error) {
	return e.groupStore.IncrementGeneration(groupID)
}

// DeleteGroup deletes a consumer group
func (e *Engine) DeleteGroup(groupID string) error {
	return e.groupStore.DeleteGroup(groupID)
}

// ExpireMembers removes group members that haven't heartbeated within
// timeout, used by MemberExpirationScheduler.
func (e *Engine) ExpireMembers(timeout time.Duration) ([]string, error) {
	expired, err := e.groupStore.ExpireMembers(timeout)
	if err != nil {
		e.log.Warn("expire members failed", zap.Error(err))
		return nil, err
	}
	if len(expired) > 0 {
		e.log.Info("expired stale group members", zap.Strings("members", expired))
	}
	return expired, nil
}

// GetConfig returns the config
func (e *Engine) GetConfig() *config.Config {
	return e.config
}

// Logger returns the engine's structured logger.
func (e *Engine) Logger() *zap.Logger {
	return e.log
}

// Metrics returns the engine's metrics recorder.
func (e *Engine) Metrics() *metrics.Metrics {
	return e.metrics
}
