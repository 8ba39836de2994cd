package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/unclek/unclek/internal/config"
)

// FetchScheduler processes pending fetch requests on a timer
type FetchScheduler struct {
	engine   *Engine
	ticker   *time.Ticker
	interval time.Duration
	stopChan chan struct{}
}

// NewFetchScheduler creates a new FetchScheduler
func NewFetchScheduler(engine *Engine, interval time.Duration) *FetchScheduler {
	return &FetchScheduler{
		engine:   engine,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *FetchScheduler) Start() {
	s.ticker = time.NewTicker(s.interval)
	go s.loop()
}

// Stop stops the scheduler
func (s *FetchScheduler) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopChan)
}

func (s *FetchScheduler) loop() {
	for {
		select {
		case <-s.ticker.C:
			s.process()
		case <-s.stopChan:
			return
		}
	}
}

func (s *FetchScheduler) process() {
	queue := s.engine.GetPendingQueue()
	topicStore := s.engine.GetTopicStore()

	completed := queue.Process(topicStore)
	if len(completed) > 0 {
		s.engine.log.Debug("processed pending fetch requests", zap.Int("count", len(completed)))
	}
}

// RetentionScheduler cleans up expired messages on a timer.
type RetentionScheduler struct {
	engine   *Engine
	ticker   *time.Ticker
	config   config.RetentionConfig
	stopChan chan struct{}
}

// NewRetentionScheduler creates a new RetentionScheduler
func NewRetentionScheduler(engine *Engine, cfg config.RetentionConfig) *RetentionScheduler {
	return &RetentionScheduler{
		engine:   engine,
		config:   cfg,
		stopChan: make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *RetentionScheduler) Start() {
	if !s.config.Enabled {
		return
	}
	s.ticker = time.NewTicker(s.config.CheckInterval)
	go s.loop()
}

// Stop stops the scheduler
func (s *RetentionScheduler) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	select {
	case <-s.stopChan:
		// already closed
	default:
		close(s.stopChan)
	}
}

func (s *RetentionScheduler) loop() {
	for {
		select {
		case <-s.ticker.C:
			s.cleanup()
		case <-s.stopChan:
			return
		}
	}
}

func (s *RetentionScheduler) cleanup() {
	topicStore := s.engine.GetTopicStore()

	for _, topic := range s.engine.ListTopics() {
		retentionMs := s.config.MaxAge.Milliseconds()
		if meta, err := topicStore.GetMeta(topic); err == nil && meta.RetentionMs > 0 {
			retentionMs = meta.RetentionMs
		}

		deleted, err := topicStore.DeleteExpired(topic, retentionMs)
		if err != nil {
			s.engine.log.Warn("retention cleanup failed", zap.String("topic", topic), zap.Error(err))
			continue
		}
		if deleted > 0 {
			if s.engine.metrics != nil {
				s.engine.metrics.RetentionDeleted.Add(float64(deleted))
			}
			s.engine.log.Info("deleted expired records", zap.String("topic", topic), zap.Int("count", deleted))
		}
	}
}

// MemberExpirationScheduler evicts consumer group members that have
// stopped heartbeating.
type MemberExpirationScheduler struct {
	engine   *Engine
	ticker   *time.Ticker
	timeout  time.Duration
	stopChan chan struct{}
}

// NewMemberExpirationScheduler creates a new MemberExpirationScheduler
func NewMemberExpirationScheduler(engine *Engine, timeout time.Duration) *MemberExpirationScheduler {
	return &MemberExpirationScheduler{
		engine:   engine,
		timeout:  timeout,
		stopChan: make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *MemberExpirationScheduler) Start() {
	// Check every 1/3 of the timeout
	interval := s.timeout / 3
	if interval < time.Second {
		interval = time.Second
	}
	s.ticker = time.NewTicker(interval)
	go s.loop()
}

// Stop stops the scheduler
func (s *MemberExpirationScheduler) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
}

func (s *MemberExpirationScheduler) loop() {
	for {
		select {
		case <-s.ticker.C:
			s.expire()
		case <-s.stopChan:
			return
		}
	}
}

func (s *MemberExpirationScheduler) expire() {
	if _, err := s.engine.ExpireMembers(s.timeout); err != nil {
		s.engine.log.Warn("member expiration pass failed", zap.Error(err))
	}
}
