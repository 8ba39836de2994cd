package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// TopicStore handles topic and message storage over Badger.
type TopicStore struct {
	db     *DB
	mu     sync.RWMutex
	topics map[string]*TopicMeta
}

// NewTopicStore creates a new TopicStore
func NewTopicStore(db *DB) *TopicStore {
	ts := &TopicStore{
		db:     db,
		topics: make(map[string]*TopicMeta),
	}
	ts.loadTopics()
	return ts
}

// loadTopics loads existing topic metadata from the database
func (s *TopicStore) loadTopics() {
	s.db.Badger().View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("topics:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key())

			// Look for meta keys
			if len(key) > 7 && key[len(key)-5:] == ":meta" {
				topicName := key[7 : len(key)-5]
				item.Value(func(val []byte) error {
					var meta TopicMeta
					if err := json.Unmarshal(val, &meta); err == nil {
						s.topics[topicName] = &meta
					}
					return nil
				})
			}
		}
		return nil
	})
}

// EnsureTopic creates the topic if absent; calling it for an existing
// topic is a no-op.
func (s *TopicStore) EnsureTopic(name string, compacted bool, retentionMs int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.topics[name]; exists {
		return nil
	}

	meta := &TopicMeta{
		Name:         name,
		Compacted:    compacted,
		RetentionMs:  retentionMs,
		CreatedAt:    time.Now(),
		LatestOffset: -1,
	}

	metaKey := fmt.Sprintf("topics:%s:meta", name)
	metaVal, _ := json.Marshal(meta)

	err := s.db.Badger().Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(metaKey), metaVal)
	})
	if err != nil {
		return err
	}

	s.topics[name] = meta
	return nil
}

// TopicExists checks if a topic exists
func (s *TopicStore) TopicExists(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.topics[name]
	return exists
}

// ListTopics returns all topic names
func (s *TopicStore) ListTopics() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.topics))
	for name := range s.topics {
		names = append(names, name)
	}
	return names
}

// DeleteTopic deletes a topic and all its messages
func (s *TopicStore) DeleteTopic(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.topics[name]; !exists {
		return fmt.Errorf("topic not found: %s", name)
	}

	prefix := []byte(fmt.Sprintf("topics:%s:", name))

	err := s.db.Badger().Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().KeyCopy(nil)
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	delete(s.topics, name)
	return nil
}

// Append stores one message at the next offset, ordered by a zero-padded
// offset suffix so a prefix scan of topics:<topic>:msg: yields records in
// offset order. On a compacted topic with a non-nil key, a secondary
// key->offset index (topics:<topic>:keyidx:<key>) is consulted first: a
// hit means an existing record is updated in place rather than appended.
func (s *TopicStore) Append(topic string, partition int32, key, value []byte) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, exists := s.topics[topic]
	if !exists {
		return 0, fmt.Errorf("topic not found: %s", topic)
	}

	now := time.Now().UnixMilli()
	keyIdx := keyIndexKey(topic, key)

	var resultOffset int64

	err := s.db.Badger().Update(func(txn *badger.Txn) error {
		if meta.Compacted && key != nil {
			item, err := txn.Get(keyIdx)
			if err == nil {
				var existingOffset int64
				err := item.Value(func(val []byte) error {
					existingOffset = bytesToInt64(val)
					return nil
				})
				if err != nil {
					return err
				}
				rec := Record{Offset: existingOffset, Partition: partition, Timestamp: now, Key: key, Value: value}
				recVal, err := json.Marshal(rec)
				if err != nil {
					return err
				}
				if err := txn.Set(s.messageKey(topic, existingOffset), recVal); err != nil {
					return err
				}
				resultOffset = existingOffset
				return nil
			} else if err != badger.ErrKeyNotFound {
				return err
			}
		}

		offset := meta.LatestOffset + 1
		rec := Record{Offset: offset, Partition: partition, Timestamp: now, Key: key, Value: value}
		recVal, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if err := txn.Set(s.messageKey(topic, offset), recVal); err != nil {
			return err
		}
		if meta.Compacted && key != nil {
			if err := txn.Set(keyIdx, int64ToBytes(offset)); err != nil {
				return err
			}
		}

		meta.LatestOffset = offset
		metaKey := fmt.Sprintf("topics:%s:meta", topic)
		metaVal, _ := json.Marshal(meta)
		resultOffset = offset
		return txn.Set([]byte(metaKey), metaVal)
	})

	if err != nil {
		return 0, err
	}

	return resultOffset, nil
}

// Scan reads up to limit records from a topic starting at fromOffset.
func (s *TopicStore) Scan(topic string, fromOffset int64, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.topics[topic]; !exists {
		return nil, fmt.Errorf("topic not found: %s", topic)
	}

	var records []Record

	err := s.db.Badger().View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(fmt.Sprintf("topics:%s:msg:", topic))
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := s.messageKey(topic, fromOffset)
		count := 0
		for it.Seek(seek); it.ValidForPrefix(opts.Prefix) && count < limit; it.Next() {
			item := it.Item()
			var rec Record
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				continue
			}
			records = append(records, rec)
			count++
		}
		return nil
	})

	return records, err
}

// NextOffset returns the offset the next Append would land at.
func (s *TopicStore) NextOffset(topic string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meta, exists := s.topics[topic]
	if !exists {
		return 0, fmt.Errorf("topic not found: %s", topic)
	}
	return meta.LatestOffset + 1, nil
}

// EarliestOffset returns the earliest offset for a topic
func (s *TopicStore) EarliestOffset(topic string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.topics[topic]; !exists {
		return 0, fmt.Errorf("topic not found: %s", topic)
	}

	var earliest int64 = -1

	s.db.Badger().View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(fmt.Sprintf("topics:%s:msg:", topic))
		it := txn.NewIterator(opts)
		defer it.Close()

		it.Rewind()
		if it.Valid() {
			item := it.Item()
			var rec Record
			item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			earliest = rec.Offset
		}
		return nil
	})

	if earliest < 0 {
		return 0, nil
	}
	return earliest, nil
}

// DeleteExpired deletes all records older than retentionMs.
func (s *TopicStore) DeleteExpired(topic string, retentionMs int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.topics[topic]; !exists {
		return 0, fmt.Errorf("topic not found: %s", topic)
	}

	cutoffMs := time.Now().UnixMilli() - retentionMs
	deleted := 0

	err := s.db.Badger().Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(fmt.Sprintf("topics:%s:msg:", topic))
		it := txn.NewIterator(opts)
		defer it.Close()

		var keysToDelete [][]byte

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var rec Record
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				continue
			}
			if rec.Timestamp < cutoffMs {
				keysToDelete = append(keysToDelete, item.KeyCopy(nil))
			}
		}

		for _, key := range keysToDelete {
			if err := txn.Delete(key); err != nil {
				return err
			}
			deleted++
		}

		return nil
	})

	return deleted, err
}

// GetMeta returns topic metadata
func (s *TopicStore) GetMeta(topic string) (*TopicMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meta, exists := s.topics[topic]
	if !exists {
		return nil, fmt.Errorf("topic not found: %s", topic)
	}
	return meta, nil
}

// messageKey creates a key for a message: topics:<topic>:msg:<offset_20digits>
func (s *TopicStore) messageKey(topic string, offset int64) []byte {
	return []byte(fmt.Sprintf("topics:%s:msg:%020d", topic, offset))
}

// keyIndexKey maps a compacted topic's record key to its offset.
func keyIndexKey(topic string, key []byte) []byte {
	return append([]byte(fmt.Sprintf("topics:%s:keyidx:", topic)), key...)
}

func int64ToBytes(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func bytesToInt64(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}
