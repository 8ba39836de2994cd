package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/unclek/unclek/internal/config"
	"github.com/unclek/unclek/internal/engine"
	"github.com/unclek/unclek/internal/metrics"
)

// AdminServer exposes a read-only HTTP surface alongside the Kafka wire
// listener: topic and consumer-group introspection, a health check, and
// (when enabled) a Prometheus /metrics endpoint. It never accepts writes —
// every mutation a client makes goes through the Kafka protocol.
type AdminServer struct {
	config  *config.Config
	engine  *engine.Engine
	metrics *metrics.Metrics
	log     *zap.Logger
	server  *http.Server
}

// NewAdminServer creates a new AdminServer
func NewAdminServer(cfg *config.Config, eng *engine.Engine, m *metrics.Metrics, log *zap.Logger) *AdminServer {
	s := &AdminServer{
		config:  cfg,
		engine:  eng,
		metrics: m,
		log:     log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)

	if cfg.Admin.Enabled {
		mux.HandleFunc("/api/topics", s.handleTopics)
		mux.HandleFunc("/api/topics/", s.handleTopic)
		mux.HandleFunc("/api/groups", s.handleGroups)
		mux.HandleFunc("/api/groups/", s.handleGroup)
		mux.HandleFunc("/api/pending", s.handlePending)
		mux.HandleFunc("/api/stats", s.handleStats)
	}

	if cfg.Metrics.Enabled && m != nil {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		mux.Handle(path, promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	}

	s.server = &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: mux,
	}

	return s
}

// ListenAndServe starts the HTTP server
func (s *AdminServer) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Close closes the HTTP server
func (s *AdminServer) Close() error {
	return s.server.Close()
}

func (s *AdminServer) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("encoding admin response failed", zap.Error(err))
	}
}

func (s *AdminServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *AdminServer) handleTopics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	names := s.engine.ListTopics()
	result := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		meta, err := s.engine.GetTopicMeta(name)
		if err != nil {
			continue
		}
		latest, _ := s.engine.LatestOffset(name)
		result = append(result, map[string]interface{}{
			"name":          name,
			"compacted":     meta.Compacted,
			"latest_offset": latest,
			"created_at":    meta.CreatedAt,
			"age":           humanize.Time(meta.CreatedAt),
		})
	}
	s.writeJSON(w, result)
}

func (s *AdminServer) handleTopic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/api/topics/")
	if !s.engine.TopicExists(name) {
		http.Error(w, "Topic not found", http.StatusNotFound)
		return
	}

	meta, err := s.engine.GetTopicMeta(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	latest, _ := s.engine.LatestOffset(name)
	earliest, _ := s.engine.EarliestOffset(name)

	retention := "scheduler default"
	if meta.RetentionMs > 0 {
		retention = humanize.RelTime(time.Time{}, time.Time{}.Add(time.Duration(meta.RetentionMs)*time.Millisecond), "", "")
	}

	s.writeJSON(w, map[string]interface{}{
		"name":            name,
		"compacted":       meta.Compacted,
		"retention_ms":    meta.RetentionMs,
		"retention":       retention,
		"latest_offset":   latest,
		"earliest_offset": earliest,
		"created_at":      meta.CreatedAt,
		"age":             humanize.Time(meta.CreatedAt),
	})
}

func (s *AdminServer) handleGroups(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ids := s.engine.ListGroups()
	result := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		group, ok := s.engine.GetGroup(id)
		if !ok {
			continue
		}
		result = append(result, map[string]interface{}{
			"id":         id,
			"state":      group.State,
			"generation": group.Generation,
			"members":    len(group.Members),
		})
	}
	s.writeJSON(w, result)
}

func (s *AdminServer) handleGroup(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/groups/")
	parts := strings.Split(path, "/")
	groupID := parts[0]

	if len(parts) > 2 && parts[1] == "offsets" {
		s.handleGroupOffset(w, r, groupID, parts[2])
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	group, exists := s.engine.GetGroup(groupID)
	if !exists {
		http.Error(w, "Group not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, group)
}

func (s *AdminServer) handleGroupOffset(w http.ResponseWriter, r *http.Request, groupID, topic string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	offset, err := s.engine.FetchOffset(groupID, topic)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.writeJSON(w, map[string]int64{"offset": offset})
}

func (s *AdminServer) handlePending(w http.ResponseWriter, r *http.Request) {
	pending := s.engine.GetPendingQueue().GetAll()
	result := make([]map[string]interface{}, 0, len(pending))
	for _, p := range pending {
		result = append(result, map[string]interface{}{
			"topic":          p.Topic,
			"partition":      p.Partition,
			"offset":         p.Offset,
			"deadline":       p.Deadline,
			"correlation_id": p.CorrelationID,
		})
	}
	s.writeJSON(w, result)
}

func (s *AdminServer) handleStats(w http.ResponseWriter, r *http.Request) {
	topics := len(s.engine.ListTopics())
	groups := len(s.engine.ListGroups())
	pending := s.engine.GetPendingQueue().Len()

	s.writeJSON(w, map[string]interface{}{
		"topics":         topics,
		"groups":         groups,
		"pending":        pending,
		"topics_human":   humanize.Comma(int64(topics)),
		"pending_human":  humanize.Comma(int64(pending)),
	})
}
