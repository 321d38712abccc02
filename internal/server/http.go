package server

import (
	"net/http"

	json "github.com/json-iterator/go"

	"github.com/zeusync/webswing/internal/core/events/bus"
	"github.com/zeusync/webswing/internal/core/observability/log"
	"github.com/zeusync/webswing/internal/core/observability/metrics"
)

type healthResponse struct {
	Status string `json:"status"`
	Stats
	Bus       bus.EventBusMetrics `json:"bus"`
	BusTopics []bus.TopicInfo     `json:"bus_topics,omitempty"`
	Metrics   []metrics.Family    `json:"metrics,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := healthResponse{Status: "ok", Stats: s.GetStats(), Bus: s.bus.GetMetrics(), Metrics: s.metrics.Export()}
	// ?topics=1 lists every live bus topic, one per attached actor.
	if r.URL.Query().Get("topics") != "" {
		resp.BusTopics = s.bus.GetTopics()
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Debug("Failed to write health response", log.Error(err))
	}
}
