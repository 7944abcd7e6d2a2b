package gateway

import (
	"encoding/json"
	"net/http"
	"time"
)

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Uptime  int64            `json:"uptime_seconds"`
	Mode    string           `json:"mode"`
	Bot     string           `json:"bot,omitempty"`
	Metrics *MetricsSnapshot `json:"metrics,omitempty"`
}

// handleStatus returns an http.HandlerFunc for GET /status.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		snap := g.opts.Snapshot()
		resp := StatusResponse{
			Uptime: int64(time.Since(g.startedAt) / time.Second),
			Mode:   snap.Mode,
			Bot:    snap.Bot,
		}
		if g.opts.Metrics != nil {
			m := g.opts.Metrics.Snapshot()
			resp.Metrics = &m
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
