package busanim

import (
	"encoding/json"
	"net/http"
	"time"
)

type healthResponse struct {
	Status        string  `json:"status"`
	Vehicles      int     `json:"vehicles"`
	ModelsReady   int     `json:"models_ready"`
	SpeedKmh      float64 `json:"speed_kmh"`
	LastFrame     string  `json:"last_frame"`
	UptimeSeconds int64   `json:"uptime_seconds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	snap := s.sim.Snapshot()
	ready := 0
	for _, v := range snap.Vehicles {
		if h, ok := s.sim.Handle(v.ID); ok && s.sim.Layer().Ready(h) {
			ready++
		}
	}
	resp := healthResponse{
		Status:        "ok",
		Vehicles:      snap.Len(),
		ModelsReady:   ready,
		SpeedKmh:      s.sim.SpeedKmh(),
		LastFrame:     snap.Timestamp.UTC().Format(time.RFC3339Nano),
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}
