package busanim

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/theoremus-urban-solutions/bus-route-animator/fleet"
	"github.com/theoremus-urban-solutions/bus-route-animator/formatter"
	"github.com/theoremus-urban-solutions/bus-route-animator/siri"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, errors.New("method "+r.Method+" not allowed"))
	return false
}

func (s *Server) handleVehicles(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	snap := s.sim.Snapshot()
	if id := r.URL.Query().Get("id"); id != "" {
		v, ok := snap.Get(id)
		if !ok {
			writeError(w, http.StatusNotFound, errors.New("no such vehicle: "+id))
			return
		}
		writeJSON(w, http.StatusOK, v)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type modelEntry struct {
	VehicleID string       `json:"vehicleId"`
	Handle    string       `json:"handle"`
	Ready     bool         `json:"ready"`
	Matrix    *[16]float32 `json:"matrix,omitempty"`
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	layer := s.sim.Layer()
	snap := s.sim.Snapshot()
	out := make([]modelEntry, 0, snap.Len())
	for _, v := range snap.Vehicles {
		h, ok := s.sim.Handle(v.ID)
		if !ok {
			continue
		}
		e := modelEntry{VehicleID: v.ID, Handle: string(h), Ready: layer.Ready(h)}
		if m, err := layer.Transform(h); err == nil {
			arr := [16]float32(m)
			e.Matrix = &arr
		}
		out = append(out, e)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) vehicleMonitoring(w http.ResponseWriter, r *http.Request, format string) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	filters, err := parseVehicleMonitoring(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	snap := s.sim.Snapshot()
	buf, _ := s.cache.get(snap, memoKey("vm", format, filters.key()), func() ([]byte, error) {
		return s.buildVehicleMonitoring(snap, filters, format), nil
	})
	if format == "xml" {
		w.Header().Set("Content-Type", "application/xml")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	_, _ = w.Write(buf)
}

func (s *Server) buildVehicleMonitoring(snap *fleet.Snapshot, f vmFilters, format string) []byte {
	opts := s.vmOptions()
	vm := formatter.BuildVehicleMonitoring(snap, opts)
	vm = formatter.FilterVehicleMonitoring(vm, f.LineRef, f.VehicleRef, f.DirectionRef)
	res := formatter.WrapVehicleMonitoringResponse(vm, snap.Timestamp, opts.Codespace)
	return encodeSiri(res, format)
}

func encodeSiri(res *siri.SiriResponse, format string) []byte {
	rb := formatter.NewResponseBuilder()
	if format == "xml" {
		return rb.BuildXML(res)
	}
	return rb.BuildJSON(res)
}

func (s *Server) handleVehicleMonitoringJSON(w http.ResponseWriter, r *http.Request) {
	s.vehicleMonitoring(w, r, "json")
}

func (s *Server) handleVehicleMonitoringXML(w http.ResponseWriter, r *http.Request) {
	s.vehicleMonitoring(w, r, "xml")
}

func (s *Server) handleEstimatedTimetable(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	lineRef := strings.ToLower(lowerParams(r.URL.Query())["lineref"])
	snap := s.sim.Snapshot()
	buf, _ := s.cache.get(snap, memoKey("et", lineRef), func() ([]byte, error) {
		opts := s.vmOptions()
		et := formatter.BuildEstimatedTimetable(snap, opts)
		if lineRef != "" {
			for i, frame := range et.EstimatedJourneyVersionFrame {
				kept := frame.EstimatedVehicleJourney[:0]
				for _, j := range frame.EstimatedVehicleJourney {
					if strings.Contains(strings.ToLower(j.LineRef), lineRef) {
						kept = append(kept, j)
					}
				}
				et.EstimatedJourneyVersionFrame[i].EstimatedVehicleJourney = kept
			}
		}
		res := formatter.WrapEstimatedTimetableResponse(et, snap.Timestamp, opts.Codespace)
		return formatter.NewResponseBuilder().BuildJSON(res), nil
	})
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buf)
}

func (s *Server) handleVehiclePositions(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	snap := s.sim.Snapshot()
	buf, err := s.cache.get(snap, "gtfsrt", func() ([]byte, error) {
		return formatter.MarshalVehiclePositions(snap)
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/x-protobuf")
	_, _ = w.Write(buf)
}

func (s *Server) handleRoutesGeoJSON(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	buf, err := formatter.RoutesGeoJSON(s.sim.Routes()).MarshalJSON()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write(buf)
}

func (s *Server) handleVehiclesGeoJSON(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	snap := s.sim.Snapshot()
	buf, err := s.cache.get(snap, "geojson", func() ([]byte, error) {
		return formatter.VehiclesGeoJSON(snap).MarshalJSON()
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write(buf)
}

type speedResponse struct {
	SpeedKmh float64 `json:"speedKmh"`
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, speedResponse{SpeedKmh: s.sim.SpeedKmh()})
		return
	}
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	q := r.URL.Query()
	kmh, hasKmh, err := parseFloatParam(q, "kmh")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	slider, hasSlider, err := parseFloatParam(q, "slider")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	switch {
	case hasKmh && hasSlider:
		writeError(w, http.StatusBadRequest, &QueryError{Msg: "Use either kmh or slider, not both."})
		return
	case hasKmh:
		err = s.sim.SetSpeedKmh(kmh)
	case hasSlider:
		kmh, err = s.sim.SetSlider(slider)
	default:
		writeError(w, http.StatusBadRequest, &QueryError{Msg: "You must provide kmh or slider."})
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, speedResponse{SpeedKmh: kmh})
}

func (s *Server) handleRotate(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	deg, ok, err := parseFloatParam(r.URL.Query(), "degrees")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !ok {
		deg = 180
	}
	s.sim.RotateAll(deg)
	writeJSON(w, http.StatusOK, s.sim.Snapshot())
}

func (s *Server) handleReverse(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	s.sim.ReverseAll()
	writeJSON(w, http.StatusOK, s.sim.Snapshot())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	s.sim.ResetHeadingOffsets()
	writeJSON(w, http.StatusOK, s.sim.Snapshot())
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.sim.LogState())
}
