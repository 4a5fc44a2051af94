package fleet

import (
	"time"

	"github.com/theoremus-urban-solutions/bus-route-animator/animator"
)

// Snapshot is a point-in-time capture of every vehicle
type Snapshot struct {
	Timestamp time.Time      `json:"timestamp"`
	Vehicles  []VehicleState `json:"vehicles"`
}

// VehicleState is the published state of one vehicle
type VehicleState struct {
	ID                   string  `json:"id"`
	RouteID              string  `json:"routeId"`
	RouteName            string  `json:"routeName"`
	RouteColor           string  `json:"routeColor"`
	Longitude            float64 `json:"longitude"`
	Latitude             float64 `json:"latitude"`
	HeadingDegrees       float64 `json:"heading"`
	TravelHeadingDegrees float64 `json:"travelHeading"`
	HeadingOffsetDegrees float64 `json:"headingOffset"`
	Direction            string  `json:"direction"`
	Progress             float64 `json:"progress"`
	SpeedKmh             float64 `json:"speedKmh"`
	LengthMeters         float64 `json:"lengthMeters"`
	Waypoints            int     `json:"waypoints"`
}

// Reverse reports whether the vehicle is heading back to the route start
func (v VehicleState) Reverse() bool {
	return v.Direction == animator.Reverse.String()
}

// Snapshot captures every vehicle at the given time
func (f *Fleet) Snapshot(at time.Time) *Snapshot {
	s := &Snapshot{
		Timestamp: at,
		Vehicles:  make([]VehicleState, 0, len(f.vehicles)),
	}
	for _, v := range f.vehicles {
		st := v.Animator.State()
		r := v.Animator.Route()
		s.Vehicles = append(s.Vehicles, VehicleState{
			ID:                   v.ID,
			RouteID:              r.ID,
			RouteName:            r.Name,
			RouteColor:           r.Color,
			Longitude:            st.Position.Longitude,
			Latitude:             st.Position.Latitude,
			HeadingDegrees:       st.HeadingDegrees,
			TravelHeadingDegrees: st.TravelHeadingDegrees,
			HeadingOffsetDegrees: st.HeadingOffsetDegrees,
			Direction:            st.Direction.String(),
			Progress:             st.Progress,
			SpeedKmh:             st.SpeedKmh,
			LengthMeters:         st.LengthMeters,
			Waypoints:            r.Len(),
		})
	}
	return s
}

// Get returns the state of one vehicle
func (s *Snapshot) Get(id string) (VehicleState, bool) {
	if s == nil {
		return VehicleState{}, false
	}
	for _, v := range s.Vehicles {
		if v.ID == id {
			return v, true
		}
	}
	return VehicleState{}, false
}

// Len returns the number of vehicles captured
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Vehicles)
}
