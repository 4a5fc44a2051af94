package route

import (
	"github.com/theoremus-urban-solutions/bus-route-animator/utils"
)

// LengthMeters sums the haversine distances between consecutive waypoints
func (r *Route) LengthMeters() float64 {
	total := 0.0
	for i := 0; i < len(r.points)-1; i++ {
		total += SegmentMeters(r.points[i], r.points[i+1])
	}
	return total
}

// CumulativeMeters returns the distance along the route at each waypoint
func (r *Route) CumulativeMeters() []float64 {
	if len(r.points) == 0 {
		return nil
	}
	cum := make([]float64, len(r.points))
	for i := 1; i < len(r.points); i++ {
		cum[i] = cum[i-1] + SegmentMeters(r.points[i-1], r.points[i])
	}
	return cum
}

// SegmentMeters returns the great-circle distance between two waypoints
func SegmentMeters(a, b Waypoint) float64 {
	return utils.HaversineMeters(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}
