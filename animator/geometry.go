package animator

import (
	"math"

	"github.com/theoremus-urban-solutions/bus-route-animator/route"
	"github.com/theoremus-urban-solutions/bus-route-animator/utils"
)

// segmentAt maps a fraction onto the pair of vertices around it.
// i == j when the fraction lands exactly on a vertex.
func (a *RouteAnimator) segmentAt(fraction float64) (i, j int, local float64) {
	n := a.route.Len()
	exact := clampFraction(fraction) * float64(n-1)
	i = int(math.Floor(exact))
	j = int(math.Ceil(exact))
	if j > n-1 {
		j = n - 1
	}
	if i > j {
		i = j
	}
	return i, j, exact - float64(i)
}

// PositionAt interpolates linearly between the vertices around fraction
func (a *RouteAnimator) PositionAt(fraction float64) route.Waypoint {
	i, j, local := a.segmentAt(fraction)
	p1 := a.route.At(i)
	if i == j {
		return p1
	}
	p2 := a.route.At(j)
	return route.Waypoint{
		Longitude: p1.Longitude + (p2.Longitude-p1.Longitude)*local,
		Latitude:  p1.Latitude + (p2.Latitude-p1.Latitude)*local,
	}
}

// HeadingAt returns the planar bearing of the route tangent at fraction, in
// degrees clockwise from north, turned 180° while traveling in Reverse.
func (a *RouteAnimator) HeadingAt(fraction float64) float64 {
	n := a.route.Len()
	i, j, _ := a.segmentAt(fraction)
	if i == j {
		switch {
		case i == 0:
			j = 1
		case i == n-1:
			i = n - 2
		case a.direction == Forward:
			// interior vertex: face the segment about to be traveled
			j = i + 1
		default:
			i = j - 1
		}
	}
	p1, p2 := a.route.At(i), a.route.At(j)
	heading := utils.PlanarBearingDegrees(p1.Longitude, p1.Latitude, p2.Longitude, p2.Latitude)
	if a.direction == Reverse {
		heading += 180
	}
	return heading
}

func clampFraction(f float64) float64 {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
