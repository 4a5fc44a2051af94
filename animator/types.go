package animator

import (
	"errors"

	"github.com/theoremus-urban-solutions/bus-route-animator/route"
)

// DefaultHeadingOffsetDegrees turns a model whose front faces backwards
// in its asset file to face the direction of travel.
const DefaultHeadingOffsetDegrees = 180.0

var (
	// ErrDegenerateRoute is returned for routes with fewer than two points or zero length
	ErrDegenerateRoute = errors.New("degenerate route")
	// ErrInvalidSpeed is returned for negative or non-finite speeds
	ErrInvalidSpeed = errors.New("invalid speed")
)

// Direction of travel along the route
type Direction int

const (
	Forward Direction = iota
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// Frame is the output of one animation step
type Frame struct {
	Position       route.Waypoint
	HeadingDegrees float64
}

// State is a point-in-time copy of an animator's kinematic state
type State struct {
	RouteID              string
	Progress             float64
	Direction            Direction
	SpeedKmh             float64
	SpeedFractionPerMs   float64
	HeadingOffsetDegrees float64
	Position             route.Waypoint
	// HeadingDegrees is the model heading, offset included
	HeadingDegrees float64
	// TravelHeadingDegrees is the direction of motion without the model offset
	TravelHeadingDegrees float64
	LengthMeters         float64
}

// Option configures a RouteAnimator
type Option func(*RouteAnimator)

// WithHeadingOffset sets the model facing correction; it depends on the 3D asset
func WithHeadingOffset(degrees float64) Option {
	return func(a *RouteAnimator) {
		a.defaultOffset = degrees
	}
}
