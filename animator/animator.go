package animator

import (
	"fmt"
	"math"

	"github.com/theoremus-urban-solutions/bus-route-animator/route"
	"github.com/theoremus-urban-solutions/bus-route-animator/utils"
)

// RouteAnimator tracks one agent's progress along a route.
// It is not safe for concurrent use; one frame loop owns it.
type RouteAnimator struct {
	route             *route.Route
	totalLengthMeters float64

	progress      float64 // [0,1], vertex-index parametrization
	direction     Direction
	speed         float64 // route fraction per millisecond
	headingOffset float64 // [0,360)
	defaultOffset float64
}

// New creates an animator at the start of r, heading forward.
// Routes with fewer than two points or zero length return ErrDegenerateRoute.
func New(r *route.Route, initialSpeedFractionPerMs float64, opts ...Option) (*RouteAnimator, error) {
	if r == nil {
		return nil, fmt.Errorf("nil route: %w", ErrDegenerateRoute)
	}
	if r.Len() < 2 {
		return nil, fmt.Errorf("route %s has %d point(s): %w", r.ID, r.Len(), ErrDegenerateRoute)
	}
	length := r.LengthMeters()
	if !(length > 0) || math.IsInf(length, 0) {
		return nil, fmt.Errorf("route %s has zero length: %w", r.ID, ErrDegenerateRoute)
	}
	if !validSpeed(initialSpeedFractionPerMs) {
		return nil, fmt.Errorf("initial speed %v: %w", initialSpeedFractionPerMs, ErrInvalidSpeed)
	}
	a := &RouteAnimator{
		route:             r,
		totalLengthMeters: length,
		direction:         Forward,
		speed:             initialSpeedFractionPerMs,
		defaultOffset:     DefaultHeadingOffsetDegrees,
	}
	for _, opt := range opts {
		opt(a)
	}
	if !utils.IsFinite(a.defaultOffset) {
		a.defaultOffset = DefaultHeadingOffsetDegrees
	}
	a.defaultOffset = utils.NormalizeDegrees(a.defaultOffset)
	a.headingOffset = a.defaultOffset
	return a, nil
}

// Route returns the shared route
func (a *RouteAnimator) Route() *route.Route { return a.route }

// LengthMeters returns the route length computed at construction
func (a *RouteAnimator) LengthMeters() float64 { return a.totalLengthMeters }

// Progress returns the position along the route in [0,1]
func (a *RouteAnimator) Progress() float64 { return a.progress }

// Direction returns the current direction of travel
func (a *RouteAnimator) Direction() Direction { return a.direction }

// HeadingOffset returns the accumulated model rotation in [0,360)
func (a *RouteAnimator) HeadingOffset() float64 { return a.headingOffset }

// SpeedFractionPerMs returns the speed as route fraction per millisecond
func (a *RouteAnimator) SpeedFractionPerMs() float64 { return a.speed }

// SetSpeedFractionPerMs sets the raw speed. Negative or non-finite values
// return ErrInvalidSpeed and keep the previous speed.
func (a *RouteAnimator) SetSpeedFractionPerMs(v float64) error {
	if !validSpeed(v) {
		return fmt.Errorf("speed %v: %w", v, ErrInvalidSpeed)
	}
	a.speed = v
	return nil
}

// SetSpeedKmh converts km/h into route fraction per millisecond
func (a *RouteAnimator) SetSpeedKmh(kmh float64) error {
	if !validSpeed(kmh) {
		return fmt.Errorf("speed %v km/h: %w", kmh, ErrInvalidSpeed)
	}
	a.speed = utils.KmhToMetersPerMs(kmh) / a.totalLengthMeters
	return nil
}

// SpeedKmh converts the current speed back to km/h
func (a *RouteAnimator) SpeedKmh() float64 {
	return utils.MetersPerMsToKmh(a.speed * a.totalLengthMeters)
}

// Advance moves the agent by deltaMs milliseconds and returns its new pose.
// Non-positive, NaN or infinite deltas leave the state untouched.
func (a *RouteAnimator) Advance(deltaMs float64) Frame {
	if !(deltaMs > 0) || math.IsInf(deltaMs, 0) {
		return a.Pose()
	}
	delta := a.speed * deltaMs
	if !(delta > 0) || math.IsInf(delta, 0) {
		return a.Pose()
	}

	before := a.direction
	if a.direction == Forward {
		a.progress += delta
		if a.progress >= 1 {
			a.progress = 1
			a.direction = Reverse
		}
	} else {
		a.progress -= delta
		if a.progress <= 0 {
			a.progress = 0
			a.direction = Forward
		}
	}
	if a.direction != before {
		a.RotateBy(180)
	}
	return a.Pose()
}

// Pose returns the current position and model heading without moving
func (a *RouteAnimator) Pose() Frame {
	return Frame{
		Position:       a.PositionAt(a.progress),
		HeadingDegrees: utils.NormalizeDegrees(a.HeadingAt(a.progress) + a.headingOffset),
	}
}

// RotateBy adds degrees to the heading offset; progress and direction are unchanged
func (a *RouteAnimator) RotateBy(degrees float64) {
	if !utils.IsFinite(degrees) {
		return
	}
	a.headingOffset = utils.NormalizeDegrees(a.headingOffset + degrees)
}

// Reverse turns the agent around where it stands
func (a *RouteAnimator) Reverse() {
	if a.direction == Forward {
		a.direction = Reverse
	} else {
		a.direction = Forward
	}
	a.RotateBy(180)
}

// ResetHeadingOffset restores the configured model facing correction
func (a *RouteAnimator) ResetHeadingOffset() {
	a.headingOffset = a.defaultOffset
}

// State returns a copy of the kinematic state
func (a *RouteAnimator) State() State {
	travel := a.HeadingAt(a.progress)
	return State{
		RouteID:              a.route.ID,
		Progress:             a.progress,
		Direction:            a.direction,
		SpeedKmh:             a.SpeedKmh(),
		SpeedFractionPerMs:   a.speed,
		HeadingOffsetDegrees: a.headingOffset,
		Position:             a.PositionAt(a.progress),
		HeadingDegrees:       utils.NormalizeDegrees(travel + a.headingOffset),
		TravelHeadingDegrees: utils.NormalizeDegrees(travel),
		LengthMeters:         a.totalLengthMeters,
	}
}

func validSpeed(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}
