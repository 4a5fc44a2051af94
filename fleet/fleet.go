package fleet

import (
	"errors"
	"fmt"
	"math"

	"github.com/theoremus-urban-solutions/bus-route-animator/animator"
	"github.com/theoremus-urban-solutions/bus-route-animator/route"
)

// ErrDuplicateVehicle is returned when a vehicle id is already in the fleet
var ErrDuplicateVehicle = errors.New("duplicate vehicle")

// Vehicle is one animated bus bound to its route
type Vehicle struct {
	ID       string
	Animator *animator.RouteAnimator
}

// Update is the result of advancing one vehicle
type Update struct {
	VehicleID string
	Frame     animator.Frame
	// Turned is set when the vehicle reached an end of its route this step
	Turned bool
}

// Fleet is an ordered set of vehicles. Not safe for concurrent use.
type Fleet struct {
	vehicles []*Vehicle
	index    map[string]int
}

// New returns an empty fleet
func New() *Fleet {
	return &Fleet{index: map[string]int{}}
}

// VehicleID derives the vehicle id for a route
func VehicleID(routeID string) string {
	return "bus-" + routeID
}

// Build creates one vehicle per route at speedKmh. Routes that cannot be
// animated are skipped and reported in the returned errors.
func Build(routes []*route.Route, speedKmh float64, opts ...animator.Option) (*Fleet, []error) {
	f := New()
	var errs []error
	for _, r := range routes {
		a, err := animator.New(r, 0, opts...)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := a.SetSpeedKmh(speedKmh); err != nil {
			errs = append(errs, fmt.Errorf("route %s: %w", r.ID, err))
			continue
		}
		if err := f.Add(&Vehicle{ID: VehicleID(r.ID), Animator: a}); err != nil {
			errs = append(errs, err)
		}
	}
	return f, errs
}

// Add appends a vehicle
func (f *Fleet) Add(v *Vehicle) error {
	if v == nil || v.Animator == nil {
		return errors.New("vehicle without animator")
	}
	if _, ok := f.index[v.ID]; ok {
		return fmt.Errorf("%s: %w", v.ID, ErrDuplicateVehicle)
	}
	f.index[v.ID] = len(f.vehicles)
	f.vehicles = append(f.vehicles, v)
	return nil
}

// Remove drops a vehicle, keeping the order of the others
func (f *Fleet) Remove(id string) bool {
	i, ok := f.index[id]
	if !ok {
		return false
	}
	f.vehicles = append(f.vehicles[:i], f.vehicles[i+1:]...)
	delete(f.index, id)
	for j := i; j < len(f.vehicles); j++ {
		f.index[f.vehicles[j].ID] = j
	}
	return true
}

// Get looks up a vehicle by id
func (f *Fleet) Get(id string) (*Vehicle, bool) {
	i, ok := f.index[id]
	if !ok {
		return nil, false
	}
	return f.vehicles[i], true
}

// Len returns the number of vehicles
func (f *Fleet) Len() int { return len(f.vehicles) }

// Vehicles returns the vehicles in insertion order
func (f *Fleet) Vehicles() []*Vehicle {
	out := make([]*Vehicle, len(f.vehicles))
	copy(out, f.vehicles)
	return out
}

// Advance steps every vehicle by deltaMs. Vehicles are independent so the
// iteration order does not affect the result.
func (f *Fleet) Advance(deltaMs float64) []Update {
	updates := make([]Update, 0, len(f.vehicles))
	for _, v := range f.vehicles {
		before := v.Animator.Direction()
		frame := v.Animator.Advance(deltaMs)
		updates = append(updates, Update{
			VehicleID: v.ID,
			Frame:     frame,
			Turned:    v.Animator.Direction() != before,
		})
	}
	return updates
}

// SetSpeedKmh applies one speed to every vehicle. Invalid speeds leave all
// vehicles unchanged.
func (f *Fleet) SetSpeedKmh(kmh float64) error {
	if kmh < 0 || math.IsNaN(kmh) || math.IsInf(kmh, 0) {
		return fmt.Errorf("speed %v km/h: %w", kmh, animator.ErrInvalidSpeed)
	}
	for _, v := range f.vehicles {
		if err := v.Animator.SetSpeedKmh(kmh); err != nil {
			return fmt.Errorf("%s: %w", v.ID, err)
		}
	}
	return nil
}

// RotateAll adds degrees to every vehicle's heading offset
func (f *Fleet) RotateAll(degrees float64) {
	for _, v := range f.vehicles {
		v.Animator.RotateBy(degrees)
	}
}

// ReverseAll turns every vehicle around
func (f *Fleet) ReverseAll() {
	for _, v := range f.vehicles {
		v.Animator.Reverse()
	}
}

// ResetHeadingOffsets restores every vehicle's default offset
func (f *Fleet) ResetHeadingOffsets() {
	for _, v := range f.vehicles {
		v.Animator.ResetHeadingOffset()
	}
}
