package model

import (
	"errors"
	"fmt"
	"sync"

	"cogentcore.org/core/math32"
	"github.com/google/uuid"

	"github.com/theoremus-urban-solutions/bus-route-animator/route"
)

var (
	// ErrNotReady is returned for pose updates before a model is attached
	ErrNotReady = errors.New("model not loaded")
	// ErrUnknownHandle is returned for handles that were never reserved or were disposed
	ErrUnknownHandle = errors.New("unknown model handle")
)

// Handle identifies one model instance in a layer
type Handle string

// Scale is the per-axis model scale in meters
type Scale struct {
	X float64
	Y float64
	Z float64
}

// LayerOptions configures a Layer
type LayerOptions struct {
	Scale        Scale
	HeightMeters float64
}

type instance struct {
	model    *Model
	position route.Waypoint
	heading  float64
	placed   bool
	matrix   math32.Matrix4
}

// Layer holds the transforms of every model instance. Safe for concurrent use.
type Layer struct {
	mu        sync.RWMutex
	opts      LayerOptions
	instances map[Handle]*instance
}

// NewLayer creates an empty layer. A zero scale axis defaults to 1.
func NewLayer(opts LayerOptions) *Layer {
	if opts.Scale.X == 0 {
		opts.Scale.X = 1
	}
	if opts.Scale.Y == 0 {
		opts.Scale.Y = 1
	}
	if opts.Scale.Z == 0 {
		opts.Scale.Z = 1
	}
	return &Layer{opts: opts, instances: map[Handle]*instance{}}
}

// Reserve allocates a handle for a model that is still loading
func (l *Layer) Reserve() Handle {
	h := Handle(uuid.NewString())
	l.mu.Lock()
	l.instances[h] = &instance{}
	l.mu.Unlock()
	return h
}

// Attach binds a loaded model to a handle. Pose updates are accepted from then on.
func (l *Layer) Attach(h Handle, m *Model) error {
	if m == nil {
		return fmt.Errorf("attach %s: nil model", h)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	inst, ok := l.instances[h]
	if !ok {
		return fmt.Errorf("attach %s: %w", h, ErrUnknownHandle)
	}
	inst.model = m
	return nil
}

// Ready reports whether a model is attached to h
func (l *Layer) Ready(h Handle) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	inst, ok := l.instances[h]
	return ok && inst.model != nil
}

// SetTransform places the model at position facing headingDegrees
func (l *Layer) SetTransform(h Handle, position route.Waypoint, headingDegrees float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	inst, ok := l.instances[h]
	if !ok {
		return fmt.Errorf("%s: %w", h, ErrUnknownHandle)
	}
	if inst.model == nil {
		return fmt.Errorf("%s: %w", h, ErrNotReady)
	}
	inst.position = position
	inst.heading = headingDegrees
	inst.matrix = l.compose(position, headingDegrees)
	inst.placed = true
	return nil
}

// Transform returns the model matrix last set for h
func (l *Layer) Transform(h Handle) (math32.Matrix4, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	inst, ok := l.instances[h]
	if !ok {
		return math32.Matrix4{}, fmt.Errorf("%s: %w", h, ErrUnknownHandle)
	}
	if !inst.placed {
		return math32.Matrix4{}, fmt.Errorf("%s: %w", h, ErrNotReady)
	}
	return inst.matrix, nil
}

// Pose returns the position and heading last set for h
func (l *Layer) Pose(h Handle) (route.Waypoint, float64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	inst, ok := l.instances[h]
	if !ok {
		return route.Waypoint{}, 0, fmt.Errorf("%s: %w", h, ErrUnknownHandle)
	}
	if !inst.placed {
		return route.Waypoint{}, 0, fmt.Errorf("%s: %w", h, ErrNotReady)
	}
	return inst.position, inst.heading, nil
}

// Dispose releases a handle
func (l *Layer) Dispose(h Handle) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.instances[h]; !ok {
		return fmt.Errorf("%s: %w", h, ErrUnknownHandle)
	}
	delete(l.instances, h)
	return nil
}

// Len returns the number of reserved handles
func (l *Layer) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.instances)
}

// Rotation stands the model upright (90° about X) then turns it by heading about Y
func Rotation(headingDegrees float64) math32.Quat {
	q := math32.NewQuatAxisAngle(math32.Vec3(1, 0, 0), math32.DegToRad(90))
	q.SetMul(math32.NewQuatAxisAngle(math32.Vec3(0, 1, 0), math32.DegToRad(float32(headingDegrees))))
	return q
}

func (l *Layer) compose(position route.Waypoint, headingDegrees float64) math32.Matrix4 {
	origin := MercatorFromLngLat(position.Longitude, position.Latitude, l.opts.HeightMeters)
	unit := MeterInMercatorUnits(position.Latitude)
	scale := math32.Vec3(
		float32(l.opts.Scale.X*unit),
		float32(l.opts.Scale.Y*unit),
		float32(l.opts.Scale.Z*unit),
	)
	var m math32.Matrix4
	m.SetTransform(origin.Vec3(), Rotation(headingDegrees), scale)
	return m
}
