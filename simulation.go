package busanim

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/theoremus-urban-solutions/bus-route-animator/animator"
	"github.com/theoremus-urban-solutions/bus-route-animator/config"
	"github.com/theoremus-urban-solutions/bus-route-animator/fleet"
	"github.com/theoremus-urban-solutions/bus-route-animator/model"
	"github.com/theoremus-urban-solutions/bus-route-animator/route"
)

// Slider positions accepted by SetSlider
const (
	SliderMin = 0.0
	SliderMax = 10.0
)

// ErrNoVehicles is returned when none of the routes can be animated
var ErrNoVehicles = errors.New("no animatable routes")

// Options configures a Simulation
type Options struct {
	InitialSpeedKmh      float64
	HeadingOffsetDegrees float64
	FrameInterval        time.Duration
	Slider               config.SpeedSliderConfig
	Assets               model.Assets
	Layer                model.LayerOptions
	// Loader fetches model assets; nil uses model.NewLoader(nil)
	Loader *model.Loader
	// Now stamps snapshots; nil uses time.Now
	Now func() time.Time
}

// OptionsFromConfig maps the application configuration onto simulation options
func OptionsFromConfig(cfg *config.AppConfig) Options {
	return Options{
		InitialSpeedKmh:      cfg.Simulation.InitialSpeed(),
		HeadingOffsetDegrees: cfg.Simulation.HeadingOffset(),
		FrameInterval:        cfg.Simulation.FrameInterval(),
		Slider:               cfg.Simulation.SpeedSlider,
		Assets:               model.Assets{OBJ: cfg.Model.OBJPath, MTL: cfg.Model.MTLPath},
		Layer: model.LayerOptions{
			Scale:        model.Scale{X: cfg.Model.Scale.X, Y: cfg.Model.Scale.Y, Z: cfg.Model.Scale.Z},
			HeightMeters: cfg.Model.HeightMeters,
		},
	}
}

// Simulation drives one animated bus per route and keeps their models placed.
// Frame, the speed and debug commands are serialized; Snapshot is lock free.
type Simulation struct {
	mu       sync.Mutex
	opts     Options
	routes   []*route.Route
	fleet    *fleet.Fleet
	clock    FrameClock
	speedKmh float64
	layer    *model.Layer
	loader   *model.Loader
	handles  map[string]model.Handle
	// loaded is the last successfully loaded model, reused when routes change
	loaded *model.Model

	snapshot atomic.Pointer[fleet.Snapshot]
}

// NewSimulation builds the fleet for routes. Routes that cannot be animated
// are logged and skipped; ErrNoVehicles is returned if none remain.
func NewSimulation(routes []*route.Route, opts Options) (*Simulation, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = config.DefaultFrameIntervalMS * time.Millisecond
	}
	if opts.Loader == nil {
		opts.Loader = model.NewLoader(nil)
	}
	s := &Simulation{
		opts:     opts,
		speedKmh: opts.InitialSpeedKmh,
		layer:    model.NewLayer(opts.Layer),
		loader:   opts.Loader,
		handles:  map[string]model.Handle{},
	}
	if err := s.rebuild(routes); err != nil {
		return nil, err
	}
	return s, nil
}

// rebuild replaces the fleet; callers hold mu or own s exclusively
func (s *Simulation) rebuild(routes []*route.Route) error {
	f, errs := fleet.Build(routes, s.speedKmh, animator.WithHeadingOffset(s.opts.HeadingOffsetDegrees))
	for _, err := range errs {
		log.Printf("route rejected: %v", err)
	}
	if f.Len() == 0 {
		return fmt.Errorf("%d route(s): %w", len(routes), ErrNoVehicles)
	}

	for id, h := range s.handles {
		_ = s.layer.Dispose(h)
		delete(s.handles, id)
	}
	animated := make([]*route.Route, 0, f.Len())
	for _, v := range f.Vehicles() {
		animated = append(animated, v.Animator.Route())
		h := s.layer.Reserve()
		s.handles[v.ID] = h
		if s.loaded != nil {
			if err := s.layer.Attach(h, s.loaded); err == nil {
				frame := v.Animator.Pose()
				_ = s.layer.SetTransform(h, frame.Position, frame.HeadingDegrees)
			}
		}
		log.Printf("[%s] route %s is %.2f m long", v.ID, v.Animator.Route().ID, v.Animator.LengthMeters())
	}

	s.routes = animated
	s.fleet = f
	s.clock.Reset()
	s.publish()
	return nil
}

// ReplaceRoutes swaps in a new set of routes, keeping the current speed.
// The previous fleet stays active if none of the new routes can be animated.
func (s *Simulation) ReplaceRoutes(routes []*route.Route) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rebuild(routes)
}

// Frame advances every vehicle to timestampMs and moves their models
func (s *Simulation) Frame(timestampMs float64) []fleet.Update {
	s.mu.Lock()
	defer s.mu.Unlock()

	updates := s.fleet.Advance(s.clock.Delta(timestampMs))
	for _, u := range updates {
		if u.Turned {
			log.Printf("[%s] reached the end of its route, turning around", u.VehicleID)
		}
		h, ok := s.handles[u.VehicleID]
		if !ok {
			continue
		}
		if err := s.layer.SetTransform(h, u.Frame.Position, u.Frame.HeadingDegrees); err != nil && !errors.Is(err, model.ErrNotReady) {
			log.Printf("[%s] model transform: %v", u.VehicleID, err)
		}
	}
	s.publish()
	return updates
}

// Run drives frames at the configured interval until ctx is cancelled
func (s *Simulation) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.FrameInterval)
	defer ticker.Stop()

	start := time.Now()
	s.Frame(0)
	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-ticker.C:
			s.Frame(float64(t.Sub(start)) / float64(time.Millisecond))
		}
	}
}

// LoadModels starts one asynchronous model load per vehicle. Vehicles keep
// moving while their model loads; the returned channel closes once every
// load has finished.
func (s *Simulation) LoadModels(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if s.opts.Assets.OBJ == "" {
		log.Printf("no model configured, skipping model load")
		close(done)
		return done
	}

	s.mu.Lock()
	ids := make([]string, 0, len(s.handles))
	for id := range s.handles {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			s.awaitModel(id, s.loader.Load(ctx, s.opts.Assets))
		}(id)
	}
	go func() {
		wg.Wait()
		close(done)
	}()
	return done
}

func (s *Simulation) awaitModel(id string, events <-chan model.Event) {
	lastQuarter := -1
	for ev := range events {
		switch ev.Kind {
		case model.EventProgress:
			if q := ev.Percent / 25; q != lastQuarter {
				lastQuarter = q
				log.Printf("[%s] model loading %d%%", id, ev.Percent)
			}
		case model.EventMaterialFallback:
			log.Printf("[%s] material failed, using default %s: %v", id, model.DefaultColor, ev.Err)
		case model.EventFailed:
			log.Printf("[%s] model failed to load: %v", id, ev.Err)
		case model.EventLoaded:
			s.attach(ev.Model)
		}
	}
}

// attach stores the loaded model and binds it to every handle still waiting
// for one, placing each at its vehicle's live pose. Handles created by a
// route reload during the load are included.
func (s *Simulation) attach(m *model.Model) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loaded = m
	for _, v := range s.fleet.Vehicles() {
		h, ok := s.handles[v.ID]
		if !ok || s.layer.Ready(h) {
			continue
		}
		if err := s.layer.Attach(h, m); err != nil {
			log.Printf("[%s] attach model: %v", v.ID, err)
			continue
		}
		frame := v.Animator.Pose()
		if err := s.layer.SetTransform(h, frame.Position, frame.HeadingDegrees); err != nil {
			log.Printf("[%s] model transform: %v", v.ID, err)
			continue
		}
		log.Printf("[%s] model loaded (%d vertices), heading offset %.0f°", v.ID, m.Vertices, v.Animator.HeadingOffset())
	}
}

// SetSpeedKmh applies one speed to every vehicle
func (s *Simulation) SetSpeedKmh(kmh float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fleet.SetSpeedKmh(kmh); err != nil {
		return err
	}
	s.speedKmh = kmh
	for _, v := range s.fleet.Vehicles() {
		log.Printf("[%s] speed set to %.1f km/h (%.5e route/ms)", v.ID, kmh, v.Animator.SpeedFractionPerMs())
	}
	s.publish()
	return nil
}

// SetSlider maps a slider position to a speed and applies it
func (s *Simulation) SetSlider(value float64) (float64, error) {
	if math.IsNaN(value) || value < SliderMin || value > SliderMax {
		return 0, fmt.Errorf("slider %v outside [%v,%v]: %w", value, SliderMin, SliderMax, animator.ErrInvalidSpeed)
	}
	kmh := s.opts.Slider.SliderKmh(value)
	return kmh, s.SetSpeedKmh(kmh)
}

// SpeedKmh returns the speed last applied to the fleet
func (s *Simulation) SpeedKmh() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speedKmh
}

// RotateAll turns every model by degrees
func (s *Simulation) RotateAll(degrees float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log.Printf("rotating all bus models by %.0f°", degrees)
	s.fleet.RotateAll(degrees)
	s.place()
}

// ReverseAll turns every bus around
func (s *Simulation) ReverseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	log.Printf("reversing all buses")
	s.fleet.ReverseAll()
	s.place()
}

// ResetHeadingOffsets restores every model's default heading offset
func (s *Simulation) ResetHeadingOffsets() {
	s.mu.Lock()
	defer s.mu.Unlock()
	log.Printf("resetting heading offsets to %.0f°", s.opts.HeadingOffsetDegrees)
	s.fleet.ResetHeadingOffsets()
	s.place()
}

// LogState writes every vehicle's state to the log and returns the snapshot
func (s *Simulation) LogState() *fleet.Snapshot {
	snap := s.Snapshot()
	for _, v := range snap.Vehicles {
		log.Printf("[%s] position %.6f,%.6f direction %s heading %.1f° offset %.1f° speed %.1f km/h",
			v.ID, v.Longitude, v.Latitude, v.Direction, v.HeadingDegrees, v.HeadingOffsetDegrees, v.SpeedKmh)
	}
	return snap
}

// place re-applies the current poses after a debug command; callers hold mu
func (s *Simulation) place() {
	for _, v := range s.fleet.Vehicles() {
		if h, ok := s.handles[v.ID]; ok {
			frame := v.Animator.Pose()
			_ = s.layer.SetTransform(h, frame.Position, frame.HeadingDegrees)
		}
	}
	s.publish()
}

// publish stores an immutable snapshot for readers; callers hold mu
func (s *Simulation) publish() {
	s.snapshot.Store(s.fleet.Snapshot(s.opts.Now()))
}

// Snapshot returns the state published after the latest frame or command
func (s *Simulation) Snapshot() *fleet.Snapshot {
	return s.snapshot.Load()
}

// Routes returns the routes currently animated, rejected ones excluded
func (s *Simulation) Routes() []*route.Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*route.Route, len(s.routes))
	copy(out, s.routes)
	return out
}

// Layer exposes the model transforms for a renderer
func (s *Simulation) Layer() *model.Layer { return s.layer }

// Handle returns the model handle of a vehicle
func (s *Simulation) Handle(vehicleID string) (model.Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.handles[vehicleID]
	return h, ok
}
