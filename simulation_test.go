package busanim

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/theoremus-urban-solutions/bus-route-animator/animator"
	"github.com/theoremus-urban-solutions/bus-route-animator/config"
	"github.com/theoremus-urban-solutions/bus-route-animator/model"
	"github.com/theoremus-urban-solutions/bus-route-animator/route"
)

var fixedNow = time.Date(2025, 10, 3, 8, 0, 0, 0, time.UTC)

func loadTestRoutes(t *testing.T) []*route.Route {
	t.Helper()
	routes, err := route.Load(context.Background(), filepath.Join("testdata", "busRoutes.geojson"), "")
	if err != nil {
		t.Fatalf("Failed to load routes: %v", err)
	}
	return routes
}

func testOptions() Options {
	opts := OptionsFromConfig(config.Default())
	opts.Now = func() time.Time { return fixedNow }
	return opts
}

func newTestSimulation(t *testing.T, opts Options) *Simulation {
	t.Helper()
	sim, err := NewSimulation(loadTestRoutes(t), opts)
	if err != nil {
		t.Fatalf("NewSimulation failed: %v", err)
	}
	return sim
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("model loading did not finish")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Model.OBJPath = "bus.obj"
	cfg.Model.Scale = config.ScaleConfig{X: 2, Y: 2, Z: 2}
	opts := OptionsFromConfig(cfg)

	if opts.InitialSpeedKmh != config.DefaultInitialSpeedKmh {
		t.Errorf("InitialSpeedKmh = %v", opts.InitialSpeedKmh)
	}
	if opts.HeadingOffsetDegrees != config.DefaultHeadingOffsetDegrees {
		t.Errorf("HeadingOffsetDegrees = %v", opts.HeadingOffsetDegrees)
	}
	if opts.FrameInterval != config.DefaultFrameIntervalMS*time.Millisecond {
		t.Errorf("FrameInterval = %v", opts.FrameInterval)
	}
	if opts.Assets.OBJ != "bus.obj" || opts.Layer.Scale.X != 2 {
		t.Errorf("model options not mapped: %+v %+v", opts.Assets, opts.Layer)
	}
	t.Logf("✓ options mapped from config")
}

func TestOptionsFromConfig_StartStopped(t *testing.T) {
	cfg, err := config.Parse([]byte("simulation: {initialSpeedKmh: 0}\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	opts := OptionsFromConfig(cfg)
	opts.Now = func() time.Time { return fixedNow }
	sim := newTestSimulation(t, opts)
	sim.Frame(0)
	sim.Frame(60000)
	for _, v := range sim.Snapshot().Vehicles {
		if v.Progress != 0 || v.SpeedKmh != 0 {
			t.Errorf("%s should be stopped, progress %v speed %v", v.ID, v.Progress, v.SpeedKmh)
		}
	}
	t.Logf("✓ buses start stopped from config")
}

func TestNewSimulation(t *testing.T) {
	sim := newTestSimulation(t, testOptions())

	snap := sim.Snapshot()
	if snap.Len() != 3 {
		t.Fatalf("expected 3 vehicles, got %d", snap.Len())
	}
	if !snap.Timestamp.Equal(fixedNow) {
		t.Errorf("snapshot timestamp = %v, want %v", snap.Timestamp, fixedNow)
	}
	for _, v := range snap.Vehicles {
		if v.Progress != 0 || v.Direction != animator.Forward.String() {
			t.Errorf("%s should start at the route start going forward, got %v %s", v.ID, v.Progress, v.Direction)
		}
		if math.Abs(v.SpeedKmh-config.DefaultInitialSpeedKmh) > 1e-9 {
			t.Errorf("%s speed = %v", v.ID, v.SpeedKmh)
		}
		if v.HeadingOffsetDegrees != 180 {
			t.Errorf("%s heading offset = %v", v.ID, v.HeadingOffsetDegrees)
		}
		if _, ok := sim.Handle(v.ID); !ok {
			t.Errorf("%s has no model handle", v.ID)
		}
	}
	if sim.Layer().Len() != 3 {
		t.Errorf("expected 3 reserved models, got %d", sim.Layer().Len())
	}
	if len(sim.Routes()) != 3 {
		t.Errorf("expected 3 routes, got %d", len(sim.Routes()))
	}
	if sim.SpeedKmh() != config.DefaultInitialSpeedKmh {
		t.Errorf("SpeedKmh = %v", sim.SpeedKmh())
	}
	t.Logf("✓ simulation built with %d vehicles", snap.Len())
}

func TestNewSimulation_NoVehicles(t *testing.T) {
	routes := []*route.Route{
		route.New("solo", "Solo", "", []route.Waypoint{{Longitude: 114.3, Latitude: 30.5}}),
	}
	_, err := NewSimulation(routes, testOptions())
	if !errors.Is(err, ErrNoVehicles) {
		t.Fatalf("expected ErrNoVehicles, got %v", err)
	}
	t.Logf("✓ degenerate routes rejected: %v", err)
}

func TestNewSimulation_SkipsRejectedRoutes(t *testing.T) {
	routes := append(loadTestRoutes(t),
		route.New("solo", "Solo", "", []route.Waypoint{{Longitude: 114.3, Latitude: 30.5}}))
	sim, err := NewSimulation(routes, testOptions())
	if err != nil {
		t.Fatalf("NewSimulation failed: %v", err)
	}
	if sim.Snapshot().Len() != 3 || len(sim.Routes()) != 3 {
		t.Errorf("rejected route should not be animated: %d vehicles, %d routes",
			sim.Snapshot().Len(), len(sim.Routes()))
	}
	t.Logf("✓ degenerate route skipped")
}

func TestSimulation_Frame(t *testing.T) {
	sim := newTestSimulation(t, testOptions())
	before := sim.Snapshot()

	sim.Frame(0)
	for _, v := range sim.Snapshot().Vehicles {
		if v.Progress != 0 {
			t.Errorf("first frame should not move %s, progress %v", v.ID, v.Progress)
		}
	}

	updates := sim.Frame(1000)
	if len(updates) != 3 {
		t.Fatalf("expected 3 updates, got %d", len(updates))
	}
	after := sim.Snapshot()
	if after == before {
		t.Error("every frame should publish a new snapshot")
	}
	for _, v := range after.Vehicles {
		// 10 km/h for one second
		want := (10.0 / 3600.0) / v.LengthMeters * 1000
		if math.Abs(v.Progress-want) > 1e-12 {
			t.Errorf("%s progress = %v, want %v", v.ID, v.Progress, want)
		}
		prev, _ := before.Get(v.ID)
		if prev.Progress != 0 {
			t.Errorf("published snapshot was mutated for %s", v.ID)
		}
	}
	t.Logf("✓ frame advanced all vehicles")
}

func TestSimulation_FrameTurnsAround(t *testing.T) {
	sim := newTestSimulation(t, testOptions())
	if err := sim.SetSpeedKmh(3600); err != nil {
		t.Fatalf("SetSpeedKmh failed: %v", err)
	}

	turned := map[string]bool{}
	for ts := 0.0; ts <= 6000; ts += 250 {
		for _, u := range sim.Frame(ts) {
			if u.Turned {
				turned[u.VehicleID] = true
			}
		}
	}
	if len(turned) != 3 {
		t.Fatalf("expected every bus to reach its route end, turned: %v", turned)
	}
	for _, v := range sim.Snapshot().Vehicles {
		if v.Direction != animator.Reverse.String() {
			t.Errorf("%s should be heading back, got %s", v.ID, v.Direction)
		}
		if v.HeadingOffsetDegrees != 0 {
			t.Errorf("%s offset should have flipped to 0, got %v", v.ID, v.HeadingOffsetDegrees)
		}
	}
	t.Logf("✓ all buses turned around at their route end")
}

func TestSimulation_SetSlider(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		want    float64
		wantErr bool
	}{
		{"minimum", 0, 30, false},
		{"middle", 5, 65, false},
		{"maximum", 10, 100, false},
		{"below range", -1, 0, true},
		{"above range", 10.5, 0, true},
		{"NaN", math.NaN(), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := newTestSimulation(t, testOptions())
			kmh, err := sim.SetSlider(tt.value)
			if tt.wantErr {
				if !errors.Is(err, animator.ErrInvalidSpeed) {
					t.Fatalf("expected ErrInvalidSpeed, got %v", err)
				}
				if sim.SpeedKmh() != config.DefaultInitialSpeedKmh {
					t.Errorf("speed changed on error: %v", sim.SpeedKmh())
				}
				return
			}
			if err != nil {
				t.Fatalf("SetSlider failed: %v", err)
			}
			if kmh != tt.want || sim.SpeedKmh() != tt.want {
				t.Errorf("SetSlider(%v) = %v (sim %v), want %v", tt.value, kmh, sim.SpeedKmh(), tt.want)
			}
			for _, v := range sim.Snapshot().Vehicles {
				if math.Abs(v.SpeedKmh-tt.want) > 1e-9 {
					t.Errorf("%s speed = %v, want %v", v.ID, v.SpeedKmh, tt.want)
				}
			}
			t.Logf("✓ slider %v -> %v km/h", tt.value, kmh)
		})
	}
}

func TestSimulation_SetSpeedKmh_Invalid(t *testing.T) {
	sim := newTestSimulation(t, testOptions())
	for _, kmh := range []float64{-5, math.Inf(1), math.NaN()} {
		if err := sim.SetSpeedKmh(kmh); !errors.Is(err, animator.ErrInvalidSpeed) {
			t.Errorf("SetSpeedKmh(%v) expected ErrInvalidSpeed, got %v", kmh, err)
		}
	}
	if sim.SpeedKmh() != config.DefaultInitialSpeedKmh {
		t.Errorf("speed should be unchanged, got %v", sim.SpeedKmh())
	}
	t.Logf("✓ invalid speeds rejected")
}

func TestSimulation_DebugCommands(t *testing.T) {
	sim := newTestSimulation(t, testOptions())
	sim.Frame(0)
	sim.Frame(60000)

	sim.RotateAll(90)
	for _, v := range sim.Snapshot().Vehicles {
		if v.HeadingOffsetDegrees != 270 {
			t.Errorf("%s offset after rotate = %v, want 270", v.ID, v.HeadingOffsetDegrees)
		}
	}

	progress := map[string]float64{}
	for _, v := range sim.Snapshot().Vehicles {
		progress[v.ID] = v.Progress
	}
	sim.ReverseAll()
	for _, v := range sim.Snapshot().Vehicles {
		if v.Direction != animator.Reverse.String() {
			t.Errorf("%s direction after reverse = %s", v.ID, v.Direction)
		}
		if v.Progress != progress[v.ID] {
			t.Errorf("%s reverse should not move the bus", v.ID)
		}
		if v.HeadingOffsetDegrees != 90 {
			t.Errorf("%s offset after reverse = %v, want 90", v.ID, v.HeadingOffsetDegrees)
		}
	}

	sim.ResetHeadingOffsets()
	for _, v := range sim.Snapshot().Vehicles {
		if v.HeadingOffsetDegrees != 180 {
			t.Errorf("%s offset after reset = %v, want 180", v.ID, v.HeadingOffsetDegrees)
		}
	}

	if snap := sim.LogState(); snap.Len() != 3 {
		t.Errorf("LogState returned %d vehicles", snap.Len())
	}
	t.Logf("✓ debug commands applied to every bus")
}

func TestSimulation_ReplaceRoutes(t *testing.T) {
	sim := newTestSimulation(t, testOptions())
	if err := sim.SetSpeedKmh(50); err != nil {
		t.Fatalf("SetSpeedKmh failed: %v", err)
	}
	oldHandle, _ := sim.Handle("bus-route1")

	routes := loadTestRoutes(t)
	if err := sim.ReplaceRoutes(routes[:2]); err != nil {
		t.Fatalf("ReplaceRoutes failed: %v", err)
	}
	snap := sim.Snapshot()
	if snap.Len() != 2 || sim.Layer().Len() != 2 {
		t.Fatalf("expected 2 vehicles and models, got %d and %d", snap.Len(), sim.Layer().Len())
	}
	if _, ok := snap.Get("bus-route3"); ok {
		t.Error("bus-route3 should have been removed")
	}
	for _, v := range snap.Vehicles {
		if math.Abs(v.SpeedKmh-50) > 1e-9 {
			t.Errorf("%s should keep the current speed, got %v", v.ID, v.SpeedKmh)
		}
	}
	if h, _ := sim.Handle("bus-route1"); h == oldHandle {
		t.Error("replaced vehicles should get new model handles")
	}

	bad := []*route.Route{route.New("solo", "Solo", "", nil)}
	if err := sim.ReplaceRoutes(bad); !errors.Is(err, ErrNoVehicles) {
		t.Fatalf("expected ErrNoVehicles, got %v", err)
	}
	if sim.Snapshot().Len() != 2 {
		t.Errorf("previous fleet should be kept, got %d vehicles", sim.Snapshot().Len())
	}
	t.Logf("✓ routes replaced, speed kept")
}

func TestSimulation_LoadModels(t *testing.T) {
	opts := testOptions()
	opts.Assets = model.Assets{
		OBJ: filepath.Join("model", "testdata", "bus.obj"),
		MTL: filepath.Join("model", "testdata", "bus.mtl"),
	}
	sim := newTestSimulation(t, opts)
	sim.Frame(0)
	sim.Frame(5000)

	waitDone(t, sim.LoadModels(context.Background()))

	layer := sim.Layer()
	for _, v := range sim.Snapshot().Vehicles {
		h, _ := sim.Handle(v.ID)
		if !layer.Ready(h) {
			t.Fatalf("%s model should be ready", v.ID)
		}
		pos, heading, err := layer.Pose(h)
		if err != nil {
			t.Fatalf("%s pose: %v", v.ID, err)
		}
		if pos.Longitude != v.Longitude || pos.Latitude != v.Latitude || heading != v.HeadingDegrees {
			t.Errorf("%s model should be placed at the live pose, got %v %v", v.ID, pos, heading)
		}
	}

	h, _ := sim.Handle("bus-route1")
	before, err := layer.Transform(h)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	sim.Frame(65000)
	after, _ := layer.Transform(h)
	if before[12] == after[12] && before[13] == after[13] {
		t.Error("model translation should follow the bus")
	}

	// replaced routes reuse the loaded model
	if err := sim.ReplaceRoutes(loadTestRoutes(t)); err != nil {
		t.Fatalf("ReplaceRoutes failed: %v", err)
	}
	h, _ = sim.Handle("bus-route1")
	if !layer.Ready(h) {
		t.Error("new handles should reuse the loaded model")
	}
	t.Logf("✓ models loaded and placed")
}

func TestSimulation_LoadModels_RoutesReplacedWhileLoading(t *testing.T) {
	obj, err := os.ReadFile(filepath.Join("model", "testdata", "bus.obj"))
	if err != nil {
		t.Fatalf("Failed to read model: %v", err)
	}
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write(obj)
	}))
	defer srv.Close()

	opts := testOptions()
	opts.Assets = model.Assets{OBJ: srv.URL + "/bus.obj"}
	sim := newTestSimulation(t, opts)
	done := sim.LoadModels(context.Background())

	// reload with one route kept and one new route while the model is in flight
	routes := loadTestRoutes(t)
	replaced := []*route.Route{
		routes[0],
		route.New("route9", "Line 9", "#AA33FF", []route.Waypoint{
			{Longitude: 114.30, Latitude: 30.50},
			{Longitude: 114.31, Latitude: 30.51},
		}),
	}
	replaceErr := sim.ReplaceRoutes(replaced)
	close(release)
	if replaceErr != nil {
		t.Fatalf("ReplaceRoutes failed: %v", replaceErr)
	}
	waitDone(t, done)

	layer := sim.Layer()
	for _, v := range sim.Snapshot().Vehicles {
		h, ok := sim.Handle(v.ID)
		if !ok || !layer.Ready(h) {
			t.Fatalf("%s should have the model loaded before the reload", v.ID)
		}
		pos, _, err := layer.Pose(h)
		if err != nil || pos.Longitude != v.Longitude || pos.Latitude != v.Latitude {
			t.Errorf("%s should be placed at its live pose, got %v %v", v.ID, pos, err)
		}
	}
	t.Logf("✓ reloaded vehicles get the model that was loading")
}

func TestSimulation_LoadModels_Failure(t *testing.T) {
	opts := testOptions()
	opts.Assets = model.Assets{OBJ: filepath.Join(t.TempDir(), "missing.obj")}
	sim := newTestSimulation(t, opts)

	waitDone(t, sim.LoadModels(context.Background()))

	for _, v := range sim.Snapshot().Vehicles {
		h, _ := sim.Handle(v.ID)
		if sim.Layer().Ready(h) {
			t.Errorf("%s should have no model", v.ID)
		}
	}
	sim.Frame(0)
	sim.Frame(1000)
	for _, v := range sim.Snapshot().Vehicles {
		if v.Progress <= 0 {
			t.Errorf("%s should keep moving without a model", v.ID)
		}
	}
	t.Logf("✓ animation continues when the model fails")
}

func TestSimulation_LoadModels_NotConfigured(t *testing.T) {
	sim := newTestSimulation(t, testOptions())
	waitDone(t, sim.LoadModels(context.Background()))
	h, _ := sim.Handle("bus-route1")
	if sim.Layer().Ready(h) {
		t.Error("no model should be attached")
	}
	t.Logf("✓ load skipped without assets")
}

func TestSimulation_Run(t *testing.T) {
	opts := testOptions()
	opts.FrameInterval = 5 * time.Millisecond
	sim := newTestSimulation(t, opts)
	if err := sim.SetSpeedKmh(3600); err != nil {
		t.Fatalf("SetSpeedKmh failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sim.Run(ctx) }()

	deadline := time.After(5 * time.Second)
	for {
		v, _ := sim.Snapshot().Get("bus-route1")
		if v.Progress > 0 {
			break
		}
		select {
		case <-deadline:
			cancel()
			t.Fatal("Run did not advance the bus")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run returned %v", err)
	}
	t.Logf("✓ frame loop advanced the fleet")
}
