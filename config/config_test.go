package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParse_Full(t *testing.T) {
	data := []byte(`
server:
  port: 8080
routes:
  source: https://example.com/busRoutes.geojson
  format: geojson
  watch: true
model:
  objPath: models/bus.obj
  mtlPath: models/bus.mtl
  scale: {x: 2, y: 2, z: 3}
  height: 1.5
simulation:
  initialSpeedKmh: 25
  headingOffsetDegrees: 0
  frameIntervalMS: 33
  speedSlider: {baseKmh: 20, stepKmh: 5}
feed:
  agency_id: WUHAN
  validForMS: 10000
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Server.Port != 8080 || !cfg.Routes.Watch || cfg.Routes.Format != "geojson" {
		t.Errorf("unexpected server/routes %+v %+v", cfg.Server, cfg.Routes)
	}
	if cfg.Model.Scale.Z != 3 || cfg.Model.HeightMeters != 1.5 || cfg.Model.MTLPath != "models/bus.mtl" {
		t.Errorf("unexpected model %+v", cfg.Model)
	}
	if cfg.Simulation.HeadingOffset() != 0 {
		t.Errorf("explicit zero offset should be kept, got %v", cfg.Simulation.HeadingOffset())
	}
	if cfg.Simulation.InitialSpeed() != 25 {
		t.Errorf("unexpected initial speed %v", cfg.Simulation.InitialSpeed())
	}
	if cfg.Simulation.FrameInterval() != 33*time.Millisecond {
		t.Errorf("unexpected frame interval %v", cfg.Simulation.FrameInterval())
	}
	if got := cfg.Simulation.SpeedSlider.SliderKmh(2); got != 30 {
		t.Errorf("slider 2 should be 30 km/h, got %v", got)
	}
	if cfg.Feed.AgencyID != "WUHAN" || cfg.Feed.ValidFor() != 10*time.Second {
		t.Errorf("unexpected feed %+v", cfg.Feed)
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("server: {}\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Server.Port != DefaultPort {
		t.Errorf("expected default port, got %d", cfg.Server.Port)
	}
	if cfg.Routes.Source != DefaultRoutesSource {
		t.Errorf("expected default routes source, got %s", cfg.Routes.Source)
	}
	if cfg.Model.Scale != (ScaleConfig{X: 1, Y: 1, Z: 1}) {
		t.Errorf("expected unit scale, got %+v", cfg.Model.Scale)
	}
	if cfg.Simulation.InitialSpeed() != 10 || cfg.Simulation.HeadingOffset() != 180 || cfg.Simulation.FrameIntervalMS != 16 {
		t.Errorf("unexpected simulation defaults %+v", cfg.Simulation)
	}
	// slider 0..10 covers 30..100 km/h
	slider := cfg.Simulation.SpeedSlider
	if slider.SliderKmh(0) != 30 || slider.SliderKmh(10) != 100 {
		t.Errorf("unexpected slider range %v..%v", slider.SliderKmh(0), slider.SliderKmh(10))
	}

	d := Default()
	if d.Server != cfg.Server || d.Feed != cfg.Feed || d.Model != cfg.Model || d.Simulation.HeadingOffset() != cfg.Simulation.HeadingOffset() {
		t.Errorf("Default() should match an empty file: %+v", d)
	}
}

func TestParse_ZeroInitialSpeed(t *testing.T) {
	cfg, err := Parse([]byte("simulation: {initialSpeedKmh: 0}\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Simulation.InitialSpeedKmh == nil || cfg.Simulation.InitialSpeed() != 0 {
		t.Errorf("explicit zero speed should be kept, got %v", cfg.Simulation.InitialSpeed())
	}
	if got := Default().Simulation.InitialSpeed(); got != DefaultInitialSpeedKmh {
		t.Errorf("missing speed should default to %v, got %v", DefaultInitialSpeedKmh, got)
	}
	t.Logf("✓ buses can start stopped")
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "bad yaml", yaml: "server: [\n"},
		{name: "port out of range", yaml: "server: {port: 70000}\n"},
		{name: "unknown format", yaml: "routes: {format: kml}\n"},
		{name: "negative speed", yaml: "simulation: {initialSpeedKmh: -5}\n"},
		{name: "negative scale", yaml: "model: {scale: {x: -1}}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadFile_Fallback(t *testing.T) {
	dir := t.TempDir()
	second := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(second, []byte("server: {port: 9000}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(filepath.Join(dir, "missing.yml"), second)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port from fallback file, got %d", cfg.Server.Port)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.yml")); err == nil {
		t.Error("expected an error when no file exists")
	}
	if _, err := LoadFile(); err == nil {
		t.Error("expected an error with no paths")
	}
}
