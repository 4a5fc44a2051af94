package model

import (
	"errors"
	"math"
	"testing"

	"cogentcore.org/core/math32"

	"github.com/theoremus-urban-solutions/bus-route-animator/route"
)

var wuhan = route.Waypoint{Longitude: 114.35, Latitude: 30.52}

func TestLayer_Lifecycle(t *testing.T) {
	l := NewLayer(LayerOptions{})
	h := l.Reserve()
	if h == "" || l.Len() != 1 {
		t.Fatalf("Reserve should register a handle, got %q len %d", h, l.Len())
	}
	if other := l.Reserve(); other == h {
		t.Error("handles should be unique")
	}

	if err := l.SetTransform(h, wuhan, 0); !errors.Is(err, ErrNotReady) {
		t.Errorf("expected ErrNotReady before attach, got %v", err)
	}
	if _, err := l.Transform(h); !errors.Is(err, ErrNotReady) {
		t.Errorf("expected ErrNotReady for Transform, got %v", err)
	}
	if l.Ready(h) {
		t.Error("handle should not be ready")
	}

	if err := l.Attach(h, &Model{Vertices: 3}); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if err := l.SetTransform(h, wuhan, 90); err != nil {
		t.Fatalf("SetTransform failed: %v", err)
	}
	pos, heading, err := l.Pose(h)
	if err != nil || pos != wuhan || heading != 90 {
		t.Errorf("unexpected pose %v %v %v", pos, heading, err)
	}

	if err := l.Dispose(h); err != nil {
		t.Fatalf("Dispose failed: %v", err)
	}
	if err := l.SetTransform(h, wuhan, 0); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("expected ErrUnknownHandle after dispose, got %v", err)
	}
	if err := l.Dispose(h); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("double dispose should fail, got %v", err)
	}
	if err := l.Attach("nope", &Model{}); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("expected ErrUnknownHandle, got %v", err)
	}
	if err := l.Attach(l.Reserve(), nil); err == nil {
		t.Error("nil model should be rejected")
	}
}

func TestLayer_Transform(t *testing.T) {
	l := NewLayer(LayerOptions{Scale: Scale{X: 2, Y: 2, Z: 2}, HeightMeters: 5})
	h := l.Reserve()
	if err := l.Attach(h, &Model{Vertices: 3}); err != nil {
		t.Fatal(err)
	}
	if err := l.SetTransform(h, wuhan, 45); err != nil {
		t.Fatal(err)
	}
	m, err := l.Transform(h)
	if err != nil {
		t.Fatal(err)
	}

	want := MercatorFromLngLat(wuhan.Longitude, wuhan.Latitude, 5)
	if math.Abs(float64(m[12])-want.X) > 1e-6 || math.Abs(float64(m[13])-want.Y) > 1e-6 {
		t.Errorf("translation (%v,%v), want (%v,%v)", m[12], m[13], want.X, want.Y)
	}
	if math.Abs(float64(m[14])-want.Z)/want.Z > 1e-4 {
		t.Errorf("altitude %v, want %v", m[14], want.Z)
	}

	// each basis column has the length of the scale on that axis
	unit := 2 * MeterInMercatorUnits(wuhan.Latitude)
	for col := 0; col < 3; col++ {
		v := math32.Vec3(m[col*4], m[col*4+1], m[col*4+2])
		if math.Abs(float64(v.Length())-unit)/unit > 1e-4 {
			t.Errorf("column %d length %v, want %v", col, v.Length(), unit)
		}
	}
}

func TestRotation(t *testing.T) {
	// model up (Y) is stood upright onto the map's Z axis
	up := math32.Vec3(0, 1, 0).MulQuat(Rotation(0))
	if math.Abs(float64(up.Z)-1) > 1e-6 {
		t.Errorf("model up should map to +Z, got %v", up)
	}

	// a heading turn keeps the model upright
	up = math32.Vec3(0, 1, 0).MulQuat(Rotation(137))
	if math.Abs(float64(up.Z)-1) > 1e-5 {
		t.Errorf("heading should rotate about the vertical, got %v", up)
	}

	a := math32.Vec3(0, 0, 1).MulQuat(Rotation(0))
	b := math32.Vec3(0, 0, 1).MulQuat(Rotation(180))
	if math.Abs(float64(a.X+b.X)) > 1e-5 || math.Abs(float64(a.Y+b.Y)) > 1e-5 {
		t.Errorf("180° should point the model the other way: %v vs %v", a, b)
	}
}
