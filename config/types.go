package config

import "time"

// ServerConfig contains server configuration
type ServerConfig struct {
	Port int `yaml:"port" validate:"gte=0,lte=65535"`
}

// RoutesConfig points at the route source
type RoutesConfig struct {
	// Source is a local path or http(s) URL
	Source string `yaml:"source"`
	// Format is geojson or gtfs; inferred from the source when empty
	Format string `yaml:"format" validate:"omitempty,oneof=geojson gtfs"`
	// Watch reloads a local source when it changes
	Watch bool `yaml:"watch"`
}

// ScaleConfig is the per-axis model scale
type ScaleConfig struct {
	X float64 `yaml:"x" validate:"gte=0"`
	Y float64 `yaml:"y" validate:"gte=0"`
	Z float64 `yaml:"z" validate:"gte=0"`
}

// ModelConfig contains the 3D bus model assets
type ModelConfig struct {
	OBJPath      string      `yaml:"objPath"`
	MTLPath      string      `yaml:"mtlPath"`
	Scale        ScaleConfig `yaml:"scale"`
	HeightMeters float64     `yaml:"height"`
}

// SpeedSliderConfig maps a slider position to a speed
type SpeedSliderConfig struct {
	BaseKmh float64 `yaml:"baseKmh" validate:"gte=0"`
	StepKmh float64 `yaml:"stepKmh" validate:"gte=0"`
}

// SimulationConfig contains the animation settings
type SimulationConfig struct {
	// InitialSpeedKmh may be 0 to start with every bus stopped
	InitialSpeedKmh *float64 `yaml:"initialSpeedKmh" validate:"omitempty,gte=0"`
	// HeadingOffsetDegrees turns the model to face its direction of travel
	HeadingOffsetDegrees *float64          `yaml:"headingOffsetDegrees"`
	FrameIntervalMS      int               `yaml:"frameIntervalMS" validate:"gte=0"`
	SpeedSlider          SpeedSliderConfig `yaml:"speedSlider"`
}

// FeedConfig contains the published feed settings
type FeedConfig struct {
	AgencyID   string `yaml:"agency_id"`
	ValidForMS int    `yaml:"validForMS" validate:"gte=0"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Routes     RoutesConfig     `yaml:"routes"`
	Model      ModelConfig      `yaml:"model"`
	Simulation SimulationConfig `yaml:"simulation"`
	Feed       FeedConfig       `yaml:"feed"`
}

// HeadingOffset returns the configured model heading offset
func (s SimulationConfig) HeadingOffset() float64 {
	if s.HeadingOffsetDegrees == nil {
		return DefaultHeadingOffsetDegrees
	}
	return *s.HeadingOffsetDegrees
}

// InitialSpeed returns the configured starting speed in km/h
func (s SimulationConfig) InitialSpeed() float64 {
	if s.InitialSpeedKmh == nil {
		return DefaultInitialSpeedKmh
	}
	return *s.InitialSpeedKmh
}

// FrameInterval returns the frame period
func (s SimulationConfig) FrameInterval() time.Duration {
	return time.Duration(s.FrameIntervalMS) * time.Millisecond
}

// SliderKmh converts a slider position to km/h: base + value*step
func (s SpeedSliderConfig) SliderKmh(value float64) float64 {
	return s.BaseKmh + value*s.StepKmh
}

// ValidFor returns how long published deliveries stay valid
func (f FeedConfig) ValidFor() time.Duration {
	return time.Duration(f.ValidForMS) * time.Millisecond
}
