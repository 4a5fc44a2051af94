package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Defaults applied to zero values
const (
	DefaultPort                 = 16181
	DefaultRoutesSource         = "data/busRoutes.geojson"
	DefaultInitialSpeedKmh      = 10.0
	DefaultHeadingOffsetDegrees = 180.0
	DefaultFrameIntervalMS      = 16
	DefaultSliderBaseKmh        = 30.0
	DefaultSliderStepKmh        = 7.0
	DefaultAgencyID             = "BUS"
	DefaultValidForMS           = 30000
)

// Config is the global application configuration
var Config AppConfig

// LoadAppConfig loads and validates the application configuration from
// config.yml, falling back to ./configs/config.yml
func LoadAppConfig() error {
	cfg, err := LoadFile("config.yml", "./configs/config.yml")
	if err != nil {
		return err
	}
	Config = *cfg
	return nil
}

// LoadFile reads the first path that exists
func LoadFile(paths ...string) (*AppConfig, error) {
	var data []byte
	err := fmt.Errorf("no config path given")
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes, validates and applies defaults
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no file is present
func Default() *AppConfig {
	var cfg AppConfig
	cfg.applyDefaults()
	return &cfg
}

func (c *AppConfig) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Routes.Source == "" {
		c.Routes.Source = DefaultRoutesSource
	}
	if c.Model.Scale.X == 0 {
		c.Model.Scale.X = 1
	}
	if c.Model.Scale.Y == 0 {
		c.Model.Scale.Y = 1
	}
	if c.Model.Scale.Z == 0 {
		c.Model.Scale.Z = 1
	}
	if c.Simulation.InitialSpeedKmh == nil {
		speed := DefaultInitialSpeedKmh
		c.Simulation.InitialSpeedKmh = &speed
	}
	if c.Simulation.HeadingOffsetDegrees == nil {
		offset := DefaultHeadingOffsetDegrees
		c.Simulation.HeadingOffsetDegrees = &offset
	}
	if c.Simulation.FrameIntervalMS == 0 {
		c.Simulation.FrameIntervalMS = DefaultFrameIntervalMS
	}
	if c.Simulation.SpeedSlider.BaseKmh == 0 {
		c.Simulation.SpeedSlider.BaseKmh = DefaultSliderBaseKmh
	}
	if c.Simulation.SpeedSlider.StepKmh == 0 {
		c.Simulation.SpeedSlider.StepKmh = DefaultSliderStepKmh
	}
	if c.Feed.AgencyID == "" {
		c.Feed.AgencyID = DefaultAgencyID
	}
	if c.Feed.ValidForMS == 0 {
		c.Feed.ValidForMS = DefaultValidForMS
	}
}
