package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	lib "github.com/theoremus-urban-solutions/bus-route-animator"
	"github.com/theoremus-urban-solutions/bus-route-animator/config"
	"github.com/theoremus-urban-solutions/bus-route-animator/formatter"
	"github.com/theoremus-urban-solutions/bus-route-animator/route"
)

func main() {
	configPath := flag.String("config", "", "config file (default config.yml, then ./configs/config.yml)")
	mode := flag.String("mode", "serve", "serve|oneshot")
	frames := flag.Int("frames", 60, "frames to simulate in oneshot mode")
	frameMS := flag.Float64("frameMS", 16, "milliseconds per frame in oneshot mode")
	format := flag.String("format", "json", "oneshot output: json|xml|pb|geojson")
	speed := flag.Float64("speed", -1, "initial speed in km/h (overrides config)")
	routes := flag.String("routes", "", "route source path or URL (overrides config)")
	flag.Parse()

	lib.InitLogging()
	if *mode == "oneshot" {
		// keep stdout for the feed
		log.SetOutput(os.Stderr)
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *speed >= 0 {
		cfg.Simulation.InitialSpeedKmh = speed
	}
	if *routes != "" {
		cfg.Routes.Source = *routes
	}

	ctx := context.Background()
	rs, err := route.Load(ctx, cfg.Routes.Source, cfg.Routes.Format)
	if err != nil {
		log.Fatalf("routes: %v", err)
	}
	log.Printf("loaded %d route(s) from %s", len(rs), cfg.Routes.Source)

	sim, err := lib.NewSimulation(rs, lib.OptionsFromConfig(cfg))
	if err != nil {
		log.Fatalf("simulation: %v", err)
	}

	switch *mode {
	case "serve":
		serve(sim, cfg)
	case "oneshot":
		if err := oneshot(sim, cfg, *frames, *frameMS, *format); err != nil {
			log.Fatalf("oneshot: %v", err)
		}
	default:
		log.Fatalf("unknown mode %q", *mode)
	}
}

func loadConfig(path string) (*config.AppConfig, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	if err := config.LoadAppConfig(); err != nil {
		if os.IsNotExist(err) {
			log.Printf("no config file found, using defaults")
			return config.Default(), nil
		}
		return nil, err
	}
	return &config.Config, nil
}

func serve(sim *lib.Simulation, cfg *config.AppConfig) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sim.LoadModels(ctx)
	go func() {
		if err := sim.Run(ctx); err != nil {
			log.Printf("frame loop stopped: %v", err)
		}
	}()
	if cfg.Routes.Watch {
		go func() {
			if err := sim.WatchRoutes(ctx, cfg.Routes.Source, cfg.Routes.Format); err != nil {
				log.Printf("route watch disabled: %v", err)
			}
		}()
	}

	srv := lib.NewServer(sim, cfg)
	srv.Start()
	lib.HandleGracefulShutdown(srv, cancel)
}

func oneshot(sim *lib.Simulation, cfg *config.AppConfig, frames int, frameMS float64, format string) error {
	for i := 0; i <= frames; i++ {
		sim.Frame(float64(i) * frameMS)
	}
	snap := sim.Snapshot()

	var out []byte
	var err error
	switch format {
	case "json", "xml":
		opts := formatter.VMOptions{Codespace: cfg.Feed.AgencyID, ValidFor: cfg.Feed.ValidFor()}
		res := formatter.WrapVehicleMonitoringResponse(formatter.BuildVehicleMonitoring(snap, opts), snap.Timestamp, opts.Codespace)
		rb := formatter.NewResponseBuilder()
		if format == "xml" {
			out = rb.BuildXML(res)
		} else {
			out = rb.BuildJSON(res)
		}
	case "pb":
		out, err = formatter.MarshalVehiclePositions(snap)
	case "geojson":
		out, err = formatter.VehiclesGeoJSON(snap).MarshalJSON()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	if err == nil && format != "pb" {
		fmt.Println()
	}
	return err
}
