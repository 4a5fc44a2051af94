package busanim

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/theoremus-urban-solutions/bus-route-animator/config"
	"github.com/theoremus-urban-solutions/bus-route-animator/formatter"
)

// Server publishes the simulation over HTTP
type Server struct {
	sim     *Simulation
	cfg     *config.AppConfig
	cache   *feedCache
	started time.Time
	server  *http.Server
}

// NewServer creates a server for sim
func NewServer(sim *Simulation, cfg *config.AppConfig) *Server {
	return &Server{
		sim:     sim,
		cfg:     cfg,
		cache:   newFeedCache(),
		started: time.Now(),
	}
}

// Handler returns the API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/vehicles.json", s.handleVehicles)
	mux.HandleFunc("/api/models.json", s.handleModels)
	mux.HandleFunc("/api/siri/vehicle-monitoring.json", s.handleVehicleMonitoringJSON)
	mux.HandleFunc("/api/siri/vehicle-monitoring.xml", s.handleVehicleMonitoringXML)
	mux.HandleFunc("/api/siri/estimated-timetable.json", s.handleEstimatedTimetable)
	mux.HandleFunc("/api/gtfsrt/vehicle-positions.pb", s.handleVehiclePositions)
	mux.HandleFunc("/api/routes.geojson", s.handleRoutesGeoJSON)
	mux.HandleFunc("/api/vehicles.geojson", s.handleVehiclesGeoJSON)
	mux.HandleFunc("/api/speed", s.handleSpeed)
	mux.HandleFunc("/api/debug/rotate", s.handleRotate)
	mux.HandleFunc("/api/debug/reverse", s.handleReverse)
	mux.HandleFunc("/api/debug/reset", s.handleReset)
	mux.HandleFunc("/api/debug/state", s.handleState)
	return mux
}

func (s *Server) vmOptions() formatter.VMOptions {
	return formatter.VMOptions{
		Codespace: s.cfg.Feed.AgencyID,
		ValidFor:  s.cfg.Feed.ValidFor(),
	}
}

// Start listens on the configured port in the background
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()
	log.Printf("server listening on %s", addr)
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// HandleGracefulShutdown blocks until SIGINT or SIGTERM, stops the frame loop
// through stop and shuts the server down
func HandleGracefulShutdown(srv *Server, stop context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Printf("shutdown signal received")
	stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	} else {
		log.Printf("server shut down successfully")
	}
}
