package busanim

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/theoremus-urban-solutions/bus-route-animator/route"
)

// reloadDelay coalesces the burst of events an editor produces on save
const reloadDelay = 200 * time.Millisecond

// WatchRoutes reloads a local route file whenever it is written or replaced
// and swaps the routes into the simulation. It blocks until ctx is cancelled.
func (s *Simulation) WatchRoutes(ctx context.Context, path, format string) error {
	if route.IsRemote(path) {
		return fmt.Errorf("cannot watch remote route source %s", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create route watcher: %w", err)
	}
	defer watcher.Close()

	// watch the directory so atomic replaces (rename over the file) are seen
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	log.Printf("watching %s for route changes", abs)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				pending = time.After(reloadDelay)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("route watcher error: %v", err)
		case <-pending:
			pending = nil
			s.reloadRoutes(ctx, abs, format)
		}
	}
}

func (s *Simulation) reloadRoutes(ctx context.Context, path, format string) {
	routes, err := route.Load(ctx, path, format)
	if err != nil {
		log.Printf("route reload failed, keeping current routes: %v", err)
		return
	}
	if err := s.ReplaceRoutes(routes); err != nil {
		log.Printf("route reload rejected, keeping current routes: %v", err)
		return
	}
	log.Printf("reloaded %d route(s) from %s", len(routes), path)
}
