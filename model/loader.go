package model

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strings"
	"time"
)

// Assets names the model files; either may be a local path or an http(s) URL.
// MTL is optional.
type Assets struct {
	OBJ string
	MTL string
}

// EventKind identifies a load event
type EventKind int

const (
	EventProgress EventKind = iota
	EventMaterialFallback
	EventLoaded
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventMaterialFallback:
		return "material-fallback"
	case EventLoaded:
		return "loaded"
	case EventFailed:
		return "failed"
	}
	return "unknown"
}

// Event is emitted by Loader.Load
type Event struct {
	Kind    EventKind
	Percent int
	Model   *Model
	Err     error
}

// Terminal reports whether no further events follow
func (e Event) Terminal() bool {
	return e.Kind == EventLoaded || e.Kind == EventFailed
}

const eventBuffer = 16

// Loader fetches and parses model assets in the background
type Loader struct {
	client *http.Client
}

// NewLoader creates a loader; a nil client uses a client with a 30s timeout
func NewLoader(client *http.Client) *Loader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Loader{client: client}
}

// Load starts loading the assets. The returned channel yields progress events
// and exactly one Loaded or Failed event, then closes. Progress events are
// dropped rather than blocking when the reader falls behind.
func (l *Loader) Load(ctx context.Context, a Assets) <-chan Event {
	ch := make(chan Event, eventBuffer)
	go func() {
		defer close(ch)
		m, err := l.load(ctx, a, ch)
		// emit always leaves a slot for the terminal event
		if err != nil {
			ch <- Event{Kind: EventFailed, Err: err}
			return
		}
		ch <- Event{Kind: EventLoaded, Model: m, Percent: 100}
	}()
	return ch
}

func (l *Loader) load(ctx context.Context, a Assets, ch chan<- Event) (*Model, error) {
	if a.OBJ == "" {
		return nil, fmt.Errorf("no OBJ asset given")
	}

	var materials []Material
	if a.MTL != "" {
		mats, err := l.fetchMTL(ctx, a.MTL, ch)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			emit(ch, Event{Kind: EventMaterialFallback, Err: err})
		} else {
			materials = mats
		}
	}
	if materials == nil {
		materials = []Material{DefaultMaterial()}
	}

	body, total, err := l.open(ctx, a.OBJ)
	if err != nil {
		return nil, fmt.Errorf("obj %s: %w", a.OBJ, err)
	}
	defer body.Close()

	m, err := ParseOBJ(&progressReader{r: body, total: total, scale: 100, ch: ch})
	if err != nil {
		return nil, fmt.Errorf("obj %s: %w", a.OBJ, err)
	}
	m.Materials = materials
	return m, nil
}

func (l *Loader) fetchMTL(ctx context.Context, src string, ch chan<- Event) ([]Material, error) {
	body, total, err := l.open(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("mtl %s: %w", src, err)
	}
	defer body.Close()
	mats, err := ParseMTL(&progressReader{r: body, total: total, scale: 50, ch: ch})
	if err != nil {
		return nil, fmt.Errorf("mtl %s: %w", src, err)
	}
	return mats, nil
}

// open returns the asset body and its size, or -1 when unknown
func (l *Loader) open(ctx context.Context, src string) (io.ReadCloser, int64, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, 0, err
		}
		resp, err := l.client.Do(req)
		if err != nil {
			return nil, 0, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return resp.Body, resp.ContentLength, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	f, err := os.Open(src)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

// emit queues an event without blocking. Progress events leave two slots
// free: one for the single material fallback and one for the terminal event.
func emit(ch chan<- Event, ev Event) {
	if ev.Kind == EventProgress && len(ch) >= cap(ch)-2 {
		return
	}
	ch <- ev
}

// progressReader reports read progress scaled to [0,scale] percent
type progressReader struct {
	r      io.Reader
	total  int64
	loaded int64
	scale  float64
	last   int
	ch     chan<- Event
	sent   bool
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.loaded += int64(n)
	if p.total > 0 && n > 0 {
		pct := int(math.Round(float64(p.loaded) / float64(p.total) * p.scale))
		if !p.sent || pct != p.last {
			p.sent = true
			p.last = pct
			emit(p.ch, Event{Kind: EventProgress, Percent: pct})
		}
	}
	return n, err
}
