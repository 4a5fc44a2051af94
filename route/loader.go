package route

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Source formats accepted by Load
const (
	FormatGeoJSON = "geojson"
	FormatGTFS    = "gtfs"
)

// Load reads a route source from a local path or an http(s) URL.
// An empty format is inferred from the extension.
func Load(ctx context.Context, source, format string) ([]*Route, error) {
	data, err := Fetch(ctx, http.DefaultClient, source)
	if err != nil {
		return nil, err
	}
	return Parse(data, ResolveFormat(source, format))
}

// Parse decodes route source bytes in the given format
func Parse(data []byte, format string) ([]*Route, error) {
	switch format {
	case FormatGTFS:
		return ParseGTFS(data)
	case FormatGeoJSON, "":
		return ParseGeoJSON(data)
	default:
		return nil, fmt.Errorf("unknown route format %q", format)
	}
}

// ResolveFormat returns format, or the format implied by the source extension
func ResolveFormat(source, format string) string {
	if format != "" {
		return strings.ToLower(format)
	}
	u := source
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	if strings.EqualFold(filepath.Ext(u), ".zip") {
		return FormatGTFS
	}
	return FormatGeoJSON
}

// IsRemote reports whether source is an http(s) URL
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Fetch returns the raw bytes of a local file or an http(s) URL
func Fetch(ctx context.Context, client *http.Client, urlOrPath string) ([]byte, error) {
	if urlOrPath == "" {
		return nil, fmt.Errorf("empty route source")
	}
	if !IsRemote(urlOrPath) {
		return os.ReadFile(urlOrPath)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlOrPath, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", urlOrPath, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, urlOrPath)
	}

	return io.ReadAll(resp.Body)
}
