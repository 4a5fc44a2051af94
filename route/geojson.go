package route

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// DefaultColor is used when a route source carries no color
const DefaultColor = "#3388ff"

// ErrUnsupportedGeometry is returned for features that are not LineStrings
var ErrUnsupportedGeometry = errors.New("unsupported route geometry")

// ParseGeoJSON builds routes from a FeatureCollection of LineString features.
// Feature properties id, name and color are used when present.
func ParseGeoJSON(data []byte) ([]*Route, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode route collection: %w", err)
	}
	routes := make([]*Route, 0, len(fc.Features))
	for i, f := range fc.Features {
		ls, ok := f.Geometry.(orb.LineString)
		if !ok {
			return nil, fmt.Errorf("feature %d (%s): %w", i, geometryType(f.Geometry), ErrUnsupportedGeometry)
		}
		id := stringProp(f.Properties, "id", "")
		if id == "" {
			id = featureID(f.ID)
		}
		if id == "" {
			id = "route" + strconv.Itoa(i+1)
		}
		pts := make([]Waypoint, len(ls))
		for j, p := range ls {
			pts[j] = Waypoint{Longitude: p.Lon(), Latitude: p.Lat()}
		}
		routes = append(routes, New(
			id,
			stringProp(f.Properties, "name", id),
			stringProp(f.Properties, "color", DefaultColor),
			pts,
		))
	}
	return routes, nil
}

func geometryType(g orb.Geometry) string {
	if g == nil {
		return "null"
	}
	return g.GeoJSONType()
}

// stringProp reads a property that may have been written as a string or a number
func stringProp(p geojson.Properties, key, fallback string) string {
	switch v := p[key].(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fallback
}

func featureID(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}
