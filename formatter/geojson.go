package formatter

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/theoremus-urban-solutions/bus-route-animator/fleet"
	"github.com/theoremus-urban-solutions/bus-route-animator/route"
)

// Line style applied to every route layer
const (
	RouteLineWidth   = 6
	RouteLineOpacity = 0.8
)

// RoutesGeoJSON returns the routes as LineString features carrying the
// properties a map line layer needs.
func RoutesGeoJSON(routes []*route.Route) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range routes {
		line := make(orb.LineString, 0, r.Len())
		for _, p := range r.Points() {
			line = append(line, orb.Point{p.Longitude, p.Latitude})
		}
		f := geojson.NewFeature(line)
		f.ID = r.ID
		f.Properties["id"] = r.ID
		f.Properties["name"] = r.Name
		f.Properties["color"] = r.Color
		f.Properties["line-width"] = RouteLineWidth
		f.Properties["line-opacity"] = RouteLineOpacity
		fc.Append(f)
	}
	return fc
}

// VehiclesGeoJSON returns one Point feature per vehicle in the snapshot
func VehiclesGeoJSON(snap *fleet.Snapshot) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, v := range snap.Vehicles {
		f := geojson.NewFeature(orb.Point{v.Longitude, v.Latitude})
		f.ID = v.ID
		f.Properties["id"] = v.ID
		f.Properties["routeId"] = v.RouteID
		f.Properties["color"] = v.RouteColor
		f.Properties["heading"] = v.HeadingDegrees
		f.Properties["bearing"] = v.TravelHeadingDegrees
		f.Properties["direction"] = v.Direction
		f.Properties["progress"] = v.Progress
		f.Properties["speedKmh"] = v.SpeedKmh
		fc.Append(f)
	}
	return fc
}
