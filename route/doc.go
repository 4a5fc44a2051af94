/*
Package route provides immutable route geometries and the loaders that build them.

A Route is an ordered sequence of lon/lat waypoints with an id, a display name
and a display color. Routes are read once from a route source and shared
read-only by every vehicle that travels them.

# Sources

GeoJSON FeatureCollection, one LineString feature per route:

	{"type": "Feature",
	 "properties": {"id": "route1", "name": "Line 1", "color": "#FF5733"},
	 "geometry": {"type": "LineString", "coordinates": [[114.35, 30.52], [114.355, 30.525]]}}

GTFS static zip: one route per shape_id from shapes.txt, named and colored
after the GTFS route of the first trip that uses the shape.

Load accepts a local path or an http(s) URL and picks the parser from the
format argument or, when empty, from the file extension (.zip is GTFS).

	routes, err := route.Load(ctx, "data/busRoutes.geojson", "")

# Degenerate geometries

Loaders do not reject routes with fewer than two points or zero length.
Deciding whether a geometry can be animated belongs to the animator, so a bad
route fails only the vehicle that would travel it.
*/
package route
