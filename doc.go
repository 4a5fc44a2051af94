// Package busanim animates one bus per route, looping between the route ends,
// and publishes the fleet as SIRI-VM, GTFS-RT and GeoJSON over HTTP.
//
// A Simulation owns the fleet and the 3D model layer. Frames are driven either
// by Run, which ticks at the configured interval, or by calling Frame with
// monotonic timestamps. Each frame publishes an immutable snapshot that the
// HTTP handlers read without blocking the frame loop.
package busanim
