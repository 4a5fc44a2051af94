// Package animator moves a single agent back and forth along a route.
//
// A RouteAnimator owns the agent's progress along one shared, read-only
// route. The host calls Advance once per animation frame with the elapsed
// milliseconds; the animator returns the new position and the model heading
// for the rendering adapter to apply. It performs no I/O, reads no clock and
// holds no rendering state, so it can be driven with synthetic deltas.
//
// Progress is parametrized by vertex index, not by arc length: every segment
// takes the same share of [0,1] regardless of its length, so real-world speed
// varies on routes with unevenly spaced points. Headings use the planar
// approximation atan2(Δlon, Δlat), not a geodesic bearing. At an exact
// interior vertex the heading is taken from the adjacent segment in the
// direction of travel (the next one going Forward, the previous one in
// Reverse) instead of the zero-length atan2(0, 0), which would point north.
//
// The agent bounces between the route ends indefinitely: reaching progress 1
// switches to Reverse, reaching 0 switches to Forward. Each switch adds 180°
// to the heading offset while the travel heading also turns by 180°, so the
// model heading is unchanged across a U-turn.
package animator
