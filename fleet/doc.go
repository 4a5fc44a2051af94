// Package fleet runs one RouteAnimator per route and captures point-in-time
// snapshots of every vehicle for readers outside the frame loop.
//
// A Fleet is owned by a single loop. Snapshots are plain values and can be
// shared freely once taken.
package fleet
