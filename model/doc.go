// Package model loads the 3D bus model and keeps the per-vehicle transforms
// a map renderer needs to draw it.
//
// Loading is asynchronous. Loader.Load streams progress and finishes with a
// single Loaded or Failed event. A Layer holds one entry per vehicle; pose
// updates for an entry are rejected with ErrNotReady until a model has been
// attached to it.
//
// Transforms are expressed in Web Mercator world units (the unit square
// covering the whole map) so they can be fed to a map's custom layer as-is.
package model
