// Package utils provides internal utility functions for the bus route animator.
// This package is not intended to be imported by external code.
//
// It contains:
//   - Great-circle distance and planar bearing helpers
//   - Angle normalization and speed unit conversions
//   - Time formatting for feed timestamps
package utils
