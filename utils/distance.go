package utils

import (
	"math"
)

// EarthRadiusMeters is the mean Earth radius used for route lengths.
const EarthRadiusMeters = 6371000.0

// msPerHourPerKm converts km/h to meters per millisecond: 1 km/h = 1000 m / 3_600_000 ms.
const msPerHourPerKm = 3600.0

// HaversineMeters returns the great-circle distance between two points in meters
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	la1 := lat1 * math.Pi / 180
	la2 := lat2 * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(la1)*math.Cos(la2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// PlanarBearingDegrees returns atan2(Δlon, Δlat) in degrees, clockwise from north.
// It treats lon/lat as a flat plane, which is close enough for short urban segments
// but is not a geodesic bearing.
func PlanarBearingDegrees(lon1, lat1, lon2, lat2 float64) float64 {
	return math.Atan2(lon2-lon1, lat2-lat1) * 180 / math.Pi
}

// NormalizeDegrees wraps an angle into [0, 360)
func NormalizeDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	// tiny negative remainders round up to exactly 360
	if d >= 360 {
		d = 0
	}
	return d
}

// KmhToMetersPerMs converts a speed in km/h to meters per millisecond
func KmhToMetersPerMs(kmh float64) float64 {
	return kmh / msPerHourPerKm
}

// MetersPerMsToKmh converts a speed in meters per millisecond to km/h
func MetersPerMsToKmh(mPerMs float64) float64 {
	return mPerMs * msPerHourPerKm
}

// IsFinite reports whether f is neither NaN nor infinite
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
