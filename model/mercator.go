package model

import (
	"math"

	"cogentcore.org/core/math32"
)

// EarthRadiusMeters is the mean radius used by web map Mercator projections
const EarthRadiusMeters = 6371008.8

// MercatorCoordinate is a position in Web Mercator world units.
// X and Y are in [0,1], Z is altitude in the same units.
type MercatorCoordinate struct {
	X float64
	Y float64
	Z float64
}

func circumferenceAtLatitude(lat float64) float64 {
	return 2 * math.Pi * EarthRadiusMeters * math.Cos(lat*math.Pi/180)
}

// MercatorFromLngLat projects a WGS84 position and an altitude in meters
func MercatorFromLngLat(lon, lat, altitudeMeters float64) MercatorCoordinate {
	return MercatorCoordinate{
		X: (180 + lon) / 360,
		Y: (180 - (180/math.Pi)*math.Log(math.Tan(math.Pi/4+lat*math.Pi/360))) / 360,
		Z: altitudeMeters / circumferenceAtLatitude(lat),
	}
}

// MeterInMercatorUnits returns the length of one meter at the given latitude
func MeterInMercatorUnits(lat float64) float64 {
	return 1 / circumferenceAtLatitude(lat)
}

// Vec3 converts the coordinate for use in a transform
func (c MercatorCoordinate) Vec3() math32.Vector3 {
	return math32.Vec3(float32(c.X), float32(c.Y), float32(c.Z))
}
