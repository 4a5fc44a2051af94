// Package formatter turns fleet snapshots into the published feeds.
//
// This package is organized into:
// - wrapper.go: SIRI-VM building, ServiceDelivery wrapping and filtering
// - json.go: JSON serialization
// - xml.go: XML serialization with proper escaping
// - gtfsrt.go: GTFS-Realtime VehiclePositions feed
// - geojson.go: GeoJSON route lines and vehicle points for map sources
//
// SIRI XML is written by hand for precise control over element order.
package formatter
