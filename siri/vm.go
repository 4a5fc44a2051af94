package siri

// Direction references used for the two directions of travel along a route
const (
	DirectionOutbound = "0"
	DirectionInbound  = "1"
)

// VehicleMonitoring represents the VehicleMonitoring delivery
type VehicleMonitoring struct {
	ResponseTimestamp string                 `json:"ResponseTimestamp"`
	ValidUntil        string                 `json:"ValidUntil"`
	VehicleActivity   []VehicleActivityEntry `json:"VehicleActivity"`
}

// VehicleActivityEntry represents a single vehicle's activity
type VehicleActivityEntry struct {
	RecordedAtTime          string                  `json:"RecordedAtTime"`
	ValidUntilTime          string                  `json:"ValidUntilTime,omitempty"`
	MonitoredVehicleJourney MonitoredVehicleJourney `json:"MonitoredVehicleJourney"`
}

// MonitoredVehicleJourney contains details about a monitored vehicle journey
type MonitoredVehicleJourney struct {
	LineRef                string           `json:"LineRef"`
	DirectionRef           string           `json:"DirectionRef"`
	VehicleMode            string           `json:"VehicleMode,omitempty"`
	PublishedLineName      string           `json:"PublishedLineName,omitempty"`
	OperatorRef            string           `json:"OperatorRef,omitempty"`
	Monitored              bool             `json:"Monitored"`
	DataSource             string           `json:"DataSource"`
	VehicleLocation        *VehicleLocation `json:"VehicleLocation,omitempty"`
	Bearing                *float64         `json:"Bearing,omitempty"`
	Velocity               *int             `json:"Velocity,omitempty"`
	Delay                  string           `json:"Delay,omitempty"`
	VehicleRef             string           `json:"VehicleRef"`
	IsCompleteStopSequence bool             `json:"IsCompleteStopSequence"`
	Extensions             *Extensions      `json:"Extensions,omitempty"`
}

// VehicleLocation represents the geographical location of a vehicle
type VehicleLocation struct {
	Latitude  float64 `json:"Latitude"`
	Longitude float64 `json:"Longitude"`
}

// Extensions carries the route progress, which has no standard SIRI-VM element
type Extensions struct {
	Progress     float64 `json:"Progress"`
	RouteLengthM float64 `json:"RouteLength"`
}
