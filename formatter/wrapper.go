package formatter

import (
	"math"
	"strings"
	"time"

	transit "github.com/theoremus-urban-solutions/transit-types/siri"

	"github.com/theoremus-urban-solutions/bus-route-animator/fleet"
	"github.com/theoremus-urban-solutions/bus-route-animator/siri"
	"github.com/theoremus-urban-solutions/bus-route-animator/utils"
)

// VMOptions controls how vehicle activities are referenced
type VMOptions struct {
	// Codespace prefixes LineRef and VehicleRef, e.g. WUHAN:Line:route1
	Codespace string
	// ValidFor is how long a delivery stays valid after its timestamp
	ValidFor time.Duration
}

func (o VMOptions) codespace() string {
	if o.Codespace == "" {
		return "UNKNOWN"
	}
	return o.Codespace
}

// LineRef formats a route id as {codespace}:Line:{route}
func LineRef(codespace, routeID string) string {
	return codespace + ":Line:" + routeID
}

// VehicleRef formats a vehicle id as {codespace}:VehicleRef:{vehicle}
func VehicleRef(codespace, vehicleID string) string {
	return codespace + ":VehicleRef:" + vehicleID
}

// DirectionRef maps the direction of travel to SIRI's 0 (outbound) / 1 (inbound)
func DirectionRef(v fleet.VehicleState) string {
	if v.Reverse() {
		return siri.DirectionInbound
	}
	return siri.DirectionOutbound
}

// BuildServiceDelivery creates a standardized ServiceDelivery wrapper
// with ResponseTimestamp and ProducerRef (codespace)
func BuildServiceDelivery(timestamp time.Time, codespace string) siri.ServiceDelivery {
	if codespace == "" {
		codespace = "UNKNOWN"
	}
	return siri.ServiceDelivery{
		ResponseTimestamp:          utils.Iso8601FromTime(timestamp),
		ProducerRef:                codespace,
		VehicleMonitoringDelivery:  []siri.VehicleMonitoring{},
		EstimatedTimetableDelivery: []transit.EstimatedTimetableDelivery{},
	}
}

// BuildVehicleMonitoring creates one VehicleActivity per vehicle in the snapshot
func BuildVehicleMonitoring(snap *fleet.Snapshot, opts VMOptions) siri.VehicleMonitoring {
	cs := opts.codespace()
	ts := utils.Iso8601FromTime(snap.Timestamp)
	validUntil := utils.ValidUntilFrom(snap.Timestamp, opts.ValidFor)
	if validUntil == "" {
		validUntil = ts
	}

	vm := siri.VehicleMonitoring{
		ResponseTimestamp: ts,
		ValidUntil:        validUntil,
		VehicleActivity:   make([]siri.VehicleActivityEntry, 0, snap.Len()),
	}
	for _, v := range snap.Vehicles {
		bearing := math.Round(v.TravelHeadingDegrees*100) / 100
		velocity := int(math.Round(v.SpeedKmh))
		vm.VehicleActivity = append(vm.VehicleActivity, siri.VehicleActivityEntry{
			RecordedAtTime: ts,
			ValidUntilTime: validUntil,
			MonitoredVehicleJourney: siri.MonitoredVehicleJourney{
				LineRef:           LineRef(cs, v.RouteID),
				DirectionRef:      DirectionRef(v),
				VehicleMode:       "bus",
				PublishedLineName: v.RouteName,
				OperatorRef:       cs,
				Monitored:         true,
				DataSource:        cs,
				VehicleLocation: &siri.VehicleLocation{
					Latitude:  v.Latitude,
					Longitude: v.Longitude,
				},
				Bearing:    &bearing,
				Velocity:   &velocity,
				Delay:      "PT0S",
				VehicleRef: VehicleRef(cs, v.ID),
				Extensions: &siri.Extensions{
					Progress:     v.Progress,
					RouteLengthM: v.LengthMeters,
				},
			},
		})
	}
	return vm
}

// WrapVehicleMonitoringResponse wraps a VM delivery in a complete SIRI response
func WrapVehicleMonitoringResponse(vm siri.VehicleMonitoring, timestamp time.Time, codespace string) *siri.SiriResponse {
	sd := BuildServiceDelivery(timestamp, codespace)
	sd.VehicleMonitoringDelivery = []siri.VehicleMonitoring{vm}

	return &siri.SiriResponse{
		Siri: siri.SiriServiceDelivery{
			ServiceDelivery: sd,
		},
	}
}

// FilterVehicleMonitoring keeps the activities matching every non-empty filter.
// LineRef and VehicleRef match on substrings, DirectionRef exactly.
func FilterVehicleMonitoring(vm siri.VehicleMonitoring, lineRef, vehicleRef, directionRef string) siri.VehicleMonitoring {
	lineRef = strings.ToLower(strings.TrimSpace(lineRef))
	vehicleRef = strings.ToLower(strings.TrimSpace(vehicleRef))
	directionRef = strings.TrimSpace(directionRef)

	filtered := siri.VehicleMonitoring{
		ResponseTimestamp: vm.ResponseTimestamp,
		ValidUntil:        vm.ValidUntil,
		VehicleActivity:   []siri.VehicleActivityEntry{},
	}
	for _, va := range vm.VehicleActivity {
		mvj := va.MonitoredVehicleJourney
		if lineRef != "" && !strings.Contains(strings.ToLower(mvj.LineRef), lineRef) {
			continue
		}
		if vehicleRef != "" && !strings.Contains(strings.ToLower(mvj.VehicleRef), vehicleRef) {
			continue
		}
		if directionRef != "" && mvj.DirectionRef != directionRef {
			continue
		}
		filtered.VehicleActivity = append(filtered.VehicleActivity, va)
	}
	return filtered
}
