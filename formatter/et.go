package formatter

import (
	"fmt"
	"math"
	"time"

	transit "github.com/theoremus-urban-solutions/transit-types/siri"

	"github.com/theoremus-urban-solutions/bus-route-animator/fleet"
	"github.com/theoremus-urban-solutions/bus-route-animator/siri"
	"github.com/theoremus-urban-solutions/bus-route-animator/utils"
)

// StopPointRef names a route vertex as {codespace}:Quay:{route}-{index}
func StopPointRef(codespace, routeID string, index int) string {
	return fmt.Sprintf("%s:Quay:%s-%d", codespace, routeID, index)
}

// BuildEstimatedTimetable creates one EstimatedVehicleJourney per vehicle for
// its current leg. Every route vertex is a call: vertices already passed on
// this leg are RecordedCalls, the rest EstimatedCalls. Times follow from the
// progress and speed; a stopped bus gets calls without times.
func BuildEstimatedTimetable(snap *fleet.Snapshot, opts VMOptions) transit.EstimatedTimetableDelivery {
	cs := opts.codespace()
	ts := utils.Iso8601FromTime(snap.Timestamp)

	journeys := make([]transit.EstimatedVehicleJourney, 0, snap.Len())
	for _, v := range snap.Vehicles {
		if v.Waypoints < 2 {
			continue
		}
		journeys = append(journeys, buildEstimatedVehicleJourney(v, snap.Timestamp, cs))
	}

	return transit.EstimatedTimetableDelivery{
		Version:           "2.0",
		ResponseTimestamp: ts,
		EstimatedJourneyVersionFrame: []transit.EstimatedJourneyVersionFrame{{
			RecordedAtTime:          ts,
			EstimatedVehicleJourney: journeys,
		}},
	}
}

func buildEstimatedVehicleJourney(v fleet.VehicleState, at time.Time, cs string) transit.EstimatedVehicleJourney {
	n := v.Waypoints
	step := 1 / float64(n-1)
	// route fraction per ms; 0 when the bus is stopped
	speed := 0.0
	if v.LengthMeters > 0 {
		speed = utils.KmhToMetersPerMs(v.SpeedKmh) / v.LengthMeters
	}
	callTime := func(fractionAhead float64) string {
		if !(speed > 0) {
			return ""
		}
		ms := fractionAhead / speed
		return utils.Iso8601FromTime(at.Add(time.Duration(math.Round(ms)) * time.Millisecond))
	}

	origin, destination := "0", fmt.Sprint(n-1)
	if v.Reverse() {
		origin, destination = destination, origin
	}

	recorded := []transit.RecordedCall{}
	estimated := []transit.EstimatedCall{}
	for order := 1; order <= n; order++ {
		idx := order - 1
		if v.Reverse() {
			idx = n - order
		}
		// distance ahead along the current leg, negative once passed
		ahead := float64(idx)*step - v.Progress
		if v.Reverse() {
			ahead = -ahead
		}
		ref := StopPointRef(cs, v.RouteID, idx)
		name := fmt.Sprintf("%s #%d", v.RouteName, idx)
		if ahead <= 0 {
			t := callTime(ahead)
			recorded = append(recorded, transit.RecordedCall{
				StopPointRef:        ref,
				Order:               order,
				StopPointName:       name,
				ActualArrivalTime:   t,
				ActualDepartureTime: t,
			})
			continue
		}
		t := callTime(ahead)
		estimated = append(estimated, transit.EstimatedCall{
			StopPointRef:          ref,
			Order:                 order,
			StopPointName:         name,
			ExpectedArrivalTime:   t,
			ExpectedDepartureTime: t,
		})
	}

	direction := DirectionRef(v)
	return transit.EstimatedVehicleJourney{
		RecordedAtTime: utils.Iso8601FromTime(at),
		LineRef:        LineRef(cs, v.RouteID),
		DirectionRef:   direction,
		FramedVehicleJourneyRef: transit.FramedVehicleJourneyRef{
			DataFrameRef:           at.UTC().Format("2006-01-02"),
			DatedVehicleJourneyRef: cs + ":ServiceJourney:" + v.ID + "-" + direction,
		},
		VehicleRef:             VehicleRef(cs, v.ID),
		VehicleMode:            "bus",
		OriginName:             fmt.Sprintf("%s #%s", v.RouteName, origin),
		DestinationName:        fmt.Sprintf("%s #%s", v.RouteName, destination),
		Monitored:              true,
		DataSource:             cs,
		OperatorRef:            cs,
		RecordedCalls:          recorded,
		EstimatedCalls:         estimated,
		IsCompleteStopSequence: true,
	}
}

// WrapEstimatedTimetableResponse wraps an ET delivery in a complete SIRI response
func WrapEstimatedTimetableResponse(et transit.EstimatedTimetableDelivery, timestamp time.Time, codespace string) *siri.SiriResponse {
	sd := BuildServiceDelivery(timestamp, codespace)
	sd.EstimatedTimetableDelivery = []transit.EstimatedTimetableDelivery{et}

	return &siri.SiriResponse{
		Siri: siri.SiriServiceDelivery{
			ServiceDelivery: sd,
		},
	}
}
