package formatter

import (
	"math"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/theoremus-urban-solutions/bus-route-animator/fleet"
	"github.com/theoremus-urban-solutions/bus-route-animator/utils"
)

// BuildVehiclePositionsFeed creates a full-dataset GTFS-RT feed with one
// VehiclePosition entity per vehicle. Speed is in meters per second.
func BuildVehiclePositionsFeed(snap *fleet.Snapshot) *gtfsrtpb.FeedMessage {
	ts := uint64(snap.Timestamp.Unix())
	fm := &gtfsrtpb.FeedMessage{
		Header: &gtfsrtpb.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Incrementality:      gtfsrtpb.FeedHeader_FULL_DATASET.Enum(),
			Timestamp:           proto.Uint64(ts),
		},
	}
	for _, v := range snap.Vehicles {
		direction := uint32(0)
		if v.Reverse() {
			direction = 1
		}
		fm.Entity = append(fm.Entity, &gtfsrtpb.FeedEntity{
			Id: proto.String(v.ID),
			Vehicle: &gtfsrtpb.VehiclePosition{
				Trip: &gtfsrtpb.TripDescriptor{
					RouteId:     proto.String(v.RouteID),
					DirectionId: proto.Uint32(direction),
				},
				Vehicle: &gtfsrtpb.VehicleDescriptor{
					Id:    proto.String(v.ID),
					Label: proto.String(v.RouteName),
				},
				Position: &gtfsrtpb.Position{
					Latitude:  proto.Float32(float32(v.Latitude)),
					Longitude: proto.Float32(float32(v.Longitude)),
					Bearing:   proto.Float32(float32(math.Round(v.TravelHeadingDegrees*100) / 100)),
					Speed:     proto.Float32(float32(utils.KmhToMetersPerMs(v.SpeedKmh) * 1000)),
				},
				CurrentStatus: gtfsrtpb.VehiclePosition_IN_TRANSIT_TO.Enum(),
				Timestamp:     proto.Uint64(ts),
			},
		})
	}
	return fm
}

// MarshalVehiclePositions encodes the feed as protobuf bytes
func MarshalVehiclePositions(snap *fleet.Snapshot) ([]byte, error) {
	return proto.Marshal(BuildVehiclePositionsFeed(snap))
}
