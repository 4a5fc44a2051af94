package formatter

import (
	"strconv"
	"strings"

	"github.com/theoremus-urban-solutions/bus-route-animator/siri"
)

// BuildXML serializes a SIRI response to XML
func (rb *responseBuilder) BuildXML(res *siri.SiriResponse) []byte {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>")
	b.WriteString("<Siri xmlns=\"http://www.siri.org.uk/siri\" version=\"2.0\">")
	sd := res.Siri.ServiceDelivery
	b.WriteString("<ServiceDelivery>")
	writeElement(&b, "ResponseTimestamp", sd.ResponseTimestamp)
	writeElement(&b, "ProducerRef", sd.ProducerRef)
	for _, vm := range sd.VehicleMonitoringDelivery {
		writeVehicleMonitoringXML(&b, vm)
	}
	// EstimatedTimetableDelivery is never populated for a looping simulation
	b.WriteString("</ServiceDelivery>")
	b.WriteString("</Siri>")
	return []byte(b.String())
}

func writeVehicleMonitoringXML(b *strings.Builder, vm siri.VehicleMonitoring) {
	b.WriteString("<VehicleMonitoringDelivery version=\"2.0\">")
	writeElement(b, "ResponseTimestamp", vm.ResponseTimestamp)
	writeElement(b, "ValidUntil", vm.ValidUntil)
	for _, va := range vm.VehicleActivity {
		b.WriteString("<VehicleActivity>")
		writeElement(b, "RecordedAtTime", va.RecordedAtTime)
		writeElement(b, "ValidUntilTime", va.ValidUntilTime)
		writeMVJXML(b, va.MonitoredVehicleJourney)
		b.WriteString("</VehicleActivity>")
	}
	b.WriteString("</VehicleMonitoringDelivery>")
}

func writeMVJXML(b *strings.Builder, mvj siri.MonitoredVehicleJourney) {
	b.WriteString("<MonitoredVehicleJourney>")
	writeElement(b, "LineRef", mvj.LineRef)
	writeElement(b, "DirectionRef", mvj.DirectionRef)
	writeElement(b, "VehicleMode", mvj.VehicleMode)
	writeElement(b, "PublishedLineName", mvj.PublishedLineName)
	writeElement(b, "OperatorRef", mvj.OperatorRef)
	b.WriteString("<Monitored>")
	b.WriteString(strconv.FormatBool(mvj.Monitored))
	b.WriteString("</Monitored>")
	// DataSource (SIRI-VM: required)
	writeElement(b, "DataSource", mvj.DataSource)
	if loc := mvj.VehicleLocation; loc != nil {
		b.WriteString("<VehicleLocation>")
		b.WriteString("<Longitude>")
		b.WriteString(strconv.FormatFloat(loc.Longitude, 'f', 6, 64))
		b.WriteString("</Longitude>")
		b.WriteString("<Latitude>")
		b.WriteString(strconv.FormatFloat(loc.Latitude, 'f', 6, 64))
		b.WriteString("</Latitude>")
		b.WriteString("</VehicleLocation>")
	}
	if mvj.Bearing != nil {
		b.WriteString("<Bearing>")
		b.WriteString(strconv.FormatFloat(*mvj.Bearing, 'f', 2, 64))
		b.WriteString("</Bearing>")
	}
	if mvj.Velocity != nil {
		b.WriteString("<Velocity>")
		b.WriteString(strconv.Itoa(*mvj.Velocity))
		b.WriteString("</Velocity>")
	}
	writeElement(b, "Delay", mvj.Delay)
	writeElement(b, "VehicleRef", mvj.VehicleRef)
	b.WriteString("<IsCompleteStopSequence>")
	b.WriteString(strconv.FormatBool(mvj.IsCompleteStopSequence))
	b.WriteString("</IsCompleteStopSequence>")
	if ext := mvj.Extensions; ext != nil {
		b.WriteString("<Extensions>")
		b.WriteString("<Progress>")
		b.WriteString(strconv.FormatFloat(ext.Progress, 'f', 6, 64))
		b.WriteString("</Progress>")
		b.WriteString("<RouteLength>")
		b.WriteString(strconv.FormatFloat(ext.RouteLengthM, 'f', 1, 64))
		b.WriteString("</RouteLength>")
		b.WriteString("</Extensions>")
	}
	b.WriteString("</MonitoredVehicleJourney>")
}

// writeElement writes <name>value</name>, skipping empty values
func writeElement(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	b.WriteString("<")
	b.WriteString(name)
	b.WriteString(">")
	b.WriteString(xmlEscape(value))
	b.WriteString("</")
	b.WriteString(name)
	b.WriteString(">")
}

func xmlEscape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&apos;",
	)
	return replacer.Replace(s)
}
