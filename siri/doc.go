// Package siri defines the SIRI (Service Interface for Real-time Information)
// Vehicle Monitoring types published for the animated buses.
//
// SIRI is a European standard (CEN/TS 15531) for real-time public transport
// information. Only the VehicleMonitoringDelivery (VM) module is produced here;
// the envelope keeps an always-empty EstimatedTimetableDelivery so clients that
// expect the full ServiceDelivery shape keep working.
package siri
