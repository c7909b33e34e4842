// Package adsb turns readsb-style aircraft JSON (the format served by
// adsb.lol, airplanes.live and friends) into typed aircraft records.
//
// The upstream feed is not schema stable: the same field arrives as an
// integer, a float or a numeric string depending on the API revision. Every
// unstable field goes through pkg/flex, and whole responses go through a
// fallback chain (see Parser) so that one corrupt aircraft never costs the
// rest of the batch.
package adsb

import (
	"strings"

	"github.com/unklstewy/adsb-tracker/pkg/coordinates"
)

// FeederType classifies what kind of contact a record describes.
type FeederType string

const (
	FeederAircraft      FeederType = "aircraft"
	FeederTower         FeederType = "tower"
	FeederGroundStation FeederType = "ground_station"
	FeederGroundVehicle FeederType = "ground_vehicle"
)

// Special transponder codes.
const (
	SquawkHijack       = "7500"
	SquawkRadioFailure = "7600"
	SquawkEmergency    = "7700"
)

// Aircraft is one tracked contact. Hex is the identity and cache key; every
// other field is optional and nil/empty when the feed omitted it or sent a
// value that could not be coerced.
// All position data is in WGS84 coordinate system.
type Aircraft struct {
	// Hex is the ICAO 24-bit address, lowercase (e.g., "a12345")
	Hex string `json:"hex"`

	// Type is the message source type reported by the feed (adsb_icao, mlat, ...)
	Type string `json:"type,omitempty"`

	// Flight is the raw callsign, possibly padded with spaces
	Flight string `json:"flight,omitempty"`

	// Registration is the tail number (wire field "r")
	Registration string `json:"registration,omitempty"`

	// TypeDesignator is the ICAO aircraft type (wire field "t", e.g. "B738")
	TypeDesignator string `json:"type_designator,omitempty"`

	// Category is the ADS-B emitter category (A0-A7, B*, C*)
	Category string `json:"category,omitempty"`

	Squawk    string `json:"squawk,omitempty"`
	Emergency string `json:"emergency,omitempty"`

	// Latitude/Longitude in decimal degrees
	Lat *float64 `json:"lat,omitempty"`
	Lon *float64 `json:"lon,omitempty"`

	// AltBaro is barometric altitude in feet. Absent when the feed reports
	// "ground"; OnGround is set instead.
	AltBaro *int64 `json:"alt_baro,omitempty"`

	// AltGeom is geometric (GNSS) altitude in feet
	AltGeom *int64 `json:"alt_geom,omitempty"`

	OnGround bool `json:"on_ground,omitempty"`

	// GroundSpeed in knots
	GroundSpeed *float64 `json:"gs,omitempty"`

	// Track is the ground track in degrees (0-359)
	Track *float64 `json:"track,omitempty"`

	// IAS/TAS in knots
	IAS  *int64   `json:"ias,omitempty"`
	TAS  *int64   `json:"tas,omitempty"`
	Mach *float64 `json:"mach,omitempty"`

	// BaroRate/GeomRate are vertical rates in feet/minute
	BaroRate *int64 `json:"baro_rate,omitempty"`
	GeomRate *int64 `json:"geom_rate,omitempty"`

	Messages *int64   `json:"messages,omitempty"`
	Seen     *float64 `json:"seen,omitempty"`
	RSSI     *float64 `json:"rssi,omitempty"`

	MLAT     []string `json:"mlat,omitempty"`
	TISB     []string `json:"tisb,omitempty"`
	NavModes []string `json:"nav_modes,omitempty"`

	// Derived at normalization time
	IsEmergency bool       `json:"is_emergency"`
	IsMilitary  bool       `json:"is_military"`
	Feeder      FeederType `json:"feeder_type"`

	// Source is the category the record was last fetched under.
	Source Category `json:"source"`
}

// Callsign returns the flight field without padding.
func (a Aircraft) Callsign() string {
	return strings.TrimSpace(a.Flight)
}

// HasPosition reports whether both latitude and longitude are known.
func (a Aircraft) HasPosition() bool {
	return a.Lat != nil && a.Lon != nil
}

// Position returns the reported position. ok is false without one.
func (a Aircraft) Position() (pos coordinates.Geographic, ok bool) {
	if !a.HasPosition() {
		return coordinates.Geographic{}, false
	}
	return coordinates.Geographic{Latitude: *a.Lat, Longitude: *a.Lon}, true
}

// SpecialSquawk describes a hijack, radio failure or emergency code, or
// returns "" for any other squawk. It does not affect IsEmergency.
func (a Aircraft) SpecialSquawk() string {
	switch a.Squawk {
	case SquawkHijack:
		return "hijack"
	case SquawkRadioFailure:
		return "radio failure"
	case SquawkEmergency:
		return "emergency"
	default:
		return ""
	}
}

var categoryDescriptions = map[string]string{
	"A0": "No ADS-B Emitter Category Information",
	"A1": "Light Aircraft",
	"A2": "Small Aircraft",
	"A3": "Medium Aircraft",
	"A4": "High Vortex Large Aircraft",
	"A5": "Heavy Aircraft",
	"A6": "High Performance Aircraft",
	"A7": "Rotorcraft",
}

// CategoryDescription returns a human readable emitter category, or the raw
// code when it is not one of A0-A7.
func (a Aircraft) CategoryDescription() string {
	if d, ok := categoryDescriptions[strings.ToUpper(a.Category)]; ok {
		return d + " (" + strings.ToUpper(a.Category) + ")"
	}
	return a.Category
}

// feederTypeFor derives the feeder type from the type designator.
func feederTypeFor(typeDesignator string) FeederType {
	switch {
	case typeDesignator == "":
		return FeederGroundVehicle
	case strings.Contains(typeDesignator, "TWR"):
		return FeederTower
	case strings.Contains(typeDesignator, "GND"):
		return FeederGroundStation
	default:
		return FeederAircraft
	}
}

// emergencyFor reports whether the emergency field signals an emergency.
func emergencyFor(emergency string) bool {
	return emergency != "" && emergency != "none"
}
