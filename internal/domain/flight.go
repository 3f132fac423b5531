package domain

import "time"

type FlightStatus string

const (
	StatusScheduled FlightStatus = "scheduled"
	StatusActive    FlightStatus = "active"
	StatusLanded    FlightStatus = "landed"
	StatusCancelled FlightStatus = "cancelled"
	StatusDiverted  FlightStatus = "diverted"
	StatusUnknown   FlightStatus = "unknown"
)

// Terminal reports whether the flight can no longer produce live telemetry.
func (s FlightStatus) Terminal() bool {
	return s == StatusLanded || s == StatusCancelled || s == StatusDiverted
}

// AirportLeg is one endpoint of a flight (departure or arrival).
type AirportLeg struct {
	IATA     string
	Name     string
	City     string
	Terminal string

	// Latitude/Longitude are nil until airport enrichment fills them in.
	Latitude  *float64
	Longitude *float64

	ScheduledTime time.Time

	// EstimatedTime holds the actual time once known, otherwise the latest
	// estimate. For departures this is usually the actual out time; for
	// arrivals it is recomputed from live telemetry when available.
	EstimatedTime time.Time
}

// HasCoordinates reports whether both latitude and longitude are known.
func (l AirportLeg) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// LivePosition is the canonical live-telemetry shape, normalized to
// feet/knots/degrees regardless of which source produced it.
type LivePosition struct {
	Latitude  float64
	Longitude float64

	AltitudeFeet     *float64
	GroundSpeedKnots *float64
	HeadingDegrees   *float64

	// OnGround is nil when no source reported or implied a ground state.
	OnGround *bool
}

// ConfirmedOnGround reports whether a source explicitly or by inference
// placed the aircraft on the ground. Unknown counts as not confirmed.
func (p LivePosition) ConfirmedOnGround() bool {
	return p.OnGround != nil && *p.OnGround
}

// FlightRecord is the canonical resolved flight. It is owned by the request
// that produced it and never shared.
type FlightRecord struct {
	FlightNumber string
	Airline      string
	Aircraft     *string
	Status       FlightStatus

	// ICAO24 is the aircraft's Mode S hex address when the schedule provider
	// supplied one; it keys exact-identity lookups against the live tracker.
	ICAO24 string

	Departure AirportLeg
	Arrival   AirportLeg

	Live *LivePosition

	// Progress is the fraction of the route completed, in [0,1].
	Progress *float64

	// ArrivedAt is the provider-reported actual landing time, if any.
	ArrivedAt *time.Time

	Demo bool
}
