package domain

import "time"

// RawCandidate carries the evidence extracted from one provider row for a
// queried flight number. Providers often return several rows for the same
// designator (yesterday's leg, today's leg, a codeshare); the evidence here
// is what candidate selection ranks them by. Candidates live only for the
// duration of a request.
type RawCandidate struct {
	HasLivePosition   bool
	ConfirmedAirborne bool

	DepartedActual *time.Time
	ArrivedActual  *time.Time

	// StatusLabel is the provider row's status, lowercased. Providers whose
	// status vocabulary is prose map it to a canonical label first.
	StatusLabel string
}

// Candidate pairs the scoring evidence with the record the provider row maps
// to, plus an opaque provider handle for follow-up calls (e.g. a separate
// position fetch).
type Candidate struct {
	Evidence RawCandidate
	Record   FlightRecord

	// Ref is a provider-native identifier for this row, if the provider
	// needs one to fetch telemetry separately.
	Ref string
}

// StateVector is a live aircraft telemetry record from a tracking source,
// in the source's native units.
type StateVector struct {
	ICAO24   string
	Callsign string

	Latitude  *float64
	Longitude *float64

	// BaroAltitudeM is barometric altitude in meters.
	BaroAltitudeM *float64

	// VelocityMS is ground speed in meters per second.
	VelocityMS *float64

	// TrackDeg is the true track in decimal degrees, clockwise from north.
	TrackDeg *float64

	OnGround bool
}
