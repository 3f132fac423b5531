// Package position maps heterogeneous provider telemetry payloads into the
// canonical LivePosition shape. Each source reports altitude and speed in its
// own units; everything normalizes to feet and knots.
package position

import "github.com/mottavibrannon/runway/internal/domain"

// SourceKind identifies the unit conventions of a telemetry source.
type SourceKind string

const (
	// SourceFlightLevel reports altitude in flight levels (hundreds of
	// feet) and speed already in knots. AeroAPI positions use this.
	SourceFlightLevel SourceKind = "flight-level"

	// SourceAviationstack reports altitude in meters and speed in km/h.
	SourceAviationstack SourceKind = "aviationstack"

	// SourceOpenSky reports altitude in meters and speed in m/s.
	SourceOpenSky SourceKind = "opensky"
)

const (
	feetPerMeter  = 3.281
	feetPerFL     = 100.0
	knotsPerKmh   = 0.539957
	knotsPerMps   = 1.94384

	// Ground-inference thresholds applied to the raw altitude value, in the
	// source's native unit. They reflect each source's noise floor: a
	// flight-level feed under FL10 or a metric feed under 100m is parked
	// or taxiing as far as fusion is concerned.
	groundThresholdFL     = 10.0
	groundThresholdMeters = 100.0
)

// Payload is a provider-native position before unit normalization. Fields
// are nil when the provider omitted them.
type Payload struct {
	Latitude  *float64
	Longitude *float64
	Altitude  *float64
	Speed     *float64
	Heading   *float64
	OnGround  *bool
}

// Normalize converts a provider payload into the canonical LivePosition.
// Returns nil when latitude or longitude is missing: a position without
// coordinates is not usable.
func Normalize(p Payload, kind SourceKind) *domain.LivePosition {
	if p.Latitude == nil || p.Longitude == nil {
		return nil
	}

	pos := &domain.LivePosition{
		Latitude:  *p.Latitude,
		Longitude: *p.Longitude,
	}

	if p.Altitude != nil {
		feet := altitudeFeet(*p.Altitude, kind)
		pos.AltitudeFeet = &feet
	}
	if p.Speed != nil {
		knots := speedKnots(*p.Speed, kind)
		pos.GroundSpeedKnots = &knots
	}
	if p.Heading != nil {
		heading := *p.Heading
		pos.HeadingDegrees = &heading
	}

	switch {
	case p.OnGround != nil:
		onGround := *p.OnGround
		pos.OnGround = &onGround
	case p.Altitude != nil:
		onGround := *p.Altitude < groundThreshold(kind)
		pos.OnGround = &onGround
	}

	return pos
}

// FromStateVector normalizes a tracker state vector. The vector's explicit
// ground flag always wins over altitude inference.
func FromStateVector(sv domain.StateVector) *domain.LivePosition {
	onGround := sv.OnGround
	return Normalize(Payload{
		Latitude:  sv.Latitude,
		Longitude: sv.Longitude,
		Altitude:  sv.BaroAltitudeM,
		Speed:     sv.VelocityMS,
		Heading:   sv.TrackDeg,
		OnGround:  &onGround,
	}, SourceOpenSky)
}

func altitudeFeet(raw float64, kind SourceKind) float64 {
	switch kind {
	case SourceFlightLevel:
		return raw * feetPerFL
	default:
		return raw * feetPerMeter
	}
}

func speedKnots(raw float64, kind SourceKind) float64 {
	switch kind {
	case SourceFlightLevel:
		return raw // already knots
	case SourceAviationstack:
		return raw * knotsPerKmh
	default:
		return raw * knotsPerMps
	}
}

func groundThreshold(kind SourceKind) float64 {
	if kind == SourceFlightLevel {
		return groundThresholdFL
	}
	return groundThresholdMeters
}
