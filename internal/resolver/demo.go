package resolver

import (
	"time"

	"github.com/mottavibrannon/runway/internal/domain"
)

// DemoHint is appended to not-found responses so first-time users have
// something to try.
const DemoHint = "Try BA178, AA100, QF1, EK202 or UA1."

// demoFixture describes one canned flight. Schedule offsets are hours
// relative to request time so the demo always looks mid-flight.
type demoFixture struct {
	flightNumber string
	airline      string
	aircraft     string

	dep, arr demoLeg

	latitude  float64
	longitude float64
	altitude  float64 // feet
	speed     float64 // knots
	heading   float64

	progress float64
}

type demoLeg struct {
	iata, name, city string
	lat, lon         float64
	terminal         string
	scheduledOffsetH float64
	estimatedOffsetH float64
}

var demoFixtures = map[string]demoFixture{
	"BA178": {
		flightNumber: "BA 178", airline: "British Airways", aircraft: "B77W",
		dep: demoLeg{"LHR", "London Heathrow", "London", 51.477, -0.461, "T5", -4.8, -4.8},
		arr: demoLeg{"JFK", "J.F. Kennedy Intl", "New York", 40.641, -73.778, "T7", 3.2, 3.4},
		latitude: 52.1, longitude: -32.4, altitude: 36000, speed: 548, heading: 272,
		progress: 0.60,
	},
	"AA100": {
		flightNumber: "AA 100", airline: "American Airlines", aircraft: "B77W",
		dep: demoLeg{"JFK", "J.F. Kennedy Intl", "New York", 40.641, -73.778, "T8", -2.5, -2.5},
		arr: demoLeg{"LAX", "Los Angeles Intl", "Los Angeles", 33.942, -118.408, "T4", 3.8, 3.8},
		latitude: 39.8, longitude: -97.5, altitude: 37000, speed: 532, heading: 266,
		progress: 0.40,
	},
	"QF1": {
		flightNumber: "QF 1", airline: "Qantas Airways", aircraft: "A388",
		dep: demoLeg{"SYD", "Sydney Airport", "Sydney", -33.946, 151.177, "T1", -7, -7},
		arr: demoLeg{"LAX", "Los Angeles Intl", "Los Angeles", 33.942, -118.408, "T4", 6.5, 6.2},
		latitude: 20.5, longitude: -155.2, altitude: 38000, speed: 565, heading: 54,
		progress: 0.52,
	},
	"EK202": {
		flightNumber: "EK 202", airline: "Emirates", aircraft: "A388",
		dep: demoLeg{"DXB", "Dubai International", "Dubai", 25.253, 55.365, "T3", -9, -9},
		arr: demoLeg{"JFK", "J.F. Kennedy Intl", "New York", 40.641, -73.778, "T4", 5.2, 5.0},
		latitude: 48.2, longitude: 15.8, altitude: 39000, speed: 558, heading: 298,
		progress: 0.63,
	},
	"UA1": {
		flightNumber: "UA 1", airline: "United Airlines", aircraft: "B789",
		dep: demoLeg{"EWR", "Newark Liberty Intl", "Newark", 40.689, -74.174, "C", -1.2, -1.2},
		arr: demoLeg{"SFO", "San Francisco Intl", "San Francisco", 37.619, -122.374, "3", 4.3, 4.3},
		latitude: 41.2, longitude: -88.1, altitude: 36000, speed: 520, heading: 270,
		progress: 0.22,
	},
}

// demoFlight materializes the fixture for a normalized ident, if one exists.
func demoFlight(ident string, now time.Time) (domain.FlightRecord, bool) {
	f, ok := demoFixtures[ident]
	if !ok {
		return domain.FlightRecord{}, false
	}

	aircraft := f.aircraft
	onGround := false
	record := domain.FlightRecord{
		FlightNumber: f.flightNumber,
		Airline:      f.airline,
		Aircraft:     &aircraft,
		Status:       domain.StatusActive,
		Departure:    f.dep.leg(now),
		Arrival:      f.arr.leg(now),
		Live: &domain.LivePosition{
			Latitude:         f.latitude,
			Longitude:        f.longitude,
			AltitudeFeet:     &f.altitude,
			GroundSpeedKnots: &f.speed,
			HeadingDegrees:   &f.heading,
			OnGround:         &onGround,
		},
		Progress: &f.progress,
		Demo:     true,
	}
	return record, true
}

func (l demoLeg) leg(now time.Time) domain.AirportLeg {
	lat, lon := l.lat, l.lon
	return domain.AirportLeg{
		IATA:          l.iata,
		Name:          l.name,
		City:          l.city,
		Terminal:      l.terminal,
		Latitude:      &lat,
		Longitude:     &lon,
		ScheduledTime: now.Add(offset(l.scheduledOffsetH)),
		EstimatedTime: now.Add(offset(l.estimatedOffsetH)),
	}
}

func offset(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour))
}
