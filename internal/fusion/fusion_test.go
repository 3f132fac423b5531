package fusion

import (
	"context"
	"errors"
	"testing"

	"github.com/mottavibrannon/runway/internal/domain"
)

func ptr(v float64) *float64 { return &v }

type fakeTracker struct {
	byICAO  []domain.StateVector
	byBox   []domain.StateVector
	icaoErr error
	boxErr  error

	gotICAO24 string
	gotBox    [4]float64
	boxCalled bool
}

func (f *fakeTracker) StatesByICAO24(_ context.Context, icao24 string) ([]domain.StateVector, error) {
	f.gotICAO24 = icao24
	return f.byICAO, f.icaoErr
}

func (f *fakeTracker) StatesInBox(_ context.Context, minLat, minLon, maxLat, maxLon float64) ([]domain.StateVector, error) {
	f.boxCalled = true
	f.gotBox = [4]float64{minLat, minLon, maxLat, maxLon}
	return f.byBox, f.boxErr
}

func activeRecord() domain.FlightRecord {
	return domain.FlightRecord{
		FlightNumber: "UA1",
		Status:       domain.StatusActive,
		Departure: domain.AirportLeg{
			IATA: "EWR", Latitude: ptr(40.689), Longitude: ptr(-74.174),
		},
		Arrival: domain.AirportLeg{
			IATA: "SFO", Latitude: ptr(37.619), Longitude: ptr(-122.374),
		},
	}
}

func airborneVector(icao24, callsign string) domain.StateVector {
	return domain.StateVector{
		ICAO24:        icao24,
		Callsign:      callsign,
		Latitude:      ptr(41.2),
		Longitude:     ptr(-88.1),
		BaroAltitudeM: ptr(10972.0),
		VelocityMS:    ptr(267.0),
		TrackDeg:      ptr(270.0),
	}
}

func TestEnrich_ICAO24Match(t *testing.T) {
	tracker := &fakeTracker{byICAO: []domain.StateVector{airborneVector("a71cb2", "UAL1  ")}}
	engine := New(tracker)

	record := activeRecord()
	record.ICAO24 = "A71CB2"

	strategy := engine.Enrich(context.Background(), &record)
	if strategy != "icao24" {
		t.Fatalf("strategy = %q, want icao24", strategy)
	}
	if tracker.gotICAO24 != "A71CB2" {
		t.Errorf("queried icao24 = %q", tracker.gotICAO24)
	}
	if record.Live == nil {
		t.Fatal("Live not attached")
	}
	if record.Live.Latitude != 41.2 {
		t.Errorf("Latitude = %v", record.Live.Latitude)
	}
	if record.Live.GroundSpeedKnots == nil || *record.Live.GroundSpeedKnots < 515 || *record.Live.GroundSpeedKnots > 525 {
		t.Errorf("GroundSpeedKnots = %v, want ~519 (267 m/s)", record.Live.GroundSpeedKnots)
	}
	if tracker.boxCalled {
		t.Error("bounding box queried despite exact identity hit")
	}
}

func TestEnrich_CallsignFallback(t *testing.T) {
	tracker := &fakeTracker{
		byBox: []domain.StateVector{
			airborneVector("ffffff", "DAL200  "), // wrong airline
			airborneVector("a71cb2", "UAL1    "),
		},
	}
	engine := New(tracker)

	record := activeRecord() // no ICAO24: strategy A unavailable

	strategy := engine.Enrich(context.Background(), &record)
	if strategy != "callsign" {
		t.Fatalf("strategy = %q, want callsign", strategy)
	}
	if record.Live == nil {
		t.Fatal("Live not attached")
	}

	// Box must span both endpoints with the margin applied.
	box := tracker.gotBox
	if box[0] > 37.619-2.9 || box[1] > -122.374-2.9 || box[2] < 40.689+2.9 || box[3] < -74.174+2.9 {
		t.Errorf("bounding box = %v does not cover the padded route", box)
	}
}

func TestEnrich_CallsignRequiresCoordinates(t *testing.T) {
	tracker := &fakeTracker{byBox: []domain.StateVector{airborneVector("a71cb2", "UAL1")}}
	engine := New(tracker)

	record := activeRecord()
	record.Arrival.Latitude = nil // no box without both endpoints

	if strategy := engine.Enrich(context.Background(), &record); strategy != "none" {
		t.Errorf("strategy = %q, want none", strategy)
	}
	if tracker.boxCalled {
		t.Error("bounding box queried without both endpoints")
	}
}

func TestEnrich_UnknownAirlinePrefix(t *testing.T) {
	tracker := &fakeTracker{}
	engine := New(tracker)

	record := activeRecord()
	record.FlightNumber = "ZZ999"

	if strategy := engine.Enrich(context.Background(), &record); strategy != "none" {
		t.Errorf("strategy = %q, want none", strategy)
	}
}

func TestEnrich_SkipsWhenAlreadyAirborne(t *testing.T) {
	tracker := &fakeTracker{}
	engine := New(tracker)

	record := activeRecord()
	record.Live = &domain.LivePosition{Latitude: 1, Longitude: 2}

	if strategy := engine.Enrich(context.Background(), &record); strategy != "skipped" {
		t.Errorf("strategy = %q, want skipped", strategy)
	}
}

func TestEnrich_ReplacesOnGroundTelemetry(t *testing.T) {
	// A record stuck with gate telemetry gets another chance at the tracker.
	tracker := &fakeTracker{byICAO: []domain.StateVector{airborneVector("a71cb2", "UAL1")}}
	engine := New(tracker)

	onGround := true
	record := activeRecord()
	record.ICAO24 = "A71CB2"
	record.Live = &domain.LivePosition{Latitude: 40.69, Longitude: -74.17, OnGround: &onGround}

	if strategy := engine.Enrich(context.Background(), &record); strategy != "icao24" {
		t.Fatalf("strategy = %q, want icao24", strategy)
	}
	if record.Live.Latitude != 41.2 {
		t.Errorf("Latitude = %v, want tracker fix", record.Live.Latitude)
	}
}

func TestEnrich_FusesScheduledStatus(t *testing.T) {
	// Schedule feeds lag reality; a flight still labelled scheduled may
	// already be broadcasting from cruise altitude.
	tracker := &fakeTracker{byICAO: []domain.StateVector{airborneVector("a71cb2", "UAL1")}}
	engine := New(tracker)

	record := activeRecord()
	record.Status = domain.StatusScheduled
	record.ICAO24 = "A71CB2"

	if strategy := engine.Enrich(context.Background(), &record); strategy != "icao24" {
		t.Errorf("strategy = %q, want icao24", strategy)
	}
}

func TestEnrich_IgnoresOnGroundVectors(t *testing.T) {
	grounded := airborneVector("a71cb2", "UAL1")
	grounded.OnGround = true
	tracker := &fakeTracker{byICAO: []domain.StateVector{grounded}}
	engine := New(tracker)

	record := activeRecord()
	record.ICAO24 = "A71CB2"

	if strategy := engine.Enrich(context.Background(), &record); strategy != "none" {
		t.Errorf("strategy = %q, want none", strategy)
	}
	if record.Live != nil {
		t.Error("on-ground vector attached as live telemetry")
	}
}

func TestEnrich_SkipsTerminalStatuses(t *testing.T) {
	for _, status := range []domain.FlightStatus{
		domain.StatusLanded, domain.StatusCancelled, domain.StatusDiverted,
	} {
		tracker := &fakeTracker{byICAO: []domain.StateVector{airborneVector("a71cb2", "UAL1")}}
		engine := New(tracker)

		record := activeRecord()
		record.Status = status
		record.ICAO24 = "A71CB2"

		if strategy := engine.Enrich(context.Background(), &record); strategy != "skipped" {
			t.Errorf("status %s: strategy = %q, want skipped", status, strategy)
		}
		if record.Live != nil {
			t.Errorf("status %s: Live attached", status)
		}
	}
}

func TestEnrich_TrackerErrorDegradesToNone(t *testing.T) {
	tracker := &fakeTracker{
		icaoErr: errors.New("tracker down"),
		boxErr:  errors.New("tracker down"),
	}
	engine := New(tracker)

	record := activeRecord()
	record.ICAO24 = "A71CB2"

	if strategy := engine.Enrich(context.Background(), &record); strategy != "none" {
		t.Errorf("strategy = %q, want none", strategy)
	}
}

func TestEnrich_IgnoresVectorsWithoutPosition(t *testing.T) {
	noCoords := domain.StateVector{ICAO24: "a71cb2", Callsign: "UAL1"}
	tracker := &fakeTracker{byICAO: []domain.StateVector{noCoords}}
	engine := New(tracker)

	record := activeRecord()
	record.ICAO24 = "A71CB2"

	if strategy := engine.Enrich(context.Background(), &record); strategy != "none" {
		t.Errorf("strategy = %q, want none", strategy)
	}
}
