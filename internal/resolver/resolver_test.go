package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mottavibrannon/runway/internal/airports"
	"github.com/mottavibrannon/runway/internal/domain"
	"github.com/mottavibrannon/runway/internal/testutil"
)

var now = time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func ptr(v float64) *float64 { return &v }

type fakeProvider struct {
	candidates []domain.Candidate
	candErr    error
	position   *domain.LivePosition
	posErr     error

	gotIdent  string
	posCalled bool
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Candidates(_ context.Context, ident string) ([]domain.Candidate, error) {
	f.gotIdent = ident
	return f.candidates, f.candErr
}

func (f *fakeProvider) Position(_ context.Context, _ domain.Candidate) (*domain.LivePosition, error) {
	f.posCalled = true
	return f.position, f.posErr
}

type fakeFuser struct {
	called bool
	attach *domain.LivePosition
}

func (f *fakeFuser) Enrich(_ context.Context, record *domain.FlightRecord) string {
	f.called = true
	if record.Live == nil && f.attach != nil {
		record.Live = f.attach
		return "icao24"
	}
	return "skipped"
}

type fakeAirports struct {
	table map[string]*airports.Airport
}

func (f *fakeAirports) Airport(_ context.Context, iata string) (*airports.Airport, error) {
	return f.table[iata], nil
}

type fakeBreaker struct {
	allowErr  error
	successes int
	failures  int
}

func (f *fakeBreaker) Allow(string) error   { return f.allowErr }
func (f *fakeBreaker) RecordSuccess(string) { f.successes++ }
func (f *fakeBreaker) RecordFailure(string) { f.failures++ }

func activeCandidate() domain.Candidate {
	dep := now.Add(-2 * time.Hour)
	return domain.Candidate{
		Evidence: domain.RawCandidate{
			DepartedActual: &dep,
			StatusLabel:    "active",
		},
		Record: domain.FlightRecord{
			FlightNumber: "UA1",
			Airline:      "United Airlines",
			Status:       domain.StatusActive,
			Departure: domain.AirportLeg{
				IATA: "EWR", ScheduledTime: now.Add(-2 * time.Hour),
			},
			Arrival: domain.AirportLeg{
				IATA: "SFO", ScheduledTime: now.Add(4 * time.Hour),
				EstimatedTime: now.Add(4 * time.Hour),
			},
		},
		Ref: "ref-1",
	}
}

func TestNormalizeIdent(t *testing.T) {
	tests := []struct{ in, want string }{
		{"ua1", "UA1"},
		{"UA 1", "UA1"},
		{"ba-178", "BA178"},
		{"  ek 202  ", "EK202"},
	}
	for _, tt := range tests {
		if got := NormalizeIdent(tt.in); got != tt.want {
			t.Errorf("NormalizeIdent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolve_DemoWithoutProvider(t *testing.T) {
	r := New(nil).WithClock(clock)

	record, err := r.Resolve(context.Background(), "ua 1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if !record.Demo {
		t.Error("Demo = false, want true")
	}
	if record.FlightNumber != "UA 1" {
		t.Errorf("FlightNumber = %q", record.FlightNumber)
	}
	if record.Status != domain.StatusActive {
		t.Errorf("Status = %q", record.Status)
	}
	if record.Live == nil || record.Live.Latitude != 41.2 {
		t.Errorf("Live = %+v", record.Live)
	}
	if record.Progress == nil || *record.Progress != 0.22 {
		t.Errorf("Progress = %v", record.Progress)
	}
	if record.Arrival.City != "San Francisco" {
		t.Errorf("Arrival.City = %q", record.Arrival.City)
	}

	// Schedule offsets are relative to resolution time.
	wantDep := now.Add(-72 * time.Minute)
	if !record.Departure.ScheduledTime.Equal(wantDep) {
		t.Errorf("Departure.ScheduledTime = %v, want %v", record.Departure.ScheduledTime, wantDep)
	}
}

func TestResolve_NotFound(t *testing.T) {
	r := New(nil).WithClock(clock)

	_, err := r.Resolve(context.Background(), "ZZ999")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestResolve_PicksBestCandidate(t *testing.T) {
	landed := activeCandidate()
	landed.Evidence = domain.RawCandidate{StatusLabel: "landed"}
	landed.Record.Status = domain.StatusLanded

	provider := &fakeProvider{candidates: []domain.Candidate{landed, activeCandidate()}}
	r := New(provider).WithClock(clock)

	record, err := r.Resolve(context.Background(), "UA1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if record.Status != domain.StatusActive {
		t.Errorf("Status = %q, want active (departure evidence beats landed label)", record.Status)
	}
	if record.Demo {
		t.Error("Demo = true for a live resolution")
	}
	if provider.gotIdent != "UA1" {
		t.Errorf("provider queried with %q", provider.gotIdent)
	}
}

func TestResolve_FetchesPositionWhenMissing(t *testing.T) {
	provider := &fakeProvider{
		candidates: []domain.Candidate{activeCandidate()},
		position: &domain.LivePosition{
			Latitude: 41.2, Longitude: -88.1,
			GroundSpeedKnots: ptr(520), OnGround: boolPtr(false),
		},
	}
	r := New(provider).WithClock(clock)

	record, err := r.Resolve(context.Background(), "UA1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !provider.posCalled {
		t.Error("Position not fetched for a record without telemetry")
	}
	if record.Live == nil || record.Live.Latitude != 41.2 {
		t.Errorf("Live = %+v", record.Live)
	}
}

func TestResolve_AirportEnrichmentAndGeodesy(t *testing.T) {
	provider := &fakeProvider{
		candidates: []domain.Candidate{activeCandidate()},
		position: &domain.LivePosition{
			Latitude: 41.2, Longitude: -88.1,
			GroundSpeedKnots: ptr(520), OnGround: boolPtr(false),
		},
	}
	lookup := &fakeAirports{table: map[string]*airports.Airport{
		"EWR": {IATA: "EWR", Name: "Newark Liberty Intl", City: "Newark", Latitude: 40.689, Longitude: -74.174},
		"SFO": {IATA: "SFO", Name: "San Francisco Intl", City: "San Francisco", Latitude: 37.619, Longitude: -122.374},
	}}
	r := New(provider).WithAirports(lookup).WithClock(clock)

	record, err := r.Resolve(context.Background(), "UA1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if !record.Departure.HasCoordinates() || !record.Arrival.HasCoordinates() {
		t.Fatal("legs not enriched with coordinates")
	}
	if record.Arrival.City != "San Francisco" {
		t.Errorf("Arrival.City = %q", record.Arrival.City)
	}

	// Airborne with speed and arrival coordinates: ETA recomputed from
	// distance over ground, replacing the schedule estimate.
	if !record.Arrival.EstimatedTime.After(now) {
		t.Errorf("EstimatedTime = %v, want after now", record.Arrival.EstimatedTime)
	}
	if record.Arrival.EstimatedTime.Equal(now.Add(4 * time.Hour)) {
		t.Error("EstimatedTime unchanged, want telemetry-derived override")
	}

	// Geodesic progress from the live fix, clamped into (0,1).
	if record.Progress == nil {
		t.Fatal("Progress = nil")
	}
	if *record.Progress <= 0 || *record.Progress >= 1 {
		t.Errorf("Progress = %v", *record.Progress)
	}
}

func TestResolve_OnGroundPositionSkipsGeodesicProgress(t *testing.T) {
	// A gate position must not drive the geodesic recompute: near the
	// departure endpoint it would clamp progress to the floor and clobber
	// whatever the schedule says.
	onGround := true
	cand := activeCandidate()
	cand.Record.Live = &domain.LivePosition{
		Latitude: 40.689, Longitude: -74.174,
		OnGround: &onGround,
	}
	provider := &fakeProvider{candidates: []domain.Candidate{cand}}
	lookup := &fakeAirports{table: map[string]*airports.Airport{
		"EWR": {IATA: "EWR", Name: "Newark Liberty Intl", City: "Newark", Latitude: 40.689, Longitude: -74.174},
		"SFO": {IATA: "SFO", Name: "San Francisco Intl", City: "San Francisco", Latitude: 37.619, Longitude: -122.374},
	}}
	clk := testutil.NewFakeClock(now)
	r := New(provider).WithAirports(lookup).WithClock(clk.Now)

	record, err := r.Resolve(testutil.TestContext(t), "UA1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if provider.posCalled {
		t.Error("position fetched despite embedded telemetry")
	}
	if record.Progress == nil {
		t.Fatal("Progress = nil, want schedule fallback")
	}
	// Schedule window is dep now-2h, arr now+4h: a third elapsed.
	if *record.Progress < 0.3 || *record.Progress > 0.4 {
		t.Errorf("Progress = %v, want schedule-derived ~0.33, not a geodesic clamp", *record.Progress)
	}
	if !record.Arrival.EstimatedTime.Equal(now.Add(4 * time.Hour)) {
		t.Errorf("EstimatedTime = %v, want schedule estimate untouched", record.Arrival.EstimatedTime)
	}
}

func TestResolve_FusionInvokedWhenNoTelemetry(t *testing.T) {
	provider := &fakeProvider{candidates: []domain.Candidate{activeCandidate()}}
	fuser := &fakeFuser{attach: &domain.LivePosition{
		Latitude: 41.2, Longitude: -88.1, OnGround: boolPtr(false),
	}}
	r := New(provider).WithFusion(fuser).WithClock(clock)

	record, err := r.Resolve(context.Background(), "UA1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !fuser.called {
		t.Error("fusion engine not invoked")
	}
	if record.Live == nil {
		t.Error("fused telemetry not attached")
	}
}

func TestResolve_ProviderErrorFallsBackToDemo(t *testing.T) {
	provider := &fakeProvider{candErr: errors.New("upstream down")}
	breaker := &fakeBreaker{}
	r := New(provider).WithBreaker(breaker).WithClock(clock)

	record, err := r.Resolve(context.Background(), "UA1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !record.Demo {
		t.Error("expected demo fallback")
	}
	if breaker.failures != 1 {
		t.Errorf("failures = %d, want 1", breaker.failures)
	}
}

func TestResolve_ProviderErrorUnknownIdent(t *testing.T) {
	provider := &fakeProvider{candErr: errors.New("upstream down")}
	r := New(provider).WithClock(clock)

	_, err := r.Resolve(context.Background(), "ZZ999")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestResolve_BreakerOpenSkipsProvider(t *testing.T) {
	provider := &fakeProvider{candidates: []domain.Candidate{activeCandidate()}}
	breaker := &fakeBreaker{allowErr: errors.New("circuit breaker is open")}
	r := New(provider).WithBreaker(breaker).WithClock(clock)

	record, err := r.Resolve(context.Background(), "UA1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !record.Demo {
		t.Error("expected demo fallback while circuit open")
	}
	if provider.gotIdent != "" {
		t.Error("provider called despite open circuit")
	}
}

func TestScheduleProgress_CapsActiveFlights(t *testing.T) {
	record := &domain.FlightRecord{
		Status: domain.StatusActive,
		Departure: domain.AirportLeg{
			ScheduledTime: now.Add(-10 * time.Hour),
		},
		Arrival: domain.AirportLeg{
			ScheduledTime: now.Add(-time.Minute),
			EstimatedTime: now.Add(-time.Minute),
		},
	}

	frac := scheduleProgress(record, now)
	if frac == nil {
		t.Fatal("frac = nil")
	}
	if *frac != 0.9 {
		t.Errorf("frac = %v, want 0.9 (capped while no arrival reported)", *frac)
	}

	// A reported arrival lifts the cap.
	arrived := now.Add(-time.Minute)
	record.ArrivedAt = &arrived
	frac = scheduleProgress(record, now)
	if frac == nil || *frac != 1 {
		t.Errorf("frac = %v, want 1 after arrival", frac)
	}
}

func TestScheduleProgress_DegenerateWindow(t *testing.T) {
	record := &domain.FlightRecord{
		Departure: domain.AirportLeg{ScheduledTime: now},
		Arrival:   domain.AirportLeg{ScheduledTime: now},
	}
	if frac := scheduleProgress(record, now); frac != nil {
		t.Errorf("frac = %v, want nil for a zero-length window", frac)
	}
}

func boolPtr(b bool) *bool { return &b }
