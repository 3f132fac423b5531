// Package aviationstack provides a client for the aviationstack real-time
// flights API. The flights endpoint returns every recent leg matching an IATA
// designator, with live telemetry embedded when the feed has it.
//
// API Documentation: https://aviationstack.com/documentation
package aviationstack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/mottavibrannon/runway/internal/domain"
	"github.com/mottavibrannon/runway/internal/position"
)

const (
	// BaseURL is the aviationstack API base URL.
	BaseURL = "https://api.aviationstack.com/v1"

	// DefaultTimeout for API requests.
	DefaultTimeout = 10 * time.Second
)

// Client calls the aviationstack flights endpoint with rate limiting to
// protect the monthly quota.
type Client struct {
	apiKey      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
}

// Config contains configuration for the aviationstack client.
type Config struct {
	APIKey            string
	RequestsPerMinute int
	Timeout           time.Duration
}

// NewClient creates a new aviationstack client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = 60
	}

	requestsPerSecond := float64(cfg.RequestsPerMinute) / 60.0
	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), 1)

	return &Client{
		apiKey: cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: limiter,
		baseURL:     BaseURL,
	}
}

// WithBaseURL overrides the API endpoint (useful for testing).
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

// Name identifies the provider for circuit breaking and metrics.
func (c *Client) Name() string {
	return "aviationstack"
}

// flightsResponse mirrors the JSON shape of the flights endpoint.
type flightsResponse struct {
	Data []flightRow `json:"data"`
}

type flightRow struct {
	FlightStatus string `json:"flight_status"`

	Departure legInfo `json:"departure"`
	Arrival   legInfo `json:"arrival"`

	Airline struct {
		Name string `json:"name"`
		IATA string `json:"iata"`
		ICAO string `json:"icao"`
	} `json:"airline"`

	Flight struct {
		Number string `json:"number"`
		IATA   string `json:"iata"`
		ICAO   string `json:"icao"`
	} `json:"flight"`

	Aircraft *struct {
		Registration string `json:"registration"`
		IATA         string `json:"iata"`
		ICAO         string `json:"icao"`
		ICAO24       string `json:"icao24"`
	} `json:"aircraft"`

	Live *liveInfo `json:"live"`
}

type legInfo struct {
	Airport   string     `json:"airport"`
	IATA      string     `json:"iata"`
	Terminal  string     `json:"terminal"`
	Scheduled *time.Time `json:"scheduled"`
	Estimated *time.Time `json:"estimated"`
	Actual    *time.Time `json:"actual"`
}

type liveInfo struct {
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	Altitude        *float64 `json:"altitude"`         // meters
	Direction       *float64 `json:"direction"`        // degrees
	SpeedHorizontal *float64 `json:"speed_horizontal"` // km/h
	IsGround        bool     `json:"is_ground"`
}

// Candidates fetches every row matching the IATA designator and maps each to
// a scoreable candidate.
func (c *Client) Candidates(ctx context.Context, ident string) ([]domain.Candidate, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	q := url.Values{}
	q.Set("access_key", c.apiKey)
	q.Set("flight_iata", ident)

	endpoint := fmt.Sprintf("%s/flights?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch flights: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body flightsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	candidates := make([]domain.Candidate, 0, len(body.Data))
	for _, row := range body.Data {
		candidates = append(candidates, mapRow(row))
	}
	return candidates, nil
}

// Position returns the telemetry embedded in the candidate's row. The flights
// endpoint carries live data inline, so no second call is made.
func (c *Client) Position(_ context.Context, cand domain.Candidate) (*domain.LivePosition, error) {
	return cand.Record.Live, nil
}

func mapRow(row flightRow) domain.Candidate {
	record := domain.FlightRecord{
		FlightNumber: row.Flight.IATA,
		Airline:      row.Airline.Name,
		Status:       mapStatus(row.FlightStatus),
		Departure:    mapLeg(row.Departure, true),
		Arrival:      mapLeg(row.Arrival, false),
		ArrivedAt:    row.Arrival.Actual,
	}
	if record.FlightNumber == "" {
		record.FlightNumber = row.Airline.IATA + row.Flight.Number
	}
	if row.Aircraft != nil {
		if row.Aircraft.ICAO != "" {
			aircraft := row.Aircraft.ICAO
			record.Aircraft = &aircraft
		}
		record.ICAO24 = row.Aircraft.ICAO24
	}

	if row.Live != nil {
		isGround := row.Live.IsGround
		record.Live = position.Normalize(position.Payload{
			Latitude:  row.Live.Latitude,
			Longitude: row.Live.Longitude,
			Altitude:  row.Live.Altitude,
			Speed:     row.Live.SpeedHorizontal,
			Heading:   row.Live.Direction,
			OnGround:  &isGround,
		}, position.SourceAviationstack)
	}

	evidence := domain.RawCandidate{
		DepartedActual: row.Departure.Actual,
		ArrivedActual:  row.Arrival.Actual,
		StatusLabel:    row.FlightStatus,
	}
	if record.Live != nil {
		evidence.HasLivePosition = true
		evidence.ConfirmedAirborne = !record.Live.ConfirmedOnGround() && record.Live.OnGround != nil
	}

	return domain.Candidate{Evidence: evidence, Record: record}
}

func mapLeg(leg legInfo, departure bool) domain.AirportLeg {
	out := domain.AirportLeg{
		IATA:     leg.IATA,
		Name:     leg.Airport,
		Terminal: orNA(leg.Terminal),
	}
	if leg.Scheduled != nil {
		out.ScheduledTime = *leg.Scheduled
	}
	switch {
	case departure && leg.Actual != nil:
		out.EstimatedTime = *leg.Actual
	case leg.Estimated != nil:
		out.EstimatedTime = *leg.Estimated
	case leg.Scheduled != nil:
		out.EstimatedTime = *leg.Scheduled
	}
	return out
}

// mapStatus folds aviationstack's status vocabulary into the canonical set.
func mapStatus(s string) domain.FlightStatus {
	switch s {
	case "scheduled":
		return domain.StatusScheduled
	case "active":
		return domain.StatusActive
	case "landed":
		return domain.StatusLanded
	case "cancelled":
		return domain.StatusCancelled
	case "diverted":
		return domain.StatusDiverted
	default:
		return domain.StatusUnknown
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
