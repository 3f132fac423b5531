// Package opensky provides a client for the OpenSky Network live state API.
// State vectors come back as positional JSON arrays; any numeric slot may be
// null, so parsing is permissive and keeps whatever fields survive.
//
// Rate limits: anonymous clients get one /states/all call per 10 seconds,
// authenticated clients one per 5 seconds.
package opensky

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mottavibrannon/runway/internal/domain"
)

const (
	// BaseURL is the OpenSky Network REST API base URL.
	BaseURL = "https://opensky-network.org/api"

	// DefaultTimeout for state queries.
	DefaultTimeout = 5 * time.Second

	anonymousInterval     = 10 * time.Second
	authenticatedInterval = 5 * time.Second

	// Connection pool settings
	maxIdleConns    = 10
	maxConnsPerHost = 5
	idleConnTimeout = 90 * time.Second
)

// Client fetches live state vectors from the OpenSky Network.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	username    string
	password    string
}

// Config contains configuration for the OpenSky client.
type Config struct {
	// Username/Password are optional; authenticated clients get twice the
	// request rate.
	Username string
	Password string
	Timeout  time.Duration
}

// NewClient creates an OpenSky client with connection pooling.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	interval := anonymousInterval
	if cfg.Username != "" {
		interval = authenticatedInterval
	}

	transport := &http.Transport{
		MaxIdleConns:    maxIdleConns,
		MaxConnsPerHost: maxConnsPerHost,
		IdleConnTimeout: idleConnTimeout,
	}

	return &Client{
		baseURL: BaseURL,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		rateLimiter: rate.NewLimiter(rate.Every(interval), 1),
		username:    cfg.Username,
		password:    cfg.Password,
	}
}

// WithBaseURL overrides the API endpoint (useful for testing).
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

// Name identifies the tracker for metrics.
func (c *Client) Name() string {
	return "opensky"
}

// statesResponse mirrors the JSON shape returned by /states/all.
type statesResponse struct {
	Time   int64           `json:"time"`
	States [][]interface{} `json:"states"`
}

// StatesByICAO24 fetches the state vector for one transponder address.
func (c *Client) StatesByICAO24(ctx context.Context, icao24 string) ([]domain.StateVector, error) {
	q := url.Values{}
	q.Set("icao24", strings.ToLower(icao24))
	return c.fetchStates(ctx, q)
}

// StatesInBox fetches all state vectors inside a lat/lon bounding box.
func (c *Client) StatesInBox(ctx context.Context, minLat, minLon, maxLat, maxLon float64) ([]domain.StateVector, error) {
	q := url.Values{}
	q.Set("lamin", fmt.Sprintf("%.4f", minLat))
	q.Set("lomin", fmt.Sprintf("%.4f", minLon))
	q.Set("lamax", fmt.Sprintf("%.4f", maxLat))
	q.Set("lomax", fmt.Sprintf("%.4f", maxLon))
	return c.fetchStates(ctx, q)
}

func (c *Client) fetchStates(ctx context.Context, q url.Values) ([]domain.StateVector, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	endpoint := fmt.Sprintf("%s/states/all?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.username != "" && c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var raw statesResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	return parseStates(raw), nil
}

// parseStates maps the positional arrays onto state vectors. Slot layout:
// 0 icao24, 1 callsign, 5 longitude, 6 latitude, 7 baro altitude (m),
// 8 on ground, 9 velocity (m/s), 10 true track (deg).
func parseStates(raw statesResponse) []domain.StateVector {
	vectors := make([]domain.StateVector, 0, len(raw.States))
	for _, s := range raw.States {
		if len(s) < 11 {
			continue
		}
		sv := domain.StateVector{
			ICAO24:   stringVal(s[0]),
			Callsign: stringVal(s[1]),
			OnGround: boolVal(s[8]),
		}
		sv.Longitude = floatVal(s[5])
		sv.Latitude = floatVal(s[6])
		sv.BaroAltitudeM = floatVal(s[7])
		sv.VelocityMS = floatVal(s[9])
		sv.TrackDeg = floatVal(s[10])
		vectors = append(vectors, sv)
	}
	return vectors
}

func stringVal(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func boolVal(v interface{}) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}

func floatVal(v interface{}) *float64 {
	if f, ok := v.(float64); ok {
		return &f
	}
	return nil
}
