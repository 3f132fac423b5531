package config

import (
	"encoding/json"
	"log"
	"os"
	"time"
)

// Config holds all configuration for the runway application.
// Values are loaded from environment variables.
type Config struct {
	HTTPAddr string `json:"http_addr"`

	AviationstackAPIKey string `json:"aviationstack_api_key"`
	FlightAwareAPIKey   string `json:"flightaware_api_key"`

	OpenSkyUsername string `json:"opensky_username,omitempty"`
	OpenSkyPassword string `json:"opensky_password,omitempty"`

	TwilioAccountSID  string `json:"twilio_account_sid"`
	TwilioAuthToken   string `json:"twilio_auth_token"`
	TwilioPhoneNumber string `json:"twilio_phone_number"`

	RedisAddr string `json:"redis_addr,omitempty"`

	MetricsEnabled bool   `json:"metrics_enabled"`
	MetricsPath    string `json:"metrics_path"`
	MetricsPort    string `json:"metrics_port"`

	ProviderTimeout    time.Duration `json:"-"`
	ProviderTimeoutStr string        `json:"provider_timeout"`

	TrackerTimeout    time.Duration `json:"-"`
	TrackerTimeoutStr string        `json:"tracker_timeout"`

	HTTPShutdownTimeout       time.Duration `json:"-"`
	HTTPShutdownTimeoutStr    string        `json:"http_shutdown_timeout"`
	DispatcherDrainTimeout    time.Duration `json:"-"`
	DispatcherDrainTimeoutStr string        `json:"dispatcher_drain_timeout"`

	AlertBusBufferSize int `json:"alertbus_buffer_size"`

	// CircuitBreakerThreshold: 0 disables the circuit breaker.
	CircuitBreakerThreshold   int           `json:"circuit_breaker_threshold"`
	CircuitBreakerCooldown    time.Duration `json:"-"`
	CircuitBreakerCooldownStr string        `json:"circuit_breaker_cooldown"`
}

// FlightDataEnabled reports whether any schedule provider is configured.
// Without one the service answers from demo fixtures only.
func (c Config) FlightDataEnabled() bool {
	return c.AviationstackAPIKey != "" || c.FlightAwareAPIKey != ""
}

// SMSEnabled reports whether the SMS gateway is fully configured.
func (c Config) SMSEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioPhoneNumber != ""
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	cfg := Config{
		HTTPAddr:                  os.Getenv("HTTP_ADDR"),
		AviationstackAPIKey:       os.Getenv("AVIATIONSTACK_API_KEY"),
		FlightAwareAPIKey:         os.Getenv("FLIGHTAWARE_API_KEY"),
		OpenSkyUsername:           os.Getenv("OPENSKY_USERNAME"),
		OpenSkyPassword:           os.Getenv("OPENSKY_PASSWORD"),
		TwilioAccountSID:          os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:           os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioPhoneNumber:         os.Getenv("TWILIO_PHONE_NUMBER"),
		RedisAddr:                 os.Getenv("REDIS_ADDR"),
		MetricsEnabled:            os.Getenv("METRICS_ENABLED") == "true",
		MetricsPath:               os.Getenv("METRICS_PATH"),
		MetricsPort:               os.Getenv("METRICS_PORT"),
		ProviderTimeoutStr:        os.Getenv("PROVIDER_TIMEOUT"),
		TrackerTimeoutStr:         os.Getenv("TRACKER_TIMEOUT"),
		HTTPShutdownTimeoutStr:    os.Getenv("HTTP_SHUTDOWN_TIMEOUT"),
		DispatcherDrainTimeoutStr: os.Getenv("DISPATCHER_DRAIN_TIMEOUT"),
		CircuitBreakerCooldownStr: os.Getenv("CIRCUIT_BREAKER_COOLDOWN"),
	}

	if bufStr := os.Getenv("ALERTBUS_BUFFER_SIZE"); bufStr != "" {
		if n, err := parseInt(bufStr); err == nil && n > 0 {
			cfg.AlertBusBufferSize = n
		} else {
			log.Printf("config: invalid ALERTBUS_BUFFER_SIZE %q (must be a positive integer), using default 100", bufStr)
		}
	}
	if cfg.AlertBusBufferSize == 0 {
		cfg.AlertBusBufferSize = 100
	}

	if cbThreshStr := os.Getenv("CIRCUIT_BREAKER_THRESHOLD"); cbThreshStr != "" {
		if n, err := parseInt(cbThreshStr); err == nil {
			cfg.CircuitBreakerThreshold = n
		} else {
			log.Printf("config: invalid CIRCUIT_BREAKER_THRESHOLD %q, using default 5", cbThreshStr)
		}
	}
	if cfg.CircuitBreakerThreshold == 0 && os.Getenv("CIRCUIT_BREAKER_THRESHOLD") == "" {
		cfg.CircuitBreakerThreshold = 5
	}

	// Support Railway's PORT variable as fallback for HTTP_ADDR.
	if cfg.HTTPAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			cfg.HTTPAddr = ":" + port
		} else {
			cfg.HTTPAddr = ":3000"
		}
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	if cfg.MetricsPort == "" {
		cfg.MetricsPort = "9090"
	}
	if cfg.ProviderTimeoutStr == "" {
		cfg.ProviderTimeoutStr = "10s"
	}
	if cfg.TrackerTimeoutStr == "" {
		cfg.TrackerTimeoutStr = "5s"
	}
	if cfg.HTTPShutdownTimeoutStr == "" {
		cfg.HTTPShutdownTimeoutStr = "10s"
	}
	if cfg.DispatcherDrainTimeoutStr == "" {
		cfg.DispatcherDrainTimeoutStr = "30s"
	}
	if cfg.CircuitBreakerCooldownStr == "" {
		cfg.CircuitBreakerCooldownStr = "2m"
	}

	// Parse durations; validation is handled separately by Validate().
	if d, err := time.ParseDuration(cfg.ProviderTimeoutStr); err == nil {
		cfg.ProviderTimeout = d
	}
	if d, err := time.ParseDuration(cfg.TrackerTimeoutStr); err == nil {
		cfg.TrackerTimeout = d
	}
	if d, err := time.ParseDuration(cfg.HTTPShutdownTimeoutStr); err == nil {
		cfg.HTTPShutdownTimeout = d
	}
	if d, err := time.ParseDuration(cfg.DispatcherDrainTimeoutStr); err == nil {
		cfg.DispatcherDrainTimeout = d
	}
	if d, err := time.ParseDuration(cfg.CircuitBreakerCooldownStr); err == nil {
		cfg.CircuitBreakerCooldown = d
	}

	return cfg
}

// parseInt parses a string as a non-negative integer.
func parseInt(s string) (int, error) {
	if s == "" {
		return 0, os.ErrInvalid
	}
	var n int
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, os.ErrInvalid
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}

// MaskedJSON returns the configuration as JSON with secrets masked.
func (c Config) MaskedJSON() ([]byte, error) {
	masked := struct {
		HTTPAddr                string `json:"http_addr"`
		AviationstackAPIKey     string `json:"aviationstack_api_key"`
		FlightAwareAPIKey       string `json:"flightaware_api_key"`
		OpenSkyUsername         string `json:"opensky_username,omitempty"`
		OpenSkyPassword         string `json:"opensky_password,omitempty"`
		TwilioAccountSID        string `json:"twilio_account_sid"`
		TwilioAuthToken         string `json:"twilio_auth_token"`
		TwilioPhoneNumber       string `json:"twilio_phone_number"`
		RedisAddr               string `json:"redis_addr,omitempty"`
		MetricsEnabled          bool   `json:"metrics_enabled"`
		MetricsPath             string `json:"metrics_path"`
		MetricsPort             string `json:"metrics_port"`
		ProviderTimeout         string `json:"provider_timeout"`
		TrackerTimeout          string `json:"tracker_timeout"`
		HTTPShutdownTimeout     string `json:"http_shutdown_timeout"`
		DispatcherDrainTimeout  string `json:"dispatcher_drain_timeout"`
		AlertBusBufferSize      int    `json:"alertbus_buffer_size"`
		CircuitBreakerThreshold int    `json:"circuit_breaker_threshold"`
		CircuitBreakerCooldown  string `json:"circuit_breaker_cooldown"`
	}{
		HTTPAddr:                c.HTTPAddr,
		AviationstackAPIKey:     maskSecret(c.AviationstackAPIKey),
		FlightAwareAPIKey:       maskSecret(c.FlightAwareAPIKey),
		OpenSkyUsername:         c.OpenSkyUsername,
		OpenSkyPassword:         maskSecret(c.OpenSkyPassword),
		TwilioAccountSID:        maskSecret(c.TwilioAccountSID),
		TwilioAuthToken:         maskSecret(c.TwilioAuthToken),
		TwilioPhoneNumber:       c.TwilioPhoneNumber,
		RedisAddr:               c.RedisAddr,
		MetricsEnabled:          c.MetricsEnabled,
		MetricsPath:             c.MetricsPath,
		MetricsPort:             c.MetricsPort,
		ProviderTimeout:         c.ProviderTimeoutStr,
		TrackerTimeout:          c.TrackerTimeoutStr,
		HTTPShutdownTimeout:     c.HTTPShutdownTimeoutStr,
		DispatcherDrainTimeout:  c.DispatcherDrainTimeoutStr,
		AlertBusBufferSize:      c.AlertBusBufferSize,
		CircuitBreakerThreshold: c.CircuitBreakerThreshold,
		CircuitBreakerCooldown:  c.CircuitBreakerCooldownStr,
	}
	return json.MarshalIndent(masked, "", "  ")
}

// maskSecret masks a secret value, keeping the first four characters so
// operators can tell which credential is loaded.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "***"
	}
	return s[:4] + "***"
}
