package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/mottavibrannon/runway/internal/airports"
	"github.com/mottavibrannon/runway/internal/alerts"
	"github.com/mottavibrannon/runway/internal/analytics"
	"github.com/mottavibrannon/runway/internal/api"
	"github.com/mottavibrannon/runway/internal/circuitbreaker"
	"github.com/mottavibrannon/runway/internal/config"
	"github.com/mottavibrannon/runway/internal/dispatcher"
	"github.com/mottavibrannon/runway/internal/fusion"
	"github.com/mottavibrannon/runway/internal/metrics"
	"github.com/mottavibrannon/runway/internal/provider/aeroapi"
	"github.com/mottavibrannon/runway/internal/provider/aviationstack"
	"github.com/mottavibrannon/runway/internal/provider/opensky"
	"github.com/mottavibrannon/runway/internal/resolver"
	"github.com/mottavibrannon/runway/internal/transport/channel"
)

// Build-time variables set via -ldflags
var (
	version = "dev"
	commit  = "unknown"
)

const (
	exitSuccess       = 0
	exitRuntimeError  = 1
	exitInvalidConfig = 2
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitRuntimeError)
	}

	cmd := os.Args[1]

	switch cmd {
	case "serve":
		os.Exit(runServe())
	case "validate":
		os.Exit(runValidate())
	case "config":
		os.Exit(runConfig())
	case "version":
		os.Exit(runVersion())
	case "--help", "-h", "help":
		printUsage()
		os.Exit(exitSuccess)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(exitRuntimeError)
	}
}

func printUsage() {
	fmt.Println(`runway - flight status and SMS alert service

Usage:
  runway <command>

Commands:
  serve      Start the HTTP server, alert scheduler, and SMS dispatcher
  validate   Validate configuration (no connections made)
  config     Print effective configuration as JSON (secrets masked)
  version    Print version information

Environment Variables:
  HTTP_ADDR                 HTTP server address (default: ":3000", or ":$PORT")
  FLIGHTAWARE_API_KEY       AeroAPI key; preferred schedule provider (optional)
  AVIATIONSTACK_API_KEY     aviationstack key; fallback provider (optional)
  OPENSKY_USERNAME          OpenSky account for the position tracker (optional)
  OPENSKY_PASSWORD          OpenSky password; set with OPENSKY_USERNAME

  TWILIO_ACCOUNT_SID        Twilio account SID (optional; demo SMS without it)
  TWILIO_AUTH_TOKEN         Twilio auth token
  TWILIO_PHONE_NUMBER       Sender phone number

  REDIS_ADDR                Redis address for delivery analytics (optional)

  PROVIDER_TIMEOUT          Schedule provider timeout (default: "10s")
  TRACKER_TIMEOUT           Position tracker timeout (default: "5s")
  HTTP_SHUTDOWN_TIMEOUT     Graceful HTTP shutdown timeout (default: "10s")
  DISPATCHER_DRAIN_TIMEOUT  Alert drain timeout on shutdown (default: "30s")
  ALERTBUS_BUFFER_SIZE      Alert event buffer size (default: "100")

  CIRCUIT_BREAKER_THRESHOLD Provider failures before opening (default: "5", 0 off)
  CIRCUIT_BREAKER_COOLDOWN  Open-circuit cooldown (default: "2m")

  METRICS_ENABLED           Enable Prometheus metrics (default: "false")
  METRICS_PATH              Metrics endpoint path (default: "/metrics")
  METRICS_PORT              Metrics server port (default: "9090")`)
}

// logConfigWarnings reports degraded modes at startup so a misconfigured
// deployment is visible in the first screen of logs.
func logConfigWarnings(cfg *config.Config) {
	if !cfg.FlightDataEnabled() {
		log.Println("runway: WARNING: no provider API key set; flight lookups serve demo fixtures only")
	}
	if cfg.FlightDataEnabled() && cfg.AviationstackAPIKey != "" && cfg.FlightAwareAPIKey != "" {
		log.Println("runway: INFO: both provider keys set; FLIGHTAWARE_API_KEY takes precedence")
	}
	if !cfg.SMSEnabled() {
		log.Println("runway: WARNING: Twilio credentials not set; alerts accepted in demo mode, no SMS sent")
	}
	if cfg.OpenSkyUsername == "" {
		log.Println("runway: INFO: OPENSKY_USERNAME not set; tracker limited to the anonymous request rate")
	}
	if !cfg.MetricsEnabled {
		log.Println("runway: INFO: METRICS_ENABLED not set; metrics disabled")
	}
	if cfg.CircuitBreakerThreshold == 0 {
		log.Println("runway: INFO: CIRCUIT_BREAKER_THRESHOLD=0; provider circuit breaker disabled")
	}
}

func runServe() int {
	cfg := config.Load()

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return exitInvalidConfig
	}

	logConfigWarnings(&cfg)

	// Initialize metrics sink (optional)
	var metricsSink *metrics.PrometheusSink
	var metricsServer *http.Server

	if cfg.MetricsEnabled {
		metricsSink = metrics.NewPrometheusSink(prometheus.DefaultRegisterer)
		log.Printf("runway: metrics enabled (port=%s, path=%s)", cfg.MetricsPort, cfg.MetricsPath)

		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.MetricsPath, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:    ":" + cfg.MetricsPort,
			Handler: metricsMux,
		}
		go func() {
			log.Printf("runway: metrics server listening on :%s", cfg.MetricsPort)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("runway: metrics server error: %v", err)
			}
		}()
	}

	// Alert event bus
	var busOpts []channel.Option
	if metricsSink != nil {
		busOpts = append(busOpts, channel.WithMetrics(metricsSink))
	}
	bus := channel.NewAlertBus(cfg.AlertBusBufferSize, busOpts...)

	// Alert scheduler; demo mode when SMS cannot be delivered anyway
	schedOpts := []alerts.Option{alerts.WithDemoMode(!cfg.SMSEnabled())}
	if metricsSink != nil {
		schedOpts = append(schedOpts, alerts.WithMetrics(metricsSink))
	}
	sched := alerts.New(bus, schedOpts...)

	// SMS dispatcher
	sender := dispatcher.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)
	disp := dispatcher.New(sender).WithDrainTimeout(cfg.DispatcherDrainTimeout)
	if metricsSink != nil {
		disp = disp.WithMetrics(metricsSink)
	}

	// Wire analytics if Redis is configured
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		})
		disp = disp.WithAnalytics(analytics.NewRedisSink(redisClient))
		log.Printf("runway: analytics enabled (redis=%s)", cfg.RedisAddr)
	} else {
		log.Println("runway: REDIS_ADDR not set; analytics disabled")
	}

	// Schedule provider and airport sources. AeroAPI, when configured, serves
	// both flight schedules and airport metadata.
	var provider resolver.Provider
	airportChain := airports.Chain{}

	if cfg.FlightAwareAPIKey != "" {
		aero := aeroapi.NewClient(aeroapi.Config{
			APIKey:  cfg.FlightAwareAPIKey,
			Timeout: cfg.ProviderTimeout,
		})
		provider = aero
		airportChain = append(airportChain, aero)
		log.Println("runway: schedule provider: aeroapi")
	} else if cfg.AviationstackAPIKey != "" {
		provider = aviationstack.NewClient(aviationstack.Config{
			APIKey:  cfg.AviationstackAPIKey,
			Timeout: cfg.ProviderTimeout,
		})
		log.Println("runway: schedule provider: aviationstack")
	}
	airportChain = append(airportChain, airports.Static{})

	airportStore := airports.NewCachedStore(airportChain)
	if metricsSink != nil {
		airportStore = airportStore.WithMetrics(metricsSink)
	}

	// Position tracker and fusion engine
	tracker := opensky.NewClient(opensky.Config{
		Username: cfg.OpenSkyUsername,
		Password: cfg.OpenSkyPassword,
		Timeout:  cfg.TrackerTimeout,
	})
	fus := fusion.New(tracker).WithTimeout(cfg.TrackerTimeout)
	if metricsSink != nil {
		fus = fus.WithMetrics(metricsSink)
	}

	res := resolver.New(provider).
		WithFusion(fus).
		WithAirports(airportStore).
		WithTimeout(cfg.ProviderTimeout)
	if cfg.CircuitBreakerThreshold > 0 {
		res = res.WithBreaker(circuitbreaker.New(cfg.CircuitBreakerThreshold, cfg.CircuitBreakerCooldown))
	}
	if metricsSink != nil {
		res = res.WithMetrics(metricsSink)
	}

	apiHandler := api.NewHandler(res, sched).
		WithServiceStatus(cfg.FlightDataEnabled(), cfg.SMSEnabled())

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: apiHandler,
	}

	go func() {
		log.Printf("runway: http server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("runway: http server error: %v", err)
		}
	}()

	// Separate context for the dispatcher so shutdown can be ordered.
	dispatcherCtx, cancelDispatcher := context.WithCancel(context.Background())
	var dispatcherWg sync.WaitGroup

	dispatcherWg.Add(1)
	go func() {
		defer dispatcherWg.Done()
		disp.Run(dispatcherCtx, bus.Channel())
	}()

	log.Printf("runway: started (http=%s)", cfg.HTTPAddr)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	received := <-sig

	log.Printf("runway: received signal %v, shutting down", received)

	// Phase 1: Stop the alert scheduler (no new events emitted)
	log.Println("runway: stopping alert scheduler...")
	sched.Shutdown()
	log.Println("runway: alert scheduler stopped")

	// Phase 2: Stop dispatcher (will drain buffered events before returning)
	log.Println("runway: stopping dispatcher (draining events)...")
	cancelDispatcher()
	dispatcherWg.Wait()
	log.Println("runway: dispatcher stopped")

	// Phase 3: Stop HTTP server with graceful shutdown
	log.Println("runway: stopping http server...")
	httpShutdownCtx, httpShutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer httpShutdownCancel()
	if err := httpServer.Shutdown(httpShutdownCtx); err != nil {
		log.Printf("runway: http server shutdown error: %v", err)
	}
	log.Println("runway: http server stopped")

	// Phase 4: Stop metrics server if running (with same timeout)
	if metricsServer != nil {
		log.Println("runway: stopping metrics server...")
		metricsShutdownCtx, metricsShutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer metricsShutdownCancel()
		if err := metricsServer.Shutdown(metricsShutdownCtx); err != nil {
			log.Printf("runway: metrics server shutdown error: %v", err)
		}
		log.Println("runway: metrics server stopped")
	}

	log.Println("runway: stopped")
	return exitSuccess
}

func runValidate() int {
	cfg := config.Load()

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitInvalidConfig
	}

	fmt.Println("configuration valid")
	return exitSuccess
}

func runConfig() int {
	cfg := config.Load()

	data, err := cfg.MaskedJSON()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal config: %v\n", err)
		return exitRuntimeError
	}

	fmt.Println(string(data))
	return exitSuccess
}

func runVersion() int {
	fmt.Printf("runway version %s (commit: %s)\n", version, commit)
	return exitSuccess
}
