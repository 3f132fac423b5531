package metrics

import (
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink implements Sink using Prometheus client library.
// All methods are non-blocking and fire-and-forget.
// Registration errors are logged but never propagated.
type PrometheusSink struct {
	// Resolution metrics
	resolutionsTotal        *prometheus.CounterVec
	resolutionDuration      prometheus.Histogram
	providerRequestsTotal   *prometheus.CounterVec
	providerRequestDuration prometheus.Histogram
	fusionOutcomesTotal     *prometheus.CounterVec
	airportCacheLookups     *prometheus.CounterVec

	// Alert scheduler metrics
	alertsScheduledTotal *prometheus.CounterVec
	alertsReplacedTotal  prometheus.Counter
	alertsRejectedTotal  *prometheus.CounterVec
	alertsFiredTotal     prometheus.Counter
	pendingAlerts        prometheus.Gauge

	// Delivery metrics
	deliveriesTotal       *prometheus.CounterVec
	smsDuration           prometheus.Histogram
	deliveryOutcomesTotal *prometheus.CounterVec

	// AlertBus metrics
	bufferSize      prometheus.Gauge
	bufferCapacity  prometheus.Gauge
	emitErrorsTotal prometheus.Counter
}

// NewPrometheusSink creates a new Prometheus metrics sink.
// If registration fails, it logs a warning and returns a functional sink.
// Metrics that fail to register will be replaced with no-op collectors.
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{}
	s.initResolutionMetrics(reg)
	s.initAlertMetrics(reg)
	s.initDeliveryMetrics(reg)
	s.initAlertBusMetrics(reg)
	return s
}

func (s *PrometheusSink) initResolutionMetrics(reg prometheus.Registerer) {
	s.resolutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "runway_resolver_resolutions_total",
		Help: "Total number of flight resolutions by outcome.",
	}, []string{"outcome"})
	s.resolutionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "runway_resolver_resolution_duration_seconds",
		Help:    "End-to-end flight resolution latency in seconds.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})
	s.providerRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "runway_resolver_provider_requests_total",
		Help: "Total number of upstream provider requests.",
	}, []string{"provider", "status_class"})
	s.providerRequestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "runway_resolver_provider_request_duration_seconds",
		Help:    "Upstream provider request latency in seconds.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})
	s.fusionOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "runway_resolver_fusion_outcomes_total",
		Help: "Total number of position fusion attempts by matching strategy.",
	}, []string{"strategy"})
	s.airportCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "runway_resolver_airport_cache_lookups_total",
		Help: "Total number of airport metadata cache lookups.",
	}, []string{"result"})

	s.register(reg, s.resolutionsTotal, "runway_resolver_resolutions_total")
	s.register(reg, s.resolutionDuration, "runway_resolver_resolution_duration_seconds")
	s.register(reg, s.providerRequestsTotal, "runway_resolver_provider_requests_total")
	s.register(reg, s.providerRequestDuration, "runway_resolver_provider_request_duration_seconds")
	s.register(reg, s.fusionOutcomesTotal, "runway_resolver_fusion_outcomes_total")
	s.register(reg, s.airportCacheLookups, "runway_resolver_airport_cache_lookups_total")
}

func (s *PrometheusSink) initAlertMetrics(reg prometheus.Registerer) {
	s.alertsScheduledTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "runway_alerts_scheduled_total",
		Help: "Total number of alerts scheduled by kind.",
	}, []string{"kind"})
	s.alertsReplacedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "runway_alerts_replaced_total",
		Help: "Total number of pending alerts cancelled by a replacement.",
	})
	s.alertsRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "runway_alerts_rejected_total",
		Help: "Total number of alert requests rejected by reason.",
	}, []string{"reason"})
	s.alertsFiredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "runway_alerts_fired_total",
		Help: "Total number of alerts that reached their fire time.",
	})
	s.pendingAlerts = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "runway_alerts_pending",
		Help: "Number of alerts currently armed and waiting to fire.",
	})

	s.register(reg, s.alertsScheduledTotal, "runway_alerts_scheduled_total")
	s.register(reg, s.alertsReplacedTotal, "runway_alerts_replaced_total")
	s.register(reg, s.alertsRejectedTotal, "runway_alerts_rejected_total")
	s.register(reg, s.alertsFiredTotal, "runway_alerts_fired_total")
	s.register(reg, s.pendingAlerts, "runway_alerts_pending")
}

func (s *PrometheusSink) initDeliveryMetrics(reg prometheus.Registerer) {
	s.deliveriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "runway_dispatcher_deliveries_total",
		Help: "Total number of SMS delivery attempts by status class.",
	}, []string{"status_class"})
	s.smsDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "runway_dispatcher_sms_duration_seconds",
		Help:    "SMS gateway request latency in seconds.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})
	s.deliveryOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "runway_dispatcher_delivery_outcomes_total",
		Help: "Total number of final delivery outcomes per alert.",
	}, []string{"outcome"})

	s.register(reg, s.deliveriesTotal, "runway_dispatcher_deliveries_total")
	s.register(reg, s.smsDuration, "runway_dispatcher_sms_duration_seconds")
	s.register(reg, s.deliveryOutcomesTotal, "runway_dispatcher_delivery_outcomes_total")
}

func (s *PrometheusSink) initAlertBusMetrics(reg prometheus.Registerer) {
	s.bufferSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "runway_alertbus_buffer_size",
		Help: "Current number of alert events in the bus buffer.",
	})
	s.bufferCapacity = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "runway_alertbus_buffer_capacity",
		Help: "Configured capacity of the alert bus buffer.",
	})
	s.emitErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "runway_alertbus_emit_errors_total",
		Help: "Total number of emit errors (buffer full).",
	})

	s.register(reg, s.bufferSize, "runway_alertbus_buffer_size")
	s.register(reg, s.bufferCapacity, "runway_alertbus_buffer_capacity")
	s.register(reg, s.emitErrorsTotal, "runway_alertbus_emit_errors_total")
}

// register attempts to register a collector, logging any errors without propagating them.
func (s *PrometheusSink) register(reg prometheus.Registerer, c prometheus.Collector, name string) {
	if err := reg.Register(c); err != nil {
		log.Printf("metrics: failed to register %s: %v", name, err)
	}
}

// Resolution metrics implementation

func (s *PrometheusSink) ResolutionCompleted(outcome string, duration time.Duration) {
	s.resolutionsTotal.WithLabelValues(outcome).Inc()
	s.resolutionDuration.Observe(duration.Seconds())
}

func (s *PrometheusSink) ProviderRequest(provider string, statusClass string, duration time.Duration) {
	s.providerRequestsTotal.WithLabelValues(provider, statusClass).Inc()
	s.providerRequestDuration.Observe(duration.Seconds())
}

func (s *PrometheusSink) FusionOutcome(strategy string) {
	s.fusionOutcomesTotal.WithLabelValues(strategy).Inc()
}

func (s *PrometheusSink) AirportCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	s.airportCacheLookups.WithLabelValues(result).Inc()
}

// Alert scheduler metrics implementation

func (s *PrometheusSink) AlertScheduled(kind string) {
	s.alertsScheduledTotal.WithLabelValues(kind).Inc()
}

func (s *PrometheusSink) AlertReplaced() {
	s.alertsReplacedTotal.Inc()
}

func (s *PrometheusSink) AlertRejected(reason string) {
	s.alertsRejectedTotal.WithLabelValues(reason).Inc()
}

func (s *PrometheusSink) AlertFired() {
	s.alertsFiredTotal.Inc()
}

func (s *PrometheusSink) PendingAlertsUpdate(count int) {
	s.pendingAlerts.Set(float64(count))
}

// Delivery metrics implementation

func (s *PrometheusSink) DeliveryCompleted(statusClass string, duration time.Duration) {
	s.deliveriesTotal.WithLabelValues(statusClass).Inc()
	s.smsDuration.Observe(duration.Seconds())
}

func (s *PrometheusSink) DeliveryOutcome(outcome string) {
	s.deliveryOutcomesTotal.WithLabelValues(outcome).Inc()
}

// AlertBus metrics implementation

func (s *PrometheusSink) BufferSizeUpdate(size int) {
	s.bufferSize.Set(float64(size))
}

func (s *PrometheusSink) BufferCapacitySet(capacity int) {
	s.bufferCapacity.Set(float64(capacity))
}

func (s *PrometheusSink) EmitError() {
	s.emitErrorsTotal.Inc()
}
