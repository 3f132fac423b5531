// Package dispatcher consumes fired alert events and delivers them as SMS.
package dispatcher

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mottavibrannon/runway/internal/alerts"
	"github.com/mottavibrannon/runway/internal/domain"
	"github.com/mottavibrannon/runway/internal/metrics"
)

// SMSSender delivers a single message to a phone number.
type SMSSender interface {
	Send(ctx context.Context, req SMSRequest) SMSResult
}

// AnalyticsSink records delivery outcomes as a best-effort side effect.
type AnalyticsSink interface {
	Record(ctx context.Context, event domain.AlertEvent, outcome string)
}

// MetricsSink defines the interface for recording dispatcher metrics.
// All methods must be non-blocking and fire-and-forget.
type MetricsSink interface {
	DeliveryCompleted(statusClass string, duration time.Duration)
	DeliveryOutcome(outcome string)
}

type SMSRequest struct {
	To      string
	Body    string
	Timeout time.Duration
}

type SMSResult struct {
	StatusCode int
	MessageSID string
	APIMessage string // gateway error detail, if any
	Error      error
	Duration   time.Duration
}

func (r SMSResult) IsSuccess() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Dispatcher delivers each alert exactly once: a failed send is logged and
// counted, never retried. A reminder that arrives late is worse than one
// that is missing.
type Dispatcher struct {
	sender       SMSSender
	analytics    AnalyticsSink // optional, nil = disabled
	metrics      MetricsSink   // optional, nil = disabled
	timeout      time.Duration
	drainTimeout time.Duration
}

func New(sender SMSSender) *Dispatcher {
	return &Dispatcher{
		sender:       sender,
		timeout:      10 * time.Second,
		drainTimeout: DrainTimeout,
	}
}

func (d *Dispatcher) WithAnalytics(sink AnalyticsSink) *Dispatcher {
	d.analytics = sink
	return d
}

// WithMetrics attaches a metrics sink to the dispatcher.
func (d *Dispatcher) WithMetrics(sink MetricsSink) *Dispatcher {
	d.metrics = sink
	return d
}

// WithDrainTimeout overrides how long shutdown waits for buffered events.
func (d *Dispatcher) WithDrainTimeout(timeout time.Duration) *Dispatcher {
	if timeout > 0 {
		d.drainTimeout = timeout
	}
	return d
}

// Run processes events from the channel until context is cancelled.
// After cancellation, it drains remaining buffered events with a timeout.
func (d *Dispatcher) Run(ctx context.Context, ch <-chan domain.AlertEvent) {
	for {
		select {
		case <-ctx.Done():
			d.drain(ch)
			return
		case event := <-ch:
			if err := d.Dispatch(ctx, event); err != nil {
				log.Printf("dispatcher: error: %v", err)
			}
		}
	}
}

// DrainTimeout is the maximum time to wait for buffered events during shutdown.
const DrainTimeout = 30 * time.Second

// drain processes remaining events in the channel buffer after shutdown signal.
// Uses a background context since the main context is already cancelled.
func (d *Dispatcher) drain(ch <-chan domain.AlertEvent) {
	drainCtx, cancel := context.WithTimeout(context.Background(), d.drainTimeout)
	defer cancel()

	count := 0
	for {
		select {
		case <-drainCtx.Done():
			if count > 0 {
				log.Printf("dispatcher: drain timeout, processed %d events", count)
			}
			return
		case event, ok := <-ch:
			if !ok {
				log.Printf("dispatcher: drain complete, processed %d events", count)
				return
			}
			if err := d.Dispatch(drainCtx, event); err != nil {
				log.Printf("dispatcher: drain error: %v", err)
			}
			count++
		default:
			// No more buffered events
			if count > 0 {
				log.Printf("dispatcher: drain complete, processed %d events", count)
			}
			return
		}
	}
}

// Dispatch sends the SMS for one fired alert.
func (d *Dispatcher) Dispatch(ctx context.Context, event domain.AlertEvent) error {
	req := SMSRequest{
		To:      event.Recipient,
		Body:    alerts.Message(event.Kind, event.FlightNumber, event.ArrivalCity),
		Timeout: d.timeout,
	}

	result := d.sender.Send(ctx, req)

	if d.metrics != nil {
		statusClass := metrics.ClassifyStatus(result.StatusCode, result.Error)
		d.metrics.DeliveryCompleted(statusClass, result.Duration)
	}

	if result.IsSuccess() {
		log.Printf("dispatcher: alert=%s flight=%s sent sid=%s", event.ID, event.FlightNumber, result.MessageSID)
		d.recordOutcome(ctx, event, metrics.OutcomeSuccess)
		return nil
	}

	log.Printf("dispatcher: alert=%s flight=%s failed status=%d err=%v detail=%q",
		event.ID, event.FlightNumber, result.StatusCode, result.Error, result.APIMessage)
	d.recordOutcome(ctx, event, metrics.OutcomeFailed)
	if result.Error != nil {
		return result.Error
	}
	return fmt.Errorf("sms gateway status %d: %s", result.StatusCode, result.APIMessage)
}

// recordOutcome writes outcome metrics and analytics. The sink handles errors
// internally; analytics never affects dispatch correctness.
func (d *Dispatcher) recordOutcome(ctx context.Context, event domain.AlertEvent, outcome string) {
	if d.metrics != nil {
		d.metrics.DeliveryOutcome(outcome)
	}
	if d.analytics != nil {
		d.analytics.Record(ctx, event, outcome)
	}
}
