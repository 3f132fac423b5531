// Package channel provides an in-process buffered bus carrying fired alert
// events from the scheduler to the dispatcher.
package channel

import (
	"context"
	"errors"
	"time"

	"github.com/mottavibrannon/runway/internal/domain"
)

// ErrBufferFull is returned when an emit cannot complete within the emit
// timeout because the buffer is at capacity.
var ErrBufferFull = errors.New("alert bus buffer full")

// DefaultEmitTimeout bounds how long Emit blocks on a full buffer before
// giving up.
const DefaultEmitTimeout = 5 * time.Second

// MetricsSink receives bus occupancy metrics. Implementations must not block.
type MetricsSink interface {
	BufferSizeUpdate(size int)
	BufferCapacitySet(capacity int)
	EmitError()
}

// AlertBus is a bounded channel between the alert scheduler and the SMS
// dispatcher. Emit blocks up to the emit timeout when the buffer is full.
type AlertBus struct {
	ch          chan domain.AlertEvent
	emitTimeout time.Duration
	metrics     MetricsSink
}

// Option configures an AlertBus.
type Option func(*AlertBus)

// WithEmitTimeout overrides the default emit timeout.
func WithEmitTimeout(d time.Duration) Option {
	return func(b *AlertBus) {
		b.emitTimeout = d
	}
}

// WithMetrics attaches a metrics sink to the bus.
func WithMetrics(m MetricsSink) Option {
	return func(b *AlertBus) {
		b.metrics = m
	}
}

// NewAlertBus creates a bus with the given buffer capacity.
func NewAlertBus(buffer int, opts ...Option) *AlertBus {
	b := &AlertBus{
		ch:          make(chan domain.AlertEvent, buffer),
		emitTimeout: DefaultEmitTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.metrics != nil {
		b.metrics.BufferCapacitySet(buffer)
	}
	return b
}

// Emit places an event on the bus. It returns ErrBufferFull when the buffer
// stays full past the emit timeout, or the context error if ctx is done first.
func (b *AlertBus) Emit(ctx context.Context, event domain.AlertEvent) error {
	timer := time.NewTimer(b.emitTimeout)
	defer timer.Stop()

	select {
	case b.ch <- event:
		if b.metrics != nil {
			b.metrics.BufferSizeUpdate(len(b.ch))
		}
		return nil
	case <-timer.C:
		if b.metrics != nil {
			b.metrics.EmitError()
		}
		return ErrBufferFull
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Channel exposes the receive side for the dispatcher.
func (b *AlertBus) Channel() <-chan domain.AlertEvent {
	return b.ch
}
