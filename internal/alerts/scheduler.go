// Package alerts arms one-shot SMS reminders keyed by recipient and flight
// number. Re-scheduling the same key cancels the pending timer first, so a
// recipient holds at most one armed alert per flight.
package alerts

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mottavibrannon/runway/internal/domain"
)

var (
	ErrAlertInPast    = errors.New("alert time is in the past")
	ErrSchedulerDown  = errors.New("alert scheduler is shut down")
	ErrEmptyRecipient = errors.New("recipient is required")
	ErrEmptyFlight    = errors.New("flight number is required")
)

// PastTolerance is how far behind the clock a requested fire time may be and
// still fire immediately instead of being rejected.
const PastTolerance = 60 * time.Second

// emitTimeout bounds the bus emit when a timer fires.
const emitTimeout = 10 * time.Second

// EventEmitter carries fired alerts downstream.
type EventEmitter interface {
	Emit(ctx context.Context, event domain.AlertEvent) error
}

// MetricsSink receives scheduler metrics. Implementations must not block.
type MetricsSink interface {
	AlertScheduled(kind string)
	AlertReplaced()
	AlertRejected(reason string)
	AlertFired()
	PendingAlertsUpdate(count int)
}

// Request describes an alert to arm.
type Request struct {
	Recipient    string
	FlightNumber string
	Kind         domain.AlertKind
	ArrivalCity  string
	FiresAt      time.Time
}

type pendingAlert struct {
	id    uuid.UUID
	timer *time.Timer
}

// Scheduler owns the pending-alert table and the timers that drain it.
type Scheduler struct {
	emitter EventEmitter
	metrics MetricsSink
	clock   func() time.Time
	demo    bool

	mu      sync.Mutex
	pending map[string]pendingAlert
	down    bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithMetrics attaches a metrics sink.
func WithMetrics(m MetricsSink) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *Scheduler) {
		s.clock = clock
	}
}

// WithDemoMode makes Schedule validate and report without arming timers.
// Used when no SMS credentials are configured.
func WithDemoMode(demo bool) Option {
	return func(s *Scheduler) {
		s.demo = demo
	}
}

func New(emitter EventEmitter, opts ...Option) *Scheduler {
	s := &Scheduler{
		emitter: emitter,
		clock:   time.Now,
		pending: make(map[string]pendingAlert),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func alertKey(recipient, flightNumber string) string {
	return recipient + ":" + flightNumber
}

// Schedule validates the request and arms a timer for it, replacing any
// pending alert under the same recipient+flight key. The returned demo flag
// is true when the scheduler runs without SMS credentials: the request was
// accepted but nothing will fire.
func (s *Scheduler) Schedule(req Request) (demo bool, err error) {
	if req.Recipient == "" {
		return false, ErrEmptyRecipient
	}
	if req.FlightNumber == "" {
		return false, ErrEmptyFlight
	}

	now := s.clock()
	if now.Sub(req.FiresAt) > PastTolerance {
		if s.metrics != nil {
			s.metrics.AlertRejected("past")
		}
		return false, ErrAlertInPast
	}

	if s.demo {
		log.Printf("alerts: demo mode, not arming %s for %s", req.FlightNumber, req.Recipient)
		return true, nil
	}

	delay := req.FiresAt.Sub(now)
	if delay < 0 {
		delay = 0
	}

	key := alertKey(req.Recipient, req.FlightNumber)
	id := uuid.New()

	s.mu.Lock()
	if s.down {
		s.mu.Unlock()
		return false, ErrSchedulerDown
	}
	if existing, ok := s.pending[key]; ok {
		existing.timer.Stop()
		if s.metrics != nil {
			s.metrics.AlertReplaced()
		}
		log.Printf("alerts: replaced pending alert for %s", key)
	}
	s.pending[key] = pendingAlert{
		id:    id,
		timer: time.AfterFunc(delay, func() { s.fire(key, id, req) }),
	}
	count := len(s.pending)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.AlertScheduled(string(req.Kind))
		s.metrics.PendingAlertsUpdate(count)
	}
	log.Printf("alerts: armed %s alert for %s in %s", req.Kind, req.FlightNumber, delay.Round(time.Second))
	return false, nil
}

// fire runs on the timer goroutine. The identity check under the lock
// discards a stale timer that lost a race with Stop during replacement.
func (s *Scheduler) fire(key string, id uuid.UUID, req Request) {
	s.mu.Lock()
	entry, ok := s.pending[key]
	if !ok || entry.id != id {
		s.mu.Unlock()
		return
	}
	delete(s.pending, key)
	count := len(s.pending)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.AlertFired()
		s.metrics.PendingAlertsUpdate(count)
	}

	now := s.clock().UTC()
	event := domain.AlertEvent{
		ID:           id,
		Recipient:    req.Recipient,
		FlightNumber: req.FlightNumber,
		Kind:         req.Kind,
		ArrivalCity:  req.ArrivalCity,
		ScheduledFor: req.FiresAt,
		FiredAt:      now,
		CreatedAt:    now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
	defer cancel()
	if err := s.emitter.Emit(ctx, event); err != nil {
		log.Printf("alerts: emit failed for %s: %v", key, err)
	}
}

// Cancel stops the pending alert for a recipient+flight pair. Returns true
// if one was armed.
func (s *Scheduler) Cancel(recipient, flightNumber string) bool {
	key := alertKey(recipient, flightNumber)

	s.mu.Lock()
	entry, ok := s.pending[key]
	if ok {
		entry.timer.Stop()
		delete(s.pending, key)
	}
	count := len(s.pending)
	s.mu.Unlock()

	if ok && s.metrics != nil {
		s.metrics.PendingAlertsUpdate(count)
	}
	return ok
}

// Pending reports how many alerts are currently armed.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Shutdown stops all pending timers. Further Schedule calls fail with
// ErrSchedulerDown. Alerts already handed to the emitter are unaffected.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return
	}
	s.down = true
	for key, entry := range s.pending {
		entry.timer.Stop()
		delete(s.pending, key)
	}
	if s.metrics != nil {
		s.metrics.PendingAlertsUpdate(0)
	}
	log.Println("alerts: scheduler stopped")
}
