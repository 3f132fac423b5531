// Package circuitbreaker trips per-provider after consecutive upstream
// failures so a flaky flight-data feed fails fast instead of burning the
// request timeout on every resolution.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type state int

const (
	stateClosed state = iota
	stateOpen
	stateHalfOpen
)

type providerState struct {
	state               state
	consecutiveFailures int
	openedAt            time.Time
}

// CircuitBreaker tracks failure state per provider name.
type CircuitBreaker struct {
	mu        sync.Mutex
	states    map[string]*providerState
	threshold int
	cooldown  time.Duration
}

func New(threshold int, cooldown time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		states:    make(map[string]*providerState),
		threshold: threshold,
		cooldown:  cooldown,
	}
}

// Allow reports whether a request to the named provider may proceed. After
// the cooldown a single half-open probe is let through.
func (cb *CircuitBreaker) Allow(provider string) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	s, ok := cb.states[provider]
	if !ok {
		return nil
	}

	switch s.state {
	case stateClosed:
		return nil
	case stateOpen:
		if time.Since(s.openedAt) >= cb.cooldown {
			s.state = stateHalfOpen
			return nil
		}
		return ErrCircuitOpen
	case stateHalfOpen:
		return ErrCircuitOpen
	default:
		return nil
	}
}

func (cb *CircuitBreaker) RecordSuccess(provider string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	s, ok := cb.states[provider]
	if !ok {
		return
	}
	s.state = stateClosed
	s.consecutiveFailures = 0
}

func (cb *CircuitBreaker) RecordFailure(provider string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	s, ok := cb.states[provider]
	if !ok {
		s = &providerState{}
		cb.states[provider] = s
	}

	s.consecutiveFailures++
	if s.consecutiveFailures >= cb.threshold {
		s.state = stateOpen
		s.openedAt = time.Now()
	}
}
