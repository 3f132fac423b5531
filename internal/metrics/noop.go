package metrics

import "time"

// NoopSink is a no-op implementation of Sink.
// Used when metrics are disabled to avoid nil checks.
type NoopSink struct{}

// NewNoopSink returns a no-op metrics sink.
func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

func (n *NoopSink) ResolutionCompleted(outcome string, duration time.Duration)            {}
func (n *NoopSink) ProviderRequest(provider string, statusClass string, d time.Duration)  {}
func (n *NoopSink) FusionOutcome(strategy string)                                         {}
func (n *NoopSink) AirportCacheLookup(hit bool)                                           {}
func (n *NoopSink) AlertScheduled(kind string)                                            {}
func (n *NoopSink) AlertReplaced()                                                        {}
func (n *NoopSink) AlertRejected(reason string)                                           {}
func (n *NoopSink) AlertFired()                                                           {}
func (n *NoopSink) PendingAlertsUpdate(count int)                                         {}
func (n *NoopSink) DeliveryCompleted(statusClass string, duration time.Duration)          {}
func (n *NoopSink) DeliveryOutcome(outcome string)                                        {}
func (n *NoopSink) BufferSizeUpdate(size int)                                             {}
func (n *NoopSink) BufferCapacitySet(capacity int)                                        {}
func (n *NoopSink) EmitError()                                                            {}
