package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// ObserveHTTPRequest is a no-op.
func (n *NoopRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {}

// IncUserCreated is a no-op.
func (n *NoopRecorder) IncUserCreated() {}

// IncUserDeleted is a no-op.
func (n *NoopRecorder) IncUserDeleted() {}

// IncMessageCreated is a no-op.
func (n *NoopRecorder) IncMessageCreated() {}

// IncMessageDeleted is a no-op.
func (n *NoopRecorder) IncMessageDeleted() {}

// IncCacheHit is a no-op.
func (n *NoopRecorder) IncCacheHit(entity string) {}

// IncCacheMiss is a no-op.
func (n *NoopRecorder) IncCacheMiss(entity string) {}
