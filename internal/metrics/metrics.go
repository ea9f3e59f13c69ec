// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Entity labels used by cache metrics.
const (
	EntityUser    = "user"
	EntityMessage = "message"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus or keep them in memory.
type Recorder interface {
	// HTTP metrics
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)

	// Entity lifecycle metrics
	IncUserCreated()
	IncUserDeleted()
	IncMessageCreated()
	IncMessageDeleted()

	// Entity cache metrics, labelled by EntityUser / EntityMessage
	IncCacheHit(entity string)
	IncCacheMiss(entity string)
}
