package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	HTTPRequests        uint64
	HTTPServerErrors    uint64
	HTTPDurationTotalNs int64
	UsersCreated        uint64
	UsersDeleted        uint64
	MessagesCreated     uint64
	MessagesDeleted     uint64
	UserCacheHits       uint64
	UserCacheMisses     uint64
	MessageCacheHits    uint64
	MessageCacheMisses  uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	httpRequests        uint64
	httpServerErrors    uint64
	httpDurationTotalNs int64
	usersCreated        uint64
	usersDeleted        uint64
	messagesCreated     uint64
	messagesDeleted     uint64
	userCacheHits       uint64
	userCacheMisses     uint64
	messageCacheHits    uint64
	messageCacheMisses  uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		HTTPRequests:        atomic.LoadUint64(&m.httpRequests),
		HTTPServerErrors:    atomic.LoadUint64(&m.httpServerErrors),
		HTTPDurationTotalNs: atomic.LoadInt64(&m.httpDurationTotalNs),
		UsersCreated:        atomic.LoadUint64(&m.usersCreated),
		UsersDeleted:        atomic.LoadUint64(&m.usersDeleted),
		MessagesCreated:     atomic.LoadUint64(&m.messagesCreated),
		MessagesDeleted:     atomic.LoadUint64(&m.messagesDeleted),
		UserCacheHits:       atomic.LoadUint64(&m.userCacheHits),
		UserCacheMisses:     atomic.LoadUint64(&m.userCacheMisses),
		MessageCacheHits:    atomic.LoadUint64(&m.messageCacheHits),
		MessageCacheMisses:  atomic.LoadUint64(&m.messageCacheMisses),
	}
}

// ObserveHTTPRequest counts a request and its duration.
func (m *InMemoryRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	atomic.AddUint64(&m.httpRequests, 1)
	atomic.AddInt64(&m.httpDurationTotalNs, duration.Nanoseconds())
	if status >= 500 {
		atomic.AddUint64(&m.httpServerErrors, 1)
	}
}

// IncUserCreated increments user created counter.
func (m *InMemoryRecorder) IncUserCreated() {
	atomic.AddUint64(&m.usersCreated, 1)
}

// IncUserDeleted increments user deleted counter.
func (m *InMemoryRecorder) IncUserDeleted() {
	atomic.AddUint64(&m.usersDeleted, 1)
}

// IncMessageCreated increments message created counter.
func (m *InMemoryRecorder) IncMessageCreated() {
	atomic.AddUint64(&m.messagesCreated, 1)
}

// IncMessageDeleted increments message deleted counter.
func (m *InMemoryRecorder) IncMessageDeleted() {
	atomic.AddUint64(&m.messagesDeleted, 1)
}

// IncCacheHit increments the hit counter for entity.
func (m *InMemoryRecorder) IncCacheHit(entity string) {
	switch entity {
	case EntityUser:
		atomic.AddUint64(&m.userCacheHits, 1)
	case EntityMessage:
		atomic.AddUint64(&m.messageCacheHits, 1)
	}
}

// IncCacheMiss increments the miss counter for entity.
func (m *InMemoryRecorder) IncCacheMiss(entity string) {
	switch entity {
	case EntityUser:
		atomic.AddUint64(&m.userCacheMisses, 1)
	case EntityMessage:
		atomic.AddUint64(&m.messageCacheMisses, 1)
	}
}
