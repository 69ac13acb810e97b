// Package relay carries "settings or ledger changed" signals from wherever a
// save happens to every live page session. Delivery is best-effort: a
// subscriber that cannot keep up is skipped, never waited on, so one stuck
// session cannot block notifying the rest.
package relay

import (
	"sync"

	"go.uber.org/zap"
)

// Signal is a broadcast message type.
type Signal string

const (
	// SignalSettingsUpdated is published after a preferences save.
	SignalSettingsUpdated Signal = "SETTINGS_UPDATED"
	// SignalStatsReset is published after a per-site ledger reset.
	SignalStatsReset Signal = "STATS_RESET"
)

// subscriberBuffer is small on purpose: both signals mean the same thing to
// a session (reload everything), so queueing more than a few is pointless.
const subscriberBuffer = 4

// Relay is an in-process broadcast hub.
type Relay struct {
	mu     sync.Mutex
	subs   map[int]chan Signal
	nextID int
	closed bool
	log    *zap.Logger
}

// New returns an empty relay.
func New(log *zap.Logger) *Relay {
	if log == nil {
		log = zap.NewNop()
	}
	return &Relay{subs: make(map[int]chan Signal), log: log}
}

// Subscribe registers a listener. The returned cancel func detaches it and
// closes the channel; calling cancel more than once is safe.
func (r *Relay) Subscribe() (<-chan Signal, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan Signal, subscriberBuffer)
	if r.closed {
		close(ch)
		return ch, func() {}
	}

	id := r.nextID
	r.nextID++
	r.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if sub, ok := r.subs[id]; ok {
				delete(r.subs, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

// Publish fans the signal out to every subscriber without blocking. A full
// subscriber buffer counts as a delivery failure and is swallowed.
func (r *Relay) Publish(sig Signal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	for id, ch := range r.subs {
		select {
		case ch <- sig:
		default:
			r.log.Debug("relay subscriber full, dropping signal",
				zap.Int("subscriber", id), zap.String("signal", string(sig)))
		}
	}
}

// Close detaches every subscriber. Publish and Subscribe become no-ops.
func (r *Relay) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	for id, ch := range r.subs {
		delete(r.subs, id)
		close(ch)
	}
}
