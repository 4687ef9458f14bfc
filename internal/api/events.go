package api

import "sync"

// hub fans a single engine listener out to any number of SSE
// subscribers. The engine's listener list stays append-only; the hub
// owns subscriber churn.
type hub struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func newHub() *hub {
	return &hub{
		subs: make(map[chan struct{}]struct{}),
	}
}

// subscribe registers a new subscriber channel
func (h *hub) subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// unsubscribe removes a subscriber channel
func (h *hub) unsubscribe(ch chan struct{}) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

// broadcast wakes every subscriber without blocking. A subscriber that
// has not drained its pending signal is left as-is; coalescing signals
// is fine since subscribers re-read the full state.
func (h *hub) broadcast() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
