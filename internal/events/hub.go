package events

import (
	"sync"

	"go.uber.org/zap"

	"github.com/abderrahmenzaway/wie-empower/internal/metrics"
)

// Sink receives a copy of every dispatched event. Used to mirror the
// in-process fan-out onto an external transport such as MQTT.
type Sink interface {
	Deliver(ev Event)
}

// Subscription is one observer of a single user's events. Events are
// dropped, not queued without bound, when the observer cannot keep up; a
// reconnecting client re-fetches full state instead of relying on replay.
type Subscription struct {
	C      <-chan Event
	ch     chan Event
	userID string
	hub    *Hub
	once   sync.Once

	// mu serializes send against close so Cancel during delivery cannot
	// make the dispatcher send on a closed channel.
	mu     sync.Mutex
	closed bool
}

// Cancel detaches the subscription and closes its channel.
func (s *Subscription) Cancel() {
	s.once.Do(func() { s.hub.unsubscribe(s) })
}

func (s *Subscription) send(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- ev:
		return true
	default:
		return false
	}
}

func (s *Subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Hub is the process-wide publish/subscribe fan-out. It is constructed at
// startup and handed to every service; a single dispatcher goroutine
// preserves publish order across all users, which in particular keeps two
// sequential mutations of the same zone ordered for every subscriber.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[*Subscription]struct{}
	sinks  []Sink
	queue  chan Event
	done   chan struct{}
	closed bool
	logger *zap.SugaredLogger
}

func NewHub(buffer int, logger *zap.SugaredLogger) *Hub {
	if buffer <= 0 {
		buffer = 256
	}
	h := &Hub{
		subs:   make(map[string]map[*Subscription]struct{}),
		queue:  make(chan Event, buffer),
		done:   make(chan struct{}),
		logger: logger,
	}
	go h.dispatch()
	return h
}

// AddSink registers an external mirror. Must be called before traffic flows.
func (h *Hub) AddSink(s Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sinks = append(h.sinks, s)
}

// Subscribe attaches an observer to one user's event stream.
func (h *Hub) Subscribe(userID string) *Subscription {
	ch := make(chan Event, 32)
	sub := &Subscription{C: ch, ch: ch, userID: userID, hub: h}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		sub.close()
		return sub
	}
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscription]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	return sub
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[sub.userID]; ok {
		if _, ok := set[sub]; ok {
			delete(set, sub)
			sub.close()
			if len(set) == 0 {
				delete(h.subs, sub.userID)
			}
		}
	}
}

// Publish enqueues an event for fan-out. It never blocks the caller: the
// store commit already succeeded, so a full queue drops the event and the
// request still completes.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	select {
	case h.queue <- ev:
		metrics.EventsPublished.WithLabelValues(ev.Type).Inc()
	default:
		metrics.EventsDropped.Inc()
		h.logger.Warnw("event queue full, dropping", "type", ev.Type, "user", ev.UserID)
	}
}

func (h *Hub) dispatch() {
	for {
		select {
		case ev := <-h.queue:
			h.deliver(ev)
		case <-h.done:
			// Drain whatever was queued before shutdown.
			for {
				select {
				case ev := <-h.queue:
					h.deliver(ev)
				default:
					h.closeSubs()
					return
				}
			}
		}
	}
}

func (h *Hub) deliver(ev Event) {
	h.mu.Lock()
	targets := make([]*Subscription, 0, len(h.subs[ev.UserID]))
	for sub := range h.subs[ev.UserID] {
		targets = append(targets, sub)
	}
	sinks := h.sinks
	h.mu.Unlock()

	for _, sub := range targets {
		if !sub.send(ev) {
			metrics.EventsDropped.Inc()
		}
	}
	for _, s := range sinks {
		s.Deliver(ev)
	}
}

func (h *Hub) closeSubs() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.subs {
		for sub := range set {
			sub.close()
		}
	}
	h.subs = make(map[string]map[*Subscription]struct{})
}

// Close stops accepting events, drains the queue and closes every
// subscription channel.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.mu.Unlock()
	close(h.done)
}
