package dashboard

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/framesim/framesim/sim"
	"github.com/framesim/framesim/sim/wire"
)

// DefaultQueueSize bounds the messages buffered per subscriber.
const DefaultQueueSize = 64

// Subscriber is one connected observer. Messages are delivered on a
// bounded queue; the queue is closed when the subscriber is removed.
type Subscriber struct {
	ID   string
	send chan []byte
}

// Messages returns the subscriber's queue.
func (s *Subscriber) Messages() <-chan []byte { return s.send }

// Hub fans encoded snapshots out to subscribers. A subscriber whose queue
// is full is dropped so a slow client cannot stall the engines.
type Hub struct {
	mu          sync.Mutex
	queueSize   int
	subscribers map[string]*Subscriber
	latest      []byte
	closed      bool
	dropped     int64
}

// NewHub returns a hub with the given per-subscriber queue size.
// Non-positive sizes use DefaultQueueSize.
func NewHub(queueSize int) *Hub {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Hub{queueSize: queueSize, subscribers: make(map[string]*Subscriber)}
}

// Add registers a new subscriber. If a snapshot was already published the
// subscriber's queue is primed with it. After Close the returned subscriber
// is not registered and its queue is already closed.
func (h *Hub) Add() *Subscriber {
	s := &Subscriber{ID: uuid.NewString(), send: make(chan []byte, h.queueSize)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(s.send)
		return s
	}
	if h.latest != nil {
		s.send <- h.latest
	}
	h.subscribers[s.ID] = s
	logrus.WithField("subscriber", s.ID).Debug("dashboard: subscriber added")
	return s
}

// Remove unregisters a subscriber and closes its queue. Removing an
// unknown or already removed subscriber is a no-op.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(id)
}

func (h *Hub) removeLocked(id string) bool {
	s, ok := h.subscribers[id]
	if !ok {
		return false
	}
	delete(h.subscribers, id)
	close(s.send)
	return true
}

// Len returns the number of registered subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Dropped returns how many subscribers were removed for falling behind.
func (h *Hub) Dropped() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// Latest returns the most recently published message, or nil.
func (h *Hub) Latest() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest
}

// Deliver implements sim.Sink.
func (h *Hub) Deliver(snapshot sim.Snapshot) {
	msg, err := json.Marshal(wire.FromSnapshot(snapshot))
	if err != nil {
		logrus.WithError(err).Error("dashboard: encode snapshot")
		return
	}
	h.Broadcast(msg)
}

// Broadcast queues msg for every subscriber without blocking.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = msg
	for id, s := range h.subscribers {
		select {
		case s.send <- msg:
		default:
			h.removeLocked(id)
			h.dropped++
			logrus.WithField("subscriber", id).Warn("dashboard: subscriber queue full, dropping")
		}
	}
}

// Close removes every subscriber. Subscribers added afterwards start closed.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id := range h.subscribers {
		h.removeLocked(id)
	}
}
