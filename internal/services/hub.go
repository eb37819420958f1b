package services

import (
	"sync"

	"hny-greeting-service/internal/intro"
)

const (
	backlogSize   = 512
	subscriberBuf = 256
)

type Event struct {
	Seq  uint64 `json:"seq"`
	Name string `json:"event"`
	Data any    `json:"data"`
}

// Hub fans one session's effects out to its event streams. It keeps a short
// backlog so a reconnecting stream can resume by sequence number.
type Hub struct {
	mu       sync.Mutex
	seq      uint64
	backlog  []Event
	subs     map[int]chan Event
	nextSub  int
	elements map[intro.Element]bool
	closed   bool
}

// NewHub records which optional page elements the client has. Elements not
// mentioned are assumed present.
func NewHub(elements map[string]bool) *Hub {
	els := make(map[intro.Element]bool, len(elements))
	for k, v := range elements {
		els[intro.Element(k)] = v
	}
	return &Hub{subs: make(map[int]chan Event), elements: els}
}

func (h *Hub) Has(el intro.Element) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	present, ok := h.elements[el]
	return !ok || present
}

// Emit never blocks. A subscriber that falls behind loses events and can
// resync from the backlog.
func (h *Hub) Emit(event string, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.seq++
	ev := Event{Seq: h.seq, Name: event, Data: payload}
	h.backlog = append(h.backlog, ev)
	if len(h.backlog) > backlogSize {
		h.backlog = append(h.backlog[:0:0], h.backlog[len(h.backlog)-backlogSize:]...)
	}
	for id, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			debugLogf("hub: subscriber %d lagging, dropped seq=%d event=%s", id, ev.Seq, event)
		}
	}
}

// Subscribe returns backlog events after since plus a channel for new ones.
// The channel is closed by cancel or by Close.
func (h *Hub) Subscribe(since uint64) ([]Event, <-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var replay []Event
	for _, ev := range h.backlog {
		if ev.Seq > since {
			replay = append(replay, ev)
		}
	}
	ch := make(chan Event, subscriberBuf)
	if h.closed {
		close(ch)
		return replay, ch, func() {}
	}
	id := h.nextSub
	h.nextSub++
	h.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
	return replay, ch, cancel
}

func (h *Hub) Seq() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.seq
}

func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
