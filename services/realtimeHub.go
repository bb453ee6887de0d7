package services

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Siilah/initializers"
)

const (
	liveWriteWait      = 10 * time.Second
	livePongWait       = 60 * time.Second
	livePingPeriod     = (livePongWait * 9) / 10
	liveSendBuffer     = 32
	liveMaxMessageSize = 512
)

// Subscription receives the events of one circle until it is closed.
type Subscription struct {
	circleID string
	events   chan Event
}

func (s *Subscription) Events() <-chan Event {
	return s.events
}

// RealtimeHub fans circle events out to live feed subscribers. Subscribers
// that fall behind are disconnected rather than slowing publishers down.
type RealtimeHub struct {
	mu          sync.Mutex
	subscribers map[string]map[*Subscription]struct{}
	closed      bool
}

var _ Broadcaster = (*RealtimeHub)(nil)

func NewRealtimeHub() *RealtimeHub {
	return &RealtimeHub{subscribers: make(map[string]map[*Subscription]struct{})}
}

var realtimeHub *RealtimeHub

func InitRealtimeHub() *RealtimeHub {
	realtimeHub = NewRealtimeHub()
	return realtimeHub
}

func GetRealtimeHub() *RealtimeHub {
	return realtimeHub
}

// SetRealtimeHub swaps the process-wide hub and returns the previous one.
func SetRealtimeHub(h *RealtimeHub) *RealtimeHub {
	previous := realtimeHub
	realtimeHub = h
	return previous
}

func (h *RealtimeHub) Subscribe(circleID string) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscription{circleID: circleID, events: make(chan Event, liveSendBuffer)}
	if h.closed {
		close(sub.events)
		return sub
	}
	if h.subscribers[circleID] == nil {
		h.subscribers[circleID] = make(map[*Subscription]struct{})
	}
	h.subscribers[circleID][sub] = struct{}{}
	return sub
}

func (h *RealtimeHub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(sub)
}

func (h *RealtimeHub) removeLocked(sub *Subscription) {
	subs, ok := h.subscribers[sub.circleID]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	close(sub.events)
	if len(subs) == 0 {
		delete(h.subscribers, sub.circleID)
	}
}

func (h *RealtimeHub) Publish(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subscribers[event.CircleID] {
		select {
		case sub.events <- event:
		default:
			initializers.Log.Warnw("dropping slow live feed subscriber", "circleId", event.CircleID)
			h.removeLocked(sub)
		}
	}
}

// SubscriberCount is the number of live subscribers for a circle.
func (h *RealtimeHub) SubscriberCount(circleID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[circleID])
}

// Close ends every subscription. Later subscriptions are closed immediately.
func (h *RealtimeHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for _, subs := range h.subscribers {
		for sub := range subs {
			h.removeLocked(sub)
		}
	}
}

// Serve streams a circle's events to conn as JSON until the client goes away
// or the hub closes. It owns conn and closes it before returning.
func (h *RealtimeHub) Serve(conn *websocket.Conn, circleID string) {
	sub := h.Subscribe(circleID)
	liveConnections.Inc()

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		conn.SetReadLimit(liveMaxMessageSize)
		_ = conn.SetReadDeadline(time.Now().Add(livePongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(livePongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(livePingPeriod)
	h.writeLoop(conn, sub, ticker.C, readDone)
	ticker.Stop()

	h.Unsubscribe(sub)
	conn.Close()
	<-readDone
	liveConnections.Dec()
}

func (h *RealtimeHub) writeLoop(conn *websocket.Conn, sub *Subscription, ping <-chan time.Time, readDone <-chan struct{}) {
	for {
		select {
		case event, ok := <-sub.Events():
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ping:
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-readDone:
			return
		}
	}
}
