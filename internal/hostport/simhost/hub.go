// Package simhost is a reference HostAdapter (C3) driven over a WebSocket
// connection: a human dashboard or an integration test plays the role of
// the host game, pushing activity/effect updates in and observing the
// engine's host-facing calls (modifier apply, damage, chat) come back out.
// Grounded on the teacher's internal/network/hub.go + client.go, with the
// prisoner-action routing replaced by a symmetric push/pull message
// envelope for this engine's HostAdapter surface.
package simhost

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/briarwatch/survivalcore/internal/platform/logger"
)

// MessageType tags the envelope of every message exchanged over the
// connection, mirroring network.MessageType's role.
type MessageType string

const (
	// Inbound (driver -> simhost): the driver reports the host-side truth
	// the engine reads every tick.
	MsgActivityUpdate MessageType = "ACTIVITY_UPDATE"
	MsgEffectsUpdate  MessageType = "EFFECTS_UPDATE"

	// Outbound (simhost -> driver): every mutating HostAdapter call the
	// engine makes, echoed for observation.
	MsgModifierApplied MessageType = "MODIFIER_APPLIED"
	MsgModifierRemoved MessageType = "MODIFIER_REMOVED"
	MsgSpeedSet        MessageType = "SPEED_SET"
	MsgSpeedReset      MessageType = "SPEED_RESET"
	MsgDamageApplied   MessageType = "DAMAGE_APPLIED"
	MsgHealthRestored  MessageType = "HEALTH_RESTORED"
	MsgStaminaDrained  MessageType = "STAMINA_DRAINED"
	MsgChat            MessageType = "CHAT"

	MsgPing MessageType = "PING"
	MsgPong MessageType = "PONG"
)

// Message is the envelope for every frame sent over the socket in either
// direction.
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"timestamp"`
	PlayerID  string          `json:"player_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Hub tracks connected driver sockets and fans outbound Messages to all of
// them; it has no opinion on game logic, matching the teacher's "agnostic
// router" rule for network.Hub.
type Hub struct {
	conns      map[string]*Conn
	register   chan *Conn
	unregister chan *Conn
	broadcast  chan Message
	mu         sync.RWMutex
	logger     *logger.Logger
}

// NewHub constructs an idle Hub; call Run in a goroutine to start it.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		conns:      make(map[string]*Conn),
		register:   make(chan *Conn),
		unregister: make(chan *Conn),
		broadcast:  make(chan Message, 256),
		logger:     log,
	}
}

// Run services registration and broadcast until ctx is canceled.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("simhost hub started")
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("simhost hub shutting down")
			return
		case c := <-h.register:
			h.mu.Lock()
			h.conns[c.id] = c
			h.mu.Unlock()
			h.logger.Event("SIMHOST_CONNECT", c.id, "driver connected")
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.conns[c.id]; ok {
				delete(h.conns, c.id)
				close(c.send)
			}
			h.mu.Unlock()
			h.logger.Event("SIMHOST_DISCONNECT", c.id, "driver disconnected")
		case msg := <-h.broadcast:
			h.fanOut(msg)
		}
	}
}

func (h *Hub) fanOut(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("simhost: failed to marshal message: " + err.Error())
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.conns {
		select {
		case c.send <- data:
		default:
			close(c.send)
			delete(h.conns, c.id)
		}
	}
}

// Send queues msg for every connected driver; msg.Timestamp is stamped with
// the caller-supplied nowMs so replays stay deterministic.
func (h *Hub) Send(msgType MessageType, playerID string, nowMs int64, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("simhost: failed to marshal payload: " + err.Error())
		return
	}
	h.broadcast <- Message{Type: msgType, Timestamp: nowMs, PlayerID: playerID, Payload: raw}
}

// ConnectedCount reports how many drivers are currently attached.
func (h *Hub) ConnectedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func newConnID() string {
	return fmt.Sprintf("conn-%d", time.Now().UnixNano())
}
