package simhost

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Conn wraps one driver's WebSocket connection, grounded on the teacher's
// network.Client read/write pump pair.
type Conn struct {
	id   string
	hub  *Hub
	host *Host
	ws   *websocket.Conn
	send chan []byte
}

// NewConn wraps ws, registers it with hub, and wires inbound updates into
// host's in-memory truth store.
func NewConn(hub *Hub, host *Host, ws *websocket.Conn) *Conn {
	c := &Conn{id: newConnID(), hub: hub, host: host, ws: ws, send: make(chan []byte, 256)}
	hub.register <- c
	return c
}

// ReadPump pumps inbound ACTIVITY_UPDATE/EFFECTS_UPDATE frames from the
// driver into the Host's truth store. Run in its own goroutine.
func (c *Conn) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.ws.Close()
	}()
	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("simhost: unexpected close: " + err.Error())
			}
			return
		}
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.hub.logger.Warn("simhost: bad frame from driver: " + err.Error())
			continue
		}
		c.dispatch(msg)
	}
}

func (c *Conn) dispatch(msg Message) {
	switch msg.Type {
	case MsgActivityUpdate:
		var inputs activityPayload
		if err := json.Unmarshal(msg.Payload, &inputs); err != nil {
			c.hub.logger.Warn("simhost: bad ACTIVITY_UPDATE payload: " + err.Error())
			return
		}
		c.host.SetActivityInputs(msg.PlayerID, inputs.toInputs())
	case MsgEffectsUpdate:
		var effects effectsPayload
		if err := json.Unmarshal(msg.Payload, &effects); err != nil {
			c.hub.logger.Warn("simhost: bad EFFECTS_UPDATE payload: " + err.Error())
			return
		}
		c.host.SetActiveEffects(msg.PlayerID, effects.toEffects())
	case MsgPing:
		// acknowledged implicitly by the pong handler; no action needed.
	default:
		c.hub.logger.Warn("simhost: unhandled inbound message type " + string(msg.Type))
	}
}

// WritePump pumps outbound frames queued by the Hub to the driver.
func (c *Conn) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
