package simhost

import (
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeHTTP upgrades an incoming connection to a WebSocket and attaches it
// to the hub as a new driver, replacing the teacher's unimplemented stub
// handler with a real gorilla/websocket upgrade.
func (h *Host) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("simhost: upgrade failed: " + err.Error())
		return
	}
	c := NewConn(h.hub, h, ws)
	go c.WritePump()
	go c.ReadPump()
}
