package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"lifecast/internal/wire"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// A create_pattern frame is well under this.
	maxMessageSize = 8192
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// ServeWS upgrades the request, subscribes the connection and pumps frames
// until either side goes away. The codec is chosen with ?codec=json|msgpack.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	codec, ok := wire.ByName(r.URL.Query().Get("codec"))
	if !ok {
		http.Error(w, "unknown codec", http.StatusBadRequest)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logf("[network] upgrade failed remote=%s: %v", r.RemoteAddr, err)
		return
	}
	sub, err := h.subscribe(codec)
	if err != nil {
		h.logf("[network] subscribe failed remote=%s: %v", r.RemoteAddr, err)
		conn.Close()
		return
	}
	h.logf("[network] conn=%s connected remote=%s codec=%s", sub.id, r.RemoteAddr, codec.Name())

	go h.writePump(conn, sub)
	h.readPump(conn, sub)
}

// readPump decodes inbound frames and forwards create_pattern requests to the
// hub. It owns the connection's lifetime: when it returns the subscriber is
// removed.
func (h *Hub) readPump(conn *websocket.Conn, sub *subscriber) {
	defer func() {
		h.unsubscribe(sub)
		conn.Close()
		h.logf("[network] conn=%s disconnected", sub.id)
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logf("[network] conn=%s read error: %v", sub.id, err)
			}
			return
		}
		msgType, raw, err := sub.codec.DecodeEnvelope(data)
		if err != nil {
			h.deliver(inbound{sub: sub, err: err})
			continue
		}
		if msgType != wire.TypeCreatePattern {
			continue
		}
		var req wire.CreatePattern
		if err := sub.codec.DecodePayload(raw, &req); err != nil {
			h.deliver(inbound{sub: sub, err: err})
			continue
		}
		h.deliver(inbound{sub: sub, req: req})
	}
}

// writePump is the only writer on conn. It sends queued frames in order and
// keeps the connection alive with pings.
func (h *Hub) writePump(conn *websocket.Conn, sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case frame, ok := <-sub.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(sub.codec.FrameType(), frame); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					h.logf("[network] conn=%s write failed: %v", sub.id, err)
				}
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
