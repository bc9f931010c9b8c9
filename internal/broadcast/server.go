package broadcast

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Subscribers are programmatic clients, not browsers.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleSubscriber runs one subscriber's lifecycle:
// connecting → authenticating → authenticated → closed.
//
// The first frame must carry the shared secret; mismatch or a missed
// handshake deadline closes the connection with no further message and the
// subscriber is never added to the broadcast set.
func (b *Broadcaster) handleSubscriber(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	conn.SetReadDeadline(time.Now().Add(b.cfg.HandshakeTimeout))
	_, secret, err := conn.ReadMessage()
	if err != nil {
		b.logger.Warn("subscriber handshake read failed", "remote", r.RemoteAddr, "error", err)
		conn.Close()
		return
	}

	if subtle.ConstantTimeCompare(secret, []byte(b.cfg.SharedSecret)) != 1 {
		b.logger.Warn("subscriber auth failed", "remote", r.RemoteAddr)
		conn.Close()
		return
	}

	sub := &subscriber{id: uuid.New(), conn: conn}
	b.reg.add(sub)
	b.logger.Info("subscriber authenticated",
		"subscriber", sub.id,
		"remote", r.RemoteAddr,
		"connected", b.reg.len(),
	)

	// Hold the connection open; inbound frames are discarded. The read
	// loop exists to observe the peer closing (or dying) promptly.
	conn.SetReadDeadline(time.Time{})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	if b.reg.remove(sub.id) {
		conn.Close()
		b.logger.Info("subscriber disconnected",
			"subscriber", sub.id,
			"connected", b.reg.len(),
		)
	}
}
