package feed

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 30 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = 25 * time.Second

	// Clients only send pongs and close frames
	maxMessageSize = 512

	sendBuffer = 64
)

var errHubStopped = errors.New("feed hub stopped")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client is one WebSocket watcher
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	partition string
	send      chan []byte
}

func newClient(hub *Hub, conn *websocket.Conn, partition string) *Client {
	if partition == "" {
		partition = AllPartitions
	}
	return &Client{
		hub:       hub,
		conn:      conn,
		partition: partition,
		send:      make(chan []byte, sendBuffer),
	}
}

// ServeWS upgrades the request and streams notifications for partition
// ("" or AllPartitions for every partition) until the peer goes away
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, partition string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := newClient(h, conn, partition)
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return errHubStopped
	}

	h.log.Info("feed connection opened", "partition", client.partition, "remote", r.RemoteAddr)

	go client.writePump()
	go client.readPump()
	return nil
}

// readPump only services pongs and detects disconnects
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("feed connection error", "partition", c.partition, "error", err)
			}
			return
		}
	}
}

// writePump sends each notification as its own text frame
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
