// Package feed pushes ledger save notifications to WebSocket watchers so an
// open month view knows another user has changed it.
package feed

import (
	"context"
	"sync"

	"github.com/lyzr/crewledger/common/logger"
)

// AllPartitions is the watch key for clients that follow every partition
const AllPartitions = "*"

// Hub maintains active WebSocket connections and broadcasts messages
type Hub struct {
	log *logger.Logger

	// partition → clients watching it
	connections map[string]map[*Client]struct{}
	mutex       sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	done       chan struct{}
}

// Message is one notification for a partition
type Message struct {
	Partition string
	Data      []byte
}

// NewHub creates a new Hub instance
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:         log,
		connections: make(map[string]map[*Client]struct{}),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *Message, 256),
		done:        make(chan struct{}),
	}
}

// Run starts the hub's main loop and disconnects everyone when ctx ends
func (h *Hub) Run(ctx context.Context) {
	h.log.Info("feed hub started")

	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			h.log.Info("feed hub stopped")
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastToPartition(message)
		}
	}
}

// Publish queues a notification; it is dropped if the hub is backed up
func (h *Hub) Publish(partition string, data []byte) {
	select {
	case h.broadcast <- &Message{Partition: partition, Data: data}:
	default:
		h.log.Warn("feed broadcast buffer full, dropping message", "partition", partition)
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	set, ok := h.connections[client.partition]
	if !ok {
		set = make(map[*Client]struct{})
		h.connections[client.partition] = set
	}
	set[client] = struct{}{}
	h.log.Debug("feed client registered", "partition", client.partition, "watchers", len(set))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.dropLocked(client)
}

// dropLocked removes a client and closes its send channel once
func (h *Hub) dropLocked(client *Client) {
	set := h.connections[client.partition]
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.connections, client.partition)
	}
	h.log.Debug("feed client unregistered", "partition", client.partition, "watchers", len(set))
}

// broadcastToPartition sends to the partition's watchers and to AllPartitions
// watchers. A client whose buffer is full is disconnected.
func (h *Hub) broadcastToPartition(message *Message) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	var slow []*Client
	for _, key := range []string{message.Partition, AllPartitions} {
		for client := range h.connections[key] {
			select {
			case client.send <- message.Data:
			default:
				slow = append(slow, client)
			}
		}
	}
	for _, client := range slow {
		h.log.Warn("feed client send buffer full, closing connection", "partition", client.partition)
		h.dropLocked(client)
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, set := range h.connections {
		for client := range set {
			h.dropLocked(client)
		}
	}
}

// ConnectionCount returns the total number of active connections
func (h *Hub) ConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	count := 0
	for _, set := range h.connections {
		count += len(set)
	}
	return count
}
