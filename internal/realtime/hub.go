package realtime

import (
	"context"
	"log"
	"strings"

	"github.com/redis/go-redis/v9"
)

// userChannelPrefix namespaces the per-user pub/sub channels. Every API
// instance subscribes to the whole namespace and forwards payloads to the
// local sockets of the addressed user.
const userChannelPrefix = "user:"

type delivery struct {
	userID  string
	payload []byte
}

// Hub tracks the websocket clients connected to this instance, keyed by user
// id. One user may hold several sockets (phone plus browser).
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	deliver    chan delivery
	rdb        *redis.Client
}

func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, 256),
		rdb:        rdb,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*Client]bool)
			}
			h.clients[client.userID][client] = true

		case client := <-h.unregister:
			if set, ok := h.clients[client.userID]; ok {
				if set[client] {
					delete(set, client)
					close(client.send)
				}
				if len(set) == 0 {
					delete(h.clients, client.userID)
				}
			}

		case d := <-h.deliver:
			for client := range h.clients[d.userID] {
				select {
				case client.send <- d.payload:
				default:
					close(client.send)
					delete(h.clients[d.userID], client)
				}
			}
		}
	}
}

// SubscribeBroker forwards broker payloads to locally connected sockets.
// Blocks until ctx is cancelled.
func (h *Hub) SubscribeBroker(ctx context.Context) {
	pubsub := h.rdb.PSubscribe(ctx, userChannelPrefix+"*")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		userID := strings.TrimPrefix(msg.Channel, userChannelPrefix)
		select {
		case h.deliver <- delivery{userID: userID, payload: []byte(msg.Payload)}:
		default:
			log.Printf("realtime: dropping payload for %s, delivery queue full", userID)
		}
	}
}
