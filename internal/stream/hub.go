package stream

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Hub fans freshly created notifications out to connected websocket
// clients, locally and across processes via redis pub/sub. Clients are
// keyed by recipient account id.
type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	AccountID string
	Send      chan []byte
}

// Event is the payload pushed when a follow or like lands in an inbox.
type Event struct {
	Type string `json:"type"`
	From string `json:"from"`
	To   string `json:"to"`
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register(accountID string) *Client {
	client := &Client{
		AccountID: accountID,
		Send:      make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[accountID] == nil {
		h.clients[accountID] = map[*Client]struct{}{}
	}
	h.clients[accountID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if accountClients, ok := h.clients[client.AccountID]; ok {
		delete(accountClients, client)
		if len(accountClients) == 0 {
			delete(h.clients, client.AccountID)
		}
	}
	close(client.Send)
}

func (h *Hub) NotifyEvent(e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		return
	}
	h.Notify(e.To, payload)
}

// Notify pushes a payload to every client of the account. With redis
// configured the payload goes through pub/sub only, and local delivery
// happens in subscribeRedis like for any other process; otherwise it is
// delivered directly. Publishing failures fall back to direct delivery so
// a redis outage does not drop local clients.
func (h *Hub) Notify(accountID string, payload []byte) {
	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(accountID), payload).Err()
		if err == nil {
			return
		}
		log.Printf("redis publish error: %v", err)
	}
	h.deliver(accountID, payload)
}

// deliver holds the read lock for the whole send loop so Register and
// Unregister cannot mutate the client map or close a Send channel
// mid-iteration. Sends are non-blocking, so holding the lock is cheap.
func (h *Hub) deliver(accountID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[accountID] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "notify:*:events")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.deliver(accountIDFromChannel(msg.Channel), []byte(msg.Payload))
	}
}

func redisChannel(accountID string) string {
	return "notify:" + accountID + ":events"
}

func accountIDFromChannel(ch string) string {
	// notify:{account}:events
	const prefix = "notify:"
	const suffix = ":events"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
