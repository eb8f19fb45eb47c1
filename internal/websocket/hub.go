package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"shate-rag-be/internal/pkg/logger"
	"shate-rag-be/internal/service"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const feedChannel = "shate_chat_feed"

type Hub struct {
	clients map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	chat service.IChatService

	// Redis relays the live feed between instances. Optional.
	rdb        *redis.Client
	instanceID string

	logger logger.ILogger
}

func NewHub(chat service.IChatService, rdb *redis.Client, log logger.ILogger) *Hub {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID]*Client),
		chat:       chat,
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

// Run serves registrations for the life of the process. ctx only bounds the Redis relay.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = client
			h.mu.Unlock()
			h.logger.Debug("WS", "Client registered", map[string]interface{}{
				"session_id": client.SessionID.String(),
				"monitor":    client.Monitor,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.SessionID]; ok {
				delete(h.clients, client.SessionID)
				close(client.Send)
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) answer(ctx context.Context, raw []byte) Frame {
	req, err := decodeQuestion(raw)
	if err != nil {
		return Frame{Type: FrameError, Data: service.AsFiberError(err).Message}
	}
	res, err := h.chat.Ask(ctx, req)
	if err != nil {
		return Frame{Type: FrameError, Data: service.AsFiberError(err).Message}
	}
	return Frame{Type: FrameAnswer, Data: res}
}

// BroadcastFeed delivers an answered chat to local monitors and relays it to other instances.
func (h *Hub) BroadcastFeed(payload []byte) {
	data, err := json.Marshal(Frame{Type: FrameFeed, Data: json.RawMessage(payload)})
	if err != nil {
		return
	}
	h.deliverToMonitors(data)

	if h.rdb != nil {
		envelope, _ := json.Marshal(map[string]interface{}{
			"origin":  h.instanceID,
			"message": json.RawMessage(data),
		})
		if err := h.rdb.Publish(context.Background(), feedChannel, envelope).Err(); err != nil {
			h.logger.Warn("WS", "Failed to relay feed to Redis", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (h *Hub) deliverToMonitors(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if !client.Monitor {
			continue
		}
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("WS", "Monitor send buffer full, dropping frame", map[string]interface{}{"session_id": client.SessionID.String()})
		}
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, feedChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			Origin  string          `json:"origin"`
			Message json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("WS", "Redis feed message parse error", map[string]interface{}{"error": err.Error()})
			continue
		}
		if payload.Origin == h.instanceID {
			continue
		}
		h.deliverToMonitors(payload.Message)
	}
}

// ClientCount reports the registered connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
