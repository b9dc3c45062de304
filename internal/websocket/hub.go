package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"autoideas-be/internal/pkg/logger"
	"autoideas-be/pkg/events"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	clusterChannel = "cluster_events"
	replayDepth    = 32
)

// room holds the clients watching one workshop plus a ring buffer of recent
// events so a facilitator who reconnects sees what just happened.
type room struct {
	clients []*Client
	recent  [][]byte
}

type Hub struct {
	// Registered clients map: WorkshopID -> room (many dashboards per workshop)
	rooms map[uuid.UUID]*room

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance fan-out
	rdb *redis.Client

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[uuid.UUID]*room),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	// Start Redis subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			r, ok := h.rooms[client.WorkshopID]
			if !ok {
				r = &room{}
				h.rooms[client.WorkshopID] = r
			}
			r.clients = append(r.clients, client)
			replay := make([][]byte, len(r.recent))
			copy(replay, r.recent)
			h.mu.Unlock()

			// Replay recent events so late joiners are not blind.
			for _, msg := range replay {
				select {
				case client.Send <- msg:
				default:
				}
			}
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"workshop_id": client.WorkshopID})

		case client := <-h.unregister:
			h.mu.Lock()
			if r, ok := h.rooms[client.WorkshopID]; ok {
				for i, c := range r.clients {
					if c == client {
						r.clients = append(r.clients[:i], r.clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(r.clients) == 0 && len(r.recent) == 0 {
					delete(h.rooms, client.WorkshopID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish fans an event out to every dashboard watching its workshop and
// records it for replay. With Redis attached the delivery goes through the
// shared channel so all instances, this one included, deliver exactly once.
func (h *Hub) Publish(event events.Event) {
	data, err := json.Marshal(event.Payload())
	if err != nil {
		h.logger.Error("Hub", "Failed to serialize event", map[string]interface{}{"error": err.Error()})
		return
	}

	workshopID := event.WorkshopID()
	h.record(workshopID, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"target_workshop_id": workshopID.String(),
			"message":            json.RawMessage(data),
		})
		h.rdb.Publish(context.Background(), clusterChannel, payload)
		return
	}

	h.deliverLocal(workshopID, data)
}

func (h *Hub) record(workshopID uuid.UUID, data []byte) {
	h.mu.Lock()
	r, ok := h.rooms[workshopID]
	if !ok {
		r = &room{}
		h.rooms[workshopID] = r
	}
	r.recent = append(r.recent, data)
	if len(r.recent) > replayDepth {
		r.recent = r.recent[len(r.recent)-replayDepth:]
	}
	h.mu.Unlock()
}

func (h *Hub) deliverLocal(workshopID uuid.UUID, data []byte) {
	h.mu.RLock()
	r, ok := h.rooms[workshopID]
	var targets []*Client
	if ok {
		targets = make([]*Client, len(r.clients))
		copy(targets, r.clients)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"workshop_id": workshopID})
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to the shared channel and delivers to the
	// workshops it has locally. Events relayed from other instances are not
	// re-recorded, the publishing instance already owns the replay buffer.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetWorkshopID string          `json:"target_workshop_id"`
			Message          json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		workshopID, err := uuid.Parse(payload.TargetWorkshopID)
		if err != nil {
			continue
		}

		h.deliverLocal(workshopID, payload.Message)
	}
}
