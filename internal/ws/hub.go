package ws

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/studyhub/studyhub-backend/pkg/logger"
)

const redisPubSubChannel = "studyhub:events"

var (
	wsConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_connections_active",
			Help: "Number of currently connected WebSocket clients",
		},
	)

	wsEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ws_events_published_total",
			Help: "Total number of events published to channels",
		},
		[]string{"event"},
	)
)

// Event is a real-time payload pushed to subscribed connections
type Event struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// MembershipChecker authorizes a connection's request to join a group
// channel
type MembershipChecker interface {
	IsApprovedMember(userID string, groupID int64) (bool, error)
}

// Hub routes events to the connections subscribed to a channel.
// Delivery is fire-and-forget: a slow or mid-disconnect connection is
// dropped, never waited on. Clients that miss a live event reconcile by
// re-fetching state on reconnect.
type Hub struct {
	registry   *Registry
	membership MembershipChecker

	instanceID  string
	redisClient *redis.Client
	log         zerolog.Logger
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewHub creates a new Hub. redisClient may be nil; the hub then
// delivers to local connections only.
func NewHub(redisClient *redis.Client, membership MembershipChecker) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		registry:    NewRegistry(),
		membership:  membership,
		instanceID:  uuid.New().String(),
		redisClient: redisClient,
		log:         logger.WithComponent("hub"),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Registry exposes the connection registry (read paths for handlers)
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Run starts the cross-instance subscriber, if Redis is available
func (h *Hub) Run() {
	if h.redisClient != nil {
		go h.subscribeRedis()
	}
}

// Register adds a client connection to the registry
func (h *Hub) Register(c *Client) {
	h.registry.Add(c)
	wsConnectionsActive.Inc()
}

// Unregister removes a client connection and closes its send queue
func (h *Hub) Unregister(c *Client) {
	if removed := h.registry.Remove(c.id); removed != nil {
		removed.closeSend()
		wsConnectionsActive.Dec()
	}
}

// Publish pushes an event to every live connection subscribed to the
// channel, then relays it to the other instances via Redis. At-most-once
// per connection; there is no retry or replay queue.
func (h *Hub) Publish(channel, event string, payload interface{}) {
	data, err := json.Marshal(&Event{Event: event, Payload: payload})
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("marshal event")
		return
	}

	h.deliverLocal(channel, data)
	wsEventsPublished.WithLabelValues(event).Inc()

	if h.redisClient != nil {
		msg := &relayMessage{Instance: h.instanceID, Channel: channel, Data: data}
		raw, err := json.Marshal(msg)
		if err == nil {
			h.redisClient.Publish(h.ctx, redisPubSubChannel, raw) //nolint:errcheck
		}
	}
}

// deliverLocal pushes raw bytes to the local members of a channel. The
// registry lock is released before any send; a full send buffer drops
// the connection, matching the at-most-once contract.
func (h *Hub) deliverLocal(channel string, data []byte) {
	for _, c := range h.registry.MembersOf(channel) {
		if !c.enqueue(data) {
			h.Unregister(c)
		}
	}
}

type relayMessage struct {
	Instance string          `json:"instance"`
	Channel  string          `json:"channel"`
	Data     json.RawMessage `json:"data"`
}

// subscribeRedis listens for events published by other instances.
// Messages carrying our own instance ID are skipped; the local delivery
// already happened in Publish.
func (h *Hub) subscribeRedis() {
	pubsub := h.redisClient.Subscribe(h.ctx, redisPubSubChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var rm relayMessage
			if err := json.Unmarshal([]byte(msg.Payload), &rm); err != nil {
				continue
			}
			if rm.Instance == h.instanceID {
				continue
			}
			h.deliverLocal(rm.Channel, rm.Data)
		case <-h.ctx.Done():
			return
		}
	}
}

// Stop gracefully shuts down the hub
func (h *Hub) Stop() {
	h.cancel()
}
