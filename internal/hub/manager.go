package hub

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"net/http"
	"slices"
	"sync"

	"github.com/berlincodez/Campus-Skill-link/internal/event"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	shardCount = 64 // tune: 16/64/128 depending on load
)

type clientBucket struct {
	sync.RWMutex
	rooms map[string]map[string]*Client
}

// Hub fans thread events out to websocket subscribers. Rooms are keyed by connection id and
// spread over shards so publishers on different threads do not contend.
type Hub struct {
	shards     [shardCount]*clientBucket
	register   chan *Client
	unregister chan *Client
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	stopOnce   sync.Once
	upgrader   websocket.Upgrader
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger, allowedOrigins []string) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		register:   make(chan *Client, 1024),
		unregister: make(chan *Client, 1024),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		logger:     logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}

	for i := 0; i < shardCount; i++ {
		h.shards[i] = &clientBucket{
			rooms: make(map[string]map[string]*Client),
		}
	}

	go h.run()

	return h
}

// Publish delivers ev to every subscriber of the thread. Subscribers whose buffer is full
// are disconnected; they catch up through polling.
func (h *Hub) Publish(connectionID string, ev event.WsEvent) {
	b := h.shards[getShard(connectionID)]

	// collect clients while holding RLock
	b.RLock()
	room, ok := b.rooms[connectionID]
	if !ok || len(room) == 0 {
		b.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room))
	for _, c := range room {
		clients = append(clients, c)
	}
	b.RUnlock()

	// deliver to clients without holding lock
	for _, c := range clients {
		if c.SafeSend(ev) {
			continue
		}
		h.logger.Warn("egress full, dropping subscriber",
			zap.String("client_id", c.ID),
			zap.String("connection_id", connectionID),
		)
		h.kick(c)
	}
}

func getShard(connectionID string) uint32 {
	if connectionID == "" {
		return 0
	}

	sum := sha1.Sum([]byte(connectionID))
	return binary.BigEndian.Uint32(sum[:4]) % shardCount
}

func (h *Hub) addClient(c *Client) {
	sh := getShard(c.connectionID)
	b := h.shards[sh]
	b.Lock()
	defer b.Unlock()

	room, ok := b.rooms[c.connectionID]
	if !ok {
		room = make(map[string]*Client)
		b.rooms[c.connectionID] = room
	}

	room[c.ID] = c
	h.logger.Debug("subscriber registered",
		zap.String("client_id", c.ID),
		zap.String("user_id", c.userID),
		zap.String("connection_id", c.connectionID),
		zap.Uint32("shard", sh),
	)
}

func (h *Hub) removeClient(c *Client) {
	sh := getShard(c.connectionID)
	b := h.shards[sh]
	b.Lock()
	defer b.Unlock()

	if room, ok := b.rooms[c.connectionID]; ok {
		delete(room, c.ID)

		if len(room) == 0 {
			delete(b.rooms, c.connectionID)
		}
	}

	c.Close()
	h.logger.Debug("subscriber removed",
		zap.String("client_id", c.ID),
		zap.String("connection_id", c.connectionID),
	)
}

func (h *Hub) kick(c *Client) {
	select {
	case h.unregister <- c:
	default:
		// run loop is saturated; closing the client still ends both pumps
		c.Close()
	}
}

func (h *Hub) run() {
	defer close(h.done)
	for {
		select {
		case <-h.ctx.Done():
			return
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.removeClient(c)
		}
	}
}

// Stop closes every subscriber and ends the run loop. Safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		h.cancel()
		<-h.done

		for _, shard := range h.shards {
			shard.Lock()
			for id, room := range shard.rooms {
				for _, client := range room {
					client.Close()
				}
				delete(shard.rooms, id)
			}
			shard.Unlock()
		}
	})
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// non-browser clients do not send an Origin header
		if origin == "" {
			return true
		}
		return slices.Contains(allowed, origin)
	}
}

// ServeWS upgrades the request and subscribes the socket to one thread room.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string, connectionID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	if RegisterClient(userID, connectionID, conn, h) == nil {
		_ = conn.Close()
	}
}
