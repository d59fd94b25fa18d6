package http

import (
	"encoding/json"
	stdhttp "net/http"
	"slices"
	"sync"
	"time"

	"narrativeradar/internal/platform/logger"
	"narrativeradar/internal/platform/metrics"
	dom "narrativeradar/internal/services/narratives/domain"

	"github.com/gorilla/websocket"
)

const (
	sendBuffer = 4
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingEvery  = pongWait * 9 / 10
)

// SummaryItem is one narrative in a stream message
type SummaryItem struct {
	Name        string  `json:"name"`
	Score       float64 `json:"score"`
	Delta       string  `json:"delta"`
	ScoreChange float64 `json:"score_change"`
}

// Summary is the message pushed to stream clients after every run
type Summary struct {
	Type        string        `json:"type"`
	RunID       string        `json:"run_id"`
	GeneratedAt time.Time     `json:"generated_at"`
	Narratives  []SummaryItem `json:"narratives"`
	IdeaCount   int           `json:"idea_count"`
}

// Summarize reduces r to its stream message
func Summarize(r dom.Result) Summary {
	s := Summary{
		Type:        "run",
		RunID:       r.RunID,
		GeneratedAt: r.GeneratedAt,
		Narratives:  make([]SummaryItem, 0, len(r.Narratives)),
		IdeaCount:   len(r.Ideas),
	}
	for _, n := range r.Narratives {
		s.Narratives = append(s.Narratives, SummaryItem{Name: n.Name, Score: n.Score, Delta: n.Delta, ScoreChange: n.ScoreChange})
	}
	return s
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans run summaries out to websocket clients. A client that falls
// behind by more than a few messages is dropped. New clients receive the
// latest summary on connect
type Hub struct {
	up      websocket.Upgrader
	metrics *metrics.Registry
	log     logger.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	last    []byte
}

var _ dom.Publisher = (*Hub)(nil)

// NewHub returns a hub. An empty origins list keeps the same-origin check;
// "*" accepts any origin
func NewHub(m *metrics.Registry, origins []string) *Hub {
	h := &Hub{
		metrics: m,
		log:     *logger.Named("stream"),
		clients: map[*client]struct{}{},
	}
	h.up = websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 4096}
	switch {
	case slices.Contains(origins, "*"):
		h.up.CheckOrigin = func(*stdhttp.Request) bool { return true }
	case len(origins) > 0:
		h.up.CheckOrigin = func(r *stdhttp.Request) bool {
			return slices.Contains(origins, r.Header.Get("Origin"))
		}
	}
	return h
}

// Publish sends the summary of r to every client
func (h *Hub) Publish(r dom.Result) {
	b, err := json.Marshal(Summarize(r))
	if err != nil {
		h.log.Error().Err(err).Msg("encode stream summary")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = b
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			h.log.Warn().Msg("stream client too slow, dropping")
			h.dropLocked(c)
		}
	}
}

// Len reports connected clients
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.dropLocked(c)
	}
}

// ServeHTTP upgrades the request and streams until the client goes away
func (h *Hub) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	conn, err := h.up.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		h.log.Debug().Err(err).Msg("stream upgrade failed")
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
	h.mu.Unlock()
	h.metrics.StreamJoined()

	go h.write(c)
	h.read(c)
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.metrics.StreamLeft()
}

// read discards client frames and keeps the pong deadline fresh
func (h *Hub) read(c *client) {
	defer func() {
		h.drop(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) write(c *client) {
	ping := time.NewTicker(pingEvery)
	defer func() {
		ping.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ping.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
