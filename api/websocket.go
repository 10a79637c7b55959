package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/seenimoa/intrinsic/pkg/models"
	"github.com/seenimoa/intrinsic/pkg/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by the CORS configuration for HTTP routes only.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Maximum concurrent valuations per connection.
	maxInflight = 4

	// Maximum batches queued or running per connection.
	maxBatches = 4

	// Maximum tickers in one value request.
	maxBatchSize = 50
)

// Message types.
const (
	MsgValue     = "value"     // client → server: {"tickers": ["AAPL", "MSFT"]}
	MsgPing      = "ping"      // client → server
	MsgPong      = "pong"      // server → client
	MsgValuation = "valuation" // server → requesting client: full valuation
	MsgCompleted = "completed" // server → requesting client: batch finished
	MsgValued    = "valued"    // server → all clients: ticker and status
	MsgError     = "error"     // server → requesting client
)

// WSMessage is a message sent over WebSocket connections.
type WSMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// ValueRequest is the payload of a value message.
type ValueRequest struct {
	Tickers []string `json:"tickers"`
}

// tickers returns the normalized, de-duplicated tickers in request order.
func (r ValueRequest) tickers() []string {
	seen := make(map[string]bool, len(r.Tickers))
	out := make([]string, 0, len(r.Tickers))
	for _, t := range r.Tickers {
		t = utils.NormalizeTicker(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Completed closes a value request.
type Completed struct {
	Tickers   []string `json:"tickers"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
}

// Valued is the broadcast payload of a finished valuation.
type Valued struct {
	Ticker string        `json:"ticker"`
	RunID  string        `json:"run_id"`
	Status models.Status `json:"status"`
}

func valued(v *models.Valuation) WSMessage {
	return WSMessage{Type: MsgValued, Data: Valued{Ticker: v.Company.Ticker, RunID: v.RunID, Status: v.Status}}
}

// handleWebSocket upgrades the connection. Clients request valuations
// with value messages, receive one valuation or error per ticker and a
// completed message per request, and see every valuation the server
// finishes as a valued notice.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade", zap.Error(err))
		return
	}

	client := newWSClient()
	if !s.wsHub.Register(client) {
		conn.Close()
		return
	}

	go s.wsWritePump(conn, client)
	go s.wsReadPump(conn, client)
}

// wsReadPump reads client requests until the connection fails.
func (s *Server) wsReadPump(conn *websocket.Conn, client *WSClient) {
	ctx, cancel := context.WithCancel(context.Background())
	var inflight sync.WaitGroup
	slots := make(chan struct{}, maxInflight)
	batches := make(chan struct{}, maxBatches)
	defer func() {
		cancel()
		inflight.Wait()
		s.wsHub.Unregister(client)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket read", zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(message, &msg); err != nil {
			client.Send(WSMessage{Type: MsgError, Data: "malformed message"})
			continue
		}

		switch msg.Type {
		case MsgPing:
			client.Send(WSMessage{Type: MsgPong})
		case MsgValue:
			var req ValueRequest
			if err := json.Unmarshal(msg.Data, &req); err != nil {
				client.Send(WSMessage{Type: MsgError, Data: "malformed value request"})
				continue
			}
			tickers := req.tickers()
			switch {
			case len(tickers) == 0:
				client.Send(WSMessage{Type: MsgError, Data: "tickers are required"})
				continue
			case len(tickers) > maxBatchSize:
				client.Send(WSMessage{Type: MsgError, Data: fmt.Sprintf("at most %d tickers per request", maxBatchSize)})
				continue
			}
			select {
			case batches <- struct{}{}:
			default:
				client.Send(WSMessage{Type: MsgError, Data: "too many requests in flight"})
				continue
			}
			inflight.Add(1)
			go func() {
				defer func() { <-batches; inflight.Done() }()
				s.streamBatch(ctx, client, tickers, slots)
			}()
		default:
			client.Send(WSMessage{Type: MsgError, Data: "unknown message type " + msg.Type})
		}
	}
}

// streamBatch values tickers concurrently, at most cap(slots) at a time
// across the connection, and sends completed once all have reported.
func (s *Server) streamBatch(ctx context.Context, client *WSClient, tickers []string, slots chan struct{}) {
	var (
		wg     sync.WaitGroup
		failed atomic.Int32
	)
	defer wg.Wait()
	for _, ticker := range tickers {
		select {
		case slots <- struct{}{}:
		case <-ctx.Done():
			return
		}
		wg.Add(1)
		go func() {
			defer func() { <-slots; wg.Done() }()
			if !s.streamValuation(ctx, client, ticker) {
				failed.Add(1)
			}
		}()
	}
	wg.Wait()
	if ctx.Err() != nil {
		return
	}

	n := int(failed.Load())
	client.Send(WSMessage{Type: MsgCompleted, Data: Completed{
		Tickers:   tickers,
		Succeeded: len(tickers) - n,
		Failed:    n,
	}})
}

func (s *Server) streamValuation(ctx context.Context, client *WSClient, ticker string) bool {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	v, err := s.valuer.Value(ctx, ticker)
	if err != nil {
		client.Send(WSMessage{Type: MsgError, Data: map[string]any{
			"ticker": ticker,
			"status": statusOf(err),
			"error":  err.Error(),
		}})
		return false
	}
	client.Send(WSMessage{Type: MsgValuation, Data: v})
	s.wsHub.Broadcast(valued(v))
	return true
}

// wsWritePump pumps messages from the client queue to the connection.
func (s *Server) wsWritePump(conn *websocket.Conn, client *WSClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ============================================================
// WebSocket Hub
// ============================================================

// WSClient is one connection's outbound queue. Sends after close are
// dropped.
type WSClient struct {
	mu     sync.Mutex
	send   chan WSMessage
	closed bool
}

func newWSClient() *WSClient {
	return &WSClient{send: make(chan WSMessage, 64)}
}

// Send queues a message. It reports false when the client is closed or its
// queue is full.
func (c *WSClient) Send(msg WSMessage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *WSClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// WSHub tracks connected clients and fans out broadcasts.
type WSHub struct {
	mu         sync.RWMutex
	clients    map[*WSClient]bool
	broadcast  chan WSMessage
	register   chan *WSClient
	unregister chan *WSClient
	done       chan struct{}
	stopOnce   sync.Once
}

// NewWSHub creates a hub. Run must be started before clients register.
func NewWSHub() *WSHub {
	return &WSHub{
		clients:    make(map[*WSClient]bool),
		broadcast:  make(chan WSMessage, 256),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
		done:       make(chan struct{}),
	}
}

// Run is the hub event loop; it returns after Stop.
func (h *WSHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if h.clients[client] {
				delete(h.clients, client)
				client.close()
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if !client.Send(msg) {
					// slow client
					delete(h.clients, client)
					client.close()
				}
			}
			h.mu.Unlock()
		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				client.close()
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop ends Run and closes every client.
func (h *WSHub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Broadcast sends a message to all connected clients. It never blocks.
func (h *WSHub) Broadcast(msg WSMessage) {
	select {
	case h.broadcast <- msg:
	default:
	}
}

// ClientCount returns the number of connected clients.
func (h *WSHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds a client. It reports false once the hub is stopped.
func (h *WSHub) Register(client *WSClient) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client.
func (h *WSHub) Unregister(client *WSClient) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
