// Package feed exposes the market event stream to external consumers
// over WebSocket. Clients receive every bus event as a JSON frame.
package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"nftmarket_go/internal/event"
	"nftmarket_go/internal/infra"
)

const (
	writeTimeout  = 10 * time.Second
	pingInterval  = 30 * time.Second
	clientBufSize = 64
)

// Server broadcasts bus events to connected WebSocket clients. A client
// that cannot keep up is disconnected rather than allowed to stall the
// broadcast loop.
type Server struct {
	addr     string
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}

	httpSrv *http.Server
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewServer creates a feed server listening on addr.
func NewServer(addr string) *Server {
	return &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Start begins serving and draining the bus subscription ch.
func (s *Server) Start(ctx context.Context, ch <-chan event.Event) error {
	ctx, s.cancel = context.WithCancel(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	s.httpSrv = &http.Server{Addr: s.addr, Handler: mux}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Feed server stopped", slog.Any("error", err))
		}
	}()

	s.wg.Add(1)
	go s.broadcastLoop(ctx, ch)

	slog.Info("Feed server listening", slog.String("addr", s.addr))
	return nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", slog.Any("error", err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientBufSize)}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	infra.GlobalMetrics.IncrementFeedClients()

	s.wg.Add(1)
	go s.writePump(c)

	// Read loop: clients send nothing we act on, but reading drains
	// control frames and detects disconnects.
	go func() {
		defer s.drop(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) writePump(c *client) {
	defer s.wg.Done()
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer c.conn.Close()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeTimeout))
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.drop(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.drop(c)
				return
			}
		}
	}
}

func (s *Server) broadcastLoop(ctx context.Context, ch <-chan event.Event) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			s.broadcast(ev)
		}
	}
}

type frame struct {
	Type string      `json:"type"`
	Data event.Event `json:"data"`
}

func (s *Server) broadcast(ev event.Event) {
	msg, err := json.Marshal(frame{Type: ev.GetType(), Data: ev})
	if err != nil {
		slog.Warn("Failed to encode event", slog.String("type", ev.GetType()), slog.Any("error", err))
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		select {
		case c.send <- msg:
		default:
			// Slow consumer: disconnect instead of blocking the feed.
			go s.drop(c)
		}
	}
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c]
	if ok {
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()
	if ok {
		c.conn.Close()
		infra.GlobalMetrics.DecrementFeedClients()
	}
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Stop shuts the server down and closes all client connections.
func (s *Server) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.httpSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpSrv.Shutdown(ctx)
	}

	s.mu.Lock()
	for c := range s.clients {
		delete(s.clients, c)
		close(c.send)
		c.conn.Close()
		infra.GlobalMetrics.DecrementFeedClients()
	}
	s.mu.Unlock()

	s.wg.Wait()
}
