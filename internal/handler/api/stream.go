package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"FinSight/internal/domain/models"
	xlogger "FinSight/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait  = 5 * time.Second
	pingPeriod = 30 * time.Second
)

// AlertHub broadcasts anomaly alerts to websocket subscribers. It
// implements repository.AlertPublisher so the anomaly scanner can fan
// out without knowing who is listening.
type AlertHub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]struct{}
	writeMu  sync.Mutex // serializes writes; gorilla allows one writer per conn
	upgrader websocket.Upgrader
	logger   *xlogger.Logger
}

// NewAlertHub creates the websocket alert hub.
func NewAlertHub(logger *xlogger.Logger) *AlertHub {
	return &AlertHub{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// RegisterRoutes registers the alert stream endpoint.
func (h *AlertHub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/anomalies", h.Subscribe)
}

// Subscribe upgrades the connection and keeps it registered until the
// peer goes away.
func (h *AlertHub) Subscribe(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("alert subscriber connected", xlogger.Int("subscribers", n))

	go h.keepAlive(conn)
	return nil
}

// keepAlive pings the peer and reaps the connection on the first failed
// read or write.
func (h *AlertHub) keepAlive(conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer h.drop(conn)

	// Reader goroutine: we never expect payloads, only close frames.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			h.writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			h.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (h *AlertHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("alert subscriber disconnected", xlogger.Int("subscribers", n))
}

// PublishAlert broadcasts one alert to every subscriber. Slow or dead
// subscribers are dropped rather than blocking the scan.
func (h *AlertHub) PublishAlert(_ context.Context, alert models.AnomalyAlert) error {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		h.writeMu.Lock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := conn.WriteJSON(alert)
		h.writeMu.Unlock()
		if err != nil {
			h.drop(conn)
		}
	}
	return nil
}

// Subscribers returns the current subscriber count.
func (h *AlertHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every subscriber.
func (h *AlertHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}
