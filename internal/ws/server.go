// Package ws carries live store events over WebSocket connections.
package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"storefront/internal/config"
	"storefront/internal/livestore"
	"storefront/utils"
)

// Dispatcher consumes inbound events and connection loss
type Dispatcher interface {
	Dispatch(conn livestore.Conn, event string, data json.RawMessage) error
	Disconnect(conn livestore.Conn)
}

// Server upgrades HTTP requests and pumps frames between sockets and the dispatcher
type Server struct {
	cfg        *config.Config
	dispatcher Dispatcher
	upgrader   websocket.Upgrader
}

func NewServer(cfg *config.Config, dispatcher Dispatcher) *Server {
	return &Server{
		cfg:        cfg,
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// storefront and CMS are served from other origins
				return true
			},
		},
	}
}

// HandleWebSocket is the gin handler for GET /ws
func (s *Server) HandleWebSocket(c *gin.Context) {
	socket, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.Warn("websocket upgrade failed", map[string]any{"error": err.Error()})
		return
	}

	conn := newConnection(socket)
	socket.SetReadLimit(s.cfg.WSMaxMessageBytes)
	utils.Info("websocket connected", map[string]any{
		"conn_id": conn.ID(),
		"remote":  c.Request.RemoteAddr,
	})

	go s.writePump(conn)
	go s.readPump(conn)
}

func (s *Server) readPump(conn *Connection) {
	defer func() {
		s.dispatcher.Disconnect(conn)
		conn.close()
		utils.Info("websocket disconnected", map[string]any{"conn_id": conn.ID()})
	}()

	_ = conn.conn.SetReadDeadline(time.Now().Add(s.cfg.WSReadTimeout))
	conn.conn.SetPongHandler(func(string) error {
		return conn.conn.SetReadDeadline(time.Now().Add(s.cfg.WSReadTimeout))
	})

	for {
		_, message, err := conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				utils.Warn("websocket read failed", map[string]any{"conn_id": conn.ID(), "error": err.Error()})
			}
			return
		}
		s.handleMessage(conn, message)
	}
}

func (s *Server) writePump(conn *Connection) {
	ticker := time.NewTicker(s.cfg.WSPingInterval)
	defer func() {
		ticker.Stop()
		_ = conn.conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.send:
			_ = conn.conn.SetWriteDeadline(time.Now().Add(s.cfg.WSWriteTimeout))
			if !ok {
				_ = conn.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				utils.Warn("websocket write failed", map[string]any{"conn_id": conn.ID(), "error": err.Error()})
				return
			}

		case <-ticker.C:
			_ = conn.conn.SetWriteDeadline(time.Now().Add(s.cfg.WSWriteTimeout))
			if err := conn.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleMessage(conn *Connection, message []byte) {
	var frame Frame
	if err := json.Unmarshal(message, &frame); err != nil || frame.Event == "" {
		s.sendError(conn, "invalid frame: expected {\"event\": ..., \"data\": ...}")
		return
	}

	if err := s.dispatcher.Dispatch(conn, frame.Event, frame.Data); err != nil {
		utils.Warn("live store event rejected", map[string]any{
			"conn_id": conn.ID(),
			"event":   frame.Event,
			"error":   err.Error(),
		})
		s.sendError(conn, err.Error())
	}
}

func (s *Server) sendError(conn *Connection, message string) {
	if err := conn.Send(livestore.EventError, livestore.ErrorEvent{Message: message}); err != nil {
		utils.Debug("error frame not delivered", map[string]any{"conn_id": conn.ID(), "error": err.Error()})
	}
}
