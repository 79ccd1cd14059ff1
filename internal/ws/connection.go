package ws

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"storefront/utils"
)

// sendBufferSize bounds how many frames may queue for a slow client
const sendBufferSize = 256

var (
	ErrBufferFull       = errors.New("send buffer full")
	ErrConnectionClosed = errors.New("connection closed")
)

// Frame is the wire envelope in both directions
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Connection is one upgraded client socket. Writes go through the send channel
// and are performed by the connection's write pump only.
type Connection struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func newConnection(conn *websocket.Conn) *Connection {
	return &Connection{
		id:   utils.PrefixedID("conn"),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

func (c *Connection) ID() string {
	return c.id
}

// Send queues an event for the client without blocking.
func (c *Connection) Send(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(Frame{Event: event, Data: data})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnectionClosed
	}
	select {
	case c.send <- frame:
		return nil
	default:
		return ErrBufferFull
	}
}

// close stops accepting sends and lets the write pump flush a close frame
func (c *Connection) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}
