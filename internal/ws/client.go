package ws

import (
	"sync"
	"time"

	"github.com/mcoot/survivordraft/internal/model"
)

// Buffer size for outgoing messages
const sendBufferSize = 64

// Client is one live connection's outbound queue
type Client struct {
	id          string
	session     model.SessionID
	connectedAt time.Time

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

// NewClient creates a new client for a connection
func NewClient(id string, session model.SessionID) *Client {
	return &Client{
		id:          id,
		session:     session,
		connectedAt: time.Now(),
		send:        make(chan []byte, sendBufferSize),
	}
}

// Send queues a message without blocking. It reports false when the
// client's buffer is full or the client is closed.
func (c *Client) Send(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// Messages is drained by the connection's writer
func (c *Client) Messages() <-chan []byte {
	return c.send
}

// Close stops delivery; the writer exits once the queue is drained
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
