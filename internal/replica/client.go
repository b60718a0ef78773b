package replica

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"lifecast/internal/wire"
)

// ErrNotConnected is returned by Submit while no session is open.
var ErrNotConnected = errors.New("not connected")

// Client keeps a replica in sync with a server over a websocket. When the
// stream breaks it reconnects and starts over from a fresh snapshot.
type Client struct {
	url     string
	codec   wire.Codec
	dialer  *websocket.Dialer
	logger  *log.Logger
	backoff time.Duration

	current    atomic.Pointer[Replica]
	rejections chan wire.PatternRejected

	connMu sync.Mutex // serializes writes on conn
	conn   *websocket.Conn
}

// NewClient returns a client for the websocket endpoint at url. The codec
// name is appended as a query parameter.
func NewClient(url string, codec wire.Codec, logger *log.Logger) *Client {
	if codec == nil {
		codec = wire.JSON
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		url:        url + "?codec=" + codec.Name(),
		codec:      codec,
		dialer:     websocket.DefaultDialer,
		logger:     logger,
		backoff:    time.Second,
		rejections: make(chan wire.PatternRejected, 16),
	}
}

// Replica returns the replica of the current session, or nil before the
// first snapshot arrives.
func (c *Client) Replica() *Replica { return c.current.Load() }

// Rejections delivers pattern_rejected notices. Notices are dropped when
// nobody reads them.
func (c *Client) Rejections() <-chan wire.PatternRejected { return c.rejections }

// Run keeps a session open until ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	for {
		err := c.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Printf("[network] session ended: %v; reconnecting in %s", err, c.backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.backoff):
		}
	}
}

func (c *Client) session(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.url, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	msgType, raw, err := c.read(conn)
	if err != nil {
		return err
	}
	if msgType != wire.TypeInitPack {
		return fmt.Errorf("expected %s, got %s", wire.TypeInitPack, msgType)
	}
	var initPack wire.InitPack
	if err := c.codec.DecodePayload(raw, &initPack); err != nil {
		return err
	}
	rep, err := New(initPack)
	if err != nil {
		return err
	}
	c.setConn(conn)
	defer c.setConn(nil)
	c.current.Store(rep)
	c.logger.Printf("[network] synced at iteration=%d rows=%d cols=%d", initPack.CurrentIteration, initPack.Dimensions.Rows, initPack.Dimensions.Cols)

	for {
		msgType, raw, err := c.read(conn)
		if err != nil {
			return err
		}
		switch msgType {
		case wire.TypeUpdatePack:
			var pack wire.UpdatePack
			if err := c.codec.DecodePayload(raw, &pack); err != nil {
				return err
			}
			if err := rep.Apply(pack); err != nil {
				return err
			}
		case wire.TypePatternRejected:
			var rej wire.PatternRejected
			if err := c.codec.DecodePayload(raw, &rej); err != nil {
				return err
			}
			select {
			case c.rejections <- rej:
			default:
			}
		}
	}
}

func (c *Client) read(conn *websocket.Conn) (string, []byte, error) {
	_, data, err := conn.ReadMessage()
	if err != nil {
		return "", nil, err
	}
	return c.codec.DecodeEnvelope(data)
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
}

// Submit asks the server to place mask with its top-left corner at
// (offsetRow, offsetCol).
func (c *Client) Submit(mask [5][5]uint8, offsetRow, offsetCol int) error {
	data, err := c.codec.Encode(wire.TypeCreatePattern, wire.NewCreatePattern(mask, offsetRow, offsetCol))
	if err != nil {
		return err
	}
	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.conn.WriteMessage(c.codec.FrameType(), data)
}
