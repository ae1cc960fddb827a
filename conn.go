package crdtp

import (
	"bufio"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	cjson "github.com/kazmanavt/crdtp/json"
)

var errFailedConnection = errors.New("failed connection")

// NetChannel is a FrontendChannel over a net.Conn. Outbound messages are
// flattened to CBOR, converted to JSON text at the transport boundary, and
// written as newline-delimited frames. Responses are written through
// immediately; notifications sit in the write buffer until
// FlushProtocolNotifications, giving the flush point its batching semantics.
//
// Messages sent through one NetChannel by one goroutine go out in call order.
type NetChannel struct {
	conn           *rawConnection
	w              *bufio.Writer
	mu             sync.Mutex // mu serializes writes and Close
	log            *slog.Logger
	defaultTimeout time.Duration
}

// NewNetChannel wraps c. The channel does not own the connection's read side;
// the embedder pumps inbound frames itself (see Server).
//
// Parameters:
//   - c: The network connection to write frames to
//   - _log: Optional logger (defaults to slog.Default() if nil)
func NewNetChannel(c net.Conn, _log *slog.Logger) *NetChannel {
	if _log == nil {
		_log = slog.Default()
	}
	raw := &rawConnection{Conn: c}
	return &NetChannel{
		conn:           raw,
		w:              bufio.NewWriter(raw),
		log:            _log,
		defaultTimeout: 5 * time.Second,
	}
}

// SendProtocolResponse writes the response correlated with callID and flushes
// it through to the wire.
func (c *NetChannel) SendProtocolResponse(callID int32, message Serializable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeFrame(message) {
		if err := c.w.Flush(); err != nil {
			c.log.Debug("failed to flush response", slog.String("error", err.Error()))
		}
	}
}

// SendProtocolNotification queues a notification in the write buffer.
func (c *NetChannel) SendProtocolNotification(message Serializable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeFrame(message)
}

// FallThrough terminates the routing chain: a network channel has no outer
// router to delegate to, so the unrecognized method is reported back to the
// client as a MethodNotFound error response.
func (c *NetChannel) FallThrough(callID int32, method []byte, message []byte) {
	c.log.Debug("no outer router, reporting method not found",
		slog.String("method", string(method)))
	resp := MethodNotFound("'" + string(method) + "' wasn't found")
	c.SendProtocolResponse(callID, CreateErrorResponse(callID, resp))
}

// FlushProtocolNotifications pushes any queued notifications to the wire.
func (c *NetChannel) FlushProtocolNotifications() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.w.Flush(); err != nil {
		c.log.Debug("failed to flush notifications", slog.String("error", err.Error()))
	}
}

// Error returns an error if the connection is in a failed state.
func (c *NetChannel) Error() error {
	if c.conn.failState.Load() {
		return errFailedConnection
	}
	return nil
}

// Close closes the underlying connection.
func (c *NetChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.conn.Close()
	c.log.Debug("channel closed")
	return err
}

// writeFrame serializes message, converts it to a JSON text line and writes
// it into the buffered writer. Reports whether the frame was written.
func (c *NetChannel) writeFrame(message Serializable) bool {
	if c.conn.failState.Load() {
		c.log.Debug("dropping message on failed connection")
		return false
	}
	raw, err := Serialize(message)
	if err != nil {
		c.log.Warn("failed to serialize message", slog.String("error", err.Error()))
		return false
	}
	text, err := cjson.ConvertCBORToJSON(raw)
	if err != nil {
		c.log.Warn("failed to convert message to JSON", slog.String("error", err.Error()))
		return false
	}
	deadline := time.Now().Add(c.defaultTimeout)
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		c.log.Warn("fail to set write deadline", slog.String("error", err.Error()))
	}
	if _, err := c.w.Write(append(text, '\n')); err != nil {
		c.log.Debug("failed to write frame", slog.String("error", err.Error()))
		return false
	}
	return true
}
