package crdtp

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync/atomic"
)

// rawConnection wraps net.Conn and adds error state. The connection is marked
// as failed when an incomplete write occurs, since a partially written frame
// leaves the message stream unrecoverable.
type rawConnection struct {
	net.Conn
	failState atomic.Bool
}

// Write delegates to the embedded connection and tracks the one situation the
// line protocol cannot survive: a write deadline expiring with part of a
// frame on the wire (not all and not zero bytes). In that case the connection
// moves to the failed state and the returned error is wrapped with
// "incomplete write".
func (c *rawConnection) Write(b []byte) (int, error) {
	n, err := c.Conn.Write(b)
	if errors.Is(err, os.ErrDeadlineExceeded) && n < len(b) && n != 0 {
		c.failState.Store(true)
		err = fmt.Errorf("incomplete write: %w", err)
	}
	return n, err
}
