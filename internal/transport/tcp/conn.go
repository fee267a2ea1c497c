package tcp

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/vovakirdan/lanchat/internal/proto"
)

// netConn adapts a net.Conn carrying fixed-size records to core.Conn.
type netConn struct {
	conn    net.Conn
	writeMu sync.Mutex
}

func newNetConn(conn net.Conn) *netConn {
	return &netConn{conn: conn}
}

func (c *netConn) ReadMessage(ctx context.Context) (proto.Message, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetReadDeadline(deadline)
	}
	return proto.Read(c.conn)
}

// WriteMessage writes one record. A record is never split between writers.
func (c *netConn) WriteMessage(ctx context.Context, msg proto.Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(deadline)
	} else {
		_ = c.conn.SetWriteDeadline(time.Time{})
	}
	return proto.Write(c.conn, msg)
}

func (c *netConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

func (c *netConn) Close() error {
	return c.conn.Close()
}
