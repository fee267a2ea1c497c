package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdhttp "net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/lanchat/internal/core"
	"github.com/vovakirdan/lanchat/internal/proto"
)

var errTextFrame = errors.New("ws: expected binary frame")

// WSHandler upgrades HTTP connections and hands them to the router. Each
// binary frame carries exactly one wire record.
type WSHandler struct {
	router *core.Router
	log    *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(router *core.Router, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{router: router, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	conn.SetReadLimit(proto.Size)

	if err := h.router.Serve(r.Context(), newWSConn(conn, r.RemoteAddr)); err != nil && !errors.Is(err, core.ErrCapacityExceeded) {
		h.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("ws connection closed with error")
	}
}

type wsConn struct {
	conn   *websocket.Conn
	remote string
	once   sync.Once
}

func newWSConn(conn *websocket.Conn, remote string) *wsConn {
	return &wsConn{conn: conn, remote: remote}
}

func (c *wsConn) ReadMessage(ctx context.Context) (proto.Message, error) {
	typ, data, err := c.conn.Read(ctx)
	if err != nil {
		switch websocket.CloseStatus(err) {
		case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			return proto.Message{}, io.EOF
		}
		return proto.Message{}, err
	}
	if typ != websocket.MessageBinary {
		return proto.Message{}, fmt.Errorf("%w: got %v", errTextFrame, typ)
	}
	return proto.Decode(data)
}

func (c *wsConn) WriteMessage(ctx context.Context, msg proto.Message) error {
	return c.conn.Write(ctx, websocket.MessageBinary, proto.Encode(msg))
}

func (c *wsConn) RemoteAddr() string {
	return c.remote
}

// Close starts the closing handshake without waiting for the peer, so a
// router closing a stalled session is never blocked by it.
func (c *wsConn) Close() error {
	c.once.Do(func() {
		go func() { _ = c.conn.Close(websocket.StatusNormalClosure, "") }()
	})
	return nil
}
