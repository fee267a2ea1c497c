package core

import (
	"context"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/lanchat/internal/proto"
	"github.com/vovakirdan/lanchat/internal/store/file"
)

// fakeConn is an in-memory Conn. Tests push records into in and read the
// server's output from out.
type fakeConn struct {
	in     chan proto.Message
	out    chan proto.Message
	closed chan struct{}
	once   sync.Once
	remote string
}

func newFakeConn(remote string, outBuf int) *fakeConn {
	return &fakeConn{
		in:     make(chan proto.Message, 16),
		out:    make(chan proto.Message, outBuf),
		closed: make(chan struct{}),
		remote: remote,
	}
}

func (c *fakeConn) ReadMessage(ctx context.Context) (proto.Message, error) {
	select {
	case msg := <-c.in:
		return msg, nil
	case <-c.closed:
		return proto.Message{}, io.EOF
	case <-ctx.Done():
		return proto.Message{}, ctx.Err()
	}
}

func (c *fakeConn) WriteMessage(ctx context.Context, msg proto.Message) error {
	select {
	case <-c.closed:
		return net.ErrClosed
	default:
	}
	select {
	case c.out <- msg:
		return nil
	case <-c.closed:
		return net.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *fakeConn) RemoteAddr() string { return c.remote }

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

type testClient struct {
	conn *fakeConn
	errc chan error
}

func connect(ctx context.Context, r *Router, remote string) *testClient {
	return connectConn(ctx, r, newFakeConn(remote, 64))
}

func connectConn(ctx context.Context, r *Router, conn *fakeConn) *testClient {
	c := &testClient{conn: conn, errc: make(chan error, 1)}
	go func() { c.errc <- r.Serve(ctx, conn) }()
	return c
}

func (c *testClient) send(msg proto.Message) {
	c.conn.in <- msg
}

func (c *testClient) chat(text string) {
	c.send(proto.Message{Type: proto.TypeChat, Content: text})
}

func (c *testClient) command(cmd proto.Command, content string) {
	c.send(proto.Message{Type: proto.TypeCommand, Command: cmd, Content: content})
}

func (c *testClient) expect(t *testing.T) proto.Message {
	t.Helper()
	select {
	case msg := <-c.conn.out:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatalf("%s: expected a message", c.conn.remote)
		return proto.Message{}
	}
}

func (c *testClient) expectSystem(t *testing.T, want string) {
	t.Helper()
	msg := c.expect(t)
	if msg.Type != proto.TypeSystem || msg.Content != want {
		t.Fatalf("%s: got %v %q, want system %q", c.conn.remote, msg.Type, msg.Content, want)
	}
}

func (c *testClient) expectNothing(t *testing.T) {
	t.Helper()
	select {
	case msg := <-c.conn.out:
		t.Fatalf("%s: unexpected message %v %q", c.conn.remote, msg.Type, msg.Content)
	case <-time.After(50 * time.Millisecond):
	}
}

func (c *testClient) waitClosed(t *testing.T) error {
	t.Helper()
	select {
	case err := <-c.errc:
		return err
	case <-time.After(2 * time.Second):
		t.Fatalf("%s: session did not end", c.conn.remote)
		return nil
	}
}

// login connects and authenticates as username, whose password is
// username+"-pw" and must already exist in st.
func (c *testClient) login(t *testing.T, username string) {
	t.Helper()
	c.send(proto.Message{Type: proto.TypeAuth, Username: username, Content: username + "-pw"})
	c.expectSystem(t, ReplyLoginSuccessful)
}

type fixture struct {
	router *Router
	store  *file.Store
	ctx    context.Context
}

func newFixture(t *testing.T, users []string, opts ...Option) *fixture {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	st := file.New(t.TempDir()+"/users.txt", nil, nil)
	for _, u := range users {
		if err := st.Create(ctx, u, u+"-pw"); err != nil {
			t.Fatalf("create %s: %v", u, err)
		}
	}
	return &fixture{
		router: NewRouter(NewRegistry(DefaultCapacity), st, nil, opts...),
		store:  st,
		ctx:    ctx,
	}
}

func (f *fixture) online(t *testing.T, names ...string) []*testClient {
	t.Helper()
	out := make([]*testClient, 0, len(names))
	for _, name := range names {
		c := connect(f.ctx, f.router, name)
		c.login(t, name)
		out = append(out, c)
	}
	return out
}
