package core

import (
	"context"
	"sync"

	"github.com/vovakirdan/lanchat/internal/proto"
)

// Conn is the transport as seen by the core: a stream of whole records.
type Conn interface {
	ReadMessage(ctx context.Context) (proto.Message, error)
	WriteMessage(ctx context.Context, msg proto.Message) error
	RemoteAddr() string
	Close() error
}

// State is the authentication state of a session.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticated
	// StateDeauthenticated follows account deletion. It behaves like
	// StateUnauthenticated but is kept distinct for logging and the admin view.
	StateDeauthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateDeauthenticated:
		return "deauthenticated"
	default:
		return "unauthenticated"
	}
}

// Session is the server-side state of one connection.
type Session struct {
	conn     Conn
	connID   string
	outbound chan proto.Message
	done     chan struct{}
	once     sync.Once

	// id is assigned by Registry.Register under the registry lock.
	id int

	mu       sync.RWMutex
	username string
	state    State
	color    string
}

// SessionInfo is a point-in-time copy of a session's public fields.
type SessionInfo struct {
	ID       int    `json:"id"`
	ConnID   string `json:"conn_id"`
	Username string `json:"username"`
	State    string `json:"state"`
	Color    string `json:"color"`
	Remote   string `json:"remote"`
}

// NewSession wraps conn. queueSize bounds the records waiting to be written.
func NewSession(conn Conn, connID string, queueSize int) *Session {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Session{
		conn:     conn,
		connID:   connID,
		outbound: make(chan proto.Message, queueSize),
		done:     make(chan struct{}),
		color:    "default",
	}
}

// ID returns the registry slot index + 1, or 0 before registration.
func (s *Session) ID() int {
	return s.id
}

func (s *Session) ConnID() string {
	return s.connID
}

func (s *Session) RemoteAddr() string {
	return s.conn.RemoteAddr()
}

// Username is empty until the session authenticates.
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateAuthenticated
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Color() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.color
}

// Info snapshots the session for reporting.
func (s *Session) Info() SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionInfo{
		ID:       s.id,
		ConnID:   s.connID,
		Username: s.username,
		State:    s.state.String(),
		Color:    s.color,
		Remote:   s.conn.RemoteAddr(),
	}
}

// setIdentity marks the session authenticated as name. Callers go through
// Registry.Bind so the uniqueness check and the write happen atomically.
func (s *Session) setIdentity(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = name
	s.state = StateAuthenticated
}

func (s *Session) deauthenticate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = ""
	s.state = StateDeauthenticated
}

func (s *Session) setColor(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.color = name
}

// Send queues msg for the writer without blocking.
func (s *Session) Send(msg proto.Message) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	select {
	case s.outbound <- msg:
		return nil
	case <-s.done:
		return ErrSessionClosed
	default:
		return ErrQueueFull
	}
}

// Done is closed once the session is closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close stops the writer and closes the connection. Safe to call repeatedly.
func (s *Session) Close() {
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

func (s *Session) writeLoop(ctx context.Context) error {
	for {
		select {
		case msg := <-s.outbound:
			if err := s.conn.WriteMessage(ctx, msg); err != nil {
				return err
			}
		case <-s.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
