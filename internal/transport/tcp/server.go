// Package tcp accepts raw TCP chat connections and hands them to the router.
package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/lanchat/internal/core"
)

const acceptBackoff = 50 * time.Millisecond

// Server is the TCP listener for chat clients.
type Server struct {
	listener net.Listener
	router   *core.Router
	log      *zerolog.Logger

	wg     sync.WaitGroup
	closed atomic.Bool
}

// Listen binds addr. Use ":0" to pick a free port.
func Listen(addr string, router *core.Router, logger *zerolog.Logger) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Server{listener: listener, router: router, log: logger}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve accepts connections until ctx is cancelled or Close is called, then
// waits for every session to finish. Sessions see ctx and are closed with it.
func (s *Server) Serve(ctx context.Context) error {
	s.log.Info().Str("addr", s.Addr().String()).Msg("tcp listener started")

	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	defer stop()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.closed.Load() {
				s.wg.Wait()
				s.log.Info().Msg("tcp listener stopped")
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				s.wg.Wait()
				return err
			}
			s.log.Error().Err(err).Msg("accept error")
			time.Sleep(acceptBackoff)
			continue
		}

		s.wg.Add(1)
		go s.handleConnection(ctx, conn)
	}
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()

	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetKeepAlive(true)
	}
	if err := s.router.Serve(ctx, newNetConn(conn)); err != nil && !errors.Is(err, core.ErrCapacityExceeded) {
		s.log.Debug().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("connection closed with error")
	}
}

// Close stops accepting. Live sessions end when the Serve ctx is cancelled.
func (s *Server) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.listener.Close()
}
