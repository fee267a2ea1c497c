package core

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"net"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/lanchat/internal/proto"
	"github.com/vovakirdan/lanchat/internal/store"
	"github.com/vovakirdan/lanchat/internal/utils"
)

// DefaultQueueSize is the default per-session outbound queue length.
const DefaultQueueSize = 64

// Router owns the session lifecycle: it registers connections, enforces the
// login gate, and routes chat and commands between sessions.
type Router struct {
	registry  *Registry
	store     store.CredentialStore
	log       *zerolog.Logger
	queueSize int
	intn      func(n int) int
}

// Option customizes a Router.
type Option func(*Router)

// WithQueueSize sets the per-session outbound queue length.
func WithQueueSize(n int) Option {
	return func(r *Router) {
		if n > 0 {
			r.queueSize = n
		}
	}
}

// WithRandom replaces the source used by /roll and /joke. fn must return a
// value in [0, n).
func WithRandom(fn func(n int) int) Option {
	return func(r *Router) {
		if fn != nil {
			r.intn = fn
		}
	}
}

// NewRouter builds a router over the given registry and credential store.
func NewRouter(registry *Registry, st store.CredentialStore, logger *zerolog.Logger, opts ...Option) *Router {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	r := &Router{
		registry:  registry,
		store:     st,
		log:       logger,
		queueSize: DefaultQueueSize,
		intn:      rand.IntN,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry exposes the session registry for read-only reporting.
func (r *Router) Registry() *Registry {
	return r.registry
}

// Serve runs one connection until the peer disconnects, a transport error
// occurs, or ctx is cancelled. A connection that finds the registry full is
// told so and closed; Serve then returns ErrCapacityExceeded.
func (r *Router) Serve(ctx context.Context, conn Conn) error {
	sess := NewSession(conn, utils.NewID(), r.queueSize)
	logger := r.log.With().
		Str("conn_id", sess.ConnID()).
		Str("remote", conn.RemoteAddr()).
		Logger()

	id, err := r.registry.Register(sess)
	if err != nil {
		logger.Warn().Err(err).Msg("rejecting connection")
		_ = conn.WriteMessage(ctx, proto.System(ReplyServerFull))
		_ = conn.Close()
		return err
	}
	logger = logger.With().Int("session_id", id).Logger()
	logger.Info().Int("online", r.registry.Len()).Msg("session connected")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		// Unblocks ReadMessage on shutdown.
		select {
		case <-ctx.Done():
			sess.Close()
		case <-sess.Done():
		}
	}()

	writeErr := make(chan error, 1)
	go func() {
		err := sess.writeLoop(ctx)
		if err != nil {
			sess.Close()
		}
		writeErr <- err
	}()

	err = r.readLoop(ctx, sess, &logger)

	r.registry.Unregister(sess)
	sess.Close()
	cancel()
	if wErr := <-writeErr; err == nil && !isClosed(wErr) {
		err = wErr
	}

	if err != nil {
		logger.Warn().Err(err).Str("username", sess.Username()).Msg("session ended with error")
	} else {
		logger.Info().Str("username", sess.Username()).Msg("session disconnected")
	}
	return err
}

func (r *Router) readLoop(ctx context.Context, sess *Session, logger *zerolog.Logger) error {
	for {
		msg, err := sess.conn.ReadMessage(ctx)
		if err != nil {
			select {
			case <-sess.Done():
				return nil
			default:
			}
			if isClosed(err) {
				return nil
			}
			return err
		}
		r.handle(ctx, sess, msg, logger)
	}
}

// handle applies one inbound record to sess.
func (r *Router) handle(ctx context.Context, sess *Session, msg proto.Message, logger *zerolog.Logger) {
	if logger == nil {
		logger = r.log
	}
	logger.Debug().Stringer("type", msg.Type).Msg("message received")

	if !sess.Authenticated() && msg.Type != proto.TypeAuth && msg.Type != proto.TypeRegister {
		r.reply(sess, ReplyLoginFirst, logger)
		return
	}

	switch msg.Type {
	case proto.TypeAuth:
		r.handleAuth(ctx, sess, msg, logger)
	case proto.TypeRegister:
		r.handleRegister(ctx, sess, msg, logger)
	case proto.TypeChat:
		r.handleChat(sess, msg, logger)
	case proto.TypeCommand:
		r.handleCommand(ctx, sess, msg, logger)
	default:
		logger.Warn().Stringer("type", msg.Type).Msg("dropping message of unknown type")
	}
}

func (r *Router) handleAuth(ctx context.Context, sess *Session, msg proto.Message, logger *zerolog.Logger) {
	username := msg.Username
	if err := r.store.Authenticate(ctx, username, msg.Content); err != nil {
		if !errors.Is(err, store.ErrAuthFailed) {
			logger.Error().Err(err).Str("username", username).Msg("authenticate")
		} else {
			logger.Info().Str("username", username).Msg("login failed")
		}
		r.reply(sess, ReplyLoginFailed, logger)
		return
	}
	if err := r.registry.Bind(sess, username); err != nil {
		logger.Info().Str("username", username).Msg("login rejected, user already online")
		r.reply(sess, ReplyLoginOnline, logger)
		return
	}
	logger.Info().Str("username", username).Msg("login successful")
	r.reply(sess, ReplyLoginSuccessful, logger)
}

func (r *Router) handleRegister(ctx context.Context, sess *Session, msg proto.Message, logger *zerolog.Logger) {
	err := r.store.Create(ctx, msg.Username, msg.Content)
	switch {
	case err == nil:
		r.reply(sess, ReplyRegisterSuccess, logger)
	case errors.Is(err, store.ErrUserExists):
		r.reply(sess, ReplyRegisterExists, logger)
	default:
		if !errors.Is(err, store.ErrInvalidCredential) {
			logger.Error().Err(err).Str("username", msg.Username).Msg("register")
		}
		r.reply(sess, ReplyRegisterFailed, logger)
	}
}

func (r *Router) handleChat(sess *Session, msg proto.Message, logger *zerolog.Logger) {
	username := sess.Username()
	line := colorize(sess.Color(), chatLine(username, msg.Content))
	n := r.broadcast(proto.Message{Type: proto.TypeChat, Username: username, Content: line}, sess, logger)
	logger.Debug().Str("username", username).Int("recipients", n).Msg("chat broadcast")
}

// broadcast delivers msg to every authenticated session except exclude, in
// slot order. The registry lock is only held while taking the snapshot.
func (r *Router) broadcast(msg proto.Message, exclude *Session, logger *zerolog.Logger) int {
	n := 0
	for _, target := range r.registry.Snapshot() {
		if target == exclude || !target.Authenticated() {
			continue
		}
		if r.deliver(target, msg, logger) {
			n++
		}
	}
	return n
}

func (r *Router) reply(sess *Session, text string, logger *zerolog.Logger) {
	r.deliver(sess, proto.System(text), logger)
}

// deliver queues msg for target. A target whose queue is full is considered
// stalled and is disconnected rather than delaying everyone else.
func (r *Router) deliver(target *Session, msg proto.Message, logger *zerolog.Logger) bool {
	err := target.Send(msg)
	if err == nil {
		return true
	}
	if errors.Is(err, ErrQueueFull) {
		logger.Warn().
			Int("target_session", target.ID()).
			Str("target", target.Username()).
			Msg("send queue full, disconnecting session")
		target.Close()
	}
	return false
}

func isClosed(err error) bool {
	return err == nil ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, ErrSessionClosed)
}
