package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/lanchat/internal/auth"
	"github.com/vovakirdan/lanchat/internal/config"
	"github.com/vovakirdan/lanchat/internal/core"
	"github.com/vovakirdan/lanchat/internal/store"
	"github.com/vovakirdan/lanchat/internal/store/file"
	"github.com/vovakirdan/lanchat/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/lanchat/internal/transport/http"
	"github.com/vovakirdan/lanchat/internal/transport/tcp"
)

// App wires together core and transport layers.
type App struct {
	tcp             *tcp.Server
	admin           *stdhttp.Server
	adminListener   net.Listener
	router          *core.Router
	store           store.CredentialStore
	shutdownTimeout time.Duration
	log             *zerolog.Logger
}

// New opens the credential store and binds every listener, so address
// errors surface before Run.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := openStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	router := core.NewRouter(
		core.NewRegistry(cfg.MaxClients),
		st,
		logger,
		core.WithQueueSize(cfg.SendQueueSize),
	)

	tcpServer, err := tcp.Listen(cfg.Addr, router, logger)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	a := &App{
		tcp:             tcpServer,
		router:          router,
		store:           st,
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}

	if cfg.AdminAddr != "" {
		ln, err := net.Listen("tcp", cfg.AdminAddr)
		if err != nil {
			_ = tcpServer.Close()
			_ = st.Close()
			return nil, fmt.Errorf("listen on %s: %w", cfg.AdminAddr, err)
		}
		a.admin = transporthttp.NewServer(router, cfg, logger)
		a.adminListener = ln
	}

	return a, nil
}

func openStore(cfg config.Config, logger *zerolog.Logger) (store.CredentialStore, error) {
	hasher, err := auth.NewHasher(cfg.PasswordHashing)
	if err != nil {
		return nil, err
	}

	switch cfg.StoreDriver {
	case config.StoreDriverSQLite:
		st, err := sqlite.New(cfg.DatabasePath, hasher, logger)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("db_path", cfg.DatabasePath).Msg("sqlite credential store opened")
		return st, nil
	default:
		logger.Info().Str("users_file", cfg.UsersFile).Msg("file credential store opened")
		return file.New(cfg.UsersFile, hasher, logger), nil
	}
}

// Addr returns the chat listener address.
func (a *App) Addr() net.Addr {
	return a.tcp.Addr()
}

// AdminAddr returns the admin listener address, or nil when disabled.
func (a *App) AdminAddr() net.Addr {
	if a.adminListener == nil {
		return nil
	}
	return a.adminListener.Addr()
}

// Router exposes the session router.
func (a *App) Router() *core.Router {
	return a.router
}

// Run serves until ctx is cancelled or a listener fails. Cancelling ctx
// closes every live session.
func (a *App) Run(ctx context.Context) error {
	defer a.cleanup()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.tcp.Serve(gctx)
	})

	if a.admin != nil {
		a.admin.BaseContext = func(net.Listener) context.Context { return gctx }

		g.Go(func() error {
			a.log.Info().Str("addr", a.adminListener.Addr().String()).Msg("admin http server started")
			if err := a.admin.Serve(a.adminListener); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
			defer cancel()

			a.log.Info().Msg("shutting down admin http server")
			return a.admin.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
