package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vishnuvardhan833199/chattify/internal/auth"
	"github.com/vishnuvardhan833199/chattify/internal/config"
	"github.com/vishnuvardhan833199/chattify/internal/media"
	"github.com/vishnuvardhan833199/chattify/internal/relay"
	"github.com/vishnuvardhan833199/chattify/internal/service/calls"
	"github.com/vishnuvardhan833199/chattify/internal/service/messages"
	"github.com/vishnuvardhan833199/chattify/internal/store"
	"github.com/vishnuvardhan833199/chattify/internal/store/sqlite"
	transporthttp "github.com/vishnuvardhan833199/chattify/internal/transport/http"
)

// App wires together the relay, services and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	relay           *relay.Relay
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	mediaStore, err := media.NewStore(cfg.UploadDir)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("init media store: %w", err)
	}

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.TokenTTL,
	}
	authService := auth.NewService(st, jwtConfig)

	r := relay.New(logger)
	msgSvc := messages.New(st, mediaStore, r, logger)
	callSvc := calls.New(st, logger)

	server := transporthttp.NewServer(r, authService, st, msgSvc, callSvc, mediaStore, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		relay:           r,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
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
