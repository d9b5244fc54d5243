package apiapp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ivankudzin/botlist/internal/config"
	authsvc "github.com/ivankudzin/botlist/internal/services/auth"
	"github.com/ivankudzin/botlist/internal/transport/http/handlers"
)

type Dependencies struct {
	Invoker   handlers.Invoker
	Guard     handlers.Guard
	OwnerBots handlers.OwnerBots
	JWT       *authsvc.JWTManager
	Logger    *zap.Logger
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	ApplyMiddlewares(r, deps.Logger)
	RegisterRoutes(r, deps)
	return r
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	rpcHandler := handlers.NewRPCHandler(deps.Invoker, deps.Logger)
	botsHandler := handlers.NewBotsHandler(deps.Guard, deps.OwnerBots)
	authMW := AuthMiddleware(deps.JWT, deps.Logger)

	r.Get("/healthz", healthHandler.Handle)

	r.Route("/v1", func(r chi.Router) {
		r.With(authMW).Post("/rpc", rpcHandler.Invoke)
		r.With(authMW).Get("/rpc/methods", rpcHandler.Methods)
		r.With(authMW).Get("/users/{user_id}/bots", botsHandler.ListByOwner)
	})
}

// Server is the direct invocation endpoint.
type Server struct {
	server *http.Server
	logger *zap.Logger
}

func NewServer(cfg config.HTTPConfig, handler http.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		server: &http.Server{
			Addr:         cfg.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		logger: logger,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api server started", zap.String("addr", s.server.Addr))
		err := s.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
