package dispatch

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ivankudzin/botlist/internal/rpc"
	"github.com/ivankudzin/botlist/internal/services/executor"
)

type Guard interface {
	Authorize(ctx context.Context, callerID string) error
}

type Engine interface {
	Execute(ctx context.Context, action rpc.Action, handle executor.Handle) (rpc.Outcome, error)
}

// Service is the path both front-ends share from a caller and a method name
// to an executed action.
type Service struct {
	guard   Guard
	catalog *rpc.Catalog
	engine  Engine
	store   executor.Store
	chat    executor.Chat
	logger  *zap.Logger
}

func NewService(guard Guard, catalog *rpc.Catalog, engine Engine, store executor.Store, chat executor.Chat, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if catalog == nil {
		catalog = rpc.Default()
	}
	return &Service{
		guard:   guard,
		catalog: catalog,
		engine:  engine,
		store:   store,
		chat:    chat,
		logger:  logger,
	}
}

func (s *Service) Catalog() *rpc.Catalog {
	return s.catalog
}

func (s *Service) Authorize(ctx context.Context, callerID string) error {
	return s.guard.Authorize(ctx, callerID)
}

func (s *Service) Lookup(method string) (rpc.Spec, error) {
	return s.catalog.Lookup(method)
}

func (s *Service) Build(method string, raw map[string]string) (rpc.Action, error) {
	return s.catalog.Build(method, raw)
}

// Execute hands a built action to the engine once its kind matches the
// requested name. The engine runs detached from ctx cancellation so a
// dispatched action always finishes.
func (s *Service) Execute(ctx context.Context, requested rpc.Method, action rpc.Action, callerID string) (rpc.Outcome, error) {
	if action == nil || action.Method() != requested {
		got := rpc.Method("<nil>")
		if action != nil {
			got = action.Method()
		}
		s.logger.Error("rpc consistency fault",
			zap.String("requested", string(requested)),
			zap.String("built", string(got)),
			zap.String("caller_id", callerID),
		)
		return rpc.Outcome{}, &rpc.ActionError{
			Method: requested,
			Err:    fmt.Errorf("%w: requested %s, built %s", rpc.ErrConsistency, requested, got),
		}
	}

	return s.engine.Execute(context.WithoutCancel(ctx), action, executor.Handle{
		Store:    s.store,
		CallerID: callerID,
		Chat:     s.chat,
	})
}

type Request struct {
	CallerID string
	Method   string
	Fields   map[string]string
}

// Invoke runs the direct, non-interactive path: guard, build, execute.
// Nothing is built for a caller the guard rejects.
func (s *Service) Invoke(ctx context.Context, req Request) (rpc.Outcome, error) {
	if err := s.Authorize(ctx, req.CallerID); err != nil {
		return rpc.Outcome{}, err
	}
	method := strings.TrimSpace(req.Method)
	action, err := s.Build(method, req.Fields)
	if err != nil {
		return rpc.Outcome{}, err
	}
	return s.Execute(ctx, rpc.Method(method), action, req.CallerID)
}
