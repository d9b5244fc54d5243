package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ivankudzin/botlist/internal/domain/model"
	"github.com/ivankudzin/botlist/internal/rpc"
	"github.com/ivankudzin/botlist/internal/services/audit"
)

// Tx is the set of statements staff actions run inside one transaction.
// Lookups return postgres.ErrBotNotFound / postgres.ErrTeamNotFound for
// missing rows.
type Tx interface {
	GetBotForUpdate(ctx context.Context, botID string) (model.Bot, error)
	UpdateBot(ctx context.Context, bot model.Bot) error
	DeleteBot(ctx context.Context, botID string) error
	DeleteVotes(ctx context.Context, botID string) (int64, error)
	DeleteAllVotes(ctx context.Context) (int64, error)
	ResetAllVoteCounts(ctx context.Context) (int64, error)
	GetTeamForUpdate(ctx context.Context, teamID string) (model.Team, error)
	UpdateTeamName(ctx context.Context, teamID, name string) error
	UserExists(ctx context.Context, userID string) (bool, error)
	InsertRPCLog(ctx context.Context, entry model.RPCLog) error
}

// Store commits fn's writes only when fn returns nil.
type Store interface {
	WithTx(ctx context.Context, fn func(context.Context, Tx) error) error
}

type TxFunc func(ctx context.Context, fn func(context.Context, Tx) error) error

func (f TxFunc) WithTx(ctx context.Context, fn func(context.Context, Tx) error) error {
	return f(ctx, fn)
}

// Chat performs chat side effects that follow a committed action.
type Chat interface {
	Kick(ctx context.Context, userID int64) error
}

// Handle is the per-invocation context an action executes against.
type Handle struct {
	Store    Store
	CallerID string
	Chat     Chat
}

type OwnerCache interface {
	Invalidate(ctx context.Context, userIDs ...string) error
	InvalidateAll(ctx context.Context) error
}

type Notifier interface {
	Enqueue(audit.Notice) bool
}

type Engine struct {
	cache    OwnerCache
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
	newToken func() string
}

type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithTokenSource replaces the generator of bot API tokens.
func WithTokenSource(newToken func() string) Option {
	return func(e *Engine) {
		e.newToken = newToken
	}
}

func New(cache OwnerCache, notifier Notifier, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		cache:    cache,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
		newToken: newAPIToken,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func newAPIToken() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}

// Execute runs one validated action in a single transaction, then performs
// the best-effort follow-ups. Every error names the action.
func (e *Engine) Execute(ctx context.Context, action rpc.Action, handle Handle) (rpc.Outcome, error) {
	method := action.Method()
	if handle.Store == nil {
		return rpc.Outcome{}, &rpc.ActionError{Method: method, Err: rpc.Persistence("open store", errors.New("store is not configured"))}
	}

	var (
		outcome rpc.Outcome
		h       *txHandler
	)
	err := handle.Store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		h = &txHandler{
			tx:       tx,
			caller:   handle.CallerID,
			now:      e.now().UTC(),
			newToken: e.newToken,
		}

		result, err := action.Dispatch(ctx, h)
		if err != nil {
			return err
		}

		data, err := json.Marshal(action)
		if err != nil {
			return fmt.Errorf("encode action: %w", err)
		}
		h.log = model.RPCLog{
			ID:        e.newID(),
			Method:    string(method),
			UserID:    handle.CallerID,
			Data:      data,
			CreatedAt: h.now,
		}
		if err := tx.InsertRPCLog(ctx, h.log); err != nil {
			return rpc.Persistence("write rpc log", err)
		}

		outcome = result
		return nil
	})
	if err != nil {
		if !classified(err) {
			err = rpc.Persistence("transaction", err)
		}
		e.logger.Info("rpc action failed",
			zap.String("method", string(method)),
			zap.String("caller_id", handle.CallerID),
			zap.Error(err),
		)
		return rpc.Outcome{}, &rpc.ActionError{Method: method, Err: err}
	}

	outcome = e.afterCommit(ctx, handle, h, outcome)
	e.logger.Info("rpc action performed",
		zap.String("method", string(method)),
		zap.String("caller_id", handle.CallerID),
		zap.String("rpc_log_id", h.log.ID),
	)
	return outcome, nil
}

func classified(err error) bool {
	for _, kind := range []error{rpc.ErrNotFound, rpc.ErrConflict, rpc.ErrValidation, rpc.ErrPersistence} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

func (e *Engine) afterCommit(ctx context.Context, handle Handle, h *txHandler, outcome rpc.Outcome) rpc.Outcome {
	if h.kick != 0 {
		note := kickNote(ctx, handle.Chat, h.kick)
		if note != "" {
			e.logger.Warn("kick after force remove failed",
				zap.Int64("bot_id", h.kick),
				zap.String("note", note),
			)
			outcome.Content = strings.TrimSpace(outcome.Content + "\n" + note)
		}
	}

	if e.cache != nil {
		var err error
		switch {
		case h.allOwners:
			err = e.cache.InvalidateAll(ctx)
		case len(h.owners) > 0:
			err = e.cache.Invalidate(ctx, h.owners...)
		}
		if err != nil {
			e.logger.Warn("invalidate owner cache failed", zap.Error(err))
		}
	}

	if e.notifier != nil {
		e.notifier.Enqueue(audit.Notice{Log: h.log, Content: outcome.Content})
	}

	return outcome
}

func kickNote(ctx context.Context, chat Chat, botID int64) string {
	if chat == nil {
		return "Kick skipped: no chat client is configured"
	}
	if err := chat.Kick(ctx, botID); err != nil {
		return "Kick failed: " + err.Error()
	}
	return ""
}

func parseBotUserID(botID string) int64 {
	id, err := strconv.ParseInt(botID, 10, 64)
	if err != nil {
		return 0
	}
	return id
}
