package dispatch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ivankudzin/botlist/internal/domain/enums"
	"github.com/ivankudzin/botlist/internal/domain/model"
	"github.com/ivankudzin/botlist/internal/rpc"
	"github.com/ivankudzin/botlist/internal/services/executor"
	"github.com/ivankudzin/botlist/internal/services/executor/executortest"
)

type staffGuard map[string]bool

func (g staffGuard) Authorize(_ context.Context, callerID string) error {
	if !g[callerID] {
		return fmt.Errorf("caller %s: %w", callerID, rpc.ErrUnauthorized)
	}
	return nil
}

type failingGuard struct{ err error }

func (g failingGuard) Authorize(context.Context, string) error { return g.err }

func newTestService(t *testing.T, guard Guard) (*Service, *executortest.MemStore, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	store := executortest.NewMemStore()
	engine := executor.New(nil, nil, nil, executor.WithClock(func() time.Time {
		return time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	}))
	return NewService(guard, rpc.Default(), engine, store, nil, zap.New(core)), store, logs
}

func TestInvokeApprovesPendingBot(t *testing.T) {
	svc, store, _ := newTestService(t, staffGuard{"7": true})
	store.PutBot(model.Bot{BotID: "42", Type: enums.BotTypePending}, 0)

	out, err := svc.Invoke(context.Background(), Request{
		CallerID: "7",
		Method:   "BotApprove",
		Fields:   map[string]string{"bot_id": "42", "reason": "fine"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Bot 42 approved: fine", out.Content)

	bot, ok := store.Bot("42")
	require.True(t, ok)
	assert.Equal(t, enums.BotTypeApproved, bot.Type)
	assert.Len(t, store.Snapshot().Logs, 1)
}

func TestInvokeTrimsPaddedMethodName(t *testing.T) {
	svc, store, logs := newTestService(t, staffGuard{"7": true})
	store.PutBot(model.Bot{BotID: "42", Type: enums.BotTypePending}, 0)

	out, err := svc.Invoke(context.Background(), Request{
		CallerID: "7",
		Method:   " BotApprove \n",
		Fields:   map[string]string{"bot_id": "42", "reason": "fine"},
	})
	require.NoError(t, err)
	assert.NotErrorIs(t, err, rpc.ErrConsistency)
	assert.Equal(t, "Bot 42 approved: fine", out.Content)
	assert.Zero(t, logs.FilterMessage("rpc consistency fault").Len())

	bot, _ := store.Bot("42")
	assert.Equal(t, enums.BotTypeApproved, bot.Type)
}

func TestInvokeRejectsNonStaffBeforeBuilding(t *testing.T) {
	svc, store, _ := newTestService(t, staffGuard{"7": true})

	for _, method := range rpc.Default().Methods() {
		t.Run(string(method), func(t *testing.T) {
			// Empty fields would fail parsing; the guard must answer first.
			_, err := svc.Invoke(context.Background(), Request{
				CallerID: "99",
				Method:   string(method),
				Fields:   map[string]string{},
			})
			require.ErrorIs(t, err, rpc.ErrUnauthorized)
			assert.NotErrorIs(t, err, rpc.ErrValidation)
		})
	}
	assert.Zero(t, store.Transactions())
}

func TestInvokePropagatesGuardStoreError(t *testing.T) {
	storeErr := errors.New("connection refused")
	svc, store, _ := newTestService(t, failingGuard{err: storeErr})

	_, err := svc.Invoke(context.Background(), Request{CallerID: "7", Method: "BotApprove"})
	require.ErrorIs(t, err, storeErr)
	assert.Zero(t, store.Transactions())
}

func TestInvokeValidationStopsBeforeEngine(t *testing.T) {
	svc, store, _ := newTestService(t, staffGuard{"7": true})

	_, err := svc.Invoke(context.Background(), Request{
		CallerID: "7",
		Method:   "BotForceRemove",
		Fields:   map[string]string{"bot_id": "42", "reason": "x", "kick": "maybe"},
	})
	var fieldErr *rpc.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "kick", fieldErr.Field)
	assert.Zero(t, store.Transactions())

	_, err = svc.Invoke(context.Background(), Request{CallerID: "7", Method: "BotExplode"})
	require.ErrorIs(t, err, rpc.ErrUnknownAction)
}

func TestExecuteConsistencyFault(t *testing.T) {
	svc, store, logs := newTestService(t, staffGuard{"7": true})
	store.PutBot(model.Bot{BotID: "42", Type: enums.BotTypePending}, 0)
	before := store.Snapshot()

	_, err := svc.Execute(context.Background(), rpc.MethodBotDeny, rpc.BotApprove{BotID: "42", Reason: "x"}, "7")
	require.ErrorIs(t, err, rpc.ErrConsistency)

	var actionErr *rpc.ActionError
	require.ErrorAs(t, err, &actionErr)
	assert.Equal(t, rpc.MethodBotDeny, actionErr.Method)

	assert.Zero(t, store.Transactions())
	assert.Equal(t, before, store.Snapshot())

	faults := logs.FilterMessage("rpc consistency fault").All()
	require.Len(t, faults, 1)
	assert.Equal(t, zapcore.ErrorLevel, faults[0].Level)
}

func TestExecuteSurvivesCancelledContext(t *testing.T) {
	svc, store, _ := newTestService(t, staffGuard{"7": true})
	store.PutBot(model.Bot{BotID: "42", Type: enums.BotTypePending}, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Execute(ctx, rpc.MethodBotApprove, rpc.BotApprove{BotID: "42", Reason: "x"}, "7")
	require.NoError(t, err)
	bot, _ := store.Bot("42")
	assert.Equal(t, enums.BotTypeApproved, bot.Type)
}
