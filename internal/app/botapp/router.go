package botapp

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ivankudzin/botlist/internal/domain/enums"
	"github.com/ivankudzin/botlist/internal/domain/model"
	"github.com/ivankudzin/botlist/internal/infra/s3"
	"github.com/ivankudzin/botlist/internal/infra/telegram"
	"github.com/ivankudzin/botlist/internal/rpc"
	"github.com/ivankudzin/botlist/internal/rpcflow"
	"github.com/ivankudzin/botlist/internal/ui"
)

const (
	callbackPrefixRPC = "rpc"
	rpcLogsLimit      = 20
	maxSuggestions    = 25
	archiveLinkTTL    = time.Hour
)

type Messenger interface {
	Send(tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(tgbotapi.Chattable) error
}

type Dispatcher interface {
	rpcflow.Dispatcher
	Catalog() *rpc.Catalog
}

type Roles interface {
	ResolveRole(ctx context.Context, callerID string) (enums.Role, error)
	CanViewLogs(role enums.Role) bool
}

type LogLister interface {
	ListRecent(ctx context.Context, limit int) ([]model.RPCLog, error)
}

type Presigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Deps struct {
	Messenger     Messenger
	Dispatcher    Dispatcher
	Roles         Roles
	Logs          LogLister
	Archive       Presigner
	Flows         *rpcflow.Registry
	PromptTimeout time.Duration
	Logger        *zap.Logger
}

// Bot routes Telegram updates to staff action flows.
type Bot struct {
	deps  Deps
	newID func() string
}

func New(deps Deps) *Bot {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Flows == nil {
		deps.Flows = rpcflow.NewRegistry()
	}
	return &Bot{deps: deps, newID: uuid.NewString}
}

// Wait blocks until every running flow has finished.
func (b *Bot) Wait() {
	b.deps.Flows.Wait()
}

func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message != nil {
		b.routeMessage(ctx, update.Message)
	}
	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) routeMessage(ctx context.Context, message *tgbotapi.Message) {
	if message == nil || message.From == nil {
		return
	}

	if message.IsCommand() {
		switch message.Command() {
		case "start":
			b.handleStart(ctx, message)
		case "rpc":
			b.handleRPC(ctx, message.Chat.ID, message.From.ID, strings.TrimSpace(message.CommandArguments()))
		case "rpclogs":
			b.handleRPCLogs(ctx, message.Chat.ID, message.From.ID, strings.TrimSpace(message.CommandArguments()))
		default:
			b.sendText(message.Chat.ID, ui.UnknownCommand)
		}
		return
	}

	key := rpcflow.Key{ChatID: message.Chat.ID, UserID: message.From.ID}
	if flow, ok := b.deps.Flows.ByKey(key); ok {
		if !flow.Deliver(rpcflow.Submit(message.Text)) {
			b.deps.Logger.Debug("rpc flow dropped submission", zap.String("flow_id", flow.ID()))
		}
	}
}

func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) {
	role, err := b.deps.Roles.ResolveRole(ctx, userID(message.From.ID))
	if err != nil {
		b.deps.Logger.Warn("resolve role for start", zap.Error(err), zap.Int64("tg_id", message.From.ID))
		b.sendText(message.Chat.ID, "Could not resolve your role, try again later")
		return
	}
	b.sendText(message.Chat.ID, ui.StartMessage(role))
}

// handleRPC starts the named action, or offers matching actions when the
// name is missing or partial.
func (b *Bot) handleRPC(ctx context.Context, chatID, tgID int64, name string) {
	if _, err := b.deps.Dispatcher.Lookup(name); err == nil {
		b.startFlow(ctx, chatID, tgID, name)
		return
	}

	role, err := b.deps.Roles.ResolveRole(ctx, userID(tgID))
	if err != nil {
		b.deps.Logger.Warn("resolve role for rpc", zap.Error(err), zap.Int64("tg_id", tgID))
		b.sendText(chatID, "Could not resolve your role, try again later")
		return
	}
	if !role.IsStaff() {
		b.sendText(chatID, ui.NoPermissionMessage)
		return
	}

	methods := b.deps.Dispatcher.Catalog().Suggest(name)
	if len(methods) > maxSuggestions {
		methods = methods[:maxSuggestions]
	}
	buttons := make([]telegram.InlineButton, 0, len(methods))
	for _, method := range methods {
		buttons = append(buttons, telegram.InlineButton{
			Text: string(method),
			Data: callbackPrefixRPC + ":start:" + string(method),
		})
	}

	text := ui.RenderSuggestions(name, methods)
	if len(buttons) == 0 {
		b.sendText(chatID, text)
		return
	}
	b.sendInline(chatID, text, telegram.ColumnButtons(buttons))
}

func (b *Bot) startFlow(ctx context.Context, chatID, tgID int64, method string) {
	id := b.newID()
	caller := userID(tgID)
	surface := &chatSurface{messenger: b.deps.Messenger, chatID: chatID, flowID: id}
	flow := rpcflow.New(id, method, caller, b.deps.Dispatcher, surface, rpcflow.Options{
		Timeout: b.deps.PromptTimeout,
		Logger:  b.deps.Logger,
	})

	key := rpcflow.Key{ChatID: chatID, UserID: tgID}
	launched := b.deps.Flows.Launch(ctx, key, flow, func(state rpcflow.State, err error) {
		fields := []zap.Field{
			zap.String("flow_id", id),
			zap.String("method", method),
			zap.String("caller_id", caller),
			zap.String("state", string(state)),
		}
		if err != nil && !errors.Is(err, rpc.ErrValidation) && !errors.Is(err, rpc.ErrUnauthorized) && !errors.Is(err, rpc.ErrCancelled) {
			fields = append(fields, zap.Error(err))
		}
		b.deps.Logger.Info("rpc flow finished", fields...)
	})
	if !launched {
		b.sendText(chatID, ui.FlowBusyMessage)
	}
}

func (b *Bot) handleRPCLogs(ctx context.Context, chatID, tgID int64, logID string) {
	role, err := b.deps.Roles.ResolveRole(ctx, userID(tgID))
	if err != nil {
		b.deps.Logger.Warn("resolve role for rpclogs", zap.Error(err), zap.Int64("tg_id", tgID))
		b.sendText(chatID, "Could not resolve your role, try again later")
		return
	}
	if !b.deps.Roles.CanViewLogs(role) {
		b.sendText(chatID, ui.NoPermissionMessage)
		return
	}
	if b.deps.Logs == nil {
		b.sendText(chatID, "Staff action logs are unavailable")
		return
	}

	entries, err := b.deps.Logs.ListRecent(ctx, rpcLogsLimit)
	if err != nil {
		b.deps.Logger.Warn("list rpc logs", zap.Error(err))
		b.sendText(chatID, "Could not load staff action logs")
		return
	}

	if logID == "" {
		b.sendText(chatID, ui.RenderRPCLogs(entries))
		return
	}
	b.sendArchiveLink(ctx, chatID, entries, logID)
}

func (b *Bot) sendArchiveLink(ctx context.Context, chatID int64, entries []model.RPCLog, logID string) {
	if b.deps.Archive == nil {
		b.sendText(chatID, "The notice archive is not configured")
		return
	}
	for _, entry := range entries {
		if entry.ID != logID {
			continue
		}
		url, err := b.deps.Archive.PresignGet(ctx, s3.NoticeKey(entry.ID, entry.CreatedAt), archiveLinkTTL)
		if err != nil {
			b.deps.Logger.Warn("presign archived notice", zap.Error(err), zap.String("rpc_log_id", logID))
			b.sendText(chatID, "Could not link the archived notice")
			return
		}
		b.sendText(chatID, ui.RenderAuditNotice(entry, "")+"\nArchive: "+url)
		return
	}
	b.sendText(chatID, "No recent staff action with id "+logID)
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query == nil || query.From == nil {
		return
	}
	chatID, ok := callbackChatID(query)
	if !ok {
		b.answerCallback(query.ID, "")
		return
	}

	parts := strings.SplitN(query.Data, ":", 3)
	if len(parts) != 3 || parts[0] != callbackPrefixRPC {
		b.answerCallback(query.ID, "")
		return
	}

	switch parts[1] {
	case "start":
		b.answerCallback(query.ID, "")
		b.startFlow(ctx, chatID, query.From.ID, parts[2])
	case "next", "cancel":
		b.answerCallback(query.ID, b.routeFlowButton(parts[1], parts[2], query.From.ID))
	default:
		b.answerCallback(query.ID, "")
	}
}

func (b *Bot) routeFlowButton(action, flowID string, tgID int64) string {
	flow, ok := b.deps.Flows.ByID(flowID)
	if !ok {
		return "This action has expired"
	}
	if flow.CallerID() != userID(tgID) {
		return "This action belongs to someone else"
	}

	ev := rpcflow.Confirm()
	if action == "cancel" {
		ev = rpcflow.Cancel()
	}
	if !flow.Deliver(ev) {
		return "This action has expired"
	}
	return ""
}

func (b *Bot) sendInline(chatID int64, text string, rows [][]telegram.InlineButton) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = telegram.BuildInlineKeyboard(rows)
	if _, err := b.deps.Messenger.Send(msg); err != nil {
		b.deps.Logger.Warn("send inline message", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	if _, err := b.deps.Messenger.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.deps.Logger.Warn("send message", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) answerCallback(callbackID, text string) {
	if err := b.deps.Messenger.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.deps.Logger.Debug("answer callback", zap.Error(err))
	}
}

func callbackChatID(query *tgbotapi.CallbackQuery) (int64, bool) {
	if query.Message == nil || query.Message.Chat == nil {
		return 0, false
	}
	return query.Message.Chat.ID, true
}

func userID(tgID int64) string {
	return strconv.FormatInt(tgID, 10)
}
