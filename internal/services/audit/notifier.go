package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ivankudzin/botlist/internal/domain/model"
	"github.com/ivankudzin/botlist/internal/infra/s3"
	"github.com/ivankudzin/botlist/internal/ui"
)

// Notice describes one committed staff action.
type Notice struct {
	Log     model.RPCLog
	Content string
}

type Sender interface {
	Send(tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Archiver interface {
	PutJSON(ctx context.Context, key string, body []byte) error
}

// Notifier posts committed actions to the audit chat and archives them off
// the request path. Delivery failures are logged and dropped.
type Notifier struct {
	queue        chan Notice
	sender       Sender
	chatID       int64
	archive      Archiver
	logger       *zap.Logger
	drainTimeout time.Duration
}

func NewNotifier(sender Sender, chatID int64, archive Archiver, queueSize int, logger *zap.Logger) *Notifier {
	if queueSize <= 0 {
		queueSize = 256
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{
		queue:        make(chan Notice, queueSize),
		sender:       sender,
		chatID:       chatID,
		archive:      archive,
		logger:       logger,
		drainTimeout: 5 * time.Second,
	}
}

// Enqueue never blocks; it reports false when the queue is full.
func (n *Notifier) Enqueue(notice Notice) bool {
	select {
	case n.queue <- notice:
		return true
	default:
		n.logger.Warn("audit queue is full, dropping notice",
			zap.String("method", notice.Log.Method),
			zap.String("rpc_log_id", notice.Log.ID),
		)
		return false
	}
}

func (n *Notifier) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			n.drain()
			return nil
		case notice := <-n.queue:
			// A delivery already dequeued finishes even if shutdown starts.
			n.deliver(context.WithoutCancel(ctx), notice)
		}
	}
}

func (n *Notifier) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), n.drainTimeout)
	defer cancel()
	for {
		select {
		case notice := <-n.queue:
			n.deliver(ctx, notice)
		default:
			return
		}
	}
}

func (n *Notifier) deliver(ctx context.Context, notice Notice) {
	if n.sender != nil && n.chatID != 0 {
		msg := tgbotapi.NewMessage(n.chatID, ui.RenderAuditNotice(notice.Log, notice.Content))
		msg.DisableWebPagePreview = true
		if _, err := n.sender.Send(msg); err != nil {
			n.logger.Warn("send audit notice failed",
				zap.String("method", notice.Log.Method),
				zap.Error(err),
			)
		}
	}

	if n.archive != nil {
		if err := n.archiveNotice(ctx, notice); err != nil {
			n.logger.Warn("archive audit notice failed",
				zap.String("method", notice.Log.Method),
				zap.Error(err),
			)
		}
	}
}

func (n *Notifier) archiveNotice(ctx context.Context, notice Notice) error {
	data := notice.Log.Data
	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}
	body, err := json.Marshal(map[string]any{
		"id":         notice.Log.ID,
		"method":     notice.Log.Method,
		"user_id":    notice.Log.UserID,
		"data":       data,
		"content":    notice.Content,
		"created_at": notice.Log.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode audit notice: %w", err)
	}
	return n.archive.PutJSON(ctx, s3.NoticeKey(notice.Log.ID, notice.Log.CreatedAt), body)
}
