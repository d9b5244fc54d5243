package botapp

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivankudzin/botlist/internal/infra/telegram"
	"github.com/ivankudzin/botlist/internal/rpc"
	"github.com/ivankudzin/botlist/internal/ui"
)

// chatSurface renders one flow into the chat it was started from. The
// message carrying the current buttons is tracked so they can be removed.
type chatSurface struct {
	messenger Messenger
	chatID    int64
	flowID    string

	mu       sync.Mutex
	promptID int
}

func (s *chatSurface) PromptConfirm(_ context.Context, spec rpc.Spec) error {
	rows := [][]telegram.InlineButton{{
		{Text: "Next", Data: fmt.Sprintf("%s:next:%s", callbackPrefixRPC, s.flowID)},
		{Text: "Cancel", Data: fmt.Sprintf("%s:cancel:%s", callbackPrefixRPC, s.flowID)},
	}}
	return s.sendPrompt(ui.RenderConfirmPrompt(spec), rows)
}

func (s *chatSurface) PromptFields(_ context.Context, spec rpc.Spec) error {
	rows := [][]telegram.InlineButton{{
		{Text: "Cancel", Data: fmt.Sprintf("%s:cancel:%s", callbackPrefixRPC, s.flowID)},
	}}
	return s.sendPrompt(ui.RenderForm(spec), rows)
}

func (s *chatSurface) ClearPrompt(context.Context) error {
	s.mu.Lock()
	id := s.promptID
	s.promptID = 0
	s.mu.Unlock()
	if id == 0 {
		return nil
	}
	return s.messenger.Request(tgbotapi.NewEditMessageReplyMarkup(s.chatID, id, telegram.EmptyInlineKeyboard()))
}

func (s *chatSurface) Report(_ context.Context, text string) error {
	_, err := s.messenger.Send(tgbotapi.NewMessage(s.chatID, text))
	return err
}

func (s *chatSurface) sendPrompt(text string, rows [][]telegram.InlineButton) error {
	msg := tgbotapi.NewMessage(s.chatID, text)
	msg.ReplyMarkup = telegram.BuildInlineKeyboard(rows)
	sent, err := s.messenger.Send(msg)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.promptID = sent.MessageID
	s.mu.Unlock()
	return nil
}
