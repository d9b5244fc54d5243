package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type UpdateHandler func(context.Context, tgbotapi.Update)

type Client struct {
	api         *tgbotapi.BotAPI
	logger      *zap.Logger
	handler     UpdateHandler
	pollTimeout int
	dryRun      bool
}

func NewClient(token string, pollTimeout int, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if strings.TrimSpace(token) == "" {
		return &Client{
			logger:      logger,
			pollTimeout: pollTimeout,
			dryRun:      true,
		}, nil
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram api: %w", err)
	}

	return &Client{
		api:         api,
		logger:      logger,
		pollTimeout: pollTimeout,
	}, nil
}

// SetHandler must be called before Start.
func (c *Client) SetHandler(handler UpdateHandler) {
	c.handler = handler
}

func (c *Client) DryRun() bool {
	return c.dryRun
}

func (c *Client) Start(ctx context.Context) error {
	if c.handler == nil {
		return errors.New("telegram update handler is required")
	}
	if c.dryRun {
		c.logger.Warn("BOT_TOKEN is empty, running in dry mode")
		<-ctx.Done()
		return nil
	}

	timeout := c.pollTimeout
	if timeout <= 0 {
		timeout = 30
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = timeout
	updates := c.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			c.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			c.handler(ctx, update)
		}
	}
}

// Send delivers a message and returns it so callers can edit it later.
func (c *Client) Send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	if c.dryRun {
		return tgbotapi.Message{}, nil
	}
	return c.api.Send(msg)
}

// Request performs calls that return no message, such as edits and callback
// answers.
func (c *Client) Request(req tgbotapi.Chattable) error {
	if c.dryRun {
		return nil
	}
	_, err := c.api.Request(req)
	return err
}

// Kick removes a member from a chat without leaving a ban behind.
func (c *Client) Kick(_ context.Context, chatID, userID int64) error {
	if chatID == 0 {
		return errors.New("main chat is not configured")
	}
	member := tgbotapi.ChatMemberConfig{ChatID: chatID, UserID: userID}
	if err := c.Request(tgbotapi.BanChatMemberConfig{ChatMemberConfig: member}); err != nil {
		return fmt.Errorf("ban chat member: %w", err)
	}
	if err := c.Request(tgbotapi.UnbanChatMemberConfig{ChatMemberConfig: member, OnlyIfBanned: true}); err != nil {
		return fmt.Errorf("unban chat member: %w", err)
	}
	return nil
}

// Administrators lists the user ids of the non-bot administrators of a chat.
func (c *Client) Administrators(_ context.Context, chatID int64) ([]int64, error) {
	if c.dryRun {
		return nil, nil
	}
	members, err := c.api.GetChatAdministrators(tgbotapi.ChatAdministratorsConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		return nil, fmt.Errorf("get chat administrators: %w", err)
	}
	ids := make([]int64, 0, len(members))
	for _, member := range members {
		if member.User == nil || member.User.IsBot {
			continue
		}
		ids = append(ids, member.User.ID)
	}
	return ids, nil
}
