package botapp

import "context"

type ChatKicker interface {
	Kick(ctx context.Context, chatID, userID int64) error
}

// MainChat removes force-removed bots from the main group.
type MainChat struct {
	kicker ChatKicker
	chatID int64
}

func NewMainChat(kicker ChatKicker, chatID int64) *MainChat {
	return &MainChat{kicker: kicker, chatID: chatID}
}

func (c *MainChat) Kick(ctx context.Context, userID int64) error {
	return c.kicker.Kick(ctx, c.chatID, userID)
}
