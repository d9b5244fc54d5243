package botapp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingKicker struct {
	chatID int64
	userID int64
	err    error
}

func (k *recordingKicker) Kick(_ context.Context, chatID, userID int64) error {
	k.chatID = chatID
	k.userID = userID
	return k.err
}

func TestMainChatKicksFromConfiguredChat(t *testing.T) {
	kicker := &recordingKicker{}
	chat := NewMainChat(kicker, -100500)

	require.NoError(t, chat.Kick(context.Background(), 42))
	assert.Equal(t, int64(-100500), kicker.chatID)
	assert.Equal(t, int64(42), kicker.userID)
}

func TestMainChatReturnsKickError(t *testing.T) {
	kicker := &recordingKicker{err: errors.New("not enough rights")}
	chat := NewMainChat(kicker, -100500)

	assert.EqualError(t, chat.Kick(context.Background(), 42), "not enough rights")
}
