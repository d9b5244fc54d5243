package audit

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/goleak"

	"github.com/ivankudzin/botlist/internal/domain/model"
)

type recordingSender struct {
	mu    sync.Mutex
	texts []string
	sent  chan struct{}
	err   error
}

func (s *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, ok := c.(tgbotapi.MessageConfig)
	if ok {
		s.mu.Lock()
		s.texts = append(s.texts, msg.Text)
		s.mu.Unlock()
	}
	if s.sent != nil {
		s.sent <- struct{}{}
	}
	return tgbotapi.Message{}, s.err
}

type recordingArchive struct {
	mu   sync.Mutex
	keys []string
	body []byte
	done chan struct{}
}

func (a *recordingArchive) PutJSON(_ context.Context, key string, body []byte) error {
	a.mu.Lock()
	a.keys = append(a.keys, key)
	a.body = body
	a.mu.Unlock()
	a.done <- struct{}{}
	return nil
}

func sampleNotice() Notice {
	return Notice{
		Log: model.RPCLog{
			ID:        "3f1c",
			Method:    "BotApprove",
			UserID:    "7",
			Data:      json.RawMessage(`{"bot_id":"42","reason":"looks fine"}`),
			CreatedAt: time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC),
		},
		Content: "bot 42 approved",
	}
}

func TestNotifierSendsAndArchives(t *testing.T) {
	defer goleak.VerifyNone(t)

	sender := &recordingSender{sent: make(chan struct{}, 1)}
	archive := &recordingArchive{done: make(chan struct{}, 1)}
	notifier := NewNotifier(sender, -100, archive, 4, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = notifier.Run(ctx)
		close(done)
	}()

	if !notifier.Enqueue(sampleNotice()) {
		t.Fatalf("enqueue must succeed on an empty queue")
	}

	waitFor(t, sender.sent)
	waitFor(t, archive.done)
	cancel()
	<-done

	if len(sender.texts) != 1 || !strings.Contains(sender.texts[0], "BotApprove") {
		t.Fatalf("unexpected audit messages: %v", sender.texts)
	}
	if archive.keys[0] != "rpc/2024/03/09/3f1c.json" {
		t.Fatalf("unexpected archive key: %s", archive.keys[0])
	}
	var archived map[string]any
	if err := json.Unmarshal(archive.body, &archived); err != nil {
		t.Fatalf("decode archived notice: %v", err)
	}
	if archived["content"] != "bot 42 approved" {
		t.Fatalf("unexpected archived content: %v", archived["content"])
	}
}

func TestNotifierSendFailureStillArchives(t *testing.T) {
	defer goleak.VerifyNone(t)

	sender := &recordingSender{sent: make(chan struct{}, 1), err: errors.New("chat not found")}
	archive := &recordingArchive{done: make(chan struct{}, 1)}
	notifier := NewNotifier(sender, -100, archive, 4, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = notifier.Run(ctx)
		close(done)
	}()

	notifier.Enqueue(sampleNotice())
	waitFor(t, sender.sent)
	waitFor(t, archive.done)
	cancel()
	<-done
}

func TestEnqueueNeverBlocks(t *testing.T) {
	notifier := NewNotifier(nil, 0, nil, 1, nil)

	if !notifier.Enqueue(sampleNotice()) {
		t.Fatalf("first enqueue must succeed")
	}
	if notifier.Enqueue(sampleNotice()) {
		t.Fatalf("second enqueue must report a full queue")
	}
}

func TestRunDrainsQueueOnShutdown(t *testing.T) {
	defer goleak.VerifyNone(t)

	sender := &recordingSender{sent: make(chan struct{}, 2)}
	notifier := NewNotifier(sender, -100, nil, 2, nil)
	notifier.Enqueue(sampleNotice())
	notifier.Enqueue(sampleNotice())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := notifier.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sender.texts) != 2 {
		t.Fatalf("expected queued notices to be delivered on shutdown, got %d", len(sender.texts))
	}
}

type gatedArchive struct {
	started chan struct{}
	release chan struct{}
	ctxErr  chan error
}

func (a *gatedArchive) PutJSON(ctx context.Context, _ string, _ []byte) error {
	a.started <- struct{}{}
	<-a.release
	a.ctxErr <- ctx.Err()
	return ctx.Err()
}

func TestInFlightArchiveSurvivesShutdown(t *testing.T) {
	defer goleak.VerifyNone(t)

	archive := &gatedArchive{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
		ctxErr:  make(chan error, 1),
	}
	notifier := NewNotifier(nil, 0, archive, 1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- notifier.Run(ctx) }()

	notifier.Enqueue(sampleNotice())
	waitFor(t, archive.started)
	cancel()
	close(archive.release)

	if err := <-archive.ctxErr; err != nil {
		t.Fatalf("in-flight archive write saw a cancelled context: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for delivery")
	}
}
