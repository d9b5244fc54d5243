package rolesync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

type fakeMembers struct {
	ids []int64
	err error
}

func (f fakeMembers) Administrators(context.Context, int64) ([]int64, error) {
	return f.ids, f.err
}

type fakeSyncer struct {
	mu    sync.Mutex
	calls [][]string
}

func (f *fakeSyncer) SyncBugHunters(_ context.Context, memberIDs []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, memberIDs)
	return int64(len(memberIDs)), nil
}

func (f *fakeSyncer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestRunSyncsAdministrators(t *testing.T) {
	store := &fakeSyncer{}
	job := New(fakeMembers{ids: []int64{11, 22}}, store, -100, time.Hour, nil)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(store.calls) != 1 || len(store.calls[0]) != 2 || store.calls[0][0] != "11" || store.calls[0][1] != "22" {
		t.Fatalf("unexpected sync calls: %v", store.calls)
	}
}

func TestRunKeepsFlagsWhenMembershipUnavailable(t *testing.T) {
	store := &fakeSyncer{}
	job := New(fakeMembers{err: errors.New("chat not found")}, store, -100, time.Hour, nil)

	if err := job.Run(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if len(store.calls) != 0 {
		t.Fatalf("flags must not be reset when membership is unknown")
	}
}

func TestRunRequiresChat(t *testing.T) {
	if err := New(fakeMembers{}, &fakeSyncer{}, 0, time.Hour, nil).Run(context.Background()); err == nil {
		t.Fatalf("expected error without chat id")
	}
}

func TestLoopStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := &fakeSyncer{}
	job := New(fakeMembers{ids: []int64{1}}, store, -100, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- job.Loop(ctx) }()

	deadline := time.After(2 * time.Second)
	for store.count() < 2 {
		select {
		case <-deadline:
			t.Fatalf("loop did not tick, calls=%d", store.count())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("loop returned %v", err)
	}
}
