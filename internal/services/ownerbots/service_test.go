package ownerbots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ivankudzin/botlist/internal/domain/enums"
	"github.com/ivankudzin/botlist/internal/domain/model"
	redrepo "github.com/ivankudzin/botlist/internal/repo/redis"
)

type countingRepo struct {
	calls int
	bots  []model.Bot
	err   error
}

func (r *countingRepo) ListByOwner(context.Context, string) ([]model.Bot, error) {
	r.calls++
	return r.bots, r.err
}

func newCache(t *testing.T) (*miniredis.Miniredis, *redrepo.OwnerCacheRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, redrepo.NewOwnerCacheRepo(client, time.Minute)
}

func TestListByOwnerFillsAndUsesCache(t *testing.T) {
	_, cache := newCache(t)
	repo := &countingRepo{bots: []model.Bot{{BotID: "42", Type: enums.BotTypeApproved}}}
	svc := NewService(repo, cache, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		bots, err := svc.ListByOwner(ctx, "7")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(bots) != 1 || bots[0].BotID != "42" {
			t.Fatalf("unexpected bots: %+v", bots)
		}
	}
	if repo.calls != 1 {
		t.Fatalf("expected one repo read, got %d", repo.calls)
	}

	if err := cache.Invalidate(ctx, "7"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := svc.ListByOwner(ctx, "7"); err != nil {
		t.Fatalf("list after invalidate: %v", err)
	}
	if repo.calls != 2 {
		t.Fatalf("invalidation should force a repo read, got %d calls", repo.calls)
	}
}

func TestListByOwnerFallsBackWhenCacheIsDown(t *testing.T) {
	mr, cache := newCache(t)
	mr.Close()

	repo := &countingRepo{bots: []model.Bot{{BotID: "42"}}}
	bots, err := NewService(repo, cache, nil).ListByOwner(context.Background(), "7")
	if err != nil {
		t.Fatalf("cache outage leaked: %v", err)
	}
	if len(bots) != 1 {
		t.Fatalf("unexpected bots: %+v", bots)
	}
}

func TestListByOwnerRepoError(t *testing.T) {
	_, cache := newCache(t)
	repoErr := errors.New("db down")

	_, err := NewService(&countingRepo{err: repoErr}, cache, nil).ListByOwner(context.Background(), "7")
	if !errors.Is(err, repoErr) {
		t.Fatalf("expected repo error, got %v", err)
	}
}
