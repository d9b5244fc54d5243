package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ivankudzin/botlist/internal/domain/model"
)

const ownerBotsPrefix = "owner_bots:"

// OwnerCacheRepo caches the bot listing of each owner.
type OwnerCacheRepo struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewOwnerCacheRepo(client *goredis.Client, ttl time.Duration) *OwnerCacheRepo {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &OwnerCacheRepo{client: client, ttl: ttl}
}

func (r *OwnerCacheRepo) Get(ctx context.Context, userID string) ([]model.Bot, bool, error) {
	if r.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}

	raw, err := r.client.Get(ctx, ownerBotsKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get owner bots: %w", err)
	}

	var bots []model.Bot
	if err := json.Unmarshal(raw, &bots); err != nil {
		return nil, false, fmt.Errorf("decode owner bots: %w", err)
	}
	return bots, true, nil
}

func (r *OwnerCacheRepo) Set(ctx context.Context, userID string, bots []model.Bot) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if bots == nil {
		bots = []model.Bot{}
	}

	raw, err := json.Marshal(bots)
	if err != nil {
		return fmt.Errorf("encode owner bots: %w", err)
	}
	if err := r.client.Set(ctx, ownerBotsKey(userID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("set owner bots: %w", err)
	}
	return nil
}

func (r *OwnerCacheRepo) Invalidate(ctx context.Context, userIDs ...string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if strings.TrimSpace(id) == "" {
			continue
		}
		keys = append(keys, ownerBotsKey(id))
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate owner bots: %w", err)
	}
	return nil
}

func (r *OwnerCacheRepo) InvalidateAll(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	iter := r.client.Scan(ctx, 0, ownerBotsPrefix+"*", 200).Iterator()
	keys := make([]string, 0, 200)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == cap(keys) {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("invalidate owner bots: %w", err)
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan owner bots: %w", err)
	}
	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("invalidate owner bots: %w", err)
		}
	}
	return nil
}

func ownerBotsKey(userID string) string {
	return ownerBotsPrefix + userID
}
