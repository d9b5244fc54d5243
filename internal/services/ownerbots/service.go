package ownerbots

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ivankudzin/botlist/internal/domain/model"
)

type Repo interface {
	ListByOwner(ctx context.Context, userID string) ([]model.Bot, error)
}

type Cache interface {
	Get(ctx context.Context, userID string) ([]model.Bot, bool, error)
	Set(ctx context.Context, userID string, bots []model.Bot) error
}

// Service serves the bot listing of an owner from the cache, filling it from
// Postgres on a miss. Staff actions invalidate the entries they touch.
type Service struct {
	repo   Repo
	cache  Cache
	logger *zap.Logger
}

func NewService(repo Repo, cache Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

func (s *Service) ListByOwner(ctx context.Context, userID string) ([]model.Bot, error) {
	if s.cache != nil {
		bots, ok, err := s.cache.Get(ctx, userID)
		switch {
		case err != nil:
			s.logger.Warn("read owner bots cache", zap.String("user_id", userID), zap.Error(err))
		case ok:
			return bots, nil
		}
	}

	bots, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list owner bots: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, bots); err != nil {
			s.logger.Warn("fill owner bots cache", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return bots, nil
}
