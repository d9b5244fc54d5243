package rolesync

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
)

type MemberSource interface {
	Administrators(ctx context.Context, chatID int64) ([]int64, error)
}

type Syncer interface {
	SyncBugHunters(ctx context.Context, memberIDs []string) (int64, error)
}

// Job mirrors the administrators of the bug hunters chat into
// users.bug_hunters.
type Job struct {
	members  MemberSource
	store    Syncer
	chatID   int64
	interval time.Duration
	logger   *zap.Logger
}

func New(members MemberSource, store Syncer, chatID int64, interval time.Duration, logger *zap.Logger) *Job {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Job{
		members:  members,
		store:    store,
		chatID:   chatID,
		interval: interval,
		logger:   logger,
	}
}

// Run performs one sync. A failed membership read leaves the stored flags
// untouched.
func (j *Job) Run(ctx context.Context) error {
	if j.chatID == 0 {
		return fmt.Errorf("bug hunters chat is not configured")
	}

	ids, err := j.members.Administrators(ctx, j.chatID)
	if err != nil {
		return fmt.Errorf("list bug hunters: %w", err)
	}

	memberIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		memberIDs = append(memberIDs, strconv.FormatInt(id, 10))
	}

	flagged, err := j.store.SyncBugHunters(ctx, memberIDs)
	if err != nil {
		return fmt.Errorf("sync bug hunters: %w", err)
	}

	j.logger.Info("role sync completed",
		zap.Int("members", len(memberIDs)),
		zap.Int64("flagged", flagged),
	)
	return nil
}

// Loop runs the job immediately and then on every tick until ctx ends.
// Failed passes are logged and retried on the next tick.
func (j *Job) Loop(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		if err := j.Run(ctx); err != nil && ctx.Err() == nil {
			j.logger.Warn("role sync failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
