package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/botlist/internal/domain/model"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) GetByID(ctx context.Context, userID string) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}

	user := model.User{UserID: userID}
	err := r.pool.QueryRow(ctx, `
SELECT staff, admin, hadmin, bug_hunters
FROM users
WHERE user_id = $1
`, userID).Scan(&user.Staff, &user.Admin, &user.HAdmin, &user.BugHunters)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user %s: %w", userID, err)
	}
	return user, nil
}

// SyncBugHunters makes exactly memberIDs carry the bug hunter flag. Members
// without a users row are skipped.
func (r *UserRepo) SyncBugHunters(ctx context.Context, memberIDs []string) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var flagged int64
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE users SET bug_hunters = false WHERE bug_hunters`); err != nil {
			return fmt.Errorf("reset bug hunters: %w", err)
		}
		if len(memberIDs) == 0 {
			return nil
		}
		tag, err := tx.Exec(ctx, `UPDATE users SET bug_hunters = true WHERE user_id = ANY($1)`, memberIDs)
		if err != nil {
			return fmt.Errorf("flag bug hunters: %w", err)
		}
		flagged = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return flagged, nil
}
