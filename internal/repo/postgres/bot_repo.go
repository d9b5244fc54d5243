package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/botlist/internal/domain/model"
)

type BotRepo struct {
	pool *pgxpool.Pool
}

func NewBotRepo(pool *pgxpool.Pool) *BotRepo {
	return &BotRepo{pool: pool}
}

func (r *BotRepo) ListByOwner(ctx context.Context, userID string) ([]model.Bot, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `SELECT `+botColumns+`
FROM bots
WHERE owner = $1
ORDER BY bot_id ASC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list bots of owner %s: %w", userID, err)
	}
	defer rows.Close()

	result := make([]model.Bot, 0)
	for rows.Next() {
		bot, err := scanBot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bot row: %w", err)
		}
		result = append(result, bot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bot rows: %w", err)
	}

	return result, nil
}

// ResetPlaceholderClaims returns bots whose claimer was stored as the literal
// string "none" to the unclaimed pending queue.
func (r *BotRepo) ResetPlaceholderClaims(ctx context.Context) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE bots
SET claimed_by = NULL, type = 'pending', updated_at = NOW()
WHERE LOWER(claimed_by) = 'none'
`)
	if err != nil {
		return 0, fmt.Errorf("reset placeholder claims: %w", err)
	}
	return tag.RowsAffected(), nil
}
