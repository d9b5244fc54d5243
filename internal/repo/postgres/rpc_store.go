package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/botlist/internal/domain/enums"
	"github.com/ivankudzin/botlist/internal/domain/model"
)

var (
	ErrBotNotFound  = errors.New("bot not found")
	ErrTeamNotFound = errors.New("team not found")
)

const botColumns = `
	bot_id,
	type,
	claimed_by,
	last_claimed,
	votes,
	vote_banned,
	premium,
	start_premium_period,
	premium_period_length_hours,
	owner,
	team_owner::text,
	api_token,
	webhook,
	webhook_secret,
	updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBot(row rowScanner) (model.Bot, error) {
	var (
		bot     model.Bot
		botType string
	)
	err := row.Scan(
		&bot.BotID,
		&botType,
		&bot.ClaimedBy,
		&bot.LastClaimed,
		&bot.Votes,
		&bot.VoteBanned,
		&bot.Premium,
		&bot.StartPremiumPeriod,
		&bot.PremiumPeriodLengthHours,
		&bot.Owner,
		&bot.TeamOwner,
		&bot.APIToken,
		&bot.Webhook,
		&bot.WebhookSecret,
		&bot.UpdatedAt,
	)
	if err != nil {
		return model.Bot{}, err
	}
	bot.Type = enums.BotType(botType)
	return bot, nil
}

// RPCStore opens the transactions staff actions run in.
type RPCStore struct {
	pool *pgxpool.Pool
}

func NewRPCStore(pool *pgxpool.Pool) *RPCStore {
	return &RPCStore{pool: pool}
}

func (s *RPCStore) InTx(ctx context.Context, fn func(context.Context, *RPCTx) error) error {
	return WithTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &RPCTx{tx: tx})
	})
}

// RPCTx exposes the statements staff actions need inside one transaction.
type RPCTx struct {
	tx pgx.Tx
}

func (t *RPCTx) GetBotForUpdate(ctx context.Context, botID string) (model.Bot, error) {
	bot, err := scanBot(t.tx.QueryRow(ctx, `SELECT `+botColumns+`
FROM bots
WHERE bot_id = $1
FOR UPDATE
`, botID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Bot{}, ErrBotNotFound
		}
		return model.Bot{}, fmt.Errorf("get bot %s: %w", botID, err)
	}
	return bot, nil
}

func (t *RPCTx) UpdateBot(ctx context.Context, bot model.Bot) error {
	tag, err := t.tx.Exec(ctx, `
UPDATE bots
SET
	type = $2,
	claimed_by = $3,
	last_claimed = $4,
	votes = $5,
	vote_banned = $6,
	premium = $7,
	start_premium_period = $8,
	premium_period_length_hours = $9,
	owner = $10,
	team_owner = $11::uuid,
	api_token = $12,
	webhook = $13,
	webhook_secret = $14,
	updated_at = NOW()
WHERE bot_id = $1
`,
		bot.BotID,
		string(bot.Type),
		bot.ClaimedBy,
		bot.LastClaimed,
		bot.Votes,
		bot.VoteBanned,
		bot.Premium,
		bot.StartPremiumPeriod,
		bot.PremiumPeriodLengthHours,
		bot.Owner,
		bot.TeamOwner,
		bot.APIToken,
		bot.Webhook,
		bot.WebhookSecret,
	)
	if err != nil {
		return fmt.Errorf("update bot %s: %w", bot.BotID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBotNotFound
	}
	return nil
}

func (t *RPCTx) DeleteBot(ctx context.Context, botID string) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM bots WHERE bot_id = $1`, botID)
	if err != nil {
		return fmt.Errorf("delete bot %s: %w", botID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBotNotFound
	}
	return nil
}

func (t *RPCTx) DeleteVotes(ctx context.Context, botID string) (int64, error) {
	tag, err := t.tx.Exec(ctx, `DELETE FROM votes WHERE bot_id = $1`, botID)
	if err != nil {
		return 0, fmt.Errorf("delete votes of bot %s: %w", botID, err)
	}
	return tag.RowsAffected(), nil
}

func (t *RPCTx) DeleteAllVotes(ctx context.Context) (int64, error) {
	tag, err := t.tx.Exec(ctx, `DELETE FROM votes`)
	if err != nil {
		return 0, fmt.Errorf("delete all votes: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (t *RPCTx) ResetAllVoteCounts(ctx context.Context) (int64, error) {
	tag, err := t.tx.Exec(ctx, `UPDATE bots SET votes = 0, updated_at = NOW()`)
	if err != nil {
		return 0, fmt.Errorf("reset vote counts: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (t *RPCTx) GetTeamForUpdate(ctx context.Context, teamID string) (model.Team, error) {
	var team model.Team
	err := t.tx.QueryRow(ctx, `
SELECT id::text, name
FROM teams
WHERE id = $1::uuid
FOR UPDATE
`, teamID).Scan(&team.ID, &team.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Team{}, ErrTeamNotFound
		}
		return model.Team{}, fmt.Errorf("get team %s: %w", teamID, err)
	}
	return team, nil
}

func (t *RPCTx) UpdateTeamName(ctx context.Context, teamID, name string) error {
	tag, err := t.tx.Exec(ctx, `UPDATE teams SET name = $2 WHERE id = $1::uuid`, teamID, name)
	if err != nil {
		return fmt.Errorf("update team %s: %w", teamID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTeamNotFound
	}
	return nil
}

func (t *RPCTx) UserExists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	if err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE user_id = $1)`, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user %s: %w", userID, err)
	}
	return exists, nil
}

func (t *RPCTx) InsertRPCLog(ctx context.Context, entry model.RPCLog) error {
	data := entry.Data
	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}

	if _, err := t.tx.Exec(ctx, `
INSERT INTO rpc_logs (id, method, user_id, data, created_at)
VALUES ($1::uuid, $2, $3, $4::jsonb, $5)
`, entry.ID, entry.Method, entry.UserID, string(data), entry.CreatedAt); err != nil {
		return fmt.Errorf("insert rpc log: %w", err)
	}
	return nil
}
