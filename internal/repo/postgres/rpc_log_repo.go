package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/botlist/internal/domain/model"
)

type RPCLogRepo struct {
	pool *pgxpool.Pool
}

func NewRPCLogRepo(pool *pgxpool.Pool) *RPCLogRepo {
	return &RPCLogRepo{pool: pool}
}

func (r *RPCLogRepo) ListRecent(ctx context.Context, limit int) ([]model.RPCLog, error) {
	if r.pool == nil {
		return []model.RPCLog{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
SELECT id::text, method, user_id, data, created_at
FROM rpc_logs
ORDER BY created_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent rpc logs: %w", err)
	}
	defer rows.Close()

	result := make([]model.RPCLog, 0, limit)
	for rows.Next() {
		var entry model.RPCLog
		var data []byte
		if err := rows.Scan(&entry.ID, &entry.Method, &entry.UserID, &data, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rpc log row: %w", err)
		}
		entry.Data = json.RawMessage(data)
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rpc log rows: %w", err)
	}

	return result, nil
}
