package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkboard/inkboard/internal/domain"
)

type HistoryRepo struct {
	pool *pgxpool.Pool
}

func NewHistoryRepo(pool *pgxpool.Pool) *HistoryRepo {
	return &HistoryRepo{pool: pool}
}

func (r *HistoryRepo) Append(ctx context.Context, rec *domain.HistoryRecord) error {
	data, err := json.Marshal(rec.Data)
	if err != nil {
		return fmt.Errorf("historyRepo.Append: marshal data: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO element_history (id, board_id, element_id, action_type, data, performed_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.BoardID, rec.ElementID, rec.Action, data, rec.PerformedBy, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("historyRepo.Append: %w", err)
	}

	return nil
}

func (r *HistoryRepo) ListByBoard(ctx context.Context, boardID uuid.UUID, limit int) ([]*domain.HistoryRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, board_id, element_id, action_type, data, performed_by, created_at
		 FROM element_history WHERE board_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		boardID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("historyRepo.ListByBoard: %w", err)
	}
	defer rows.Close()

	var recs []*domain.HistoryRecord
	for rows.Next() {
		rec, scanErr := scanHistoryRecord(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("historyRepo.ListByBoard: %w", scanErr)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("historyRepo.ListByBoard: rows: %w", err)
	}

	return recs, nil
}

func (r *HistoryRepo) LatestByActor(ctx context.Context, boardID, actorID uuid.UUID) (*domain.HistoryRecord, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, board_id, element_id, action_type, data, performed_by, created_at
		 FROM element_history WHERE board_id = $1 AND performed_by = $2
		 ORDER BY created_at DESC
		 LIMIT 1`,
		boardID, actorID,
	)

	rec, err := scanHistoryRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("historyRepo.LatestByActor: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("historyRepo.LatestByActor: %w", err)
	}

	return rec, nil
}

func (r *HistoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM element_history WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("historyRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("historyRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func scanHistoryRecord(row pgx.Row) (*domain.HistoryRecord, error) {
	var (
		rec  domain.HistoryRecord
		data []byte
	)

	err := row.Scan(&rec.ID, &rec.BoardID, &rec.ElementID, &rec.Action, &data, &rec.PerformedBy, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &rec.Data); err != nil {
			return nil, fmt.Errorf("unmarshal data: %w", err)
		}
	}

	return &rec, nil
}
