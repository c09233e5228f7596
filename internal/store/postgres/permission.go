package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkboard/inkboard/internal/domain"
)

type PermissionRepo struct {
	pool *pgxpool.Pool
}

func NewPermissionRepo(pool *pgxpool.Pool) *PermissionRepo {
	return &PermissionRepo{pool: pool}
}

func (r *PermissionRepo) Get(ctx context.Context, boardID, userID uuid.UUID) (*domain.BoardPermission, error) {
	var p domain.BoardPermission

	err := r.pool.QueryRow(ctx,
		`SELECT id, board_id, user_id, permission_type, created_at
		 FROM board_permissions WHERE board_id = $1 AND user_id = $2`,
		boardID, userID,
	).Scan(&p.ID, &p.BoardID, &p.UserID, &p.PermissionType, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("permissionRepo.Get: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("permissionRepo.Get: %w", err)
	}

	return &p, nil
}

// Upsert inserts the record or replaces the permission type of an existing
// one. The (board_id, user_id) unique constraint keeps at most one record
// per pair.
func (r *PermissionRepo) Upsert(ctx context.Context, p *domain.BoardPermission) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO board_permissions (id, board_id, user_id, permission_type, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (board_id, user_id)
		 DO UPDATE SET permission_type = EXCLUDED.permission_type`,
		p.ID, p.BoardID, p.UserID, p.PermissionType, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("permissionRepo.Upsert: %w", err)
	}

	return nil
}

func (r *PermissionRepo) Delete(ctx context.Context, boardID, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM board_permissions WHERE board_id = $1 AND user_id = $2`,
		boardID, userID,
	)
	if err != nil {
		return fmt.Errorf("permissionRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("permissionRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *PermissionRepo) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.BoardPermission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, board_id, user_id, permission_type, created_at
		 FROM board_permissions WHERE board_id = $1
		 ORDER BY created_at`,
		boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("permissionRepo.ListByBoard: %w", err)
	}
	defer rows.Close()

	var perms []*domain.BoardPermission
	for rows.Next() {
		var p domain.BoardPermission
		if err := rows.Scan(&p.ID, &p.BoardID, &p.UserID, &p.PermissionType, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("permissionRepo.ListByBoard: scan: %w", err)
		}
		perms = append(perms, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("permissionRepo.ListByBoard: rows: %w", err)
	}

	return perms, nil
}
