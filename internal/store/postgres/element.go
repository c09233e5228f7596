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

type ElementRepo struct {
	pool *pgxpool.Pool
}

func NewElementRepo(pool *pgxpool.Pool) *ElementRepo {
	return &ElementRepo{pool: pool}
}

func (r *ElementRepo) Create(ctx context.Context, e *domain.Element) error {
	props, err := json.Marshal(e.Properties)
	if err != nil {
		return fmt.Errorf("elementRepo.Create: marshal properties: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO elements (id, board_id, element_type, content, path,
		        position_x, position_y, width, height, rotation, z_index,
		        properties, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		e.ID, e.BoardID, e.ElementType, e.Content, e.Path,
		e.PositionX, e.PositionY, e.Width, e.Height, e.Rotation, e.ZIndex,
		props, e.CreatedBy, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("elementRepo.Create: %w", err)
	}

	return nil
}

func (r *ElementRepo) GetByID(ctx context.Context, boardID, id uuid.UUID) (*domain.Element, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, board_id, element_type, content, path,
		        position_x, position_y, width, height, rotation, z_index,
		        properties, created_by, created_at, updated_at
		 FROM elements WHERE board_id = $1 AND id = $2`,
		boardID, id,
	)

	e, err := scanElement(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("elementRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("elementRepo.GetByID: %w", err)
	}

	return e, nil
}

func (r *ElementRepo) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Element, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, board_id, element_type, content, path,
		        position_x, position_y, width, height, rotation, z_index,
		        properties, created_by, created_at, updated_at
		 FROM elements WHERE board_id = $1
		 ORDER BY z_index, created_at`,
		boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("elementRepo.ListByBoard: %w", err)
	}
	defer rows.Close()

	var elements []*domain.Element
	for rows.Next() {
		e, scanErr := scanElement(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("elementRepo.ListByBoard: %w", scanErr)
		}
		elements = append(elements, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("elementRepo.ListByBoard: rows: %w", err)
	}

	return elements, nil
}

func (r *ElementRepo) Update(ctx context.Context, e *domain.Element) error {
	props, err := json.Marshal(e.Properties)
	if err != nil {
		return fmt.Errorf("elementRepo.Update: marshal properties: %w", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE elements SET element_type = $1, content = $2, path = $3,
		        position_x = $4, position_y = $5, width = $6, height = $7,
		        rotation = $8, z_index = $9, properties = $10, updated_at = $11
		 WHERE board_id = $12 AND id = $13`,
		e.ElementType, e.Content, e.Path,
		e.PositionX, e.PositionY, e.Width, e.Height,
		e.Rotation, e.ZIndex, props, e.UpdatedAt,
		e.BoardID, e.ID,
	)
	if err != nil {
		return fmt.Errorf("elementRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("elementRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *ElementRepo) Delete(ctx context.Context, boardID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM elements WHERE board_id = $1 AND id = $2`,
		boardID, id,
	)
	if err != nil {
		return fmt.Errorf("elementRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("elementRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func scanElement(row pgx.Row) (*domain.Element, error) {
	var (
		e     domain.Element
		props []byte
	)

	err := row.Scan(
		&e.ID, &e.BoardID, &e.ElementType, &e.Content, &e.Path,
		&e.PositionX, &e.PositionY, &e.Width, &e.Height, &e.Rotation, &e.ZIndex,
		&props, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(props) > 0 {
		if err := json.Unmarshal(props, &e.Properties); err != nil {
			return nil, fmt.Errorf("unmarshal properties: %w", err)
		}
	}
	if e.Properties == nil {
		e.Properties = map[string]any{}
	}

	return &e, nil
}
