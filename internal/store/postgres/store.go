// Package postgres implements the entity store on PostgreSQL via pgx.
// Repositories only shape queries; authorization and mutation semantics
// live in the service layers above. Conflicting writes to the same row
// are serialized by the database, which is what gives the pipeline its
// last-write-wins behavior.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkboard/inkboard/internal/domain"
)

type Store struct {
	pool        *pgxpool.Pool
	users       *UserRepo
	boards      *BoardRepo
	elements    *ElementRepo
	permissions *PermissionRepo
	history     *HistoryRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:        pool,
		users:       NewUserRepo(pool),
		boards:      NewBoardRepo(pool),
		elements:    NewElementRepo(pool),
		permissions: NewPermissionRepo(pool),
		history:     NewHistoryRepo(pool),
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Users() domain.UserRepository             { return s.users }
func (s *Store) Boards() domain.BoardRepository           { return s.boards }
func (s *Store) Elements() domain.ElementRepository       { return s.elements }
func (s *Store) Permissions() domain.PermissionRepository { return s.permissions }
func (s *Store) History() domain.HistoryRepository        { return s.history }
