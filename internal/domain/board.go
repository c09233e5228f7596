package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Board is a shared drawing surface. The owner has implicit full rights;
// everyone else needs a BoardPermission record.
type Board struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	OwnerID   uuid.UUID `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BoardRepository interface {
	Create(ctx context.Context, b *Board) error
	GetByID(ctx context.Context, id uuid.UUID) (*Board, error)
	ListOwned(ctx context.Context, ownerID uuid.UUID) ([]*Board, error)
	ListShared(ctx context.Context, userID uuid.UUID) ([]*Board, error)
	UpdateTitle(ctx context.Context, id uuid.UUID, title string) error
	// Delete removes the board together with its elements, permission
	// records and history.
	Delete(ctx context.Context, id uuid.UUID) error
}
