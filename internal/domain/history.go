package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type HistoryAction string

const (
	HistoryActionCreate HistoryAction = "create"
	HistoryActionUpdate HistoryAction = "update"
	HistoryActionDelete HistoryAction = "delete"
)

// HistoryRecord is an immutable log entry for one element mutation. For
// update and delete actions Data holds the element state immediately
// before the action; for create it holds the created attributes. Records
// outlive their element and are only ever removed by the undo that
// consumes them.
type HistoryRecord struct {
	ID          uuid.UUID       `json:"id"`
	BoardID     uuid.UUID       `json:"board_id"`
	ElementID   uuid.UUID       `json:"element_id"`
	Action      HistoryAction   `json:"action_type"`
	Data        ElementSnapshot `json:"data"`
	PerformedBy *uuid.UUID      `json:"performed_by"` // nil if the user was removed
	CreatedAt   time.Time       `json:"created_at"`
}

type HistoryRepository interface {
	Append(ctx context.Context, rec *HistoryRecord) error
	// ListByBoard returns records newest-first, truncated to limit.
	ListByBoard(ctx context.Context, boardID uuid.UUID, limit int) ([]*HistoryRecord, error)
	// LatestByActor returns the actor's most recent record on the board,
	// or ErrNotFound when none exists.
	LatestByActor(ctx context.Context, boardID, actorID uuid.UUID) (*HistoryRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
