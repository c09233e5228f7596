package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type PermissionType string

const (
	PermissionView  PermissionType = "view"
	PermissionEdit  PermissionType = "edit"
	PermissionAdmin PermissionType = "admin"
)

// Valid reports whether t is one of the known permission types.
func (t PermissionType) Valid() bool {
	switch t {
	case PermissionView, PermissionEdit, PermissionAdmin:
		return true
	default:
		return false
	}
}

// BoardPermission grants a user a capability level on a board. At most one
// record exists per (board, user) pair; the owner needs no record.
type BoardPermission struct {
	ID             uuid.UUID      `json:"id"`
	BoardID        uuid.UUID      `json:"board_id"`
	UserID         uuid.UUID      `json:"user_id"`
	PermissionType PermissionType `json:"permission_type"`
	CreatedAt      time.Time      `json:"created_at"`
}

type PermissionRepository interface {
	Get(ctx context.Context, boardID, userID uuid.UUID) (*BoardPermission, error)
	// Upsert inserts or replaces the record for (board, user).
	Upsert(ctx context.Context, p *BoardPermission) error
	Delete(ctx context.Context, boardID, userID uuid.UUID) error
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*BoardPermission, error)
}
