// Package access implements the board authorization check: a pure decision
// over the board's ownership and the actor's permission record. It has no
// side effects and must be consulted before admitting a connection, before
// any element mutation, and before permission-record changes.
package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/inkboard/inkboard/internal/domain"
)

type Class string

const (
	ClassRead  Class = "read"
	ClassWrite Class = "write"
	ClassAdmin Class = "admin"
)

// Allows reports whether a permission type grants a capability class.
// admin >= edit >= view.
func Allows(perm domain.PermissionType, class Class) bool {
	switch perm {
	case domain.PermissionAdmin:
		return true
	case domain.PermissionEdit:
		return class == ClassRead || class == ClassWrite
	case domain.PermissionView:
		return class == ClassRead
	default:
		return false
	}
}

// CanAccess decides whether actor may perform operations of the given
// class on board. perm is the actor's permission record, or nil when none
// exists. The board owner is always allowed.
func CanAccess(board *domain.Board, perm *domain.BoardPermission, actorID uuid.UUID, class Class) bool {
	if board == nil || actorID == uuid.Nil {
		return false
	}
	if board.OwnerID == actorID {
		return true
	}
	if perm == nil {
		return false
	}
	return Allows(perm.PermissionType, class)
}

// Checker resolves boards and permission records through the store and
// applies CanAccess.
type Checker struct {
	boards domain.BoardRepository
	perms  domain.PermissionRepository
}

func NewChecker(boards domain.BoardRepository, perms domain.PermissionRepository) *Checker {
	return &Checker{boards: boards, perms: perms}
}

// Check loads the board and the actor's permission record and returns the
// board when access is granted. Returns domain.ErrUnauthenticated for a nil
// actor, domain.ErrNotFound for a missing board and domain.ErrUnauthorized
// when the class is not granted.
func (c *Checker) Check(ctx context.Context, boardID, actorID uuid.UUID, class Class) (*domain.Board, error) {
	if actorID == uuid.Nil {
		return nil, fmt.Errorf("access.Check: %w", domain.ErrUnauthenticated)
	}

	board, err := c.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("access.Check: %w", err)
	}

	if board.OwnerID == actorID {
		return board, nil
	}

	perm, err := c.perms.Get(ctx, boardID, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("access.Check: %w", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("access.Check: %w", err)
	}

	if !Allows(perm.PermissionType, class) {
		return nil, fmt.Errorf("access.Check: %w", domain.ErrUnauthorized)
	}

	return board, nil
}
