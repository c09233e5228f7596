package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/inkboard/inkboard/internal/access"
	"github.com/inkboard/inkboard/internal/board"
	"github.com/inkboard/inkboard/internal/domain"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Users() domain.UserRepository
	Boards() domain.BoardRepository
	Elements() domain.ElementRepository
	Permissions() domain.PermissionRepository
	History() domain.HistoryRepository
}

// AuthService abstracts authentication operations for handler testing.
// *auth.Service satisfies this interface.
type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
}

// BoardService abstracts the mutation pipeline and history engine for
// handler testing. *board.Service satisfies this interface.
type BoardService interface {
	Authorize(ctx context.Context, boardID, actorID uuid.UUID, class access.Class) (*domain.Board, error)
	CreateElement(ctx context.Context, boardID, actorID uuid.UUID, params board.CreateElementParams, originSession string) (*domain.Element, error)
	UpdateElement(ctx context.Context, boardID, actorID, elementID uuid.UUID, patch domain.ElementPatch, originSession string) (*domain.Element, error)
	DeleteElement(ctx context.Context, boardID, actorID, elementID uuid.UUID, originSession string) error
	Undo(ctx context.Context, boardID, actorID uuid.UUID, originSession string) (*domain.Element, error)
	ListHistory(ctx context.Context, boardID, actorID uuid.UUID, limit int) ([]*domain.HistoryRecord, error)
	ListElements(ctx context.Context, boardID, actorID uuid.UUID) ([]*domain.Element, error)
	GetElement(ctx context.Context, boardID, actorID, elementID uuid.UUID) (*domain.Element, error)
	ExportState(ctx context.Context, boardID, actorID uuid.UUID) (*board.BoardState, error)
	ImportState(ctx context.Context, boardID, actorID uuid.UUID, params board.ImportStateParams, originSession string) (*board.BoardState, error)
}
