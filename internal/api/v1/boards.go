package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/inkboard/inkboard/internal/access"
	"github.com/inkboard/inkboard/internal/board"
	"github.com/inkboard/inkboard/internal/domain"
	"github.com/inkboard/inkboard/internal/server/middleware"
)

// actorFromContext resolves the authenticated user placed in the request
// context by the auth middleware.
func actorFromContext(ctx context.Context) (uuid.UUID, error) {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, huma.Error401Unauthorized("missing identity")
	}
	return userID, nil
}

type CreateBoardInput struct {
	Body struct {
		Title string `json:"title" minLength:"1" maxLength:"255" doc:"Board title"`
	}
}

type CreateBoardOutput struct {
	Body *domain.Board
}

type ListBoardsOutput struct {
	Body struct {
		Owned  []*domain.Board `json:"owned"`
		Shared []*domain.Board `json:"shared"`
	}
}

type GetBoardInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
}

type GetBoardOutput struct {
	Body *domain.Board
}

type UpdateBoardInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	Body    struct {
		Title string `json:"title" minLength:"1" maxLength:"255" doc:"Board title"`
	}
}

type UpdateBoardOutput struct {
	Body *domain.Board
}

type DeleteBoardInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
}

type ExportBoardInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
}

type ExportBoardOutput struct {
	Body *board.BoardState
}

type ImportBoardInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	Body    board.ImportStateParams
}

type ImportBoardOutput struct {
	Body *board.BoardState
}

func RegisterBoardRoutes(api huma.API, store DataStore, boards BoardService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-board",
		Method:      http.MethodPost,
		Path:        "/boards",
		Summary:     "Create a new board",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *CreateBoardInput) (*CreateBoardOutput, error) {
		actorID, err := actorFromContext(ctx)
		if err != nil {
			return nil, err
		}

		now := time.Now()
		b := &domain.Board{
			ID:        uuid.New(),
			Title:     input.Body.Title,
			OwnerID:   actorID,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := store.Boards().Create(ctx, b); err != nil {
			return nil, huma.Error500InternalServerError("failed to create board", err)
		}

		return &CreateBoardOutput{Body: b}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-boards",
		Method:      http.MethodGet,
		Path:        "/boards",
		Summary:     "List boards owned by or shared with the user",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, _ *struct{}) (*ListBoardsOutput, error) {
		actorID, err := actorFromContext(ctx)
		if err != nil {
			return nil, err
		}

		owned, err := store.Boards().ListOwned(ctx, actorID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list boards", err)
		}

		shared, err := store.Boards().ListShared(ctx, actorID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list boards", err)
		}

		out := &ListBoardsOutput{}
		out.Body.Owned = owned
		out.Body.Shared = shared
		if out.Body.Owned == nil {
			out.Body.Owned = []*domain.Board{}
		}
		if out.Body.Shared == nil {
			out.Body.Shared = []*domain.Board{}
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-board",
		Method:      http.MethodGet,
		Path:        "/boards/{boardID}",
		Summary:     "Get a board",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *GetBoardInput) (*GetBoardOutput, error) {
		actorID, err := actorFromContext(ctx)
		if err != nil {
			return nil, err
		}

		b, err := boards.Authorize(ctx, input.BoardID, actorID, access.ClassRead)
		if err != nil {
			return nil, mapAuthorizeError(err, "board not found")
		}

		return &GetBoardOutput{Body: b}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-board",
		Method:      http.MethodPatch,
		Path:        "/boards/{boardID}",
		Summary:     "Rename a board",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *UpdateBoardInput) (*UpdateBoardOutput, error) {
		actorID, err := actorFromContext(ctx)
		if err != nil {
			return nil, err
		}

		if _, err := boards.Authorize(ctx, input.BoardID, actorID, access.ClassWrite); err != nil {
			return nil, mapAuthorizeError(err, "board not found")
		}

		if err := store.Boards().UpdateTitle(ctx, input.BoardID, input.Body.Title); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("board not found")
			}
			return nil, huma.Error500InternalServerError("failed to update board", err)
		}

		b, err := store.Boards().GetByID(ctx, input.BoardID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to load board", err)
		}

		return &UpdateBoardOutput{Body: b}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-board",
		Method:        http.MethodDelete,
		Path:          "/boards/{boardID}",
		Summary:       "Delete a board and everything on it",
		Tags:          []string{"Boards"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *DeleteBoardInput) (*struct{}, error) {
		actorID, err := actorFromContext(ctx)
		if err != nil {
			return nil, err
		}

		if _, err := boards.Authorize(ctx, input.BoardID, actorID, access.ClassAdmin); err != nil {
			return nil, mapAuthorizeError(err, "board not found")
		}

		if err := store.Boards().Delete(ctx, input.BoardID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("board not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete board", err)
		}

		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "export-board-state",
		Method:      http.MethodGet,
		Path:        "/boards/{boardID}/state",
		Summary:     "Export the full board state with all elements",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *ExportBoardInput) (*ExportBoardOutput, error) {
		actorID, err := actorFromContext(ctx)
		if err != nil {
			return nil, err
		}

		state, err := boards.ExportState(ctx, input.BoardID, actorID)
		if err != nil {
			return nil, mapAuthorizeError(err, "board not found")
		}

		return &ExportBoardOutput{Body: state}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "import-board-state",
		Method:      http.MethodPost,
		Path:        "/boards/{boardID}/state",
		Summary:     "Bulk-apply a board state: patch the title, upsert listed elements, delete the rest",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *ImportBoardInput) (*ImportBoardOutput, error) {
		actorID, err := actorFromContext(ctx)
		if err != nil {
			return nil, err
		}

		state, err := boards.ImportState(ctx, input.BoardID, actorID, input.Body, "")
		if err != nil {
			return nil, mapAuthorizeError(err, "board not found")
		}

		return &ImportBoardOutput{Body: state}, nil
	})
}

// mapAuthorizeError converts domain sentinel errors into HTTP errors.
func mapAuthorizeError(err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return huma.Error404NotFound(notFoundMsg)
	case errors.Is(err, domain.ErrUnauthorized):
		return huma.Error403Forbidden("insufficient permissions")
	case errors.Is(err, domain.ErrUnauthenticated):
		return huma.Error401Unauthorized("authentication required")
	case errors.Is(err, domain.ErrValidation):
		return huma.Error422UnprocessableEntity("invalid fields")
	default:
		return huma.Error500InternalServerError("internal error", err)
	}
}
