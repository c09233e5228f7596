package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/inkboard/inkboard/internal/access"
	"github.com/inkboard/inkboard/internal/domain"
)

type ListPermissionsInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
}

type ListPermissionsOutput struct {
	Body []*domain.BoardPermission
}

type GrantPermissionInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	UserID  uuid.UUID `path:"userID" doc:"User ID"`
	Body    struct {
		PermissionType domain.PermissionType `json:"permission_type" enum:"view,edit,admin" doc:"Capability level"`
	}
}

type GrantPermissionOutput struct {
	Body *domain.BoardPermission
}

type RevokePermissionInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	UserID  uuid.UUID `path:"userID" doc:"User ID"`
}

// RegisterPermissionRoutes wires board sharing. Managing another user's
// permission record requires the admin class on the board.
func RegisterPermissionRoutes(api huma.API, store DataStore, boards BoardService) {
	huma.Register(api, huma.Operation{
		OperationID: "list-permissions",
		Method:      http.MethodGet,
		Path:        "/boards/{boardID}/permissions",
		Summary:     "List a board's permission records",
		Tags:        []string{"Permissions"},
	}, func(ctx context.Context, input *ListPermissionsInput) (*ListPermissionsOutput, error) {
		actorID, err := actorFromContext(ctx)
		if err != nil {
			return nil, err
		}

		if _, err := boards.Authorize(ctx, input.BoardID, actorID, access.ClassAdmin); err != nil {
			return nil, mapAuthorizeError(err, "board not found")
		}

		perms, err := store.Permissions().ListByBoard(ctx, input.BoardID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list permissions", err)
		}

		if perms == nil {
			perms = []*domain.BoardPermission{}
		}
		return &ListPermissionsOutput{Body: perms}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "grant-permission",
		Method:      http.MethodPut,
		Path:        "/boards/{boardID}/permissions/{userID}",
		Summary:     "Grant or change a user's permission on a board",
		Tags:        []string{"Permissions"},
	}, func(ctx context.Context, input *GrantPermissionInput) (*GrantPermissionOutput, error) {
		actorID, err := actorFromContext(ctx)
		if err != nil {
			return nil, err
		}

		b, err := boards.Authorize(ctx, input.BoardID, actorID, access.ClassAdmin)
		if err != nil {
			return nil, mapAuthorizeError(err, "board not found")
		}

		if !input.Body.PermissionType.Valid() {
			return nil, huma.Error422UnprocessableEntity("unknown permission type")
		}

		// The owner holds implicit full rights; no record is kept for them.
		if input.UserID == b.OwnerID {
			return nil, huma.Error422UnprocessableEntity("board owner needs no permission record")
		}

		if _, err := store.Users().GetByID(ctx, input.UserID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("user not found")
			}
			return nil, huma.Error500InternalServerError("failed to look up user", err)
		}

		p := &domain.BoardPermission{
			ID:             uuid.New(),
			BoardID:        input.BoardID,
			UserID:         input.UserID,
			PermissionType: input.Body.PermissionType,
			CreatedAt:      time.Now(),
		}

		if err := store.Permissions().Upsert(ctx, p); err != nil {
			return nil, huma.Error500InternalServerError("failed to store permission", err)
		}

		return &GrantPermissionOutput{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "revoke-permission",
		Method:        http.MethodDelete,
		Path:          "/boards/{boardID}/permissions/{userID}",
		Summary:       "Revoke a user's permission on a board",
		Tags:          []string{"Permissions"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *RevokePermissionInput) (*struct{}, error) {
		actorID, err := actorFromContext(ctx)
		if err != nil {
			return nil, err
		}

		if _, err := boards.Authorize(ctx, input.BoardID, actorID, access.ClassAdmin); err != nil {
			return nil, mapAuthorizeError(err, "board not found")
		}

		if err := store.Permissions().Delete(ctx, input.BoardID, input.UserID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("permission record not found")
			}
			return nil, huma.Error500InternalServerError("failed to revoke permission", err)
		}

		return nil, nil
	})
}
