package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/inkboard/inkboard/internal/board"
	"github.com/inkboard/inkboard/internal/domain"
)

type ListElementsInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
}

type ListElementsOutput struct {
	Body []*domain.Element
}

type CreateElementInput struct {
	BoardID uuid.UUID                 `path:"boardID" doc:"Board ID"`
	Body    board.CreateElementParams `doc:"Element fields; omitted geometry falls back to defaults"`
}

type CreateElementOutput struct {
	Body *domain.Element
}

type GetElementInput struct {
	BoardID   uuid.UUID `path:"boardID" doc:"Board ID"`
	ElementID uuid.UUID `path:"elementID" doc:"Element ID"`
}

type GetElementOutput struct {
	Body *domain.Element
}

type UpdateElementInput struct {
	BoardID   uuid.UUID           `path:"boardID" doc:"Board ID"`
	ElementID uuid.UUID           `path:"elementID" doc:"Element ID"`
	Body      domain.ElementPatch `doc:"Partial patch; absent fields are left untouched"`
}

type UpdateElementOutput struct {
	Body *domain.Element
}

type DeleteElementInput struct {
	BoardID   uuid.UUID `path:"boardID" doc:"Board ID"`
	ElementID uuid.UUID `path:"elementID" doc:"Element ID"`
}

// RegisterElementRoutes wires the REST element surface. Mutations go
// through the same pipeline as websocket messages, so they are
// historized and broadcast to the board's room identically.
func RegisterElementRoutes(api huma.API, boards BoardService) {
	huma.Register(api, huma.Operation{
		OperationID: "list-elements",
		Method:      http.MethodGet,
		Path:        "/boards/{boardID}/elements",
		Summary:     "List all elements on a board",
		Tags:        []string{"Elements"},
	}, func(ctx context.Context, input *ListElementsInput) (*ListElementsOutput, error) {
		actorID, err := actorFromContext(ctx)
		if err != nil {
			return nil, err
		}

		elems, err := boards.ListElements(ctx, input.BoardID, actorID)
		if err != nil {
			return nil, mapAuthorizeError(err, "board not found")
		}

		if elems == nil {
			elems = []*domain.Element{}
		}
		return &ListElementsOutput{Body: elems}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-element",
		Method:      http.MethodPost,
		Path:        "/boards/{boardID}/elements",
		Summary:     "Create an element on a board",
		Tags:        []string{"Elements"},
	}, func(ctx context.Context, input *CreateElementInput) (*CreateElementOutput, error) {
		actorID, err := actorFromContext(ctx)
		if err != nil {
			return nil, err
		}

		e, err := boards.CreateElement(ctx, input.BoardID, actorID, input.Body, "")
		if err != nil {
			return nil, mapAuthorizeError(err, "board not found")
		}

		return &CreateElementOutput{Body: e}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-element",
		Method:      http.MethodGet,
		Path:        "/boards/{boardID}/elements/{elementID}",
		Summary:     "Get one element",
		Tags:        []string{"Elements"},
	}, func(ctx context.Context, input *GetElementInput) (*GetElementOutput, error) {
		actorID, err := actorFromContext(ctx)
		if err != nil {
			return nil, err
		}

		e, err := boards.GetElement(ctx, input.BoardID, actorID, input.ElementID)
		if err != nil {
			return nil, mapAuthorizeError(err, "element not found")
		}

		return &GetElementOutput{Body: e}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-element",
		Method:      http.MethodPatch,
		Path:        "/boards/{boardID}/elements/{elementID}",
		Summary:     "Patch an element",
		Tags:        []string{"Elements"},
	}, func(ctx context.Context, input *UpdateElementInput) (*UpdateElementOutput, error) {
		actorID, err := actorFromContext(ctx)
		if err != nil {
			return nil, err
		}

		e, err := boards.UpdateElement(ctx, input.BoardID, actorID, input.ElementID, input.Body, "")
		if err != nil {
			return nil, mapAuthorizeError(err, "element not found")
		}

		return &UpdateElementOutput{Body: e}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-element",
		Method:        http.MethodDelete,
		Path:          "/boards/{boardID}/elements/{elementID}",
		Summary:       "Delete an element",
		Tags:          []string{"Elements"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *DeleteElementInput) (*struct{}, error) {
		actorID, err := actorFromContext(ctx)
		if err != nil {
			return nil, err
		}

		if err := boards.DeleteElement(ctx, input.BoardID, actorID, input.ElementID, ""); err != nil {
			return nil, mapAuthorizeError(err, "element not found")
		}

		return nil, nil
	})
}
