package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/inkboard/inkboard/internal/domain"
)

type ListHistoryInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	Limit   int       `query:"limit" minimum:"0" maximum:"1000" doc:"Max records to return (default 100)"`
}

type ListHistoryOutput struct {
	Body []*domain.HistoryRecord
}

type UndoInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
}

type UndoOutput struct {
	Body struct {
		// Element is the state after reversal; null when the undo deleted
		// the element.
		Element *domain.Element `json:"element"`
	}
}

// RegisterHistoryRoutes wires the request/response surface of the
// history engine. Undo is deliberately not a room broadcast message: the
// actor gets the result on this channel, the room gets the resulting
// mutation event through the bus.
func RegisterHistoryRoutes(api huma.API, boards BoardService) {
	huma.Register(api, huma.Operation{
		OperationID: "list-history",
		Method:      http.MethodGet,
		Path:        "/boards/{boardID}/history",
		Summary:     "List a board's mutation history, newest first",
		Tags:        []string{"History"},
	}, func(ctx context.Context, input *ListHistoryInput) (*ListHistoryOutput, error) {
		actorID, err := actorFromContext(ctx)
		if err != nil {
			return nil, err
		}

		recs, err := boards.ListHistory(ctx, input.BoardID, actorID, input.Limit)
		if err != nil {
			return nil, mapAuthorizeError(err, "board not found")
		}

		if recs == nil {
			recs = []*domain.HistoryRecord{}
		}
		return &ListHistoryOutput{Body: recs}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "undo",
		Method:      http.MethodPost,
		Path:        "/boards/{boardID}/undo",
		Summary:     "Undo the actor's most recent change on the board",
		Tags:        []string{"History"},
	}, func(ctx context.Context, input *UndoInput) (*UndoOutput, error) {
		actorID, err := actorFromContext(ctx)
		if err != nil {
			return nil, err
		}

		e, err := boards.Undo(ctx, input.BoardID, actorID, "")
		if err != nil {
			if errors.Is(err, domain.ErrNothingToUndo) {
				return nil, huma.Error404NotFound("nothing to undo")
			}
			return nil, mapAuthorizeError(err, "board not found")
		}

		out := &UndoOutput{}
		out.Body.Element = e
		return out, nil
	})
}
