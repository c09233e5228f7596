package ws

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/inkboard/inkboard/internal/board"
	"github.com/inkboard/inkboard/internal/domain"
)

// clientMessage is the closed set of inbound actions. Decoding produces
// one concrete variant per action so the hub dispatches with a type
// switch instead of inspecting raw JSON twice.
type clientMessage interface {
	isClientMessage()
}

type createElementMessage struct {
	Params board.CreateElementParams
}

type updateElementMessage struct {
	ElementID uuid.UUID
	Patch     domain.ElementPatch
}

type deleteElementMessage struct {
	ElementID uuid.UUID
}

func (createElementMessage) isClientMessage() {}
func (updateElementMessage) isClientMessage() {}
func (deleteElementMessage) isClientMessage() {}

// decodeClientMessage parses one inbound frame. Every failure is a
// domain.ErrValidation; a malformed message is rejected per-message and
// never terminates the connection.
func decodeClientMessage(data []byte) (clientMessage, error) {
	var frame struct {
		Action    string          `json:"action"`
		Element   json.RawMessage `json:"element"`
		ElementID *uuid.UUID      `json:"element_id"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("ws.decodeClientMessage: %v: %w", err, domain.ErrValidation)
	}

	switch frame.Action {
	case "create_element":
		if len(frame.Element) == 0 {
			return nil, fmt.Errorf("ws.decodeClientMessage: create_element requires element: %w", domain.ErrValidation)
		}
		var msg createElementMessage
		if err := json.Unmarshal(frame.Element, &msg.Params); err != nil {
			return nil, fmt.Errorf("ws.decodeClientMessage: element: %v: %w", err, domain.ErrValidation)
		}
		return msg, nil

	case "update_element":
		if len(frame.Element) == 0 {
			return nil, fmt.Errorf("ws.decodeClientMessage: update_element requires element: %w", domain.ErrValidation)
		}
		var body struct {
			ID *uuid.UUID `json:"id"`
			domain.ElementPatch
		}
		if err := json.Unmarshal(frame.Element, &body); err != nil {
			return nil, fmt.Errorf("ws.decodeClientMessage: element: %v: %w", err, domain.ErrValidation)
		}
		if body.ID == nil {
			return nil, fmt.Errorf("ws.decodeClientMessage: update_element requires element.id: %w", domain.ErrValidation)
		}
		return updateElementMessage{ElementID: *body.ID, Patch: body.ElementPatch}, nil

	case "delete_element":
		if frame.ElementID == nil {
			return nil, fmt.Errorf("ws.decodeClientMessage: delete_element requires element_id: %w", domain.ErrValidation)
		}
		return deleteElementMessage{ElementID: *frame.ElementID}, nil

	default:
		return nil, fmt.Errorf("ws.decodeClientMessage: unknown action %q: %w", frame.Action, domain.ErrValidation)
	}
}

// errorFrame is sent back on the origin socket only; room broadcast is
// never used to report errors to the actor that caused them.
type errorFrame struct {
	Action  string `json:"action"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func newErrorFrame(kind, message string) []byte {
	payload, err := json.Marshal(errorFrame{Action: "error", Kind: kind, Message: message})
	if err != nil {
		return []byte(`{"action":"error","kind":"internal","message":"internal error"}`)
	}
	return payload
}
