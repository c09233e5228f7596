package realtime

import (
	"github.com/google/uuid"

	"github.com/inkboard/inkboard/internal/domain"
)

// Event actions broadcast to room members.
const (
	ActionCreateElement = "create_element"
	ActionUpdateElement = "update_element"
	ActionDeleteElement = "delete_element"
)

// Event is one board mutation as seen by other room members. Element is
// set for create/update, ElementID for delete. UserID identifies the
// acting user.
type Event struct {
	Action    string          `json:"action"`
	Element   *domain.Element `json:"element,omitempty"`
	ElementID *uuid.UUID      `json:"element_id,omitempty"`
	UserID    uuid.UUID       `json:"user_id"`
}
