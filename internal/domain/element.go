package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ElementType string

const (
	ElementTypeText   ElementType = "text"
	ElementTypeImage  ElementType = "image"
	ElementTypeShape  ElementType = "shape"
	ElementTypeSticky ElementType = "sticky"
	ElementTypeLine   ElementType = "line"
	ElementTypePath   ElementType = "path"
)

// Valid reports whether t is one of the known element types.
func (t ElementType) Valid() bool {
	switch t {
	case ElementTypeText, ElementTypeImage, ElementTypeShape,
		ElementTypeSticky, ElementTypeLine, ElementTypePath:
		return true
	default:
		return false
	}
}

// Element is a positioned item on a board. An element belongs to exactly
// one board for its entire life.
type Element struct {
	ID          uuid.UUID      `json:"id"`
	BoardID     uuid.UUID      `json:"board_id"`
	ElementType ElementType    `json:"element_type"`
	Content     string         `json:"content"`
	Path        string         `json:"path"` // SVG path for freehand drawings
	PositionX   float64        `json:"position_x"`
	PositionY   float64        `json:"position_y"`
	Width       float64        `json:"width"`
	Height      float64        `json:"height"`
	Rotation    float64        `json:"rotation"`
	ZIndex      int            `json:"z_index"`
	Properties  map[string]any `json:"properties"`
	CreatedBy   *uuid.UUID     `json:"created_by"` // nil if the creator was removed
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Snapshot captures the element's mutable attributes. History records
// store a Snapshot of the state immediately before the action.
func (e *Element) Snapshot() ElementSnapshot {
	props := make(map[string]any, len(e.Properties))
	for k, v := range e.Properties {
		props[k] = v
	}
	return ElementSnapshot{
		ElementType: e.ElementType,
		Content:     e.Content,
		Path:        e.Path,
		PositionX:   e.PositionX,
		PositionY:   e.PositionY,
		Width:       e.Width,
		Height:      e.Height,
		Rotation:    e.Rotation,
		ZIndex:      e.ZIndex,
		Properties:  props,
	}
}

// ElementSnapshot holds every mutable element attribute. Identity and
// audit fields (id, board, created_by, timestamps) are deliberately absent:
// undo never reverts them.
type ElementSnapshot struct {
	ElementType ElementType    `json:"element_type"`
	Content     string         `json:"content"`
	Path        string         `json:"path"`
	PositionX   float64        `json:"position_x"`
	PositionY   float64        `json:"position_y"`
	Width       float64        `json:"width"`
	Height      float64        `json:"height"`
	Rotation    float64        `json:"rotation"`
	ZIndex      int            `json:"z_index"`
	Properties  map[string]any `json:"properties"`
}

// ElementPatch is a partial update. Nil fields are left untouched, which
// gives field-level last-write-wins under concurrent editing.
type ElementPatch struct {
	ElementType *ElementType   `json:"element_type,omitempty"`
	Content     *string        `json:"content,omitempty"`
	Path        *string        `json:"path,omitempty"`
	PositionX   *float64       `json:"position_x,omitempty"`
	PositionY   *float64       `json:"position_y,omitempty"`
	Width       *float64       `json:"width,omitempty"`
	Height      *float64       `json:"height,omitempty"`
	Rotation    *float64       `json:"rotation,omitempty"`
	ZIndex      *int           `json:"z_index,omitempty"`
	Properties  map[string]any `json:"properties,omitempty"`
}

// Apply overwrites e's attributes with the patch fields that are set.
func (p ElementPatch) Apply(e *Element) {
	if p.ElementType != nil {
		e.ElementType = *p.ElementType
	}
	if p.Content != nil {
		e.Content = *p.Content
	}
	if p.Path != nil {
		e.Path = *p.Path
	}
	if p.PositionX != nil {
		e.PositionX = *p.PositionX
	}
	if p.PositionY != nil {
		e.PositionY = *p.PositionY
	}
	if p.Width != nil {
		e.Width = *p.Width
	}
	if p.Height != nil {
		e.Height = *p.Height
	}
	if p.Rotation != nil {
		e.Rotation = *p.Rotation
	}
	if p.ZIndex != nil {
		e.ZIndex = *p.ZIndex
	}
	if p.Properties != nil {
		e.Properties = p.Properties
	}
}

type ElementRepository interface {
	Create(ctx context.Context, e *Element) error
	// GetByID resolves an element scoped to a board; an element that exists
	// on a different board is ErrNotFound.
	GetByID(ctx context.Context, boardID, id uuid.UUID) (*Element, error)
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*Element, error)
	Update(ctx context.Context, e *Element) error
	Delete(ctx context.Context, boardID, id uuid.UUID) error
}
