// Package board implements the element mutation pipeline and the
// history/undo engine. Every mutation is permission-gated, appends an
// immutable history record, and is broadcast to the board's room after it
// has been persisted. Concurrent writers are resolved last-write-wins at
// the store; the pipeline adds no locking or merge strategy on top.
package board

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/inkboard/inkboard/internal/access"
	"github.com/inkboard/inkboard/internal/domain"
	"github.com/inkboard/inkboard/internal/realtime"
)

// Broadcaster fans a committed mutation out to the board's room.
// *realtime.Bus satisfies this interface.
type Broadcaster interface {
	Publish(ctx context.Context, boardID uuid.UUID, ev realtime.Event, excludeSession string)
}

// DefaultHistoryLimit bounds history listings when the caller does not
// supply a limit.
const DefaultHistoryLimit = 100

// Element geometry defaults applied on create when the client omits them.
const (
	defaultSize = 100
)

type Service struct {
	checker  *access.Checker
	boards   domain.BoardRepository
	elements domain.ElementRepository
	history  domain.HistoryRepository
	bus      Broadcaster
}

func NewService(checker *access.Checker, boards domain.BoardRepository, elements domain.ElementRepository, history domain.HistoryRepository, bus Broadcaster) *Service {
	return &Service{
		checker:  checker,
		boards:   boards,
		elements: elements,
		history:  history,
		bus:      bus,
	}
}

// Authorize checks the actor's capability class on a board and returns the
// board. Used by the transport layer before admitting a connection.
func (s *Service) Authorize(ctx context.Context, boardID, actorID uuid.UUID, class access.Class) (*domain.Board, error) {
	return s.checker.Check(ctx, boardID, actorID, class)
}

// CreateElementParams carries the fields of a new element. Nil optional
// fields fall back to defaults: zero position/rotation/z_index, 100x100
// size, empty content/path/properties.
type CreateElementParams struct {
	ElementType domain.ElementType `json:"element_type"`
	Content     *string            `json:"content,omitempty"`
	Path        *string            `json:"path,omitempty"`
	PositionX   *float64           `json:"position_x,omitempty"`
	PositionY   *float64           `json:"position_y,omitempty"`
	Width       *float64           `json:"width,omitempty"`
	Height      *float64           `json:"height,omitempty"`
	Rotation    *float64           `json:"rotation,omitempty"`
	ZIndex      *int               `json:"z_index,omitempty"`
	Properties  map[string]any     `json:"properties,omitempty"`
}

// CreateElement persists a new element on the board and appends a create
// history record. Requires write access.
func (s *Service) CreateElement(ctx context.Context, boardID, actorID uuid.UUID, params CreateElementParams, originSession string) (*domain.Element, error) {
	if _, err := s.checker.Check(ctx, boardID, actorID, access.ClassWrite); err != nil {
		return nil, fmt.Errorf("board.CreateElement: %w", err)
	}

	e, err := s.createElement(ctx, boardID, actorID, params, originSession)
	if err != nil {
		return nil, fmt.Errorf("board.CreateElement: %w", err)
	}
	return e, nil
}

// createElement runs the create pipeline without an access check; the
// caller has already authorized the actor.
func (s *Service) createElement(ctx context.Context, boardID, actorID uuid.UUID, params CreateElementParams, originSession string) (*domain.Element, error) {
	if !params.ElementType.Valid() {
		return nil, fmt.Errorf("element_type %q: %w", params.ElementType, domain.ErrValidation)
	}

	now := time.Now()
	actor := actorID
	e := &domain.Element{
		ID:          uuid.New(),
		BoardID:     boardID,
		ElementType: params.ElementType,
		Width:       defaultSize,
		Height:      defaultSize,
		Properties:  map[string]any{},
		CreatedBy:   &actor,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if params.Content != nil {
		e.Content = *params.Content
	}
	if params.Path != nil {
		e.Path = *params.Path
	}
	if params.PositionX != nil {
		e.PositionX = *params.PositionX
	}
	if params.PositionY != nil {
		e.PositionY = *params.PositionY
	}
	if params.Width != nil {
		e.Width = *params.Width
	}
	if params.Height != nil {
		e.Height = *params.Height
	}
	if params.Rotation != nil {
		e.Rotation = *params.Rotation
	}
	if params.ZIndex != nil {
		e.ZIndex = *params.ZIndex
	}
	if params.Properties != nil {
		e.Properties = params.Properties
	}

	if err := s.elements.Create(ctx, e); err != nil {
		return nil, err
	}

	if err := s.appendHistory(ctx, e, domain.HistoryActionCreate, actorID, now); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, boardID, realtime.Event{
		Action:  realtime.ActionCreateElement,
		Element: e,
		UserID:  actorID,
	}, originSession)

	return e, nil
}

// UpdateElement applies a partial patch to an element. The pre-mutation
// snapshot is appended to history before the patch is persisted; fields
// absent from the patch are left untouched. Requires write access.
func (s *Service) UpdateElement(ctx context.Context, boardID, actorID, elementID uuid.UUID, patch domain.ElementPatch, originSession string) (*domain.Element, error) {
	if _, err := s.checker.Check(ctx, boardID, actorID, access.ClassWrite); err != nil {
		return nil, fmt.Errorf("board.UpdateElement: %w", err)
	}

	if patch.ElementType != nil && !patch.ElementType.Valid() {
		return nil, fmt.Errorf("board.UpdateElement: element_type %q: %w", *patch.ElementType, domain.ErrValidation)
	}

	e, err := s.elements.GetByID(ctx, boardID, elementID)
	if err != nil {
		return nil, fmt.Errorf("board.UpdateElement: %w", err)
	}

	e, err = s.updateElement(ctx, actorID, e, patch, originSession)
	if err != nil {
		return nil, fmt.Errorf("board.UpdateElement: %w", err)
	}
	return e, nil
}

// updateElement runs the update pipeline on an already-loaded element
// without an access check.
func (s *Service) updateElement(ctx context.Context, actorID uuid.UUID, e *domain.Element, patch domain.ElementPatch, originSession string) (*domain.Element, error) {
	now := time.Now()
	if err := s.appendHistory(ctx, e, domain.HistoryActionUpdate, actorID, now); err != nil {
		return nil, err
	}

	patch.Apply(e)
	e.UpdatedAt = now

	if err := s.elements.Update(ctx, e); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, e.BoardID, realtime.Event{
		Action:  realtime.ActionUpdateElement,
		Element: e,
		UserID:  actorID,
	}, originSession)

	return e, nil
}

// DeleteElement removes an element after appending a delete history record
// holding the full pre-deletion snapshot. Requires write access. A missing
// element is ErrNotFound with no side effects.
func (s *Service) DeleteElement(ctx context.Context, boardID, actorID, elementID uuid.UUID, originSession string) error {
	if _, err := s.checker.Check(ctx, boardID, actorID, access.ClassWrite); err != nil {
		return fmt.Errorf("board.DeleteElement: %w", err)
	}

	e, err := s.elements.GetByID(ctx, boardID, elementID)
	if err != nil {
		return fmt.Errorf("board.DeleteElement: %w", err)
	}

	if err := s.deleteElement(ctx, actorID, e, originSession); err != nil {
		return fmt.Errorf("board.DeleteElement: %w", err)
	}
	return nil
}

// deleteElement runs the delete pipeline on an already-loaded element
// without an access check.
func (s *Service) deleteElement(ctx context.Context, actorID uuid.UUID, e *domain.Element, originSession string) error {
	if err := s.appendHistory(ctx, e, domain.HistoryActionDelete, actorID, time.Now()); err != nil {
		return err
	}

	if err := s.elements.Delete(ctx, e.BoardID, e.ID); err != nil {
		return err
	}

	id := e.ID
	s.bus.Publish(ctx, e.BoardID, realtime.Event{
		Action:    realtime.ActionDeleteElement,
		ElementID: &id,
		UserID:    actorID,
	}, originSession)

	return nil
}

// Undo reverses the actor's most recent history record on the board and
// consumes it. The reversal itself is not historized, so undo is
// single-step and non-repeating. Returns the resulting element state, or
// nil when the undo was a deletion.
func (s *Service) Undo(ctx context.Context, boardID, actorID uuid.UUID, originSession string) (*domain.Element, error) {
	if _, err := s.checker.Check(ctx, boardID, actorID, access.ClassWrite); err != nil {
		return nil, fmt.Errorf("board.Undo: %w", err)
	}

	rec, err := s.history.LatestByActor(ctx, boardID, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("board.Undo: %w", domain.ErrNothingToUndo)
		}
		return nil, fmt.Errorf("board.Undo: %w", err)
	}

	var result *domain.Element

	switch rec.Action {
	case domain.HistoryActionCreate:
		result, err = s.undoCreate(ctx, boardID, actorID, rec, originSession)
	case domain.HistoryActionUpdate:
		result, err = s.undoUpdate(ctx, boardID, actorID, rec, originSession)
	case domain.HistoryActionDelete:
		result, err = s.undoDelete(ctx, boardID, actorID, rec, originSession)
	default:
		err = fmt.Errorf("unknown action %q: %w", rec.Action, domain.ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("board.Undo: %w", err)
	}

	// Consume the record: a single step cannot be undone twice.
	if err := s.history.Delete(ctx, rec.ID); err != nil {
		return nil, fmt.Errorf("board.Undo: consume record: %w", err)
	}

	return result, nil
}

// undoCreate deletes the element the record created. An element that is
// already gone is ignored; the record is still consumed.
func (s *Service) undoCreate(ctx context.Context, boardID, actorID uuid.UUID, rec *domain.HistoryRecord, originSession string) (*domain.Element, error) {
	if err := s.elements.Delete(ctx, boardID, rec.ElementID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	id := rec.ElementID
	s.bus.Publish(ctx, boardID, realtime.Event{
		Action:    realtime.ActionDeleteElement,
		ElementID: &id,
		UserID:    actorID,
	}, originSession)

	return nil, nil
}

// undoUpdate restores every snapshotted attribute onto the element.
// Identity and audit fields are never reverted.
func (s *Service) undoUpdate(ctx context.Context, boardID, actorID uuid.UUID, rec *domain.HistoryRecord, originSession string) (*domain.Element, error) {
	e, err := s.elements.GetByID(ctx, boardID, rec.ElementID)
	if err != nil {
		return nil, err
	}

	restoreSnapshot(e, rec.Data)
	e.UpdatedAt = time.Now()

	if err := s.elements.Update(ctx, e); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, boardID, realtime.Event{
		Action:  realtime.ActionUpdateElement,
		Element: e,
		UserID:  actorID,
	}, originSession)

	return e, nil
}

// undoDelete recreates the element from its snapshot under a new
// identifier, credited to the undoing actor.
func (s *Service) undoDelete(ctx context.Context, boardID, actorID uuid.UUID, rec *domain.HistoryRecord, originSession string) (*domain.Element, error) {
	now := time.Now()
	actor := actorID
	e := &domain.Element{
		ID:        uuid.New(),
		BoardID:   boardID,
		CreatedBy: &actor,
		CreatedAt: now,
		UpdatedAt: now,
	}
	restoreSnapshot(e, rec.Data)

	if err := s.elements.Create(ctx, e); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, boardID, realtime.Event{
		Action:  realtime.ActionCreateElement,
		Element: e,
		UserID:  actorID,
	}, originSession)

	return e, nil
}

// ListHistory returns the board's history newest-first. Requires read
// access. limit <= 0 falls back to DefaultHistoryLimit.
func (s *Service) ListHistory(ctx context.Context, boardID, actorID uuid.UUID, limit int) ([]*domain.HistoryRecord, error) {
	if _, err := s.checker.Check(ctx, boardID, actorID, access.ClassRead); err != nil {
		return nil, fmt.Errorf("board.ListHistory: %w", err)
	}

	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	recs, err := s.history.ListByBoard(ctx, boardID, limit)
	if err != nil {
		return nil, fmt.Errorf("board.ListHistory: %w", err)
	}
	return recs, nil
}

// ListElements returns all elements of the board. Requires read access.
func (s *Service) ListElements(ctx context.Context, boardID, actorID uuid.UUID) ([]*domain.Element, error) {
	if _, err := s.checker.Check(ctx, boardID, actorID, access.ClassRead); err != nil {
		return nil, fmt.Errorf("board.ListElements: %w", err)
	}

	elems, err := s.elements.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("board.ListElements: %w", err)
	}
	return elems, nil
}

// GetElement resolves one element scoped to the board. Requires read access.
func (s *Service) GetElement(ctx context.Context, boardID, actorID, elementID uuid.UUID) (*domain.Element, error) {
	if _, err := s.checker.Check(ctx, boardID, actorID, access.ClassRead); err != nil {
		return nil, fmt.Errorf("board.GetElement: %w", err)
	}

	e, err := s.elements.GetByID(ctx, boardID, elementID)
	if err != nil {
		return nil, fmt.Errorf("board.GetElement: %w", err)
	}
	return e, nil
}

// BoardState is the full-board export: the board plus all of its elements.
type BoardState struct {
	ID          uuid.UUID         `json:"id"`
	Title       string            `json:"title"`
	Elements    []*domain.Element `json:"elements"`
	LastUpdated time.Time         `json:"last_updated"`
}

// ExportState serializes the whole board with its elements. Requires read
// access.
func (s *Service) ExportState(ctx context.Context, boardID, actorID uuid.UUID) (*BoardState, error) {
	b, err := s.checker.Check(ctx, boardID, actorID, access.ClassRead)
	if err != nil {
		return nil, fmt.Errorf("board.ExportState: %w", err)
	}

	elems, err := s.elements.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("board.ExportState: %w", err)
	}

	return &BoardState{
		ID:          b.ID,
		Title:       b.Title,
		Elements:    elems,
		LastUpdated: b.UpdatedAt,
	}, nil
}

// ImportStateParams mirrors the export shape. A nil Title leaves the
// title alone. A nil Elements slice leaves the board's elements alone;
// a non-nil slice is authoritative, so elements absent from it are
// deleted.
type ImportStateParams struct {
	Title    *string               `json:"title,omitempty"`
	Elements []ImportElementParams `json:"elements,omitempty"`
}

// ImportElementParams is one element entry of a bulk import. An entry
// whose ID matches an element on the board patches it; any other entry
// creates a new element and must carry an element_type.
type ImportElementParams struct {
	ID          *uuid.UUID          `json:"id,omitempty"`
	ElementType *domain.ElementType `json:"element_type,omitempty"`
	Content     *string             `json:"content,omitempty"`
	Path        *string             `json:"path,omitempty"`
	PositionX   *float64            `json:"position_x,omitempty"`
	PositionY   *float64            `json:"position_y,omitempty"`
	Width       *float64            `json:"width,omitempty"`
	Height      *float64            `json:"height,omitempty"`
	Rotation    *float64            `json:"rotation,omitempty"`
	ZIndex      *int                `json:"z_index,omitempty"`
	Properties  map[string]any      `json:"properties,omitempty"`
}

func (p ImportElementParams) patch() domain.ElementPatch {
	return domain.ElementPatch{
		ElementType: p.ElementType,
		Content:     p.Content,
		Path:        p.Path,
		PositionX:   p.PositionX,
		PositionY:   p.PositionY,
		Width:       p.Width,
		Height:      p.Height,
		Rotation:    p.Rotation,
		ZIndex:      p.ZIndex,
		Properties:  p.Properties,
	}
}

func (p ImportElementParams) createParams() CreateElementParams {
	cp := CreateElementParams{
		Content:    p.Content,
		Path:       p.Path,
		PositionX:  p.PositionX,
		PositionY:  p.PositionY,
		Width:      p.Width,
		Height:     p.Height,
		Rotation:   p.Rotation,
		ZIndex:     p.ZIndex,
		Properties: p.Properties,
	}
	if p.ElementType != nil {
		cp.ElementType = *p.ElementType
	}
	return cp
}

// ImportState applies a full board state in one call: patch the title,
// upsert the listed elements, delete the rest. Every element change runs
// through the same pipeline as a single mutation, so imports are
// historized and broadcast like any other edit. Requires write access.
// Returns the resulting state.
func (s *Service) ImportState(ctx context.Context, boardID, actorID uuid.UUID, params ImportStateParams, originSession string) (*BoardState, error) {
	if _, err := s.checker.Check(ctx, boardID, actorID, access.ClassWrite); err != nil {
		return nil, fmt.Errorf("board.ImportState: %w", err)
	}

	existing := map[uuid.UUID]*domain.Element{}
	if params.Elements != nil {
		elems, err := s.elements.ListByBoard(ctx, boardID)
		if err != nil {
			return nil, fmt.Errorf("board.ImportState: %w", err)
		}
		for _, e := range elems {
			existing[e.ID] = e
		}

		// Validate every entry before touching anything.
		for _, entry := range params.Elements {
			if entry.ElementType != nil && !entry.ElementType.Valid() {
				return nil, fmt.Errorf("board.ImportState: element_type %q: %w", *entry.ElementType, domain.ErrValidation)
			}
			if entry.ElementType == nil && (entry.ID == nil || existing[*entry.ID] == nil) {
				return nil, fmt.Errorf("board.ImportState: new element needs element_type: %w", domain.ErrValidation)
			}
		}
	}

	if params.Title != nil {
		if err := s.boards.UpdateTitle(ctx, boardID, *params.Title); err != nil {
			return nil, fmt.Errorf("board.ImportState: %w", err)
		}
	}

	if params.Elements != nil {
		kept := map[uuid.UUID]bool{}
		for _, entry := range params.Elements {
			if entry.ID != nil {
				if cur, ok := existing[*entry.ID]; ok {
					if _, err := s.updateElement(ctx, actorID, cur, entry.patch(), originSession); err != nil {
						return nil, fmt.Errorf("board.ImportState: %w", err)
					}
					kept[cur.ID] = true
					continue
				}
			}
			created, err := s.createElement(ctx, boardID, actorID, entry.createParams(), originSession)
			if err != nil {
				return nil, fmt.Errorf("board.ImportState: %w", err)
			}
			kept[created.ID] = true
		}

		for id, e := range existing {
			if kept[id] {
				continue
			}
			if err := s.deleteElement(ctx, actorID, e, originSession); err != nil {
				return nil, fmt.Errorf("board.ImportState: %w", err)
			}
		}
	}

	b, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("board.ImportState: %w", err)
	}
	elems, err := s.elements.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("board.ImportState: %w", err)
	}

	return &BoardState{
		ID:          b.ID,
		Title:       b.Title,
		Elements:    elems,
		LastUpdated: b.UpdatedAt,
	}, nil
}

func (s *Service) appendHistory(ctx context.Context, e *domain.Element, action domain.HistoryAction, actorID uuid.UUID, at time.Time) error {
	actor := actorID
	return s.history.Append(ctx, &domain.HistoryRecord{
		ID:          uuid.New(),
		BoardID:     e.BoardID,
		ElementID:   e.ID,
		Action:      action,
		Data:        e.Snapshot(),
		PerformedBy: &actor,
		CreatedAt:   at,
	})
}

func restoreSnapshot(e *domain.Element, snap domain.ElementSnapshot) {
	e.ElementType = snap.ElementType
	e.Content = snap.Content
	e.Path = snap.Path
	e.PositionX = snap.PositionX
	e.PositionY = snap.PositionY
	e.Width = snap.Width
	e.Height = snap.Height
	e.Rotation = snap.Rotation
	e.ZIndex = snap.ZIndex
	if snap.Properties != nil {
		e.Properties = snap.Properties
	} else {
		e.Properties = map[string]any{}
	}
}
