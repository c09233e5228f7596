package v1_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/inkboard/inkboard/internal/access"
	"github.com/inkboard/inkboard/internal/board"
	"github.com/inkboard/inkboard/internal/domain"
	"github.com/inkboard/inkboard/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Context helpers: inject the authenticated user into context for DoCtx
// ---------------------------------------------------------------------------

func userCtx(userID uuid.UUID) context.Context {
	return context.WithValue(context.Background(), middleware.ContextKeyUserID, userID)
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	users       domain.UserRepository
	boards      domain.BoardRepository
	elements    domain.ElementRepository
	permissions domain.PermissionRepository
	history     domain.HistoryRepository
}

func (m *mockDataStore) Users() domain.UserRepository             { return m.users }
func (m *mockDataStore) Boards() domain.BoardRepository           { return m.boards }
func (m *mockDataStore) Elements() domain.ElementRepository       { return m.elements }
func (m *mockDataStore) Permissions() domain.PermissionRepository { return m.permissions }
func (m *mockDataStore) History() domain.HistoryRepository        { return m.history }

// ---------------------------------------------------------------------------
// Mock UserRepository
// ---------------------------------------------------------------------------

type mockUserRepo struct {
	createFunc     func(ctx context.Context, u *domain.User) error
	getByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	getByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	return m.createFunc(ctx, u)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.getByEmailFunc(ctx, email)
}

// ---------------------------------------------------------------------------
// Mock BoardRepository
// ---------------------------------------------------------------------------

type mockBoardRepo struct {
	createFunc      func(ctx context.Context, b *domain.Board) error
	getByIDFunc     func(ctx context.Context, id uuid.UUID) (*domain.Board, error)
	listOwnedFunc   func(ctx context.Context, ownerID uuid.UUID) ([]*domain.Board, error)
	listSharedFunc  func(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error)
	updateTitleFunc func(ctx context.Context, id uuid.UUID, title string) error
	deleteFunc      func(ctx context.Context, id uuid.UUID) error
}

func (m *mockBoardRepo) Create(ctx context.Context, b *domain.Board) error {
	return m.createFunc(ctx, b)
}

func (m *mockBoardRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockBoardRepo) ListOwned(ctx context.Context, ownerID uuid.UUID) ([]*domain.Board, error) {
	return m.listOwnedFunc(ctx, ownerID)
}

func (m *mockBoardRepo) ListShared(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error) {
	return m.listSharedFunc(ctx, userID)
}

func (m *mockBoardRepo) UpdateTitle(ctx context.Context, id uuid.UUID, title string) error {
	return m.updateTitleFunc(ctx, id, title)
}

func (m *mockBoardRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock ElementRepository
// ---------------------------------------------------------------------------

type mockElementRepo struct {
	createFunc      func(ctx context.Context, e *domain.Element) error
	getByIDFunc     func(ctx context.Context, boardID, id uuid.UUID) (*domain.Element, error)
	listByBoardFunc func(ctx context.Context, boardID uuid.UUID) ([]*domain.Element, error)
	updateFunc      func(ctx context.Context, e *domain.Element) error
	deleteFunc      func(ctx context.Context, boardID, id uuid.UUID) error
}

func (m *mockElementRepo) Create(ctx context.Context, e *domain.Element) error {
	return m.createFunc(ctx, e)
}

func (m *mockElementRepo) GetByID(ctx context.Context, boardID, id uuid.UUID) (*domain.Element, error) {
	return m.getByIDFunc(ctx, boardID, id)
}

func (m *mockElementRepo) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Element, error) {
	return m.listByBoardFunc(ctx, boardID)
}

func (m *mockElementRepo) Update(ctx context.Context, e *domain.Element) error {
	return m.updateFunc(ctx, e)
}

func (m *mockElementRepo) Delete(ctx context.Context, boardID, id uuid.UUID) error {
	return m.deleteFunc(ctx, boardID, id)
}

// ---------------------------------------------------------------------------
// Mock PermissionRepository
// ---------------------------------------------------------------------------

type mockPermissionRepo struct {
	getFunc         func(ctx context.Context, boardID, userID uuid.UUID) (*domain.BoardPermission, error)
	upsertFunc      func(ctx context.Context, p *domain.BoardPermission) error
	deleteFunc      func(ctx context.Context, boardID, userID uuid.UUID) error
	listByBoardFunc func(ctx context.Context, boardID uuid.UUID) ([]*domain.BoardPermission, error)
}

func (m *mockPermissionRepo) Get(ctx context.Context, boardID, userID uuid.UUID) (*domain.BoardPermission, error) {
	return m.getFunc(ctx, boardID, userID)
}

func (m *mockPermissionRepo) Upsert(ctx context.Context, p *domain.BoardPermission) error {
	return m.upsertFunc(ctx, p)
}

func (m *mockPermissionRepo) Delete(ctx context.Context, boardID, userID uuid.UUID) error {
	return m.deleteFunc(ctx, boardID, userID)
}

func (m *mockPermissionRepo) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.BoardPermission, error) {
	return m.listByBoardFunc(ctx, boardID)
}

// ---------------------------------------------------------------------------
// Mock HistoryRepository
// ---------------------------------------------------------------------------

type mockHistoryRepo struct {
	appendFunc        func(ctx context.Context, rec *domain.HistoryRecord) error
	listByBoardFunc   func(ctx context.Context, boardID uuid.UUID, limit int) ([]*domain.HistoryRecord, error)
	latestByActorFunc func(ctx context.Context, boardID, actorID uuid.UUID) (*domain.HistoryRecord, error)
	deleteFunc        func(ctx context.Context, id uuid.UUID) error
}

func (m *mockHistoryRepo) Append(ctx context.Context, rec *domain.HistoryRecord) error {
	return m.appendFunc(ctx, rec)
}

func (m *mockHistoryRepo) ListByBoard(ctx context.Context, boardID uuid.UUID, limit int) ([]*domain.HistoryRecord, error) {
	return m.listByBoardFunc(ctx, boardID, limit)
}

func (m *mockHistoryRepo) LatestByActor(ctx context.Context, boardID, actorID uuid.UUID) (*domain.HistoryRecord, error) {
	return m.latestByActorFunc(ctx, boardID, actorID)
}

func (m *mockHistoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	registerFunc     func(ctx context.Context, email, password, name string) (*domain.User, error)
	loginFunc        func(ctx context.Context, email, password string) (string, string, error)
	refreshTokenFunc func(ctx context.Context, refreshToken string) (string, error)
}

func (m *mockAuthService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	return m.registerFunc(ctx, email, password, name)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error) {
	return m.loginFunc(ctx, email, password)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	return m.refreshTokenFunc(ctx, refreshToken)
}

// ---------------------------------------------------------------------------
// Mock BoardService
// ---------------------------------------------------------------------------

type mockBoardService struct {
	authorizeFunc     func(ctx context.Context, boardID, actorID uuid.UUID, class access.Class) (*domain.Board, error)
	createElementFunc func(ctx context.Context, boardID, actorID uuid.UUID, params board.CreateElementParams, originSession string) (*domain.Element, error)
	updateElementFunc func(ctx context.Context, boardID, actorID, elementID uuid.UUID, patch domain.ElementPatch, originSession string) (*domain.Element, error)
	deleteElementFunc func(ctx context.Context, boardID, actorID, elementID uuid.UUID, originSession string) error
	undoFunc          func(ctx context.Context, boardID, actorID uuid.UUID, originSession string) (*domain.Element, error)
	listHistoryFunc   func(ctx context.Context, boardID, actorID uuid.UUID, limit int) ([]*domain.HistoryRecord, error)
	listElementsFunc  func(ctx context.Context, boardID, actorID uuid.UUID) ([]*domain.Element, error)
	getElementFunc    func(ctx context.Context, boardID, actorID, elementID uuid.UUID) (*domain.Element, error)
	exportStateFunc   func(ctx context.Context, boardID, actorID uuid.UUID) (*board.BoardState, error)
	importStateFunc   func(ctx context.Context, boardID, actorID uuid.UUID, params board.ImportStateParams, originSession string) (*board.BoardState, error)
}

func (m *mockBoardService) Authorize(ctx context.Context, boardID, actorID uuid.UUID, class access.Class) (*domain.Board, error) {
	return m.authorizeFunc(ctx, boardID, actorID, class)
}

func (m *mockBoardService) CreateElement(ctx context.Context, boardID, actorID uuid.UUID, params board.CreateElementParams, originSession string) (*domain.Element, error) {
	return m.createElementFunc(ctx, boardID, actorID, params, originSession)
}

func (m *mockBoardService) UpdateElement(ctx context.Context, boardID, actorID, elementID uuid.UUID, patch domain.ElementPatch, originSession string) (*domain.Element, error) {
	return m.updateElementFunc(ctx, boardID, actorID, elementID, patch, originSession)
}

func (m *mockBoardService) DeleteElement(ctx context.Context, boardID, actorID, elementID uuid.UUID, originSession string) error {
	return m.deleteElementFunc(ctx, boardID, actorID, elementID, originSession)
}

func (m *mockBoardService) Undo(ctx context.Context, boardID, actorID uuid.UUID, originSession string) (*domain.Element, error) {
	return m.undoFunc(ctx, boardID, actorID, originSession)
}

func (m *mockBoardService) ListHistory(ctx context.Context, boardID, actorID uuid.UUID, limit int) ([]*domain.HistoryRecord, error) {
	return m.listHistoryFunc(ctx, boardID, actorID, limit)
}

func (m *mockBoardService) ListElements(ctx context.Context, boardID, actorID uuid.UUID) ([]*domain.Element, error) {
	return m.listElementsFunc(ctx, boardID, actorID)
}

func (m *mockBoardService) GetElement(ctx context.Context, boardID, actorID, elementID uuid.UUID) (*domain.Element, error) {
	return m.getElementFunc(ctx, boardID, actorID, elementID)
}

func (m *mockBoardService) ExportState(ctx context.Context, boardID, actorID uuid.UUID) (*board.BoardState, error) {
	return m.exportStateFunc(ctx, boardID, actorID)
}

func (m *mockBoardService) ImportState(ctx context.Context, boardID, actorID uuid.UUID, params board.ImportStateParams, originSession string) (*board.BoardState, error) {
	return m.importStateFunc(ctx, boardID, actorID, params, originSession)
}
