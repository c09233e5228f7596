package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/inkboard/inkboard/internal/api/v1"
	"github.com/inkboard/inkboard/internal/api/ws"
	"github.com/inkboard/inkboard/internal/auth"
	"github.com/inkboard/inkboard/internal/board"
	"github.com/inkboard/inkboard/internal/store/postgres"
)

func registerAuthRoutes(api huma.API, authSvc *auth.Service) {
	v1.RegisterAuthRoutes(api, authSvc)
}

func registerAPIRoutes(api huma.API, store *postgres.Store, boards *board.Service) {
	v1.RegisterBoardRoutes(api, store, boards)
	v1.RegisterElementRoutes(api, boards)
	v1.RegisterPermissionRoutes(api, store, boards)
	v1.RegisterHistoryRoutes(api, boards)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/boards/{boardID}", hub.ServeBoard)
}
