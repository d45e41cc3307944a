package router

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/cashstate/backend/internal/handlers"
	"github.com/cashstate/backend/internal/middleware"
)

func NewRouter(deps *handlers.Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.NewLoggerMiddleware(deps.Log).LoggerMiddleware)
	r.Use(middleware.NewMiddleware(deps.Firebase).FirebaseAuth)

	ush := handlers.NewUserHandlers(deps)
	sfh := handlers.NewSimplefinHandlers(deps)
	plh := handlers.NewPlaidHandlers(deps)

	r.Mount("/users", ush.UserRoutes())
	r.Mount("/simplefin", sfh.SimplefinRoutes())
	r.Mount("/plaid", plh.PlaidRoutes())
	return r
}
