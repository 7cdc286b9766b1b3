package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gopower/app"
	"gopower/domain/core"
	"gopower/domain/power"
	apperrors "gopower/internal/errors"
)

// App represents the HTTP API application
type App struct {
	router     *chi.Mux
	dispatcher *app.Dispatcher
}

// NewApp creates a new API application around a dispatcher
func NewApp(dispatcher *app.Dispatcher) *App {
	a := &App{
		router:     chi.NewRouter(),
		dispatcher: dispatcher,
	}
	a.setupMiddleware()
	a.setupRoutes()
	return a
}

// Router exposes the configured mux for the server entrypoint
func (a *App) Router() http.Handler {
	return a.router
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/api/tests", a.handleListTests)
	a.router.Get("/api/tests/{id}", a.handleGetTest)
	a.router.Post("/api/solve", a.handleSolve)
	a.router.Get("/healthz", a.handleHealth)
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListTests returns the full catalog for input-form construction
func (a *App) handleListTests(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]any{
		"tests": a.dispatcher.Registry().Specs(),
	})
}

// handleGetTest returns a single catalog entry
func (a *App) handleGetTest(w http.ResponseWriter, r *http.Request) {
	id := power.TestID(chi.URLParam(r, "id"))
	spec, err := a.dispatcher.Registry().Lookup(id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, spec)
}

// handleSolve runs one power/sample-size calculation
func (a *App) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req app.SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, apperrors.InvalidInput("request body is not valid JSON"))
		return
	}

	result, err := a.dispatcher.Solve(req)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, result)
}

// errorResponse is the wire shape for all failures
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps calculation errors onto HTTP statuses: bad inputs are
// 400, unknown tests 404, and numerical failures on valid inputs 422.
func (a *App) writeError(w http.ResponseWriter, err error) {
	appErr := apperrors.FromError(err)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrUnknownTest):
		status = http.StatusNotFound
	case core.IsInputError(err), core.IsDomainError(err), appErr.Code == apperrors.CodeInvalidInput:
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrConvergence), errors.Is(err, core.ErrNumericalInstability):
		status = http.StatusUnprocessableEntity
	}

	a.writeJSON(w, status, errorResponse{Error: errorBody{
		Code:    appErr.Code,
		Message: appErr.Message,
	}})
}

func (a *App) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
