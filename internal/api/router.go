package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/survivordraft/internal/api/apierr"
	"github.com/mcoot/survivordraft/internal/api/handler"
	"github.com/mcoot/survivordraft/internal/api/response"
	"github.com/mcoot/survivordraft/internal/middleware"
	"github.com/mcoot/survivordraft/internal/services/lobby"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger *slog.Logger
	Rooms  lobby.ControllerInterface

	// Gateway serves live connections on /ws (optional)
	Gateway http.Handler

	// CORSOrigins lists browser origins allowed to call the API
	CORSOrigins []string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	roomHandler := handler.NewRoomHandler(cfg.Rooms)

	recoveryMiddleware := middleware.Recovery(cfg.Logger, apiPanicHandler)
	loggingMiddleware := middleware.Logging(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	api.HandleFunc("/scenarios", roomHandler.ListScenarios).Methods(http.MethodGet)
	api.HandleFunc("/rooms", roomHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{code}", roomHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}/join", roomHandler.Join).Methods(http.MethodPost)

	// Live connections log their own lifecycle
	if cfg.Gateway != nil {
		r.Handle("/ws", middleware.Recovery(cfg.Logger, wsPanicHandler)(cfg.Gateway)).Methods(http.MethodGet)
	}

	// CORS wraps the whole router so preflights reach it before method matching
	return middleware.CORS(cfg.CORSOrigins)(r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}

// The connection may already be upgraded, so nothing can be written
func wsPanicHandler(http.ResponseWriter, *http.Request, any) {}
