// Package rest exposes the service over HTTP+JSON.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"taskapi/internal/auth"
	"taskapi/internal/config"
	"taskapi/internal/logging"
	"taskapi/internal/service"
)

// NewRouter builds the chi router with middleware and all routes mounted.
func NewRouter(svc *service.Service, authn *auth.Authenticator, log logging.Logger) *chi.Mux {
	log = log.With("transport", "rest")
	h := &handler{svc: svc, log: log}
	requireAuth := RequireAuth(authn)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		requestLogger(log),
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", healthz)

	router.Post("/users", h.createUser)
	router.Post("/sessions", h.login)
	// logout validates its own token; an absent one is a bad request
	router.Delete("/sessions", h.logout)

	router.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/users", h.listUsers)
		r.Get("/users/{id}", h.getUser)
		r.Put("/users/{id}", h.updateUser)
		r.Delete("/users/{id}", h.deleteUser)

		r.Post("/tasks", h.createTask)
		r.Get("/tasks", h.listTasks)
		r.Put("/tasks/{id}", h.updateTask)
		r.Patch("/tasks/{id}", h.updateTask)
		r.Delete("/tasks/{id}", h.deleteTask)
	})
	return router
}

// StartHTTP serves handler on cfg.HTTP.Address and returns a shutdown function
// together with the bound address.
func StartHTTP(cfg *config.Config, handler http.Handler, log logging.Logger) (func(context.Context) error, net.Addr, error) {
	if cfg == nil {
		panic("config is required")
	}

	addr := cfg.HTTP.Address
	if addr == "" {
		addr = ":5001"
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}

	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(context.Background(), "http serve", "error", err)
		}
	}()
	return srv.Shutdown, lis.Addr(), nil
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
