// Package app wires configuration, storage, the service and both servers.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"taskapi/internal/auth"
	"taskapi/internal/config"
	"taskapi/internal/db"
	grpcserver "taskapi/internal/grpc"
	"taskapi/internal/logging"
	"taskapi/internal/rest"
	"taskapi/internal/service"
	"taskapi/repository"
)

// App holds the process-wide dependencies.
type App struct {
	Config  *config.Config
	Store   *repository.Store
	Authn   *auth.Authenticator
	Service *service.Service
	Log     logging.Logger
}

// OpenStore selects the backend named by cfg.Store.Backend.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (*repository.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return repository.NewMemoryStore(), nil
	case config.BackendSQLite:
		d, err := db.Open(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return repository.NewSQLStore(d, repository.SQLite), nil
	case config.BackendPostgres:
		d, err := db.OpenPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return repository.NewSQLStore(d, repository.Postgres), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func New(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	store, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	authn := auth.NewAuthenticator(auth.NewTokenCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), auth.NewRevocations())
	svc := service.New(store, auth.NewBcryptHasher(cfg.Auth.BcryptCost), authn, log)
	return &App{Config: cfg, Store: store, Authn: authn, Service: svc, Log: log}, nil
}

// Running is a started App.
type Running struct {
	HTTPAddr net.Addr
	GRPCAddr net.Addr

	app      *App
	stopHTTP func(context.Context) error
	stopGRPC func(context.Context) error
}

// Start serves REST and gRPC on the configured addresses.
func (a *App) Start() (*Running, error) {
	stopHTTP, httpAddr, err := rest.StartHTTP(a.Config, rest.NewRouter(a.Service, a.Authn, a.Log), a.Log)
	if err != nil {
		return nil, fmt.Errorf("start http: %w", err)
	}
	stopGRPC, grpcAddr, err := grpcserver.StartGRPC(a.Config, a.Service, a.Authn, a.Log)
	if err != nil {
		_ = stopHTTP(context.Background())
		return nil, fmt.Errorf("start grpc: %w", err)
	}
	a.Log.Info(context.Background(), "listening", "http", httpAddr.String(), "grpc", grpcAddr.String())
	return &Running{HTTPAddr: httpAddr, GRPCAddr: grpcAddr, app: a, stopHTTP: stopHTTP, stopGRPC: stopGRPC}, nil
}

// Shutdown stops both servers, then closes the store.
func (r *Running) Shutdown(ctx context.Context) error {
	return errors.Join(r.stopHTTP(ctx), r.stopGRPC(ctx), r.app.Store.Close())
}

// BaseURL is the REST root, e.g. http://127.0.0.1:5001.
func (r *Running) BaseURL() string {
	return "http://" + r.HTTPAddr.String()
}

// NewStack starts a throwaway in-memory instance on loopback ports.
func NewStack(ctx context.Context, log logging.Logger) (*Running, error) {
	cfg := &config.Config{
		Store: config.StoreConfig{Backend: config.BackendMemory},
		HTTP:  config.HTTPConfig{Address: "127.0.0.1:0"},
		GRPC:  config.GRPCConfig{Address: "127.0.0.1:0"},
		Auth: config.AuthConfig{
			JWTSecret:  uuid.NewString(),
			TokenTTL:   config.DefaultTokenTTL,
			BcryptCost: bcrypt.MinCost,
		},
	}
	a, err := New(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return a.Start()
}
