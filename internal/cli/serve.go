package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"taskapi/internal/app"
	"taskapi/internal/config"
	"taskapi/internal/logging"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Dev             bool
	HTTPAddr        string
	GRPCAddr        string
	Store           string
	ShutdownTimeout time.Duration
}

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST and gRPC APIs",
		Long: `Serve the REST and gRPC APIs over one shared store.

Configuration comes from the environment (see .env when ENV=dev);
flags override it. JWT_SECRET is required unless --dev is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Dev, "dev", false, "use development defaults (insecure JWT secret)")
	cmd.Flags().StringVar(&opts.HTTPAddr, "http-addr", "", "REST listen address (overrides HTTP_ADDRESS)")
	cmd.Flags().StringVar(&opts.GRPCAddr, "grpc-addr", "", "gRPC listen address (overrides GRPC_ADDRESS)")
	cmd.Flags().StringVar(&opts.Store, "store", "", "store backend: memory|sqlite|postgres (overrides STORE_BACKEND)")
	cmd.Flags().DurationVar(&opts.ShutdownTimeout, "shutdown-timeout", 5*time.Second, "graceful shutdown deadline")

	return cmd
}

func loadServeConfig(opts *ServeOptions) (*config.Config, error) {
	load := config.Load
	if opts.Dev {
		load = config.LoadWithDefaults
	}
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if opts.HTTPAddr != "" {
		cfg.HTTP.Address = opts.HTTPAddr
	}
	if opts.GRPCAddr != "" {
		cfg.GRPC.Address = opts.GRPCAddr
	}
	if opts.Store != "" {
		cfg.Store.Backend = opts.Store
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServe(ctx context.Context, opts *ServeOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadServeConfig(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	log.Info(ctx, "configuration loaded", "config", cfg.String())

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return WrapExitError(ExitCommandError, "open store", err)
	}
	running, err := a.Start()
	if err != nil {
		_ = a.Store.Close()
		return WrapExitError(ExitCommandError, "start servers", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	log.Info(context.Background(), "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
	defer cancel()
	if err := running.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "shutdown error", "error", err)
		return WrapExitError(ExitFailure, "shutdown", err)
	}
	return nil
}
