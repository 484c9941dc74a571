package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"taskapi/internal/app"
	"taskapi/internal/harness"
	"taskapi/internal/logging"
)

// HarnessOptions holds flags for the harness run command.
type HarnessOptions struct {
	*RootOptions
	RESTURL  string
	GRPCAddr string
	Timeout  time.Duration
}

// NewHarnessCommand groups the equivalence harness subcommands.
func NewHarnessCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harness",
		Short: "Check that REST and gRPC answer alike",
	}
	cmd.AddCommand(newHarnessRunCommand(rootOpts))
	cmd.AddCommand(newHarnessListCommand(rootOpts))
	return cmd
}

func newHarnessRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HarnessOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [scenario.yaml...]",
		Short: "Run equivalence scenarios",
		Long: `Run equivalence scenarios against both transports.

Without scenario files the builtin set runs. Without --rest-url and
--grpc-addr two throwaway in-memory servers are started, one per transport.
When both targets are given they are assumed to share one store and
signup emails are namespaced per transport.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed or aborted
  2 - Command error (bad flags, unreadable scenario, startup failure)

Examples:
  taskapi harness run
  taskapi harness run ./scenarios/login.yaml --format json
  taskapi harness run --rest-url http://localhost:5001 --grpc-addr localhost:50051`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHarness(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.RESTURL, "rest-url", "", "REST base URL of a running server")
	cmd.Flags().StringVar(&opts.GRPCAddr, "grpc-addr", "", "gRPC address of a running server")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 5*time.Minute, "deadline for the whole run")

	return cmd
}

func newHarnessListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List builtin scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarios, err := harness.Builtin()
			if err != nil {
				return WrapExitError(ExitCommandError, "load builtin scenarios", err)
			}
			f := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if f.Format == "json" {
				out := make([]scenarioSummary, 0, len(scenarios))
				for _, s := range scenarios {
					out = append(out, scenarioSummary{Name: s.Name, Description: s.Description, Steps: len(s.Steps)})
				}
				return f.Success(out)
			}
			lines := make([]string, 0, len(scenarios))
			for _, s := range scenarios {
				lines = append(lines, fmt.Sprintf("%-20s %s", s.Name, s.Description))
			}
			return f.Success(lines)
		},
	}
}

type scenarioSummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Steps       int    `json:"steps"`
}

func loadScenarios(files []string) ([]*harness.Scenario, error) {
	if len(files) == 0 {
		return harness.Builtin()
	}
	out := make([]*harness.Scenario, 0, len(files))
	for _, file := range files {
		s, err := harness.LoadScenario(file)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func runHarness(ctx context.Context, opts *HarnessOptions, files []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if (opts.RESTURL == "") != (opts.GRPCAddr == "") {
		return NewExitError(ExitCommandError, "--rest-url and --grpc-addr must be given together")
	}
	scenarios, err := loadScenarios(files)
	if err != nil {
		return WrapExitError(ExitCommandError, "load scenarios", err)
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	var log logging.Logger = logging.Discard()
	if opts.Verbose {
		log = logging.New("debug", "text", f.errWriter())
	}

	restURL, grpcAddr := opts.RESTURL, opts.GRPCAddr
	shared := restURL != ""
	if !shared {
		stacks, err := startStacks(ctx, log)
		if err != nil {
			return WrapExitError(ExitCommandError, "start servers", err)
		}
		defer func() {
			for _, s := range stacks {
				_ = s.Shutdown(context.Background())
			}
		}()
		restURL, grpcAddr = stacks[0].BaseURL(), stacks[1].GRPCAddr.String()
		f.VerboseLog("self-hosted: rest=%s rpc=%s", restURL, grpcAddr)
	}

	conn, err := grpc.NewClient(grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return WrapExitError(ExitCommandError, "dial grpc", err)
	}
	defer conn.Close()

	runner := harness.NewRunner(harness.NewRESTClient(restURL), harness.NewRPCClient(conn), log)
	runner.SharedStore = shared
	rep := runner.Run(ctx, scenarios)

	if err := writeReport(f, rep); err != nil {
		return WrapExitError(ExitCommandError, "write report", err)
	}
	if !rep.OK() {
		return NewExitError(ExitFailure,
			fmt.Sprintf("%d failed, %d aborted", rep.Totals.Failed, rep.Totals.Aborted))
	}
	return nil
}

// startStacks starts one isolated server per transport.
func startStacks(ctx context.Context, log logging.Logger) ([]*app.Running, error) {
	var stacks []*app.Running
	for range 2 {
		s, err := app.NewStack(ctx, log)
		if err != nil {
			for _, started := range stacks {
				_ = started.Shutdown(context.Background())
			}
			return nil, err
		}
		stacks = append(stacks, s)
	}
	return stacks, nil
}

func writeReport(f *OutputFormatter, rep *harness.Report) error {
	var write func(io.Writer) error = rep.WriteText
	if f.Format == "json" {
		write = rep.WriteJSON
	}
	return write(f.Writer)
}
