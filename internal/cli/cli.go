package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/specialistvlad/appgraph/internal/app"
	"github.com/specialistvlad/appgraph/internal/workpool"
	"github.com/spf13/cobra"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// usageError marks flag and configuration problems, which exit with code 2.
func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	logFormat        string
	logLevel         string
	virtualExecution string
}

// NewRootCommand builds the command tree. opts are passed to every App the
// commands create.
func NewRootCommand(outW io.Writer, opts ...app.Option) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "appgraph",
		Short: "Runs an application assembled from a dependency graph",
		Long: `appgraph wires an application from a static graph of nodes, initializes
it in dependency order, refreshes parts of it at runtime and releases it
in reverse order on shutdown.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(outW)
	rootCmd.SetErr(outW)
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.logFormat, "log-format", envOr("APPGRAPH_LOG_FORMAT", "json"), "Log output format. Options: 'text' or 'json'.")
	pf.StringVar(&flags.logLevel, "log-level", envOr("APPGRAPH_LOG_LEVEL", "info"), "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.StringVar(&flags.virtualExecution, "virtual-execution", envOr(workpool.EnvVar, "auto"), "Lightweight executor mode. Options: 'on', 'off', 'auto'.")

	rootCmd.AddCommand(newRunCommand(flags, opts))
	rootCmd.AddCommand(newDrawCommand(flags, opts))
	return rootCmd
}

// Execute runs the command tree against args.
func Execute(ctx context.Context, outW io.Writer, args []string, opts ...app.Option) error {
	slog.Debug("CLI parser started.")
	cmd := NewRootCommand(outW, opts...)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	// Unknown commands and argument count errors come from cobra itself.
	if strings.HasPrefix(err.Error(), "unknown command") || strings.Contains(err.Error(), "arg(s)") {
		return usageError(err)
	}
	return &ExitError{Code: 1, Message: err.Error()}
}

// config builds the validated app configuration for a subcommand.
func (f *globalFlags) config(cfg app.Config) (*app.Config, error) {
	cfg.LogFormat = strings.ToLower(f.logFormat)
	cfg.LogLevel = strings.ToLower(f.logLevel)
	cfg.VirtualExecution = f.virtualExecution

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageError(err)
	}
	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("Ignoring invalid integer environment variable.", "key", key, "value", v)
		return fallback
	}
	return n
}

func envBoolOr(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("Ignoring invalid boolean environment variable.", "key", key, "value", v)
		return fallback
	}
	return b
}
