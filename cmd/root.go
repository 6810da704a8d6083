// Package cmd defines the CLI commands for railsforge.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/donaldgifford/railsforge/internal/config"
)

var (
	verbose   bool
	noColor   bool
	cfgFile   string
	traceRuns bool

	tracerProvider *sdktrace.TracerProvider
)

// rootCmd is the base command for the railsforge CLI.
var rootCmd = &cobra.Command{
	Use:   "railsforge",
	Short: "Scaffold production-ready Rails applications",
	Long: `railsforge creates a Rails application with rails new and then layers a
curated configuration on top of it: testing and performance tools, analytics,
error monitoring, linting, a single-database setup, Render.com deployment, and
GitHub Actions CI. Each step is committed to git as a checkpoint.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		initLogger()

		return initTracer()
	},
	PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
		return shutdownTracer(cmd.Context())
	},
}

// ExecuteContext runs the root command with ctx, which is cancelled on SIGINT.
func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)

	// PersistentPostRun is skipped when a command fails.
	if shutdownErr := shutdownTracer(context.WithoutCancel(ctx)); err == nil {
		err = shutdownErr
	}

	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/railsforge/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&traceRuns, "trace", false, "print OpenTelemetry spans for each checkpoint to stderr")
}

func initLogger() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func initTracer() error {
	if !traceRuns || tracerProvider != nil {
		return nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint(), stdouttrace.WithWriter(os.Stderr))
	if err != nil {
		return fmt.Errorf("creating trace exporter: %w", err)
	}

	tracerProvider = sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tracerProvider)

	return nil
}

func shutdownTracer(ctx context.Context) error {
	if tracerProvider == nil {
		return nil
	}

	tp := tracerProvider
	tracerProvider = nil

	if err := tp.Shutdown(ctx); err != nil {
		return fmt.Errorf("flushing traces: %w", err)
	}

	return nil
}

// loadGlobalConfig reads --config or the default config path.
func loadGlobalConfig() (*config.GlobalConfig, error) {
	path := cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	cfg, err := config.LoadGlobalConfig(path)
	if err != nil {
		return nil, fmt.Errorf("loading global config: %w", err)
	}

	slog.Debug("loaded global config", "path", path)

	return cfg, nil
}
