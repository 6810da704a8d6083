package cmd

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/railsforge/internal/preflight"
	"github.com/donaldgifford/railsforge/internal/shell"
)

var (
	doctorDatabaseURL  string
	doctorDir          string
	doctorOutputFormat string
	doctorTimeout      = preflight.DefaultTimeout
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the tools railsforge needs are installed",
	Long: `Check for Ruby, Bundler, Rails, Node, and Yarn, and that PostgreSQL accepts
connections. The database URL comes from --database-url, the .env file in --dir,
or DATABASE_URL, in that order. The database check is skipped when none is set.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().StringVar(&doctorDatabaseURL, "database-url", "", "PostgreSQL URL to ping")
	doctorCmd.Flags().StringVar(&doctorDir, "dir", ".", "project directory whose .env is read")
	doctorCmd.Flags().StringVarP(&doctorOutputFormat, "format", "f", "text", "output format (text, json)")
	doctorCmd.Flags().DurationVar(&doctorTimeout, "timeout", preflight.DefaultTimeout, "database ping timeout")
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	logger := slog.Default()

	url := doctorDatabaseURL
	if url == "" {
		url = preflight.DatabaseURL(doctorDir, logger)
	}

	result, err := preflight.Run(cmd.Context(), &preflight.Opts{
		Runner:       &shell.Exec{Logger: logger},
		DatabaseURL:  url,
		Timeout:      doctorTimeout,
		OutputFormat: doctorOutputFormat,
		Writer:       os.Stdout,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	if !result.OK() {
		return errors.New("required prerequisites are missing")
	}

	return nil
}
