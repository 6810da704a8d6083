package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/railsforge/internal/create"
	"github.com/donaldgifford/railsforge/internal/plan"
	"github.com/donaldgifford/railsforge/internal/shell"
	"github.com/donaldgifford/railsforge/internal/ui"
)

var (
	planOutputFormat string
	planOutputDir    string
)

var planCmd = &cobra.Command{
	Use:   "plan <app>",
	Short: "Print the generation plan without applying it",
	Long: `Print every checkpoint and operation railsforge would apply to the app.
Options are resolved without prompting. If the app directory already exists it
is inspected; otherwise the plan assumes a fresh rails new tree.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	addSelectionFlags(planCmd)
	planCmd.Flags().StringVarP(&planOutputFormat, "format", "f", plan.FormatText, "output format (text, json)")
	planCmd.Flags().StringVarP(&planOutputDir, "output-dir", "o", ".", "directory the app is created in")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	global, err := loadGlobalConfig()
	if err != nil {
		return err
	}

	overrides, err := parseOverrides(setVars)
	if err != nil {
		return err
	}

	result, err := create.Plan(cmd.Context(), &create.Opts{
		AppName:        args[0],
		OutputDir:      planOutputDir,
		Overrides:      overrides,
		SelectionsFile: selectionsFile,
		UseDefaults:    true,
		Global:         global,
		// Version probes must not echo into the plan output.
		Runner: &shell.Exec{Logger: slog.Default()},
		Logger: slog.Default(),
	})
	if err != nil {
		return err
	}

	w := ui.NewWriter(noColor)
	for _, warn := range result.TemplateWarnings {
		w.Warningf("template overlay: %v", warn)
	}

	return plan.Write(os.Stdout, result.Plan, planOutputFormat)
}
