package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/railsforge/internal/create"
	"github.com/donaldgifford/railsforge/internal/prompt"
	"github.com/donaldgifford/railsforge/internal/ui"
)

var (
	setVars        []string
	selectionsFile string
	outputDir      string
	useDefault     bool
	skipRailsNew   bool
	dryRun         bool
	templateURL    string
	templateRef    string
	noCommit       bool
	noHooks        bool
)

var newCmd = &cobra.Command{
	Use:   "new <app>",
	Short: "Create a new Rails application",
	Long: `Create a new Rails application. railsforge runs rails new, then applies
the selected configuration one checkpoint at a time, committing each to git.

Options are resolved in order: built-in defaults, the defaults in the global
config, --selections, --set, and finally interactive prompts for anything not
set explicitly. Use --defaults to skip the prompts.`,
	Example: `  railsforge new blog
  railsforge new blog --defaults --set render=true --set render_domain=blog.example.com
  railsforge new blog --selections team.yaml --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

func init() {
	addSelectionFlags(newCmd)
	newCmd.Flags().StringVarP(&outputDir, "output-dir", "o", ".", "directory the app is created in")
	newCmd.Flags().BoolVar(&useDefault, "defaults", false, "use default values without prompting")
	newCmd.Flags().BoolVar(&skipRailsNew, "skip-rails-new", false, "configure an existing app instead of running rails new")
	newCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the summary without changing anything")
	newCmd.Flags().StringVar(&templateURL, "template-url", "", "remote template overlay (any go-getter source)")
	newCmd.Flags().StringVar(&templateRef, "template-ref", "", "git ref of the template overlay")
	newCmd.Flags().BoolVar(&noCommit, "no-commit", false, "do not create git checkpoints")
	newCmd.Flags().BoolVar(&noHooks, "no-hooks", false, "skip post-generate hooks from the global config")
	rootCmd.AddCommand(newCmd)
}

// addSelectionFlags registers the flags shared by new and plan.
func addSelectionFlags(c *cobra.Command) {
	c.Flags().StringArrayVar(&setVars, "set", nil, "set an option value (key=value, can be repeated)")
	c.Flags().StringVar(&selectionsFile, "selections", "", "YAML file of option selections")
}

func runNew(cmd *cobra.Command, args []string) error {
	global, err := loadGlobalConfig()
	if err != nil {
		return err
	}

	overrides, err := parseOverrides(setVars)
	if err != nil {
		return err
	}

	opts := &create.Opts{
		AppName:        args[0],
		OutputDir:      outputDir,
		Overrides:      overrides,
		SelectionsFile: selectionsFile,
		UseDefaults:    useDefault,
		SkipRailsNew:   skipRailsNew,
		DryRun:         dryRun,
		NoCommit:       noCommit,
		NoHooks:        noHooks,
		Global:         global,
		TemplateURL:    templateURL,
		TemplateRef:    templateRef,
		Logger:         slog.Default(),
	}

	if !useDefault && prompt.IsInteractive() {
		opts.PromptFn = prompt.HuhPrompt
		opts.Customize = prompt.ConfirmCustomize
	}

	result, runErr := create.Run(cmd.Context(), opts)

	w := ui.NewWriter(noColor)

	if result != nil {
		for _, warn := range result.TemplateWarnings {
			w.Warningf("template overlay: %v", warn)
		}

		if err := w.Markdown(result.Summary); err != nil {
			return err
		}

		for _, hookErr := range result.HookErrors {
			w.Warningf("post-generate %v", hookErr)
		}
	}

	if runErr != nil {
		return runErr
	}

	if dryRun {
		w.Infof("Dry run: %d checkpoints planned, nothing was changed", len(result.Plan.Checkpoints))

		return nil
	}

	w.Successf("Created %s in %s", args[0], result.Dir)

	return nil
}

// parseOverrides converts --set key=value strings to a map.
func parseOverrides(setFlags []string) (map[string]string, error) {
	overrides := make(map[string]string, len(setFlags))

	for _, s := range setFlags {
		key, value, found := strings.Cut(s, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --set %q: expected key=value", s)
		}

		overrides[key] = value
	}

	return overrides, nil
}
