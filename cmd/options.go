package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/railsforge/internal/list"
)

var (
	optionsGroup        string
	optionsOutputFormat string
)

var optionsCmd = &cobra.Command{
	Use:   "options [query]",
	Short: "List the configurable options",
	Long: `List every option railsforge understands with its type, default, and the
option it depends on. A query filters by name, title, and description. Defaults
taken from the global config are marked with an asterisk.`,
	Aliases: []string{"ls"},
	Args:    cobra.MaximumNArgs(1),
	RunE:    runOptions,
}

func init() {
	optionsCmd.Flags().StringVar(&optionsGroup, "group", "", "filter options by group")
	optionsCmd.Flags().StringVarP(&optionsOutputFormat, "format", "f", "table", "output format (table, json)")
	rootCmd.AddCommand(optionsCmd)
}

func runOptions(_ *cobra.Command, args []string) error {
	global, err := loadGlobalConfig()
	if err != nil {
		return err
	}

	opts := &list.Opts{
		Group:        optionsGroup,
		Defaults:     global.Defaults,
		OutputFormat: optionsOutputFormat,
		Writer:       os.Stdout,
	}

	if len(args) > 0 {
		opts.Query = args[0]
	}

	return list.Run(opts)
}
