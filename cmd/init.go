package cmd

import (
	"github.com/spf13/cobra"

	"github.com/donaldgifford/railsforge/internal/initcmd"
	"github.com/donaldgifford/railsforge/internal/ui"
)

var (
	initGlobal bool
	initForce  bool
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter selections file",
	Long: `Write a selections file listing every option with its default and allowed
values, ready to edit and pass to railsforge new --selections.

The path may be a directory (railsforge.yaml is created inside it) or a .yaml
file. With --global, writes the global config instead, at --config or the
default config path.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initGlobal, "global", false, "write the global config file")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing file")
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, args []string) error {
	opts := &initcmd.Opts{
		Global: initGlobal,
		Force:  initForce,
	}

	switch {
	case len(args) > 0:
		opts.Path = args[0]
	case initGlobal:
		opts.Path = cfgFile
	}

	if !initGlobal {
		global, err := loadGlobalConfig()
		if err != nil {
			return err
		}

		opts.Defaults = global.Defaults
	}

	path, err := initcmd.Run(opts)
	if err != nil {
		return err
	}

	ui.NewWriter(noColor).Successf("Wrote %s", path)

	return nil
}
