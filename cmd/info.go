package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/railsforge/internal/info"
)

var infoOutputFormat string

var infoCmd = &cobra.Command{
	Use:   "info <option>",
	Short: "Show the details of an option",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().StringVarP(&infoOutputFormat, "format", "f", "text", "output format (text, json)")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(_ *cobra.Command, args []string) error {
	global, err := loadGlobalConfig()
	if err != nil {
		return err
	}

	return info.Run(&info.Opts{
		Name:         args[0],
		Defaults:     global.Defaults,
		Writer:       os.Stdout,
		OutputFormat: infoOutputFormat,
	})
}
