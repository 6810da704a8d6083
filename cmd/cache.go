package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/railsforge/internal/blueprint"
	"github.com/donaldgifford/railsforge/internal/ui"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the railsforge cache",
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clear cached template overlays",
	Long: `Remove template overlays downloaded with --template-url or the global
template_url. They are fetched again on the next run.`,
	Args: cobra.NoArgs,
	RunE: runCacheClean,
}

func init() {
	cacheCmd.AddCommand(cacheCleanCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheClean(_ *cobra.Command, _ []string) error {
	global, err := loadGlobalConfig()
	if err != nil {
		return err
	}

	baseDir := global.CacheDir
	if baseDir == "" {
		baseDir = blueprint.DefaultCacheDir()
	}

	w := ui.NewWriter(noColor)

	freed, err := blueprint.NewCache(baseDir, slog.Default()).Clean()
	if err != nil {
		return fmt.Errorf("cleaning template cache: %w", err)
	}

	if freed > 0 {
		w.Successf("Cleaned template cache (%s)", formatBytes(freed))
	} else {
		w.Info("Template cache already clean")
	}

	return nil
}

func formatBytes(b int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)

	switch {
	case b >= gb:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(gb))
	case b >= mb:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(mb))
	case b >= kb:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(kb))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
