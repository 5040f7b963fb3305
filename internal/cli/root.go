// Package cli implements the command-line interface.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/aidanlsb/rnm/internal/config"
	"github.com/aidanlsb/rnm/internal/ui"
)

var (
	// Global flags
	configPath string
	verbose    bool

	// Resolved values
	resolvedConfigPath string
	cfg                *config.Config
	paths              config.Paths

	// fsys is the filesystem every command reads and renames on.
	fsys afero.Fs = afero.NewOsFs()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "rnm",
	Short: "rnm - rule-based batch renamer",
	Long: `rnm renames many files or folders at once with one rule: replace text,
delete a bracketed span, number, date-stamp, add the folder name, add text, or
move a token around.

Every rename is previewed first, applied in two phases so names can swap
without clobbering each other, and journaled so a batch can be undone.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Config commands load config themselves so they work on a broken file.
		switch cmd.Name() {
		case "completion", "help", "version", "config":
			return nil
		}
		if cmd.Parent() != nil && (cmd.Parent().Name() == "completion" || cmd.Parent().Name() == "config") {
			return nil
		}

		var err error
		cfg, resolvedConfigPath, err = loadGlobalConfigWithPath()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		paths = config.ResolvePaths(resolvedConfigPath, cfg)
		ui.ConfigureTheme(cfg.UI.Accent)
		logDebug("config: %s", resolvedConfigPath)
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for scripts)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Print debug details to stderr")
}

// getConfig returns the loaded config.
func getConfig() *config.Config {
	if cfg == nil {
		return &config.Config{}
	}
	return cfg
}

func loadGlobalConfigWithPath() (*config.Config, string, error) {
	resolvedPath := config.ResolveConfigPath(configPath)

	var loadedCfg *config.Config
	var err error
	if strings.TrimSpace(configPath) != "" {
		loadedCfg, err = config.LoadFrom(configPath)
	} else {
		loadedCfg, err = config.Load()
	}
	if err != nil {
		return nil, "", err
	}
	if loadedCfg == nil {
		loadedCfg = &config.Config{}
	}

	return loadedCfg, resolvedPath, nil
}

// logDebug writes a diagnostic line to stderr when --verbose is set.
func logDebug(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[rnm] "+format+"\n", args...)
	}
}
