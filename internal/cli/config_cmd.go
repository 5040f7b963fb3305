package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/rnm/internal/config"
)

type globalConfigContext struct {
	cfg          *config.Config
	configPath   string
	paths        config.Paths
	configExists bool
}

var (
	configSetAudit        bool
	configSetRemember     bool
	configSetDefaultScope string
	configSetLockTimeout  string
	configSetUIAccent     string
)

func loadGlobalConfigContextAllowMissing() (*globalConfigContext, error) {
	resolvedPath := config.ResolveConfigPath(configPath)
	_, statErr := os.Stat(resolvedPath)
	if statErr != nil && !os.IsNotExist(statErr) {
		return nil, statErr
	}

	loadedCfg, err := config.LoadFrom(resolvedPath)
	if err != nil {
		return nil, err
	}
	return &globalConfigContext{
		cfg:          loadedCfg,
		configPath:   resolvedPath,
		paths:        config.ResolvePaths(resolvedPath, loadedCfg),
		configExists: statErr == nil,
	}, nil
}

func configData(ctx *globalConfigContext) map[string]interface{} {
	wait, _ := ctx.cfg.LockWait()
	return map[string]interface{}{
		"config_path":       ctx.configPath,
		"exists":            ctx.configExists,
		"state_file":        ctx.paths.State,
		"journal_file":      ctx.paths.Journal,
		"presets_dir":       ctx.paths.Presets,
		"audit":             ctx.cfg.AuditEnabled(),
		"audit_file":        ctx.paths.Audit,
		"remember_settings": ctx.cfg.Remember(),
		"default_scope":     ctx.cfg.Scope(),
		"lock_timeout":      wait.String(),
		"ui": map[string]interface{}{
			"accent": strings.TrimSpace(ctx.cfg.UI.Accent),
		},
	}
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	ctx, err := loadGlobalConfigContextAllowMissing()
	if err != nil {
		return handleError(ErrConfigInvalid, err, "")
	}

	if isJSONOutput() {
		outputSuccess(configData(ctx), nil)
		return nil
	}

	if !ctx.configExists {
		fmt.Printf("Config file does not exist: %s (using defaults)\n", ctx.configPath)
		fmt.Println("Run 'rnm config init' to create it.")
	} else {
		fmt.Printf("config: %s\n", ctx.configPath)
	}
	wait, _ := ctx.cfg.LockWait()
	fmt.Printf("state_file:        %s\n", ctx.paths.State)
	fmt.Printf("journal_file:      %s\n", ctx.paths.Journal)
	fmt.Printf("presets_dir:       %s\n", ctx.paths.Presets)
	fmt.Printf("audit:             %t (%s)\n", ctx.cfg.AuditEnabled(), ctx.paths.Audit)
	fmt.Printf("remember_settings: %t\n", ctx.cfg.Remember())
	fmt.Printf("default_scope:     %s\n", ctx.cfg.Scope())
	fmt.Printf("lock_timeout:      %s\n", wait)
	if v := strings.TrimSpace(ctx.cfg.UI.Accent); v != "" {
		fmt.Printf("ui.accent:         %s\n", v)
	}
	return nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the global config.toml",
	Long: `Manage the global config.toml.

Use this to initialize, inspect, and edit where rnm keeps its state, history
and presets.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		target := config.ResolveConfigPath(configPath)
		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"config_path": target}, nil)
			return nil
		}
		fmt.Println(target)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config.toml if missing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		targetPath := config.ResolveConfigPath(configPath)
		_, statErr := os.Stat(targetPath)
		existed := statErr == nil
		if statErr != nil && !os.IsNotExist(statErr) {
			return handleError(ErrInternal, statErr, "")
		}

		createdPath, err := config.CreateDefault(targetPath)
		if err != nil {
			return handleError(ErrInternal, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"config_path": createdPath,
				"created":     !existed,
			}, nil)
			return nil
		}

		if existed {
			fmt.Printf("Config already exists: %s\n", createdPath)
		} else {
			fmt.Printf("Created config: %s\n", createdPath)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set one or more config.toml fields",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := loadGlobalConfigContextAllowMissing()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}

		changed := make([]string, 0, 5)

		if cmd.Flags().Changed("audit") {
			v := configSetAudit
			ctx.cfg.Audit = &v
			changed = append(changed, "audit")
		}
		if cmd.Flags().Changed("remember-settings") {
			v := configSetRemember
			ctx.cfg.RememberSettings = &v
			changed = append(changed, "remember_settings")
		}
		if cmd.Flags().Changed("default-scope") {
			ctx.cfg.DefaultScope = strings.TrimSpace(configSetDefaultScope)
			changed = append(changed, "default_scope")
		}
		if cmd.Flags().Changed("lock-timeout") {
			ctx.cfg.LockTimeout = strings.TrimSpace(configSetLockTimeout)
			changed = append(changed, "lock_timeout")
		}
		if cmd.Flags().Changed("ui-accent") {
			value := strings.TrimSpace(configSetUIAccent)
			if value == "" {
				return handleErrorMsg(ErrInvalidInput, "ui-accent cannot be empty", "")
			}
			ctx.cfg.UI.Accent = value
			changed = append(changed, "ui.accent")
		}

		if len(changed) == 0 {
			return handleErrorMsg(ErrInvalidInput, "no fields provided; set at least one of --audit/--remember-settings/--default-scope/--lock-timeout/--ui-accent", "")
		}
		if err := ctx.cfg.Validate(); err != nil {
			return handleError(ErrInvalidInput, err, "")
		}

		if err := config.SaveTo(ctx.configPath, ctx.cfg); err != nil {
			return handleError(ErrInternal, err, "")
		}

		ctx.configExists = true
		ctx.paths = config.ResolvePaths(ctx.configPath, ctx.cfg)
		if isJSONOutput() {
			data := configData(ctx)
			data["changed"] = changed
			outputSuccess(data, nil)
			return nil
		}

		fmt.Printf("Updated config: %s\n", ctx.configPath)
		fmt.Printf("changed: %s\n", strings.Join(changed, ", "))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current config values",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	})

	configSetCmd.Flags().BoolVar(&configSetAudit, "audit", true, "Enable the JSONL audit log")
	configSetCmd.Flags().BoolVar(&configSetRemember, "remember-settings", true, "Start from the last used settings")
	configSetCmd.Flags().StringVar(&configSetDefaultScope, "default-scope", "", "Default scope (file|folder)")
	configSetCmd.Flags().StringVar(&configSetLockTimeout, "lock-timeout", "", "How long to wait for another rnm process (e.g. 5s)")
	configSetCmd.Flags().StringVar(&configSetUIAccent, "ui-accent", "", "Set UI accent color (ANSI 0-255 or #RRGGBB)")

	rootCmd.AddCommand(configCmd)
}
