package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aidanlsb/rnm/internal/presets"
	"github.com/aidanlsb/rnm/internal/ui"
)

var (
	presetSaveSettings *settingsFlags
	presetDescription  string
)

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage saved settings",
	Long: `Presets are named settings stored as YAML files in presets_dir.

Use one with --preset on preview, apply or watch; explicit flags still win.`,
}

var presetSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save the current settings as a preset",
	Long: `Save settings under a name. The saved settings are the remembered ones from
the last run with any flags given here laid on top.

Examples:
  rnm preset save photos -m sequence --digits 4 --seq-mode prefix
  rnm preset save "strip drafts" -m replace --find _draft --replace ""`,
	Args: cobra.ExactArgs(1),
	RunE: runPresetSave,
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List presets",
	Args:  cobra.NoArgs,
	RunE:  runPresetList,
}

var presetShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a preset",
	Args:  cobra.ExactArgs(1),
	RunE:  runPresetShow,
}

var presetDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a preset",
	Args:  cobra.ExactArgs(1),
	RunE:  runPresetDelete,
}

func presetStore() *presets.Store {
	return presets.NewStore(fsys, paths.Presets)
}

func presetError(err error) error {
	if errors.Is(err, presets.ErrNotFound) {
		return handleError(ErrPresetNotFound, err, "Run 'rnm preset list' to see saved presets")
	}
	return handleError(ErrInternal, err, "")
}

func runPresetSave(cmd *cobra.Command, args []string) error {
	st, err := presetSaveSettings.resolve()
	if err != nil {
		return settingsError(err)
	}
	p := presets.Preset{Name: args[0], Description: presetDescription, Settings: st}
	path, err := presetStore().Save(p)
	if err != nil {
		return handleError(ErrInvalidInput, err, "")
	}

	if isJSONOutput() {
		outputSuccess(map[string]interface{}{"name": p.Name, "path": path, "settings": st}, nil)
		return nil
	}
	fmt.Println(ui.Successf("Saved preset %s (%s)", ui.Bold.Render(p.Name), st.Method))
	fmt.Println(ui.Hint(path))
	return nil
}

func runPresetList(cmd *cobra.Command, args []string) error {
	list, skipped, err := presetStore().List()
	if err != nil {
		return handleError(ErrInternal, err, "")
	}
	var warnings []Warning
	for _, name := range skipped {
		warnings = append(warnings, Warning{Code: WarnPresetSkipped, Message: "preset file could not be read", Ref: name})
	}
	if list == nil {
		list = []presets.Preset{}
	}

	if isJSONOutput() {
		outputSuccessWithWarnings(map[string]interface{}{"presets": list}, warnings, &Meta{Count: len(list)})
		return nil
	}

	if len(list) == 0 {
		fmt.Println(ui.Info("No presets saved."))
		fmt.Println(ui.Hint("Save one with 'rnm preset save <name> [flags]'."))
		printWarnings(warnings)
		return nil
	}
	table := ui.NewTable(3)
	for _, p := range list {
		table.AddRow(ui.Bold.Render(p.Name), string(p.Settings.Method), ui.Hint(p.Description))
	}
	fmt.Print(table.String())
	printWarnings(warnings)
	return nil
}

func runPresetShow(cmd *cobra.Command, args []string) error {
	p, err := presetStore().Load(args[0])
	if err != nil {
		return presetError(err)
	}
	if isJSONOutput() {
		outputSuccess(p, nil)
		return nil
	}
	out, err := yaml.Marshal(p)
	if err != nil {
		return handleError(ErrInternal, err, "")
	}
	fmt.Print(string(out))
	return nil
}

func runPresetDelete(cmd *cobra.Command, args []string) error {
	if err := presetStore().Delete(args[0]); err != nil {
		return presetError(err)
	}
	if isJSONOutput() {
		outputSuccess(map[string]interface{}{"deleted": args[0]}, nil)
		return nil
	}
	fmt.Println(ui.Successf("Deleted preset %s", args[0]))
	return nil
}

func init() {
	presetSaveSettings = newSettingsFlags(presetSaveCmd.Flags())
	presetSaveCmd.Flags().StringVarP(&presetDescription, "description", "d", "", "Short description")

	presetCmd.AddCommand(presetSaveCmd)
	presetCmd.AddCommand(presetListCmd)
	presetCmd.AddCommand(presetShowCmd)
	presetCmd.AddCommand(presetDeleteCmd)
	rootCmd.AddCommand(presetCmd)
}
