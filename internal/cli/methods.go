package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/rnm/docs"
	"github.com/aidanlsb/rnm/internal/settings"
	"github.com/aidanlsb/rnm/internal/ui"
)

var methodsCmd = &cobra.Command{
	Use:   "methods [method]",
	Short: "Describe the rename methods",
	Long: `Print the reference for every rename method, or for one.

Examples:
  rnm methods
  rnm methods move-token
  rnm methods seq`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMethods,
}

func runMethods(cmd *cobra.Command, args []string) error {
	var content string
	if len(args) == 1 {
		method, err := settings.Parse(args[0], settings.Methods())
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}
		sec, err := docs.MethodSection(string(method))
		if err != nil {
			return handleError(ErrInternal, err, "")
		}
		content = sec.Body
	} else {
		all, err := docs.Methods()
		if err != nil {
			return handleError(ErrInternal, err, "")
		}
		content = all
	}

	if isJSONOutput() {
		sections, err := docs.MethodSections()
		if err != nil {
			return handleError(ErrInternal, err, "")
		}
		names := make([]string, 0, len(sections))
		for _, s := range sections {
			names = append(names, s.Slug)
		}
		outputSuccess(map[string]interface{}{"methods": names, "content": content}, nil)
		return nil
	}

	display := ui.NewDisplayContext(os.Stdout)
	if !display.IsTTY {
		fmt.Print(content)
		return nil
	}
	rendered, err := ui.RenderMarkdown(content, display.AvailableWidth(0))
	if err != nil {
		fmt.Print(content)
		return nil
	}
	fmt.Print(rendered)
	return nil
}

func init() {
	rootCmd.AddCommand(methodsCmd)
}
