package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/skill-brain/internal/hooks"
)

var hookPostToolUseCmd = &cobra.Command{
	Use:   "post-tool-use",
	Short: "Handle PostToolUse hook events (non-blocking)",
	Long: `Track a file edit. Reads session_id, cwd, tool_name, and
tool_input from stdin JSON.

The edited file is recorded in the session state so later prompts can
match file triggers and inferred work domains. Events without a file
path are ignored. All errors are swallowed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := hooks.ParseStdin[hooks.PostToolUseInput](os.Stdin)
		if err != nil {
			return nil // Non-blocking, swallow errors.
		}

		activator := activatorFor(input.CWD)
		if activator == nil {
			return nil
		}

		activator.RecordFileEdit(input.SessionID, input.FilePath())

		return nil
	},
}

func init() {
	hookCmd.AddCommand(hookPostToolUseCmd)
}
