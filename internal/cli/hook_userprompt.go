package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/skill-brain/internal/hooks"
)

var hookUserPromptSubmitCmd = &cobra.Command{
	Use:   "user-prompt-submit",
	Short: "Handle UserPromptSubmit hook events (non-blocking)",
	Long: `Evaluate the submitted prompt against the skill rules. Reads
session_id, cwd, and prompt from stdin JSON.

Matched guaranteed skills are injected as additional context; suggestive
matches become one-line hints. When nothing matches, nothing is written.
All errors are swallowed: the assistant is never blocked.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := hooks.ParseStdin[hooks.UserPromptSubmitInput](os.Stdin)
		if err != nil {
			return nil // Non-blocking, swallow errors.
		}
		if input.SessionID == "" {
			return nil
		}

		activator := activatorFor(input.CWD)
		if activator == nil {
			return nil
		}

		outcome := activator.RunPromptSubmit(input.SessionID, input.Prompt)

		// Non-blocking: swallow output errors too.
		_ = hooks.WritePromptSubmitOutput(cmd.OutOrStdout(), outcome)

		return nil
	},
}

func init() {
	hookCmd.AddCommand(hookUserPromptSubmitCmd)
}
