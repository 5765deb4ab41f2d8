package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/skill-brain/internal/hooks"
)

var hookStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Handle Stop hook events (non-blocking)",
	Long: `Mark the end of an assistant turn. Reads session_id and cwd from
stdin JSON. Session state survives across turns; this only records the
event for diagnostics. All errors are swallowed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := hooks.ParseStdin[hooks.StopInput](os.Stdin)
		if err != nil {
			return nil // Non-blocking, swallow errors.
		}

		activator := activatorFor(input.CWD)
		if activator == nil {
			return nil
		}

		activator.RecordStop(input.SessionID)

		return nil
	},
}

func init() {
	hookCmd.AddCommand(hookStopCmd)
}
