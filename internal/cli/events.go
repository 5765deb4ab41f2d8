package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/skill-brain/internal/observability"
)

var (
	eventsType  string
	eventsLevel string
	eventsLimit int
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent diagnostic events",
	Long: `Read back the diagnostic event log. Hook invocations stay silent on
failure, so this log is the only place swallowed errors are visible.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if EventLog == nil {
			return fmt.Errorf("event log not initialized")
		}
		events, err := EventLog.Read(observability.EventFilter{
			Type:  eventsType,
			Level: eventsLevel,
		})
		if err != nil {
			return err
		}
		if eventsLimit > 0 && len(events) > eventsLimit {
			events = events[len(events)-eventsLimit:]
		}
		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No events recorded.")
			return nil
		}
		for _, e := range events {
			line := fmt.Sprintf("%s  %-5s %s", e.Time.UTC().Format(time.RFC3339), e.Level, e.Type)
			if e.Level == "ERROR" {
				line = errStyle.Render(line)
			}
			fmt.Fprintln(out, line)
			if stage, ok := e.Data["stage"]; ok {
				fmt.Fprintf(out, "  %s\n", statusLabelStyle.Render(fmt.Sprintf("stage=%v error=%v", stage, e.Data["error"])))
			}
		}
		return nil
	},
}

func init() {
	eventsCmd.Flags().StringVar(&eventsType, "type", "", "only events of this type")
	eventsCmd.Flags().StringVar(&eventsLevel, "level", "", "only events at this level")
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 20, "show at most the last N events")
	rootCmd.AddCommand(eventsCmd)
}
