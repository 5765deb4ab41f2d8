package cli

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	statusHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	statusLabelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

var statusCmd = &cobra.Command{
	Use:   "status [session-id]",
	Short: "Show tracked session state",
	Long: `Display the skills, files, and work domains tracked for a session.
Without a session ID, show a summary of the whole project store.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if StateMgr == nil {
			return fmt.Errorf("session state not initialized")
		}
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			doc, err := StateMgr.Snapshot()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, statusHeaderStyle.Render("Session store"))
			fmt.Fprintf(out, "%s %s\n", statusLabelStyle.Render("path:"), StateMgr.StorePath())
			fmt.Fprintf(out, "%s %d\n", statusLabelStyle.Render("sessions:"), len(doc.Sessions))
			return nil
		}

		sessionID := args[0]
		skills, err := StateMgr.GetActivatedSkills(sessionID)
		if err != nil {
			return err
		}
		files, err := StateMgr.GetModifiedFiles(sessionID)
		if err != nil {
			return err
		}
		domains, err := StateMgr.GetActiveDomains(sessionID)
		if err != nil {
			return err
		}

		fmt.Fprintln(out, statusHeaderStyle.Render("Session "+sessionID))
		printList(out, "activated skills", skills)
		printList(out, "modified files", files)
		printList(out, "active domains", domains)
		return nil
	},
}

func printList(out io.Writer, label string, items []string) {
	fmt.Fprintf(out, "%s\n", statusLabelStyle.Render(label+":"))
	if len(items) == 0 {
		fmt.Fprintln(out, "  (none)")
		return
	}
	for _, item := range items {
		fmt.Fprintf(out, "  %s\n", item)
	}
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List sessions tracked for this project",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if StateMgr == nil {
			return fmt.Errorf("session state not initialized")
		}
		doc, err := StateMgr.Snapshot()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(doc.Sessions) == 0 {
			fmt.Fprintln(out, "No sessions tracked.")
			return nil
		}
		ids := make([]string, 0, len(doc.Sessions))
		for id := range doc.Sessions {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			rec := doc.Sessions[id]
			updated := "never"
			if rec.UpdatedAt > 0 {
				updated = time.UnixMilli(rec.UpdatedAt).UTC().Format(time.RFC3339)
			}
			fmt.Fprintf(out, "%s  %s\n", statusHeaderStyle.Render(id),
				statusLabelStyle.Render(fmt.Sprintf("%d skills, %d files, updated %s",
					len(rec.ActivatedSkills), len(rec.ModifiedFiles), updated)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(sessionsCmd)
}
