// Package cli wires the skb command tree. Service instances are
// injected by app.go before Execute runs.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "skb",
	Short: "Skill Brain - automatic skill activation for AI coding assistants",
	Long: `Skill Brain (skb) watches an AI coding assistant's session through
lifecycle hooks and decides which project skills to inject, suggest, or
silently track for each prompt.

Rules live in .skillbrain.yaml at the project root; skill content lives
under .claude/skills/. Hook invocations never block the assistant: any
internal failure degrades to no output and exit code 0.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("skb %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
