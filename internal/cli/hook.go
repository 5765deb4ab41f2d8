package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Handle Claude Code hook events",
	Long: `Process Claude Code hook events for skill activation.

Each subcommand reads the event payload as JSON from stdin, consults the
skill rules and session state, and writes activation context to stdout
when appropriate. Hook subcommands always exit 0: a broken config or an
unreadable state file must never block the assistant.

These commands are wired into .claude/settings.json by 'skb hook install'.`,
}

var hookInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install skb hooks into Claude Code settings",
	Long: `Update .claude/settings.json so Claude Code invokes skb on
UserPromptSubmit, PostToolUse, and Stop events.

Existing unrelated settings are preserved; only the hook entries for the
three events skb handles are rewritten.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		targetDir, _ := cmd.Flags().GetString("dir")
		if targetDir == "" {
			var err error
			targetDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("getting working directory: %w", err)
			}
		}

		return installHooks(targetDir)
	},
}

// installHooks updates settings.json with skb hook entries.
func installHooks(targetDir string) error {
	claudeDir := filepath.Join(targetDir, ".claude")
	if err := os.MkdirAll(claudeDir, 0o755); err != nil {
		return fmt.Errorf("creating .claude directory: %w", err)
	}

	settingsPath := filepath.Join(claudeDir, "settings.json")
	if err := updateSettingsWithHooks(settingsPath); err != nil {
		return fmt.Errorf("updating settings.json: %w", err)
	}

	fmt.Printf("Hooks installed in %s\n", settingsPath)
	fmt.Println("Claude Code will now consult skb on each prompt and file edit.")
	return nil
}

func updateSettingsWithHooks(settingsPath string) error {
	// Read existing settings or create new.
	var settings map[string]interface{}

	data, err := os.ReadFile(settingsPath) //nolint:gosec // G304: path from trusted CLI input
	if err == nil {
		if err := json.Unmarshal(data, &settings); err != nil {
			settings = make(map[string]interface{})
		}
	} else {
		settings = make(map[string]interface{})
	}

	hookEntry := func(command string) []interface{} {
		return []interface{}{
			map[string]interface{}{
				"hooks": []interface{}{
					map[string]interface{}{
						"type":    "command",
						"command": command,
					},
				},
			},
		}
	}

	hooksSection, _ := settings["hooks"].(map[string]interface{})
	if hooksSection == nil {
		hooksSection = make(map[string]interface{})
	}
	hooksSection["UserPromptSubmit"] = hookEntry("skb hook user-prompt-submit")
	hooksSection["PostToolUse"] = hookEntry("skb hook post-tool-use")
	hooksSection["Stop"] = hookEntry("skb hook stop")
	settings["hooks"] = hooksSection

	out, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	// Ensure trailing newline.
	if !strings.HasSuffix(string(out), "\n") {
		out = append(out, '\n')
	}
	if err := os.WriteFile(settingsPath, out, 0o644); err != nil {
		return fmt.Errorf("writing settings.json: %w", err)
	}
	return nil
}

func init() {
	hookInstallCmd.Flags().String("dir", "", "Target directory (defaults to current directory)")

	hookCmd.AddCommand(hookInstallCmd)
	rootCmd.AddCommand(hookCmd)
}
