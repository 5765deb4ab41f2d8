package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/valter-silva-au/skill-brain/internal/core"
)

var (
	ruleNameStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	ruleDimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and validate the skill rule configuration",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured skill rules",
	Long:  `Show every rule in .skillbrain.yaml with its strategy, priority, and trigger counts, in declaration order.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if RulesMgr == nil {
			return fmt.Errorf("rules manager not initialized")
		}
		cfg, err := RulesMgr.Load()
		if err != nil {
			return err
		}
		if len(cfg.SkillOrder) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No skill rules configured (%s not found or empty).\n", core.ConfigFileName)
			return nil
		}

		out := cmd.OutOrStdout()
		for _, name := range cfg.SkillOrder {
			rule, ok := cfg.Skills[name]
			if !ok {
				continue
			}
			triggers := []string{}
			if n := len(rule.PromptTriggers.Keywords); n > 0 {
				triggers = append(triggers, fmt.Sprintf("%d keywords", n))
			}
			if n := len(rule.PromptTriggers.IntentPatterns); n > 0 {
				triggers = append(triggers, fmt.Sprintf("%d intents", n))
			}
			if n := len(rule.FileTriggers.PathPatterns); n > 0 {
				triggers = append(triggers, fmt.Sprintf("%d paths", n))
			}
			if n := len(rule.FileTriggers.ContentPatterns); n > 0 {
				triggers = append(triggers, fmt.Sprintf("%d content", n))
			}
			if !rule.ShadowTriggers.Empty() {
				triggers = append(triggers, "shadow")
			}
			detail := fmt.Sprintf("%s/%s", rule.ActivationStrategy, rule.Priority)
			if rule.CooldownMinutes > 0 {
				detail += fmt.Sprintf(", cooldown %dm", rule.CooldownMinutes)
			}
			fmt.Fprintf(out, "%s  %s\n", ruleNameStyle.Render(name), ruleDimStyle.Render(detail))
			fmt.Fprintf(out, "  %s\n", rule.Description)
			if len(triggers) > 0 {
				fmt.Fprintf(out, "  %s\n", ruleDimStyle.Render(strings.Join(triggers, ", ")))
			}
		}
		fmt.Fprintf(out, "\n%d rule(s), max %d suggestions, default cooldown %dm\n",
			len(cfg.SkillOrder), cfg.Settings.MaxSuggestions, cfg.Settings.Thresholds.RecentActivationMinutes)
		return nil
	},
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the rule configuration",
	Long:  `Parse .skillbrain.yaml, check every field and trigger pattern, and report all problems at once.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if RulesMgr == nil {
			return fmt.Errorf("rules manager not initialized")
		}
		cfg, err := RulesMgr.Load()
		if err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), errStyle.Render("invalid"))
			fmt.Fprintln(cmd.OutOrStdout(), err.Error())
			return fmt.Errorf("rule configuration is invalid")
		}
		if _, err := RulesMgr.Compile(cfg); err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), errStyle.Render("invalid"))
			fmt.Fprintln(cmd.OutOrStdout(), err.Error())
			return fmt.Errorf("rule configuration is invalid")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %d rule(s)\n", okStyle.Render("valid"), len(cfg.SkillOrder))
		return nil
	},
}

var rulesPreviewCmd = &cobra.Command{
	Use:   "preview <prompt>",
	Short: "Dry-run the matcher against a prompt",
	Long: `Show which rules would match the given prompt and how they score,
without touching session state. Pass --session to include that session's
modified files in file trigger evaluation.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Activator == nil {
			return fmt.Errorf("activator not initialized")
		}
		sessionID, _ := cmd.Flags().GetString("session")

		matches, shadows, err := Activator.PreviewMatches(sessionID, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(matches) == 0 && len(shadows) == 0 {
			fmt.Fprintln(out, "No matches.")
			return nil
		}
		for _, m := range matches {
			fmt.Fprintf(out, "%s  score=%d  %s\n", ruleNameStyle.Render(m.SkillName), m.Score,
				ruleDimStyle.Render(fmt.Sprintf("%s/%s", m.Rule.ActivationStrategy, m.Rule.Priority)))
			fmt.Fprintf(out, "  %s\n", m.Reason)
		}
		for _, sh := range shadows {
			fmt.Fprintf(out, "%s  %s\n", ruleNameStyle.Render(sh.SkillName), ruleDimStyle.Render("shadow"))
			fmt.Fprintf(out, "  %s\n", sh.Reason)
		}
		return nil
	},
}

func init() {
	rulesPreviewCmd.Flags().String("session", "", "Session whose modified files feed file triggers")

	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesValidateCmd)
	rulesCmd.AddCommand(rulesPreviewCmd)
	rootCmd.AddCommand(rulesCmd)
}
