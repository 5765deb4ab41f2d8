package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/skill-brain/internal/skills"
	"github.com/valter-silva-au/skill-brain/pkg/models"
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "List skill content available for injection",
	Long: `Scan ` + skills.SkillsDir + ` and list every skill definition found,
with its frontmatter description and content size. Guaranteed rules
without a matching skill directory degrade to suggestions at runtime;
this command makes those gaps visible.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if SkillLoader == nil {
			return fmt.Errorf("skill loader not initialized")
		}
		list, err := SkillLoader.List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(list) == 0 {
			fmt.Fprintf(out, "No skills found under %s.\n", skills.SkillsDir)
			return nil
		}
		for _, sk := range list {
			fmt.Fprintf(out, "%s  %s\n", ruleNameStyle.Render(sk.Name),
				ruleDimStyle.Render(fmt.Sprintf("%d bytes", len(sk.Content))))
			if sk.Metadata.Description != "" {
				fmt.Fprintf(out, "  %s\n", sk.Metadata.Description)
			}
		}

		// Cross-check against configured guaranteed rules.
		if RulesMgr != nil {
			cfg, err := RulesMgr.Load()
			if err == nil {
				byName := make(map[string]bool, len(list))
				for _, sk := range list {
					byName[sk.Name] = true
				}
				for _, name := range cfg.SkillOrder {
					rule := cfg.Skills[name]
					if rule.ActivationStrategy == models.StrategyGuaranteed && !byName[name] {
						fmt.Fprintf(out, "%s guaranteed rule %q has no %s entry\n",
							errStyle.Render("warning:"), name, skills.SkillsDir)
					}
				}
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(skillsCmd)
}
