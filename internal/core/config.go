// Package core contains the business logic of Skill Brain: rule
// configuration loading and validation, the cooldown controller, and the
// activation orchestrator that ties matching to the session store.
package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/valter-silva-au/skill-brain/internal/trigger"
	"github.com/valter-silva-au/skill-brain/pkg/models"
)

// ConfigFileName is the per-project rule configuration file.
const ConfigFileName = ".skillbrain.yaml"

// RulesManager loads and validates the skill rule configuration.
type RulesManager interface {
	// Load reads and validates .skillbrain.yaml from the project
	// directory. A missing file yields an empty rule set with default
	// settings; an invalid file is an error.
	Load() (*models.RulesConfig, error)

	// Compile validates every trigger pattern and returns the compiled
	// rule set the matching engine consumes.
	Compile(cfg *models.RulesConfig) (*trigger.RuleSet, error)
}

type viperRulesManager struct {
	projectDir string
}

// NewRulesManager creates a RulesManager reading configuration from
// projectDir.
func NewRulesManager(projectDir string) RulesManager {
	return &viperRulesManager{projectDir: projectDir}
}

// Load reads settings through Viper (for defaults and graceful missing
// keys) and the skills section through yaml.v3, which preserves the
// declaration order the match tie-break depends on.
func (m *viperRulesManager) Load() (*models.RulesConfig, error) {
	cfg := &models.RulesConfig{
		Version:  "1",
		Settings: models.DefaultSettings(),
		Skills:   map[string]models.SkillRule{},
	}

	v := viper.New()
	v.SetConfigName(strings.TrimSuffix(ConfigFileName, ".yaml"))
	v.SetConfigType("yaml")
	v.AddConfigPath(m.projectDir)

	v.SetDefault("settings.max_suggestions", cfg.Settings.MaxSuggestions)
	v.SetDefault("settings.thresholds.recent_activation_minutes", cfg.Settings.Thresholds.RecentActivationMinutes)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No config file — empty rule set, default settings.
			return cfg, nil
		}
		return nil, fmt.Errorf("reading %s: %w", ConfigFileName, err)
	}

	if ver := v.GetString("version"); ver != "" {
		cfg.Version = ver
	}
	cfg.Settings.MaxSuggestions = v.GetInt("settings.max_suggestions")
	cfg.Settings.Thresholds.RecentActivationMinutes = v.GetInt("settings.thresholds.recent_activation_minutes")

	if err := m.loadSkills(cfg); err != nil {
		return nil, err
	}
	if err := validateRulesConfig(cfg); err != nil {
		return nil, err
	}
	normalizeRules(cfg)
	return cfg, nil
}

// loadSkills decodes the skills section with yaml.v3 to keep map order.
func (m *viperRulesManager) loadSkills(cfg *models.RulesConfig) error {
	path := filepath.Join(m.projectDir, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", ConfigFileName, err)
	}

	var doc struct {
		Skills map[string]models.SkillRule `yaml:"skills"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing %s: %w", ConfigFileName, err)
	}
	cfg.Skills = doc.Skills
	if cfg.Skills == nil {
		cfg.Skills = map[string]models.SkillRule{}
	}

	order, err := skillDeclarationOrder(data)
	if err != nil {
		return err
	}
	cfg.SkillOrder = order
	return nil
}

// skillDeclarationOrder walks the YAML node tree to recover the order in
// which skills were declared, which plain map decoding discards.
func skillDeclarationOrder(data []byte) ([]string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ConfigFileName, err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, nil
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value != "skills" {
			continue
		}
		skills := doc.Content[i+1]
		if skills.Kind != yaml.MappingNode {
			return nil, nil
		}
		var order []string
		for j := 0; j+1 < len(skills.Content); j += 2 {
			order = append(order, skills.Content[j].Value)
		}
		return order, nil
	}
	return nil, nil
}

// Compile pre-compiles every trigger pattern. Invalid patterns fail the
// load; the matching engine assumes all patterns it receives are valid.
func (m *viperRulesManager) Compile(cfg *models.RulesConfig) (*trigger.RuleSet, error) {
	return trigger.CompileSet(cfg)
}

var validStrategies = map[models.ActivationStrategy]bool{
	models.StrategyGuaranteed:     true,
	models.StrategySuggestive:     true,
	models.StrategyPromptEnhanced: true,
	models.StrategyNativeOnly:     true,
}

var validRulePriorities = map[models.Priority]bool{
	models.PriorityCritical: true,
	models.PriorityHigh:     true,
	models.PriorityMedium:   true,
	models.PriorityLow:      true,
}

var validEnforcements = map[models.Enforcement]bool{
	models.EnforcementBlock:   true,
	models.EnforcementWarn:    true,
	models.EnforcementSuggest: true,
}

// validateRulesConfig checks settings and every rule, collecting all
// problems into one error so a bad file is reported in a single pass.
func validateRulesConfig(cfg *models.RulesConfig) error {
	var errs []string

	if cfg.Settings.MaxSuggestions < 0 {
		errs = append(errs, fmt.Sprintf("settings.max_suggestions must be non-negative, got %d", cfg.Settings.MaxSuggestions))
	}
	if cfg.Settings.Thresholds.RecentActivationMinutes < 0 {
		errs = append(errs, fmt.Sprintf("settings.thresholds.recent_activation_minutes must be non-negative, got %d", cfg.Settings.Thresholds.RecentActivationMinutes))
	}

	for _, name := range cfg.SkillOrder {
		rule, ok := cfg.Skills[name]
		if !ok {
			continue
		}
		if rule.Description == "" {
			errs = append(errs, fmt.Sprintf("skill %q: description is required", name))
		}
		if rule.ActivationStrategy != "" && !validStrategies[rule.ActivationStrategy] {
			errs = append(errs, fmt.Sprintf("skill %q: activation_strategy %q is invalid, must be one of: guaranteed, suggestive, native_only", name, rule.ActivationStrategy))
		}
		if rule.Priority != "" && !validRulePriorities[rule.Priority] {
			errs = append(errs, fmt.Sprintf("skill %q: priority %q is invalid, must be one of: critical, high, medium, low", name, rule.Priority))
		}
		if rule.Enforcement != "" && !validEnforcements[rule.Enforcement] {
			errs = append(errs, fmt.Sprintf("skill %q: enforcement %q is invalid, must be one of: block, warn, suggest", name, rule.Enforcement))
		}
		if rule.CooldownMinutes < 0 {
			errs = append(errs, fmt.Sprintf("skill %q: cooldown_minutes must be non-negative, got %d", name, rule.CooldownMinutes))
		}
		if _, err := trigger.Compile(name, rule); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("rules config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// normalizeRules applies defaults and the prompt_enhanced deprecation
// mapping. The config value is accepted but behaves as native_only; the
// distinction exists only at the config boundary.
func normalizeRules(cfg *models.RulesConfig) {
	for name, rule := range cfg.Skills {
		switch rule.ActivationStrategy {
		case "":
			rule.ActivationStrategy = models.StrategyNativeOnly
		case models.StrategyPromptEnhanced:
			rule.ActivationStrategy = models.StrategyNativeOnly
		}
		if rule.Priority == "" {
			rule.Priority = models.PriorityMedium
		}
		if rule.Enforcement == "" {
			rule.Enforcement = models.EnforcementSuggest
		}
		cfg.Skills[name] = rule
	}
}
